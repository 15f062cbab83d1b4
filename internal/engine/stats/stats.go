// Package stats implements the secondary/primary stat engine: bounded
// point allocation, weight and constraint derivation, and level-up point
// grants.
package stats

import (
	"github.com/litforge/progression-api/internal/entities/sheet"
	"github.com/litforge/progression-api/internal/events"
)

// Updated is published after every successful recompute. Subscribers read
// the new values back through the engine's accessors.
type Updated struct{}

// Engine owns the fifteen secondary stats, the shared free/train point
// pools, and the character level. All mutations go through Update,
// HandleLevelUp, or a snapshot load; each ends in a full recompute.
type Engine struct {
	stats         map[string]*sheet.SecondaryStat
	primaryTotals map[sheet.Primary]float64
	freePoints    int
	trainPoints   int
	level         int

	updated events.Dispatcher[Updated]
}

// New returns an engine with every stat at one auto point and both pools
// empty.
func New() *Engine {
	e := &Engine{
		stats:         make(map[string]*sheet.SecondaryStat, 15),
		primaryTotals: make(map[sheet.Primary]float64, len(sheet.Primaries)),
	}
	e.Reset()
	return e
}

// Updates exposes the recompute event stream.
func (e *Engine) Updates() *events.Dispatcher[Updated] {
	return &e.updated
}

// Reset restores the fresh-character state: auto=1 everywhere, empty
// pools, level 0.
func (e *Engine) Reset() {
	for _, names := range sheet.SecondaryStats {
		for _, name := range names {
			e.stats[name] = &sheet.SecondaryStat{Auto: 1}
		}
	}
	e.freePoints = 0
	e.trainPoints = 0
	e.level = 0
	e.Recompute()
}

// Update spends delta points from the free or train pool on the named
// stat. A negative delta refunds. The call is atomic: it returns false
// without mutating anything when the pool or the stat's own category
// would go negative, or when the stat or category is unknown.
func (e *Engine) Update(statName string, category sheet.PointCategory, delta int) bool {
	stat, ok := e.stats[statName]
	if !ok {
		return false
	}

	switch category {
	case sheet.CategoryFree:
		if e.freePoints-delta < 0 || stat.Free+delta < 0 {
			return false
		}
		e.freePoints -= delta
		stat.Free += delta
	case sheet.CategoryTrain:
		if e.trainPoints-delta < 0 || stat.Train+delta < 0 {
			return false
		}
		e.trainPoints -= delta
		stat.Train += delta
	default:
		return false
	}

	e.Recompute()
	return true
}

// Recompute derives weight, constraint, total, and the primary totals for
// every group, then publishes Updated.
//
// Within a group the weights sum to 1 whenever any auto+free points
// exist, so the primary total needs no further normalization.
func (e *Engine) Recompute() {
	for _, primary := range sheet.Primaries {
		names := sheet.SecondaryStats[primary]

		totalPoints := 0
		manualAutoPoints := 0
		for _, name := range names {
			s := e.stats[name]
			totalPoints += s.Auto + s.Free + s.Train
			manualAutoPoints += s.Auto + s.Free
		}

		primaryTotal := 0.0
		for _, name := range names {
			s := e.stats[name]
			s.Total = s.Auto + s.Free + s.Train

			s.Weight = 0
			if manualAutoPoints > 0 {
				s.Weight = float64(s.Auto+s.Free) / float64(manualAutoPoints)
			}

			s.Constraint = 0
			if totalPoints > 0 {
				s.Constraint = float64(s.Total) / float64(totalPoints) * 100
			}

			primaryTotal += float64(s.Total) * s.Weight
		}

		e.primaryTotals[primary] = primaryTotal
	}

	e.updated.Publish(Updated{})
}

// HandleLevelUp applies newLevel-currentLevel level increments: each one
// grants +1 auto to every stat in primary's group and +5 to each point
// pool. Recompute runs once at the end.
func (e *Engine) HandleLevelUp(newLevel int, primary sheet.Primary) {
	names := sheet.SecondaryStats[primary]
	for lvl := e.level; lvl < newLevel; lvl++ {
		for _, name := range names {
			e.stats[name].Auto++
		}
		e.freePoints += 5
		e.trainPoints += 5
	}
	e.level = newLevel
	e.Recompute()
}

// Realm returns the coarse 10-level tier for the current level. Level 0
// still counts as realm 1.
func (e *Engine) Realm() int {
	if e.level <= 0 {
		return 1
	}
	return (e.level-1)/10 + 1
}

// Level returns the character level.
func (e *Engine) Level() int {
	return e.level
}

// FreePoints returns the unspent free pool.
func (e *Engine) FreePoints() int {
	return e.freePoints
}

// TrainPoints returns the unspent train pool.
func (e *Engine) TrainPoints() int {
	return e.trainPoints
}

// Stat returns a copy of the named secondary stat.
func (e *Engine) Stat(name string) (sheet.SecondaryStat, bool) {
	s, ok := e.stats[name]
	if !ok {
		return sheet.SecondaryStat{}, false
	}
	return *s, true
}

// StatWeight returns the derived weight of the named stat, 0 if unknown.
func (e *Engine) StatWeight(name string) float64 {
	if s, ok := e.stats[name]; ok {
		return s.Weight
	}
	return 0
}

// PrimaryTotal returns the derived total for a primary group.
func (e *Engine) PrimaryTotal(primary sheet.Primary) float64 {
	return e.primaryTotals[primary]
}

// PrimaryTotals returns a copy of all primary totals.
func (e *Engine) PrimaryTotals() map[sheet.Primary]float64 {
	out := make(map[sheet.Primary]float64, len(e.primaryTotals))
	for primary, total := range e.primaryTotals {
		out[primary] = total
	}
	return out
}

// Stats returns a copy of all secondary stats keyed by name.
func (e *Engine) Stats() map[string]sheet.SecondaryStat {
	out := make(map[string]sheet.SecondaryStat, len(e.stats))
	for name, s := range e.stats {
		out[name] = *s
	}
	return out
}

// Load hydrates allocations, pools, and level from a snapshot. Derived
// fields in the snapshot are ignored; everything is recomputed.
func (e *Engine) Load(stats map[string]sheet.SecondaryStat, freePoints, trainPoints, level int) {
	for name, loaded := range stats {
		if s, ok := e.stats[name]; ok {
			s.Auto = loaded.Auto
			s.Free = loaded.Free
			s.Train = loaded.Train
		}
	}
	e.freePoints = freePoints
	e.trainPoints = trainPoints
	e.level = level
	e.Recompute()
}
