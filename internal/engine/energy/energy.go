// Package energy derives the three resource pools from the stat engine's
// primary totals, realm, and a few stat weights. The pools carry no
// incremental state: every recompute rebuilds them from scratch.
package energy

import (
	"github.com/litforge/progression-api/internal/entities/sheet"
	"github.com/litforge/progression-api/internal/events"
)

// StatsReader is the read-only slice of the stats engine the pools are
// derived from.
type StatsReader interface {
	PrimaryTotal(primary sheet.Primary) float64
	StatWeight(name string) float64
	Realm() int
}

// Updated is published after every recompute.
type Updated struct{}

// Per-pool base rates and their adjusting stat weights.
const (
	lifeforceRate = 100
	qiRate        = 50
	essenceRate   = 20

	lifeforceStat = "Vitality"
	qiStat        = "Magnitude"
	essenceStat   = "Memory"
)

// realmMultipliers maps realms 1-10 to the first ten triangular numbers.
// Realms outside the table fall back to 1.
var realmMultipliers = map[int]int64{
	1: 1, 2: 3, 3: 6, 4: 10, 5: 15, 6: 21, 7: 28, 8: 36, 9: 45, 10: 55,
}

// Engine holds the three derived pools.
type Engine struct {
	stats StatsReader
	pools map[sheet.EnergyKind]sheet.EnergyPool

	updated events.Dispatcher[Updated]
}

// New returns an engine reading from stats. The caller wires Recompute to
// the stat engine's update stream; the constructor only primes the pools.
func New(stats StatsReader) *Engine {
	e := &Engine{
		stats: stats,
		pools: make(map[sheet.EnergyKind]sheet.EnergyPool, 3),
	}
	e.Recompute()
	return e
}

// Updates exposes the recompute event stream.
func (e *Engine) Updates() *events.Dispatcher[Updated] {
	return &e.updated
}

// Recompute rebuilds all three pools from the current stat state.
func (e *Engine) Recompute() {
	multiplier, ok := realmMultipliers[e.stats.Realm()]
	if !ok {
		multiplier = 1
	}

	e.pools[sheet.EnergyLifeforce] = e.derive(sheet.PrimaryBody, lifeforceRate, lifeforceStat, multiplier)
	e.pools[sheet.EnergyQi] = e.derive(sheet.PrimarySpirit, qiRate, qiStat, multiplier)
	e.pools[sheet.EnergyEssence] = e.derive(sheet.PrimaryMind, essenceRate, essenceStat, multiplier)

	e.updated.Publish(Updated{})
}

func (e *Engine) derive(primary sheet.Primary, rate int64, weightStat string, multiplier int64) sheet.EnergyPool {
	initial := int64(e.stats.PrimaryTotal(primary) * float64(rate) * float64(multiplier))
	adjustment := int64(float64(initial) * e.stats.StatWeight(weightStat))
	return sheet.EnergyPool{
		Initial:    initial,
		Adjustment: adjustment,
		Final:      initial + adjustment,
	}
}

// Pool returns the named pool.
func (e *Engine) Pool(kind sheet.EnergyKind) sheet.EnergyPool {
	return e.pools[kind]
}

// Pools returns a copy of all three pools.
func (e *Engine) Pools() map[sheet.EnergyKind]sheet.EnergyPool {
	out := make(map[sheet.EnergyKind]sheet.EnergyPool, len(e.pools))
	for kind, pool := range e.pools {
		out[kind] = pool
	}
	return out
}

// Reset recomputes from the current stat state. The pools have no other
// state to clear.
func (e *Engine) Reset() {
	e.Recompute()
}
