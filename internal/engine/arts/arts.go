// Package arts implements the art roster and the power-boost formula
// combining quality grade, mastery progress, and the stat spread.
package arts

import (
	"sort"

	"github.com/litforge/progression-api/internal/engine/experience"
	"github.com/litforge/progression-api/internal/entities/sheet"
	"github.com/litforge/progression-api/internal/errors"
	"github.com/litforge/progression-api/internal/events"
)

// StatsReader is the read-only slice of the stats engine the boost
// formula consumes.
type StatsReader interface {
	PrimaryTotal(primary sheet.Primary) float64
	Realm() int
}

// MasteryReader reads mastery ledger entries. Satisfied by the
// experience engine.
type MasteryReader interface {
	Record(kind sheet.ExperienceKind, identifier string) (sheet.ExperienceRecord, error)
}

// Changed is published whenever the art roster mutates.
type Changed struct{}

// Result carries the final boost and every intermediate of the
// computation; the display layer shows all of them.
type Result struct {
	Realm                int     `json:"realm"`
	RelevantStat         float64 `json:"relevant_stat"`
	TotalStat            float64 `json:"total_stat"`
	Ratio                float64 `json:"ratio"`
	QualityMultiplier    float64 `json:"quality_multiplier"`
	MasteryMultiplier    float64 `json:"mastery_multiplier"`
	InitialBoost         float64 `json:"initial_boost"`
	AdjustmentMultiplier float64 `json:"adjustment_multiplier"`
	FinalBoost           float64 `json:"final_boost"`
	MasteryLevel         int     `json:"mastery_level"`
	MasteryLayer         string  `json:"mastery_layer"`
	MasteryLevelInLayer  int     `json:"mastery_level_in_layer"`
}

// neutralResult is returned when the computation cannot proceed, so a
// display feeding off it renders zeroes instead of crashing.
func neutralResult() *Result {
	return &Result{
		MasteryLevel:        1,
		MasteryLayer:        experience.MasteryLayer(1),
		MasteryLevelInLayer: 1,
	}
}

// Engine owns the art roster, keyed by unique name.
type Engine struct {
	arts    map[string]*sheet.Art
	stats   StatsReader
	mastery MasteryReader

	changed events.Dispatcher[Changed]
}

// New returns an empty roster reading from the given engines.
func New(stats StatsReader, mastery MasteryReader) *Engine {
	return &Engine{
		arts:    make(map[string]*sheet.Art),
		stats:   stats,
		mastery: mastery,
	}
}

// Changes exposes the roster mutation stream.
func (e *Engine) Changes() *events.Dispatcher[Changed] {
	return &e.changed
}

// Reset clears the roster.
func (e *Engine) Reset() {
	e.arts = make(map[string]*sheet.Art)
	e.changed.Publish(Changed{})
}

// Add validates and stores an art. An art with the same name is replaced
// in place.
func (e *Engine) Add(art sheet.Art) error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("name", art.Name, vb)
	if !art.Type.IsValid() {
		vb.InvalidField("type", "unknown art type")
	}
	if !art.Quality.IsValid() {
		vb.InvalidField("quality", "unknown quality grade")
	}
	errors.ValidateRange("quality_level", art.QualityLevel, 1, 10, vb)
	if err := vb.Build(); err != nil {
		return err
	}

	e.arts[art.Name] = &art
	e.changed.Publish(Changed{})
	return nil
}

// Rename replaces oldName with a validated new art, possibly under a new
// name.
func (e *Engine) Rename(oldName string, art sheet.Art) error {
	if _, ok := e.arts[oldName]; !ok {
		return errors.NotFoundf("art %q not found", oldName)
	}
	delete(e.arts, oldName)
	return e.Add(art)
}

// Remove deletes an art from the roster. The caller is responsible for
// dropping the mastery ledger entry.
func (e *Engine) Remove(name string) bool {
	if _, ok := e.arts[name]; !ok {
		return false
	}
	delete(e.arts, name)
	e.changed.Publish(Changed{})
	return true
}

// Get returns a copy of the named art.
func (e *Engine) Get(name string) (sheet.Art, bool) {
	art, ok := e.arts[name]
	if !ok {
		return sheet.Art{}, false
	}
	return *art, true
}

// List returns all arts sorted by name.
func (e *Engine) List() []sheet.Art {
	out := make([]sheet.Art, 0, len(e.arts))
	for _, art := range e.arts {
		out = append(out, *art)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Calculate computes the power boost for the named art. A missing art
// returns nil; a computation that cannot proceed (corrupt mastery state)
// returns the neutral all-zero result so callers can always display
// something.
func (e *Engine) Calculate(name string) *Result {
	art, ok := e.arts[name]
	if !ok {
		return nil
	}

	rec, err := e.mastery.Record(sheet.KindMastery, name)
	if err != nil || rec.Level < 1 || rec.Level > experience.MaxLevel {
		return neutralResult()
	}

	masteryLevel := rec.Level
	realm := e.stats.Realm()

	totalStat := 0.0
	for _, primary := range sheet.Primaries {
		totalStat += e.stats.PrimaryTotal(primary)
	}
	relevantStat := e.relevantStat(art.Type)

	ratio := 0.0
	if totalStat != 0 {
		ratio = relevantStat / totalStat
	}

	gradeRank := art.Quality.Rank()
	qualityMultiplier := QualityMultiplier(art.Quality, art.QualityLevel)
	masteryMultiplier := MasteryMultiplier(masteryLevel)
	initialBoost := qualityMultiplier * masteryMultiplier * ratio

	currentLayer := (masteryLevel-1)/10 + 1
	adjustmentMultiplier := 1 + float64(realm-gradeRank)/10 + float64(currentLayer)/10

	return &Result{
		Realm:                realm,
		RelevantStat:         relevantStat,
		TotalStat:            totalStat,
		Ratio:                ratio,
		QualityMultiplier:    qualityMultiplier,
		MasteryMultiplier:    masteryMultiplier,
		InitialBoost:         initialBoost,
		AdjustmentMultiplier: adjustmentMultiplier,
		FinalBoost:           initialBoost * adjustmentMultiplier,
		MasteryLevel:         masteryLevel,
		MasteryLayer:         experience.MasteryLayer(masteryLevel),
		MasteryLevelInLayer:  experience.MasteryLevelInLayer(masteryLevel),
	}
}

// relevantStat selects the primary totals feeding the boost ratio by art
// type.
func (e *Engine) relevantStat(artType sheet.ArtType) float64 {
	body := e.stats.PrimaryTotal(sheet.PrimaryBody)
	mind := e.stats.PrimaryTotal(sheet.PrimaryMind)
	spirit := e.stats.PrimaryTotal(sheet.PrimarySpirit)

	switch artType {
	case sheet.ArtMartial:
		return body
	case sheet.ArtSpiritual:
		return spirit
	case sheet.ArtPsychic:
		return mind
	case sheet.ArtBloodline:
		return body*0.5 + spirit*0.3 + mind*0.2
	case sheet.ArtAuxiliary:
		return mind*0.5 + spirit*0.3 + body*0.2
	case sheet.ArtArcane:
		return spirit*0.5 + mind*0.3 + body*0.2
	case sheet.ArtCultivation:
		return max(body, mind, spirit)
	default: // Mixed
		return (body + mind + spirit) / 3
	}
}

// QualityMultiplier interpolates between a grade's rank and the next
// rank by quality level. The top grade has no next rank, so the
// multiplier is pinned at 10 there regardless of level.
func QualityMultiplier(grade sheet.QualityGrade, qualityLevel int) float64 {
	rank := grade.Rank()
	nextRank := rank + 1
	if nextRank > 10 {
		nextRank = 10
	}
	return float64(rank) + float64(nextRank-rank)/10*float64(qualityLevel)
}

// MasteryMultiplier interpolates between the triangular numbers of the
// current and next mastery layers by the sub-level within the layer.
func MasteryMultiplier(masteryLevel int) float64 {
	currentLayer := (masteryLevel-1)/10 + 1
	nextLayer := currentLayer + 1
	if nextLayer > 10 {
		nextLayer = 10
	}

	tCurrent := triangular(currentLayer)
	tNext := triangular(nextLayer)
	levelInLayer := experience.MasteryLevelInLayer(masteryLevel)

	return float64(tCurrent) + float64(tNext-tCurrent)/10*float64(levelInLayer)
}

func triangular(n int) int {
	return n * (n + 1) / 2
}

// Export returns a copy of the roster in snapshot form.
func (e *Engine) Export() map[string]sheet.Art {
	out := make(map[string]sheet.Art, len(e.arts))
	for name, art := range e.arts {
		out[name] = *art
	}
	return out
}

// Load replaces the roster with snapshot data without validation, on the
// assumption that the snapshot was produced by Export.
func (e *Engine) Load(data map[string]sheet.Art) {
	e.arts = make(map[string]*sheet.Art, len(data))
	for name, art := range data {
		a := art
		a.Name = name
		e.arts[name] = &a
	}
	e.changed.Publish(Changed{})
}
