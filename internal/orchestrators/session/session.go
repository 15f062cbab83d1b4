package session

import (
	"github.com/litforge/progression-api/internal/engine/arts"
	"github.com/litforge/progression-api/internal/engine/energy"
	"github.com/litforge/progression-api/internal/engine/experience"
	"github.com/litforge/progression-api/internal/engine/stats"
	"github.com/litforge/progression-api/internal/engine/traits"
	"github.com/litforge/progression-api/internal/entities/sheet"
)

// engineSet bundles the five progression engines for one character and
// wires their event streams: stat recomputes refresh the energy pools,
// and character level-ups feed their primary target back into the stats
// engine before the experience call returns.
type engineSet struct {
	stats  *stats.Engine
	exp    *experience.Engine
	energy *energy.Engine
	arts   *arts.Engine
	traits *traits.Engine
}

func newEngineSet() *engineSet {
	st := stats.New()
	ex := experience.New()
	en := energy.New(st)

	st.Updates().Subscribe(func(stats.Updated) {
		en.Recompute()
	})
	ex.CharacterLevelUps().Subscribe(func(ev experience.CharacterLevelUp) {
		st.HandleLevelUp(ev.NewLevel, ev.Primary)
	})

	return &engineSet{
		stats:  st,
		exp:    ex,
		energy: en,
		arts:   arts.New(st, ex),
		traits: traits.New(ex),
	}
}

// snapshot gathers the full engine state into the persisted shape.
func (es *engineSet) snapshot(name string) *sheet.Snapshot {
	return &sheet.Snapshot{
		Name:          name,
		InitialStat:   es.exp.InitialStat(),
		Stats:         es.stats.Stats(),
		PrimaryTotals: es.stats.PrimaryTotals(),
		FreePoints:    es.stats.FreePoints(),
		TrainPoints:   es.stats.TrainPoints(),
		Level:         es.stats.Level(),
		Energy:        es.energy.Pools(),
		Experience:    es.exp.Export(),
		Arts:          es.arts.Export(),
		Traits:        es.traits.Export(),
	}
}

// load hydrates every engine from a snapshot. Derived values (weights,
// totals, energy) are recomputed rather than trusted.
func (es *engineSet) load(snap *sheet.Snapshot) {
	es.exp.Load(snap.Experience)
	if snap.InitialStat != "" {
		// Snapshots written by this module always carry a valid primary.
		_ = es.exp.SetInitialStat(snap.InitialStat)
	}
	es.stats.Load(snap.Stats, snap.FreePoints, snap.TrainPoints, snap.Level)
	es.arts.Load(snap.Arts)
	es.traits.Load(snap.Traits)
}
