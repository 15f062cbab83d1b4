package energy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litforge/progression-api/internal/engine/energy"
	"github.com/litforge/progression-api/internal/engine/stats"
	"github.com/litforge/progression-api/internal/entities/sheet"
)

// stubStats satisfies energy.StatsReader with fixed values.
type stubStats struct {
	totals  map[sheet.Primary]float64
	weights map[string]float64
	realm   int
}

func (s *stubStats) PrimaryTotal(p sheet.Primary) float64 { return s.totals[p] }
func (s *stubStats) StatWeight(name string) float64       { return s.weights[name] }
func (s *stubStats) Realm() int                           { return s.realm }

func TestFreshCharacterPools(t *testing.T) {
	e := energy.New(stats.New())

	assert.Equal(t, sheet.EnergyPool{Initial: 100, Adjustment: 20, Final: 120}, e.Pool(sheet.EnergyLifeforce))
	assert.Equal(t, sheet.EnergyPool{Initial: 50, Adjustment: 10, Final: 60}, e.Pool(sheet.EnergyQi))
	assert.Equal(t, sheet.EnergyPool{Initial: 20, Adjustment: 4, Final: 24}, e.Pool(sheet.EnergyEssence))
}

func TestRealmMultipliers(t *testing.T) {
	stub := &stubStats{
		totals:  map[sheet.Primary]float64{sheet.PrimaryBody: 2, sheet.PrimaryMind: 2, sheet.PrimarySpirit: 2},
		weights: map[string]float64{},
	}

	tests := []struct {
		realm int
		want  int64 // Lifeforce initial for body total 2
	}{
		{1, 200},
		{2, 600},
		{5, 3_000},
		{10, 11_000},
		// Realms beyond the table fall back to multiplier 1.
		{11, 200},
	}

	for _, tt := range tests {
		stub.realm = tt.realm
		e := energy.New(stub)
		assert.Equal(t, tt.want, e.Pool(sheet.EnergyLifeforce).Initial, "realm %d", tt.realm)
	}
}

func TestAdjustmentUsesStatWeights(t *testing.T) {
	stub := &stubStats{
		totals: map[sheet.Primary]float64{sheet.PrimaryBody: 3, sheet.PrimarySpirit: 4, sheet.PrimaryMind: 5},
		weights: map[string]float64{
			"Vitality":  0.5,
			"Magnitude": 0.25,
			"Memory":    0.1,
		},
		realm: 1,
	}

	e := energy.New(stub)

	lifeforce := e.Pool(sheet.EnergyLifeforce)
	assert.Equal(t, int64(300), lifeforce.Initial)
	assert.Equal(t, int64(150), lifeforce.Adjustment)
	assert.Equal(t, int64(450), lifeforce.Final)

	qi := e.Pool(sheet.EnergyQi)
	assert.Equal(t, int64(200), qi.Initial)
	assert.Equal(t, int64(50), qi.Adjustment)

	essence := e.Pool(sheet.EnergyEssence)
	assert.Equal(t, int64(100), essence.Initial)
	assert.Equal(t, int64(10), essence.Adjustment)
}

func TestRecomputeFollowsStatChanges(t *testing.T) {
	statsEngine := stats.New()
	e := energy.New(statsEngine)

	// Wire the recompute the way the session orchestrator does.
	statsEngine.Updates().Subscribe(func(stats.Updated) { e.Recompute() })

	var updates int
	e.Updates().Subscribe(func(energy.Updated) { updates++ })

	statsEngine.HandleLevelUp(1, sheet.PrimaryBody)
	require.Equal(t, 1, updates)

	// Body total doubled, so Lifeforce doubles with it.
	assert.Equal(t, int64(200), e.Pool(sheet.EnergyLifeforce).Initial)
	assert.Equal(t, int64(50), e.Pool(sheet.EnergyQi).Initial)
}
