package experience_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litforge/progression-api/internal/engine/experience"
	"github.com/litforge/progression-api/internal/entities/sheet"
	"github.com/litforge/progression-api/internal/errors"
)

func TestMaxExpCurve(t *testing.T) {
	tests := []struct {
		level int
		want  int64
	}{
		{0, 10},
		{1, 100},
		{5, 500},
		{10, 1_000},
		{11, 1_000},
		{12, 2_000},
		{19, 9_000},
		{20, 10_000},
		{21, 10_000},
		{30, 100_000},
		{55, 5_000_000},
		{100, 1_000_000_000_000},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, experience.MaxExp(tt.level), "level %d", tt.level)
	}
}

func TestMaxExpMonotonicWithTierJumps(t *testing.T) {
	for level := 1; level < 100; level++ {
		assert.LessOrEqual(t, experience.MaxExp(level), experience.MaxExp(level+1), "level %d", level)
	}

	// The per-level step grows tenfold after every tier boundary.
	for tier := 1; tier < 9; tier++ {
		boundary := tier * 10
		stepBefore := experience.MaxExp(boundary) - experience.MaxExp(boundary-1)
		stepAfter := experience.MaxExp(boundary+2) - experience.MaxExp(boundary+1)
		assert.Equal(t, stepBefore*10, stepAfter, "boundary %d", boundary)
	}
}

func TestAddExperienceCascade(t *testing.T) {
	e := experience.New()

	var levelUps []experience.LevelUp
	e.LevelUps().Subscribe(func(ev experience.LevelUp) { levelUps = append(levelUps, ev) })

	var targets []sheet.Primary
	e.CharacterLevelUps().Subscribe(func(ev experience.CharacterLevelUp) { targets = append(targets, ev.Primary) })

	// Level 0 costs 10, level 1 costs 100, level 2 costs 200.
	atMax, err := e.AddExperience(sheet.KindCharacter, "", 250)
	require.NoError(t, err)
	assert.False(t, atMax)

	rec, err := e.Record(sheet.KindCharacter, "")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Level)
	assert.Equal(t, int64(140), rec.Exp)

	require.Len(t, levelUps, 2)
	assert.Equal(t, 1, levelUps[0].NewLevel)
	assert.Equal(t, 2, levelUps[1].NewLevel)
	assert.Equal(t, []sheet.Primary{sheet.PrimaryBody, sheet.PrimarySpirit}, targets)
}

func TestLevelingInvariant(t *testing.T) {
	e := experience.New()

	amounts := []int64{5, 250, 1_000, 99, 50_000, 3, 7_777_777}
	for _, amount := range amounts {
		_, err := e.AddExperience(sheet.KindMastery, "Azure Sword", amount)
		require.NoError(t, err)

		rec, err := e.Record(sheet.KindMastery, "Azure Sword")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, rec.Level, 1)
		assert.LessOrEqual(t, rec.Level, experience.MaxLevel)
		if rec.Level < experience.MaxLevel {
			assert.Less(t, rec.Exp, experience.MaxExp(rec.Level))
		}
	}
}

func TestMaxLevelClampAndOneShotNotification(t *testing.T) {
	e := experience.New()
	e.Load(map[sheet.ExperienceKind]map[string]sheet.ExperienceRecord{
		sheet.KindMastery: {"Azure Sword": {Exp: 0, Level: 99}},
	})

	var maxed []experience.MaxLevelReached
	e.MaxLevelEvents().Subscribe(func(ev experience.MaxLevelReached) { maxed = append(maxed, ev) })

	// Clearing level 99 costs 9e11; overshoot lands at max.
	atMax, err := e.AddExperience(sheet.KindMastery, "Azure Sword", 2_000_000_000_000)
	require.NoError(t, err)
	assert.True(t, atMax)

	rec, err := e.Record(sheet.KindMastery, "Azure Sword")
	require.NoError(t, err)
	assert.Equal(t, experience.MaxLevel, rec.Level)
	assert.Equal(t, experience.MaxExp(experience.MaxLevel)-1, rec.Exp)
	require.Len(t, maxed, 1)

	// Already at max: clamp holds, no second notification.
	atMax, err = e.AddExperience(sheet.KindMastery, "Azure Sword", 500)
	require.NoError(t, err)
	assert.True(t, atMax)
	assert.Len(t, maxed, 1)
}

func TestNegativeAmountDebitsWithoutLeveling(t *testing.T) {
	e := experience.New()
	_, err := e.AddExperience(sheet.KindCharacter, "", 5)
	require.NoError(t, err)

	var levelUps int
	e.LevelUps().Subscribe(func(experience.LevelUp) { levelUps++ })

	atMax, err := e.AddExperience(sheet.KindCharacter, "", -3)
	require.NoError(t, err)
	assert.False(t, atMax)
	assert.Zero(t, levelUps)

	rec, _ := e.Record(sheet.KindCharacter, "")
	assert.Equal(t, int64(2), rec.Exp)
	assert.Equal(t, 0, rec.Level)
}

func TestInvalidKindRejected(t *testing.T) {
	e := experience.New()

	_, err := e.AddExperience(sheet.ExperienceKind("bogus"), "x", 10)
	assert.True(t, errors.IsInvalidArgument(err))

	_, err = e.Record(sheet.ExperienceKind("bogus"), "x")
	assert.True(t, errors.IsInvalidArgument(err))

	err = e.RemoveExperience(sheet.ExperienceKind("bogus"), "x")
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestLenientReadUnknownIdentifier(t *testing.T) {
	e := experience.New()

	rec, err := e.Record(sheet.KindMastery, "never written")
	require.NoError(t, err)
	assert.Equal(t, sheet.ExperienceRecord{Exp: 0, Level: 1}, rec)
}

func TestSetExperienceTraitOnly(t *testing.T) {
	e := experience.New()

	require.NoError(t, e.SetExperience(sheet.KindTrait, "Iron Skin", 450))
	rec, _ := e.Record(sheet.KindTrait, "Iron Skin")
	assert.Equal(t, sheet.ExperienceRecord{Exp: 450, Level: 1}, rec)

	err := e.SetExperience(sheet.KindMastery, "Azure Sword", 450)
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestRemoveExperiencePublishesZeroedProgress(t *testing.T) {
	e := experience.New()
	_, err := e.AddExperience(sheet.KindMastery, "Azure Sword", 50)
	require.NoError(t, err)

	var got []experience.Progress
	e.ProgressEvents().Subscribe(func(ev experience.Progress) { got = append(got, ev) })

	require.NoError(t, e.RemoveExperience(sheet.KindMastery, "Azure Sword"))
	require.Len(t, got, 1)
	assert.Equal(t, experience.Progress{Kind: sheet.KindMastery, ID: "Azure Sword"}, got[0])

	// Removing again is a no-op and stays silent.
	require.NoError(t, e.RemoveExperience(sheet.KindMastery, "Azure Sword"))
	assert.Len(t, got, 1)
}

func TestLevelUpRotation(t *testing.T) {
	e := experience.New()
	require.NoError(t, e.SetInitialStat(sheet.PrimarySpirit))

	assert.Equal(t, sheet.PrimarySpirit, e.NextLevelUpTarget())

	var targets []sheet.Primary
	e.CharacterLevelUps().Subscribe(func(ev experience.CharacterLevelUp) { targets = append(targets, ev.Primary) })

	// Enough for levels 0->3: 10 + 100 + 200.
	_, err := e.AddExperience(sheet.KindCharacter, "", 310)
	require.NoError(t, err)

	assert.Equal(t, []sheet.Primary{sheet.PrimarySpirit, sheet.PrimaryMind, sheet.PrimaryBody}, targets)
	assert.Equal(t, sheet.PrimarySpirit, e.NextLevelUpTarget())

	assert.Error(t, e.SetInitialStat(sheet.Primary("Luck")))
}

func TestMasteryLayers(t *testing.T) {
	assert.Equal(t, "Initial Step", experience.MasteryLayer(1))
	assert.Equal(t, "Initial Step", experience.MasteryLayer(10))
	assert.Equal(t, "Blossoming Path", experience.MasteryLayer(11))
	assert.Equal(t, "Absolute Truth", experience.MasteryLayer(100))

	assert.Equal(t, 1, experience.MasteryLevelInLayer(1))
	assert.Equal(t, 10, experience.MasteryLevelInLayer(10))
	assert.Equal(t, 1, experience.MasteryLevelInLayer(11))
	assert.Equal(t, 10, experience.MasteryLevelInLayer(100))
}

func TestExportRoundTrip(t *testing.T) {
	e := experience.New()
	_, err := e.AddExperience(sheet.KindCharacter, "", 250)
	require.NoError(t, err)
	_, err = e.AddExperience(sheet.KindMastery, "Azure Sword", 150)
	require.NoError(t, err)

	exported := e.Export()

	restored := experience.New()
	restored.Load(exported)

	assert.Equal(t, exported, restored.Export())

	lvl, err := restored.Level(sheet.KindCharacter, "")
	require.NoError(t, err)
	assert.Equal(t, 2, lvl)
}
