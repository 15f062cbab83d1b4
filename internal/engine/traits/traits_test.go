package traits_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litforge/progression-api/internal/engine/experience"
	"github.com/litforge/progression-api/internal/engine/traits"
	"github.com/litforge/progression-api/internal/entities/sheet"
	"github.com/litforge/progression-api/internal/errors"
)

func newEngine(t *testing.T) (*traits.Engine, *experience.Engine) {
	t.Helper()
	exp := experience.New()
	return traits.New(exp), exp
}

func TestTierForExp(t *testing.T) {
	tests := []struct {
		name     string
		totalExp int64
		grade    sheet.QualityGrade
		level    int
		exp      int64
		tierMax  int64
	}{
		{"zero", 0, sheet.GradeMortal, 1, 0, 100},
		{"inside first tier", 99, sheet.GradeMortal, 1, 99, 100},
		{"exact first boundary", 100, sheet.GradeMortal, 2, 0, 200},
		{"inside second tier", 250, sheet.GradeMortal, 2, 150, 200},
		{"into second grade", 5500 + 500, sheet.GradeElite, 1, 500, 1000},
		{"ladder exhausted", 1 << 62, sheet.GradeEternal, 10, 0, experience.MaxExp(100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier := traits.TierForExp(tt.totalExp)
			assert.Equal(t, tt.grade, tier.Grade)
			assert.Equal(t, tt.level, tier.Level)
			assert.Equal(t, tt.exp, tier.Exp)
			assert.Equal(t, tt.tierMax, tier.TierMaxExp)
		})
	}
}

func TestInitialExpRoundTrips(t *testing.T) {
	// Seeding a trait at any grade and level must land TierForExp back
	// on the same position with zero remainder.
	for gradeIdx, grade := range sheet.QualityGrades {
		for level := 1; level <= 10; level++ {
			seed := traits.InitialExp(grade, level)
			tier := traits.TierForExp(seed)
			require.Equal(t, grade, tier.Grade, "grade %d level %d", gradeIdx, level)
			require.Equal(t, level, tier.Level, "grade %d level %d", gradeIdx, level)
			require.Zero(t, tier.Exp)
		}
	}
}

func TestAddSeedsLedger(t *testing.T) {
	e, exp := newEngine(t)

	require.NoError(t, e.Add(sheet.Trait{Name: "Iron Will", QualityGrade: sheet.GradeElite, QualityLevel: 3}))

	rec, err := exp.Record(sheet.KindTrait, "Iron Will")
	require.NoError(t, err)
	// Grade 2 level 3 sits past levels 1..12: 5500 for the first grade
	// plus 1000 and 2000 for the first two Elite tiers.
	assert.Equal(t, int64(8500), rec.Exp)

	trait, ok := e.Get("Iron Will")
	require.True(t, ok)
	assert.Equal(t, sheet.GradeElite, trait.QualityGrade)
	assert.Equal(t, 3, trait.QualityLevel)
	assert.Equal(t, int64(8500), trait.Exp)
}

func TestAddValidates(t *testing.T) {
	e, _ := newEngine(t)

	err := e.Add(sheet.Trait{Name: "", QualityGrade: "Shiny", QualityLevel: 0})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestAddReplacesByName(t *testing.T) {
	e, _ := newEngine(t)

	require.NoError(t, e.Add(sheet.Trait{Name: "Iron Will", QualityGrade: sheet.GradeMortal, QualityLevel: 1}))
	require.NoError(t, e.Add(sheet.Trait{Name: "Keen Eye", QualityGrade: sheet.GradeMortal, QualityLevel: 1}))
	require.NoError(t, e.Add(sheet.Trait{Name: "Iron Will", QualityGrade: sheet.GradeEarth, QualityLevel: 5}))

	list := e.List()
	require.Len(t, list, 2)
	assert.Equal(t, "Iron Will", list[0].Name)
	assert.Equal(t, sheet.GradeEarth, list[0].QualityGrade)
	assert.Equal(t, 5, list[0].QualityLevel)
}

func TestAddExperienceAdvancesTier(t *testing.T) {
	e, _ := newEngine(t)
	require.NoError(t, e.Add(sheet.Trait{Name: "Iron Will", QualityGrade: sheet.GradeMortal, QualityLevel: 1}))

	tier, err := e.AddExperience("Iron Will", 150)
	require.NoError(t, err)
	assert.Equal(t, sheet.GradeMortal, tier.Grade)
	assert.Equal(t, 2, tier.Level)
	assert.Equal(t, int64(50), tier.Exp)

	trait, ok := e.Get("Iron Will")
	require.True(t, ok)
	assert.Equal(t, 2, trait.QualityLevel)
	assert.Equal(t, int64(150), trait.Exp)
}

func TestAddExperienceClampsAtLadderEnds(t *testing.T) {
	e, _ := newEngine(t)
	require.NoError(t, e.Add(sheet.Trait{Name: "Iron Will", QualityGrade: sheet.GradeMortal, QualityLevel: 1}))

	tier, err := e.AddExperience("Iron Will", -500)
	require.NoError(t, err)
	assert.Equal(t, sheet.GradeMortal, tier.Grade)
	assert.Equal(t, 1, tier.Level)
	assert.Zero(t, tier.Exp)

	tier, err = e.AddExperience("Iron Will", 1<<62)
	require.NoError(t, err)
	assert.Equal(t, sheet.GradeEternal, tier.Grade)
	assert.Equal(t, 10, tier.Level)
	assert.Zero(t, tier.Exp)

	// Already at the cap, further credit is a no-op.
	tier, err = e.AddExperience("Iron Will", 1000)
	require.NoError(t, err)
	assert.Equal(t, sheet.GradeEternal, tier.Grade)
	assert.Equal(t, 10, tier.Level)
}

func TestAddExperiencePercentRounds(t *testing.T) {
	e, _ := newEngine(t)
	require.NoError(t, e.Add(sheet.Trait{Name: "Iron Will", QualityGrade: sheet.GradeMortal, QualityLevel: 1}))

	// 33.333% of the 100-point first tier rounds to 33.
	tier, err := e.AddExperiencePercent("Iron Will", 33.333)
	require.NoError(t, err)
	assert.Equal(t, int64(33), tier.Exp)

	// 66.7% of the same tier rounds up to 67, crossing into level 2.
	tier, err = e.AddExperiencePercent("Iron Will", 66.7)
	require.NoError(t, err)
	assert.Equal(t, 2, tier.Level)
	assert.Zero(t, tier.Exp)
}

func TestUnknownTrait(t *testing.T) {
	e, _ := newEngine(t)

	_, err := e.AddExperience("Nobody", 10)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	_, err = e.Tier("Nobody")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	assert.False(t, e.Remove("Nobody"))
}

func TestRemoveDropsLedgerEntry(t *testing.T) {
	e, exp := newEngine(t)
	require.NoError(t, e.Add(sheet.Trait{Name: "Iron Will", QualityGrade: sheet.GradeElite, QualityLevel: 1}))

	require.True(t, e.Remove("Iron Will"))
	assert.Empty(t, e.List())

	// Lenient ledger read reports a fresh record after removal.
	rec, err := exp.Record(sheet.KindTrait, "Iron Will")
	require.NoError(t, err)
	assert.Zero(t, rec.Exp)
}

func TestChangedEvents(t *testing.T) {
	e, _ := newEngine(t)

	var fired int
	e.Changes().Subscribe(func(traits.Changed) { fired++ })

	require.NoError(t, e.Add(sheet.Trait{Name: "Iron Will", QualityGrade: sheet.GradeMortal, QualityLevel: 1}))
	_, err := e.AddExperience("Iron Will", 10)
	require.NoError(t, err)
	require.True(t, e.Remove("Iron Will"))

	assert.Equal(t, 3, fired)
}

func TestExportLoad(t *testing.T) {
	e, exp := newEngine(t)
	require.NoError(t, e.Add(sheet.Trait{Name: "Iron Will", QualityGrade: sheet.GradeElite, QualityLevel: 2}))
	require.NoError(t, e.Add(sheet.Trait{Name: "Keen Eye", QualityGrade: sheet.GradeMortal, QualityLevel: 7}))

	data := e.Export()
	ledger := exp.Export()

	restoredExp := experience.New()
	restoredExp.Load(ledger)
	restored := traits.New(restoredExp)
	restored.Load(data)

	list := restored.List()
	require.Len(t, list, 2)
	assert.Equal(t, "Iron Will", list[0].Name)
	assert.Equal(t, sheet.GradeElite, list[0].QualityGrade)
	assert.Equal(t, 2, list[0].QualityLevel)
	assert.Equal(t, "Keen Eye", list[1].Name)
	assert.Equal(t, 7, list[1].QualityLevel)
}
