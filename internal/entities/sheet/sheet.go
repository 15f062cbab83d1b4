// Package sheet defines the character sheet domain types shared by the
// engines, the session orchestrator, and the persistence layer.
package sheet

// Primary identifies one of the three top-level stat aggregates.
type Primary string

// Primary stat groups
const (
	PrimaryBody   Primary = "Body"
	PrimaryMind   Primary = "Mind"
	PrimarySpirit Primary = "Spirit"
)

// Primaries lists the primary groups in display order.
var Primaries = []Primary{PrimaryBody, PrimaryMind, PrimarySpirit}

// IsValid reports whether p names a known primary group.
func (p Primary) IsValid() bool {
	switch p {
	case PrimaryBody, PrimaryMind, PrimarySpirit:
		return true
	}
	return false
}

// SecondaryStats maps each primary group to its five secondary stats, in
// display order. Stat names are unique across the whole sheet.
var SecondaryStats = map[Primary][]string{
	PrimaryBody:   {"Endurance", "Vitality", "Strength", "Agility", "Dexterity"},
	PrimaryMind:   {"Intelligence", "Memory", "Perception", "Clarity", "Focus"},
	PrimarySpirit: {"Adaptability", "Density", "Purity", "Fortitude", "Magnitude"},
}

// PointCategory selects which allocation of a secondary stat a mutation
// targets. Auto points are only granted by level-ups, never spent directly.
type PointCategory string

// Point categories
const (
	CategoryFree  PointCategory = "free"
	CategoryTrain PointCategory = "train"
)

// SecondaryStat is a single leaf attribute. Auto, Free and Train are the
// raw point allocations; Weight, Constraint and Total are derived on every
// recompute.
type SecondaryStat struct {
	Auto       int     `json:"auto"`
	Free       int     `json:"free"`
	Train      int     `json:"train"`
	Weight     float64 `json:"weight"`
	Constraint float64 `json:"constraint"`
	Total      int     `json:"total"`
}

// ExperienceKind selects one of the three leveling ledgers.
type ExperienceKind string

// Experience ledgers
const (
	KindCharacter ExperienceKind = "character"
	KindMastery   ExperienceKind = "mastery"
	KindTrait     ExperienceKind = "trait"
)

// CharacterID is the fixed identifier of the single character ledger entry.
const CharacterID = "character"

// IsValid reports whether k names a known ledger.
func (k ExperienceKind) IsValid() bool {
	switch k {
	case KindCharacter, KindMastery, KindTrait:
		return true
	}
	return false
}

// ExperienceRecord tracks progress within the current level. Exp is the
// amount accumulated toward the next level, not a lifetime total, except
// for trait ledgers where it is cumulative.
type ExperienceRecord struct {
	Exp   int64 `json:"exp"`
	Level int   `json:"level"`
}

// ArtType classifies an art and selects which primary totals feed its
// power-boost ratio.
type ArtType string

// Art types
const (
	ArtMartial     ArtType = "Martial"
	ArtSpiritual   ArtType = "Spiritual"
	ArtPsychic     ArtType = "Psychic"
	ArtBloodline   ArtType = "Bloodline"
	ArtAuxiliary   ArtType = "Auxiliary"
	ArtArcane      ArtType = "Arcane"
	ArtCultivation ArtType = "Cultivation"
	ArtMixed       ArtType = "Mixed"
)

// ArtTypes lists the art types in display order.
var ArtTypes = []ArtType{
	ArtMartial, ArtSpiritual, ArtPsychic, ArtBloodline,
	ArtAuxiliary, ArtArcane, ArtCultivation, ArtMixed,
}

// IsValid reports whether t names a known art type.
func (t ArtType) IsValid() bool {
	for _, known := range ArtTypes {
		if t == known {
			return true
		}
	}
	return false
}

// QualityGrade is the ten-step rank ladder shared by arts and traits.
type QualityGrade string

// Quality grades, lowest to highest
const (
	GradeMortal      QualityGrade = "Mortal Grade"
	GradeElite       QualityGrade = "Elite Grade"
	GradeEarth       QualityGrade = "Earth Grade"
	GradeRoyal       QualityGrade = "Royal Grade"
	GradeImperial    QualityGrade = "Imperial Grade"
	GradeSaint       QualityGrade = "Saint Grade"
	GradeSky         QualityGrade = "Sky Grade"
	GradeAscended    QualityGrade = "Ascended Grade"
	GradeTranscended QualityGrade = "Transcended Grade"
	GradeEternal     QualityGrade = "Eternal Grade"
)

// QualityGrades lists the grades from lowest to highest. The slice index
// plus one is the grade's rank.
var QualityGrades = []QualityGrade{
	GradeMortal, GradeElite, GradeEarth, GradeRoyal, GradeImperial,
	GradeSaint, GradeSky, GradeAscended, GradeTranscended, GradeEternal,
}

// Rank returns the 1-based rank of the grade. Unknown grades rank 1,
// matching the lenient lookup of the boost formula.
func (q QualityGrade) Rank() int {
	for i, grade := range QualityGrades {
		if q == grade {
			return i + 1
		}
	}
	return 1
}

// IsValid reports whether q names a known grade.
func (q QualityGrade) IsValid() bool {
	for _, grade := range QualityGrades {
		if q == grade {
			return true
		}
	}
	return false
}

// GradeByRank returns the grade with the given 1-based rank, clamping out
// of range ranks to the nearest end of the ladder.
func GradeByRank(rank int) QualityGrade {
	if rank < 1 {
		rank = 1
	}
	if rank > len(QualityGrades) {
		rank = len(QualityGrades)
	}
	return QualityGrades[rank-1]
}

// Art is a technique on the sheet. Its mastery progress lives in the
// experience ledger under ("mastery", Name), not on the struct.
type Art struct {
	Name         string       `json:"name"`
	Type         ArtType      `json:"type"`
	Quality      QualityGrade `json:"quality"`
	QualityLevel int          `json:"quality_level"`
	Notes        string       `json:"notes"`
}

// Trait is an innate characteristic. Its canonical progress is the
// cumulative experience under ("trait", Name); QualityGrade and
// QualityLevel are a cached view derived from that total.
type Trait struct {
	Name         string       `json:"name"`
	QualityGrade QualityGrade `json:"quality_grade"`
	QualityLevel int          `json:"quality_level"`
	Exp          int64        `json:"exp"`
	Notes        string       `json:"notes"`
}

// EnergyKind identifies one of the three derived resource pools.
type EnergyKind string

// Energy pools
const (
	EnergyLifeforce EnergyKind = "Lifeforce"
	EnergyQi        EnergyKind = "Qi"
	EnergyEssence   EnergyKind = "Essence"
)

// EnergyPool holds the derived values for a single resource pool.
type EnergyPool struct {
	Initial    int64 `json:"initial"`
	Adjustment int64 `json:"adjustment"`
	Final      int64 `json:"final"`
}

// Snapshot is the full persisted character state, the unit the character
// store reads and writes. Checkpoints store structural diffs of this
// shape.
type Snapshot struct {
	Name          string                                         `json:"name,omitempty"`
	InitialStat   Primary                                        `json:"initial_stat,omitempty"`
	Stats         map[string]SecondaryStat                       `json:"stats"`
	PrimaryTotals map[Primary]float64                            `json:"primary_totals"`
	FreePoints    int                                            `json:"free_points"`
	TrainPoints   int                                            `json:"train_points"`
	Level         int                                            `json:"level"`
	Energy        map[EnergyKind]EnergyPool                      `json:"energy"`
	Experience    map[ExperienceKind]map[string]ExperienceRecord `json:"experience"`
	Arts          map[string]Art                                 `json:"arts"`
	Traits        []Trait                                        `json:"traits"`
}
