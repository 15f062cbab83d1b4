// Package traits implements the trait list. A trait's authoritative
// progress is its cumulative experience in the trait ledger; the grade
// and level on the trait itself are a cached view derived from that
// total by walking the 100 quality tiers.
package traits

import (
	"math"

	"github.com/litforge/progression-api/internal/engine/experience"
	"github.com/litforge/progression-api/internal/entities/sheet"
	"github.com/litforge/progression-api/internal/errors"
	"github.com/litforge/progression-api/internal/events"
)

// ExperienceStore is the slice of the experience engine the trait list
// needs: lenient reads plus the trait-only setter and removal.
type ExperienceStore interface {
	Record(kind sheet.ExperienceKind, identifier string) (sheet.ExperienceRecord, error)
	SetExperience(kind sheet.ExperienceKind, identifier string, amount int64) error
	RemoveExperience(kind sheet.ExperienceKind, identifier string) error
}

// Changed is published whenever the trait list mutates.
type Changed struct{}

// Tier is the derived position of a cumulative experience total on the
// 10 grades x 10 levels ladder. Exp is the remainder inside the tier and
// TierMaxExp the cost of clearing it.
type Tier struct {
	Grade      sheet.QualityGrade `json:"grade"`
	Level      int                `json:"level"`
	Exp        int64              `json:"exp"`
	TierMaxExp int64              `json:"tier_max_exp"`
}

// tierCount is the full ladder: 10 grades of 10 levels each.
const tierCount = 100

// TierForExp walks the ladder accumulating each tier's cost until the
// running sum would exceed totalExp. Totals beyond the last tier clamp
// to (top grade, level 10, remainder 0).
func TierForExp(totalExp int64) Tier {
	accumulated := int64(0)
	for gradeIdx, grade := range sheet.QualityGrades {
		for level := 1; level <= 10; level++ {
			tierMax := experience.MaxExp(gradeIdx*10 + level)
			if accumulated+tierMax > totalExp {
				return Tier{Grade: grade, Level: level, Exp: totalExp - accumulated, TierMaxExp: tierMax}
			}
			accumulated += tierMax
		}
	}

	top := sheet.QualityGrades[len(sheet.QualityGrades)-1]
	return Tier{Grade: top, Level: 10, Exp: 0, TierMaxExp: experience.MaxExp(tierCount)}
}

// InitialExp returns the cumulative experience that places a trait at
// exactly the start of the given grade and level.
func InitialExp(grade sheet.QualityGrade, level int) int64 {
	totalLevels := (grade.Rank()-1)*10 + level
	sum := int64(0)
	for i := 1; i < totalLevels; i++ {
		sum += experience.MaxExp(i)
	}
	return sum
}

// expCap is the total cost of the whole ladder; cumulative totals are
// clamped here so experience past the last tier has no effect.
var expCap = func() int64 {
	sum := int64(0)
	for i := 1; i <= tierCount; i++ {
		sum += experience.MaxExp(i)
	}
	return sum
}()

// Engine owns the ordered trait list, keyed by unique name.
type Engine struct {
	traits []*sheet.Trait
	store  ExperienceStore

	changed events.Dispatcher[Changed]
}

// New returns an empty trait list backed by the given ledger store.
func New(store ExperienceStore) *Engine {
	return &Engine{store: store}
}

// Changes exposes the trait list mutation stream.
func (e *Engine) Changes() *events.Dispatcher[Changed] {
	return &e.changed
}

// Reset clears the trait list. Ledger entries are the experience
// engine's to reset.
func (e *Engine) Reset() {
	e.traits = nil
	e.changed.Publish(Changed{})
}

// Add validates and stores a trait, seeding its ledger entry with the
// cumulative experience matching its grade and level. A trait with the
// same name is replaced in place, keeping its list position.
func (e *Engine) Add(trait sheet.Trait) error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("name", trait.Name, vb)
	if !trait.QualityGrade.IsValid() {
		vb.InvalidField("quality_grade", "unknown quality grade")
	}
	errors.ValidateRange("quality_level", trait.QualityLevel, 1, 10, vb)
	if err := vb.Build(); err != nil {
		return err
	}

	trait.Exp = InitialExp(trait.QualityGrade, trait.QualityLevel)
	if err := e.store.SetExperience(sheet.KindTrait, trait.Name, trait.Exp); err != nil {
		return err
	}

	if existing := e.find(trait.Name); existing != nil {
		*existing = trait
	} else {
		e.traits = append(e.traits, &trait)
	}

	e.changed.Publish(Changed{})
	return nil
}

// Remove deletes a trait and its ledger entry.
func (e *Engine) Remove(name string) bool {
	for i, trait := range e.traits {
		if trait.Name == name {
			e.traits = append(e.traits[:i], e.traits[i+1:]...)
			// Ledger kinds are fixed here, so the error path is unreachable.
			_ = e.store.RemoveExperience(sheet.KindTrait, name)
			e.changed.Publish(Changed{})
			return true
		}
	}
	return false
}

// Get returns a copy of the named trait with its derived tier refreshed
// from the ledger.
func (e *Engine) Get(name string) (sheet.Trait, bool) {
	trait := e.find(name)
	if trait == nil {
		return sheet.Trait{}, false
	}
	e.refresh(trait)
	return *trait, true
}

// List returns copies of all traits in insertion order, tiers refreshed.
func (e *Engine) List() []sheet.Trait {
	out := make([]sheet.Trait, len(e.traits))
	for i, trait := range e.traits {
		e.refresh(trait)
		out[i] = *trait
	}
	return out
}

// Tier returns the derived ladder position for the named trait.
func (e *Engine) Tier(name string) (Tier, error) {
	if e.find(name) == nil {
		return Tier{}, errors.NotFoundf("trait %q not found", name)
	}
	rec, err := e.store.Record(sheet.KindTrait, name)
	if err != nil {
		return Tier{}, err
	}
	return TierForExp(rec.Exp), nil
}

// AddExperience credits amount to the trait's cumulative total, clamped
// to the top of the ladder, and refreshes the cached grade and level.
func (e *Engine) AddExperience(name string, amount int64) (Tier, error) {
	trait := e.find(name)
	if trait == nil {
		return Tier{}, errors.NotFoundf("trait %q not found", name)
	}

	rec, err := e.store.Record(sheet.KindTrait, name)
	if err != nil {
		return Tier{}, err
	}

	total := rec.Exp + amount
	if total < 0 {
		total = 0
	}
	if total > expCap {
		total = expCap
	}

	if err := e.store.SetExperience(sheet.KindTrait, name, total); err != nil {
		return Tier{}, err
	}

	tier := TierForExp(total)
	trait.QualityGrade = tier.Grade
	trait.QualityLevel = tier.Level
	trait.Exp = total

	e.changed.Publish(Changed{})
	return tier, nil
}

// AddExperiencePercent credits a percentage of the trait's current tier
// cost, rounded to the nearest point.
func (e *Engine) AddExperiencePercent(name string, percent float64) (Tier, error) {
	tier, err := e.Tier(name)
	if err != nil {
		return Tier{}, err
	}

	amount := int64(math.Round(float64(tier.TierMaxExp) * percent / 100))
	return e.AddExperience(name, amount)
}

// Export returns a copy of the trait list in snapshot order.
func (e *Engine) Export() []sheet.Trait {
	out := make([]sheet.Trait, len(e.traits))
	for i, trait := range e.traits {
		out[i] = *trait
	}
	return out
}

// Load replaces the trait list with snapshot data. Ledger entries load
// separately through the experience engine; cached tiers refresh on the
// next read.
func (e *Engine) Load(data []sheet.Trait) {
	e.traits = make([]*sheet.Trait, len(data))
	for i, trait := range data {
		t := trait
		e.traits[i] = &t
	}
	e.changed.Publish(Changed{})
}

func (e *Engine) find(name string) *sheet.Trait {
	for _, trait := range e.traits {
		if trait.Name == name {
			return trait
		}
	}
	return nil
}

// refresh re-derives the cached grade and level from the ledger total.
func (e *Engine) refresh(trait *sheet.Trait) {
	rec, err := e.store.Record(sheet.KindTrait, trait.Name)
	if err != nil {
		return
	}
	tier := TierForExp(rec.Exp)
	trait.QualityGrade = tier.Grade
	trait.QualityLevel = tier.Level
	trait.Exp = rec.Exp
}
