// Package experience implements the shared leveling engine: the tiered
// experience curve, the character/mastery/trait ledgers, mastery layer
// naming, and the level-up target rotation.
package experience

import (
	"github.com/litforge/progression-api/internal/entities/sheet"
	"github.com/litforge/progression-api/internal/errors"
	"github.com/litforge/progression-api/internal/events"
)

// MaxLevel caps every ledger entry.
const MaxLevel = 100

// LevelUpRotation is the fixed order in which character level-ups target
// primary stat groups.
var LevelUpRotation = []sheet.Primary{sheet.PrimaryBody, sheet.PrimarySpirit, sheet.PrimaryMind}

var masteryLayers = []string{
	"Initial Step", "Blossoming Path", "Grasping Intent", "Lesser Mastery", "Grand Completion",
	"Shaping Insight", "Law Crystal", "Forged Apotheosis", "Karmic Liberation", "Absolute Truth",
}

// Progress is published after every ledger mutation, including removals
// (which report zeroes).
type Progress struct {
	Kind         sheet.ExperienceKind
	ID           string
	Exp          int64
	NextLevelExp int64
}

// LevelUp is published once per level threshold crossed.
type LevelUp struct {
	Kind     sheet.ExperienceKind
	ID       string
	NewLevel int
}

// CharacterLevelUp accompanies character LevelUp events and names the
// primary group the level-up targets. The session orchestrator feeds it
// back into the stats engine.
type CharacterLevelUp struct {
	NewLevel int
	Primary  sheet.Primary
}

// MaxLevelReached fires once, on the transition to MaxLevel.
type MaxLevelReached struct {
	Kind sheet.ExperienceKind
	ID   string
}

// MaxExp returns the experience needed to clear the given level. The
// curve restarts from a ten-times-larger base at every 10-level tier
// boundary, so it is non-decreasing with a jump at each seam (and flat
// across the first one: MaxExp(10) == MaxExp(11)). Level 0 is the
// character-only bootstrap tier.
func MaxExp(level int) int64 {
	switch {
	case level <= 0:
		return 10
	case level <= 10:
		return int64(level) * 100
	default:
		tier := (level - 1) / 10
		base := int64(1)
		for i := 0; i < tier+2; i++ {
			base *= 10
		}
		levelInTier := int64((level-1)%10) + 1
		return base * levelInTier
	}
}

// MasteryLayer returns the named layer for a mastery level in [1, 100].
// Out-of-range levels clamp to the nearest layer.
func MasteryLayer(level int) string {
	idx := (level - 1) / 10
	if idx < 0 {
		idx = 0
	}
	if idx >= len(masteryLayers) {
		idx = len(masteryLayers) - 1
	}
	return masteryLayers[idx]
}

// MasteryLevelInLayer returns the 1-10 sub-level within a mastery layer.
func MasteryLevelInLayer(level int) int {
	if level < 1 {
		return 1
	}
	return (level-1)%10 + 1
}

// Engine owns the three experience ledgers. The character entry always
// exists and starts at level 0; mastery and trait entries are created
// lazily on first write and removed when their owner is deleted.
type Engine struct {
	ledgers          map[sheet.ExperienceKind]map[string]*sheet.ExperienceRecord
	initialStatIndex int

	progress          events.Dispatcher[Progress]
	levelUps          events.Dispatcher[LevelUp]
	characterLevelUps events.Dispatcher[CharacterLevelUp]
	maxLevelReached   events.Dispatcher[MaxLevelReached]
}

// New returns an engine with an empty character ledger at level 0.
func New() *Engine {
	e := &Engine{}
	e.Reset()
	return e
}

// Reset clears every ledger back to the fresh-character state. The
// level-up rotation offset is preserved.
func (e *Engine) Reset() {
	e.ledgers = map[sheet.ExperienceKind]map[string]*sheet.ExperienceRecord{
		sheet.KindCharacter: {sheet.CharacterID: {Exp: 0, Level: 0}},
		sheet.KindMastery:   {},
		sheet.KindTrait:     {},
	}
}

// ProgressEvents exposes the per-mutation progress stream.
func (e *Engine) ProgressEvents() *events.Dispatcher[Progress] {
	return &e.progress
}

// LevelUps exposes the level-up stream for all ledgers.
func (e *Engine) LevelUps() *events.Dispatcher[LevelUp] {
	return &e.levelUps
}

// CharacterLevelUps exposes the character level-up stream with its
// primary stat target.
func (e *Engine) CharacterLevelUps() *events.Dispatcher[CharacterLevelUp] {
	return &e.characterLevelUps
}

// MaxLevelEvents exposes the one-shot max-level stream.
func (e *Engine) MaxLevelEvents() *events.Dispatcher[MaxLevelReached] {
	return &e.maxLevelReached
}

// SetInitialStat anchors the level-up rotation so that the character's
// first level-up targets the given primary group.
func (e *Engine) SetInitialStat(primary sheet.Primary) error {
	for i, p := range LevelUpRotation {
		if p == primary {
			e.initialStatIndex = i
			return nil
		}
	}
	return errors.InvalidArgumentf("invalid initial stat: %s", primary)
}

// InitialStat returns the primary group anchoring the level-up rotation.
func (e *Engine) InitialStat() sheet.Primary {
	return LevelUpRotation[e.initialStatIndex]
}

// CurrentLevelUpIndex returns the rotation index the next character
// level-up will target.
func (e *Engine) CurrentLevelUpIndex() int {
	level := e.ledgers[sheet.KindCharacter][sheet.CharacterID].Level
	return (e.initialStatIndex + level) % len(LevelUpRotation)
}

// NextLevelUpTarget returns the primary group the next character level-up
// will grant auto points to.
func (e *Engine) NextLevelUpTarget() sheet.Primary {
	return LevelUpRotation[e.CurrentLevelUpIndex()]
}

// AddExperience credits amount to the ledger entry, cascading through as
// many level-ups as the thresholds allow and publishing one LevelUp per
// crossing. A negative amount only debits the ledger; it never lowers the
// level. The return value reports whether the entry sits at MaxLevel
// after a positive add.
func (e *Engine) AddExperience(kind sheet.ExperienceKind, identifier string, amount int64) (bool, error) {
	ledger, ok := e.ledgers[kind]
	if !ok {
		return false, errors.InvalidArgumentf("invalid experience type: %s", kind)
	}

	if kind == sheet.KindCharacter {
		identifier = sheet.CharacterID
	}

	rec, ok := ledger[identifier]
	if !ok {
		rec = &sheet.ExperienceRecord{Exp: 0, Level: 1}
		ledger[identifier] = rec
	}

	originalLevel := rec.Level
	rec.Exp += amount

	if amount >= 0 {
		for rec.Level < MaxLevel && rec.Exp >= MaxExp(rec.Level) {
			rec.Exp -= MaxExp(rec.Level)
			rec.Level++
			e.levelUps.Publish(LevelUp{Kind: kind, ID: identifier, NewLevel: rec.Level})

			if kind == sheet.KindCharacter {
				idx := (e.initialStatIndex + rec.Level - 1) % len(LevelUpRotation)
				e.characterLevelUps.Publish(CharacterLevelUp{
					NewLevel: rec.Level,
					Primary:  LevelUpRotation[idx],
				})
			}
		}

		if rec.Level == MaxLevel {
			if limit := MaxExp(MaxLevel) - 1; rec.Exp > limit {
				rec.Exp = limit
			}
			if originalLevel != MaxLevel {
				e.maxLevelReached.Publish(MaxLevelReached{Kind: kind, ID: identifier})
			}
		}
	}

	e.progress.Publish(Progress{Kind: kind, ID: identifier, Exp: rec.Exp, NextLevelExp: MaxExp(rec.Level)})
	return rec.Level == MaxLevel && amount > 0, nil
}

// SetExperience overwrites a trait ledger entry with a cumulative total.
// Trait levels are derived from the total by the traits engine, so the
// stored level is pinned to 1. Other ledgers reject the direct set.
func (e *Engine) SetExperience(kind sheet.ExperienceKind, identifier string, amount int64) error {
	if _, ok := e.ledgers[kind]; !ok {
		return errors.InvalidArgumentf("invalid experience type: %s", kind)
	}
	if kind != sheet.KindTrait {
		return errors.InvalidArgumentf("set experience is only supported for traits, got %s", kind)
	}

	e.ledgers[kind][identifier] = &sheet.ExperienceRecord{Exp: amount, Level: 1}
	e.progress.Publish(Progress{Kind: kind, ID: identifier, Exp: amount, NextLevelExp: MaxExp(1)})
	return nil
}

// RenameEntry moves a mastery or trait ledger entry to a new identifier,
// keeping its progress. Renaming an absent entry is a no-op.
func (e *Engine) RenameEntry(kind sheet.ExperienceKind, oldID, newID string) error {
	ledger, ok := e.ledgers[kind]
	if !ok {
		return errors.InvalidArgumentf("invalid experience type: %s", kind)
	}
	if kind == sheet.KindCharacter {
		return errors.InvalidArgument("character ledger entry cannot be renamed")
	}

	if rec, ok := ledger[oldID]; ok && oldID != newID {
		delete(ledger, oldID)
		ledger[newID] = rec
	}
	return nil
}

// RemoveExperience deletes a ledger entry and publishes a zeroed progress
// event. Removing an absent entry is a no-op.
func (e *Engine) RemoveExperience(kind sheet.ExperienceKind, identifier string) error {
	ledger, ok := e.ledgers[kind]
	if !ok {
		return errors.InvalidArgumentf("invalid experience type: %s", kind)
	}

	if _, ok := ledger[identifier]; ok {
		delete(ledger, identifier)
		e.progress.Publish(Progress{Kind: kind, ID: identifier})
	}
	return nil
}

// Record returns the ledger entry for (kind, identifier). Unknown
// identifiers read as the lenient default {exp: 0, level: 1}; an unknown
// kind is a hard failure.
func (e *Engine) Record(kind sheet.ExperienceKind, identifier string) (sheet.ExperienceRecord, error) {
	ledger, ok := e.ledgers[kind]
	if !ok {
		return sheet.ExperienceRecord{}, errors.InvalidArgumentf("invalid experience type: %s", kind)
	}

	if kind == sheet.KindCharacter {
		identifier = sheet.CharacterID
	}

	if rec, ok := ledger[identifier]; ok {
		return *rec, nil
	}
	return sheet.ExperienceRecord{Exp: 0, Level: 1}, nil
}

// Level returns the level of the ledger entry with Record's semantics.
func (e *Engine) Level(kind sheet.ExperienceKind, identifier string) (int, error) {
	rec, err := e.Record(kind, identifier)
	if err != nil {
		return 0, err
	}
	return rec.Level, nil
}

// Export returns a deep copy of all ledgers in snapshot form.
func (e *Engine) Export() map[sheet.ExperienceKind]map[string]sheet.ExperienceRecord {
	out := make(map[sheet.ExperienceKind]map[string]sheet.ExperienceRecord, len(e.ledgers))
	for kind, ledger := range e.ledgers {
		entries := make(map[string]sheet.ExperienceRecord, len(ledger))
		for id, rec := range ledger {
			entries[id] = *rec
		}
		out[kind] = entries
	}
	return out
}

// Load replaces the ledgers with snapshot data. A nil snapshot resets.
// The character entry is recreated if the snapshot lacks it.
func (e *Engine) Load(data map[sheet.ExperienceKind]map[string]sheet.ExperienceRecord) {
	e.Reset()
	if data == nil {
		return
	}

	for kind, entries := range data {
		ledger, ok := e.ledgers[kind]
		if !ok {
			continue
		}
		for id, rec := range entries {
			r := rec
			ledger[id] = &r
		}
	}

	char := e.ledgers[sheet.KindCharacter][sheet.CharacterID]
	e.progress.Publish(Progress{
		Kind:         sheet.KindCharacter,
		ID:           sheet.CharacterID,
		Exp:          char.Exp,
		NextLevelExp: MaxExp(char.Level),
	})
}
