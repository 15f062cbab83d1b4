// Package session implements the character service. Each request
// hydrates the progression engines from the stored snapshot, applies the
// mutation with all cross-engine events delivered synchronously, and
// persists the regathered state.
package session

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/litforge/progression-api/internal/diff"
	"github.com/litforge/progression-api/internal/engine/traits"
	"github.com/litforge/progression-api/internal/entities/sheet"
	"github.com/litforge/progression-api/internal/errors"
	charrepo "github.com/litforge/progression-api/internal/repositories/character"
	charservice "github.com/litforge/progression-api/internal/services/character"
)

// Config holds the dependencies for the session orchestrator.
type Config struct {
	CharacterRepo charrepo.Repository
}

// Validate ensures all required dependencies are provided.
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.CharacterRepo == nil {
		vb.RequiredField("CharacterRepo")
	}
	return vb.Build()
}

type orchestrator struct {
	repo charrepo.Repository
}

// NewOrchestrator creates a session orchestrator with the provided
// dependencies.
func NewOrchestrator(cfg *Config) (charservice.Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &orchestrator{repo: cfg.CharacterRepo}, nil
}

func snapshotToMap(snap *sheet.Snapshot) (diff.Map, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal snapshot")
	}
	var m diff.Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "failed to convert snapshot")
	}
	return m, nil
}

func snapshotFromMap(m diff.Map) (*sheet.Snapshot, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal snapshot map")
	}
	var snap sheet.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrapf(err, "failed to parse snapshot")
	}
	return &snap, nil
}

// hydrate loads the character record and stands up a live engine set
// from its current snapshot.
func (o *orchestrator) hydrate(ctx context.Context, name string) (*charrepo.Record, *engineSet, error) {
	out, err := o.repo.Get(ctx, charrepo.GetInput{Name: name})
	if err != nil {
		return nil, nil, err
	}

	snap, err := snapshotFromMap(out.Record.Current)
	if err != nil {
		return nil, nil, err
	}

	es := newEngineSet()
	es.load(snap)
	return out.Record, es, nil
}

// persist regathers the engine state and writes it back as the record's
// current snapshot.
func (o *orchestrator) persist(ctx context.Context, rec *charrepo.Record, es *engineSet) (*sheet.Snapshot, error) {
	snap := es.snapshot(rec.Name)
	m, err := snapshotToMap(snap)
	if err != nil {
		return nil, err
	}

	rec.Current = m
	if _, err := o.repo.Update(ctx, charrepo.UpdateInput{Record: rec}); err != nil {
		return nil, err
	}
	return snap, nil
}

func (o *orchestrator) CreateCharacter(ctx context.Context, input *charservice.CreateCharacterInput) (*charservice.CreateCharacterOutput, error) {
	if input.Name == "" {
		return nil, errors.InvalidArgument("character name cannot be empty")
	}

	initial := input.InitialStat
	if initial == "" {
		initial = sheet.PrimaryBody
	}

	es := newEngineSet()
	if err := es.exp.SetInitialStat(initial); err != nil {
		return nil, err
	}

	snap := es.snapshot(input.Name)
	m, err := snapshotToMap(snap)
	if err != nil {
		return nil, err
	}

	if _, err := o.repo.Create(ctx, charrepo.CreateInput{Name: input.Name, Base: m}); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "created character",
		"name", input.Name,
		"initial_stat", string(initial))

	return &charservice.CreateCharacterOutput{Snapshot: snap}, nil
}

func (o *orchestrator) GetCharacter(ctx context.Context, input *charservice.GetCharacterInput) (*charservice.GetCharacterOutput, error) {
	out, err := o.repo.Get(ctx, charrepo.GetInput{Name: input.Name})
	if err != nil {
		return nil, err
	}

	snap, err := snapshotFromMap(out.Record.Current)
	if err != nil {
		return nil, err
	}
	return &charservice.GetCharacterOutput{Snapshot: snap}, nil
}

func (o *orchestrator) ListCharacters(ctx context.Context, _ *charservice.ListCharactersInput) (*charservice.ListCharactersOutput, error) {
	out, err := o.repo.List(ctx, charrepo.ListInput{})
	if err != nil {
		return nil, err
	}
	return &charservice.ListCharactersOutput{Names: out.Names}, nil
}

func (o *orchestrator) DeleteCharacter(ctx context.Context, input *charservice.DeleteCharacterInput) (*charservice.DeleteCharacterOutput, error) {
	if _, err := o.repo.Delete(ctx, charrepo.DeleteInput{Name: input.Name}); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "deleted character", "name", input.Name)
	return &charservice.DeleteCharacterOutput{}, nil
}

func (o *orchestrator) UpdateStat(ctx context.Context, input *charservice.UpdateStatInput) (*charservice.UpdateStatOutput, error) {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("stat", input.Stat, vb)
	if input.Category != sheet.CategoryFree && input.Category != sheet.CategoryTrain {
		vb.InvalidField("category", "must be free or train")
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	rec, es, err := o.hydrate(ctx, input.Character)
	if err != nil {
		return nil, err
	}

	if _, ok := es.stats.Stat(input.Stat); !ok {
		return nil, errors.InvalidArgumentf("unknown stat: %s", input.Stat)
	}

	accepted := es.stats.Update(input.Stat, input.Category, input.Delta)
	if accepted {
		if _, err := o.persist(ctx, rec, es); err != nil {
			return nil, err
		}
	}

	stat, _ := es.stats.Stat(input.Stat)
	return &charservice.UpdateStatOutput{
		Rejected:    !accepted,
		Stat:        stat,
		FreePoints:  es.stats.FreePoints(),
		TrainPoints: es.stats.TrainPoints(),
	}, nil
}

func (o *orchestrator) SetInitialStat(ctx context.Context, input *charservice.SetInitialStatInput) (*charservice.SetInitialStatOutput, error) {
	rec, es, err := o.hydrate(ctx, input.Character)
	if err != nil {
		return nil, err
	}

	if err := es.exp.SetInitialStat(input.Primary); err != nil {
		return nil, err
	}
	if _, err := o.persist(ctx, rec, es); err != nil {
		return nil, err
	}

	return &charservice.SetInitialStatOutput{NextTarget: es.exp.NextLevelUpTarget()}, nil
}

func (o *orchestrator) GetEnergy(ctx context.Context, input *charservice.GetEnergyInput) (*charservice.GetEnergyOutput, error) {
	_, es, err := o.hydrate(ctx, input.Character)
	if err != nil {
		return nil, err
	}
	return &charservice.GetEnergyOutput{Pools: es.energy.Pools()}, nil
}

func (o *orchestrator) AddExperience(ctx context.Context, input *charservice.AddExperienceInput) (*charservice.AddExperienceOutput, error) {
	rec, es, err := o.hydrate(ctx, input.Character)
	if err != nil {
		return nil, err
	}

	before := es.stats.Level()
	reached, err := es.exp.AddExperience(input.Kind, input.Identifier, input.Amount)
	if err != nil {
		return nil, err
	}

	if _, err := o.persist(ctx, rec, es); err != nil {
		return nil, err
	}

	if after := es.stats.Level(); after > before {
		slog.InfoContext(ctx, "character leveled up",
			"name", input.Character,
			"from", before,
			"to", after)
	}

	record, err := es.exp.Record(input.Kind, input.Identifier)
	if err != nil {
		return nil, err
	}

	return &charservice.AddExperienceOutput{
		Record:          record,
		MaxLevelReached: reached,
	}, nil
}

func (o *orchestrator) AddArt(ctx context.Context, input *charservice.AddArtInput) (*charservice.AddArtOutput, error) {
	rec, es, err := o.hydrate(ctx, input.Character)
	if err != nil {
		return nil, err
	}

	if err := es.arts.Add(input.Art); err != nil {
		return nil, err
	}
	if _, err := o.persist(ctx, rec, es); err != nil {
		return nil, err
	}

	art, _ := es.arts.Get(input.Art.Name)
	return &charservice.AddArtOutput{Art: art}, nil
}

func (o *orchestrator) UpdateArt(ctx context.Context, input *charservice.UpdateArtInput) (*charservice.UpdateArtOutput, error) {
	rec, es, err := o.hydrate(ctx, input.Character)
	if err != nil {
		return nil, err
	}

	if err := es.arts.Rename(input.Name, input.Art); err != nil {
		return nil, err
	}
	if input.Name != input.Art.Name {
		// Mastery progress follows the art to its new name.
		if err := es.exp.RenameEntry(sheet.KindMastery, input.Name, input.Art.Name); err != nil {
			return nil, err
		}
	}
	if _, err := o.persist(ctx, rec, es); err != nil {
		return nil, err
	}

	art, _ := es.arts.Get(input.Art.Name)
	return &charservice.UpdateArtOutput{Art: art}, nil
}

func (o *orchestrator) RemoveArt(ctx context.Context, input *charservice.RemoveArtInput) (*charservice.RemoveArtOutput, error) {
	rec, es, err := o.hydrate(ctx, input.Character)
	if err != nil {
		return nil, err
	}

	if !es.arts.Remove(input.Name) {
		return nil, errors.NotFoundf("art %q not found", input.Name)
	}
	if err := es.exp.RemoveExperience(sheet.KindMastery, input.Name); err != nil {
		return nil, err
	}
	if _, err := o.persist(ctx, rec, es); err != nil {
		return nil, err
	}

	return &charservice.RemoveArtOutput{}, nil
}

func (o *orchestrator) ListArts(ctx context.Context, input *charservice.ListArtsInput) (*charservice.ListArtsOutput, error) {
	_, es, err := o.hydrate(ctx, input.Character)
	if err != nil {
		return nil, err
	}
	return &charservice.ListArtsOutput{Arts: es.arts.List()}, nil
}

func (o *orchestrator) CalculateArt(ctx context.Context, input *charservice.CalculateArtInput) (*charservice.CalculateArtOutput, error) {
	_, es, err := o.hydrate(ctx, input.Character)
	if err != nil {
		return nil, err
	}

	result := es.arts.Calculate(input.Name)
	if result == nil {
		return nil, errors.NotFoundf("art %q not found", input.Name)
	}
	return &charservice.CalculateArtOutput{Result: result}, nil
}

func (o *orchestrator) AddTrait(ctx context.Context, input *charservice.AddTraitInput) (*charservice.AddTraitOutput, error) {
	rec, es, err := o.hydrate(ctx, input.Character)
	if err != nil {
		return nil, err
	}

	if err := es.traits.Add(input.Trait); err != nil {
		return nil, err
	}
	if _, err := o.persist(ctx, rec, es); err != nil {
		return nil, err
	}

	trait, _ := es.traits.Get(input.Trait.Name)
	return &charservice.AddTraitOutput{Trait: trait}, nil
}

func (o *orchestrator) RemoveTrait(ctx context.Context, input *charservice.RemoveTraitInput) (*charservice.RemoveTraitOutput, error) {
	rec, es, err := o.hydrate(ctx, input.Character)
	if err != nil {
		return nil, err
	}

	if !es.traits.Remove(input.Name) {
		return nil, errors.NotFoundf("trait %q not found", input.Name)
	}
	if _, err := o.persist(ctx, rec, es); err != nil {
		return nil, err
	}

	return &charservice.RemoveTraitOutput{}, nil
}

func (o *orchestrator) ListTraits(ctx context.Context, input *charservice.ListTraitsInput) (*charservice.ListTraitsOutput, error) {
	_, es, err := o.hydrate(ctx, input.Character)
	if err != nil {
		return nil, err
	}
	return &charservice.ListTraitsOutput{Traits: es.traits.List()}, nil
}

func (o *orchestrator) AddTraitExperience(ctx context.Context, input *charservice.AddTraitExperienceInput) (*charservice.AddTraitExperienceOutput, error) {
	rec, es, err := o.hydrate(ctx, input.Character)
	if err != nil {
		return nil, err
	}

	var tier traits.Tier
	if input.Percent != 0 {
		tier, err = es.traits.AddExperiencePercent(input.Name, input.Percent)
	} else {
		tier, err = es.traits.AddExperience(input.Name, input.Amount)
	}
	if err != nil {
		return nil, err
	}

	if _, err := o.persist(ctx, rec, es); err != nil {
		return nil, err
	}
	return &charservice.AddTraitExperienceOutput{Tier: tier}, nil
}

func (o *orchestrator) AddChapter(ctx context.Context, input *charservice.AddChapterInput) (*charservice.AddChapterOutput, error) {
	if _, err := o.repo.AddChapter(ctx, charrepo.AddChapterInput{
		Character: input.Character,
		Chapter:   input.Chapter,
	}); err != nil {
		return nil, err
	}
	return &charservice.AddChapterOutput{}, nil
}

func (o *orchestrator) RemoveChapter(ctx context.Context, input *charservice.RemoveChapterInput) (*charservice.RemoveChapterOutput, error) {
	if _, err := o.repo.RemoveChapter(ctx, charrepo.RemoveChapterInput{
		Character: input.Character,
		Chapter:   input.Chapter,
	}); err != nil {
		return nil, err
	}
	return &charservice.RemoveChapterOutput{}, nil
}

func (o *orchestrator) SaveCheckpoint(ctx context.Context, input *charservice.SaveCheckpointInput) (*charservice.SaveCheckpointOutput, error) {
	rec, err := o.repo.Get(ctx, charrepo.GetInput{Name: input.Character})
	if err != nil {
		return nil, err
	}

	out, err := o.repo.AddCheckpoint(ctx, charrepo.AddCheckpointInput{
		Character: input.Character,
		Chapter:   input.Chapter,
		Name:      input.Name,
		Snapshot:  rec.Record.Current,
	})
	if err != nil {
		return nil, err
	}

	return &charservice.SaveCheckpointOutput{CheckpointID: out.Checkpoint.ID}, nil
}

func (o *orchestrator) UpdateCheckpoint(ctx context.Context, input *charservice.UpdateCheckpointInput) (*charservice.UpdateCheckpointOutput, error) {
	var snapshot diff.Map
	if input.RefreshSnapshot {
		rec, err := o.repo.Get(ctx, charrepo.GetInput{Name: input.Character})
		if err != nil {
			return nil, err
		}
		snapshot = rec.Record.Current
	}

	if _, err := o.repo.UpdateCheckpoint(ctx, charrepo.UpdateCheckpointInput{
		Character:    input.Character,
		Chapter:      input.Chapter,
		CheckpointID: input.CheckpointID,
		Name:         input.Name,
		Snapshot:     snapshot,
	}); err != nil {
		return nil, err
	}
	return &charservice.UpdateCheckpointOutput{}, nil
}

func (o *orchestrator) RemoveCheckpoint(ctx context.Context, input *charservice.RemoveCheckpointInput) (*charservice.RemoveCheckpointOutput, error) {
	if _, err := o.repo.RemoveCheckpoint(ctx, charrepo.RemoveCheckpointInput{
		Character:    input.Character,
		Chapter:      input.Chapter,
		CheckpointID: input.CheckpointID,
	}); err != nil {
		return nil, err
	}
	return &charservice.RemoveCheckpointOutput{}, nil
}

func (o *orchestrator) RestoreCheckpoint(ctx context.Context, input *charservice.RestoreCheckpointInput) (*charservice.RestoreCheckpointOutput, error) {
	out, err := o.repo.GetCheckpoint(ctx, charrepo.GetCheckpointInput{
		Character:    input.Character,
		Chapter:      input.Chapter,
		CheckpointID: input.CheckpointID,
	})
	if err != nil {
		return nil, err
	}

	snap, err := snapshotFromMap(out.Snapshot)
	if err != nil {
		return nil, err
	}

	// Rehydrate through the engines so derived values are recomputed
	// before the restored state is persisted.
	rec, err := o.repo.Get(ctx, charrepo.GetInput{Name: input.Character})
	if err != nil {
		return nil, err
	}

	es := newEngineSet()
	es.load(snap)

	restored, err := o.persist(ctx, rec.Record, es)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "restored checkpoint",
		"name", input.Character,
		"chapter", input.Chapter,
		"checkpoint_id", input.CheckpointID)

	return &charservice.RestoreCheckpointOutput{Snapshot: restored}, nil
}
