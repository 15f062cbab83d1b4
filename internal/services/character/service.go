// Package character defines the interface for character progression
// operations.
package character

//go:generate mockgen -destination=mock/mock_service.go -package=charactermock github.com/litforge/progression-api/internal/services/character Service

import (
	"context"

	"github.com/litforge/progression-api/internal/engine/arts"
	"github.com/litforge/progression-api/internal/engine/traits"
	"github.com/litforge/progression-api/internal/entities/sheet"
)

// Service defines the interface for character progression operations.
type Service interface {
	// Character lifecycle
	CreateCharacter(ctx context.Context, input *CreateCharacterInput) (*CreateCharacterOutput, error)
	GetCharacter(ctx context.Context, input *GetCharacterInput) (*GetCharacterOutput, error)
	ListCharacters(ctx context.Context, input *ListCharactersInput) (*ListCharactersOutput, error)
	DeleteCharacter(ctx context.Context, input *DeleteCharacterInput) (*DeleteCharacterOutput, error)

	// Stats
	UpdateStat(ctx context.Context, input *UpdateStatInput) (*UpdateStatOutput, error)
	SetInitialStat(ctx context.Context, input *SetInitialStatInput) (*SetInitialStatOutput, error)
	GetEnergy(ctx context.Context, input *GetEnergyInput) (*GetEnergyOutput, error)

	// Experience
	AddExperience(ctx context.Context, input *AddExperienceInput) (*AddExperienceOutput, error)

	// Arts
	AddArt(ctx context.Context, input *AddArtInput) (*AddArtOutput, error)
	UpdateArt(ctx context.Context, input *UpdateArtInput) (*UpdateArtOutput, error)
	RemoveArt(ctx context.Context, input *RemoveArtInput) (*RemoveArtOutput, error)
	ListArts(ctx context.Context, input *ListArtsInput) (*ListArtsOutput, error)
	CalculateArt(ctx context.Context, input *CalculateArtInput) (*CalculateArtOutput, error)

	// Traits
	AddTrait(ctx context.Context, input *AddTraitInput) (*AddTraitOutput, error)
	RemoveTrait(ctx context.Context, input *RemoveTraitInput) (*RemoveTraitOutput, error)
	ListTraits(ctx context.Context, input *ListTraitsInput) (*ListTraitsOutput, error)
	AddTraitExperience(ctx context.Context, input *AddTraitExperienceInput) (*AddTraitExperienceOutput, error)

	// Chapters and checkpoints
	AddChapter(ctx context.Context, input *AddChapterInput) (*AddChapterOutput, error)
	RemoveChapter(ctx context.Context, input *RemoveChapterInput) (*RemoveChapterOutput, error)
	SaveCheckpoint(ctx context.Context, input *SaveCheckpointInput) (*SaveCheckpointOutput, error)
	UpdateCheckpoint(ctx context.Context, input *UpdateCheckpointInput) (*UpdateCheckpointOutput, error)
	RemoveCheckpoint(ctx context.Context, input *RemoveCheckpointInput) (*RemoveCheckpointOutput, error)
	RestoreCheckpoint(ctx context.Context, input *RestoreCheckpointInput) (*RestoreCheckpointOutput, error)
}

// Character lifecycle types

// CreateCharacterInput defines the request for creating a character.
// InitialStat picks which primary group the first level-up targets.
type CreateCharacterInput struct {
	Name        string
	InitialStat sheet.Primary
}

// CreateCharacterOutput defines the response for creating a character.
type CreateCharacterOutput struct {
	Snapshot *sheet.Snapshot
}

// GetCharacterInput defines the request for getting a character.
type GetCharacterInput struct {
	Name string
}

// GetCharacterOutput defines the response for getting a character.
type GetCharacterOutput struct {
	Snapshot *sheet.Snapshot
}

// ListCharactersInput defines the request for listing characters.
type ListCharactersInput struct{}

// ListCharactersOutput defines the response for listing characters.
type ListCharactersOutput struct {
	Names []string
}

// DeleteCharacterInput defines the request for deleting a character.
type DeleteCharacterInput struct {
	Name string
}

// DeleteCharacterOutput defines the response for deleting a character.
type DeleteCharacterOutput struct{}

// Stats types

// UpdateStatInput defines the request for spending free or training
// points on a secondary stat.
type UpdateStatInput struct {
	Character string
	Stat      string
	Category  sheet.PointCategory
	Delta     int
}

// UpdateStatOutput defines the response for a stat update. Rejected is
// true when the mutation would underflow a pool or the stat; the sheet
// is untouched in that case.
type UpdateStatOutput struct {
	Rejected    bool
	Stat        sheet.SecondaryStat
	FreePoints  int
	TrainPoints int
}

// SetInitialStatInput defines the request for setting the level-up
// rotation's starting primary.
type SetInitialStatInput struct {
	Character string
	Primary   sheet.Primary
}

// SetInitialStatOutput defines the response for setting the initial stat.
type SetInitialStatOutput struct {
	NextTarget sheet.Primary
}

// GetEnergyInput defines the request for reading the energy pools.
type GetEnergyInput struct {
	Character string
}

// GetEnergyOutput defines the response for reading the energy pools.
type GetEnergyOutput struct {
	Pools map[sheet.EnergyKind]sheet.EnergyPool
}

// Experience types

// AddExperienceInput defines the request for crediting experience to a
// ledger entry. For the character ledger the identifier is ignored.
type AddExperienceInput struct {
	Character  string
	Kind       sheet.ExperienceKind
	Identifier string
	Amount     int64
}

// AddExperienceOutput defines the response for crediting experience.
// MaxLevelReached is true only on the call that crosses level 100.
type AddExperienceOutput struct {
	Record          sheet.ExperienceRecord
	MaxLevelReached bool
}

// Arts types

// AddArtInput defines the request for adding (or replacing) an art.
type AddArtInput struct {
	Character string
	Art       sheet.Art
}

// AddArtOutput defines the response for adding an art.
type AddArtOutput struct {
	Art sheet.Art
}

// UpdateArtInput defines the request for updating an art, optionally
// renaming it. Name addresses the existing art; Art carries the new
// values.
type UpdateArtInput struct {
	Character string
	Name      string
	Art       sheet.Art
}

// UpdateArtOutput defines the response for updating an art.
type UpdateArtOutput struct {
	Art sheet.Art
}

// RemoveArtInput defines the request for removing an art and its
// mastery ledger entry.
type RemoveArtInput struct {
	Character string
	Name      string
}

// RemoveArtOutput defines the response for removing an art.
type RemoveArtOutput struct{}

// ListArtsInput defines the request for listing arts.
type ListArtsInput struct {
	Character string
}

// ListArtsOutput defines the response for listing arts.
type ListArtsOutput struct {
	Arts []sheet.Art
}

// CalculateArtInput defines the request for computing an art's power
// boost.
type CalculateArtInput struct {
	Character string
	Name      string
}

// CalculateArtOutput defines the response for computing an art's power
// boost, with every intermediate of the formula.
type CalculateArtOutput struct {
	Result *arts.Result
}

// Traits types

// AddTraitInput defines the request for adding (or replacing) a trait.
type AddTraitInput struct {
	Character string
	Trait     sheet.Trait
}

// AddTraitOutput defines the response for adding a trait.
type AddTraitOutput struct {
	Trait sheet.Trait
}

// RemoveTraitInput defines the request for removing a trait and its
// ledger entry.
type RemoveTraitInput struct {
	Character string
	Name      string
}

// RemoveTraitOutput defines the response for removing a trait.
type RemoveTraitOutput struct{}

// ListTraitsInput defines the request for listing traits.
type ListTraitsInput struct {
	Character string
}

// ListTraitsOutput defines the response for listing traits.
type ListTraitsOutput struct {
	Traits []sheet.Trait
}

// AddTraitExperienceInput defines the request for crediting trait
// experience, either as a flat amount or as a percentage of the
// current tier's cost. Percent wins when both are set.
type AddTraitExperienceInput struct {
	Character string
	Name      string
	Amount    int64
	Percent   float64
}

// AddTraitExperienceOutput defines the response for crediting trait
// experience.
type AddTraitExperienceOutput struct {
	Tier traits.Tier
}

// Chapter and checkpoint types

// AddChapterInput defines the request for adding a chapter.
type AddChapterInput struct {
	Character string
	Chapter   string
}

// AddChapterOutput defines the response for adding a chapter.
type AddChapterOutput struct{}

// RemoveChapterInput defines the request for removing a chapter.
type RemoveChapterInput struct {
	Character string
	Chapter   string
}

// RemoveChapterOutput defines the response for removing a chapter.
type RemoveChapterOutput struct{}

// SaveCheckpointInput defines the request for saving the character's
// current state as a named checkpoint inside a chapter.
type SaveCheckpointInput struct {
	Character string
	Chapter   string
	Name      string
}

// SaveCheckpointOutput defines the response for saving a checkpoint.
type SaveCheckpointOutput struct {
	CheckpointID string
}

// UpdateCheckpointInput defines the request for renaming a checkpoint
// and/or overwriting it with the character's current state.
type UpdateCheckpointInput struct {
	Character       string
	Chapter         string
	CheckpointID    string
	Name            string
	RefreshSnapshot bool
}

// UpdateCheckpointOutput defines the response for updating a checkpoint.
type UpdateCheckpointOutput struct{}

// RemoveCheckpointInput defines the request for removing a checkpoint.
type RemoveCheckpointInput struct {
	Character    string
	Chapter      string
	CheckpointID string
}

// RemoveCheckpointOutput defines the response for removing a checkpoint.
type RemoveCheckpointOutput struct{}

// RestoreCheckpointInput defines the request for loading a checkpoint's
// state back onto the character.
type RestoreCheckpointInput struct {
	Character    string
	Chapter      string
	CheckpointID string
}

// RestoreCheckpointOutput defines the response for restoring a
// checkpoint.
type RestoreCheckpointOutput struct {
	Snapshot *sheet.Snapshot
}
