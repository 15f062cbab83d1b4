// Package character provides the interface for character persistence.
package character

//go:generate mockgen -destination=mock/mock_repository.go -package=charactermock github.com/litforge/progression-api/internal/repositories/character Repository

import (
	"context"
	"time"

	"github.com/litforge/progression-api/internal/diff"
)

// Record is the persisted character document. Base is the snapshot taken
// at creation and never changes afterwards; Current tracks the live
// state. Checkpoints store only diffs against Base.
type Record struct {
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Version   int        `json:"version"`
	Base      diff.Map   `json:"base"`
	Current   diff.Map   `json:"current"`
	Chapters  []*Chapter `json:"chapters"`
}

// Chapter groups named checkpoints, in creation order.
type Chapter struct {
	Name        string        `json:"name"`
	Checkpoints []*Checkpoint `json:"checkpoints"`
}

// Checkpoint is a saved point inside a chapter. Diff is the structural
// delta from the record's base snapshot.
type Checkpoint struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Diff      diff.Map  `json:"diff"`
}

// Repository defines the interface for character persistence.
type Repository interface {
	// Create stores a new character record.
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.AlreadyExists if a character with the same name exists
	// Returns errors.Internal for storage failures
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a character by name.
	// Returns errors.InvalidArgument for empty names
	// Returns errors.NotFound if the character doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Update overwrites an existing character record, bumping its
	// version and updated_at.
	// Returns errors.NotFound if the character doesn't exist
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// Delete removes a character by name.
	// Returns errors.NotFound if the character doesn't exist
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// List returns all stored character names, sorted.
	List(ctx context.Context, input ListInput) (*ListOutput, error)

	// AddChapter appends an empty chapter to a character.
	// Returns errors.AlreadyExists if the chapter name is taken
	AddChapter(ctx context.Context, input AddChapterInput) (*AddChapterOutput, error)

	// RemoveChapter deletes a chapter and its checkpoints.
	// Returns errors.NotFound if the chapter doesn't exist
	RemoveChapter(ctx context.Context, input RemoveChapterInput) (*RemoveChapterOutput, error)

	// AddCheckpoint stores a snapshot as a diff against the character's
	// base, inside the named chapter.
	AddCheckpoint(ctx context.Context, input AddCheckpointInput) (*AddCheckpointOutput, error)

	// UpdateCheckpoint renames a checkpoint and/or replaces its snapshot.
	UpdateCheckpoint(ctx context.Context, input UpdateCheckpointInput) (*UpdateCheckpointOutput, error)

	// RemoveCheckpoint deletes a checkpoint by id.
	RemoveCheckpoint(ctx context.Context, input RemoveCheckpointInput) (*RemoveCheckpointOutput, error)

	// GetCheckpoint reconstructs a checkpoint's full snapshot by applying
	// its stored diff onto the character's base.
	GetCheckpoint(ctx context.Context, input GetCheckpointInput) (*GetCheckpointOutput, error)
}

// CreateInput defines the input for creating a character.
type CreateInput struct {
	Name string
	Base diff.Map
}

// CreateOutput defines the output for creating a character.
type CreateOutput struct {
	Record *Record
}

// GetInput defines the input for getting a character.
type GetInput struct {
	Name string
}

// GetOutput defines the output for getting a character.
type GetOutput struct {
	Record *Record
}

// UpdateInput defines the input for updating a character.
type UpdateInput struct {
	Record *Record
}

// UpdateOutput defines the output for updating a character.
type UpdateOutput struct {
	Record *Record
}

// DeleteInput defines the input for deleting a character.
type DeleteInput struct {
	Name string
}

// DeleteOutput defines the output for deleting a character.
type DeleteOutput struct{}

// ListInput defines the input for listing characters.
type ListInput struct{}

// ListOutput defines the output for listing characters.
type ListOutput struct {
	Names []string
}

// AddChapterInput defines the input for adding a chapter.
type AddChapterInput struct {
	Character string
	Chapter   string
}

// AddChapterOutput defines the output for adding a chapter.
type AddChapterOutput struct {
	Record *Record
}

// RemoveChapterInput defines the input for removing a chapter.
type RemoveChapterInput struct {
	Character string
	Chapter   string
}

// RemoveChapterOutput defines the output for removing a chapter.
type RemoveChapterOutput struct {
	Record *Record
}

// AddCheckpointInput defines the input for saving a checkpoint.
type AddCheckpointInput struct {
	Character string
	Chapter   string
	Name      string
	Snapshot  diff.Map
}

// AddCheckpointOutput defines the output for saving a checkpoint.
type AddCheckpointOutput struct {
	Checkpoint *Checkpoint
}

// UpdateCheckpointInput defines the input for updating a checkpoint.
// A nil Snapshot keeps the stored diff; an empty Name keeps the name.
type UpdateCheckpointInput struct {
	Character    string
	Chapter      string
	CheckpointID string
	Name         string
	Snapshot     diff.Map
}

// UpdateCheckpointOutput defines the output for updating a checkpoint.
type UpdateCheckpointOutput struct {
	Checkpoint *Checkpoint
}

// RemoveCheckpointInput defines the input for removing a checkpoint.
type RemoveCheckpointInput struct {
	Character    string
	Chapter      string
	CheckpointID string
}

// RemoveCheckpointOutput defines the output for removing a checkpoint.
type RemoveCheckpointOutput struct{}

// GetCheckpointInput defines the input for reading a checkpoint snapshot.
type GetCheckpointInput struct {
	Character    string
	Chapter      string
	CheckpointID string
}

// GetCheckpointOutput defines the output for reading a checkpoint snapshot.
type GetCheckpointOutput struct {
	Checkpoint *Checkpoint
	Snapshot   diff.Map
}
