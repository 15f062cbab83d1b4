package character

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"

	redis "github.com/redis/go-redis/v9"

	"github.com/litforge/progression-api/internal/diff"
	"github.com/litforge/progression-api/internal/errors"
	"github.com/litforge/progression-api/internal/pkg/clock"
	"github.com/litforge/progression-api/internal/pkg/idgen"
	redisclient "github.com/litforge/progression-api/internal/redis"
)

const (
	characterKeyPrefix = "character:"
	characterIndexKey  = "characters"

	// Error messages
	errNameEmpty       = "character name cannot be empty"
	errChapterEmpty    = "chapter name cannot be empty"
	errCheckpointEmpty = "checkpoint id cannot be empty"
	errRecordNil       = "record cannot be nil"
)

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
	idgen  idgen.Generator
}

// RedisConfig contains configuration for the Redis character repository.
type RedisConfig struct {
	Client      redisclient.Client
	Clock       clock.Clock
	IDGenerator idgen.Generator
}

// Validate validates the RedisConfig.
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Client == nil {
		return errors.InvalidArgument("client cannot be nil")
	}
	return nil
}

// NewRedis creates a new Redis-backed character repository.
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}
	gen := cfg.IDGenerator
	if gen == nil {
		gen = idgen.NewPrefixed("ckpt")
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  c,
		idgen:  gen,
	}, nil
}

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Name == "" {
		return nil, errors.InvalidArgument(errNameEmpty)
	}

	key := characterKeyPrefix + input.Name

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("character %q already exists", input.Name)
	}

	now := r.clock.Now().UTC()
	rec := &Record{
		Name:      input.Name,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
		Base:      input.Base,
		Current:   input.Base,
		Chapters:  []*Chapter{},
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal character record")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0) // characters never expire
	pipe.SAdd(ctx, characterIndexKey, input.Name)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to create character")
	}

	return &CreateOutput{Record: rec}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	rec, err := r.load(ctx, input.Name)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Record: rec}, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Record == nil {
		return nil, errors.InvalidArgument(errRecordNil)
	}
	if input.Record.Name == "" {
		return nil, errors.InvalidArgument(errNameEmpty)
	}

	existing, err := r.load(ctx, input.Record.Name)
	if err != nil {
		return nil, err
	}

	rec := input.Record
	rec.CreatedAt = existing.CreatedAt
	rec.Base = existing.Base
	rec.Version = existing.Version + 1
	rec.UpdatedAt = r.clock.Now().UTC()

	if err := r.save(ctx, rec); err != nil {
		return nil, err
	}
	return &UpdateOutput{Record: rec}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.Name == "" {
		return nil, errors.InvalidArgument(errNameEmpty)
	}

	// Load first so missing characters surface as NotFound.
	if _, err := r.load(ctx, input.Name); err != nil {
		return nil, err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, characterKeyPrefix+input.Name)
	pipe.SRem(ctx, characterIndexKey, input.Name)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete character")
	}

	return &DeleteOutput{}, nil
}

func (r *redisRepository) List(ctx context.Context, _ ListInput) (*ListOutput, error) {
	names, err := r.client.SMembers(ctx, characterIndexKey).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list characters")
	}
	sort.Strings(names)

	slog.DebugContext(ctx, "listed characters", "count", len(names))
	return &ListOutput{Names: names}, nil
}

func (r *redisRepository) AddChapter(ctx context.Context, input AddChapterInput) (*AddChapterOutput, error) {
	if input.Chapter == "" {
		return nil, errors.InvalidArgument(errChapterEmpty)
	}

	rec, err := r.load(ctx, input.Character)
	if err != nil {
		return nil, err
	}

	if rec.chapter(input.Chapter) != nil {
		return nil, errors.AlreadyExistsf("chapter %q already exists", input.Chapter)
	}

	rec.Chapters = append(rec.Chapters, &Chapter{Name: input.Chapter, Checkpoints: []*Checkpoint{}})
	if err := r.touch(ctx, rec); err != nil {
		return nil, err
	}
	return &AddChapterOutput{Record: rec}, nil
}

func (r *redisRepository) RemoveChapter(ctx context.Context, input RemoveChapterInput) (*RemoveChapterOutput, error) {
	rec, err := r.load(ctx, input.Character)
	if err != nil {
		return nil, err
	}

	for i, ch := range rec.Chapters {
		if ch.Name == input.Chapter {
			rec.Chapters = append(rec.Chapters[:i], rec.Chapters[i+1:]...)
			if err := r.touch(ctx, rec); err != nil {
				return nil, err
			}
			return &RemoveChapterOutput{Record: rec}, nil
		}
	}
	return nil, errors.NotFoundf("chapter %q not found", input.Chapter)
}

func (r *redisRepository) AddCheckpoint(ctx context.Context, input AddCheckpointInput) (*AddCheckpointOutput, error) {
	if input.Name == "" {
		return nil, errors.InvalidArgument("checkpoint name cannot be empty")
	}

	rec, err := r.load(ctx, input.Character)
	if err != nil {
		return nil, err
	}

	ch := rec.chapter(input.Chapter)
	if ch == nil {
		return nil, errors.NotFoundf("chapter %q not found", input.Chapter)
	}

	now := r.clock.Now().UTC()
	cp := &Checkpoint{
		ID:        r.idgen.Generate(),
		Name:      input.Name,
		CreatedAt: now,
		UpdatedAt: now,
		Diff:      diff.Create(rec.Base, input.Snapshot),
	}
	ch.Checkpoints = append(ch.Checkpoints, cp)

	if err := r.touch(ctx, rec); err != nil {
		return nil, err
	}
	return &AddCheckpointOutput{Checkpoint: cp}, nil
}

func (r *redisRepository) UpdateCheckpoint(ctx context.Context, input UpdateCheckpointInput) (*UpdateCheckpointOutput, error) {
	rec, cp, err := r.checkpoint(ctx, input.Character, input.Chapter, input.CheckpointID)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		cp.Name = input.Name
	}
	if input.Snapshot != nil {
		cp.Diff = diff.Create(rec.Base, input.Snapshot)
	}
	cp.UpdatedAt = r.clock.Now().UTC()

	if err := r.touch(ctx, rec); err != nil {
		return nil, err
	}
	return &UpdateCheckpointOutput{Checkpoint: cp}, nil
}

func (r *redisRepository) RemoveCheckpoint(ctx context.Context, input RemoveCheckpointInput) (*RemoveCheckpointOutput, error) {
	rec, err := r.load(ctx, input.Character)
	if err != nil {
		return nil, err
	}

	ch := rec.chapter(input.Chapter)
	if ch == nil {
		return nil, errors.NotFoundf("chapter %q not found", input.Chapter)
	}

	for i, cp := range ch.Checkpoints {
		if cp.ID == input.CheckpointID {
			ch.Checkpoints = append(ch.Checkpoints[:i], ch.Checkpoints[i+1:]...)
			if err := r.touch(ctx, rec); err != nil {
				return nil, err
			}
			return &RemoveCheckpointOutput{}, nil
		}
	}
	return nil, errors.NotFoundf("checkpoint %q not found", input.CheckpointID)
}

func (r *redisRepository) GetCheckpoint(ctx context.Context, input GetCheckpointInput) (*GetCheckpointOutput, error) {
	rec, cp, err := r.checkpoint(ctx, input.Character, input.Chapter, input.CheckpointID)
	if err != nil {
		return nil, err
	}

	return &GetCheckpointOutput{
		Checkpoint: cp,
		Snapshot:   diff.Apply(rec.Base, cp.Diff),
	}, nil
}

func (r *redisRepository) load(ctx context.Context, name string) (*Record, error) {
	if name == "" {
		return nil, errors.InvalidArgument(errNameEmpty)
	}

	result, err := r.client.Get(ctx, characterKeyPrefix+name).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("character %q not found", name)
		}
		return nil, errors.Wrapf(err, "failed to get character")
	}

	var rec Record
	if err := json.Unmarshal([]byte(result), &rec); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal character record")
	}
	return &rec, nil
}

func (r *redisRepository) save(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal character record")
	}
	if err := r.client.Set(ctx, characterKeyPrefix+rec.Name, data, 0).Err(); err != nil {
		return errors.Wrapf(err, "failed to save character")
	}
	return nil
}

// touch bumps version metadata and persists the record.
func (r *redisRepository) touch(ctx context.Context, rec *Record) error {
	rec.Version++
	rec.UpdatedAt = r.clock.Now().UTC()
	return r.save(ctx, rec)
}

func (r *redisRepository) checkpoint(ctx context.Context, character, chapter, id string) (*Record, *Checkpoint, error) {
	if id == "" {
		return nil, nil, errors.InvalidArgument(errCheckpointEmpty)
	}

	rec, err := r.load(ctx, character)
	if err != nil {
		return nil, nil, err
	}

	ch := rec.chapter(chapter)
	if ch == nil {
		return nil, nil, errors.NotFoundf("chapter %q not found", chapter)
	}

	for _, cp := range ch.Checkpoints {
		if cp.ID == id {
			return rec, cp, nil
		}
	}
	return nil, nil, errors.NotFoundf("checkpoint %q not found", id)
}

func (rec *Record) chapter(name string) *Chapter {
	for _, ch := range rec.Chapters {
		if ch.Name == name {
			return ch
		}
	}
	return nil
}
