package character_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/litforge/progression-api/internal/diff"
	"github.com/litforge/progression-api/internal/errors"
	mockclock "github.com/litforge/progression-api/internal/pkg/clock/mock"
	"github.com/litforge/progression-api/internal/pkg/idgen"
	redisclient "github.com/litforge/progression-api/internal/redis"
	"github.com/litforge/progression-api/internal/repositories/character"
)

var testTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type RedisRepositoryTestSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	miniRedis *miniredis.Miniredis
	client    redisclient.Client
	mockClock *mockclock.MockClock
	repo      character.Repository
	ctx       context.Context
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.miniRedis = mr

	s.client = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	s.mockClock = mockclock.NewMockClock(s.ctrl)
	s.mockClock.EXPECT().Now().Return(testTime).AnyTimes()

	repo, err := character.NewRedis(&character.RedisConfig{
		Client:      s.client,
		Clock:       s.mockClock,
		IDGenerator: idgen.NewSequential("ckpt"),
	})
	s.Require().NoError(err)
	s.repo = repo

	s.ctx = context.Background()
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.miniRedis.Close()
	s.ctrl.Finish()
}

func (s *RedisRepositoryTestSuite) baseSnapshot() diff.Map {
	return diff.Map{
		"level": float64(1),
		"stats": diff.Map{
			"Strength": diff.Map{"auto": float64(1), "free": float64(0)},
		},
	}
}

func (s *RedisRepositoryTestSuite) create(name string) *character.Record {
	out, err := s.repo.Create(s.ctx, character.CreateInput{Name: name, Base: s.baseSnapshot()})
	s.Require().NoError(err)
	return out.Record
}

func (s *RedisRepositoryTestSuite) TestCreateAndGet() {
	rec := s.create("Azure Phoenix")
	s.Equal(1, rec.Version)
	s.Equal(testTime, rec.CreatedAt)

	s.True(s.miniRedis.Exists("character:Azure Phoenix"))

	got, err := s.repo.Get(s.ctx, character.GetInput{Name: "Azure Phoenix"})
	s.Require().NoError(err)
	s.Equal("Azure Phoenix", got.Record.Name)
	s.Equal(s.baseSnapshot(), got.Record.Base)
	s.Equal(s.baseSnapshot(), got.Record.Current)
	s.Empty(got.Record.Chapters)
}

func (s *RedisRepositoryTestSuite) TestCreateDuplicate() {
	s.create("Azure Phoenix")

	_, err := s.repo.Create(s.ctx, character.CreateInput{Name: "Azure Phoenix"})
	s.Require().Error(err)
	s.True(errors.IsAlreadyExists(err))
}

func (s *RedisRepositoryTestSuite) TestCreateEmptyName() {
	_, err := s.repo.Create(s.ctx, character.CreateInput{Name: ""})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *RedisRepositoryTestSuite) TestGetMissing() {
	_, err := s.repo.Get(s.ctx, character.GetInput{Name: "Nobody"})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestUpdateBumpsVersion() {
	rec := s.create("Azure Phoenix")

	current := s.baseSnapshot()
	current["level"] = float64(5)
	rec.Current = current
	out, err := s.repo.Update(s.ctx, character.UpdateInput{Record: rec})
	s.Require().NoError(err)
	s.Equal(2, out.Record.Version)
	s.Equal(testTime, out.Record.CreatedAt)

	got, err := s.repo.Get(s.ctx, character.GetInput{Name: "Azure Phoenix"})
	s.Require().NoError(err)
	s.Equal(float64(5), got.Record.Current["level"])
	// The creation snapshot never moves.
	s.Equal(s.baseSnapshot(), got.Record.Base)
	s.Equal(2, got.Record.Version)
}

func (s *RedisRepositoryTestSuite) TestUpdateMissing() {
	_, err := s.repo.Update(s.ctx, character.UpdateInput{Record: &character.Record{Name: "Nobody"}})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestDelete() {
	s.create("Azure Phoenix")

	_, err := s.repo.Delete(s.ctx, character.DeleteInput{Name: "Azure Phoenix"})
	s.Require().NoError(err)
	s.False(s.miniRedis.Exists("character:Azure Phoenix"))

	_, err = s.repo.Delete(s.ctx, character.DeleteInput{Name: "Azure Phoenix"})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))

	out, err := s.repo.List(s.ctx, character.ListInput{})
	s.Require().NoError(err)
	s.Empty(out.Names)
}

func (s *RedisRepositoryTestSuite) TestListSorted() {
	s.create("Zephyr")
	s.create("Azure Phoenix")

	out, err := s.repo.List(s.ctx, character.ListInput{})
	s.Require().NoError(err)
	s.Equal([]string{"Azure Phoenix", "Zephyr"}, out.Names)
}

func (s *RedisRepositoryTestSuite) TestChapters() {
	s.create("Azure Phoenix")

	out, err := s.repo.AddChapter(s.ctx, character.AddChapterInput{Character: "Azure Phoenix", Chapter: "Book One"})
	s.Require().NoError(err)
	s.Len(out.Record.Chapters, 1)
	s.Equal(2, out.Record.Version)

	_, err = s.repo.AddChapter(s.ctx, character.AddChapterInput{Character: "Azure Phoenix", Chapter: "Book One"})
	s.Require().Error(err)
	s.True(errors.IsAlreadyExists(err))

	removed, err := s.repo.RemoveChapter(s.ctx, character.RemoveChapterInput{Character: "Azure Phoenix", Chapter: "Book One"})
	s.Require().NoError(err)
	s.Empty(removed.Record.Chapters)

	_, err = s.repo.RemoveChapter(s.ctx, character.RemoveChapterInput{Character: "Azure Phoenix", Chapter: "Book One"})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestCheckpointStoresDiffOnly() {
	s.create("Azure Phoenix")
	_, err := s.repo.AddChapter(s.ctx, character.AddChapterInput{Character: "Azure Phoenix", Chapter: "Book One"})
	s.Require().NoError(err)

	snapshot := s.baseSnapshot()
	snapshot["level"] = float64(3)

	out, err := s.repo.AddCheckpoint(s.ctx, character.AddCheckpointInput{
		Character: "Azure Phoenix",
		Chapter:   "Book One",
		Name:      "after the tournament",
		Snapshot:  snapshot,
	})
	s.Require().NoError(err)
	s.Equal("ckpt_1", out.Checkpoint.ID)
	// Only the changed branch is stored.
	s.Equal(diff.Map{"level": float64(3)}, out.Checkpoint.Diff)

	got, err := s.repo.GetCheckpoint(s.ctx, character.GetCheckpointInput{
		Character:    "Azure Phoenix",
		Chapter:      "Book One",
		CheckpointID: "ckpt_1",
	})
	s.Require().NoError(err)
	s.Equal(float64(3), got.Snapshot["level"])
	// Unchanged branches come back from the base.
	s.Equal(s.baseSnapshot()["stats"], got.Snapshot["stats"])
}

func (s *RedisRepositoryTestSuite) TestUpdateCheckpoint() {
	s.create("Azure Phoenix")
	_, err := s.repo.AddChapter(s.ctx, character.AddChapterInput{Character: "Azure Phoenix", Chapter: "Book One"})
	s.Require().NoError(err)

	snapshot := s.baseSnapshot()
	snapshot["level"] = float64(3)
	added, err := s.repo.AddCheckpoint(s.ctx, character.AddCheckpointInput{
		Character: "Azure Phoenix", Chapter: "Book One", Name: "v1", Snapshot: snapshot,
	})
	s.Require().NoError(err)

	snapshot["level"] = float64(7)
	out, err := s.repo.UpdateCheckpoint(s.ctx, character.UpdateCheckpointInput{
		Character:    "Azure Phoenix",
		Chapter:      "Book One",
		CheckpointID: added.Checkpoint.ID,
		Name:         "v2",
		Snapshot:     snapshot,
	})
	s.Require().NoError(err)
	s.Equal("v2", out.Checkpoint.Name)
	s.Equal(diff.Map{"level": float64(7)}, out.Checkpoint.Diff)
}

func (s *RedisRepositoryTestSuite) TestRemoveCheckpoint() {
	s.create("Azure Phoenix")
	_, err := s.repo.AddChapter(s.ctx, character.AddChapterInput{Character: "Azure Phoenix", Chapter: "Book One"})
	s.Require().NoError(err)

	added, err := s.repo.AddCheckpoint(s.ctx, character.AddCheckpointInput{
		Character: "Azure Phoenix", Chapter: "Book One", Name: "v1", Snapshot: s.baseSnapshot(),
	})
	s.Require().NoError(err)

	_, err = s.repo.RemoveCheckpoint(s.ctx, character.RemoveCheckpointInput{
		Character: "Azure Phoenix", Chapter: "Book One", CheckpointID: added.Checkpoint.ID,
	})
	s.Require().NoError(err)

	_, err = s.repo.GetCheckpoint(s.ctx, character.GetCheckpointInput{
		Character: "Azure Phoenix", Chapter: "Book One", CheckpointID: added.Checkpoint.ID,
	})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}
