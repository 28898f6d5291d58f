package scenes

import (
	"context"
	"testing"

	"github.com/ProfessorProf/valor-bot-discord/internal/domain/scene"
	apperr "github.com/ProfessorProf/valor-bot-discord/internal/errors"
	"github.com/stretchr/testify/suite"
)

type InMemoryTestSuite struct {
	suite.Suite
	repo Repository
	ctx  context.Context
}

func (s *InMemoryTestSuite) SetupTest() {
	s.repo = NewInMemoryRepository()
	s.ctx = context.Background()
}

func TestInMemoryTestSuite(t *testing.T) {
	suite.Run(t, new(InMemoryTestSuite))
}

func (s *InMemoryTestSuite) TestCreateAndGet() {
	sc := scene.New("scene-1", "channel-1")
	sc.AddToken(&scene.Token{ID: "t1", EntityID: "e1", HP: scene.Bar{Value: 30, Max: 30}})

	s.NoError(s.repo.Create(s.ctx, sc))

	got, err := s.repo.Get(s.ctx, "scene-1")
	s.NoError(err)
	s.Equal("channel-1", got.ChannelID)
	s.Equal(30, got.Tokens["t1"].HP.Max)
}

func (s *InMemoryTestSuite) TestCreateDuplicate() {
	sc := scene.New("scene-1", "channel-1")
	s.NoError(s.repo.Create(s.ctx, sc))
	s.Error(s.repo.Create(s.ctx, sc))
}

func (s *InMemoryTestSuite) TestGetByChannel() {
	s.NoError(s.repo.Create(s.ctx, scene.New("scene-1", "channel-1")))

	got, err := s.repo.GetByChannel(s.ctx, "channel-1")
	s.NoError(err)
	s.Equal("scene-1", got.ID)

	_, err = s.repo.GetByChannel(s.ctx, "empty-channel")
	s.True(apperr.IsNotFound(err))
}

func (s *InMemoryTestSuite) TestUpdateIsolation() {
	sc := scene.New("scene-1", "channel-1")
	s.NoError(s.repo.Create(s.ctx, sc))

	// mutating the caller's copy after storing must not leak into the repo
	sc.Round = 99

	got, err := s.repo.Get(s.ctx, "scene-1")
	s.NoError(err)
	s.Equal(1, got.Round)

	got.Round = 5
	s.NoError(s.repo.Update(s.ctx, got))

	got2, err := s.repo.Get(s.ctx, "scene-1")
	s.NoError(err)
	s.Equal(5, got2.Round)
}

func (s *InMemoryTestSuite) TestUpdateMissing() {
	err := s.repo.Update(s.ctx, scene.New("ghost", "channel-9"))
	s.True(apperr.IsNotFound(err))
}

func (s *InMemoryTestSuite) TestDelete() {
	s.NoError(s.repo.Create(s.ctx, scene.New("scene-1", "channel-1")))
	s.NoError(s.repo.Delete(s.ctx, "scene-1"))

	_, err := s.repo.Get(s.ctx, "scene-1")
	s.True(apperr.IsNotFound(err))
	_, err = s.repo.GetByChannel(s.ctx, "channel-1")
	s.True(apperr.IsNotFound(err))
}
