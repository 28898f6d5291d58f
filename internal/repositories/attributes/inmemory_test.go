package attributes

import (
	"context"
	"testing"

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

func (s *InMemoryTestSuite) TestSetAndGet() {
	s.NoError(s.repo.Set(s.ctx, "e1", "hp", "25"))

	value, err := s.repo.Get(s.ctx, "e1", "hp")
	s.NoError(err)
	s.Equal("25", value)

	// unset attributes read as empty, not as errors
	value, err = s.repo.Get(s.ctx, "e1", "st")
	s.NoError(err)
	s.Equal("", value)
}

func (s *InMemoryTestSuite) TestGetMissingEntity() {
	_, err := s.repo.Get(s.ctx, "ghost", "hp")
	s.True(apperr.IsNotFound(err))
}

func (s *InMemoryTestSuite) TestListReturnsCopy() {
	s.NoError(s.repo.Set(s.ctx, "e1", "hp", "25"))

	attrs, err := s.repo.List(s.ctx, "e1")
	s.NoError(err)
	attrs["hp"] = "tampered"

	value, err := s.repo.Get(s.ctx, "e1", "hp")
	s.NoError(err)
	s.Equal("25", value)
}

func (s *InMemoryTestSuite) TestListEntitiesSorted() {
	s.NoError(s.repo.Set(s.ctx, "b", "hp", "1"))
	s.NoError(s.repo.Set(s.ctx, "a", "hp", "1"))

	ids, err := s.repo.ListEntities(s.ctx)
	s.NoError(err)
	s.Equal([]string{"a", "b"}, ids)
}

func (s *InMemoryTestSuite) TestListAll() {
	s.NoError(s.repo.Set(s.ctx, "e1", "hp", "25"))
	s.NoError(s.repo.Set(s.ctx, "e2", "hp", "30"))

	all, err := s.repo.ListAll(s.ctx)
	s.NoError(err)
	s.Len(all, 2)
	s.Equal("30", all["e2"]["hp"])
}

func (s *InMemoryTestSuite) TestGetInt() {
	s.NoError(s.repo.Set(s.ctx, "e1", "hp", "25"))
	s.NoError(s.repo.Set(s.ctx, "e1", "notes", "free text"))

	v, err := GetInt(s.ctx, s.repo, "e1", "hp", 0)
	s.NoError(err)
	s.Equal(25, v)

	v, err = GetInt(s.ctx, s.repo, "e1", "notes", 7)
	s.NoError(err)
	s.Equal(7, v)

	v, err = GetInt(s.ctx, s.repo, "e1", "missing", 3)
	s.NoError(err)
	s.Equal(3, v)
}
