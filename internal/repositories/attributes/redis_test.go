package attributes

import (
	"context"
	"errors"
	"testing"

	apperr "github.com/ProfessorProf/valor-bot-discord/internal/errors"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type RedisRepoTestSuite struct {
	suite.Suite
	mockClient *redis.Client
	mock       redismock.ClientMock
	repo       Repository
	ctx        context.Context
}

func (s *RedisRepoTestSuite) SetupTest() {
	s.mockClient, s.mock = redismock.NewClientMock()
	s.repo = NewRedis(s.mockClient)
	s.ctx = context.Background()
}

func (s *RedisRepoTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

func TestRedisRepoTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepoTestSuite))
}

func (s *RedisRepoTestSuite) TestSet() {
	s.mock.ExpectTxPipeline()
	s.mock.ExpectHSet("sheet:e1", "hp", "25").SetVal(1)
	s.mock.ExpectSAdd("sheet:index", "e1").SetVal(1)
	s.mock.ExpectTxPipelineExec()

	s.NoError(s.repo.Set(s.ctx, "e1", "hp", "25"))
}

func (s *RedisRepoTestSuite) TestGet() {
	s.mock.ExpectSIsMember("sheet:index", "e1").SetVal(true)
	s.mock.ExpectHGet("sheet:e1", "hp").SetVal("25")

	value, err := s.repo.Get(s.ctx, "e1", "hp")
	s.NoError(err)
	s.Equal("25", value)
}

func (s *RedisRepoTestSuite) TestGetUnsetAttribute() {
	s.mock.ExpectSIsMember("sheet:index", "e1").SetVal(true)
	s.mock.ExpectHGet("sheet:e1", "st").RedisNil()

	value, err := s.repo.Get(s.ctx, "e1", "st")
	s.NoError(err)
	s.Equal("", value)
}

func (s *RedisRepoTestSuite) TestGetMissingEntity() {
	s.mock.ExpectSIsMember("sheet:index", "ghost").SetVal(false)

	_, err := s.repo.Get(s.ctx, "ghost", "hp")
	s.True(apperr.IsNotFound(err))
}

func (s *RedisRepoTestSuite) TestGetDependencyError() {
	s.mock.ExpectSIsMember("sheet:index", "e1").SetErr(errors.New("redis down"))

	_, err := s.repo.Get(s.ctx, "e1", "hp")
	s.Error(err)
}

func (s *RedisRepoTestSuite) TestList() {
	s.mock.ExpectSIsMember("sheet:index", "e1").SetVal(true)
	s.mock.ExpectHGetAll("sheet:e1").SetVal(map[string]string{"hp": "25", "st": "12"})

	attrs, err := s.repo.List(s.ctx, "e1")
	s.NoError(err)
	s.Equal("12", attrs["st"])
}

func (s *RedisRepoTestSuite) TestListEntities() {
	s.mock.ExpectSMembers("sheet:index").SetVal([]string{"e1", "e2"})

	ids, err := s.repo.ListEntities(s.ctx)
	s.NoError(err)
	s.ElementsMatch([]string{"e1", "e2"}, ids)
}

func (s *RedisRepoTestSuite) TestListAll() {
	s.mock.ExpectSMembers("sheet:index").SetVal([]string{"e1"})
	s.mock.ExpectHGetAll("sheet:e1").SetVal(map[string]string{"hp": "25"})

	all, err := s.repo.ListAll(s.ctx)
	s.NoError(err)
	s.Equal("25", all["e1"]["hp"])
}
