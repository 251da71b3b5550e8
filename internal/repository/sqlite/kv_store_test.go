package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/revplan/internal/repository"
	"github.com/vytor/revplan/internal/repository/sqlite"
	"github.com/vytor/revplan/internal/testutil"
)

type KVStoreSuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.KVStore
}

func (s *KVStoreSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewKVStore(s.db)
}

func (s *KVStoreSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *KVStoreSuite) TestLoad_Missing() {
	value, ok, err := s.repo.Load(context.Background(), "nope")
	s.Require().NoError(err)
	s.Assert().False(ok)
	s.Assert().Nil(value)
}

func (s *KVStoreSuite) TestSaveAndLoad() {
	ctx := context.Background()

	s.Require().NoError(s.repo.Save(ctx, repository.KeySettings, []byte(`{"session_length":30}`)))
	value, ok, err := s.repo.Load(ctx, repository.KeySettings)
	s.Require().NoError(err)
	s.Assert().True(ok)
	s.Assert().JSONEq(`{"session_length":30}`, string(value))

	s.Require().NoError(s.repo.Save(ctx, repository.KeySettings, []byte(`{"session_length":50}`)))
	value, _, err = s.repo.Load(ctx, repository.KeySettings)
	s.Require().NoError(err)
	s.Assert().JSONEq(`{"session_length":50}`, string(value), "save overwrites")
}

func (s *KVStoreSuite) TestSaveBatchKeysAndDelete() {
	ctx := context.Background()

	err := s.repo.SaveBatch(ctx, map[string][]byte{
		repository.KeyPlan:     []byte(`{"days":{}}`),
		repository.KeySessions: []byte(`[]`),
	})
	s.Require().NoError(err)

	keys, err := s.repo.Keys(ctx)
	s.Require().NoError(err)
	s.Assert().Equal([]string{repository.KeyPlan, repository.KeySessions}, keys)

	s.Require().NoError(s.repo.Delete(ctx, repository.KeyPlan))
	s.Require().NoError(s.repo.Delete(ctx, "never-there"))
	keys, err = s.repo.Keys(ctx)
	s.Require().NoError(err)
	s.Assert().Equal([]string{repository.KeySessions}, keys)
}

func TestKVStoreSuite(t *testing.T) {
	suite.Run(t, new(KVStoreSuite))
}
