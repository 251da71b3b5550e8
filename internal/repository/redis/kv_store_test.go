package redis_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/revplan/internal/repository/redis"
)

type KVStoreSuite struct {
	suite.Suite
	store *redis.KVStore
}

func (s *KVStoreSuite) SetupTest() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		s.T().Skip("REDIS_ADDR not set")
	}
	store, err := redis.Open(context.Background(), redis.Options{
		Addr:   addr,
		Prefix: "revplan-test:" + uuid.NewString() + ":",
	})
	s.Require().NoError(err)
	s.store = store
}

func (s *KVStoreSuite) TearDownTest() {
	if s.store == nil {
		return
	}
	ctx := context.Background()
	keys, err := s.store.Keys(ctx)
	s.Require().NoError(err)
	for _, key := range keys {
		s.Require().NoError(s.store.Delete(ctx, key))
	}
	s.Require().NoError(s.store.Close())
}

func (s *KVStoreSuite) TestRoundTrip() {
	ctx := context.Background()

	_, ok, err := s.store.Load(ctx, "settings")
	s.Require().NoError(err)
	s.Assert().False(ok)

	s.Require().NoError(s.store.SaveBatch(ctx, map[string][]byte{
		"settings": []byte(`{}`),
		"plan":     []byte(`{"days":{}}`),
	}))
	value, ok, err := s.store.Load(ctx, "plan")
	s.Require().NoError(err)
	s.Assert().True(ok)
	s.Assert().JSONEq(`{"days":{}}`, string(value))

	keys, err := s.store.Keys(ctx)
	s.Require().NoError(err)
	s.Assert().Equal([]string{"plan", "settings"}, keys)
}

func TestKVStoreSuite(t *testing.T) {
	suite.Run(t, new(KVStoreSuite))
}

func TestOpen_MissingAddr(t *testing.T) {
	_, err := redis.Open(context.Background(), redis.Options{})
	assert.Error(t, err)
}
