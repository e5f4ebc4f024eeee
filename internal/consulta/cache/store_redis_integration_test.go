//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"jceconsulta/internal/jce"
	"jceconsulta/pkg/testutil/containers"
)

type RedisStoreIntegrationSuite struct {
	suite.Suite
	ctx   context.Context
	redis *containers.RedisContainer
	store *RedisStore
}

func TestRedisStoreIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, &RedisStoreIntegrationSuite{redis: containers.NewRedisContainer(t)})
}

func (s *RedisStoreIntegrationSuite) SetupTest() {
	s.ctx = context.Background()
	s.Require().NoError(s.redis.FlushAll(s.ctx))
	s.store = NewRedisStore(s.redis.Client, 30*time.Minute)
}

func (s *RedisStoreIntegrationSuite) TestGetMiss() {
	_, found, err := s.store.Get(s.ctx, "00113918205")
	s.Require().NoError(err)
	s.False(found)
}

func (s *RedisStoreIntegrationSuite) TestPutThenGet() {
	rec := &jce.Record{
		Nombres:     "JUAN CARLOS",
		Apellido1:   "PEREZ",
		EstadoCivil: "C",
		Success:     "true",
	}
	s.Require().NoError(s.store.Put(s.ctx, "00113918205", rec))

	got, found, err := s.store.Get(s.ctx, "00113918205")
	s.Require().NoError(err)
	s.Require().True(found)
	s.Equal("JUAN CARLOS", got.Nombres)
	s.Equal("CASADO", got.EstadoCivilDescripcion())
}

func (s *RedisStoreIntegrationSuite) TestEntriesCarryTTL() {
	rec := &jce.Record{Nombres: "JUAN", Apellido1: "PEREZ", Success: "true"}
	s.Require().NoError(s.store.Put(s.ctx, "00113918205", rec))

	ttl, err := s.redis.Client.TTL(s.ctx, "consulta:ced:00113918205").Result()
	s.Require().NoError(err)
	s.Positive(ttl)
	s.LessOrEqual(ttl, 30*time.Minute)
}
