package infra_redis_init

import (
	"log/slog"
	"testing"

	"github.com/DMQQ/movie-picker-server/internal/config"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type RedisInitSuite struct {
	suite.Suite
}

func (s *RedisInitSuite) TestUnreachable(t provider.T) {
	t.Parallel()

	client, err := EstablishConn(config.RedisCache{Host: "127.0.0.1", Port: "1"}, slog.Default())

	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
}

func TestRedisInitSuite(t *testing.T) {
	suite.RunSuite(t, new(RedisInitSuite))
}
