package infra_pg_init

import (
	"log/slog"
	"testing"

	"github.com/DMQQ/movie-picker-server/internal/config"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type PostgresInitSuite struct {
	suite.Suite
}

func validConfig() config.Postgres {
	return config.Postgres{
		Host:     "127.0.0.1",
		Port:     "1",
		User:     "admin",
		Password: "shared",
		DBName:   "picker",
		SSLMode:  "disable",
	}
}

func (s *PostgresInitSuite) TestDSN(t provider.T) {
	t.Parallel()

	assert.Equal(t,
		"host=127.0.0.1 port=1 user=admin password=shared dbname=picker sslmode=disable",
		DSN(validConfig()))
}

func (s *PostgresInitSuite) TestUnreachable(t provider.T) {
	t.Parallel()

	db, err := EstablishConn(validConfig(), slog.Default())

	require.Error(t, err)
	assert.Nil(t, db)
}

func TestPostgresInitSuite(t *testing.T) {
	suite.RunSuite(t, new(PostgresInitSuite))
}
