package testinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
)

// Redshift speaks the Postgres wire protocol, so integration tests run the
// pipeline against plain Postgres with a Postgres-compatible catalog.
const (
	PostgresImage    = "postgres:16-alpine"
	PostgresUser     = "dwhuser"
	PostgresPassword = "Passw0rd"
	PostgresDB       = "dwh"
)

type PostgresContainer struct {
	*postgres.PostgresContainer
	Cluster dwh.ClusterConfig
}

func StartSimplePostgres(ctx context.Context) (*PostgresContainer, error) {
	ctr, err := postgres.Run(ctx,
		PostgresImage,
		postgres.WithUsername(PostgresUser),
		postgres.WithPassword(PostgresPassword),
		postgres.WithDatabase(PostgresDB),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres: %w", err)
	}

	host, err := ctr.Host(ctx)
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get container host: %w", err)
	}
	port, err := ctr.MappedPort(ctx, "5432/tcp")
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped port: %w", err)
	}

	return &PostgresContainer{
		PostgresContainer: ctr,
		Cluster: dwh.ClusterConfig{
			Host:     host,
			DBName:   PostgresDB,
			User:     PostgresUser,
			Password: PostgresPassword,
			Port:     port.Int(),
			SSLMode:  "disable",
			AppName:  dwh.DefaultAppName,
		},
	}, nil
}
