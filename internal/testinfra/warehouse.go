package testinfra

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
)

// EnvTestConn points integration tests at an existing database instead of a
// container. Any libpq keyword/value string or postgres:// URL is accepted.
const EnvTestConn = "DWH_TEST_CONN"

var (
	testContainerOnce    sync.Once
	testContainerCluster dwh.ClusterConfig
	testContainerErr     error
)

func getOrStartTestContainer() (dwh.ClusterConfig, error) {
	testContainerOnce.Do(func() {
		container, err := StartSimplePostgres(context.Background())
		if err != nil {
			testContainerErr = err
			return
		}
		testContainerCluster = container.Cluster
	})
	return testContainerCluster, testContainerErr
}

// ClusterConfig returns the test warehouse cluster settings.
// Priority: DWH_TEST_CONN env var > auto-started testcontainer > skip test.
func ClusterConfig(t *testing.T) *dwh.ClusterConfig {
	t.Helper()

	if connString := os.Getenv(EnvTestConn); connString != "" {
		cfg, err := ParseConnString(connString)
		if err != nil {
			t.Fatalf("invalid %s: %v", EnvTestConn, err)
		}
		return cfg
	}

	cluster, err := getOrStartTestContainer()
	if err != nil {
		t.Skipf("%s not set and Docker unavailable: %v", EnvTestConn, err)
	}
	cfg := cluster
	return &cfg
}

// RequireWarehouse skips in short mode and otherwise returns ClusterConfig(t).
func RequireWarehouse(t *testing.T) *dwh.ClusterConfig {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	return ClusterConfig(t)
}

// ParseConnString converts a connection string into cluster settings.
func ParseConnString(connString string) (*dwh.ClusterConfig, error) {
	pgCfg, err := pgconn.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	sslMode := "require"
	if pgCfg.TLSConfig == nil {
		sslMode = "disable"
	}

	return &dwh.ClusterConfig{
		Host:     pgCfg.Host,
		DBName:   pgCfg.Database,
		User:     pgCfg.User,
		Password: pgCfg.Password,
		Port:     int(pgCfg.Port),
		SSLMode:  sslMode,
		AppName:  dwh.DefaultAppName,
	}, nil
}
