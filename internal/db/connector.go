package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
)

// OpenFunc opens a database handle from a libpq connection string.
type OpenFunc func(connStr string, logger dwh.Logger) (*sql.DB, error)

// StandardConnector implements dwh.Connector for username/password
// authentication against a Redshift (Postgres wire) endpoint.
// There is no retry: a failed connect is reported once.
type StandardConnector struct {
	config *dwh.ClusterConfig
	logger dwh.Logger
	open   OpenFunc
}

// NewStandardConnector creates a connector that opens sessions through pgx.
func NewStandardConnector(config *dwh.ClusterConfig, logger dwh.Logger) *StandardConnector {
	return &StandardConnector{config: config, logger: logger, open: OpenPgx}
}

// NewConnectorWithOpener creates a connector with a custom opener, mainly so
// tests can substitute go-sqlmock for the pgx driver.
func NewConnectorWithOpener(config *dwh.ClusterConfig, logger dwh.Logger, open OpenFunc) *StandardConnector {
	return &StandardConnector{config: config, logger: logger, open: open}
}

// Connect opens the handle, verifies it with a ping and pins one connection.
func (c *StandardConnector) Connect(ctx context.Context) (dwh.Session, error) {
	c.logger.Verbose("Connecting with %s", RedactedConnectionString(c.config))

	handle, err := c.open(BuildConnectionString(c.config), c.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse connection config: %w", dwh.ErrConnectionFailed, err)
	}
	handle.SetMaxOpenConns(1)
	handle.SetMaxIdleConns(1)

	if err := handle.PingContext(ctx); err != nil {
		handle.Close()
		return nil, fmt.Errorf("%w: %w", dwh.ErrConnectionFailed, wrapConnectionError(err, c.config.Host, c.config.Port, c.config.DBName))
	}

	session, err := NewSQLSession(ctx, handle)
	if err != nil {
		handle.Close()
		return nil, fmt.Errorf("%w: %w", dwh.ErrConnectionFailed, err)
	}
	return session, nil
}

// OpenPgx opens a database/sql handle backed by the pgx driver.
// Server notices (Redshift reports COPY row counts this way) go to the
// verbose log.
func OpenPgx(connStr string, logger dwh.Logger) (*sql.DB, error) {
	connConfig, err := pgx.ParseConfig(connStr)
	if err != nil {
		return nil, err
	}
	connConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		logger.Verbose("%s", notice.Message)
	}
	// Redshift does not support every statement-cache feature pgx uses by default.
	connConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	return stdlib.OpenDB(*connConfig), nil
}

// wrapConnectionError wraps raw driver connection errors with actionable guidance.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`connection refused to %s

Possible causes:
  - The cluster is paused or still being created
  - Wrong host or port (Redshift listens on 5439)
  - Security group does not allow inbound traffic on the port

Original error: %w`, addr, err)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		return fmt.Errorf(`cannot resolve host "%s"

Possible causes:
  - Cluster endpoint is misspelled (copy it from the console without the :port/db suffix)
  - The cluster was deleted
  - DNS is not configured or reachable

Original error: %w`, host, err)

	case strings.Contains(errStr, "password authentication failed"):
		return fmt.Errorf(`password authentication failed for database "%s"

Possible causes:
  - Wrong DB_PASSWORD in the settings file (or $DWH_PASSWORD)
  - Wrong DB_USER

Original error: %w`, database, err)

	case strings.Contains(errStr, "does not exist"):
		return fmt.Errorf(`database "%s" does not exist

Check DB_NAME in the [CLUSTER] section.

Original error: %w`, database, err)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf(`connection timed out to %s

Possible causes:
  - Cluster is not publicly accessible
  - Security group or VPC routing drops the packets
  - Wrong host/port

Original error: %w`, addr, err)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		return fmt.Errorf(`SSL/TLS connection error

Possible causes:
  - sslmode in the settings file does not match the cluster's require_ssl setting

Original error: %w`, err)

	default:
		return fmt.Errorf("failed to connect to warehouse: %w", err)
	}
}
