package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
)

// SQLSession implements dwh.Session on one pinned database/sql connection.
// Each statement runs in its own transaction which is committed before
// ExecCommit returns.
//
// Thread-Safety: NOT safe for concurrent use. A session has exactly one caller.
type SQLSession struct {
	db        *sql.DB
	conn      *sql.Conn
	closeOnce sync.Once
	closeErr  error
}

// NewSQLSession pins a single connection from db for the lifetime of the session.
// The session takes ownership of db and closes it in Close.
func NewSQLSession(ctx context.Context, db *sql.DB) (*SQLSession, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	return &SQLSession{db: db, conn: conn}, nil
}

// ExecCommit executes query inside a transaction and commits it.
// If execution fails the transaction is rolled back so the next statement
// starts from a clean session.
func (s *SQLSession) ExecCommit(ctx context.Context, query string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback failed: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}
	return nil
}

// Close returns the pinned connection and closes the handle.
func (s *SQLSession) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = errors.Join(s.conn.Close(), s.db.Close())
	})
	return s.closeErr
}

var _ dwh.Session = (*SQLSession)(nil)
