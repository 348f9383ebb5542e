package dwh

import "context"

// Session is the statement-execution handle held for one phase.
// A session owns exactly one warehouse connection and is used by a single caller.
type Session interface {
	// ExecCommit executes sql in its own transaction and commits it.
	// On failure the transaction is rolled back before returning.
	ExecCommit(ctx context.Context, sql string) error

	// Close releases the connection. Safe to call more than once.
	Close() error
}

// Connector opens warehouse sessions.
type Connector interface {
	// Connect opens and verifies a new session.
	// The caller must Close the returned session.
	Connect(ctx context.Context) (Session, error)
}

// CredentialsResolver renders the authorization clause of a COPY statement.
type CredentialsResolver interface {
	// CopyCredentials returns e.g. "iam_role 'arn:aws:iam::123:role/x'".
	CopyCredentials(ctx context.Context) (string, error)
}
