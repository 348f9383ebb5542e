package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
)

// recordingSession records every statement handed to it, in order.
// Statements listed in failOn return the mapped error instead of committing.
type recordingSession struct {
	executed  []string
	committed []string
	failOn    map[string]error
	closed    int
}

func (s *recordingSession) ExecCommit(_ context.Context, sql string) error {
	s.executed = append(s.executed, sql)
	if err, ok := s.failOn[sql]; ok {
		return err
	}
	s.committed = append(s.committed, sql)
	return nil
}

func (s *recordingSession) Close() error {
	s.closed++
	return nil
}

// cancelingSession cancels the run while executing cancelOn, the way an
// interrupt lands in the middle of a statement.
type cancelingSession struct {
	*recordingSession
	cancelOn string
	cancel   context.CancelFunc
}

func (s *cancelingSession) ExecCommit(ctx context.Context, sql string) error {
	if sql == s.cancelOn {
		s.executed = append(s.executed, sql)
		s.cancel()
		return ctx.Err()
	}
	return s.recordingSession.ExecCommit(ctx, sql)
}

type mockConnector struct {
	session  *recordingSession
	err      error
	connects int
}

func (m *mockConnector) Connect(_ context.Context) (dwh.Session, error) {
	m.connects++
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

type mockLogger struct {
	lines []string
}

func (m *mockLogger) Verbose(format string, args ...interface{}) {
	m.lines = append(m.lines, "VERBOSE "+fmt.Sprintf(format, args...))
}

func (m *mockLogger) Info(format string, args ...interface{}) {
	m.lines = append(m.lines, "INFO "+fmt.Sprintf(format, args...))
}

func (m *mockLogger) Error(format string, args ...interface{}) {
	m.lines = append(m.lines, "ERROR "+fmt.Sprintf(format, args...))
}

func (m *mockLogger) contains(substr string) bool {
	for _, line := range m.lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func (m *mockLogger) count(prefix string) int {
	n := 0
	for _, line := range m.lines {
		if strings.HasPrefix(line, prefix) {
			n++
		}
	}
	return n
}

func stmts(sqls ...string) []dwh.Statement {
	out := make([]dwh.Statement, len(sqls))
	for i, sql := range sqls {
		out[i] = dwh.Statement{Name: fmt.Sprintf("s%d", i+1), SQL: sql}
	}
	return out
}

func testCatalog() *dwh.Catalog {
	return &dwh.Catalog{
		Drop:   stmts("DROP TABLE IF EXISTS a", "DROP TABLE IF EXISTS b"),
		Create: stmts("CREATE TABLE a (id INT)", "CREATE TABLE b (id INT)"),
		Copy:   stmts("COPY staging_events FROM 's3://x'", "COPY staging_songs FROM 's3://y'"),
		Insert: stmts("INSERT INTO songplays SELECT 1", "INSERT INTO users SELECT 1", "INSERT INTO time SELECT 1"),
	}
}
