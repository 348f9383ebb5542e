package services

import (
	"context"

	"github.com/vvka-141/sparkify-dwh/internal/db"
	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
)

const separator = "------------------"

// executeBatch runs stmts in order on session, one commit per statement.
// Under PolicyFailFast it stops at the first failure. Under PolicyLenient it
// records the failure and continues, unless ctx is done.
func executeBatch(
	ctx context.Context,
	session dwh.Session,
	logger dwh.Logger,
	phase dwh.Phase,
	policy dwh.Policy,
	stmts []dwh.Statement,
) dwh.Report {
	report := dwh.Report{Phase: phase, Policy: policy, Total: len(stmts)}
	trace := tracesQueries(phase)

	for i, stmt := range stmts {
		if trace {
			logger.Info(separator)
			logger.Info("Processing query: %s", stmt.SQL)
		} else {
			logger.Verbose("%s [%d/%d] %s", phase, i+1, len(stmts), stmt.Name)
		}

		err := session.ExecCommit(ctx, stmt.SQL)
		report.Executed++

		if err != nil {
			failure := newFailure(phase, i, stmt, err)
			report.Failures = append(report.Failures, failure)
			logFailure(logger, &failure)

			if policy == dwh.PolicyFailFast || ctx.Err() != nil {
				return report
			}
			continue
		}

		if trace {
			logger.Info("%s processed OK.", stmt.SQL)
		}
	}

	return report
}

func newFailure(phase dwh.Phase, index int, stmt dwh.Statement, err error) dwh.StatementFailure {
	kind, state := db.Classify(err)
	return dwh.StatementFailure{
		Phase:     phase,
		Index:     index,
		Statement: stmt,
		Kind:      kind,
		SQLState:  state,
		Cause:     err,
	}
}

func logFailure(logger dwh.Logger, f *dwh.StatementFailure) {
	switch f.Phase {
	case dwh.PhaseDrop:
		logger.Error("Error: Issue dropping table: %s", f.Statement.SQL)
	case dwh.PhaseCreate:
		logger.Error("Error: Issue creating table: %s", f.Statement.SQL)
	default:
		logger.Error("Error: Issue processing query: %s", dwh.Preview(f.Statement.SQL))
	}
	logger.Error("%v", f)
}

// tracesQueries reports whether a phase logs every query around its execution.
func tracesQueries(phase dwh.Phase) bool {
	return phase == dwh.PhaseCopy || phase == dwh.PhaseInsert
}
