package dwh

import (
	"errors"
	"fmt"
)

// FailureKind is a coarse classification of a warehouse error.
// It is informational only; nothing is retried based on it.
type FailureKind int

const (
	KindUnknown FailureKind = iota
	KindConnection
	KindSyntax
	KindUndefinedObject
	KindDuplicateObject
	KindPermission
	KindDataLoad
	KindCanceled
)

// String returns a human-readable string representation of the FailureKind.
func (k FailureKind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindSyntax:
		return "syntax"
	case KindUndefinedObject:
		return "undefined object"
	case KindDuplicateObject:
		return "duplicate object"
	case KindPermission:
		return "permission"
	case KindDataLoad:
		return "data load"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// StatementFailure records one statement the warehouse rejected.
type StatementFailure struct {
	Phase     Phase
	Index     int
	Statement Statement
	Kind      FailureKind
	SQLState  string
	Cause     error
}

func (f *StatementFailure) Error() string {
	name := f.Statement.Name
	if name == "" {
		name = fmt.Sprintf("#%d", f.Index+1)
	}
	if f.SQLState != "" {
		return fmt.Sprintf("%s statement %s failed (%s, SQLSTATE %s): %v", f.Phase, name, f.Kind, f.SQLState, f.Cause)
	}
	return fmt.Sprintf("%s statement %s failed (%s): %v", f.Phase, name, f.Kind, f.Cause)
}

func (f *StatementFailure) Unwrap() error {
	return f.Cause
}

// Report summarizes one executed batch.
type Report struct {
	Phase    Phase
	Policy   Policy
	Total    int
	Executed int
	Failures []StatementFailure
}

// Succeeded is the number of statements that executed and committed.
func (r *Report) Succeeded() int {
	return r.Executed - len(r.Failures)
}

// OK reports whether every statement of the batch committed.
func (r *Report) OK() bool {
	return len(r.Failures) == 0 && r.Executed == r.Total
}

// Err joins all failures, or returns nil when there are none.
func (r *Report) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failures))
	for i := range r.Failures {
		errs = append(errs, &r.Failures[i])
	}
	return errors.Join(errs...)
}

// SchemaReport is what the schema manager hands back to its caller.
type SchemaReport struct {
	Drop   Report
	Create Report
	Stage  Stage
}

// Failures returns the drop failures followed by the create failures.
func (r *SchemaReport) Failures() []StatementFailure {
	out := make([]StatementFailure, 0, len(r.Drop.Failures)+len(r.Create.Failures))
	out = append(out, r.Drop.Failures...)
	return append(out, r.Create.Failures...)
}

// Err joins drop and create failures.
func (r *SchemaReport) Err() error {
	return errors.Join(r.Drop.Err(), r.Create.Err())
}
