package db

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
)

// SQLSTATE codes the classifier names explicitly.
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgCodeSyntaxError         = "42601"
	pgCodeUndefinedTable      = "42P01"
	pgCodeUndefinedObject     = "42704"
	pgCodeUndefinedColumn     = "42703"
	pgCodeDuplicateTable      = "42P07"
	pgCodeDuplicateObject     = "42710"
	pgCodeInsufficientPrivile = "42501"
	pgCodeQueryCanceled       = "57014"

	// Redshift reports stl_load_errors failures and S3 access problems as XX000.
	pgCodeInternalError = "XX000"
)

// Classify maps a statement error to a FailureKind and its SQLSTATE, if any.
// The result is used for reporting only.
func Classify(err error) (dwh.FailureKind, string) {
	if err == nil {
		return dwh.KindUnknown, ""
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return dwh.KindCanceled, ""
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifyPgError(pgErr), pgErr.Code
	}

	if isNetworkError(err) {
		return dwh.KindConnection, ""
	}

	return dwh.KindUnknown, ""
}

func classifyPgError(pgErr *pgconn.PgError) dwh.FailureKind {
	code := pgErr.Code

	switch code {
	case pgCodeSyntaxError:
		return dwh.KindSyntax
	case pgCodeUndefinedTable, pgCodeUndefinedObject, pgCodeUndefinedColumn:
		return dwh.KindUndefinedObject
	case pgCodeDuplicateTable, pgCodeDuplicateObject:
		return dwh.KindDuplicateObject
	case pgCodeInsufficientPrivile:
		return dwh.KindPermission
	case pgCodeQueryCanceled:
		return dwh.KindCanceled
	case pgCodeInternalError:
		msg := strings.ToLower(pgErr.Message)
		if strings.Contains(msg, "load") || strings.Contains(msg, "s3") || strings.Contains(msg, "copy") {
			return dwh.KindDataLoad
		}
		return dwh.KindUnknown
	}

	switch {
	// Class 08 - Connection Exception, Class 57 - Operator Intervention
	case strings.HasPrefix(code, "08"), strings.HasPrefix(code, "57"):
		return dwh.KindConnection
	// Class 22 - Data Exception, Class 23 - Integrity Constraint Violation
	case strings.HasPrefix(code, "22"), strings.HasPrefix(code, "23"):
		return dwh.KindDataLoad
	// Class 42 - Syntax Error or Access Rule Violation
	case strings.HasPrefix(code, "42"):
		return dwh.KindSyntax
	}

	return dwh.KindUnknown
}

// isNetworkError checks for network-level errors and their common messages.
func isNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	errMsg := strings.ToLower(err.Error())
	patterns := []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"server closed the connection",
		"unexpected eof",
		"conn closed",
		"bad connection",
	}
	for _, p := range patterns {
		if strings.Contains(errMsg, p) {
			return true
		}
	}
	return false
}
