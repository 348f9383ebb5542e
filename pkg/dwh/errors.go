package dwh

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	err := loader.Run(ctx, catalog)
//	if errors.Is(err, dwh.ErrExecutionFailed) {
//	    // a copy or insert statement failed
//	}
var (
	// ErrInvalidConfig indicates the settings are missing or invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionFailed indicates the warehouse connection could not be opened.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrExecutionFailed indicates a fail-fast statement failed.
	ErrExecutionFailed = errors.New("execution failed")

	// ErrSchemaIncomplete indicates schema setup recorded statement failures
	// and the caller asked to treat that as an error.
	ErrSchemaIncomplete = errors.New("schema incomplete")

	// ErrCatalogInvalid indicates the statement catalog could not be built or loaded.
	ErrCatalogInvalid = errors.New("invalid statement catalog")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrExecutionFailed):
		return ExitExecutionFailed
	case errors.Is(err, ErrSchemaIncomplete):
		return ExitSchemaIncomplete
	case errors.Is(err, ErrCatalogInvalid):
		return ExitCatalogInvalid
	}

	// Cobra reports usage problems as plain errors
	errStr := err.Error()
	usagePatterns := []string{
		"unknown flag",
		"unknown shorthand flag",
		"unknown command",
		"accepts ",
		"invalid argument",
		"flag needs an argument",
	}
	for _, p := range usagePatterns {
		if strings.Contains(errStr, p) {
			return ExitUsageError
		}
	}

	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
