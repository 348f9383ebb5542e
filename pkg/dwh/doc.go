// Package dwh holds the public types of the Sparkify warehouse loader: settings,
// the statement catalog, the session and connector contracts, failure reports
// and the exit code mapping used by the CLI.
//
// A run walks a fixed state machine:
//
//	START → TABLES_DROPPED → TABLES_CREATED → STAGING_LOADED → ANALYTICS_LOADED → DONE
//
// The schema manager covers the first two transitions with PolicyLenient, the
// load orchestrator the next two with PolicyFailFast.
package dwh
