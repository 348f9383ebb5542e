package dwh

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess          = 0  // Command completed successfully
	ExitGeneralError     = 1  // Unknown or unclassified error
	ExitUsageError       = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic            = 3  // Internal panic (unexpected crash)
	ExitConfigError      = 10 // Invalid settings file or environment
	ExitConnectionError  = 11 // Failed to connect to the warehouse
	ExitExecutionFailed  = 13 // A copy or insert statement failed
	ExitSchemaIncomplete = 15 // Schema setup finished with failures (--strict only)
	ExitCatalogInvalid   = 16 // Statement catalog could not be built or loaded
)

const (
	// DefaultConfigPath is the settings file read when --config is not given.
	DefaultConfigPath = "dwh.cfg"

	// DefaultPort is the Redshift listener port.
	DefaultPort = 5439

	// DefaultRegion is the region of the public Sparkify bucket.
	DefaultRegion = "us-west-2"

	// DefaultSSLMode is used when the settings file does not name one.
	// Redshift clusters accept TLS by default.
	DefaultSSLMode = "require"

	// DefaultAppName is reported to the warehouse as application_name.
	DefaultAppName = "sparkify-dwh"

	// MaxErrorPreviewLength is the maximum number of characters of a failing
	// statement shown in error messages.
	MaxErrorPreviewLength = 200
)
