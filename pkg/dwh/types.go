package dwh

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Settings is everything the pipeline needs from the settings file.
type Settings struct {
	Cluster ClusterConfig
	IAMRole IAMRoleConfig
	S3      S3Config
}

// ClusterConfig names the warehouse connection parameters.
// Fields are read by key, never by position.
type ClusterConfig struct {
	Host     string
	DBName   string
	User     string
	Password string
	Port     int

	// Optional connection parameters
	SSLMode        string
	AppName        string
	ConnectTimeout time.Duration
}

// IAMRoleConfig identifies the role the warehouse assumes to read S3 during COPY.
type IAMRoleConfig struct {
	ARN string
}

// S3Config locates the source files for the staging COPY statements.
type S3Config struct {
	LogData     string // s3://udacity-dend/log_data
	LogJSONPath string // s3://udacity-dend/log_json_path.json
	SongData    string // s3://udacity-dend/song_data
	Region      string
}

// Validate checks the cluster section. It returns a multi-error if multiple
// fields are missing.
func (c *ClusterConfig) Validate() error {
	var errs []error

	if c.Host == "" {
		errs = append(errs, fmt.Errorf("cluster host is required: %w", ErrInvalidConfig))
	}
	if c.DBName == "" {
		errs = append(errs, fmt.Errorf("cluster dbname is required: %w", ErrInvalidConfig))
	}
	if c.User == "" {
		errs = append(errs, fmt.Errorf("cluster user is required: %w", ErrInvalidConfig))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("cluster port %d is out of range: %w", c.Port, ErrInvalidConfig))
	}
	if c.ConnectTimeout < 0 {
		errs = append(errs, fmt.Errorf("connect timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// Validate checks the S3 section.
func (c *S3Config) Validate() error {
	var errs []error

	fields := []struct{ name, value string }{
		{"LOG_DATA", c.LogData},
		{"LOG_JSONPATH", c.LogJSONPath},
		{"SONG_DATA", c.SongData},
	}
	for _, f := range fields {
		name, v := f.name, f.value
		if v == "" {
			errs = append(errs, fmt.Errorf("S3 %s is required: %w", name, ErrInvalidConfig))
			continue
		}
		// COPY also accepts 'auto' in place of a JSONPaths file.
		if name == "LOG_JSONPATH" && v == "auto" {
			continue
		}
		if !strings.HasPrefix(v, "s3://") {
			errs = append(errs, fmt.Errorf("S3 %s must be an s3:// URI, got %q: %w", name, v, ErrInvalidConfig))
		}
	}

	return errors.Join(errs...)
}

// Validate checks every section of the settings. The password is not
// required here: the CLI may still prompt for it.
func (s *Settings) Validate() error {
	return errors.Join(s.Cluster.Validate(), s.S3.Validate())
}

// Phase identifies one statement batch of a run.
type Phase string

const (
	PhaseDrop   Phase = "drop"
	PhaseCreate Phase = "create"
	PhaseCopy   Phase = "copy"
	PhaseInsert Phase = "insert"
)

// Policy decides what a batch does after a statement fails.
type Policy int

const (
	// PolicyLenient records the failure and continues with the next statement.
	PolicyLenient Policy = iota
	// PolicyFailFast stops the batch, and every later batch, at the first failure.
	PolicyFailFast
)

// String returns a human-readable string representation of the Policy.
func (p Policy) String() string {
	switch p {
	case PolicyLenient:
		return "lenient-continue"
	case PolicyFailFast:
		return "fail-fast"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// Stage is a point in the per-run state machine:
// START → TABLES_DROPPED → TABLES_CREATED → STAGING_LOADED → ANALYTICS_LOADED → DONE.
type Stage int

const (
	StageStart Stage = iota
	StageTablesDropped
	StageTablesCreated
	StageStagingLoaded
	StageAnalyticsLoaded
	StageDone
)

// String returns the state machine name of the Stage.
func (s Stage) String() string {
	switch s {
	case StageStart:
		return "START"
	case StageTablesDropped:
		return "TABLES_DROPPED"
	case StageTablesCreated:
		return "TABLES_CREATED"
	case StageStagingLoaded:
		return "STAGING_LOADED"
	case StageAnalyticsLoaded:
		return "ANALYTICS_LOADED"
	case StageDone:
		return "DONE"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}
