package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// ConsoleLogger writes log messages to stdout.
// Safe for concurrent use by multiple goroutines.
type ConsoleLogger struct {
	verbose bool
	log     *log.Logger
}

// Option configures a ConsoleLogger.
type Option func(*options)

type options struct {
	w          io.Writer
	timestamps bool
	prefix     string
}

// WithWriter sends output to w instead of stdout.
func WithWriter(w io.Writer) Option {
	return func(o *options) { o.w = w }
}

// WithTimestamps toggles the time column.
func WithTimestamps(on bool) Option {
	return func(o *options) { o.timestamps = on }
}

// WithPrefix adds a fixed prefix to every line.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// NewConsoleLogger creates a new ConsoleLogger.
// If verbose is true, Verbose() calls will produce output.
// If verbose is false, Verbose() calls are no-ops.
func NewConsoleLogger(verbose bool, opts ...Option) *ConsoleLogger {
	o := options{w: os.Stdout, timestamps: true}
	for _, opt := range opts {
		opt(&o)
	}

	l := log.NewWithOptions(o.w, log.Options{
		ReportTimestamp: o.timestamps,
		TimeFormat:      time.TimeOnly,
		Prefix:          o.prefix,
	})
	if verbose {
		l.SetLevel(log.DebugLevel)
	} else {
		l.SetLevel(log.InfoLevel)
	}

	return &ConsoleLogger{verbose: verbose, log: l}
}

// Verbose logs detailed diagnostic information if verbose mode is enabled.
func (l *ConsoleLogger) Verbose(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.log.Debug(sprintf(format, args...))
}

// Info logs informational messages about normal operations.
func (l *ConsoleLogger) Info(format string, args ...interface{}) {
	l.log.Info(sprintf(format, args...))
}

// Error logs error messages.
func (l *ConsoleLogger) Error(format string, args ...interface{}) {
	l.log.Error(sprintf(format, args...))
}

func sprintf(format string, args ...interface{}) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
