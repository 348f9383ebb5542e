// Package logging provides concrete implementations of the dwh.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: Writes leveled, human-readable lines to stdout via charmbracelet/log
//   - NullLogger: Discards all messages (useful for testing)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
