package dwh

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Statement is one SQL statement of the catalog.
// Name is used in logs and failure reports; SQL is executed verbatim.
// Source selects the S3 input of a COPY statement.
type Statement struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source,omitempty"`
	SQL    string `yaml:"sql"`
}

// COPY sources.
const (
	SourceLog  = "log"
	SourceSong = "song"
)

// Catalog is the ordered statement registry consumed by the orchestrators.
// Each list executes strictly in slice order.
type Catalog struct {
	Drop   []Statement `yaml:"drop"`
	Create []Statement `yaml:"create"`
	Copy   []Statement `yaml:"copy"`
	Insert []Statement `yaml:"insert"`
}

// Statements returns the list for a phase.
func (c *Catalog) Statements(p Phase) []Statement {
	switch p {
	case PhaseDrop:
		return c.Drop
	case PhaseCreate:
		return c.Create
	case PhaseCopy:
		return c.Copy
	case PhaseInsert:
		return c.Insert
	default:
		return nil
	}
}

// Validate rejects statements with empty SQL and COPY statements with an
// unknown source. Empty lists are allowed.
func (c *Catalog) Validate() error {
	var errs []error
	for _, p := range []Phase{PhaseDrop, PhaseCreate, PhaseCopy, PhaseInsert} {
		for i, stmt := range c.Statements(p) {
			if strings.TrimSpace(stmt.SQL) == "" {
				errs = append(errs, fmt.Errorf("%s statement %d (%q) has no SQL: %w", p, i, stmt.Name, ErrCatalogInvalid))
			}
			if stmt.Source == "" {
				continue
			}
			if p != PhaseCopy {
				errs = append(errs, fmt.Errorf("%s statement %d (%q) sets source, which only copy statements use: %w", p, i, stmt.Name, ErrCatalogInvalid))
			} else if stmt.Source != SourceLog && stmt.Source != SourceSong {
				errs = append(errs, fmt.Errorf("%s statement %d (%q) has unknown source %q (want %s or %s): %w", p, i, stmt.Name, stmt.Source, SourceLog, SourceSong, ErrCatalogInvalid))
			}
		}
	}
	return errors.Join(errs...)
}

// Preview shortens SQL to at most MaxErrorPreviewLength bytes on a single
// line. The cut never splits a UTF-8 sequence.
func Preview(sql string) string {
	s := strings.Join(strings.Fields(sql), " ")
	if len(s) <= MaxErrorPreviewLength {
		return s
	}
	cut := MaxErrorPreviewLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
