package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
)

// RunResult describes a full pipeline run.
type RunResult struct {
	RunID  string
	Schema *dwh.SchemaReport
	Stage  dwh.Stage
}

// Pipeline walks the whole state machine: schema setup on one session, then
// the load on a second one.
type Pipeline struct {
	schema *SchemaManager
	loader *LoadOrchestrator
	logger dwh.Logger
	strict bool
}

// NewPipeline creates a Pipeline. With strict set, any schema failure stops
// the run before loading with ErrSchemaIncomplete.
func NewPipeline(schema *SchemaManager, loader *LoadOrchestrator, logger dwh.Logger, strict bool) *Pipeline {
	if schema == nil {
		panic("schema manager cannot be nil")
	}
	if loader == nil {
		panic("load orchestrator cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Pipeline{schema: schema, loader: loader, logger: logger, strict: strict}
}

// Run executes schema setup and the load in sequence. An empty runID is
// replaced with a fresh one.
func (p *Pipeline) Run(ctx context.Context, runID string, cat *dwh.Catalog) (*RunResult, error) {
	if runID == "" {
		runID = NewRunID()
	}
	result := &RunResult{RunID: runID, Stage: dwh.StageStart}
	p.logger.Verbose("Run %s started", result.RunID)

	report, err := p.schema.Run(ctx, cat)
	result.Schema = report
	if report != nil {
		result.Stage = report.Stage
	}
	if err != nil {
		return result, err
	}
	if p.strict {
		if err := SchemaError(report); err != nil {
			return result, err
		}
	}

	stage, err := p.loader.Run(ctx, cat)
	result.Stage = stage
	if err != nil {
		return result, err
	}

	result.Stage = dwh.StageDone
	p.logger.Verbose("Run %s reached %s", result.RunID, result.Stage)
	return result, nil
}

// SchemaError turns a report with failures into an ErrSchemaIncomplete error.
func SchemaError(report *dwh.SchemaReport) error {
	failures := report.Failures()
	if len(failures) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d statement(s) failed: %w", dwh.ErrSchemaIncomplete, len(failures), report.Err())
}

// NewRunID returns an identifier for correlating the log lines of one invocation.
func NewRunID() string {
	return uuid.NewString()
}
