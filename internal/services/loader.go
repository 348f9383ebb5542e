package services

import (
	"context"
	"fmt"

	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
)

// LoadOrchestrator copies the source files into the staging tables and then
// runs the insert statements that populate the star schema.
//
// The first failing statement aborts its batch and every later batch.
// Statements committed before the failure stay committed.
//
// Thread-Safety: NOT safe for concurrent Run() calls on the same instance.
type LoadOrchestrator struct {
	connector dwh.Connector
	logger    dwh.Logger
}

// NewLoadOrchestrator creates a LoadOrchestrator. Panics on nil dependencies.
func NewLoadOrchestrator(connector dwh.Connector, logger dwh.Logger) *LoadOrchestrator {
	if connector == nil {
		panic("connector cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &LoadOrchestrator{connector: connector, logger: logger}
}

// Run opens a session, loads the staging tables and then inserts into the
// analytics tables. It returns the last stage reached; the tables are
// assumed to exist, so a run starts at TABLES_CREATED.
func (o *LoadOrchestrator) Run(ctx context.Context, cat *dwh.Catalog) (dwh.Stage, error) {
	stage := dwh.StageTablesCreated

	session, err := o.connector.Connect(ctx)
	if err != nil {
		return stage, err
	}
	defer closeSession(session, o.logger)
	o.logger.Info("AWS Redshift connection established OK.")

	if err := o.LoadStagingTables(ctx, session, cat.Copy); err != nil {
		return stage, err
	}
	stage = dwh.StageStagingLoaded

	if err := o.InsertTables(ctx, session, cat.Insert); err != nil {
		return stage, err
	}
	return dwh.StageAnalyticsLoaded, nil
}

// LoadStagingTables executes the COPY statements in order.
func (o *LoadOrchestrator) LoadStagingTables(ctx context.Context, session dwh.Session, stmts []dwh.Statement) error {
	o.logger.Info("Start loading data from S3 to AWS Redshift tables...")
	if err := o.runFailFast(ctx, session, dwh.PhaseCopy, stmts); err != nil {
		return err
	}
	o.logger.Info("All files COPIED OK.")
	return nil
}

// InsertTables executes the INSERT statements in order.
func (o *LoadOrchestrator) InsertTables(ctx context.Context, session dwh.Session, stmts []dwh.Statement) error {
	o.logger.Info("Start inserting data from staging tables into analysis tables...")
	if err := o.runFailFast(ctx, session, dwh.PhaseInsert, stmts); err != nil {
		return err
	}
	o.logger.Info("All files INSERTED OK.")
	return nil
}

func (o *LoadOrchestrator) runFailFast(ctx context.Context, session dwh.Session, phase dwh.Phase, stmts []dwh.Statement) error {
	report := executeBatch(ctx, session, o.logger, phase, dwh.PolicyFailFast, stmts)
	if len(report.Failures) == 0 {
		return nil
	}
	failure := report.Failures[0]
	return fmt.Errorf("%w: %w", dwh.ErrExecutionFailed, &failure)
}
