package services

import (
	"context"
	"fmt"

	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
)

// SchemaManager drops and recreates the warehouse tables.
//
// A failing DROP or CREATE is logged and recorded, and the batch moves on.
// The failures are handed back in a SchemaReport; whether they are fatal is
// the caller's decision.
//
// Thread-Safety: NOT safe for concurrent Run() calls on the same instance.
type SchemaManager struct {
	connector dwh.Connector
	logger    dwh.Logger
}

// NewSchemaManager creates a SchemaManager. Panics on nil dependencies.
func NewSchemaManager(connector dwh.Connector, logger dwh.Logger) *SchemaManager {
	if connector == nil {
		panic("connector cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &SchemaManager{connector: connector, logger: logger}
}

// Run opens a session, drops every table of cat.Drop and creates every table
// of cat.Create. The session is closed before Run returns.
//
// The returned error covers only connection failures and cancellation;
// statement failures are in the report.
func (m *SchemaManager) Run(ctx context.Context, cat *dwh.Catalog) (*dwh.SchemaReport, error) {
	report := &dwh.SchemaReport{Stage: dwh.StageStart}

	session, err := m.connector.Connect(ctx)
	if err != nil {
		return report, err
	}
	defer closeSession(session, m.logger)
	m.logger.Info("AWS Redshift connection established OK.")

	report.Drop = m.DropTables(ctx, session, cat.Drop)
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("schema setup interrupted at %s: %w", report.Stage, err)
	}
	report.Stage = dwh.StageTablesDropped

	report.Create = m.CreateTables(ctx, session, cat.Create)
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("schema setup interrupted at %s: %w", report.Stage, err)
	}
	report.Stage = dwh.StageTablesCreated

	return report, nil
}

// DropTables executes the drop statements, committing after each.
func (m *SchemaManager) DropTables(ctx context.Context, session dwh.Session, stmts []dwh.Statement) dwh.Report {
	report := executeBatch(ctx, session, m.logger, dwh.PhaseDrop, dwh.PolicyLenient, stmts)
	if ctx.Err() == nil {
		m.logger.Info("Tables dropped successfully.")
	}
	return report
}

// CreateTables executes the create statements, committing after each.
func (m *SchemaManager) CreateTables(ctx context.Context, session dwh.Session, stmts []dwh.Statement) dwh.Report {
	report := executeBatch(ctx, session, m.logger, dwh.PhaseCreate, dwh.PolicyLenient, stmts)
	if ctx.Err() == nil {
		m.logger.Info("Tables created successfully.")
	}
	return report
}

func closeSession(session dwh.Session, logger dwh.Logger) {
	if err := session.Close(); err != nil {
		logger.Verbose("Failed to close session: %v", err)
	}
}
