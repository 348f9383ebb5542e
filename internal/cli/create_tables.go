package cli

import (
	"github.com/spf13/cobra"
	"github.com/vvka-141/sparkify-dwh/internal/db"
	"github.com/vvka-141/sparkify-dwh/internal/services"
	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
)

var createTablesFlags struct {
	strict bool
}

var createTablesCmd = &cobra.Command{
	Use:   "create-tables",
	Short: "Drop and recreate the warehouse tables",
	Long: `Drops every staging and star schema table, then creates them again.

A failing DROP or CREATE is logged and the remaining statements still run.
The command exits 0 in that case unless --strict is given.`,
	Example: `  sparkify-dwh create-tables
  sparkify-dwh create-tables -c dwh.cfg --strict`,
	Args: cobra.NoArgs,
	RunE: runCreateTables,
}

func init() {
	rootCmd.AddCommand(createTablesCmd)
	createTablesCmd.Flags().BoolVar(&createTablesFlags.strict, "strict", false,
		"Exit non-zero if any DROP or CREATE statement failed")
}

func runCreateTables(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	runID := services.NewRunID()
	logger := newLogger(cmd, runID)
	logger.Verbose("Run %s", runID)

	ctx, cancel := commandContext()
	defer cancel()

	cat, err := loadCatalog(ctx, settings, nil)
	if err != nil {
		return err
	}

	mgr := services.NewSchemaManager(db.NewStandardConnector(&settings.Cluster, logger), logger)
	report, err := mgr.Run(ctx, cat)
	if err != nil {
		logger.Error("Stopped at stage %s", report.Stage)
		return err
	}
	logSchemaReport(logger, report)

	if createTablesFlags.strict {
		return services.SchemaError(report)
	}
	return nil
}

func logSchemaReport(logger dwh.Logger, report *dwh.SchemaReport) {
	for _, r := range []*dwh.Report{&report.Drop, &report.Create} {
		if r.OK() {
			logger.Verbose("%s: %d/%d succeeded", r.Phase, r.Succeeded(), r.Total)
			continue
		}
		logger.Error("%s: %d/%d succeeded, %d failed", r.Phase, r.Succeeded(), r.Total, len(r.Failures))
	}
}
