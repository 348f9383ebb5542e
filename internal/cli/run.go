package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vvka-141/sparkify-dwh/internal/db"
	"github.com/vvka-141/sparkify-dwh/internal/services"
)

var runFlags struct {
	strict bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Recreate the tables and run the full load",
	Long: `Runs create-tables and then etl in one process, each on its own connection.

With --strict a failing DROP or CREATE stops the run before anything is loaded.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runFlags.strict, "strict", false,
		"Stop before loading if any DROP or CREATE statement failed")
}

func runRun(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	runID := services.NewRunID()
	logger := newLogger(cmd, runID)

	ctx, cancel := commandContext()
	defer cancel()

	creds, err := db.NewCredentialsResolver(ctx, settings)
	if err != nil {
		return err
	}
	cat, err := loadCatalog(ctx, settings, creds)
	if err != nil {
		return err
	}

	connector := db.NewStandardConnector(&settings.Cluster, logger)
	pipeline := services.NewPipeline(
		services.NewSchemaManager(connector, logger),
		services.NewLoadOrchestrator(connector, logger),
		logger,
		runFlags.strict,
	)

	result, err := pipeline.Run(ctx, runID, cat)
	if result.Schema != nil {
		logSchemaReport(logger, result.Schema)
	}
	if err != nil {
		logger.Error("Run %s stopped at stage %s", result.RunID, result.Stage)
		return fmt.Errorf("run failed: %w", err)
	}
	logger.Info("Run %s reached %s", result.RunID, result.Stage)
	return nil
}
