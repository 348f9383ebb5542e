package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vvka-141/sparkify-dwh/internal/db"
	"github.com/vvka-141/sparkify-dwh/internal/services"
)

var etlCmd = &cobra.Command{
	Use:   "etl",
	Short: "Load S3 data into staging and populate the star schema",
	Long: `Copies the log and song JSON files from S3 into the staging tables, then
inserts from staging into songplays, users, songs, artists and time.

The first failing statement stops the load. Statements already committed stay
committed. The tables must exist; run create-tables first.`,
	Example: `  sparkify-dwh etl
  sparkify-dwh etl -c dwh.cfg --timeout 30m -v`,
	Args: cobra.NoArgs,
	RunE: runETL,
}

func init() {
	rootCmd.AddCommand(etlCmd)
}

func runETL(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	runID := services.NewRunID()
	logger := newLogger(cmd, runID)
	logger.Verbose("Run %s", runID)

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

	orch := services.NewLoadOrchestrator(db.NewStandardConnector(&settings.Cluster, logger), logger)
	stage, err := orch.Run(ctx, cat)
	if err != nil {
		logger.Error("Stopped at stage %s", stage)
		return fmt.Errorf("etl failed: %w", err)
	}
	return nil
}
