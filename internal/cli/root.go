package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
)

var rootCmd = &cobra.Command{
	Use:   "sparkify-dwh",
	Short: "Load Sparkify event and song data from S3 into a Redshift star schema",
	Long: `sparkify-dwh builds the Sparkify analytics warehouse on Amazon Redshift.

  create-tables  drop and recreate the staging and star schema tables
  etl            COPY the S3 JSON files into staging, then populate the star schema
  run            create-tables followed by etl

Every statement is committed on its own. Schema setup logs failing statements
and continues; the load stops at the first failure.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid settings file
  11 - Warehouse connection failed
  13 - SQL execution failed
  15 - Schema setup incomplete (--strict)
  16 - Invalid statement catalog`,
	SilenceUsage: true,
}

var globalFlags struct {
	configPath  string
	catalogPath string
	timeout     time.Duration
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&globalFlags.configPath, "config", "c", dwh.DefaultConfigPath,
		"Settings file (INI like dwh.cfg, or YAML)")
	flags.StringVar(&globalFlags.catalogPath, "catalog", "",
		"YAML statement catalog to use instead of the built-in one")
	flags.DurationVar(&globalFlags.timeout, "timeout", 0,
		"Abort after this duration (0 means no timeout)")
	flags.BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
