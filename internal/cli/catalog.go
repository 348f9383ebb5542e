package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vvka-141/sparkify-dwh/internal/db"
	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
	"gopkg.in/yaml.v3"
)

var catalogFlags struct {
	raw bool
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the statement catalog without connecting",
	Long: `Prints the drop, create, copy and insert statements in execution order as YAML.

COPY statements are rendered with the settings file. Access keys are never
printed; an IAM role is shown as configured. With --raw the COPY templates are
printed unrendered, which makes the output usable as a --catalog file.`,
	Args: cobra.NoArgs,
	RunE: runCatalog,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.Flags().BoolVar(&catalogFlags.raw, "raw", false, "Print COPY statements as unrendered templates")
}

func runCatalog(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	var creds dwh.CredentialsResolver
	if !catalogFlags.raw {
		creds = displayCredentials(settings)
	}
	cat, err := loadCatalog(ctx, settings, creds)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(cat); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	return enc.Close()
}

// redactedCredentials stands in for access keys in printed output.
type redactedCredentials struct{}

func (redactedCredentials) CopyCredentials(context.Context) (string, error) {
	return "credentials '<redacted>'", nil
}

func displayCredentials(settings *dwh.Settings) dwh.CredentialsResolver {
	if settings.IAMRole.ARN != "" {
		return db.IAMRoleCredentials{ARN: settings.IAMRole.ARN}
	}
	return redactedCredentials{}
}
