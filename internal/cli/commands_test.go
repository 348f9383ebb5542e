package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/sparkify-dwh/internal/catalog"
	"github.com/vvka-141/sparkify-dwh/internal/config"
	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
)

const testCfg = `[CLUSTER]
HOST=dwhcluster.c1.us-west-2.redshift.amazonaws.com
DB_NAME=dwh
DB_USER=dwhuser
DB_PASSWORD=Passw0rd
DB_PORT=5439

[IAM_ROLE]
ARN=%s

[S3]
LOG_DATA=s3://udacity-dend/log_data
LOG_JSONPATH=s3://udacity-dend/log_json_path.json
SONG_DATA=s3://udacity-dend/song_data
`

// setupCommand isolates a test from global flag state and DWH_* variables.
func setupCommand(t *testing.T, arn string) {
	t.Helper()
	for _, k := range []string{config.EnvHost, config.EnvDBName, config.EnvUser, config.EnvPassword, config.EnvPort, config.EnvIAMRoleARN} {
		t.Setenv(k, "")
	}

	path := filepath.Join(t.TempDir(), "dwh.cfg")
	content := strings.Replace(testCfg, "%s", arn, 1)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	saved := globalFlags
	savedCatalog := catalogFlags
	t.Cleanup(func() {
		globalFlags = saved
		catalogFlags = savedCatalog
	})
	globalFlags.configPath = path
	globalFlags.catalogPath = ""
	globalFlags.timeout = 0
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"create-tables", "etl", "run", "catalog", "version"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestCommands_RejectArgs(t *testing.T) {
	for _, cmd := range []*struct {
		name string
		args func() error
	}{
		{"create-tables", func() error { return createTablesCmd.Args(createTablesCmd, []string{"x"}) }},
		{"etl", func() error { return etlCmd.Args(etlCmd, []string{"x"}) }},
		{"run", func() error { return runCmd.Args(runCmd, []string{"x"}) }},
	} {
		err := cmd.args()
		require.Error(t, err, cmd.name)
		assert.Equal(t, dwh.ExitUsageError, dwh.ExitCodeForError(err), cmd.name)
	}
}

func TestDefaultFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()
	assert.Equal(t, dwh.DefaultConfigPath, flags.Lookup("config").DefValue)
	assert.Equal(t, "c", flags.Lookup("config").Shorthand)
	assert.Equal(t, "0s", flags.Lookup("timeout").DefValue)
	assert.Equal(t, "false", createTablesCmd.Flags().Lookup("strict").DefValue)
}

func TestRunCreateTables_MissingSettingsFile(t *testing.T) {
	setupCommand(t, "")
	globalFlags.configPath = filepath.Join(t.TempDir(), "missing.cfg")

	err := runCreateTables(createTablesCmd, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrConfigNotFound)
	assert.Equal(t, dwh.ExitConfigError, dwh.ExitCodeForError(err))
}

func TestRunETL_InvalidCatalog(t *testing.T) {
	setupCommand(t, "arn:aws:iam::123456789012:role/dwhRole")
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("insert:\n  - name: x\n    sql: \"\"\n"), 0600))
	globalFlags.catalogPath = path

	err := runETL(etlCmd, nil)
	require.Error(t, err)
	assert.Equal(t, dwh.ExitCatalogInvalid, dwh.ExitCodeForError(err))
}

func TestRunCatalog_RendersWithIAMRole(t *testing.T) {
	setupCommand(t, "arn:aws:iam::123456789012:role/dwhRole")

	var out bytes.Buffer
	catalogCmd.SetOut(&out)
	t.Cleanup(func() { catalogCmd.SetOut(nil) })

	require.NoError(t, runCatalog(catalogCmd, nil))

	cat, err := catalog.Parse(out.Bytes())
	require.NoError(t, err)
	require.Len(t, cat.Copy, 2)
	assert.Contains(t, cat.Copy[0].SQL, "iam_role 'arn:aws:iam::123456789012:role/dwhRole'")
	assert.Contains(t, cat.Copy[0].SQL, "FROM 's3://udacity-dend/log_data'")
	assert.Len(t, cat.Drop, 7)
	assert.Len(t, cat.Insert, 5)
}

func TestRunCatalog_RedactsAccessKeys(t *testing.T) {
	setupCommand(t, "")

	var out bytes.Buffer
	catalogCmd.SetOut(&out)
	t.Cleanup(func() { catalogCmd.SetOut(nil) })

	require.NoError(t, runCatalog(catalogCmd, nil))
	assert.Contains(t, out.String(), "credentials '<redacted>'")
	assert.NotContains(t, out.String(), "aws_secret_access_key")
}

func TestRunCatalog_RawRoundTripsAsOverride(t *testing.T) {
	setupCommand(t, "")
	catalogFlags.raw = true

	var out bytes.Buffer
	catalogCmd.SetOut(&out)
	t.Cleanup(func() { catalogCmd.SetOut(nil) })

	require.NoError(t, runCatalog(catalogCmd, nil))

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, out.Bytes(), 0600))

	loaded, err := catalog.LoadFile(path)
	require.NoError(t, err)
	embedded, err := catalog.Embedded()
	require.NoError(t, err)
	assert.Equal(t, embedded, loaded)
	assert.Contains(t, loaded.Copy[0].SQL, "{{literal .Source}}")
}

func TestPromptPassword(t *testing.T) {
	savedTerm, savedRead, savedFd := isTerminal, readPassword, stdinFd
	t.Cleanup(func() { isTerminal, readPassword, stdinFd = savedTerm, savedRead, savedFd })
	stdinFd = func() int { return 0 }

	t.Run("prompts on terminal", func(t *testing.T) {
		isTerminal = func(int) bool { return true }
		readPassword = func(int) ([]byte, error) { return []byte("typed"), nil }

		var w bytes.Buffer
		cluster := &dwh.ClusterConfig{User: "dwhuser", Host: "h"}
		require.NoError(t, promptPassword(cluster, &w))
		assert.Equal(t, "typed", cluster.Password)
		assert.Contains(t, w.String(), "Password for dwhuser@h: ")
	})

	t.Run("keeps configured password", func(t *testing.T) {
		isTerminal = func(int) bool { return true }
		readPassword = func(int) ([]byte, error) { t.Fatal("must not prompt"); return nil, nil }

		cluster := &dwh.ClusterConfig{Password: "set"}
		require.NoError(t, promptPassword(cluster, &bytes.Buffer{}))
		assert.Equal(t, "set", cluster.Password)
	})

	t.Run("no terminal", func(t *testing.T) {
		isTerminal = func(int) bool { return false }

		cluster := &dwh.ClusterConfig{}
		require.NoError(t, promptPassword(cluster, &bytes.Buffer{}))
		assert.Empty(t, cluster.Password)
	})

	t.Run("read failure", func(t *testing.T) {
		isTerminal = func(int) bool { return true }
		readPassword = func(int) ([]byte, error) { return nil, errors.New("EOF") }

		err := promptPassword(&dwh.ClusterConfig{}, &bytes.Buffer{})
		assert.Error(t, err)
	})
}

func TestCommandContext(t *testing.T) {
	t.Run("timeout", func(t *testing.T) {
		saved := globalFlags.timeout
		t.Cleanup(func() { globalFlags.timeout = saved })
		globalFlags.timeout = 10 * time.Millisecond

		ctx, cancel := commandContext()
		defer cancel()

		select {
		case <-ctx.Done():
			assert.ErrorIs(t, ctx.Err(), context.DeadlineExceeded)
		case <-time.After(2 * time.Second):
			t.Fatal("context did not time out")
		}
	})

	t.Run("no timeout", func(t *testing.T) {
		saved := globalFlags.timeout
		t.Cleanup(func() { globalFlags.timeout = saved })
		globalFlags.timeout = 0

		ctx, cancel := commandContext()
		_, hasDeadline := ctx.Deadline()
		assert.False(t, hasDeadline)
		cancel()
		assert.ErrorIs(t, ctx.Err(), context.Canceled)
	})
}

func TestVersionString(t *testing.T) {
	assert.True(t, strings.HasPrefix(versionString(), "sparkify-dwh dev"))
}

func TestNewLogger_PrefixesRunID(t *testing.T) {
	var out bytes.Buffer
	runCmd.SetOut(&out)
	t.Cleanup(func() { runCmd.SetOut(nil) })

	logger := newLogger(runCmd, "9f1c2e3a-0000-4000-8000-000000000000")
	logger.Info("AWS Redshift connection established OK.")

	assert.Contains(t, out.String(), "9f1c2e3a")
	assert.NotContains(t, out.String(), "0000-4000")
	assert.Contains(t, out.String(), "AWS Redshift connection established OK.")
}

func TestShortRunID(t *testing.T) {
	assert.Equal(t, "9f1c2e3a", shortRunID("9f1c2e3a-0000-4000-8000-000000000000"))
	assert.Equal(t, "plain", shortRunID("plain"))
	assert.Equal(t, "", shortRunID(""))
}

func TestLogSchemaReport(t *testing.T) {
	var out bytes.Buffer
	createTablesCmd.SetOut(&out)
	t.Cleanup(func() { createTablesCmd.SetOut(nil) })
	logger := newLogger(createTablesCmd, "r")

	report := &dwh.SchemaReport{
		Drop: dwh.Report{Phase: dwh.PhaseDrop, Total: 2, Executed: 2},
		Create: dwh.Report{Phase: dwh.PhaseCreate, Total: 2, Executed: 2, Failures: []dwh.StatementFailure{
			{Phase: dwh.PhaseCreate, Statement: dwh.Statement{Name: "users"}, Cause: errors.New("boom")},
		}},
	}
	logSchemaReport(logger, report)

	assert.Contains(t, out.String(), "create: 1/2 succeeded, 1 failed")
	assert.NotContains(t, out.String(), "drop: 2/2")
}
