package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/vvka-141/sparkify-dwh/internal/catalog"
	"github.com/vvka-141/sparkify-dwh/internal/config"
	"github.com/vvka-141/sparkify-dwh/internal/logging"
	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
	"golang.org/x/term"
)

// Terminal access, replaceable in tests.
var (
	isTerminal   = term.IsTerminal
	readPassword = term.ReadPassword
	stdinFd      = func() int { return int(os.Stdin.Fd()) }
)

// loadSettings loads .env, the settings file and, if needed, prompts for the
// cluster password.
func loadSettings() (*dwh.Settings, error) {
	_ = godotenv.Load()

	settings, err := config.Load(globalFlags.configPath)
	if err != nil {
		return nil, err
	}
	if err := promptPassword(&settings.Cluster, os.Stderr); err != nil {
		return nil, err
	}
	return settings, nil
}

// promptPassword asks for the cluster password without echo when none is
// configured and stdin is a terminal. Otherwise it leaves cluster unchanged.
func promptPassword(cluster *dwh.ClusterConfig, w io.Writer) error {
	if cluster.Password != "" {
		return nil
	}
	fd := stdinFd()
	if !isTerminal(fd) {
		return nil
	}

	fmt.Fprintf(w, "Password for %s@%s: ", cluster.User, cluster.Host)
	password, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	cluster.Password = string(password)
	return nil
}

// loadCatalog returns the override catalog from --catalog or the built-in
// one. With creds set, COPY statements are rendered; otherwise they stay
// templates, which is enough for phases that never run them.
func loadCatalog(ctx context.Context, settings *dwh.Settings, creds dwh.CredentialsResolver) (*dwh.Catalog, error) {
	var (
		cat dwh.Catalog
		err error
	)
	if globalFlags.catalogPath != "" {
		cat, err = catalog.LoadFile(globalFlags.catalogPath)
	} else {
		cat, err = catalog.Embedded()
	}
	if err != nil {
		return nil, err
	}

	if creds == nil {
		if err := cat.Validate(); err != nil {
			return nil, err
		}
		return &cat, nil
	}

	rendered, err := catalog.Render(ctx, cat, settings, creds)
	if err != nil {
		return nil, err
	}
	return &rendered, nil
}

// newLogger writes progress to the command's stdout.
// newLogger tags every line with the first block of runID so that
// interleaved output of concurrent invocations can be told apart.
func newLogger(cmd *cobra.Command, runID string) dwh.Logger {
	return logging.NewConsoleLogger(getVerboseFlag(cmd),
		logging.WithWriter(cmd.OutOrStdout()),
		logging.WithPrefix(shortRunID(runID)),
	)
}

func shortRunID(runID string) string {
	if i := strings.IndexByte(runID, '-'); i > 0 {
		return runID[:i]
	}
	return runID
}

// commandContext returns a context bounded by --timeout and cancelled on
// SIGINT or SIGTERM.
func commandContext() (context.Context, context.CancelFunc) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if globalFlags.timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), globalFlags.timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}

	// Handle interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\n[INTERRUPT] Received interrupt signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
