package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/leapstack-labs/pbconsole/internal/cli/config"
	"github.com/leapstack-labs/pbconsole/internal/mockapi"
	"github.com/spf13/cobra"
)

// MockBackendOptions holds options for the mock-backend command.
type MockBackendOptions struct {
	NoSeed bool
}

// NewMockBackendCommand creates the mock-backend command.
func NewMockBackendCommand() *cobra.Command {
	opts := &MockBackendOptions{}

	cmd := &cobra.Command{
		Use:   "mock-backend",
		Short: "Serve a development playbook backend",
		Long: `Serve the playbook backend API from a local SQLite database seeded with
demo playbooks. With --simulate, running playbooks advance one step per tick
and end after their last step.`,
		Example: `  # Backend on :3000 with a step every 5 seconds
  pbconsole mock-backend --simulate 5s

  # Throwaway in-memory database
  pbconsole mock-backend --database :memory:`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMockBackend(cmd, opts)
		},
	}

	cmd.Flags().Int("port", 0, "Port to serve on (default: 3000)")
	cmd.Flags().String("database", "", "SQLite database path (default: .pbconsole/backend.db)")
	cmd.Flags().Duration("simulate", 0, "Advance running playbooks at this interval (0 disables)")
	cmd.Flags().BoolVar(&opts.NoSeed, "no-seed", false, "Do not insert demo playbooks into an empty database")
	config.BindFlag(cmd.Flags(), "port", "mock.port")
	config.BindFlag(cmd.Flags(), "database", "mock.database")
	config.BindFlag(cmd.Flags(), "simulate", "mock.simulate_interval")

	return cmd
}

func runMockBackend(cmd *cobra.Command, opts *MockBackendOptions) error {
	cc := NewCommandContext(cmd)
	cfg := cc.Cfg

	store, err := openMockStore(cmd.Context(), cfg.Mock.Database, !opts.NoSeed, cc.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	server := mockapi.NewServer(mockapi.Config{
		Store:            store,
		Port:             cfg.Mock.Port,
		SimulateInterval: cfg.Mock.SimulateInterval,
		Logger:           cc.Logger,
	})

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Mock backend on http://localhost:%d (database %s)\n", cfg.Mock.Port, cfg.Mock.Database)
	return server.Serve(cmd.Context())
}

// openMockStore opens the backend database, creating its directory, and seeds it when asked.
func openMockStore(ctx context.Context, path string, seed bool, logger *slog.Logger) (*mockapi.Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	store, err := mockapi.Open(path, logger)
	if err != nil {
		return nil, err
	}
	if seed {
		if _, err := store.Seed(ctx, time.Now()); err != nil {
			_ = store.Close()
			return nil, err
		}
	}
	return store, nil
}
