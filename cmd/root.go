package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/config"
	"github.com/abhisek/adaptiq/internal/practice"
	"github.com/abhisek/adaptiq/internal/store"
)

// cfg is loaded before any subcommand runs.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:           "adaptiq",
	Short:         "Adaptive practice scheduler",
	Long:          "adaptiq schedules question practice with spaced repetition, a memory model and weak-spot detection.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to a YAML, TOML or JSON config file (overrides ADAPTIQ_CONFIG env var)")
	pf.String("db", "", "SQLite database file or Postgres DSN (overrides database.dsn)")
	pf.String("db-driver", "", "Database driver: sqlite or postgres (overrides database.driver)")
	pf.String("log-level", "", "Log level: debug, info, warn or error (overrides log.level)")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(answerCmd)
	rootCmd.AddCommand(flashcardCmd)
	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(weakCmd)
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(drillCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file and environment, applies flag
// overrides and installs the slog handler.
func loadConfig(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("ADAPTIQ_CONFIG")
	}
	loaded, err := config.Load(path)
	if err != nil {
		return err
	}

	if v, _ := cmd.Flags().GetString("db"); v != "" {
		loaded.Database.DSN = v
	}
	if v, _ := cmd.Flags().GetString("db-driver"); v != "" {
		loaded.Database.Driver = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		loaded.Log.Level = v
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	level, _ := config.ParseLevel(loaded.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if loaded.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))

	cfg = loaded
	return nil
}

// openStore opens the configured database. A SQLite database without a
// DSN lives at the default data path.
func openStore(ctx context.Context) (*store.Store, error) {
	driver, err := store.ParseDriver(cfg.Database.Driver)
	if err != nil {
		return nil, err
	}
	dsn := cfg.Database.DSN
	switch {
	case driver == store.DriverSQLite && dsn == "":
		if dsn, err = store.DefaultDBPath(); err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
	case driver == store.DriverSQLite:
		if err := store.EnsureDir(dsn); err != nil {
			return nil, fmt.Errorf("create DB directory: %w", err)
		}
	}

	st, err := store.Open(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	slog.Debug("store opened", "driver", driver)
	return st, nil
}

// newService wires a practice service to the store and its topic graph.
func newService(ctx context.Context, st *store.Store) (*practice.Service, error) {
	graph, err := st.Topics().Graph(ctx)
	if err != nil {
		return nil, fmt.Errorf("load topic graph: %w", err)
	}
	return practice.New(cfg.Practice, practice.Deps{
		Items:   st.Items(),
		Events:  st.Events(),
		Prereqs: graph,
	}), nil
}

// withService opens the store, builds the service and runs fn.
func withService(cmd *cobra.Command, fn func(ctx context.Context, st *store.Store, svc *practice.Service) error) error {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	svc, err := newService(ctx, st)
	if err != nil {
		return err
	}
	return fn(ctx, st, svc)
}
