// AngelaMos | 2026
// root.go

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nutriai/backend/internal/config"
	"github.com/nutriai/backend/internal/core"
)

type options struct {
	configPath string
	verbose    bool
}

// NewRootCmd builds the nutrictl command tree. Every subcommand loads the
// same configuration as the API server.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "nutrictl",
		Short:         "Operator tooling for the NutriAI backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "config.yaml", "path to config file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(newMigrateCmd(opts))
	root.AddCommand(newQuotaCmd(opts))
	root.AddCommand(newStatsCmd(opts))

	return root
}

func Execute() error {
	return NewRootCmd().Execute()
}

func (o *options) logger() *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// withDatabase loads config, opens the database and hands it to fn.
func (o *options) withDatabase(
	ctx context.Context,
	fn func(cfg *config.Config, db *core.Database) error,
) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // process exits right after

	return fn(cfg, db)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
