// AngelaMos | 2026
// commands.go

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nutriai/backend/internal/config"
	"github.com/nutriai/backend/internal/core"
	"github.com/nutriai/backend/internal/quota"
	"github.com/nutriai/backend/internal/report"
	"github.com/nutriai/backend/internal/user"
	"github.com/nutriai/backend/migrations"
)

func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withDatabase(cmd.Context(), func(_ *config.Config, db *core.Database) error {
				applied, err := db.Migrate(cmd.Context(), migrations.FS())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(applied) == 0 {
					fmt.Fprintln(out, "schema is up to date")
					return nil
				}
				for _, name := range applied {
					fmt.Fprintln(out, "applied", name)
				}
				return nil
			})
		},
	}
}

func newQuotaCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quota",
		Short: "Manage daily analysis quotas",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Reset today's usage counter for every user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withDatabase(cmd.Context(), func(cfg *config.Config, db *core.Database) error {
				users := user.NewService(user.NewRepository(db.DB), cfg.Quota.DefaultDaily)

				n, err := quota.NewResetter(users, opts.logger()).ResetNow(cmd.Context())
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "reset %d users\n", n)
				return nil
			})
		},
	})

	return cmd
}

func newStatsCmd(opts *options) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the admin usage dashboard as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withDatabase(cmd.Context(), func(_ *config.Config, db *core.Database) error {
				dashboard, err := report.NewService(db.DB).Dashboard(cmd.Context(), days)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), dashboard)
			})
		},
	}

	cmd.Flags().IntVar(&days, "days", report.DefaultWindowDays, "window for daily series (1-90)")

	return cmd
}
