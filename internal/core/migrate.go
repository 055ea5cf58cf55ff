// AngelaMos | 2026
// migrate.go

package core

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Migrate applies every *.sql file in migrations that is not yet recorded in
// schema_migrations. Files run in lexical order, each in its own transaction.
func Migrate(ctx context.Context, db *sqlx.DB, migrations fs.FS) ([]string, error) {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	var done []string
	if err := db.SelectContext(ctx, &done, `SELECT version FROM schema_migrations`); err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}

	applied := make(map[string]struct{}, len(done))
	for _, v := range done {
		applied[v] = struct{}{}
	}

	entries, err := fs.ReadDir(migrations, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var ran []string
	for _, name := range names {
		if _, ok := applied[name]; ok {
			continue
		}

		content, err := fs.ReadFile(migrations, name)
		if err != nil {
			return ran, fmt.Errorf("read migration %s: %w", name, err)
		}

		err = InTx(ctx, db, func(tx *sqlx.Tx) error {
			if _, err := tx.ExecContext(ctx, string(content)); err != nil {
				return fmt.Errorf("apply migration %s: %w", name, err)
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version) VALUES ($1)`, name)
			if err != nil {
				return fmt.Errorf("record migration %s: %w", name, err)
			}
			return nil
		})
		if err != nil {
			return ran, err
		}

		slog.Info("migration applied", "version", name)
		ran = append(ran, name)
	}

	return ran, nil
}
