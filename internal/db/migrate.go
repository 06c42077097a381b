package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.up.sql
var migrationFiles embed.FS

// Migrate applies every embedded *.up.sql file in name order. Each file must
// be safe to re-run; there is no version table.
func Migrate(ctx context.Context, pool *pgxpool.Pool) ([]string, error) {
	names, err := fs.Glob(migrationFiles, "migrations/*.up.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	for _, name := range names {
		content, err := migrationFiles.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		// no arguments, so pgx sends the file over the simple protocol and
		// multiple statements are allowed
		if _, err := pool.Exec(ctx, string(content)); err != nil {
			return nil, fmt.Errorf("exec migration %s: %w", name, err)
		}
	}
	return names, nil
}
