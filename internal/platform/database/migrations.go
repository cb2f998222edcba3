package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// migration is one schema version. Statements are kept per driver since the
// two dialects disagree on identity columns and floating point types.
type migration struct {
	version  int
	name     string
	postgres []string
	sqlite   []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "initial_schema",
		postgres: []string{
			`CREATE TABLE IF NOT EXISTS recipes (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  instructions TEXT NOT NULL,
  preparation_time INTEGER NOT NULL CHECK (preparation_time >= 1),
  servings INTEGER NOT NULL CHECK (servings >= 1),
  difficulty TEXT NOT NULL DEFAULT 'MEDIUM',
  vegetarian BOOLEAN NOT NULL DEFAULT FALSE
)`,
			`CREATE TABLE IF NOT EXISTS ingredients (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL UNIQUE
)`,
			`CREATE TABLE IF NOT EXISTS recipe_ingredients (
  id BIGSERIAL PRIMARY KEY,
  recipe_id BIGINT NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
  ingredient_id BIGINT NOT NULL REFERENCES ingredients(id),
  quantity DOUBLE PRECISION NOT NULL CHECK (quantity >= 0),
  unit_of_measure TEXT NOT NULL DEFAULT 'g'
)`,
			`CREATE INDEX IF NOT EXISTS idx_recipe_ingredients_recipe_id ON recipe_ingredients(recipe_id)`,
		},
		sqlite: []string{
			`CREATE TABLE IF NOT EXISTS recipes (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  instructions TEXT NOT NULL,
  preparation_time INTEGER NOT NULL CHECK (preparation_time >= 1),
  servings INTEGER NOT NULL CHECK (servings >= 1),
  difficulty TEXT NOT NULL DEFAULT 'MEDIUM',
  vegetarian BOOLEAN NOT NULL DEFAULT 0
)`,
			`CREATE TABLE IF NOT EXISTS ingredients (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE
)`,
			`CREATE TABLE IF NOT EXISTS recipe_ingredients (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  recipe_id INTEGER NOT NULL,
  ingredient_id INTEGER NOT NULL,
  quantity REAL NOT NULL CHECK (quantity >= 0),
  unit_of_measure TEXT NOT NULL DEFAULT 'g',
  FOREIGN KEY (recipe_id) REFERENCES recipes(id) ON DELETE CASCADE,
  FOREIGN KEY (ingredient_id) REFERENCES ingredients(id)
)`,
			`CREATE INDEX IF NOT EXISTS idx_recipe_ingredients_recipe_id ON recipe_ingredients(recipe_id)`,
		},
	},
	{
		version: 2,
		name:    "ingredient_lookup_index",
		postgres: []string{
			`CREATE INDEX IF NOT EXISTS idx_recipe_ingredients_ingredient_id ON recipe_ingredients(ingredient_id)`,
		},
		sqlite: []string{
			`CREATE INDEX IF NOT EXISTS idx_recipe_ingredients_ingredient_id ON recipe_ingredients(ingredient_id)`,
		},
	},
}

const (
	postgresMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
	sqliteMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`
)

// Migrate applies every migration not yet recorded in schema_migrations.
// It returns the versions applied by this call; running it again is a no-op.
func Migrate(ctx context.Context, db *sqlx.DB) ([]int, error) {
	driver := db.DriverName()

	table := sqliteMigrationsTable
	if driver == DriverPostgres {
		table = postgresMigrationsTable
	}
	if _, err := db.ExecContext(ctx, table); err != nil {
		return nil, fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}

	var applied []int
	for _, m := range migrations {
		var exists int
		err := db.QueryRowxContext(ctx, db.Rebind("SELECT 1 FROM schema_migrations WHERE version = ?"), m.version).Scan(&exists)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return applied, fmt.Errorf("failed to check migration version %d: %w", m.version, err)
		}

		statements := m.sqlite
		if driver == DriverPostgres {
			statements = m.postgres
		}
		if err := apply(ctx, db, m, statements); err != nil {
			return applied, err
		}
		applied = append(applied, m.version)
	}

	return applied, nil
}

func apply(ctx context.Context, db *sqlx.DB, m migration, statements []string) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration %d: %w", m.version, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.version, m.name, err)
		}
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind("INSERT INTO schema_migrations (version, name) VALUES (?, ?)"), m.version, m.name); err != nil {
		return fmt.Errorf("failed to record migration %d: %w", m.version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", m.version, err)
	}
	return nil
}
