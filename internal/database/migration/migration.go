package migration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"aidkit/internal/repository/dialect"
	"aidkit/internal/repository/schema"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelTable references every other table, so it exists only after the schema is complete.
const sentinelTable = "stocks"

var postgresSteps = []migrationStep{
	{
		Name: "create_table_producers",
		SQL: `CREATE TABLE IF NOT EXISTS producers (
  id         BIGINT      GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
  name       TEXT        NOT NULL UNIQUE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_categories",
		SQL: `CREATE TABLE IF NOT EXISTS categories (
  id         BIGINT      GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
  name       TEXT        NOT NULL UNIQUE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_medications",
		SQL: `CREATE TABLE IF NOT EXISTS medications (
  id           BIGINT      GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
  brand_name   TEXT        NOT NULL,
  generic_name TEXT        NOT NULL,
  dosage_form  TEXT        NOT NULL ` + checkIn(schema.Medications, "dosage_form") + `,
  producer_id  BIGINT      REFERENCES producers (id) ON DELETE SET NULL,
  category_id  BIGINT      REFERENCES categories (id) ON DELETE SET NULL,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (brand_name, dosage_form, producer_id)
);`,
	},
	{
		Name: "create_table_aidkits",
		SQL: `CREATE TABLE IF NOT EXISTS aidkits (
  id         BIGINT      GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
  name       TEXT        NOT NULL UNIQUE,
  location   TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_stocks",
		SQL: `CREATE TABLE IF NOT EXISTS stocks (
  id              BIGINT      GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
  quantity        BIGINT      NOT NULL CHECK (quantity > 0),
  measure_unit    TEXT        NOT NULL ` + checkIn(schema.Stocks, "measure_unit") + `,
  production_date DATE        NOT NULL,
  best_before     DATE        NOT NULL,
  opened_at       DATE,
  medication_id   BIGINT      NOT NULL REFERENCES medications (id) ON DELETE CASCADE,
  aidkit_id       BIGINT      NOT NULL REFERENCES aidkits (id) ON DELETE CASCADE,
  created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_stocks_aidkit_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_stocks_aidkit_id ON stocks (aidkit_id, created_at);`,
	},
	{
		Name: "create_index_stocks_medication_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_stocks_medication_id ON stocks (medication_id);`,
	},
}

const sqliteNow = `(strftime('%Y-%m-%d %H:%M:%f', 'now'))`

var sqliteSteps = []migrationStep{
	{
		Name: "create_table_producers",
		SQL: `CREATE TABLE IF NOT EXISTS producers (
  id         INTEGER  PRIMARY KEY AUTOINCREMENT,
  name       TEXT     NOT NULL UNIQUE,
  created_at DATETIME NOT NULL DEFAULT ` + sqliteNow + `,
  updated_at DATETIME NOT NULL DEFAULT ` + sqliteNow + `
);`,
	},
	{
		Name: "create_table_categories",
		SQL: `CREATE TABLE IF NOT EXISTS categories (
  id         INTEGER  PRIMARY KEY AUTOINCREMENT,
  name       TEXT     NOT NULL UNIQUE,
  created_at DATETIME NOT NULL DEFAULT ` + sqliteNow + `,
  updated_at DATETIME NOT NULL DEFAULT ` + sqliteNow + `
);`,
	},
	{
		Name: "create_table_medications",
		SQL: `CREATE TABLE IF NOT EXISTS medications (
  id           INTEGER  PRIMARY KEY AUTOINCREMENT,
  brand_name   TEXT     NOT NULL,
  generic_name TEXT     NOT NULL,
  dosage_form  TEXT     NOT NULL ` + checkIn(schema.Medications, "dosage_form") + `,
  producer_id  INTEGER  REFERENCES producers (id) ON DELETE SET NULL,
  category_id  INTEGER  REFERENCES categories (id) ON DELETE SET NULL,
  created_at   DATETIME NOT NULL DEFAULT ` + sqliteNow + `,
  updated_at   DATETIME NOT NULL DEFAULT ` + sqliteNow + `,
  UNIQUE (brand_name, dosage_form, producer_id)
);`,
	},
	{
		Name: "create_table_aidkits",
		SQL: `CREATE TABLE IF NOT EXISTS aidkits (
  id         INTEGER  PRIMARY KEY AUTOINCREMENT,
  name       TEXT     NOT NULL UNIQUE,
  location   TEXT,
  created_at DATETIME NOT NULL DEFAULT ` + sqliteNow + `,
  updated_at DATETIME NOT NULL DEFAULT ` + sqliteNow + `
);`,
	},
	{
		Name: "create_table_stocks",
		SQL: `CREATE TABLE IF NOT EXISTS stocks (
  id              INTEGER  PRIMARY KEY AUTOINCREMENT,
  quantity        INTEGER  NOT NULL CHECK (quantity > 0),
  measure_unit    TEXT     NOT NULL ` + checkIn(schema.Stocks, "measure_unit") + `,
  production_date DATE     NOT NULL,
  best_before     DATE     NOT NULL,
  opened_at       DATE,
  medication_id   INTEGER  NOT NULL REFERENCES medications (id) ON DELETE CASCADE,
  aidkit_id       INTEGER  NOT NULL REFERENCES aidkits (id) ON DELETE CASCADE,
  created_at      DATETIME NOT NULL DEFAULT ` + sqliteNow + `,
  updated_at      DATETIME NOT NULL DEFAULT ` + sqliteNow + `
);`,
	},
	{
		Name: "create_index_stocks_aidkit_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_stocks_aidkit_id ON stocks (aidkit_id, created_at);`,
	},
	{
		Name: "create_index_stocks_medication_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_stocks_medication_id ON stocks (medication_id);`,
	},
}

// checkIn renders a CHECK constraint restricting an enum column to its values.
func checkIn(t *schema.Table, name string) string {
	col, ok := t.Column(name)
	if !ok || len(col.Enum) == 0 {
		panic(fmt.Sprintf("migration: %s.%s is not an enum column", t.Name, name))
	}
	quoted := make([]string, len(col.Enum))
	for i, v := range col.Enum {
		quoted[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
	}
	return fmt.Sprintf("CHECK (%s IN (%s))", name, strings.Join(quoted, ", "))
}

func stepsFor(d dialect.Dialect) ([]migrationStep, string, error) {
	switch d.Name() {
	case "postgres":
		return postgresSteps, "SELECT to_regclass('public." + sentinelTable + "') IS NOT NULL", nil
	case "sqlite":
		return sqliteSteps, "SELECT EXISTS (SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = '" + sentinelTable + "')", nil
	default:
		return nil, "", fmt.Errorf("no migrations for dialect %q", d.Name())
	}
}

// EnsureMigrated checks if the stocks table exists and creates the schema if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, d dialect.Dialect, logger zerolog.Logger) error {
	start := time.Now()
	log := logger.With().Str("component", "database").Str("dialect", d.Name()).Logger()

	steps, sentinel, err := stepsFor(d)
	if err != nil {
		return err
	}

	log.Info().Str("event", "db_migration_check").Msg("checking schema")

	var exists bool
	if err := db.QueryRowContext(ctx, sentinel).Scan(&exists); err != nil {
		log.Error().Err(err).
			Str("event", "db_migration_failed").
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("failed to check sentinel table")
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info().
			Str("event", "db_migration_skip").
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("schema already exists, skipping migration")
		return nil
	}

	log.Info().Str("event", "db_migration_start").Int("steps", len(steps)).Msg("applying schema")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error().Err(err).
				Str("event", "db_migration_failed").
				Str("migration_step", step.Name).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Int64("step_duration_ms", time.Since(stepStart).Milliseconds()).
				Msg("migration step failed")
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Debug().
			Str("event", "db_migration_step").
			Str("migration_step", step.Name).
			Int64("step_duration_ms", time.Since(stepStart).Milliseconds()).
			Msg("migration step applied")
	}

	log.Info().
		Str("event", "db_migration_success").
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("schema created")

	return nil
}
