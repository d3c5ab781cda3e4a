package migration

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v4/pgxpool"
)

// Migration represents a database migration
type Migration struct {
	Name string
	SQL  string
}

// Migrations lists the schema steps in order. Every step is idempotent.
var Migrations = []Migration{
	{
		Name: "create_resumes",
		SQL: `CREATE TABLE IF NOT EXISTS resumes (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			name TEXT NOT NULL,
			template_id TEXT NOT NULL,
			content JSONB NOT NULL DEFAULT '{}'::jsonb,
			status TEXT NOT NULL DEFAULT 'draft',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	},
	{
		Name: "index_resumes_user",
		SQL:  `CREATE INDEX IF NOT EXISTS resumes_user_updated_idx ON resumes (user_id, updated_at DESC)`,
	},
	{
		Name: "check_resumes_status",
		SQL: `DO $$ BEGIN
			ALTER TABLE resumes ADD CONSTRAINT resumes_status_check CHECK (status IN ('draft', 'published', 'archived'));
		EXCEPTION WHEN duplicate_object THEN NULL;
		END $$`,
	},
	{
		Name: "create_profiles",
		SQL: `CREATE TABLE IF NOT EXISTS profiles (
			user_id UUID PRIMARY KEY,
			data JSONB NOT NULL DEFAULT '{}'::jsonb,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	},
}

// RunMigrations executes all necessary database migrations on startup
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("Starting database migrations")

	for _, m := range Migrations {
		if _, err := pool.Exec(ctx, m.SQL); err != nil {
			slog.Error("Migration failed", "name", m.Name, "error", err)
			return err
		}
		slog.Info("Migration completed", "name", m.Name)
	}

	slog.Info("All migrations completed successfully")
	return nil
}
