package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements creates the jobs, applications and admins tables. Applications
// reference jobs with ON DELETE CASCADE so the cascade policy also holds for
// deletes issued outside the service.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS jobs (
		id          BIGSERIAL PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL,
		location    TEXT NOT NULL,
		job_type    TEXT NOT NULL,
		posted_at   DATE NOT NULL DEFAULT CURRENT_DATE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS applications (
		id             BIGSERIAL PRIMARY KEY,
		job_id         BIGINT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
		applicant_name TEXT NOT NULL,
		email          TEXT NOT NULL,
		phone          TEXT NOT NULL,
		resume_locator TEXT,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_applications_job_id ON applications (job_id)`,
	`CREATE INDEX IF NOT EXISTS idx_applications_created_at ON applications (created_at)`,
	`CREATE TABLE IF NOT EXISTS admins (
		id            BIGSERIAL PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Migrate applies the schema in one transaction. Every statement is idempotent.
func Migrate(ctx context.Context, pg *PostgresClient) error {
	return pg.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		for i, stmt := range schemaStatements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("schema statement %d: %w", i+1, err)
			}
		}
		return nil
	})
}
