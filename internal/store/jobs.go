package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hr-backoffice/internal/common/database"
	"hr-backoffice/internal/models"
)

const jobColumns = `id, title, description, location, job_type, posted_at, created_at`

type JobStore struct {
	pg *database.PostgresClient
}

func NewJobStore(pg *database.PostgresClient) *JobStore {
	return &JobStore{pg: pg}
}

func scanJob(row rowScanner) (*models.Job, error) {
	var j models.Job
	if err := row.Scan(&j.ID, &j.Title, &j.Description, &j.Location, &j.JobType, &j.PostedAt, &j.CreatedAt); err != nil {
		return nil, err
	}
	return &j, nil
}

// Create inserts job and returns it with its assigned id.
func (s *JobStore) Create(ctx context.Context, job *models.Job) (*models.Job, error) {
	created := *job
	err := s.pg.WithConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, `
			INSERT INTO jobs (title, description, location, job_type, posted_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			job.Title, job.Description, job.Location, job.JobType, job.PostedAt, job.CreatedAt,
		).Scan(&created.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	return &created, nil
}

// List returns every job, most recently created first.
func (s *JobStore) List(ctx context.Context) ([]models.Job, error) {
	jobs := []models.Job{}
	err := s.pg.WithConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY id DESC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			j, err := scanJob(rows)
			if err != nil {
				return err
			}
			jobs = append(jobs, *j)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// Get returns the job or ErrNotFound.
func (s *JobStore) Get(ctx context.Context, id int64) (*models.Job, error) {
	var job *models.Job
	err := s.pg.WithConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		var err error
		job, err = scanJob(conn.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: job %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// Update replaces the mutable fields. posted_at and created_at are left untouched.
func (s *JobStore) Update(ctx context.Context, job *models.Job) (*models.Job, error) {
	var updated *models.Job
	err := s.pg.WithConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		var err error
		updated, err = scanJob(conn.QueryRowContext(ctx, `
			UPDATE jobs SET title = $1, description = $2, location = $3, job_type = $4
			WHERE id = $5
			RETURNING `+jobColumns,
			job.Title, job.Description, job.Location, job.JobType, job.ID,
		))
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: job %d", ErrNotFound, job.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("update job: %w", err)
	}
	return updated, nil
}

// Delete removes the job and every application referencing it in one
// transaction. The job row is locked first so a concurrent submission either
// lands before the cascade or fails its foreign key.
func (s *JobStore) Delete(ctx context.Context, id int64) (*models.JobDeletion, error) {
	result := &models.JobDeletion{JobID: id, ResumeLocators: []string{}}

	err := s.pg.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var locked int64
		if err := tx.QueryRowContext(ctx, `SELECT id FROM jobs WHERE id = $1 FOR UPDATE`, id).Scan(&locked); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: job %d", ErrNotFound, id)
			}
			return err
		}

		rows, err := tx.QueryContext(ctx, `
			SELECT resume_locator FROM applications
			WHERE job_id = $1 AND resume_locator IS NOT NULL`, id)
		if err != nil {
			return err
		}
		for rows.Next() {
			var locator string
			if err := rows.Scan(&locator); err != nil {
				rows.Close()
				return err
			}
			result.ResumeLocators = append(result.ResumeLocators, locator)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()

		res, err := tx.ExecContext(ctx, `DELETE FROM applications WHERE job_id = $1`, id)
		if err != nil {
			return err
		}
		if result.ApplicationsRemoved, err = res.RowsAffected(); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id); err != nil {
			return err
		}
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("delete job: %w", err)
	}
	return result, nil
}

// Count returns the number of jobs.
func (s *JobStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.pg.WithConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("count jobs: %w", err)
	}
	return n, nil
}
