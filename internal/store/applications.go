package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"hr-backoffice/internal/common/database"
	"hr-backoffice/internal/models"
)

type ApplicationStore struct {
	pg *database.PostgresClient
}

func NewApplicationStore(pg *database.PostgresClient) *ApplicationStore {
	return &ApplicationStore{pg: pg}
}

// Insert stores app and returns it with its assigned id. A job deleted in the
// meantime surfaces as ErrJobReferenceMissing.
func (s *ApplicationStore) Insert(ctx context.Context, app *models.Application) (*models.Application, error) {
	created := *app

	var locator sql.NullString
	if app.ResumeLocator != nil {
		locator = sql.NullString{String: *app.ResumeLocator, Valid: true}
	}

	err := s.pg.WithConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, `
			INSERT INTO applications (job_id, applicant_name, email, phone, resume_locator, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			app.JobID, app.ApplicantName, app.Email, app.Phone, locator, app.CreatedAt,
		).Scan(&created.ID)
	})
	if database.IsPQCode(err, database.CodeForeignKeyViolation) {
		return nil, fmt.Errorf("%w: job %d", ErrJobReferenceMissing, app.JobID)
	}
	if err != nil {
		return nil, fmt.Errorf("insert application: %w", err)
	}
	return &created, nil
}

// List returns the applications matching filter joined with their job
// title, newest id first. An empty result is an empty slice.
func (s *ApplicationStore) List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationWithJobTitle, error) {
	query, args := buildListQuery(filter)

	out := []models.ApplicationWithJobTitle{}
	err := s.pg.WithConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				row     models.ApplicationWithJobTitle
				locator sql.NullString
			)
			if err := rows.Scan(
				&row.ID, &row.JobID, &row.ApplicantName, &row.Email, &row.Phone,
				&locator, &row.CreatedAt, &row.JobTitle,
			); err != nil {
				return err
			}
			if locator.Valid {
				l := locator.String
				row.ResumeLocator = &l
			}
			out = append(out, row)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return out, nil
}

// buildListQuery translates filter into positional predicates joined with AND.
func buildListQuery(filter models.ApplicationFilter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(expr string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(expr, len(args)))
	}

	if filter.JobID != nil {
		add("a.job_id = $%d", *filter.JobID)
	}
	if filter.CreatedFrom != nil {
		add("a.created_at >= $%d", *filter.CreatedFrom)
	}
	if filter.CreatedBefore != nil {
		add("a.created_at < $%d", *filter.CreatedBefore)
	}

	var b strings.Builder
	b.WriteString(`SELECT a.id, a.job_id, a.applicant_name, a.email, a.phone, a.resume_locator, a.created_at, j.title
		FROM applications a
		JOIN jobs j ON j.id = a.job_id`)
	if len(conds) > 0 {
		b.WriteString("\n\t\tWHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	b.WriteString("\n\t\tORDER BY a.id DESC")

	return b.String(), args
}

// Count returns the number of applications.
func (s *ApplicationStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.pg.WithConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM applications`).Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("count applications: %w", err)
	}
	return n, nil
}

// ResumeReferenced reports whether any application points at locator.
func (s *ApplicationStore) ResumeReferenced(ctx context.Context, locator string) (bool, error) {
	var exists bool
	err := s.pg.WithConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		return conn.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM applications WHERE resume_locator = $1)`, locator,
		).Scan(&exists)
	})
	if err != nil {
		return false, fmt.Errorf("check resume reference: %w", err)
	}
	return exists, nil
}
