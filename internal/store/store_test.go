package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"hr-backoffice/internal/common/database"
	"hr-backoffice/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(database.NewPostgresFromDB(db, time.Second)), mock
}

var jobRowColumns = []string{"id", "title", "description", "location", "job_type", "posted_at", "created_at"}

var listColumns = []string{"id", "job_id", "applicant_name", "email", "phone", "resume_locator", "created_at", "title"}

func createTestJob() *models.Job {
	now := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	return &models.Job{
		Title:       "Backend Engineer",
		Description: "Build services",
		Location:    "Remote",
		JobType:     "Full-time",
		PostedAt:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt:   now,
	}
}

func ptr[T any](v T) *T { return &v }

// ==========================
// Job Store Tests
// ==========================

func TestJobStore_Create(t *testing.T) {
	s, mock := newTestStore(t)
	job := createTestJob()

	mock.ExpectQuery(`INSERT INTO jobs`).
		WithArgs("Backend Engineer", "Build services", "Remote", "Full-time", job.PostedAt, job.CreatedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	created, err := s.Jobs.Create(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, int64(11), created.ID)
	assert.Equal(t, "Backend Engineer", created.Title)
	assert.Zero(t, job.ID, "input must not be mutated")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobStore_List_NewestFirst(t *testing.T) {
	s, mock := newTestStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT (.+) FROM jobs ORDER BY id DESC`).
		WillReturnRows(sqlmock.NewRows(jobRowColumns).
			AddRow(2, "B", "d", "l", "t", now, now).
			AddRow(1, "A", "d", "l", "t", now, now))

	jobs, err := s.Jobs.List(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, int64(2), jobs[0].ID)
	assert.Equal(t, int64(1), jobs[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobStore_List_EmptyIsNotNil(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(`SELECT (.+) FROM jobs`).WillReturnRows(sqlmock.NewRows(jobRowColumns))

	jobs, err := s.Jobs.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, jobs)
	assert.Empty(t, jobs)
}

func TestJobStore_Get_NotFound(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(`SELECT (.+) FROM jobs WHERE id = \$1`).
		WithArgs(int64(999999)).
		WillReturnRows(sqlmock.NewRows(jobRowColumns))

	job, err := s.Jobs.Get(context.Background(), 999999)
	assert.Nil(t, job)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobStore_Update(t *testing.T) {
	s, mock := newTestStore(t)
	job := createTestJob()
	job.ID = 4
	job.Title = "Senior Backend Engineer"

	mock.ExpectQuery(`UPDATE jobs SET title = \$1`).
		WithArgs("Senior Backend Engineer", "Build services", "Remote", "Full-time", int64(4)).
		WillReturnRows(sqlmock.NewRows(jobRowColumns).
			AddRow(4, "Senior Backend Engineer", "Build services", "Remote", "Full-time", job.PostedAt, job.CreatedAt))

	updated, err := s.Jobs.Update(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, "Senior Backend Engineer", updated.Title)
	assert.Equal(t, job.PostedAt, updated.PostedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobStore_Update_NotFound(t *testing.T) {
	s, mock := newTestStore(t)
	job := createTestJob()
	job.ID = 77

	mock.ExpectQuery(`UPDATE jobs`).WillReturnRows(sqlmock.NewRows(jobRowColumns))

	_, err := s.Jobs.Update(context.Background(), job)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJobStore_Delete_CascadesApplications(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM jobs WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectQuery(`SELECT resume_locator FROM applications`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"resume_locator"}).AddRow("a_cv.pdf").AddRow("b_cv.pdf"))
	mock.ExpectExec(`DELETE FROM applications WHERE job_id = \$1`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM jobs WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := s.Jobs.Delete(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.JobID)
	assert.Equal(t, int64(3), res.ApplicationsRemoved)
	assert.Equal(t, []string{"a_cv.pdf", "b_cv.pdf"}, res.ResumeLocators)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobStore_Delete_NotFoundRollsBack(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM jobs WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	res, err := s.Jobs.Delete(context.Background(), 404)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobStore_Delete_FailureRollsBack(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM jobs`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectQuery(`SELECT resume_locator`).WillReturnRows(sqlmock.NewRows([]string{"resume_locator"}))
	mock.ExpectExec(`DELETE FROM applications`).WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	_, err := s.Jobs.Delete(context.Background(), 5)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Application Store Tests
// ==========================

func TestApplicationStore_Insert(t *testing.T) {
	s, mock := newTestStore(t)
	created := time.Now().UTC()
	app := &models.Application{
		JobID: 3, ApplicantName: "Ada", Email: "ada@example.com", Phone: "5550100",
		ResumeLocator: ptr("20240301T093000_x_cv.pdf"), CreatedAt: created,
	}

	mock.ExpectQuery(`INSERT INTO applications`).
		WithArgs(int64(3), "Ada", "ada@example.com", "5550100", "20240301T093000_x_cv.pdf", created).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(101))

	got, err := s.Applications.Insert(context.Background(), app)
	require.NoError(t, err)
	assert.Equal(t, int64(101), got.ID)
	assert.Equal(t, int64(3), got.JobID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationStore_Insert_WithoutResume(t *testing.T) {
	s, mock := newTestStore(t)
	app := &models.Application{JobID: 3, ApplicantName: "Ada", Email: "ada@example.com", Phone: "1", CreatedAt: time.Now()}

	mock.ExpectQuery(`INSERT INTO applications`).
		WithArgs(int64(3), "Ada", "ada@example.com", "1", nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(102))

	got, err := s.Applications.Insert(context.Background(), app)
	require.NoError(t, err)
	assert.Nil(t, got.ResumeLocator)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationStore_Insert_ForeignKeyViolation(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(`INSERT INTO applications`).
		WillReturnError(&pq.Error{Code: database.CodeForeignKeyViolation, Message: "violates foreign key constraint"})

	_, err := s.Applications.Insert(context.Background(), &models.Application{JobID: 9})
	assert.ErrorIs(t, err, ErrJobReferenceMissing)
}

func TestBuildListQuery(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	before := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		filter    models.ApplicationFilter
		wantWhere string
		wantArgs  []interface{}
	}{
		{
			name:      "no filters",
			filter:    models.ApplicationFilter{},
			wantWhere: "",
			wantArgs:  nil,
		},
		{
			name:      "job only",
			filter:    models.ApplicationFilter{JobID: ptr(int64(7))},
			wantWhere: "WHERE a.job_id = $1",
			wantArgs:  []interface{}{int64(7)},
		},
		{
			name:      "end date only",
			filter:    models.ApplicationFilter{CreatedBefore: &before},
			wantWhere: "WHERE a.created_at < $1",
			wantArgs:  []interface{}{before},
		},
		{
			name:      "all filters",
			filter:    models.ApplicationFilter{JobID: ptr(int64(7)), CreatedFrom: &from, CreatedBefore: &before},
			wantWhere: "WHERE a.job_id = $1 AND a.created_at >= $2 AND a.created_at < $3",
			wantArgs:  []interface{}{int64(7), from, before},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildListQuery(tt.filter)

			assert.Contains(t, query, "JOIN jobs j ON j.id = a.job_id")
			assert.Contains(t, query, "ORDER BY a.id DESC")
			if tt.wantWhere == "" {
				assert.NotContains(t, query, "WHERE")
			} else {
				assert.Contains(t, query, tt.wantWhere)
			}
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestApplicationStore_List_WithFilters(t *testing.T) {
	s, mock := newTestStore(t)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	before := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	created := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`WHERE a.job_id = \$1 AND a.created_at >= \$2 AND a.created_at < \$3\s+ORDER BY a.id DESC`).
		WithArgs(int64(3), from, before).
		WillReturnRows(sqlmock.NewRows(listColumns).
			AddRow(12, 3, "Grace", "grace@example.com", "555", "loc-12", created, "Backend Engineer").
			AddRow(10, 3, "Ada", "ada@example.com", "556", nil, created, "Backend Engineer"))

	rows, err := s.Applications.List(context.Background(), models.ApplicationFilter{
		JobID: ptr(int64(3)), CreatedFrom: &from, CreatedBefore: &before,
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(12), rows[0].ID)
	assert.Equal(t, "Backend Engineer", rows[0].JobTitle)
	require.NotNil(t, rows[0].ResumeLocator)
	assert.Equal(t, "loc-12", *rows[0].ResumeLocator)
	assert.Nil(t, rows[1].ResumeLocator)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationStore_List_NoMatchesIsEmpty(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(`FROM applications a`).WillReturnRows(sqlmock.NewRows(listColumns))

	rows, err := s.Applications.List(context.Background(), models.ApplicationFilter{})
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestApplicationStore_Count(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM applications`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	n, err := s.Applications.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
}

// ==========================
// Admin Store Tests
// ==========================

func TestAdminStore_GetByEmail_Normalizes(t *testing.T) {
	s, mock := newTestStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, email, password_hash, created_at FROM admins WHERE email = \$1`).
		WithArgs("hr@company.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
			AddRow(1, "hr@company.com", "$2a$10$hash", now))

	admin, err := s.Admins.GetByEmail(context.Background(), "  HR@Company.com ")
	require.NoError(t, err)
	assert.Equal(t, "hr@company.com", admin.Email)
	assert.Equal(t, "$2a$10$hash", admin.PasswordHash)
}

func TestAdminStore_GetByEmail_NotFound(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(`FROM admins`).WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at"}))

	_, err := s.Admins.GetByEmail(context.Background(), "nobody@company.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdminStore_Upsert(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(`INSERT INTO admins`).
		WithArgs("hr@company.com", "hash", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, time.Now()))

	admin, err := s.Admins.Upsert(context.Background(), "HR@company.com", "hash")
	require.NoError(t, err)
	assert.Equal(t, int64(1), admin.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
