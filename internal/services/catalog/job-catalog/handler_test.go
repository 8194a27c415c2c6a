package jobcatalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	apperrors "hr-backoffice/internal/common/errors"
	"hr-backoffice/internal/common/logger"
	"hr-backoffice/internal/models"
	"hr-backoffice/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Doubles
// ==========================

type memoryJobs struct {
	mu        sync.Mutex
	nextID    int64
	jobs      map[int64]models.Job
	resumes   map[int64][]string
	failWith  error
	deleteErr error
}

func newMemoryJobs() *memoryJobs {
	return &memoryJobs{jobs: map[int64]models.Job{}, resumes: map[int64][]string{}}
}

func (m *memoryJobs) Create(_ context.Context, job *models.Job) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.nextID++
	j := *job
	j.ID = m.nextID
	m.jobs[j.ID] = j
	return &j, nil
}

func (m *memoryJobs) List(_ context.Context) ([]models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []models.Job
	for _, j := range m.jobs {
		out = append(out, j)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID > out[b].ID })
	return out, nil
}

func (m *memoryJobs) Get(_ context.Context, id int64) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: job %d", store.ErrNotFound, id)
	}
	return &j, nil
}

func (m *memoryJobs) Update(_ context.Context, job *models.Job) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.jobs[job.ID]
	if !ok {
		return nil, fmt.Errorf("%w: job %d", store.ErrNotFound, job.ID)
	}
	existing.Title = job.Title
	existing.Description = job.Description
	existing.Location = job.Location
	existing.JobType = job.JobType
	m.jobs[job.ID] = existing
	return &existing, nil
}

func (m *memoryJobs) Delete(_ context.Context, id int64) (*models.JobDeletion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return nil, m.deleteErr
	}
	if _, ok := m.jobs[id]; !ok {
		return nil, fmt.Errorf("%w: job %d", store.ErrNotFound, id)
	}
	locators := m.resumes[id]
	delete(m.jobs, id)
	delete(m.resumes, id)
	return &models.JobDeletion{JobID: id, ApplicationsRemoved: int64(len(locators)), ResumeLocators: locators}, nil
}

type recordingRemover struct {
	removed []string
	fail    map[string]bool
}

func (r *recordingRemover) Remove(locator string) error {
	if r.fail[locator] {
		return errors.New("permission denied")
	}
	r.removed = append(r.removed, locator)
	return nil
}

type MockStats struct {
	mock.Mock
}

func (m *MockStats) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockDeletionListener struct {
	mock.Mock
}

func (m *MockDeletionListener) JobDeleted(ctx context.Context, jobID int64) error {
	return m.Called(ctx, jobID).Error(0)
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second, Location: time.UTC}
}

func createTestInput() *Input {
	return &Input{
		Title:       "Backend Engineer",
		Description: "Build services",
		Location:    "Remote",
		JobType:     "Full-time",
	}
}

func setupHandler(t *testing.T) (*Handler, *memoryJobs, *recordingRemover, *MockStats) {
	jobs := newMemoryJobs()
	remover := &recordingRemover{fail: map[string]bool{}}
	stats := &MockStats{}
	stats.On("Invalidate", mock.Anything).Return(nil).Maybe()
	h := NewHandler(createTestConfig(), jobs, remover, stats, logger.NewTestLogger(t))
	return h, jobs, remover, stats
}

// ==========================
// Create / Read Tests
// ==========================

func TestHandler_CreateJob_Success(t *testing.T) {
	h, _, _, stats := setupHandler(t)
	h.now = func() time.Time { return time.Date(2024, 5, 10, 23, 30, 0, 0, time.UTC) }

	input := createTestInput()
	input.Title = "  Backend Engineer  "

	job, err := h.CreateJob(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, int64(1), job.ID)
	assert.Equal(t, "Backend Engineer", job.Title)
	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), job.PostedAt)
	stats.AssertCalled(t, "Invalidate", mock.Anything)
}

func TestHandler_CreateJob_PostedAtUsesConfiguredZone(t *testing.T) {
	h, _, _, _ := setupHandler(t)
	tokyo := time.FixedZone("JST", 9*3600)
	h.config.Location = tokyo
	h.now = func() time.Time { return time.Date(2024, 5, 10, 20, 0, 0, 0, time.UTC) }

	job, err := h.CreateJob(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.Equal(t, 11, job.PostedAt.Day())
}

func TestHandler_CreateJob_ValidationListsEveryMissingField(t *testing.T) {
	h, jobs, _, _ := setupHandler(t)

	_, err := h.CreateJob(context.Background(), &Input{Title: "   ", Location: "Berlin"})
	require.Error(t, err)

	stdErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeValidationFailed, stdErr.Code)

	var names []string
	for _, f := range stdErr.Fields {
		names = append(names, f.Field)
		assert.Equal(t, apperrors.FieldCodeRequired, f.Code)
	}
	assert.Equal(t, []string{"title", "description", "job_type"}, names)
	assert.Empty(t, jobs.jobs, "no job must be stored")
}

func TestHandler_CreateJob_DatabaseFailure(t *testing.T) {
	h, jobs, _, _ := setupHandler(t)
	jobs.failWith = errors.New("connection refused")

	_, err := h.CreateJob(context.Background(), createTestInput())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeDatabaseError))
}

func TestHandler_ListJobs_MostRecentFirst(t *testing.T) {
	h, _, _, _ := setupHandler(t)
	for _, title := range []string{"A", "B", "C"} {
		in := createTestInput()
		in.Title = title
		_, err := h.CreateJob(context.Background(), in)
		require.NoError(t, err)
	}

	jobs, err := h.ListJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, "C", jobs[0].Title)
	assert.Equal(t, "A", jobs[2].Title)
}

func TestHandler_ListJobs_EmptyIsNotNil(t *testing.T) {
	h, _, _, _ := setupHandler(t)

	jobs, err := h.ListJobs(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, jobs)
	assert.Empty(t, jobs)
}

func TestHandler_GetJob_NotFound(t *testing.T) {
	h, _, _, _ := setupHandler(t)

	_, err := h.GetJob(context.Background(), 42)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
}

// ==========================
// Update Tests
// ==========================

func TestHandler_UpdateJob(t *testing.T) {
	tests := []struct {
		name     string
		id       int64
		input    *Input
		wantCode apperrors.ErrorCode
	}{
		{name: "replaces fields", id: 1, input: &Input{Title: "Lead", Description: "d", Location: "NYC", JobType: "Contract"}},
		{name: "missing field", id: 1, input: &Input{Title: "Lead"}, wantCode: apperrors.ErrCodeValidationFailed},
		{name: "unknown job", id: 99, input: createTestInput(), wantCode: apperrors.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, _, _ := setupHandler(t)
			_, err := h.CreateJob(context.Background(), createTestInput())
			require.NoError(t, err)

			job, err := h.UpdateJob(context.Background(), tt.id, tt.input)
			if tt.wantCode != "" {
				assert.True(t, apperrors.IsCode(err, tt.wantCode), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Lead", job.Title)
			assert.Equal(t, "Contract", job.JobType)
		})
	}
}

// ==========================
// Delete Tests
// ==========================

func TestHandler_DeleteJob_RemovesResumesAndNotifies(t *testing.T) {
	h, jobs, remover, stats := setupHandler(t)
	_, err := h.CreateJob(context.Background(), createTestInput())
	require.NoError(t, err)
	jobs.resumes[1] = []string{"r1.pdf", "r2.pdf", "r3.pdf"}
	remover.fail["r2.pdf"] = true

	listener := &MockDeletionListener{}
	listener.On("JobDeleted", mock.Anything, int64(1)).Return(errors.New("index unavailable"))
	h.AddDeletionListener(listener)

	out, err := h.DeleteJob(context.Background(), 1)
	require.NoError(t, err, "cleanup failures must not fail the deletion")
	assert.Equal(t, int64(3), out.ApplicationsRemoved)
	assert.Equal(t, 2, out.ResumesRemoved)
	assert.Equal(t, []string{"r1.pdf", "r3.pdf"}, remover.removed)
	listener.AssertExpectations(t)
	stats.AssertNumberOfCalls(t, "Invalidate", 2)

	_, err = h.GetJob(context.Background(), 1)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
}

func TestHandler_DeleteJob_NotFound(t *testing.T) {
	h, _, remover, _ := setupHandler(t)

	_, err := h.DeleteJob(context.Background(), 7)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
	assert.Empty(t, remover.removed)
}

func TestHandler_DeleteJob_TransactionFailure(t *testing.T) {
	h, jobs, _, _ := setupHandler(t)
	jobs.deleteErr = errors.New("deadlock detected")

	_, err := h.DeleteJob(context.Background(), 1)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeDatabaseError))
}

func TestHandler_NilStatsIsAllowed(t *testing.T) {
	h := NewHandler(nil, newMemoryJobs(), &recordingRemover{}, nil, logger.NewNoOpLogger())

	_, err := h.CreateJob(context.Background(), createTestInput())
	assert.NoError(t, err)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, (&Config{Timeout: 0, Location: time.UTC}).Validate())
	assert.Error(t, (&Config{Timeout: time.Second}).Validate())
}
