package exportapplications

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	apperrors "hr-backoffice/internal/common/errors"
	"hr-backoffice/internal/common/logger"
	"hr-backoffice/internal/common/observability"
	"hr-backoffice/internal/common/storage"
	"hr-backoffice/internal/models"
	listapplications "hr-backoffice/internal/services/review/list-applications"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// ==========================
// Test Doubles
// ==========================

type staticApplications struct {
	rows []models.ApplicationWithJobTitle
	err  error
}

func (s *staticApplications) List(_ context.Context, f models.ApplicationFilter) ([]models.ApplicationWithJobTitle, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.ApplicationWithJobTitle
	for _, r := range s.rows {
		if f.JobID == nil || r.JobID == *f.JobID {
			out = append(out, r)
		}
	}
	return out, nil
}

type brokenArtifacts struct{ ArtifactStore }

func (brokenArtifacts) Write(string, string, func(io.Writer) error) (string, error) {
	return "", errors.New("no space left on device")
}

type unreadableArtifacts struct{ *storage.ArtifactStore }

func (unreadableArtifacts) Open(string) (afero.File, os.FileInfo, error) {
	return nil, nil, errors.New("stat artifact: input/output error")
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second, SheetName: "Applications", Location: time.UTC}
}

func sampleRows() []models.ApplicationWithJobTitle {
	created := time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)
	mk := func(id, jobID int64, title, name string) models.ApplicationWithJobTitle {
		return models.ApplicationWithJobTitle{
			Application: models.Application{
				ID: id, JobID: jobID, ApplicantName: name,
				Email: name + "@example.com", Phone: "555-000" + string(rune('0'+id)),
				CreatedAt: created,
			},
			JobTitle: title,
		}
	}
	return []models.ApplicationWithJobTitle{
		mk(3, 2, "Designer", "carol"),
		mk(2, 1, "Engineer", "bob"),
		mk(1, 1, "Engineer", "alice"),
	}
}

type fixture struct {
	handler   *Handler
	fs        afero.Fs
	artifacts *storage.ArtifactStore
	lister    *listapplications.Handler
}

func setup(t *testing.T, apps *staticApplications) *fixture {
	fs := afero.NewMemMapFs()
	artifacts, err := storage.NewArtifactStore(fs, "/exports")
	require.NoError(t, err)

	lister := listapplications.NewHandler(&listapplications.Config{Timeout: time.Second, Location: time.UTC}, apps, logger.NewTestLogger(t))
	return &fixture{
		handler:   NewHandler(createTestConfig(), lister, artifacts, observability.Nop(), logger.NewTestLogger(t)),
		fs:        fs,
		artifacts: artifacts,
		lister:    lister,
	}
}

func readRows(t *testing.T, f *fixture, name string) [][]string {
	file, _, err := f.artifacts.Open(name)
	require.NoError(t, err)
	defer file.Close()

	wb, err := excelize.OpenReader(file)
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{"Applications"}, wb.GetSheetList())
	rows, err := wb.GetRows("Applications")
	require.NoError(t, err)
	return rows
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_RowsMatchListing(t *testing.T) {
	f := setup(t, &staticApplications{rows: sampleRows()})

	out, err := f.handler.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	assert.Equal(t, "all", out.Scope)
	assert.Equal(t, "job_applications.xlsx", out.DownloadName)
	assert.Regexp(t, `^applications_all_[0-9a-f-]{36}\.xlsx$`, out.ArtifactName)

	listing, err := f.lister.Execute(context.Background(), &listapplications.Input{})
	require.NoError(t, err)
	assert.Equal(t, len(listing.Applications), out.RowCount)

	rows := readRows(t, f, out.ArtifactName)
	require.Len(t, rows, len(listing.Applications)+1)
	assert.Equal(t, Header, rows[0])
	for i, a := range listing.Applications {
		assert.Equal(t, []string{a.JobTitle, a.ApplicantName, a.Email, a.Phone}, rows[i+1])
	}
}

func TestHandler_Execute_SingleJob(t *testing.T) {
	f := setup(t, &staticApplications{rows: sampleRows()})

	out, err := f.handler.Execute(context.Background(), &Input{Filters: listapplications.Input{JobID: "1"}})
	require.NoError(t, err)
	assert.Equal(t, "job_1", out.Scope)
	assert.Equal(t, "applications_job_1.xlsx", out.DownloadName)
	assert.Equal(t, 2, out.RowCount)

	rows := readRows(t, f, out.ArtifactName)
	require.Len(t, rows, 3)
	assert.Equal(t, "bob", rows[1][1])
	assert.Equal(t, "alice", rows[2][1])
}

func TestHandler_Execute_CreatedAtColumn(t *testing.T) {
	tests := []struct {
		name       string
		configured bool
		override   *bool
		want       bool
	}{
		{name: "default off", want: false},
		{name: "default on", configured: true, want: true},
		{name: "request enables", override: boolPtr(true), want: true},
		{name: "request disables", configured: true, override: boolPtr(false), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, &staticApplications{rows: sampleRows()})
			f.handler.config.IncludeCreatedAt = tt.configured

			out, err := f.handler.Execute(context.Background(), &Input{IncludeCreatedAt: tt.override})
			require.NoError(t, err)

			rows := readRows(t, f, out.ArtifactName)
			if tt.want {
				assert.Equal(t, append(append([]string{}, Header...), CreatedAtHeader), rows[0])
				assert.Equal(t, "2024-03-10 14:30:00", rows[1][4])
			} else {
				assert.Equal(t, Header, rows[0])
			}
		})
	}
}

func TestHandler_Execute_EmptyListingHasHeaderOnly(t *testing.T) {
	f := setup(t, &staticApplications{})

	out, err := f.handler.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	assert.Equal(t, 0, out.RowCount)
	assert.Equal(t, [][]string{Header}, readRows(t, f, out.ArtifactName))
}

func TestHandler_Execute_FreshArtifactPerCall(t *testing.T) {
	f := setup(t, &staticApplications{rows: sampleRows()})

	a, err := f.handler.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	b, err := f.handler.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	assert.NotEqual(t, a.ArtifactName, b.ArtifactName)
}

// ==========================
// Failure Path Tests
// ==========================

func TestHandler_Execute_FilterErrorStaysValidation(t *testing.T) {
	f := setup(t, &staticApplications{})

	_, err := f.handler.Execute(context.Background(), &Input{Filters: listapplications.Input{StartDate: "yesterday"}})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidationFailed))
}

func TestHandler_Execute_QueryFailure(t *testing.T) {
	f := setup(t, &staticApplications{err: errors.New("relation does not exist")})

	_, err := f.handler.Execute(context.Background(), &Input{})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeExportFailed))

	entries, _ := afero.ReadDir(f.fs, "/exports")
	assert.Empty(t, entries)
}

func TestHandler_Execute_SerializationFailure(t *testing.T) {
	f := setup(t, &staticApplications{rows: sampleRows()})
	h := NewHandler(createTestConfig(), f.lister, brokenArtifacts{}, nil, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeExportFailed))
}

// ==========================
// Artifact Streaming Tests
// ==========================

func TestHandler_OpenArtifact_RemovedOnClose(t *testing.T) {
	f := setup(t, &staticApplications{rows: sampleRows()})
	out, err := f.handler.Execute(context.Background(), &Input{})
	require.NoError(t, err)

	artifact, err := f.handler.OpenArtifact(out.ArtifactName)
	require.NoError(t, err)
	data, err := io.ReadAll(artifact)
	require.NoError(t, err)
	assert.Equal(t, artifact.Size, int64(len(data)))
	require.NoError(t, artifact.Close())

	_, _, err = f.artifacts.Open(out.ArtifactName)
	assert.ErrorIs(t, err, storage.ErrArtifactNotFound)
}

func TestHandler_OpenArtifact_UnreadableIsRemoved(t *testing.T) {
	f := setup(t, &staticApplications{rows: sampleRows()})
	h := NewHandler(createTestConfig(), f.lister, unreadableArtifacts{f.artifacts}, nil, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	file, _, err := f.artifacts.Open(out.ArtifactName)
	require.NoError(t, err)
	require.NoError(t, file.Close())

	_, err = h.OpenArtifact(out.ArtifactName)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeExportFailed))

	_, _, err = f.artifacts.Open(out.ArtifactName)
	assert.ErrorIs(t, err, storage.ErrArtifactNotFound)
	entries, _ := afero.ReadDir(f.fs, "/exports")
	assert.Empty(t, entries)
}

func TestHandler_OpenArtifact_Missing(t *testing.T) {
	f := setup(t, &staticApplications{})

	_, err := f.handler.OpenArtifact("applications_all_missing.xlsx")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeExportFailed))
	assert.ErrorIs(t, err, storage.ErrArtifactNotFound)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, (&Config{Timeout: time.Second, SheetName: "", Location: time.UTC}).Validate())
	assert.Error(t, (&Config{Timeout: time.Second, SheetName: "this sheet name is far too long for excel", Location: time.UTC}).Validate())
}

func boolPtr(b bool) *bool { return &b }
