// Package store is the persistence layer for jobs, applications and admins.
package store

import (
	"errors"

	"hr-backoffice/internal/common/database"
)

var (
	ErrNotFound = errors.New("RECORD_NOT_FOUND")
	// ErrJobReferenceMissing means an application insert referenced a job that no longer exists.
	ErrJobReferenceMissing = errors.New("JOB_REFERENCE_MISSING")
)

// Store groups the table-level stores over one connection pool.
type Store struct {
	Jobs         *JobStore
	Applications *ApplicationStore
	Admins       *AdminStore
}

func New(pg *database.PostgresClient) *Store {
	return &Store{
		Jobs:         NewJobStore(pg),
		Applications: NewApplicationStore(pg),
		Admins:       NewAdminStore(pg),
	}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}
