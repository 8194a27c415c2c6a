package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"hr-backoffice/internal/common/database"
	"hr-backoffice/internal/models"
)

type AdminStore struct {
	pg *database.PostgresClient
}

func NewAdminStore(pg *database.PostgresClient) *AdminStore {
	return &AdminStore{pg: pg}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GetByEmail returns the admin or ErrNotFound. Emails compare case-insensitively.
func (s *AdminStore) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var a models.Admin
	err := s.pg.WithConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		return conn.QueryRowContext(ctx,
			`SELECT id, email, password_hash, created_at FROM admins WHERE email = $1`,
			normalizeEmail(email),
		).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: admin %s", ErrNotFound, email)
	}
	if err != nil {
		return nil, fmt.Errorf("get admin: %w", err)
	}
	return &a, nil
}

// Upsert creates the admin or replaces its password hash.
func (s *AdminStore) Upsert(ctx context.Context, email, passwordHash string) (*models.Admin, error) {
	a := models.Admin{Email: normalizeEmail(email), PasswordHash: passwordHash}
	err := s.pg.WithConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, `
			INSERT INTO admins (email, password_hash, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash
			RETURNING id, created_at`,
			a.Email, passwordHash, time.Now().UTC(),
		).Scan(&a.ID, &a.CreatedAt)
	})
	if err != nil {
		return nil, fmt.Errorf("upsert admin: %w", err)
	}
	return &a, nil
}

// Exists reports whether an admin with email is present.
func (s *AdminStore) Exists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.pg.WithConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		return conn.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM admins WHERE email = $1)`, normalizeEmail(email),
		).Scan(&exists)
	})
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	return exists, nil
}
