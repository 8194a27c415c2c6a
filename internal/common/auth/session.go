// internal/common/auth/session.go
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"hr-backoffice/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

var (
	ErrInvalidToken    = errors.New("INVALID_SESSION_TOKEN")
	ErrSessionNotFound = errors.New("SESSION_NOT_FOUND")
)

// SessionManager keeps staff sessions in Redis. Tokens handed to clients are
// "<session id>.<signature>" where the signature is an HMAC-SHA256 of the id.
type SessionManager struct {
	redis  redis.Cmdable
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	newID  func() string
}

func NewSessionManager(rdb redis.Cmdable, secret string, ttl time.Duration) (*SessionManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &SessionManager{
		redis:  rdb,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		newID:  uuid.NewString,
	}, nil
}

func (m *SessionManager) TTL() time.Duration { return m.ttl }

// Create opens a session for email and returns its signed token.
func (m *SessionManager) Create(ctx context.Context, email string) (string, *models.Session, error) {
	now := m.now().UTC()
	session := &models.Session{
		ID:        m.newID(),
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	data, err := json.Marshal(session)
	if err != nil {
		return "", nil, fmt.Errorf("encode session: %w", err)
	}
	if err := m.redis.Set(ctx, sessionKeyPrefix+session.ID, data, m.ttl).Err(); err != nil {
		return "", nil, fmt.Errorf("store session: %w", err)
	}
	return session.ID + "." + m.sign(session.ID), session, nil
}

// Lookup resolves a token to its live session.
func (m *SessionManager) Lookup(ctx context.Context, token string) (*models.Session, error) {
	id, err := m.verify(token)
	if err != nil {
		return nil, err
	}

	data, err := m.redis.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if m.now().After(session.ExpiresAt) {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

// Revoke deletes the session behind token. Revoking twice is not an error.
func (m *SessionManager) Revoke(ctx context.Context, token string) error {
	id, err := m.verify(token)
	if err != nil {
		return err
	}
	if err := m.redis.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (m *SessionManager) sign(id string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (m *SessionManager) verify(token string) (string, error) {
	id, sig, ok := strings.Cut(token, ".")
	if !ok || id == "" || sig == "" {
		return "", ErrInvalidToken
	}
	if !hmac.Equal([]byte(sig), []byte(m.sign(id))) {
		return "", ErrInvalidToken
	}
	return id, nil
}
