// Package adminlogout ends staff sessions.
package adminlogout

import (
	"context"
	"errors"
	"time"

	"hr-backoffice/internal/common/auth"
	apperrors "hr-backoffice/internal/common/errors"
	"hr-backoffice/internal/common/logger"
)

const OperationName = "admin-logout"

type SessionRevoker interface {
	Revoke(ctx context.Context, token string) error
}

type Handler struct {
	config   *Config
	sessions SessionRevoker
	logger   logger.Logger
	now      func() time.Time
}

func NewHandler(config *Config, sessions SessionRevoker, log logger.Logger) *Handler {
	if config == nil {
		config = DefaultConfig()
	}
	return &Handler{
		config:   config,
		sessions: sessions,
		logger:   log.WithFields(map[string]interface{}{"operation": OperationName}),
		now:      time.Now,
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Token == "" {
		return nil, apperrors.NewAuthenticationError("session token is required")
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	if err := h.sessions.Revoke(ctx, input.Token); err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return nil, apperrors.NewAuthenticationError("invalid session token")
		}
		return nil, apperrors.NewInternalError(err)
	}

	h.logger.Info("session revoked", nil)
	return &Output{
		Success:  true,
		Message:  "Logout successful",
		LogoutAt: h.now().UTC(),
	}, nil
}
