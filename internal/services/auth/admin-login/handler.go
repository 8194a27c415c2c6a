package adminlogin

import (
	"context"
	"errors"
	"strings"

	"hr-backoffice/internal/common/auth"
	apperrors "hr-backoffice/internal/common/errors"
	"hr-backoffice/internal/common/logger"
	"hr-backoffice/internal/models"
	"hr-backoffice/internal/store"
)

const OperationName = "admin-login"

const invalidCredentials = "invalid email or password"

type AdminLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
}

type SessionCreator interface {
	Create(ctx context.Context, email string) (string, *models.Session, error)
}

type Handler struct {
	config   *Config
	admins   AdminLookup
	sessions SessionCreator
	logger   logger.Logger
}

func NewHandler(config *Config, admins AdminLookup, sessions SessionCreator, log logger.Logger) *Handler {
	if config == nil {
		config = DefaultConfig()
	}
	return &Handler{
		config:   config,
		admins:   admins,
		sessions: sessions,
		logger:   log.WithFields(map[string]interface{}{"operation": OperationName}),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		var fields []apperrors.FieldError
		if email == "" {
			fields = append(fields, apperrors.FieldError{Field: "email", Code: apperrors.FieldCodeRequired, Message: "email is required"})
		}
		if input.Password == "" {
			fields = append(fields, apperrors.FieldError{Field: "password", Code: apperrors.FieldCodeRequired, Message: "password is required"})
		}
		return nil, apperrors.NewValidationError(fields...)
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	admin, err := h.admins.GetByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		auth.CheckDummy(input.Password)
		h.logger.Warn("login rejected", map[string]interface{}{"email": email, "reason": "unknown account"})
		return nil, apperrors.NewAuthenticationError(invalidCredentials)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("get admin", err)
	}

	if !auth.CheckPassword(admin.PasswordHash, input.Password) {
		h.logger.Warn("login rejected", map[string]interface{}{"email": email, "reason": "password mismatch"})
		return nil, apperrors.NewAuthenticationError(invalidCredentials)
	}

	token, session, err := h.sessions.Create(ctx, admin.Email)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	h.logger.Info("admin logged in", map[string]interface{}{"email": admin.Email})
	return &Output{Token: token, Email: admin.Email, ExpiresAt: session.ExpiresAt}, nil
}
