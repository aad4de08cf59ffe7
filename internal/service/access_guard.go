package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/aw-admin-api/internal/models"
	appErrors "github.com/noah-isme/aw-admin-api/pkg/errors"
)

type tokenValidator interface {
	Validate(token string) (*models.Principal, error)
}

type guardUserRepository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// Reasons recorded for rejected credentials.
const (
	ReasonMissingToken = "missing_token"
	ReasonExpired      = "expired"
	ReasonInvalid      = "invalid"
	ReasonPayload      = "payload"
	ReasonUnknownUser  = "unknown_user"
	ReasonInactive     = "inactive"
)

// AccessGuard resolves bearer tokens to active users and enforces role gates.
type AccessGuard struct {
	tokens  tokenValidator
	users   guardUserRepository
	metrics *MetricsService
	logger  *zap.Logger
}

// NewAccessGuard constructs an AccessGuard.
func NewAccessGuard(tokens tokenValidator, users guardUserRepository, metrics *MetricsService, logger *zap.Logger) *AccessGuard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessGuard{tokens: tokens, users: users, metrics: metrics, logger: logger}
}

// Authenticate returns the active user owning token. Every credential problem
// yields the same 401 so callers learn nothing about the cause.
func (g *AccessGuard) Authenticate(ctx context.Context, token string) (*models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, g.reject(ReasonMissingToken, 0)
	}

	principal, err := g.tokens.Validate(token)
	if err != nil {
		switch {
		case errors.Is(err, ErrTokenExpired):
			return nil, g.reject(ReasonExpired, 0)
		case errors.Is(err, ErrTokenPayload):
			return nil, g.reject(ReasonPayload, 0)
		default:
			return nil, g.reject(ReasonInvalid, 0)
		}
	}

	user, err := g.users.FindByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, g.reject(ReasonUnknownUser, principal.UserID)
		}
		return nil, appErrors.Internal(err, "failed to load user")
	}
	if !user.IsActive {
		return nil, g.reject(ReasonInactive, user.ID)
	}
	return user, nil
}

// Authorize requires user's role to be one of roles. No roles admits any user.
func (g *AccessGuard) Authorize(user *models.User, roles ...string) error {
	if user == nil {
		return appErrors.ErrUnauthorized
	}
	if !user.HasAnyRole(roles...) {
		g.logger.Info("role check failed", zap.Int64("user_id", user.ID), zap.String("role", user.RoleName), zap.Strings("required", roles))
		return appErrors.Clone(appErrors.ErrForbidden, "insufficient permissions")
	}
	return nil
}

func (g *AccessGuard) reject(reason string, userID int64) error {
	fields := []zap.Field{zap.String("reason", reason)}
	if userID > 0 {
		fields = append(fields, zap.Int64("user_id", userID))
	}
	g.logger.Info("authentication rejected", fields...)
	g.metrics.RecordAuthFailure(reason)
	return appErrors.ErrUnauthorized
}
