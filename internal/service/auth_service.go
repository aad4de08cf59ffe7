package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/aw-admin-api/internal/dto"
	"github.com/noah-isme/aw-admin-api/internal/models"
	appErrors "github.com/noah-isme/aw-admin-api/pkg/errors"
)

// TokenTypeBearer is returned with every issued token.
const TokenTypeBearer = "bearer"

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

type tokenIssuer interface {
	Issue(userID int64, email, role string) (string, time.Time, error)
}

// AuthService provides authentication use cases.
type AuthService struct {
	repo      authUserRepository
	tokens    tokenIssuer
	hasher    *PasswordHasher
	validator *validator.Validate
	logger    *zap.Logger
	dummyHash string
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, tokens tokenIssuer, hasher *PasswordHasher, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	// Compared against for unknown emails so both paths cost one hash.
	dummy, _ := hasher.Hash("aw-admin-unknown-user")
	return &AuthService{repo: repo, tokens: tokens, hasher: hasher, validator: validate, logger: logger, dummyHash: dummy}
}

// Login checks credentials and issues a bearer token. Unknown email, wrong
// password and inactive account are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid login payload")
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.hasher.Verify(req.Password, s.dummyHash)
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, appErrors.Internal(err, "failed to fetch user")
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, appErrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		s.logger.Info("login refused for inactive user", zap.Int64("user_id", user.ID))
		return nil, appErrors.ErrInvalidCredentials
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.upgradeHash(ctx, user, req.Password)
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email, user.RoleName)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to create access token")
	}

	return &dto.LoginResponse{
		Token:     token,
		TokenType: TokenTypeBearer,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

// ChangePassword replaces the password of user after checking the old one.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req dto.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return invalid(err, "invalid change password payload")
	}
	if err := checkPasswordLength("new_password", req.NewPassword); err != nil {
		return err
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return loadError(err, "user")
	}
	if !s.hasher.Verify(req.OldPassword, user.PasswordHash) {
		return appErrors.Clone(appErrors.ErrForbidden, "old password does not match")
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return appErrors.Internal(err, "failed to hash password")
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return appErrors.Internal(err, "failed to update password")
	}
	return nil
}

func (s *AuthService) upgradeHash(ctx context.Context, user *models.User, plain string) {
	hash, err := s.hasher.Hash(plain)
	if err != nil {
		s.logger.Warn("failed to rehash password", zap.Int64("user_id", user.ID), zap.Error(err))
		return
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		s.logger.Warn("failed to store upgraded password hash", zap.Int64("user_id", user.ID), zap.Error(err))
		return
	}
	user.PasswordHash = hash
}
