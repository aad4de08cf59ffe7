package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/aw-admin-api/internal/models"
	"github.com/noah-isme/aw-admin-api/pkg/config"
)

// DefaultRoles are created by the seeder when missing.
var DefaultRoles = []models.Role{
	{Name: "admin", Description: strPointer("Full access")},
	{Name: "employee", Description: strPointer("Standard employee")},
	{Name: "hr", Description: strPointer("HR staff")},
	{Name: "manager", Description: strPointer("Team manager")},
}

type seedRoleRepository interface {
	FindByName(ctx context.Context, name string) (*models.Role, error)
	Create(ctx context.Context, role *models.Role) error
}

type seedUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	MaxID(ctx context.Context) (int64, error)
	Create(ctx context.Context, user *models.User) error
}

// SeedReport summarises what a seeding run changed.
type SeedReport struct {
	RolesCreated []string
	AdminCreated bool
	AdminEmpID   string
}

// Seeder creates the default roles and the bootstrap administrator. Running it
// again changes nothing.
type Seeder struct {
	roles  seedRoleRepository
	users  seedUserRepository
	tx     txManager
	hasher *PasswordHasher
	logger *zap.Logger
}

// NewSeeder constructs a Seeder.
func NewSeeder(roles seedRoleRepository, users seedUserRepository, tx txManager, hasher *PasswordHasher, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{roles: roles, users: users, tx: tx, hasher: hasher, logger: logger}
}

// Run seeds roles and, when admin carries an email and password, the admin user.
func (s *Seeder) Run(ctx context.Context, admin config.BootstrapConfig) (*SeedReport, error) {
	report := &SeedReport{}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		adminRoleID := int64(0)
		for _, def := range DefaultRoles {
			role, err := s.roles.FindByName(ctx, def.Name)
			switch {
			case err == nil:
			case errors.Is(err, sql.ErrNoRows):
				role = &models.Role{Name: def.Name, Description: def.Description}
				if err := s.roles.Create(ctx, role); err != nil {
					return err
				}
				report.RolesCreated = append(report.RolesCreated, role.Name)
			default:
				return err
			}
			if role.Name == "admin" {
				adminRoleID = role.ID
			}
		}

		email := strings.TrimSpace(admin.Email)
		if email == "" || admin.Password == "" {
			s.logger.Info("bootstrap admin not configured, skipping")
			return nil
		}
		if _, err := s.users.FindByEmail(ctx, email); err == nil {
			return nil
		} else if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		username := firstNonEmpty(strings.TrimSpace(admin.Username), "admin")
		if existing, err := s.users.FindByUsername(ctx, username); err == nil {
			s.logger.Warn("bootstrap admin username already taken, skipping",
				zap.String("username", username), zap.String("emp_id", existing.EmpID))
			return nil
		} else if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		hash, err := s.hasher.Hash(admin.Password)
		if err != nil {
			return err
		}
		maxID, err := s.users.MaxID(ctx)
		if err != nil {
			return err
		}
		user := &models.User{
			EmpID:        NextEmployeeCode(maxID),
			Username:     username,
			FullName:     firstNonEmpty(strings.TrimSpace(admin.FullName), "Administrator"),
			Email:        email,
			PasswordHash: hash,
			IsActive:     true,
			RoleID:       adminRoleID,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		report.AdminCreated = true
		report.AdminEmpID = user.EmpID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func strPointer(s string) *string { return &s }
