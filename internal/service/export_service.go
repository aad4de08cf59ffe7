package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/aw-admin-api/internal/dto"
	"github.com/noah-isme/aw-admin-api/internal/models"
	appErrors "github.com/noah-isme/aw-admin-api/pkg/errors"
	"github.com/noah-isme/aw-admin-api/pkg/export"
)

var userExportHeaders = []string{"emp_id", "username", "full_name", "email", "role", "department", "is_active", "created_at"}

type userDirectory interface {
	ListAll(ctx context.Context, filter models.UserFilter) ([]models.User, error)
}

// ExportService renders the user directory as a downloadable file.
type ExportService struct {
	users  userDirectory
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(users userDirectory, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{users: users, logger: logger, now: time.Now}
}

// ExportUsers renders every user matching filter in format (csv, pdf or xlsx).
func (s *ExportService) ExportUsers(ctx context.Context, filter models.UserFilter, format string) (*dto.ExportFile, error) {
	exporter, err := export.ForFormat(format)
	if err != nil {
		return nil, invalidField("format", "format must be one of csv, pdf, xlsx")
	}

	users, err := s.users.ListAll(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load users")
	}

	body, err := exporter.Render(buildUserDataset(users))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render export")
	}
	s.logger.Info("user export generated", zap.String("format", exporter.Extension()), zap.Int("rows", len(users)))

	return &dto.ExportFile{
		Filename:    fmt.Sprintf("users-%s.%s", s.now().UTC().Format("20060102"), exporter.Extension()),
		ContentType: exporter.ContentType(),
		Body:        body,
	}, nil
}

func buildUserDataset(users []models.User) export.Dataset {
	rows := make([]map[string]string, 0, len(users))
	for _, u := range users {
		department := ""
		if u.DepartmentName != nil {
			department = *u.DepartmentName
		}
		rows = append(rows, map[string]string{
			"emp_id":     u.EmpID,
			"username":   u.Username,
			"full_name":  u.FullName,
			"email":      u.Email,
			"role":       u.RoleName,
			"department": department,
			"is_active":  strconv.FormatBool(u.IsActive),
			"created_at": u.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return export.Dataset{Title: "Users", Headers: userExportHeaders, Rows: rows}
}
