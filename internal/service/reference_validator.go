package service

import (
	"context"
	"errors"

	"github.com/noah-isme/aw-admin-api/pkg/database"
	appErrors "github.com/noah-isme/aw-admin-api/pkg/errors"
)

type referenceRepository interface {
	RowExists(ctx context.Context, table string, id int64) (bool, error)
	ValueTaken(ctx context.Context, table, column, value string, excludeID int64) (bool, error)
}

type constraintField struct {
	field   string
	message string
}

// Unique constraints and their client facing errors.
var uniqueConstraints = map[string]constraintField{
	"users_emp_id_key":     {"emp_id", "Employee code already in use"},
	"users_username_key":   {"username", "Username already in use"},
	"users_email_key":      {"email", "Email already in use"},
	"roles_name_key":       {"name", "Role already exists"},
	"departments_name_key": {"name", "Department already exists"},
	"categories_name_key":  {"name", "Category name already exists"},
	"categories_slug_key":  {"slug", "Category slug already exists"},
	"authors_slug_key":     {"slug", "Author slug already exists"},
	"blogs_slug_key":       {"slug", "Slug already in use"},
}

// Foreign keys and the request field that carries them.
var foreignKeys = map[string]constraintField{
	"users_role_id_fkey":       {"role_id", "Invalid role_id"},
	"users_department_id_fkey": {"department_id", "Invalid department_id"},
	"blogs_author_id_fkey":     {"author_id", "Invalid author_id"},
	"blogs_category_id_fkey":   {"category_id", "Invalid category_id"},
}

// ReferenceValidator runs uniqueness and reference checks inside the caller's
// transaction before a write.
type ReferenceValidator struct {
	repo referenceRepository
}

// NewReferenceValidator constructs a ReferenceValidator.
func NewReferenceValidator(repo referenceRepository) *ReferenceValidator {
	return &ReferenceValidator{repo: repo}
}

// Unique fails with a conflict on field when another row of table already
// holds value in column. excludeID names the row being updated.
func (v *ReferenceValidator) Unique(ctx context.Context, table, column, field, value string, excludeID int64, message string) error {
	taken, err := v.repo.ValueTaken(ctx, table, column, value, excludeID)
	if err != nil {
		return appErrors.Internal(err, "failed to validate "+field)
	}
	if taken {
		return appErrors.Conflict(field, message)
	}
	return nil
}

// Available reports whether value is free in table.column.
func (v *ReferenceValidator) Available(ctx context.Context, table, column, value string, excludeID int64) (bool, error) {
	taken, err := v.repo.ValueTaken(ctx, table, column, value, excludeID)
	if err != nil {
		return false, appErrors.Internal(err, "failed to check "+table+"."+column)
	}
	return !taken, nil
}

// Exists fails with a bad reference on field when table has no row id.
func (v *ReferenceValidator) Exists(ctx context.Context, table string, id int64, field string) error {
	ok, err := v.repo.RowExists(ctx, table, id)
	if err != nil {
		return appErrors.Internal(err, "failed to validate "+field)
	}
	if !ok {
		return appErrors.BadReference(field, "Invalid "+field)
	}
	return nil
}

// ExistsOptional is Exists for nullable references.
func (v *ReferenceValidator) ExistsOptional(ctx context.Context, table string, id *int64, field string) error {
	if id == nil {
		return nil
	}
	return v.Exists(ctx, table, *id, field)
}

// FromStoreError turns constraint violations that slipped past the checks
// into the same field errors. Other errors become internal errors carrying
// message; typed errors pass through.
func FromStoreError(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if name, ok := database.UniqueViolation(err); ok {
		if cf, known := uniqueConstraints[name]; known {
			return appErrors.Conflict(cf.field, cf.message)
		}
		return appErrors.Clone(appErrors.ErrConflict, "resource already exists")
	}
	if name, ok := database.ForeignKeyViolation(err); ok {
		if cf, known := foreignKeys[name]; known {
			return appErrors.BadReference(cf.field, cf.message)
		}
		return appErrors.Clone(appErrors.ErrBadReference, "")
	}
	return appErrors.Internal(err, message)
}
