package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/aw-admin-api/pkg/database"
)

// uniqueColumns lists the columns existence checks may run against. Table
// and column names are interpolated, so only these are accepted.
var uniqueColumns = map[string]map[string]bool{
	"users":       {"username": true, "email": true, "emp_id": true},
	"roles":       {"name": true},
	"departments": {"name": true},
	"authors":     {"slug": true},
	"categories":  {"name": true, "slug": true},
	"blogs":       {"slug": true},
}

// ReferenceRepository answers existence questions used to validate writes
// before they reach the constraints.
type ReferenceRepository struct {
	db *sqlx.DB
}

// NewReferenceRepository constructs a ReferenceRepository.
func NewReferenceRepository(db *sqlx.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// RowExists reports whether table holds a row with id.
func (r *ReferenceRepository) RowExists(ctx context.Context, table string, id int64) (bool, error) {
	if _, ok := uniqueColumns[table]; !ok {
		return false, fmt.Errorf("unknown table %q", table)
	}
	conn := database.Conn(ctx, r.db)
	var count int
	if err := sqlx.GetContext(ctx, conn, &count, conn.Rebind("SELECT COUNT(*) FROM "+table+" WHERE id = ?"), id); err != nil {
		return false, fmt.Errorf("check %s reference: %w", table, err)
	}
	return count > 0, nil
}

// ValueTaken reports whether another row of table already stores value in
// column. The row identified by excludeID is ignored when it is positive.
func (r *ReferenceRepository) ValueTaken(ctx context.Context, table, column, value string, excludeID int64) (bool, error) {
	if !uniqueColumns[table][column] {
		return false, fmt.Errorf("unknown unique column %s.%s", table, column)
	}
	query := "SELECT COUNT(*) FROM " + table + " WHERE " + column + " = ?"
	args := []interface{}{value}
	if excludeID > 0 {
		query += " AND id <> ?"
		args = append(args, excludeID)
	}

	conn := database.Conn(ctx, r.db)
	var count int
	if err := sqlx.GetContext(ctx, conn, &count, conn.Rebind(query), args...); err != nil {
		return false, fmt.Errorf("check %s.%s uniqueness: %w", table, column, err)
	}
	return count > 0, nil
}
