package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/aw-admin-api/pkg/config"
)

type txKey struct{}

// TxManager runs units of work inside a single transaction. Repositories pick
// the transaction up from the context through Conn.
type TxManager struct {
	db *sqlx.DB
}

// NewTxManager constructs a TxManager.
func NewTxManager(db *sqlx.DB) *TxManager {
	return &TxManager{db: db}
}

// WithinTx begins a transaction, runs fn and commits when fn succeeds. Any
// error rolls the whole unit back. Nested calls join the outer transaction.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Conn returns the transaction bound to ctx, or db when there is none.
func Conn(ctx context.Context, db *sqlx.DB) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db
}

// InsertReturningID executes an INSERT written with '?' placeholders and
// returns the generated primary key.
func InsertReturningID(ctx context.Context, conn sqlx.ExtContext, query string, args ...interface{}) (int64, error) {
	if conn.DriverName() == config.DriverMySQL {
		res, err := conn.ExecContext(ctx, conn.Rebind(query), args...)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}

	var id int64
	if err := sqlx.GetContext(ctx, conn, &id, conn.Rebind(query+" RETURNING id"), args...); err != nil {
		return 0, err
	}
	return id, nil
}
