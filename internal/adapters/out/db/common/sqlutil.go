// internal/adapters/out/db/common/sqlutil.go
package common

import (
	"context"
	"database/sql"
)

// RowScanner is the shared Scan() surface of *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// Runner is the shared query surface of *sql.DB and *sql.Tx.
type Runner interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// TxKey stores a *sql.Tx in a context.
type TxKey struct{}

// CtxWithTx returns ctx carrying tx.
func CtxWithTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, TxKey{}, tx)
}

// TxFromCtx extracts the *sql.Tx from ctx, or nil.
func TxFromCtx(ctx context.Context) *sql.Tx {
	if v := ctx.Value(TxKey{}); v != nil {
		if tx, ok := v.(*sql.Tx); ok {
			return tx
		}
	}
	return nil
}

// GetRunner returns the context transaction when present, else db.
func GetRunner(ctx context.Context, db *sql.DB) Runner {
	if tx := TxFromCtx(ctx); tx != nil {
		return tx
	}
	return db
}
