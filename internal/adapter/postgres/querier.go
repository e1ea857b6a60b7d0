package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is what the dream and report repositories run their SQL through:
// the pool, or the transaction opened by TxManager.RunInTx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type activeTxKey struct{}

func withTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, activeTxKey{}, tx)
}

// QuerierFromCtx picks the querier for a repository call. Inside RunInTx
// (the weekly report existence check and insert, deferred dream updates)
// that is the open transaction; everywhere else it is pool.
func QuerierFromCtx(ctx context.Context, pool *pgxpool.Pool) Querier {
	if tx, ok := ctx.Value(activeTxKey{}).(pgx.Tx); ok {
		return tx
	}
	return pool
}
