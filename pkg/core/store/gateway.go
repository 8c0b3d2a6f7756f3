// Package store implements C6: the relational store gateway. Every
// persistence concern in Aegis (prompts, conversation history, retrieval
// chunks, process telemetry, ETL output) goes through one *Gateway value
// wrapping a pgxpool.Pool — generalized from the teacher's
// pkg/core/store.InitDB/GetPool (a sync.Once-guarded package-level
// singleton read from DATABASE_URL) into an explicit, constructible type.
// Spec's design note that shared state must never be a singleton applies
// here: callers construct one Gateway at startup and pass it down, the
// same shape as pkg/core/monitor.Monitor.
package store

import (
	"context"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"aegis/pkg/core/apperr"
	"aegis/pkg/core/obslog"
	"aegis/pkg/core/settings"
)

// querier is the slice of *pgxpool.Pool's method set Gateway actually
// uses. Depending on this narrow interface instead of the concrete pool
// type lets tests substitute an in-memory fake without a live Postgres
// instance or a database/sql-level mock library (go-sqlmock mocks
// database/sql, which pgxpool.Pool does not implement).
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Gateway wraps a pgxpool.Pool and is the sole persistence collaborator
// every other component depends on.
type Gateway struct {
	pool querier
}

// Open parses cfg.Postgres.DSN() and establishes a connection pool.
func Open(ctx context.Context, cfg *settings.Settings) (*Gateway, error) {
	pgxCfg, err := pgxpool.ParseConfig(cfg.Postgres.DSN())
	if err != nil {
		return nil, apperr.Config("store.open", "failed to parse postgres DSN", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, apperr.Upstream("store.open", "failed to create connection pool", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, apperr.Upstream("store.open", "failed to ping database", err)
	}

	obslog.Info("store.opened", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
	return &Gateway{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (g *Gateway) Close() {
	g.pool.Close()
}

// Stat exposes pool-level connection statistics for health checks,
// without widening the Gateway's dependency on *pgxpool.Pool beyond
// the querier interface anywhere else in the package.
func (g *Gateway) Stat() *pgxpool.Stat {
	if p, ok := g.pool.(*pgxpool.Pool); ok {
		return p.Stat()
	}
	return nil
}

// WithTx runs fn with a Gateway bound to a single database transaction,
// committing if fn returns nil and rolling back otherwise. Multi-statement
// invariants like UpsertReport's DELETE+INSERT pair (spec.md's "bounded
// transactions") go through this rather than two independent g.exec calls,
// so a failure partway through never leaves storage with the old row
// deleted and nothing to replace it.
func (g *Gateway) WithTx(ctx context.Context, fn func(tx *Gateway) error) error {
	dbtx, err := g.pool.Begin(ctx)
	if err != nil {
		return apperr.Upstream("store.with_tx", "failed to begin transaction", err)
	}

	if err := fn(&Gateway{pool: dbtx}); err != nil {
		if rbErr := dbtx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
			obslog.Error("store.tx_rollback_failed", "error", rbErr.Error())
		}
		return err
	}

	if err := dbtx.Commit(ctx); err != nil {
		return apperr.Upstream("store.with_tx", "failed to commit transaction", err)
	}
	return nil
}

// sprintfLeftover catches the classic mistake of building a SQL string
// with fmt.Sprintf-style verbs instead of pgx positional placeholders —
// every Gateway query method runs its SQL text through this guard before
// issuing it, since a %s/%d left over from string formatting is a strong
// signal that user input was interpolated directly into the statement.
var sprintfLeftover = regexp.MustCompile(`%[sdvqx]`)

func guardQuery(sql string) error {
	if sprintfLeftover.MatchString(sql) {
		return apperr.Invariant("store.guard_query", "query text contains an unsubstituted format verb, looks like string-interpolated SQL: "+sql, nil)
	}
	return nil
}
