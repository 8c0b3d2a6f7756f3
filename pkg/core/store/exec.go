package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"aegis/pkg/core/apperr"
)

// exec runs sql (a statement using only $1, $2, ... placeholders) and
// returns the number of rows affected. Every Gateway method that mutates
// data funnels through here so the sprintfLeftover guard always runs.
func (g *Gateway) exec(ctx context.Context, sql string, args ...any) (int64, error) {
	if err := guardQuery(sql); err != nil {
		return 0, err
	}
	tag, err := g.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, apperr.Upstream("store.exec", "statement execution failed", err)
	}
	return tag.RowsAffected(), nil
}

// queryRow runs sql and scans a single row into dest via fn.
func (g *Gateway) queryRow(ctx context.Context, sql string, args []any, fn func(pgx.Row) error) error {
	if err := guardQuery(sql); err != nil {
		return err
	}
	row := g.pool.QueryRow(ctx, sql, args...)
	if err := fn(row); err != nil {
		if err == pgx.ErrNoRows {
			return apperr.Content("store.query_row", "no rows found", err)
		}
		return apperr.Upstream("store.query_row", "row scan failed", err)
	}
	return nil
}

// query runs sql and invokes fn once per returned row.
func (g *Gateway) query(ctx context.Context, sql string, args []any, fn func(pgx.Rows) error) error {
	if err := guardQuery(sql); err != nil {
		return err
	}
	rows, err := g.pool.Query(ctx, sql, args...)
	if err != nil {
		return apperr.Upstream("store.query", "query failed", err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return apperr.Content("store.query", "row handling failed", err)
		}
	}
	if err := rows.Err(); err != nil {
		return apperr.Upstream("store.query", "row iteration failed", err)
	}
	return nil
}
