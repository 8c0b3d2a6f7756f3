package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"aegis/pkg/core/availability"
)

// DatabasesFor implements availability.Store: the database_names array for
// (bankID, fiscalYear, quarter), or an empty slice if the period has no
// data-availability row at all (absence is not an error — it just means
// the clarifier must reject any combination naming this period).
func (g *Gateway) DatabasesFor(ctx context.Context, bankID int64, fiscalYear, quarter int) ([]string, error) {
	const sql = `
		SELECT database_names
		FROM data_availability
		WHERE bank_id = $1 AND fiscal_year = $2 AND quarter = $3`

	var names []string
	err := g.queryRow(ctx, sql, []any{bankID, fiscalYear, quarter}, func(row pgx.Row) error {
		return row.Scan(&names)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return names, nil
}

// ResolveInstitution looks up the most recent data-availability row naming
// bankID, for its display name/symbol/type.
func (g *Gateway) ResolveInstitution(ctx context.Context, bankID int64) (availability.Institution, error) {
	const sql = `
		SELECT bank_id, bank_name, bank_symbol, bank_type
		FROM data_availability
		WHERE bank_id = $1
		ORDER BY fiscal_year DESC, quarter DESC
		LIMIT 1`

	var inst availability.Institution
	err := g.queryRow(ctx, sql, []any{bankID}, func(row pgx.Row) error {
		return row.Scan(&inst.ID, &inst.Name, &inst.Symbol, &inst.Type)
	})
	return inst, err
}

// MonitoredInstitutions lists every distinct institution with at least one
// data-availability row, for C11's bank-roster fan-out.
func (g *Gateway) MonitoredInstitutions(ctx context.Context) ([]availability.Institution, error) {
	const sql = `
		SELECT DISTINCT ON (bank_id) bank_id, bank_name, bank_symbol, bank_type
		FROM data_availability
		ORDER BY bank_id`

	var out []availability.Institution
	err := g.query(ctx, sql, nil, func(rows pgx.Rows) error {
		var inst availability.Institution
		if err := rows.Scan(&inst.ID, &inst.Name, &inst.Symbol, &inst.Type); err != nil {
			return err
		}
		out = append(out, inst)
		return nil
	})
	return out, err
}
