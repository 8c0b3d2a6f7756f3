package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"aegis/pkg/core/benchmarking"
)

// EntriesFor implements benchmarking.Store: every metric row recorded for
// (bankID, fiscalYear, quarter) across all platforms.
func (g *Gateway) EntriesFor(ctx context.Context, bankID int64, fiscalYear, quarter int) ([]benchmarking.Entry, error) {
	const sql = `
		SELECT bank_id, fiscal_year, quarter, platform, metric_name, metric_value, narrative
		FROM benchmarking_entries
		WHERE bank_id = $1 AND fiscal_year = $2 AND quarter = $3
		ORDER BY platform, metric_name`

	var out []benchmarking.Entry
	err := g.query(ctx, sql, []any{bankID, fiscalYear, quarter}, func(row pgx.Rows) error {
		var e benchmarking.Entry
		if err := row.Scan(&e.BankID, &e.FiscalYear, &e.Quarter, &e.Platform, &e.MetricName, &e.MetricValue, &e.Narrative); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	return out, err
}
