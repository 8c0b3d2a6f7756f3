package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"aegis/pkg/core/rts"
)

// ChunksWithEmbeddings implements rts.Store: every filing chunk for
// (bankID, fiscalYear, quarter) that carries an embedding.
func (g *Gateway) ChunksWithEmbeddings(ctx context.Context, bankID int64, fiscalYear, quarter int) ([]rts.Chunk, error) {
	const sql = `
		SELECT filing_chunk_id, bank_id, fiscal_year, quarter, content, embedding
		FROM rts_filing_chunks
		WHERE bank_id = $1 AND fiscal_year = $2 AND quarter = $3 AND embedding IS NOT NULL
		ORDER BY filing_chunk_id`

	var out []rts.Chunk
	err := g.query(ctx, sql, []any{bankID, fiscalYear, quarter}, func(row pgx.Rows) error {
		var c rts.Chunk
		if err := row.Scan(&c.FilingChunkID, &c.BankID, &c.FiscalYear, &c.Quarter, &c.Text, &c.Embedding); err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	return out, err
}
