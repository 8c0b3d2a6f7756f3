package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"aegis/pkg/core/retrieval"
)

// FullSection implements retrieval.Store's M0: every chunk of section
// within scope, in canonical order.
func (g *Gateway) FullSection(ctx context.Context, scope retrieval.Scope, section retrieval.Section) ([]retrieval.Chunk, error) {
	const sql = `
		SELECT chunk_id, institution_id, fiscal_year, quarter, section, qa_group_id,
		       speaker_block_id, chunk_index, content, embedding
		FROM transcript_chunks
		WHERE institution_id = $1 AND fiscal_year = $2 AND quarter = $3 AND section = $4
		ORDER BY chunk_index`

	return g.scanChunks(ctx, sql, scope.InstitutionID, scope.FiscalYear, scope.Quarter, string(section))
}

// SpeakerBlock implements M2: every chunk in the given speaker block.
func (g *Gateway) SpeakerBlock(ctx context.Context, scope retrieval.Scope, speakerBlockID int) ([]retrieval.Chunk, error) {
	const sql = `
		SELECT chunk_id, institution_id, fiscal_year, quarter, section, qa_group_id,
		       speaker_block_id, chunk_index, content, embedding
		FROM transcript_chunks
		WHERE institution_id = $1 AND fiscal_year = $2 AND quarter = $3 AND speaker_block_id = $4
		ORDER BY chunk_index`

	return g.scanChunks(ctx, sql, scope.InstitutionID, scope.FiscalYear, scope.Quarter, speakerBlockID)
}

// QAGroup implements M3: every chunk in the given QA group, ordered.
func (g *Gateway) QAGroup(ctx context.Context, scope retrieval.Scope, qaGroupID int) ([]retrieval.Chunk, error) {
	const sql = `
		SELECT chunk_id, institution_id, fiscal_year, quarter, section, qa_group_id,
		       speaker_block_id, chunk_index, content, embedding
		FROM transcript_chunks
		WHERE institution_id = $1 AND fiscal_year = $2 AND quarter = $3 AND qa_group_id = $4
		ORDER BY chunk_index`

	return g.scanChunks(ctx, sql, scope.InstitutionID, scope.FiscalYear, scope.Quarter, qaGroupID)
}

// ChunkByID looks up a single chunk (used by ChunkNeighborhood to resolve
// its scope and section from a bare chunk ID).
func (g *Gateway) ChunkByID(ctx context.Context, chunkID int64) (retrieval.Chunk, error) {
	const sql = `
		SELECT chunk_id, institution_id, fiscal_year, quarter, section, qa_group_id,
		       speaker_block_id, chunk_index, content, embedding
		FROM transcript_chunks
		WHERE chunk_id = $1`

	var c retrieval.Chunk
	err := g.queryRow(ctx, sql, []any{chunkID}, func(row pgx.Row) error {
		return scanChunkRow(row, &c)
	})
	return c, err
}

// ChunkNeighbors implements M4: the chunks within [centerIndex-radius,
// centerIndex+radius] of section, including the center chunk itself.
// Indices with no matching row are simply absent from the result, not
// padded.
func (g *Gateway) ChunkNeighbors(ctx context.Context, scope retrieval.Scope, section retrieval.Section, centerIndex, radius int) ([]retrieval.Chunk, error) {
	const sql = `
		SELECT chunk_id, institution_id, fiscal_year, quarter, section, qa_group_id,
		       speaker_block_id, chunk_index, content, embedding
		FROM transcript_chunks
		WHERE institution_id = $1 AND fiscal_year = $2 AND quarter = $3 AND section = $4
		  AND chunk_index BETWEEN $5 AND $6
		ORDER BY chunk_index`

	return g.scanChunks(ctx, sql, scope.InstitutionID, scope.FiscalYear, scope.Quarter,
		string(section), centerIndex-radius, centerIndex+radius)
}

// SectionChunksWithEmbeddings returns every chunk of section within scope
// that carries a non-null embedding, backing M1 (category_similarity, via
// per-group aggregation in the retrieval package) and M5 (vector_topk).
func (g *Gateway) SectionChunksWithEmbeddings(ctx context.Context, scope retrieval.Scope, section retrieval.Section) ([]retrieval.Chunk, error) {
	const sql = `
		SELECT chunk_id, institution_id, fiscal_year, quarter, section, qa_group_id,
		       speaker_block_id, chunk_index, content, embedding
		FROM transcript_chunks
		WHERE institution_id = $1 AND fiscal_year = $2 AND quarter = $3 AND section = $4
		  AND embedding IS NOT NULL
		ORDER BY chunk_index`

	return g.scanChunks(ctx, sql, scope.InstitutionID, scope.FiscalYear, scope.Quarter, string(section))
}

func (g *Gateway) scanChunks(ctx context.Context, sql string, args ...any) ([]retrieval.Chunk, error) {
	var out []retrieval.Chunk
	err := g.query(ctx, sql, args, func(row pgx.Rows) error {
		var c retrieval.Chunk
		if err := scanChunkRow(row, &c); err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	return out, err
}

// rowScanner covers the subset of pgx.Row/pgx.Rows that Scan needs, so
// ChunkByID's single-row path and the multi-row paths share one scan
// routine.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanChunkRow(row rowScanner, c *retrieval.Chunk) error {
	var section string
	if err := row.Scan(&c.ChunkID, &c.InstitutionID, &c.FiscalYear, &c.Quarter, &section,
		&c.QAGroupID, &c.SpeakerBlockID, &c.ChunkIndex, &c.Text, &c.Embedding); err != nil {
		return err
	}
	c.Section = retrieval.Section(section)
	return nil
}
