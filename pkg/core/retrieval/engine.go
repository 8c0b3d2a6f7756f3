package retrieval

import (
	"context"
	"sort"

	"aegis/pkg/core/apperr"
)

// Engine implements the six transcript retrieval methods of spec.md
// §4.7, chosen at runtime by the Transcripts subagent (C10) via an LLM
// tool call. It is a thin, stateless wrapper over Store — constructed
// once per process (or per request, it holds no mutable state) rather
// than reached for through a package-level singleton.
type Engine struct {
	store Store
}

// New constructs an Engine over store.
func New(store Store) *Engine {
	return &Engine{store: store}
}

// FullSection implements M0: every chunk of the given section, ordered.
// Never truncates regardless of row count — length management is the
// caller's responsibility, per spec.md §4.7's no-silent-truncation
// invariant.
func (e *Engine) FullSection(ctx context.Context, scope Scope, section Section) ([]Chunk, error) {
	return e.store.FullSection(ctx, scope, section)
}

// SpeakerBlock implements M2: every chunk in the given speaker block.
func (e *Engine) SpeakerBlock(ctx context.Context, scope Scope, speakerBlockID int) ([]Chunk, error) {
	return e.store.SpeakerBlock(ctx, scope, speakerBlockID)
}

// QAGroup implements M3: every chunk in the given QA group, ordered by
// (speaker_block_id, chunk_index).
func (e *Engine) QAGroup(ctx context.Context, scope Scope, qaGroupID int) ([]Chunk, error) {
	return e.store.QAGroup(ctx, scope, qaGroupID)
}

// ChunkNeighborhood implements M4: the chunk identified by chunkID and
// its ±radius neighbors in canonical document order. Neighbors that
// don't exist (chunk sits at a section boundary) are simply omitted,
// not padded or erred on.
func (e *Engine) ChunkNeighborhood(ctx context.Context, chunkID int64, radius int) ([]Chunk, error) {
	center, err := e.store.ChunkByID(ctx, chunkID)
	if err != nil {
		return nil, err
	}
	scope := Scope{InstitutionID: center.InstitutionID, FiscalYear: center.FiscalYear, Quarter: center.Quarter}
	return e.store.ChunkNeighbors(ctx, scope, center.Section, center.ChunkIndex, radius)
}

// CategorySimilarity implements M1: the top-K QA groups within scope
// whose aggregate embedding (the mean of its member chunks' embeddings)
// best matches queryEmbedding. Group chunks come back concatenated in
// group-rank order, each group internally in canonical order; callers
// that want the gap sentinel between non-adjacent groups should pass the
// result through MarkGaps.
func (e *Engine) CategorySimilarity(ctx context.Context, scope Scope, queryEmbedding []float32, topK int) ([]Chunk, error) {
	if topK <= 0 {
		return nil, apperr.Invariant("retrieval.category_similarity", "topK must be positive", nil)
	}

	chunks, err := e.store.SectionChunksWithEmbeddings(ctx, scope, SectionQA)
	if err != nil {
		return nil, err
	}

	groups := groupByQAGroup(chunks)
	ranked := rankGroups(groups, queryEmbedding)
	if topK < len(ranked) {
		ranked = ranked[:topK]
	}

	var out []Chunk
	for _, g := range ranked {
		out = append(out, g.chunks...)
	}
	return out, nil
}

// VectorTopK implements M5: the top-K individual chunks within scope by
// cosine similarity to queryEmbedding, returned in canonical document
// order (not similarity-rank order) so MarkGaps can detect disjoint
// spans the way a human reading the transcript would.
func (e *Engine) VectorTopK(ctx context.Context, scope Scope, queryEmbedding []float32, k int) ([]Chunk, error) {
	if k <= 0 {
		return nil, apperr.Invariant("retrieval.vector_topk", "k must be positive", nil)
	}

	md, err := e.store.SectionChunksWithEmbeddings(ctx, scope, SectionMD)
	if err != nil {
		return nil, err
	}
	qa, err := e.store.SectionChunksWithEmbeddings(ctx, scope, SectionQA)
	if err != nil {
		return nil, err
	}
	all := append(md, qa...)

	type scored struct {
		chunk Chunk
		score float64
	}
	ranked := make([]scored, 0, len(all))
	for _, c := range all {
		ranked = append(ranked, scored{chunk: c, score: CosineSimilarity(c.Embedding, queryEmbedding)})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if k < len(ranked) {
		ranked = ranked[:k]
	}

	out := make([]Chunk, len(ranked))
	for i, r := range ranked {
		out[i] = r.chunk
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Section != out[j].Section {
			return out[i].Section < out[j].Section
		}
		return out[i].ChunkIndex < out[j].ChunkIndex
	})
	return out, nil
}

type qaGroup struct {
	id     int
	chunks []Chunk
}

func groupByQAGroup(chunks []Chunk) []qaGroup {
	order := []int{}
	byID := map[int][]Chunk{}
	for _, c := range chunks {
		if c.QAGroupID == nil {
			continue
		}
		id := *c.QAGroupID
		if _, ok := byID[id]; !ok {
			order = append(order, id)
		}
		byID[id] = append(byID[id], c)
	}

	groups := make([]qaGroup, 0, len(order))
	for _, id := range order {
		members := byID[id]
		sort.Slice(members, func(i, j int) bool { return members[i].ChunkIndex < members[j].ChunkIndex })
		groups = append(groups, qaGroup{id: id, chunks: members})
	}
	return groups
}

type rankedGroup struct {
	id     int
	chunks []Chunk
	score  float64
}

func rankGroups(groups []qaGroup, queryEmbedding []float32) []rankedGroup {
	ranked := make([]rankedGroup, 0, len(groups))
	for _, g := range groups {
		vectors := make([][]float32, 0, len(g.chunks))
		for _, c := range g.chunks {
			if c.Embedding != nil {
				vectors = append(vectors, c.Embedding)
			}
		}
		agg := meanEmbedding(vectors)
		ranked = append(ranked, rankedGroup{id: g.id, chunks: g.chunks, score: CosineSimilarity(agg, queryEmbedding)})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	return ranked
}
