package rts

import (
	"sort"

	"aegis/pkg/core/retrieval"
)

// TopK ranks chunks by cosine similarity to queryEmbedding and returns the
// k highest-scoring, reusing C7's similarity primitive rather than a
// second implementation of the same dot-product/norm math.
func TopK(chunks []Chunk, queryEmbedding []float32, k int) []Chunk {
	type scored struct {
		chunk Chunk
		score float64
	}

	ranked := make([]scored, 0, len(chunks))
	for _, c := range chunks {
		ranked = append(ranked, scored{chunk: c, score: retrieval.CosineSimilarity(c.Embedding, queryEmbedding)})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if k > len(ranked) {
		k = len(ranked)
	}
	out := make([]Chunk, k)
	for i := 0; i < k; i++ {
		out[i] = ranked[i].chunk
	}
	return out
}
