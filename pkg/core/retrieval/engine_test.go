package retrieval

import (
	"context"
	"testing"
)

type fakeStore struct {
	chunks []Chunk
}

func (f *fakeStore) byPredicate(pred func(Chunk) bool) []Chunk {
	var out []Chunk
	for _, c := range f.chunks {
		if pred(c) {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeStore) FullSection(ctx context.Context, scope Scope, section Section) ([]Chunk, error) {
	return f.byPredicate(func(c Chunk) bool {
		return c.InstitutionID == scope.InstitutionID && c.FiscalYear == scope.FiscalYear &&
			c.Quarter == scope.Quarter && c.Section == section
	}), nil
}

func (f *fakeStore) SpeakerBlock(ctx context.Context, scope Scope, speakerBlockID int) ([]Chunk, error) {
	return f.byPredicate(func(c Chunk) bool { return c.SpeakerBlockID == speakerBlockID }), nil
}

func (f *fakeStore) QAGroup(ctx context.Context, scope Scope, qaGroupID int) ([]Chunk, error) {
	return f.byPredicate(func(c Chunk) bool { return c.QAGroupID != nil && *c.QAGroupID == qaGroupID }), nil
}

func (f *fakeStore) ChunkByID(ctx context.Context, chunkID int64) (Chunk, error) {
	for _, c := range f.chunks {
		if c.ChunkID == chunkID {
			return c, nil
		}
	}
	return Chunk{}, errNotFound
}

func (f *fakeStore) ChunkNeighbors(ctx context.Context, scope Scope, section Section, centerIndex, radius int) ([]Chunk, error) {
	return f.byPredicate(func(c Chunk) bool {
		return c.Section == section && c.ChunkIndex >= centerIndex-radius && c.ChunkIndex <= centerIndex+radius
	}), nil
}

func (f *fakeStore) SectionChunksWithEmbeddings(ctx context.Context, scope Scope, section Section) ([]Chunk, error) {
	return f.byPredicate(func(c Chunk) bool { return c.Section == section && c.Embedding != nil }), nil
}

type notFoundErr struct{}

func (notFoundErr) Error() string { return "chunk not found" }

var errNotFound = notFoundErr{}

func intPtr(n int) *int { return &n }

func TestFullSectionReturnsEveryChunkUntruncated(t *testing.T) {
	store := &fakeStore{chunks: []Chunk{
		{ChunkID: 1, InstitutionID: 1, FiscalYear: 2025, Quarter: 1, Section: SectionMD, ChunkIndex: 0, Text: "a"},
		{ChunkID: 2, InstitutionID: 1, FiscalYear: 2025, Quarter: 1, Section: SectionMD, ChunkIndex: 1, Text: "b"},
		{ChunkID: 3, InstitutionID: 1, FiscalYear: 2025, Quarter: 1, Section: SectionQA, ChunkIndex: 0, Text: "c"},
	}}
	e := New(store)

	chunks, err := e.FullSection(context.Background(), Scope{InstitutionID: 1, FiscalYear: 2025, Quarter: 1}, SectionMD)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 MD chunks, got %d", len(chunks))
	}
}

func TestQAGroupOrdersBySpeakerBlockAndIndex(t *testing.T) {
	store := &fakeStore{chunks: []Chunk{
		{ChunkID: 1, Section: SectionQA, QAGroupID: intPtr(5), SpeakerBlockID: 1, ChunkIndex: 2, Text: "q"},
		{ChunkID: 2, Section: SectionQA, QAGroupID: intPtr(5), SpeakerBlockID: 1, ChunkIndex: 3, Text: "a"},
		{ChunkID: 3, Section: SectionQA, QAGroupID: intPtr(9), SpeakerBlockID: 2, ChunkIndex: 4, Text: "other"},
	}}
	e := New(store)

	chunks, err := e.QAGroup(context.Background(), Scope{}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks for group 5, got %d", len(chunks))
	}
}

func TestChunkNeighborhoodResolvesScopeFromCenterChunk(t *testing.T) {
	store := &fakeStore{chunks: []Chunk{
		{ChunkID: 10, InstitutionID: 2, FiscalYear: 2025, Quarter: 2, Section: SectionMD, ChunkIndex: 5, Text: "center"},
		{ChunkID: 11, InstitutionID: 2, FiscalYear: 2025, Quarter: 2, Section: SectionMD, ChunkIndex: 4, Text: "before"},
		{ChunkID: 12, InstitutionID: 2, FiscalYear: 2025, Quarter: 2, Section: SectionMD, ChunkIndex: 6, Text: "after"},
		{ChunkID: 13, InstitutionID: 2, FiscalYear: 2025, Quarter: 2, Section: SectionMD, ChunkIndex: 20, Text: "far"},
	}}
	e := New(store)

	chunks, err := e.ChunkNeighborhood(context.Background(), 10, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected center + 2 neighbors, got %d", len(chunks))
	}
}

func TestCategorySimilarityRanksGroupsByAggregateEmbedding(t *testing.T) {
	store := &fakeStore{chunks: []Chunk{
		{ChunkID: 1, Section: SectionQA, QAGroupID: intPtr(1), ChunkIndex: 0, Text: "near", Embedding: []float32{1, 0, 0}},
		{ChunkID: 2, Section: SectionQA, QAGroupID: intPtr(2), ChunkIndex: 10, Text: "far", Embedding: []float32{0, 1, 0}},
	}}
	e := New(store)

	chunks, err := e.CategorySimilarity(context.Background(), Scope{}, []float32{1, 0, 0}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 || chunks[0].Text != "near" {
		t.Fatalf("expected the matching group's chunk, got %+v", chunks)
	}
}

func TestVectorTopKReturnsCanonicalOrderNotRankOrder(t *testing.T) {
	store := &fakeStore{chunks: []Chunk{
		{ChunkID: 1, Section: SectionMD, ChunkIndex: 0, Text: "first", Embedding: []float32{0, 1, 0}},
		{ChunkID: 2, Section: SectionMD, ChunkIndex: 5, Text: "second", Embedding: []float32{1, 0, 0}},
	}}
	e := New(store)

	chunks, err := e.VectorTopK(context.Background(), Scope{}, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 || chunks[0].ChunkIndex != 0 || chunks[1].ChunkIndex != 5 {
		t.Fatalf("expected canonical order by chunk_index, got %+v", chunks)
	}
}

func TestVectorTopKRejectsNonPositiveK(t *testing.T) {
	e := New(&fakeStore{})
	if _, err := e.VectorTopK(context.Background(), Scope{}, []float32{1}, 0); err == nil {
		t.Fatal("expected an error for k=0")
	}
}
