package retrieval

import "testing"

func TestCosineSimilarityIdenticalVectors(t *testing.T) {
	got := CosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3})
	if got < 0.999999 || got > 1.000001 {
		t.Fatalf("expected ~1.0 for identical vectors, got %f", got)
	}
}

func TestCosineSimilarityOrthogonalVectors(t *testing.T) {
	got := CosineSimilarity([]float32{1, 0}, []float32{0, 1})
	if got != 0 {
		t.Fatalf("expected 0 for orthogonal vectors, got %f", got)
	}
}

func TestCosineSimilarityMismatchedLengthReturnsZero(t *testing.T) {
	got := CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3})
	if got != 0 {
		t.Fatalf("expected 0 for mismatched lengths, got %f", got)
	}
}

func TestMeanEmbeddingAverages(t *testing.T) {
	got := meanEmbedding([][]float32{{2, 4}, {4, 8}})
	if len(got) != 2 || got[0] != 3 || got[1] != 6 {
		t.Fatalf("expected [3 6], got %v", got)
	}
}

func TestMeanEmbeddingEmptyReturnsNil(t *testing.T) {
	if got := meanEmbedding(nil); got != nil {
		t.Fatalf("expected nil for no vectors, got %v", got)
	}
}
