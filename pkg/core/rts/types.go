// Package rts holds the regulatory-filing chunk store C10's RtsSubagent
// retrieves from. Grounded on spec.md §4.10's "Rts: retrieves
// regulatory-filing embeddings; summarizes" description, which SPEC_FULL
// §3.10 specifies as reusing C7's vector top-K ranking rather than a
// second bespoke similarity implementation — this package supplies the
// filing-specific chunk shape and storage, and calls into
// retrieval.CosineSimilarity for the ranking itself.
package rts

import "context"

// Chunk is one regulatory-filing passage with its embedding.
type Chunk struct {
	FilingChunkID int64
	BankID        int64
	FiscalYear    int
	Quarter       int
	Text          string
	Embedding     []float32
}

// Store resolves filing chunks. Implemented by C6's store.Gateway.
type Store interface {
	ChunksWithEmbeddings(ctx context.Context, bankID int64, fiscalYear, quarter int) ([]Chunk, error)
}
