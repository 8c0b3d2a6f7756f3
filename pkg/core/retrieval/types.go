// Package retrieval implements C7: the transcript retrieval engine. It
// exposes the six retrieval methods of spec.md §4.7 as methods on Engine,
// backed by C6 (store.Gateway) for chunk rows; query-time embeddings are
// computed by the caller and passed in. Generalized from the teacher's
// pkg/core/knowledge.KnowledgeStore (SearchChunks/SearchChunksByEmbedding)
// from a generic document-chunk abstraction into the transcript-specific
// section/qa_group/speaker_block structure spec.md §3 describes.
package retrieval

import "context"

// Scope identifies the (institution, fiscal_year, quarter) transcript a
// retrieval call reads from. Every method operates within exactly one
// scope; cross-period retrieval is the caller's job (issuing one call per
// combination), matching the teacher's per-bank dispatch loop in
// pkg/core/debate's material pool assembly.
type Scope struct {
	InstitutionID int64
	FiscalYear    int
	Quarter       int
}

// Section is the top-level transcript division a chunk belongs to.
type Section string

const (
	SectionMD Section = "MD" // management discussion, no qa_group_id
	SectionQA Section = "QA" // analyst Q&A, grouped by QAGroupID
)

// Chunk is one TranscriptChunk row (spec.md §3). MD chunks carry
// QAGroupID == nil; QA chunks always carry both a QAGroupID and a
// SpeakerBlockID, and sort within a group by (SpeakerBlockID, ChunkIndex).
type Chunk struct {
	ChunkID        int64
	InstitutionID  int64
	FiscalYear     int
	Quarter        int
	Section        Section
	QAGroupID      *int
	SpeakerBlockID int
	ChunkIndex     int // canonical document order, unique per scope+section
	Text           string
	Embedding      []float32
}

// NoContentSentinel is the exact string the Reports subagent (C10) emits
// when no report row exists for a requested (institution, fy, quarter).
// It lives here, not in C10, because it documents a retrieval-layer
// absence rather than subagent prose.
const NoContentSentinel = "*No content available for this report.*"

// Store is the narrow persistence collaborator Engine depends on,
// implemented by store.Gateway. Keeping it an interface here (rather than
// importing *store.Gateway directly) mirrors the monitor.Sink /
// prompt.Store pattern used by the other components that sit on top of
// C6, and lets engine tests substitute an in-memory fake.
type Store interface {
	FullSection(ctx context.Context, scope Scope, section Section) ([]Chunk, error)
	SpeakerBlock(ctx context.Context, scope Scope, speakerBlockID int) ([]Chunk, error)
	QAGroup(ctx context.Context, scope Scope, qaGroupID int) ([]Chunk, error)
	ChunkByID(ctx context.Context, chunkID int64) (Chunk, error)
	ChunkNeighbors(ctx context.Context, scope Scope, section Section, centerIndex, radius int) ([]Chunk, error)
	SectionChunksWithEmbeddings(ctx context.Context, scope Scope, section Section) ([]Chunk, error)
}
