package subagent

import (
	"context"
	"testing"

	"aegis/pkg/core/conversation"
	"aegis/pkg/core/llm"
	"aegis/pkg/core/monitor"
	"aegis/pkg/core/pipeline"
	"aegis/pkg/core/prompt"
	"aegis/pkg/core/retrieval"
)

type fakeRetrievalStore struct {
	chunks []retrieval.Chunk
}

func (f *fakeRetrievalStore) FullSection(ctx context.Context, scope retrieval.Scope, section retrieval.Section) ([]retrieval.Chunk, error) {
	return f.chunks, nil
}
func (f *fakeRetrievalStore) SpeakerBlock(ctx context.Context, scope retrieval.Scope, speakerBlockID int) ([]retrieval.Chunk, error) {
	return f.chunks, nil
}
func (f *fakeRetrievalStore) QAGroup(ctx context.Context, scope retrieval.Scope, qaGroupID int) ([]retrieval.Chunk, error) {
	return f.chunks, nil
}
func (f *fakeRetrievalStore) ChunkByID(ctx context.Context, chunkID int64) (retrieval.Chunk, error) {
	if len(f.chunks) == 0 {
		return retrieval.Chunk{}, nil
	}
	return f.chunks[0], nil
}
func (f *fakeRetrievalStore) ChunkNeighbors(ctx context.Context, scope retrieval.Scope, section retrieval.Section, centerIndex, radius int) ([]retrieval.Chunk, error) {
	return f.chunks, nil
}
func (f *fakeRetrievalStore) SectionChunksWithEmbeddings(ctx context.Context, scope retrieval.Scope, section retrieval.Section) ([]retrieval.Chunk, error) {
	return f.chunks, nil
}

func testConv(t *testing.T) *conversation.Conversation {
	t.Helper()
	conv, err := conversation.Normalize(conversation.RawInput{Messages: []conversation.Message{
		{Role: "user", Content: "How did margins trend?"},
	}}, conversation.Config{AllowedRoles: []string{"user", "assistant"}, HistoryCap: 10})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return conv
}

func TestTranscriptsSubagentFullSectionSynthesizesProse(t *testing.T) {
	registry := testRegistry(t, prompt.Names.SubagentTranscripts)
	store := &fakeRetrievalStore{chunks: []retrieval.Chunk{
		{ChunkID: 1, Section: retrieval.SectionMD, ChunkIndex: 0, Text: "Revenue grew 8% year over year."},
	}}
	conn := &scriptedConnector{
		toolCalls: []*llm.Completion{toolCompletion(map[string]any{"method": "full_section", "section": "MD"})},
		texts:     []string{"Management noted revenue grew 8% year over year."},
	}
	sa := &TranscriptsSubagent{
		Connectors: registryWith(t, "", conn),
		Prompts:    registry,
		Engine:     retrieval.New(store),
		Monitor:    monitor.New(nil),
	}

	combos := []pipeline.Combination{{BankID: 1, BankName: "Acme Bank", FiscalYear: 2025, Quarter: 2, QueryIntent: "margins"}}
	ch, err := sa.Run(context.Background(), "exec-1", testConv(t), combos, "margins", "how did margins trend", "transcripts")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	events := drainEvents(ch)

	var content string
	for _, ev := range events {
		if ev.Type == pipeline.EventSubagent {
			content = ev.Content
		}
	}
	if content != "Management noted revenue grew 8% year over year." {
		t.Errorf("unexpected content: %q", content)
	}
}

func TestTranscriptsSubagentRejectsIdentifierLeak(t *testing.T) {
	registry := testRegistry(t, prompt.Names.SubagentTranscripts)
	store := &fakeRetrievalStore{chunks: []retrieval.Chunk{
		{ChunkID: 1, Section: retrieval.SectionMD, Text: "Revenue grew."},
	}}
	conn := &scriptedConnector{
		toolCalls: []*llm.Completion{toolCompletion(map[string]any{"method": "full_section", "section": "MD"})},
		texts:     []string{"See chunk_id 42 for details."},
	}
	sa := &TranscriptsSubagent{
		Connectors: registryWith(t, "", conn),
		Prompts:    registry,
		Engine:     retrieval.New(store),
		Monitor:    monitor.New(nil),
	}

	combos := []pipeline.Combination{{BankID: 1, BankName: "Acme Bank", FiscalYear: 2025, Quarter: 2}}
	ch, err := sa.Run(context.Background(), "exec-1", testConv(t), combos, "margins", "margins", "transcripts")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	events := drainEvents(ch)

	var content string
	for _, ev := range events {
		if ev.Type == pipeline.EventSubagent {
			content = ev.Content
		}
	}
	if content != degradedNote {
		t.Errorf("expected degraded note, got %q", content)
	}
}

func TestTranscriptsSubagentNoChunksReturnsNoticeNotError(t *testing.T) {
	registry := testRegistry(t, prompt.Names.SubagentTranscripts)
	store := &fakeRetrievalStore{chunks: nil}
	conn := &scriptedConnector{
		toolCalls: []*llm.Completion{toolCompletion(map[string]any{"method": "full_section", "section": "MD"})},
	}
	sa := &TranscriptsSubagent{
		Connectors: registryWith(t, "", conn),
		Prompts:    registry,
		Engine:     retrieval.New(store),
		Monitor:    monitor.New(nil),
	}

	combos := []pipeline.Combination{{BankID: 1, BankName: "Acme Bank", FiscalYear: 2025, Quarter: 2}}
	ch, err := sa.Run(context.Background(), "exec-1", testConv(t), combos, "margins", "margins", "transcripts")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	events := drainEvents(ch)

	for _, ev := range events {
		if ev.Type == pipeline.EventError {
			t.Errorf("unexpected error event: %+v", ev)
		}
	}
}
