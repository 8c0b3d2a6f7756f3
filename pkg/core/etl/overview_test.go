package etl

import (
	"context"
	"testing"

	"aegis/pkg/core/llm"
	"aegis/pkg/core/prompt"
)

type fakeOverviewPromptStore struct {
	records []prompt.Record
}

func (f *fakeOverviewPromptStore) ListPromptRecords(ctx context.Context) ([]prompt.Record, error) {
	return f.records, nil
}

func overviewTestRegistry(t *testing.T) *prompt.Registry {
	t.Helper()
	schema := `{"type":"object","properties":{"combined_overview":{"type":"string"},"combination_notes":{"type":"string"}}}`
	store := &fakeOverviewPromptStore{records: []prompt.Record{
		{Layer: prompt.LayerGlobal, Name: prompt.Names.GlobalContext, Version: "1", SystemPrompt: "You are Aegis."},
		{
			Layer: prompt.LayerLocal, Name: prompt.Names.ETLOverviewCombination, Version: "1",
			SystemPrompt:   "Combine the overviews.",
			UserPromptTmpl: "RTS: {{.rts_overview}}\nTranscript: {{.transcript_overview}}",
			ToolSchemaJSON: schema,
			UsesGlobal:     []string{prompt.Names.GlobalContext},
		},
	}}
	r := prompt.New(store)
	if err := r.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	return r
}

type overviewScriptedConnector struct {
	comp *llm.Completion
	err  error
}

func (c *overviewScriptedConnector) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.Completion, error) {
	return nil, nil
}
func (c *overviewScriptedConnector) CompleteWithTools(ctx context.Context, req llm.CompletionRequest) (*llm.Completion, error) {
	return c.comp, c.err
}
func (c *overviewScriptedConnector) Stream(ctx context.Context, req llm.CompletionRequest) (<-chan llm.StreamChunk, error) {
	return nil, nil
}
func (c *overviewScriptedConnector) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, nil
}
func (c *overviewScriptedConnector) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, nil
}

func TestCombineOverviewBothEmpty(t *testing.T) {
	got, err := CombineOverview(context.Background(), nil, nil, "", "", "Wells Fargo", "Q2", 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Narrative != "" || got.Notes != "No overview content from either source" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestCombineOverviewOnlyTranscript(t *testing.T) {
	got, err := CombineOverview(context.Background(), nil, nil, "", "Management emphasized loan growth.", "Wells Fargo", "Q2", 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Narrative != "Management emphasized loan growth." {
		t.Fatalf("expected transcript verbatim, got %+v", got)
	}
}

func TestCombineOverviewOnlyRTS(t *testing.T) {
	got, err := CombineOverview(context.Background(), nil, nil, "NIM compressed 5bps.", "", "Wells Fargo", "Q2", 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Narrative != "NIM compressed 5bps." {
		t.Fatalf("expected RTS verbatim, got %+v", got)
	}
}

func TestCombineOverviewBothPresentCallsModel(t *testing.T) {
	registry := overviewTestRegistry(t)
	conn := &overviewScriptedConnector{comp: &llm.Completion{
		ToolCalls: []llm.ToolCall{{Arguments: map[string]any{
			"combined_overview": "A synthesized overview.",
			"combination_notes": "Blended both sources.",
		}}},
	}}

	got, err := CombineOverview(context.Background(), conn, registry, "NIM compressed 5bps.", "Management emphasized loan growth.", "Wells Fargo", "Q2", 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Narrative != "A synthesized overview." || got.Notes != "Blended both sources." {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestCombineOverviewFallsBackToTranscriptOnModelError(t *testing.T) {
	registry := overviewTestRegistry(t)
	conn := &overviewScriptedConnector{err: context.DeadlineExceeded}

	got, err := CombineOverview(context.Background(), conn, registry, "NIM compressed 5bps.", "Management emphasized loan growth.", "Wells Fargo", "Q2", 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Narrative != "Management emphasized loan growth." {
		t.Fatalf("expected fallback to transcript overview, got %+v", got)
	}
}

func TestCombineOverviewFallsBackWhenNoToolCall(t *testing.T) {
	registry := overviewTestRegistry(t)
	conn := &overviewScriptedConnector{comp: &llm.Completion{Text: "prose instead of a tool call"}}

	got, err := CombineOverview(context.Background(), conn, registry, "NIM compressed 5bps.", "Management emphasized loan growth.", "Wells Fargo", "Q2", 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Narrative != "Management emphasized loan growth." {
		t.Fatalf("expected fallback to transcript overview, got %+v", got)
	}
}
