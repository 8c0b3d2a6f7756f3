package subagent

import (
	"context"
	"testing"

	"aegis/pkg/core/llm"
	"aegis/pkg/core/pipeline"
	"aegis/pkg/core/prompt"
)

func drainEvents(ch <-chan pipeline.Event) []pipeline.Event {
	var out []pipeline.Event
	for ev := range ch {
		out = append(out, ev)
	}
	return out
}

type fakePromptStore struct {
	records []prompt.Record
}

func (f *fakePromptStore) ListPromptRecords(ctx context.Context) ([]prompt.Record, error) {
	return f.records, nil
}

func testRegistry(t *testing.T, localNames ...string) *prompt.Registry {
	t.Helper()
	toolSchema := `{"type":"object","properties":{"method":{"type":"string"}}}`
	records := []prompt.Record{
		{Layer: prompt.LayerGlobal, Name: prompt.Names.GlobalContext, Version: "1", SystemPrompt: "You are Aegis."},
	}
	for _, name := range localNames {
		records = append(records, prompt.Record{
			Layer: prompt.LayerLocal, Name: name, Version: "1",
			SystemPrompt: "Local prompt for " + name, ToolSchemaJSON: toolSchema,
			UsesGlobal: []string{prompt.Names.GlobalContext},
		})
	}
	store := &fakePromptStore{records: records}
	r := prompt.New(store)
	if err := r.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	return r
}

// scriptedConnector returns one completion per CompleteWithTools call and
// one text per Complete call, in call order.
type scriptedConnector struct {
	toolCalls []*llm.Completion
	texts     []string
	toolIdx   int
	textIdx   int
	embedding []float32
	embedErr  error
}

func (c *scriptedConnector) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.Completion, error) {
	text := c.texts[c.textIdx]
	c.textIdx++
	return &llm.Completion{Text: text}, nil
}

func (c *scriptedConnector) CompleteWithTools(ctx context.Context, req llm.CompletionRequest) (*llm.Completion, error) {
	comp := c.toolCalls[c.toolIdx]
	c.toolIdx++
	return comp, nil
}

func (c *scriptedConnector) Stream(ctx context.Context, req llm.CompletionRequest) (<-chan llm.StreamChunk, error) {
	return nil, nil
}

func (c *scriptedConnector) Embed(ctx context.Context, text string) ([]float32, error) {
	return c.embedding, c.embedErr
}

func (c *scriptedConnector) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, nil
}

func toolCompletion(args map[string]any) *llm.Completion {
	return &llm.Completion{ToolCalls: []llm.ToolCall{{ID: "call_0", Name: "x", Arguments: args}}}
}

func registryWith(t *testing.T, name string, conn llm.Connector) *llm.Registry {
	t.Helper()
	r := llm.NewRegistry()
	r.Register(name, conn)
	return r
}
