package pipeline

import (
	"context"
	"strings"

	"aegis/pkg/core/apperr"
	"aegis/pkg/core/conversation"
	"aegis/pkg/core/llm"
	"aegis/pkg/core/prompt"
)

// runSummarizer fuses every subagent's output plus the original query into
// a single synthesized answer (spec.md §4.9 stage 5), tagged by the caller
// as EventAgent{Name:"aegis"}. The summarizer is a plain Complete call, not
// a tool call — it only ever produces prose.
func runSummarizer(ctx context.Context, conn llm.Connector, registry *prompt.Registry,
	conv *conversation.Conversation, subagentOutputs map[string]string) (string, error) {

	composed, err := registry.ComposeSystemPrompt(prompt.Names.Summarizer)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Original question: ")
	b.WriteString(conv.Latest().Content)
	b.WriteString("\n\nSubagent findings:\n")
	for name, content := range subagentOutputs {
		b.WriteString("- ")
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(content)
		b.WriteString("\n")
	}

	comp, err := conn.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: composed.SystemPrompt,
		Messages:     []llm.Message{{Role: "user", Content: b.String()}},
	})
	if err != nil {
		return "", apperr.Upstream("pipeline.summarizer", "model call failed", err)
	}
	return comp.Text, nil
}
