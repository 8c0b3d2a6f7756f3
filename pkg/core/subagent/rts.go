package subagent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aegis/pkg/core/apperr"
	"aegis/pkg/core/conversation"
	"aegis/pkg/core/llm"
	"aegis/pkg/core/monitor"
	"aegis/pkg/core/pipeline"
	"aegis/pkg/core/prompt"
	"aegis/pkg/core/rts"
)

// rtsTopK is how many filing chunks feed each synthesis call.
const rtsTopK = 8

// RtsSubagent answers a combination from regulatory filing chunks
// ("Research The Street"), embedding the query intent and ranking stored
// chunks by cosine similarity through rts.TopK, which reuses C7's
// retrieval.CosineSimilarity rather than a second implementation
// (spec.md §4.10, SPEC_FULL §3.10).
type RtsSubagent struct {
	Connectors *llm.Registry
	Prompts    *prompt.Registry
	Store      rts.Store
	Monitor    *monitor.Monitor
}

func (s *RtsSubagent) Run(ctx context.Context, executionID string, conv *conversation.Conversation,
	combos []pipeline.Combination, basicIntent, fullIntent, databaseID string) (<-chan pipeline.Event, error) {

	e := newEmitter(databaseID, executionID, s.Monitor)
	conn, err := s.Connectors.Get("")
	if err != nil {
		return nil, err
	}

	go func() {
		defer e.close()
		for _, combo := range combos {
			s.runOne(ctx, conn, e, combo, fullIntent)
		}
	}()
	return e.out, nil
}

func (s *RtsSubagent) runOne(ctx context.Context, conn llm.Connector, e *emitter, combo pipeline.Combination, fullIntent string) {
	start := time.Now()

	chunks, err := s.Store.ChunksWithEmbeddings(ctx, combo.BankID, combo.FiscalYear, combo.Quarter)
	if err != nil {
		e.errorf(fmt.Sprintf("rts lookup failed for %s: %v", combo.BankName, err))
		e.record("rts.lookup", start, "error", 0)
		return
	}
	if len(chunks) == 0 {
		e.content(fmt.Sprintf("No regulatory filing content was found for %s (%d Q%d).", combo.BankName, combo.FiscalYear, combo.Quarter))
		e.record("rts.lookup", start, "completed", 0)
		return
	}

	queryEmbedding, err := conn.Embed(ctx, fullIntent)
	if err != nil {
		e.errorf(fmt.Sprintf("rts embedding failed for %s: %v", combo.BankName, err))
		e.record("rts.embed", start, "error", 0)
		return
	}
	top := rts.TopK(chunks, queryEmbedding, rtsTopK)

	var text strings.Builder
	for _, c := range top {
		text.WriteString(c.Text)
		text.WriteString("\n\n")
	}

	prose, err := s.synthesize(ctx, conn, combo, fullIntent, text.String())
	if err != nil {
		e.errorf(fmt.Sprintf("rts synthesis failed for %s: %v", combo.BankName, err))
		e.record("rts.synthesize", start, "error", 0)
		return
	}
	if leaksIdentifiers(prose) {
		e.content(degradedNote)
		e.record("rts.synthesize", start, "degraded", len(degradedNote))
		return
	}
	e.content(prose)
	e.record("rts.synthesize", start, "completed", len(prose))
}

func (s *RtsSubagent) synthesize(ctx context.Context, conn llm.Connector, combo pipeline.Combination, fullIntent, filingText string) (string, error) {
	composed, err := s.Prompts.ComposeSystemPrompt(prompt.Names.SubagentRts)
	if err != nil {
		return "", err
	}

	req := llm.CompletionRequest{
		SystemPrompt: composed.SystemPrompt,
		Messages: []llm.Message{
			{Role: "user", Content: fmt.Sprintf(
				"Question intent: %s\n\nUsing only the regulatory filing excerpts below for %s (FY%d Q%d), "+
					"write prose summarizing the relevant disclosures. Never mention internal chunk identifiers.\n\n%s",
				fullIntent, combo.BankName, combo.FiscalYear, combo.Quarter, filingText)},
		},
	}
	comp, err := conn.Complete(ctx, req)
	if err != nil {
		return "", apperr.Upstream("rts.synthesize", "model call failed", err)
	}
	return comp.Text, nil
}
