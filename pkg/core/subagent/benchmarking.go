package subagent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aegis/pkg/core/apperr"
	"aegis/pkg/core/benchmarking"
	"aegis/pkg/core/conversation"
	"aegis/pkg/core/llm"
	"aegis/pkg/core/monitor"
	"aegis/pkg/core/pipeline"
	"aegis/pkg/core/prompt"
)

// BenchmarkingSubagent answers a combination by pulling the peer-platform
// metric rows recorded for (bank, fiscal_year, quarter) and narrating them,
// per spec.md §4.10's benchmarking subagent description.
type BenchmarkingSubagent struct {
	Connectors *llm.Registry
	Prompts    *prompt.Registry
	Store      benchmarking.Store
	Monitor    *monitor.Monitor
}

func (s *BenchmarkingSubagent) Run(ctx context.Context, executionID string, conv *conversation.Conversation,
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

func (s *BenchmarkingSubagent) runOne(ctx context.Context, conn llm.Connector, e *emitter, combo pipeline.Combination, fullIntent string) {
	start := time.Now()

	entries, err := s.Store.EntriesFor(ctx, combo.BankID, combo.FiscalYear, combo.Quarter)
	if err != nil {
		e.errorf(fmt.Sprintf("benchmarking lookup failed for %s: %v", combo.BankName, err))
		e.record("benchmarking.lookup", start, "error", 0)
		return
	}
	if len(entries) == 0 {
		e.content(fmt.Sprintf("No benchmarking data was found for %s (%d Q%d).", combo.BankName, combo.FiscalYear, combo.Quarter))
		e.record("benchmarking.lookup", start, "completed", 0)
		return
	}

	var rows strings.Builder
	for _, en := range entries {
		fmt.Fprintf(&rows, "- [%s] %s: %.4g. %s\n", en.Platform, en.MetricName, en.MetricValue, en.Narrative)
	}

	prose, err := s.narrate(ctx, conn, combo, fullIntent, rows.String())
	if err != nil {
		e.errorf(fmt.Sprintf("benchmarking narration failed for %s: %v", combo.BankName, err))
		e.record("benchmarking.narrate", start, "error", 0)
		return
	}
	e.content(prose)
	e.record("benchmarking.narrate", start, "completed", len(prose))
}

func (s *BenchmarkingSubagent) narrate(ctx context.Context, conn llm.Connector, combo pipeline.Combination, fullIntent, rows string) (string, error) {
	composed, err := s.Prompts.ComposeSystemPrompt(prompt.Names.SubagentBenchmarking)
	if err != nil {
		return "", err
	}

	req := llm.CompletionRequest{
		SystemPrompt: composed.SystemPrompt,
		Messages: []llm.Message{
			{Role: "user", Content: fmt.Sprintf(
				"Question intent: %s\n\n%s is being compared against peer platforms for FY%d Q%d. "+
					"Write prose summarizing where it stands relative to peers using only the metrics below:\n\n%s",
				fullIntent, combo.BankName, combo.FiscalYear, combo.Quarter, rows)},
		},
	}
	comp, err := conn.Complete(ctx, req)
	if err != nil {
		return "", apperr.Upstream("benchmarking.narrate", "model call failed", err)
	}
	return comp.Text, nil
}
