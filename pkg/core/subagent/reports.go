package subagent

import (
	"context"
	"fmt"
	"time"

	"aegis/pkg/core/conversation"
	"aegis/pkg/core/monitor"
	"aegis/pkg/core/pipeline"
	"aegis/pkg/core/reports"
)

// ReportsSubagent answers a combination by looking up the pre-rendered
// Report row for (bank, fiscal_year, quarter); it never calls an LLM,
// since the report text is already final prose (spec.md §4.10).
type ReportsSubagent struct {
	Store   reports.Store
	Monitor *monitor.Monitor
}

func (s *ReportsSubagent) Run(ctx context.Context, executionID string, conv *conversation.Conversation,
	combos []pipeline.Combination, basicIntent, fullIntent, databaseID string) (<-chan pipeline.Event, error) {

	e := newEmitter(databaseID, executionID, s.Monitor)
	go func() {
		defer e.close()
		for _, combo := range combos {
			s.runOne(ctx, e, combo)
		}
	}()
	return e.out, nil
}

func (s *ReportsSubagent) runOne(ctx context.Context, e *emitter, combo pipeline.Combination) {
	start := time.Now()

	r, err := s.Store.GetReport(ctx, combo.BankID, combo.FiscalYear, combo.Quarter, reports.DefaultReportType)
	if err != nil {
		e.errorf(fmt.Sprintf("report lookup failed for %s: %v", combo.BankName, err))
		e.record("reports.lookup", start, "error", 0)
		return
	}
	if r == nil {
		e.content(reports.NoContentSentinel)
		e.record("reports.lookup", start, "completed", len(reports.NoContentSentinel))
		return
	}

	content := r.MarkdownContent
	if r.S3DocumentName != "" {
		content = fmt.Sprintf("%s\n\nSource document: %s", content, r.S3DocumentName)
	}
	e.content(content)
	e.record("reports.lookup", start, "completed", len(content))
}
