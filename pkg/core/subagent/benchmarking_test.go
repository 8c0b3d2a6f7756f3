package subagent

import (
	"context"
	"testing"

	"aegis/pkg/core/benchmarking"
	"aegis/pkg/core/monitor"
	"aegis/pkg/core/pipeline"
	"aegis/pkg/core/prompt"
)

type fakeBenchmarkingStore struct {
	entries []benchmarking.Entry
}

func (f *fakeBenchmarkingStore) EntriesFor(ctx context.Context, bankID int64, fiscalYear, quarter int) ([]benchmarking.Entry, error) {
	return f.entries, nil
}

func TestBenchmarkingSubagentNarratesEntries(t *testing.T) {
	registry := testRegistry(t, prompt.Names.SubagentBenchmarking)
	store := &fakeBenchmarkingStore{entries: []benchmarking.Entry{
		{BankID: 1, FiscalYear: 2025, Quarter: 2, Platform: "Visible Alpha", MetricName: "NIM", MetricValue: 3.1, Narrative: "above peer median"},
	}}
	conn := &scriptedConnector{texts: []string{"The bank's NIM sits above the peer median this quarter."}}
	sa := &BenchmarkingSubagent{
		Connectors: registryWith(t, "", conn),
		Prompts:    registry,
		Store:      store,
		Monitor:    monitor.New(nil),
	}

	combos := []pipeline.Combination{{BankID: 1, BankName: "Acme Bank", FiscalYear: 2025, Quarter: 2}}
	ch, err := sa.Run(context.Background(), "exec-1", testConv(t), combos, "nim", "how does NIM compare to peers", "benchmarking")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var content string
	for _, ev := range drainEvents(ch) {
		if ev.Type == pipeline.EventSubagent {
			content = ev.Content
		}
	}
	if content != "The bank's NIM sits above the peer median this quarter." {
		t.Errorf("unexpected content: %q", content)
	}
}

func TestBenchmarkingSubagentNoEntriesReturnsNotice(t *testing.T) {
	registry := testRegistry(t, prompt.Names.SubagentBenchmarking)
	store := &fakeBenchmarkingStore{}
	conn := &scriptedConnector{}
	sa := &BenchmarkingSubagent{
		Connectors: registryWith(t, "", conn),
		Prompts:    registry,
		Store:      store,
		Monitor:    monitor.New(nil),
	}

	combos := []pipeline.Combination{{BankID: 1, BankName: "Acme Bank", FiscalYear: 2025, Quarter: 2}}
	ch, err := sa.Run(context.Background(), "exec-1", testConv(t), combos, "nim", "nim", "benchmarking")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var sawNotice bool
	for _, ev := range drainEvents(ch) {
		if ev.Type == pipeline.EventSubagent && ev.Content != "" {
			sawNotice = true
		}
		if ev.Type == pipeline.EventError {
			t.Errorf("unexpected error event: %+v", ev)
		}
	}
	if !sawNotice {
		t.Error("expected a no-data notice")
	}
}
