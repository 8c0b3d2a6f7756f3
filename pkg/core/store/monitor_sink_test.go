package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"aegis/pkg/core/monitor"
)

func TestWriteEntriesIssuesOneInsertPerEntry(t *testing.T) {
	var execCount int
	g := &Gateway{pool: &fakeQuerier{
		execFn: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			execCount++
			return pgconn.NewCommandTag("INSERT 0 1"), nil
		},
	}}

	entries := []monitor.Entry{
		{ExecutionID: "exec-1", Stage: "router", Status: "completed", DurationMS: 12, Timestamp: time.Now()},
		{ExecutionID: "exec-1", Stage: "planner", Status: "completed", DurationMS: 34, Detail: map[string]any{"steps": 3}, Timestamp: time.Now()},
	}

	if err := g.WriteEntries(context.Background(), entries); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if execCount != 2 {
		t.Fatalf("expected 2 inserts, got %d", execCount)
	}
}

func TestWriteEntriesEmptyBatchIsNoop(t *testing.T) {
	called := false
	g := &Gateway{pool: &fakeQuerier{
		execFn: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			called = true
			return pgconn.CommandTag{}, nil
		},
	}}

	if err := g.WriteEntries(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Fatal("expected no exec call for an empty entry batch")
	}
}

func TestWriteEntriesPropagatesExecError(t *testing.T) {
	g := &Gateway{pool: &fakeQuerier{
		execFn: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			return pgconn.CommandTag{}, errors.New("connection reset")
		},
	}}

	entries := []monitor.Entry{{ExecutionID: "exec-1", Stage: "router", Status: "error", Timestamp: time.Now()}}
	if err := g.WriteEntries(context.Background(), entries); err == nil {
		t.Fatal("expected WriteEntries to propagate the exec error")
	}
}
