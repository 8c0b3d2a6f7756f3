// Package monitor implements C3: per-execution process telemetry.
//
// Aegis records one append-only list of stage entries per execution_id so a
// request's router/clarifier/planner/subagent/summarizer timeline can be
// reconstructed and persisted after the response has been streamed to the
// client. Grounded on the mutex-guarded in-memory state pattern of the
// teacher's debate.DebateOrchestrator (sync.RWMutex over per-instance
// state); generalized here to a process-wide registry keyed by execution
// ID rather than one struct per conversation.
package monitor

import (
	"context"
	"sync"
	"time"

	"aegis/pkg/core/obslog"
)

// Entry is one recorded monitor event within an execution.
type Entry struct {
	ExecutionID string
	Stage       string
	Status      string // "started" | "completed" | "error"
	DurationMS  int64
	Detail      map[string]any
	Timestamp   time.Time
}

// Sink persists a batch of entries durably (e.g. the relational store's
// monitor table). PostEntries hands entries to a Sink; the monitor package
// itself never imports the store package, keeping this a narrow
// collaborator interface per spec's "never make shared state a singleton"
// design note.
type Sink interface {
	WriteEntries(ctx context.Context, entries []Entry) error
}

// Monitor is the process-wide, non-singleton telemetry registry. Callers
// construct one (normally one per process, held by the pipeline) rather
// than reaching for package-level global state.
type Monitor struct {
	mu      sync.RWMutex
	byExec  map[string][]Entry
	sink    Sink
}

// New constructs a Monitor. sink may be nil; PostEntries becomes a no-op
// in that case.
func New(sink Sink) *Monitor {
	return &Monitor{
		byExec: make(map[string][]Entry),
		sink:   sink,
	}
}

// InitializeExecution registers an execution ID so AddEntry has somewhere
// to append even before the first stage fires.
func (m *Monitor) InitializeExecution(executionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byExec[executionID]; !ok {
		m.byExec[executionID] = []Entry{}
	}
}

// AddEntry appends a telemetry entry. It never returns an error to the
// caller: a monitor write failure must not interrupt the user-facing
// response stream, so failures are logged and swallowed here, mirroring
// the original source's best-effort logging calls around monitor writes.
func (m *Monitor) AddEntry(executionID, stage, status string, duration time.Duration, detail map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			obslog.Error("monitor.add_entry_panic", "execution_id", executionID, "recovered", r)
		}
	}()

	e := Entry{
		ExecutionID: executionID,
		Stage:       stage,
		Status:      status,
		DurationMS:  duration.Milliseconds(),
		Detail:      detail,
		Timestamp:   time.Now(),
	}

	m.mu.Lock()
	m.byExec[executionID] = append(m.byExec[executionID], e)
	m.mu.Unlock()

	obslog.Debug("monitor.entry_recorded", "execution_id", executionID, "stage", stage, "status", status)
}

// Entries returns a copy of the entries recorded so far for executionID.
func (m *Monitor) Entries(executionID string) []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src := m.byExec[executionID]
	out := make([]Entry, len(src))
	copy(out, src)
	return out
}

// PostEntries flushes every execution's accumulated entries to the Sink
// and returns how many entries were written. A nil Sink is a no-op that
// reports zero written, not an error — monitor persistence is best-effort.
func (m *Monitor) PostEntries(ctx context.Context) (int, error) {
	if m.sink == nil {
		return 0, nil
	}

	m.mu.RLock()
	var all []Entry
	for _, entries := range m.byExec {
		all = append(all, entries...)
	}
	m.mu.RUnlock()

	if len(all) == 0 {
		return 0, nil
	}

	if err := m.sink.WriteEntries(ctx, all); err != nil {
		obslog.Error("monitor.post_entries_failed", "count", len(all), "error", err.Error())
		return 0, err
	}

	obslog.Info("monitor.entries_posted", "count", len(all))
	return len(all), nil
}

// ClearEntries drops the in-memory entries for executionID, freeing the
// per-request telemetry buffer once it has been posted or abandoned.
func (m *Monitor) ClearEntries(executionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byExec, executionID)
}
