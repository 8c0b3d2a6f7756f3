// Package subagent implements C10: the four concrete Subagents the agent
// pipeline (C9) dispatches per database — transcripts, benchmarking,
// reports, rts. Each owns its own retrieval/narration logic but shares
// the emit/monitor/degrade plumbing in this file.
//
// Grounded on the teacher's per-analyst agent pattern
// (pkg/core/agent.Manager dispatching named analyst roles), generalized
// from valuation analyst personas to Aegis's four database-backed
// research subagents.
package subagent

import (
	"regexp"
	"time"

	"aegis/pkg/core/monitor"
	"aegis/pkg/core/pipeline"
	"aegis/pkg/core/retrieval"
)

// identifierLeak matches the internal identifiers that must never reach
// the user-facing stream: qa_group_id, speaker_block_id, chunk_id, and
// bare "chunk_index" references a synthesis pass might otherwise echo
// back verbatim from the retrieved text (spec.md §4.10).
var identifierLeak = regexp.MustCompile(`(?i)\b(qa_group_id|speaker_block_id|chunk_id|chunk_index)\b`)

// degradedNote substitutes for a synthesis output the leak guard rejects,
// per spec.md §7's "UpstreamError...degrade" policy extended to a
// content-leak case: the user still gets an answer, just not the one the
// model produced.
const degradedNote = "I found relevant information but couldn't render it safely; please rephrase your question."

func leaksIdentifiers(text string) bool {
	return identifierLeak.MatchString(text)
}

// scopeFor builds a retrieval.Scope from a pipeline.Combination.
func scopeFor(c pipeline.Combination) retrieval.Scope {
	return retrieval.Scope{InstitutionID: c.BankID, FiscalYear: c.FiscalYear, Quarter: c.Quarter}
}

// emitter wraps the per-call event channel and the monitor bookkeeping
// every subagent performs identically: a started entry, a completed or
// error entry with elapsed duration, and an approximate "cost" proxy
// (output character count — the teacher's token/cost accounting depends
// on a live billing API this design doesn't have access to, so character
// count is the nearest available proxy, named as such rather than
// disguised as a real token count).
type emitter struct {
	out  chan pipeline.Event
	name string
	mon  *monitor.Monitor
	exec string
}

func newEmitter(name, executionID string, mon *monitor.Monitor) *emitter {
	return &emitter{out: make(chan pipeline.Event, 16), name: name, mon: mon, exec: executionID}
}

func (e *emitter) send(ev pipeline.Event) {
	e.out <- ev
}

func (e *emitter) content(text string) {
	e.send(pipeline.Event{Type: pipeline.EventSubagent, Name: e.name, Content: text})
}

func (e *emitter) errorf(text string) {
	e.send(pipeline.Event{Type: pipeline.EventError, Name: e.name, Content: text})
}

func (e *emitter) close() {
	close(e.out)
}

func (e *emitter) record(stage string, start time.Time, status string, outputChars int) {
	e.mon.AddEntry(e.exec, stage, status, time.Since(start), map[string]any{
		"database":     e.name,
		"output_chars": outputChars,
	})
}
