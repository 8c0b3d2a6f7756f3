package pipeline

import (
	"context"
	"strings"
	"time"

	"aegis/pkg/core/availability"
	"aegis/pkg/core/conversation"
	"aegis/pkg/core/llm"
	"aegis/pkg/core/monitor"
	"aegis/pkg/core/prompt"
)

// Orchestrator runs the interactive agent pipeline end to end: router,
// clarifier, planner, subagent dispatch, summarizer. Non-singleton, like
// every other injected collaborator in this design (settings.go §9).
type Orchestrator struct {
	Connectors   *llm.Registry
	Prompts      *prompt.Registry
	Monitor      *monitor.Monitor
	Availability availability.Store
	Subagents    map[string]Subagent
}

// RunQuery streams the pipeline's events for conv over dbNames (the
// databases this deployment has enabled at all). The returned channel is
// always closed by RunQuery, whether the run ends at the router's
// direct_response shortcut, a stage failure, or the summarizer.
func (o *Orchestrator) RunQuery(ctx context.Context, executionID string, conv *conversation.Conversation, dbNames []string) <-chan Event {
	out := make(chan Event, 64)
	go o.run(ctx, executionID, conv, dbNames, out)
	return out
}

func (o *Orchestrator) run(ctx context.Context, executionID string, conv *conversation.Conversation, dbNames []string, out chan<- Event) {
	defer close(out)
	o.Monitor.InitializeExecution(executionID)

	conn, err := o.Connectors.Get("")
	if err != nil {
		o.fail(out, executionID, "router", err)
		return
	}

	start := time.Now()
	router, err := runRouter(ctx, conn, o.Prompts, conv)
	o.Monitor.AddEntry(executionID, "router", stageStatus(err), time.Since(start), nil)
	if err != nil {
		o.fail(out, executionID, "router", err)
		return
	}
	if router.Route == routeDirectResponse {
		out <- Event{Type: EventAgent, Name: "aegis", Content: router.Response}
		return
	}

	start = time.Now()
	clarification, err := runClarifier(ctx, conn, o.Prompts, conv, dbNames)
	o.Monitor.AddEntry(executionID, "clarifier", stageStatus(err), time.Since(start), nil)
	if err != nil {
		o.fail(out, executionID, "clarifier", err)
		return
	}
	if clarification.NeedsClarification {
		out <- Event{Type: EventAgent, Name: "aegis", Content: strings.Join(clarification.Questions, " ")}
		return
	}

	valid, err := validateCombinations(ctx, o.Availability, clarification.Combinations, dbNames)
	if err != nil {
		o.fail(out, executionID, "clarifier", err)
		return
	}
	if len(valid) == 0 {
		out <- Event{Type: EventAgent, Name: "aegis", Content: "I couldn't find data for the banks or periods requested."}
		return
	}

	start = time.Now()
	plan, err := runPlanner(ctx, conn, o.Prompts, conv, valid, dbNames)
	o.Monitor.AddEntry(executionID, "planner", stageStatus(err), time.Since(start), nil)
	if err != nil {
		o.fail(out, executionID, "planner", err)
		return
	}
	if len(plan.Databases) == 0 {
		out <- Event{Type: EventAgent, Name: "aegis", Content: "I couldn't determine which databases to query for this request."}
		return
	}

	start = time.Now()
	outputs := dispatchSubagents(ctx, executionID, o.Subagents, plan.Databases, conv, valid, out)
	o.Monitor.AddEntry(executionID, "subagents", "completed", time.Since(start), map[string]any{"databases": len(plan.Databases)})

	out <- Event{Type: EventSummarizerStart, Name: "aegis"}
	start = time.Now()
	answer, err := runSummarizer(ctx, conn, o.Prompts, conv, outputs)
	o.Monitor.AddEntry(executionID, "summarizer", stageStatus(err), time.Since(start), nil)
	if err != nil {
		o.fail(out, executionID, "summarizer", err)
		return
	}
	out <- Event{Type: EventAgent, Name: "aegis", Content: answer}
}

// fail emits the user-surfaced explanatory message spec.md §4.9 requires
// on a router/clarifier/planner/summarizer failure: these stages never
// propagate a raw error to the client.
func (o *Orchestrator) fail(out chan<- Event, executionID, stage string, err error) {
	o.Monitor.AddEntry(executionID, stage, "error", 0, map[string]any{"error": err.Error()})
	out <- Event{Type: EventError, Name: "aegis", Content: "I ran into a problem and couldn't complete that request."}
}

func stageStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "completed"
}
