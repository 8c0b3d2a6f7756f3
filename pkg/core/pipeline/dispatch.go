package pipeline

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"aegis/pkg/core/conversation"
)

func toCombinations(combos []clarifierCombination) []Combination {
	out := make([]Combination, 0, len(combos))
	for _, c := range combos {
		out = append(out, Combination{
			BankID:      c.BankID,
			BankName:    c.BankName,
			BankSymbol:  c.BankSymbol,
			FiscalYear:  c.FiscalYear,
			Quarter:     c.Quarter,
			QueryIntent: c.QueryIntent,
		})
	}
	return out
}

type subagentBranch struct {
	databaseID string
	events     <-chan Event
}

// dispatchSubagents runs one Subagent per selected database concurrently
// and forwards their events onto out. Grounded on the same "buffered
// per-subscriber channel, non-blocking send" idiom as
// debate.DebateOrchestrator.broadcast: every Subagent.Run returns its own
// buffered channel, so a slow or silent branch never blocks the others
// from producing. Each branch's events are collected in full chunk-
// contiguous order and the branches themselves are then emitted onto out
// in the order their first event arrived — the "result-ordering shim"
// spec.md §5 requires, so the visible stream order doesn't depend on map
// iteration or on which subagent the planner happened to list first.
func dispatchSubagents(ctx context.Context, executionID string, subagents map[string]Subagent, databases []plannerDatabase,
	conv *conversation.Conversation, combos []clarifierCombination, out chan<- Event) map[string]string {

	all := toCombinations(combos)

	var branches []subagentBranch
	for _, db := range databases {
		sa, ok := subagents[db.DatabaseID]
		if !ok {
			out <- Event{Type: EventError, Name: db.DatabaseID, Content: "no subagent registered for database: " + db.DatabaseID}
			continue
		}
		events, err := sa.Run(ctx, executionID, conv, all, db.BasicIntent, db.FullIntent, db.DatabaseID)
		if err != nil {
			out <- Event{Type: EventError, Name: db.DatabaseID, Content: err.Error()}
			continue
		}
		out <- Event{Type: EventSubagentStart, Name: db.DatabaseID}
		branches = append(branches, subagentBranch{databaseID: db.DatabaseID, events: events})
	}
	if len(branches) == 0 {
		return nil
	}

	forwarded := make([][]Event, len(branches))
	firstArrived := make(chan int, len(branches))

	var g errgroup.Group
	for i, b := range branches {
		i, b := i, b
		g.Go(func() error {
			first := true
			for ev := range b.events {
				forwarded[i] = append(forwarded[i], ev)
				if first {
					first = false
					firstArrived <- i
				}
			}
			return nil
		})
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() { defer wg.Done(); _ = g.Wait() }()
	go func() { wg.Wait(); close(firstArrived) }()

	order := make([]int, 0, len(branches))
	seen := make(map[int]bool, len(branches))
	for i := range firstArrived {
		if !seen[i] {
			seen[i] = true
			order = append(order, i)
		}
	}
	for i := range branches {
		if !seen[i] {
			order = append(order, i) // branch never emitted anything
		}
	}

	outputs := make(map[string]string, len(branches))
	for _, i := range order {
		var text strings.Builder
		for _, ev := range forwarded[i] {
			out <- ev
			if ev.Type == EventSubagent {
				text.WriteString(ev.Content)
			}
		}
		outputs[branches[i].databaseID] = text.String()
	}
	return outputs
}
