package pipeline

import (
	"context"
	"testing"
	"time"

	"aegis/pkg/core/conversation"
)

type timedSubagent struct {
	delay  time.Duration
	events []Event
}

func (s *timedSubagent) Run(ctx context.Context, executionID string, conv *conversation.Conversation, combos []Combination,
	basicIntent, fullIntent, databaseID string) (<-chan Event, error) {
	ch := make(chan Event, len(s.events))
	go func() {
		time.Sleep(s.delay)
		for _, e := range s.events {
			ch <- e
		}
		close(ch)
	}()
	return ch, nil
}

func TestDispatchSubagentsOrdersByFirstEventArrival(t *testing.T) {
	subagents := map[string]Subagent{
		"slow": &timedSubagent{delay: 30 * time.Millisecond, events: []Event{
			{Type: EventSubagent, Name: "slow", Content: "slow content"},
		}},
		"fast": &timedSubagent{delay: 0, events: []Event{
			{Type: EventSubagent, Name: "fast", Content: "fast content"},
		}},
	}
	databases := []plannerDatabase{{DatabaseID: "slow"}, {DatabaseID: "fast"}}

	out := make(chan Event, 16)
	outputs := dispatchSubagents(context.Background(), "exec-1", subagents, databases, &conversation.Conversation{}, nil, out)
	close(out)

	var names []string
	for e := range out {
		if e.Type == EventSubagent {
			names = append(names, e.Name)
		}
	}
	if len(names) != 2 || names[0] != "fast" || names[1] != "slow" {
		t.Fatalf("expected fast before slow, got %v", names)
	}
	if outputs["fast"] != "fast content" || outputs["slow"] != "slow content" {
		t.Errorf("unexpected outputs map: %+v", outputs)
	}
}

func TestDispatchSubagentsMissingSubagentEmitsError(t *testing.T) {
	out := make(chan Event, 4)
	dispatchSubagents(context.Background(), "exec-1", map[string]Subagent{}, []plannerDatabase{{DatabaseID: "rts"}},
		&conversation.Conversation{}, nil, out)
	close(out)

	var sawErr bool
	for e := range out {
		if e.Type == EventError && e.Name == "rts" {
			sawErr = true
		}
	}
	if !sawErr {
		t.Error("expected an EventError for the unregistered subagent")
	}
}
