package pipeline

import (
	"context"
	"encoding/json"

	"aegis/pkg/core/apperr"
	"aegis/pkg/core/conversation"
	"aegis/pkg/core/llm"
	"aegis/pkg/core/prompt"
)

// plannerDatabase is one database the planner selected, with the
// per-database intent strings subagents render their synthesis prompts
// from (spec.md §4.9 stage 3).
type plannerDatabase struct {
	DatabaseID  string `json:"database_id"`
	BasicIntent string `json:"basic_intent"`
	FullIntent  string `json:"full_intent"`
}

type plannerDecision struct {
	Databases []plannerDatabase `json:"databases"`
}

// runPlanner asks the planner to pick a subset of availableDBs to query
// against combos, attaching a basic/full intent pair to each.
func runPlanner(ctx context.Context, conn llm.Connector, registry *prompt.Registry,
	conv *conversation.Conversation, combos []clarifierCombination, availableDBs []string) (*plannerDecision, error) {

	req, err := StageRequest(registry, conv, prompt.Names.Planner)
	if err != nil {
		return nil, err
	}

	combosJSON, err := json.Marshal(combos)
	if err != nil {
		return nil, apperr.Invariant("pipeline.planner", "failed to marshal combinations", err)
	}
	req.Messages = append(req.Messages, llm.Message{
		Role:    "system",
		Content: "bank_period_combinations: " + string(combosJSON),
	})

	var decision plannerDecision
	if err := RunStage(ctx, conn, "pipeline.planner", req, &decision); err != nil {
		return nil, err
	}
	return &decision, nil
}
