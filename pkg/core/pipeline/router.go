package pipeline

import (
	"context"

	"aegis/pkg/core/conversation"
	"aegis/pkg/core/llm"
	"aegis/pkg/core/prompt"
)

const (
	routeDirectResponse  = "direct_response"
	routeResearchWorkflow = "research_workflow"
)

// routerDecision is the router's tool call shape: a classification of the
// latest turn, plus the final answer text when that classification is
// direct_response (spec.md §4.9 stage 1).
type routerDecision struct {
	Route    string `json:"route"`
	Response string `json:"response"`
}

// runRouter classifies conv's latest turn. On direct_response the caller
// streams decision.Response itself and ends the pipeline; any other route
// value hands off to the clarifier.
func runRouter(ctx context.Context, conn llm.Connector, registry *prompt.Registry, conv *conversation.Conversation) (*routerDecision, error) {
	req, err := StageRequest(registry, conv, prompt.Names.Router)
	if err != nil {
		return nil, err
	}

	var decision routerDecision
	if err := RunStage(ctx, conn, "pipeline.router", req, &decision); err != nil {
		return nil, err
	}
	return &decision, nil
}
