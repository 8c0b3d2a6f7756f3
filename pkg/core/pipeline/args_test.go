package pipeline

import (
	"testing"

	"aegis/pkg/core/apperr"
	"aegis/pkg/core/llm"
)

func TestDecodeArgsPopulatesTypedStruct(t *testing.T) {
	var decision routerDecision
	err := DecodeArgs("pipeline.router", map[string]any{"route": "direct_response", "response": "hi"}, &decision)
	if err != nil {
		t.Fatalf("decodeArgs: %v", err)
	}
	if decision.Route != "direct_response" || decision.Response != "hi" {
		t.Errorf("unexpected decision: %+v", decision)
	}
}

func TestFirstToolCallErrorsWhenModelAnsweredInProseInstead(t *testing.T) {
	comp := &llm.Completion{Text: "some prose, no tool call"}
	_, err := FirstToolCall("pipeline.router", comp)
	if err == nil || !apperr.Is(err, apperr.KindContent) {
		t.Fatalf("expected a KindContent error, got %v", err)
	}
}

func TestFirstToolCallReturnsFirstOfMultiple(t *testing.T) {
	comp := &llm.Completion{ToolCalls: []llm.ToolCall{
		{ID: "call_0", Name: "first"},
		{ID: "call_1", Name: "second"},
	}}
	tc, err := FirstToolCall("pipeline.router", comp)
	if err != nil {
		t.Fatalf("firstToolCall: %v", err)
	}
	if tc.Name != "first" {
		t.Errorf("expected first tool call, got %q", tc.Name)
	}
}
