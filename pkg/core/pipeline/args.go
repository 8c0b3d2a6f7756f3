package pipeline

import (
	"encoding/json"

	"aegis/pkg/core/apperr"
	"aegis/pkg/core/llm"
)

// DecodeArgs round-trips a tool call's already-parsed Arguments map into a
// typed struct. Connector.CompleteWithTools has already turned the raw
// wire-format JSON string into a map[string]any (via utils.SmartParse for
// HTTPConnector, natively for GeminiConnector's genai SDK), so this is a
// plain re-marshal rather than another repair pass.
func DecodeArgs(stage string, args map[string]any, out any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return apperr.Invariant(stage, "failed to re-marshal tool call arguments", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperr.Content(stage, "tool call arguments did not match the expected shape", err)
	}
	return nil
}

// FirstToolCall returns comp's first tool call, or a content error naming
// stage if the model answered in prose instead of calling the tool.
func FirstToolCall(stage string, comp *llm.Completion) (llm.ToolCall, error) {
	if len(comp.ToolCalls) == 0 {
		return llm.ToolCall{}, apperr.Content(stage, "model did not make the expected tool call", nil)
	}
	return comp.ToolCalls[0], nil
}
