package pipeline

import (
	"context"

	"aegis/pkg/core/apperr"
	"aegis/pkg/core/conversation"
	"aegis/pkg/core/llm"
	"aegis/pkg/core/prompt"
)

// StageRequest builds a CompletionRequest for a router/clarifier/planner
// style tool call: a composed global+local system prompt, the local
// prompt's tool schema, and conv's messages verbatim. Exported so C10's
// subagents (pkg/core/subagent) can build the same shape of tool-calling
// request for their own method-selection stages.
func StageRequest(registry *prompt.Registry, conv *conversation.Conversation, localName string) (llm.CompletionRequest, error) {
	composed, err := registry.ComposeSystemPrompt(localName)
	if err != nil {
		return llm.CompletionRequest{}, err
	}

	rec, err := registry.GetLocal(localName)
	if err != nil {
		return llm.CompletionRequest{}, err
	}
	schema, err := prompt.ToolSchema(rec)
	if err != nil {
		return llm.CompletionRequest{}, err
	}

	messages := make([]llm.Message, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}

	return llm.CompletionRequest{
		SystemPrompt: composed.SystemPrompt,
		Messages:     messages,
		Tools: []llm.ToolDefinition{{
			Name:       localName,
			Parameters: schema,
		}},
	}, nil
}

// RunStage executes a CompleteWithTools call and decodes its first tool
// call's arguments into out. Connector and pipeline failures alike are
// surfaced as apperr values tagged with stage, per spec.md §4.9's "failure
// modes fall back to a user-surfaced explanatory message; they never
// raise" contract — callers turn the returned error into an EventError
// rather than propagating a panic or a raw connector error.
func RunStage(ctx context.Context, conn llm.Connector, stage string, req llm.CompletionRequest, out any) error {
	comp, err := conn.CompleteWithTools(ctx, req)
	if err != nil {
		return apperr.Upstream(stage, "model call failed", err)
	}
	tc, err := FirstToolCall(stage, comp)
	if err != nil {
		return err
	}
	return DecodeArgs(stage, tc.Arguments, out)
}
