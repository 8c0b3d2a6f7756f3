// Package llm provides the uniform Connector interface Aegis uses to talk
// to language and embedding models, plus a Gemini implementation.
//
// Grounded on the teacher's pkg/core/llm.Provider interface
// (GenerateResponse/AdaptInstructions), generalized per spec §4.3/§4.4 into
// five operations: Complete, Stream, CompleteWithTools, Embed, EmbedBatch.
// The teacher's provider stubs (OpenAIProvider/KimiProvider/DoubaoProvider)
// are reworked below as a Registry matching them against Settings
// model names, the same provider-selection idiom the teacher's
// agent.Manager uses.
package llm

import (
	"context"

	"aegis/pkg/core/apperr"
)

// Message is one turn in a model-facing conversation.
type Message struct {
	Role    string // "user" | "assistant" | "system"
	Content string
}

// ToolDefinition describes a callable function the model may invoke,
// mirroring genai.FunctionDeclaration's Name/Description/Parameters shape.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON Schema object
}

// ToolCall is one function invocation the model requested.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// CompletionRequest carries everything a Complete/Stream/CompleteWithTools
// call needs: the rendered system instruction, conversation history, and
// per-call generation overrides.
type CompletionRequest struct {
	SystemPrompt string
	Messages     []Message
	Model        string
	Temperature  float64
	MaxTokens    int
	JSONMode     bool
	Tools        []ToolDefinition
}

// Completion is a finished (non-streaming) model response.
type Completion struct {
	Text      string
	ToolCalls []ToolCall
	Citations []string
}

// StreamChunk is one piece of a streamed completion. Text chunks carry
// incremental text; a non-empty ToolCalls slice marks the terminal chunk
// of a tool-calling turn.
type StreamChunk struct {
	Text      string
	ToolCalls []ToolCall
	Done      bool
	Err       error
}

// Connector is the uniform interface every model backend implements.
// Component code depends only on this interface, never on a concrete
// backend, so swapping Gemini for another provider touches one
// registration site.
type Connector interface {
	// Complete runs req to completion and returns the full response.
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)

	// Stream runs req and emits StreamChunk values on the returned channel
	// until the model finishes or ctx is canceled. The channel is always
	// closed by the producer.
	Stream(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error)

	// CompleteWithTools runs req (which must set Tools) and returns either
	// text or one or more ToolCalls the caller must execute and feed back
	// as a follow-up Message.
	CompleteWithTools(ctx context.Context, req CompletionRequest) (*Completion, error)

	// Embed returns a single embedding vector for text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one embedding vector per input text, preserving
	// order, chunking internally if the backend limits batch size.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Registry resolves a named model to the Connector that serves it,
// generalizing the teacher's agent.Manager provider map (keyed by provider
// name) to Aegis's per-ETL model configuration (spec §6, settings.ETLSettings).
type Registry struct {
	connectors map[string]Connector
	defaultKey string
}

// NewRegistry constructs an empty Registry. Use Register to add backends.
func NewRegistry() *Registry {
	return &Registry{connectors: make(map[string]Connector)}
}

// Register associates name (e.g. "gemini") with a Connector. The first
// registered connector becomes the default.
func (r *Registry) Register(name string, c Connector) {
	r.connectors[name] = c
	if r.defaultKey == "" {
		r.defaultKey = name
	}
}

// SetDefault overrides which registered connector Get("") resolves to.
func (r *Registry) SetDefault(name string) {
	r.defaultKey = name
}

// Get resolves name to a Connector; an empty name resolves to the default.
func (r *Registry) Get(name string) (Connector, error) {
	key := name
	if key == "" {
		key = r.defaultKey
	}
	c, ok := r.connectors[key]
	if !ok {
		return nil, apperr.Config("llm.registry", "no connector registered for: "+key, nil)
	}
	return c, nil
}
