// Package prompt provides Aegis's versioned prompt registry.
//
// Grounded on the teacher's pkg/core/prompt package (PromptTemplate,
// PromptVariable, ResponseSchema, PromptExecutionContext, text/template
// rendering), generalized per spec §4.4/§4.5 from a filesystem-JSON
// singleton keyed by one opaque ID string into a Postgres-backed,
// non-singleton Registry keyed by (layer, name, version).
package prompt

import "time"

// Layer distinguishes the global system-context layer (fiscal clock,
// house style, safety boilerplate) from the per-component layers
// (router, clarifier, planner, subagent, summarizer, ETL) composed on
// top of it.
type Layer string

const (
	LayerGlobal Layer = "global"
	LayerLocal  Layer = "local"
)

// Record is one versioned prompt as stored in the relational store's
// prompts table. Lookups resolve (Model, Layer, Name) to the highest
// Version unless a caller pins one explicitly. Version is an opaque
// string compared lexicographically, never parsed as a number.
type Record struct {
	ID             int64
	Model          string // model family this row targets; "" is the default family Aegis resolves against
	Layer          Layer
	Name           string
	Version        string
	Category       string
	Description    string
	Comments       string
	SystemPrompt   string
	UserPromptTmpl string
	ToolSchemaJSON string   // empty if this prompt doesn't expose tool calls
	UsesGlobal     []string // ids of LayerGlobal prompts to prepend, in order, before SystemPrompt
	Variables      []Variable
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Variable documents one substitution point in UserPromptTmpl, carried
// forward from the teacher's PromptVariable for authoring-time validation
// tooling; text/template itself renders whatever Context supplies
// regardless of what's declared here.
type Variable struct {
	Name        string
	Description string
	Required    bool
}

// Context holds runtime values for template substitution, mirroring the
// teacher's PromptExecutionContext.
type Context struct {
	Variables map[string]any
}

// NewContext returns an empty rendering Context.
func NewContext() *Context {
	return &Context{Variables: make(map[string]any)}
}

// Set adds a variable and returns the Context for chaining, matching the
// teacher's fluent Context.Set.
func (c *Context) Set(key string, value any) *Context {
	c.Variables[key] = value
	return c
}
