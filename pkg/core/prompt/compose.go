package prompt

import (
	"encoding/json"
	"strings"
	"time"

	"aegis/pkg/core/apperr"
	"aegis/pkg/core/fiscal"
	"aegis/pkg/core/obslog"
)

// Composed is a fully assembled system prompt ready to hand to a
// Connector: the global layer (fiscal context, house style, safety
// boilerplate) followed by the named local layer, plus that local
// record's tool schema if it has one.
type Composed struct {
	SystemPrompt   string
	ToolSchemaJSON string
}

// dynamicGlobals resolves a handful of LayerGlobal ids that are a pure
// function of "now" rather than static stored text, mirroring the
// original's fiscal.py global prompt. Checked before falling back to a
// stored LayerGlobal row, so a record can list "fiscal_context" in
// UsesGlobal without any corresponding prompts table row existing.
var dynamicGlobals = map[string]func() string{
	"fiscal_context": func() string { return fiscal.Context(time.Now()) },
}

// ComposeSystemPrompt resolves localName from LayerLocal, then resolves
// every id in its UsesGlobal list, in order, prepending each one's text
// before the local system prompt. Each global id is resolved dynamically
// (see dynamicGlobals) if it names a pure function of now, otherwise as a
// stored LayerGlobal record. This is Aegis's generalization of the
// teacher's per-prompt SystemPrompt field into a data-driven composition:
// which global layers precede a given local prompt is a property of the
// local record itself (uses_global), not a choice made by the caller.
func (r *Registry) ComposeSystemPrompt(localName string) (*Composed, error) {
	local, err := r.Get(LayerLocal, localName)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	for _, globalName := range local.UsesGlobal {
		text, err := r.resolveGlobal(globalName)
		if err != nil {
			return nil, err
		}
		if text == "" {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n\n")
	}
	b.WriteString(local.SystemPrompt)

	warnIfDoubleEncoded(local)

	return &Composed{
		SystemPrompt:   b.String(),
		ToolSchemaJSON: local.ToolSchemaJSON,
	}, nil
}

// resolveGlobal returns the text of LayerGlobal prompt name, preferring a
// dynamic function of now over a stored record.
func (r *Registry) resolveGlobal(name string) (string, error) {
	if fn, ok := dynamicGlobals[name]; ok {
		return fn(), nil
	}
	global, err := r.Get(LayerGlobal, name)
	if err != nil {
		return "", err
	}
	return global.SystemPrompt, nil
}

// warnIfDoubleEncoded flags the classic authoring mistake of storing a
// tool schema as a JSON string containing escaped JSON (i.e. marshaling
// the schema twice before it reached the database) instead of the raw
// JSON object. A genuinely well-formed schema unmarshals into a
// map[string]any; a double-encoded one unmarshals into a plain string.
func warnIfDoubleEncoded(rec *Record) {
	if rec.ToolSchemaJSON == "" {
		return
	}
	var asString string
	if err := json.Unmarshal([]byte(rec.ToolSchemaJSON), &asString); err == nil {
		obslog.Warn("prompt.tool_schema_double_encoded", "layer", rec.Layer, "name", rec.Name)
		return
	}
	var asObject map[string]any
	if err := json.Unmarshal([]byte(rec.ToolSchemaJSON), &asObject); err != nil {
		obslog.Warn("prompt.tool_schema_invalid_json", "layer", rec.Layer, "name", rec.Name, "error", err.Error())
	}
}

// ToolSchema unmarshals rec.ToolSchemaJSON into a JSON Schema map suitable
// for llm.ToolDefinition.Parameters. Returns apperr.KindContent if the
// schema is empty or malformed.
func ToolSchema(rec *Record) (map[string]any, error) {
	if rec.ToolSchemaJSON == "" {
		return nil, apperr.Content("prompt.tool_schema", "prompt has no tool schema: "+rec.Name, nil)
	}
	var schema map[string]any
	if err := json.Unmarshal([]byte(rec.ToolSchemaJSON), &schema); err != nil {
		return nil, apperr.Content("prompt.tool_schema", "tool schema is not a valid JSON object: "+rec.Name, err)
	}
	return schema, nil
}
