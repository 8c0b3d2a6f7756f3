package etl

import (
	"context"
	"encoding/json"

	"aegis/pkg/core/apperr"
	"aegis/pkg/core/llm"
	"aegis/pkg/core/prompt"
)

// OverviewCombination is the result of CombineOverview.
type OverviewCombination struct {
	Narrative string
	Notes     string
}

// combinedOverviewArgs is the tool call's argument shape for the
// combine-overview prompt.
type combinedOverviewArgs struct {
	CombinedOverview string `json:"combined_overview"`
	CombinationNotes string `json:"combination_notes"`
}

// CombineOverview synthesizes RTS and transcript overview paragraphs into
// one executive summary, ported from overview_combination.py's edge-case
// ladder: both empty skips straight to an empty narrative, either alone is
// returned verbatim, and only when both are present does this make an LLM
// call — falling back to the transcript overview if the model doesn't make
// the expected tool call or the call itself fails.
func CombineOverview(ctx context.Context, conn llm.Connector, prompts *prompt.Registry,
	rtsOverview, transcriptOverview, bankName, quarter string, fiscalYear int) (OverviewCombination, error) {

	switch {
	case rtsOverview == "" && transcriptOverview == "":
		return OverviewCombination{Narrative: "", Notes: "No overview content from either source"}, nil
	case rtsOverview == "":
		return OverviewCombination{Narrative: transcriptOverview, Notes: "Only transcript overview available"}, nil
	case transcriptOverview == "":
		return OverviewCombination{Narrative: rtsOverview, Notes: "Only RTS overview available"}, nil
	}

	rec, err := prompts.GetLocal(prompt.Names.ETLOverviewCombination)
	if err != nil {
		return OverviewCombination{Narrative: transcriptOverview, Notes: "Fallback: overview combination prompt unavailable"}, nil
	}
	composed, err := prompts.ComposeSystemPrompt(prompt.Names.ETLOverviewCombination)
	if err != nil {
		return OverviewCombination{Narrative: transcriptOverview, Notes: "Fallback: overview combination prompt unavailable"}, nil
	}

	user, err := prompt.RenderUser(rec, &prompt.Context{Variables: map[string]any{
		"bank_name":           bankName,
		"quarter":             quarter,
		"fiscal_year":         fiscalYear,
		"rts_overview":        rtsOverview,
		"transcript_overview": transcriptOverview,
	}})
	if err != nil {
		return OverviewCombination{Narrative: transcriptOverview, Notes: "Fallback: failed to render overview combination prompt"}, nil
	}

	schema, err := prompt.ToolSchema(rec)
	if err != nil {
		return OverviewCombination{Narrative: transcriptOverview, Notes: "Fallback: overview combination tool schema unavailable"}, nil
	}

	req := llm.CompletionRequest{
		SystemPrompt: composed.SystemPrompt,
		Messages:     []llm.Message{{Role: "user", Content: user}},
		Tools: []llm.ToolDefinition{{
			Name:       prompt.Names.ETLOverviewCombination,
			Parameters: schema,
		}},
	}

	comp, err := conn.CompleteWithTools(ctx, req)
	if err != nil {
		return OverviewCombination{Narrative: transcriptOverview, Notes: "Fallback: using transcript overview due to LLM error"}, nil
	}
	if len(comp.ToolCalls) == 0 {
		return OverviewCombination{Narrative: transcriptOverview, Notes: "Fallback: using transcript overview due to LLM error"}, nil
	}

	var args combinedOverviewArgs
	if err := decodeOverviewArgs(comp.ToolCalls[0].Arguments, &args); err != nil {
		return OverviewCombination{Narrative: transcriptOverview, Notes: "Fallback: using transcript overview due to LLM error"}, nil
	}

	return OverviewCombination{Narrative: args.CombinedOverview, Notes: args.CombinationNotes}, nil
}

// decodeOverviewArgs re-marshals a tool call's already-parsed Arguments map
// into combinedOverviewArgs, the same round-trip pipeline.DecodeArgs performs
// for router/clarifier/planner tool calls.
func decodeOverviewArgs(args map[string]any, out *combinedOverviewArgs) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return apperr.Invariant("etl.overview_combination", "failed to re-marshal tool call arguments", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperr.Content("etl.overview_combination", "tool call arguments did not match the expected shape", err)
	}
	return nil
}
