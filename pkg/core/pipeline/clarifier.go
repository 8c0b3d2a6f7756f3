package pipeline

import (
	"context"
	"strings"

	"aegis/pkg/core/availability"
	"aegis/pkg/core/conversation"
	"aegis/pkg/core/llm"
	"aegis/pkg/core/prompt"
)

// clarifierCombination is one bank_period_combination as the clarifier's
// tool call emits it, before validation against DataAvailability.
type clarifierCombination struct {
	BankID      int64  `json:"bank_id"`
	BankName    string `json:"bank_name"`
	BankSymbol  string `json:"bank_symbol"`
	FiscalYear  int    `json:"fiscal_year"`
	Quarter     int    `json:"quarter"`
	QueryIntent string `json:"query_intent"`
}

// clarifierDecision is the clarifier's tool call shape (spec.md §4.9 stage
// 2): either a clarification request with follow-up questions, or a list
// of bank_period_combinations.
type clarifierDecision struct {
	NeedsClarification bool                    `json:"needs_clarification"`
	Questions          []string                `json:"questions"`
	Combinations       []clarifierCombination  `json:"combinations"`
}

// runClarifier asks the clarifier to resolve the query into bank_period
// combinations. availableDBs is the full set of database identifiers this
// deployment can query at all (not yet filtered per combination); the
// clarifier sees it so it only proposes combinations that could plausibly
// resolve against at least one of them.
func runClarifier(ctx context.Context, conn llm.Connector, registry *prompt.Registry,
	conv *conversation.Conversation, availableDBs []string) (*clarifierDecision, error) {

	req, err := StageRequest(registry, conv, prompt.Names.Clarifier)
	if err != nil {
		return nil, err
	}
	req.Messages = append(req.Messages, llm.Message{
		Role:    "system",
		Content: "Available databases: " + strings.Join(availableDBs, ", "),
	})

	var decision clarifierDecision
	if err := RunStage(ctx, conn, "pipeline.clarifier", req, &decision); err != nil {
		return nil, err
	}
	return &decision, nil
}

// validateCombinations drops any combination that fails spec.md §4.9's
// invariant: "every returned combination must exist in DataAvailability
// for at least one of the selected databases." The clarifier is expected
// to honor this itself; this is the defensive backstop since the model's
// tool call is untrusted input like any other.
func validateCombinations(ctx context.Context, store availability.Store, combos []clarifierCombination, selectedDBs []string) ([]clarifierCombination, error) {
	valid := make([]clarifierCombination, 0, len(combos))
	for _, c := range combos {
		dbs, err := store.DatabasesFor(ctx, c.BankID, c.FiscalYear, c.Quarter)
		if err != nil {
			return nil, err
		}
		if availability.Intersects(dbs, selectedDBs) {
			valid = append(valid, c)
		}
	}
	return valid, nil
}
