package pipeline

import (
	"context"

	"aegis/pkg/core/conversation"
)

// Combination is one (institution, fiscal_year, quarter) target a
// subagent must address, carrying the per-combination intent the
// planner derived for it.
type Combination struct {
	BankID       int64
	BankName     string
	BankSymbol   string
	FiscalYear   int
	Quarter      int
	QueryIntent  string
}

// Subagent is implemented by each of C10's four subagent types
// (transcripts, benchmarking, reports, rts). The pipeline dispatches one
// Subagent.Run call per database name the planner selected, fanning the
// results back onto the outer event stream.
type Subagent interface {
	Run(ctx context.Context, executionID string, conv *conversation.Conversation, combos []Combination,
		basicIntent, fullIntent, databaseID string) (<-chan Event, error)
}
