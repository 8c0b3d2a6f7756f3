// Package bankearnings wires C11's shared Runner to the bank earnings
// report ETL, the one C12 ETL with a genuine second pass: an "Items of
// Note" section combining RTS (regulatory filing) items with
// transcript-derived items, and a "Key Metrics Overview" section
// combining an RTS overview narrative with a transcript overview
// narrative through an LLM call.
//
// Grounded on original_source/src/aegis/etls/bank_earnings_report/
// extraction/items_deduplication.py (etl.SelectItemsOfNote) and
// extraction/overview_combination.py (etl.CombineOverview).
package bankearnings

import (
	"context"
	"strconv"
	"strings"

	"aegis/pkg/core/etl"
	"aegis/pkg/core/obslog"
)

// RTSProvider supplies the regulatory-filing side of the Items of Note and
// Key Metrics Overview sections, grounded on C10's subagent/rts.go
// retrieval strategy. A nil RTSProvider degrades both sections to
// transcript-only, matching etl.SelectItemsOfNote/CombineOverview's own
// empty-source handling.
type RTSProvider interface {
	Items(ctx context.Context, period etl.BankPeriod) (items []etl.Item, overview string, err error)
}

const overviewCategory = "Key Metrics Overview"

// Definition builds the bank_earnings_report etl.Definition. runner is the
// same *etl.Runner the Definition will be run through; BuildPlan closes
// over it to reach the Connectors registry and Prompts registry for the
// overview-combination model call.
func Definition(categories []etl.CategoryTemplate, renderer etl.DOCXRenderer, runner *etl.Runner, rts RTSProvider) etl.Definition {
	return etl.Definition{
		Name:             "bank_earnings_report",
		PromptName:       "etl.bank_earnings_report",
		CategoryTemplate: categories,
		Tier:             etl.TierLarge,
		Renderer:         renderer,
		ReportType:       "bank_earnings_report",
		BuildPlan: func(period etl.BankPeriod, statements []etl.Statement) etl.DocumentPlan {
			return buildPlan(context.Background(), runner, rts, period, statements)
		},
	}
}

func buildPlan(ctx context.Context, runner *etl.Runner, rts RTSProvider, period etl.BankPeriod, statements []etl.Statement) etl.DocumentPlan {
	transcriptItems, transcriptOverview, rest := splitStatements(statements)

	var rtsItems []etl.Item
	var rtsOverview string
	if rts != nil {
		items, overview, err := rts.Items(ctx, period)
		if err != nil {
			obslog.Warn("etl.bank_earnings_report.rts_unavailable", "bank_symbol", period.BankSymbol, "error", err.Error())
		} else {
			rtsItems, rtsOverview = items, overview
		}
	}

	selection := etl.SelectItemsOfNote(rtsItems, transcriptItems)
	overview := combineOverview(ctx, runner, period, rtsOverview, transcriptOverview)

	sections := []etl.DocumentSection{itemsOfNoteSection(selection)}
	sections = append(sections, categorySections(rest)...)

	return etl.DocumentPlan{
		BankName:    period.BankName,
		BankSymbol:  period.BankSymbol,
		FiscalYear:  period.FiscalYear,
		Quarter:     period.Quarter,
		ReportTitle: period.BankName + " — Bank Earnings Report",
		Overview:    overview,
		Sections:    sections,
	}
}

// combineOverview resolves a connector through runner and calls
// etl.CombineOverview, falling back to the transcript overview (or an
// empty string) if runner has no usable connector configured — the same
// degrade-gracefully posture CombineOverview itself uses on a model error.
func combineOverview(ctx context.Context, runner *etl.Runner, period etl.BankPeriod, rtsOverview, transcriptOverview string) string {
	if runner == nil || runner.Connectors == nil || runner.TierConfig == nil {
		return transcriptOverview
	}
	conn, err := runner.Connectors.Get(runner.TierConfig.ModelFor(etl.TierLarge))
	if err != nil {
		obslog.Warn("etl.bank_earnings_report.no_connector", "error", err.Error())
		return transcriptOverview
	}
	combined, err := etl.CombineOverview(ctx, conn, runner.Prompts, rtsOverview, transcriptOverview, period.BankName, "Q"+strconv.Itoa(period.Quarter), period.FiscalYear)
	if err != nil {
		obslog.Warn("etl.bank_earnings_report.overview_combine_failed", "error", err.Error())
		return transcriptOverview
	}
	return combined.Narrative
}

// splitStatements pulls the overview-category statements out of the flat
// extraction result (joined into one narrative) and converts everything
// else into Items for SelectItemsOfNote, since the shared Runner's
// category extraction produces Statements uniformly regardless of which
// C12 ETL is consuming them.
func splitStatements(statements []etl.Statement) (items []etl.Item, overview string, rest []etl.Statement) {
	var overviewLines []string
	for _, s := range statements {
		if s.Category == overviewCategory {
			overviewLines = append(overviewLines, s.Statement)
			continue
		}
		rest = append(rest, s)
		score := 0
		if s.SignificanceScore != nil {
			score = *s.SignificanceScore
		}
		items = append(items, etl.Item{
			Description:       s.Statement,
			Segment:           s.Category,
			Source:            "Transcript",
			SignificanceScore: score,
		})
	}
	return items, strings.Join(overviewLines, "\n\n"), rest
}

func itemsOfNoteSection(selection etl.ItemSelection) etl.DocumentSection {
	stmts := make([]etl.Statement, 0, len(selection.Featured)+len(selection.Remaining))
	for _, it := range append(append([]etl.Item{}, selection.Featured...), selection.Remaining...) {
		stmts = append(stmts, etl.Statement{
			Category:  "Items of Note",
			Statement: etl.AutoBold(it.Description),
			Source:    it.Source,
		})
	}
	return etl.DocumentSection{Title: "Items of Note", Statements: stmts}
}

func categorySections(statements []etl.Statement) []etl.DocumentSection {
	byCategory := make(map[string][]etl.Statement)
	var order []string
	for _, s := range statements {
		if _, ok := byCategory[s.Category]; !ok {
			order = append(order, s.Category)
		}
		s.Statement = etl.AutoBold(s.Statement)
		byCategory[s.Category] = append(byCategory[s.Category], s)
	}

	sections := make([]etl.DocumentSection, 0, len(order))
	for _, title := range order {
		sections = append(sections, etl.DocumentSection{Title: title, Statements: byCategory[title]})
	}
	return sections
}
