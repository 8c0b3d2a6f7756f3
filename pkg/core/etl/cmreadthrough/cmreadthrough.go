// Package cmreadthrough wires C11's shared Runner to the capital markets
// readthrough ETL: a fixed three-section layout (Outlook, Market
// Volatility/Regulatory Q&A, Pipelines/Activity Q&A) rather than the
// Runner's category-template-order default.
//
// Grounded on original_source/src/aegis/etls/cm_readthrough/config/config.py,
// whose MODELS dict names exactly these three extraction passes.
package cmreadthrough

import "aegis/pkg/core/etl"

const (
	sectionOutlook   = "Outlook"
	sectionMarketQA  = "Market Volatility / Regulatory Q&A"
	sectionActivityQ = "Pipelines / Activity Q&A"
)

// sectionGroups maps each CategoryGroup value the cm_readthrough category
// template assigns to one of the three fixed report sections.
var sectionGroups = map[string]string{
	"outlook":  sectionOutlook,
	"market":   sectionMarketQA,
	"activity": sectionActivityQ,
}

// Definition builds the cm_readthrough etl.Definition.
func Definition(categories []etl.CategoryTemplate, renderer etl.DOCXRenderer) etl.Definition {
	return etl.Definition{
		Name:             "cm_readthrough",
		PromptName:       "etl.cm_readthrough",
		CategoryTemplate: categories,
		Tier:             etl.TierLarge,
		Renderer:         renderer,
		ReportType:       "cm_readthrough",
		BuildPlan:        buildPlan,
	}
}

func buildPlan(period etl.BankPeriod, statements []etl.Statement) etl.DocumentPlan {
	order := []string{sectionOutlook, sectionMarketQA, sectionActivityQ}
	grouped := make(map[string][]etl.Statement, len(order))

	for _, s := range statements {
		title := sectionOutlook
		if s.CategoryGroup != nil {
			if mapped, ok := sectionGroups[*s.CategoryGroup]; ok {
				title = mapped
			}
		}
		s.Statement = etl.AutoBold(s.Statement)
		grouped[title] = append(grouped[title], s)
	}

	var sections []etl.DocumentSection
	for _, title := range order {
		if len(grouped[title]) == 0 {
			continue
		}
		sections = append(sections, etl.DocumentSection{Title: title, Statements: grouped[title]})
	}

	return etl.DocumentPlan{
		BankName:    period.BankName,
		BankSymbol:  period.BankSymbol,
		FiscalYear:  period.FiscalYear,
		Quarter:     period.Quarter,
		ReportTitle: period.BankName + " — Capital Markets Readthrough",
		Sections:    sections,
	}
}
