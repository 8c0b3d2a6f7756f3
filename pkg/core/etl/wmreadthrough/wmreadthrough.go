// Package wmreadthrough wires C11's shared Runner to the wealth management
// readthrough ETL: a template-driven section layout loaded from an XLSX
// section-definitions file rather than a fixed section list, using a
// single model tier for every section (original_source's "used as
// fallback" comment notwithstanding — Aegis's TierConfig already covers
// the per-ETL override path uniformly, so no per-section model map survives
// the port).
//
// Grounded on original_source/src/aegis/etls/wm_readthrough/config/config.py
// (SECTION_TEMPLATE_PATH points at an XLSX, matching etl.LoadCategoryTemplate's
// .xlsx branch).
package wmreadthrough

import "aegis/pkg/core/etl"

// Definition builds the wm_readthrough etl.Definition. categories is
// typically loaded from an XLSX section-definitions template via
// etl.LoadCategoryTemplate.
func Definition(categories []etl.CategoryTemplate, renderer etl.DOCXRenderer) etl.Definition {
	return etl.Definition{
		Name:             "wm_readthrough",
		PromptName:       "etl.wm_readthrough",
		CategoryTemplate: categories,
		Tier:             etl.TierLarge,
		Renderer:         renderer,
		ReportType:       "wm_readthrough",
		BuildPlan:        buildPlan,
	}
}

// buildPlan groups statements by category in order of first appearance
// (template order, since the Runner extracts one category at a time),
// keeping extraction order within each category rather than the Runner
// default's relevance sort, and applies AutoBold to every statement's
// rendered text.
func buildPlan(period etl.BankPeriod, statements []etl.Statement) etl.DocumentPlan {
	byCategory := make(map[string][]etl.Statement)
	var order []string
	for _, s := range statements {
		if _, ok := byCategory[s.Category]; !ok {
			order = append(order, s.Category)
		}
		s.Statement = etl.AutoBold(s.Statement)
		byCategory[s.Category] = append(byCategory[s.Category], s)
	}

	var sections []etl.DocumentSection
	for _, title := range order {
		sections = append(sections, etl.DocumentSection{Title: title, Statements: byCategory[title]})
	}

	return etl.DocumentPlan{
		BankName:    period.BankName,
		BankSymbol:  period.BankSymbol,
		FiscalYear:  period.FiscalYear,
		Quarter:     period.Quarter,
		ReportTitle: period.BankName + " — Wealth Management Readthrough",
		Sections:    sections,
	}
}
