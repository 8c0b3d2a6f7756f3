// Package callsummary wires C11's shared Runner to the call summary ETL:
// a single category pass over an earnings call transcript, rendered in
// template order with no second pass.
//
// Grounded on original_source/src/aegis/etls/call_summary/config/config.py
// (three-tier model config, collapsed here onto the shared TierConfig)
// and main.py (no theme grouping, no items-of-note, no overview combination).
package callsummary

import "aegis/pkg/core/etl"

// Definition builds the call summary etl.Definition: categories is the
// already-loaded category template (as returned by etl.LoadCategoryTemplate
// from a YAML/CSV/XLSX file), and renderer is the DOCX renderer the cmd/etl
// entry point constructs.
func Definition(categories []etl.CategoryTemplate, renderer etl.DOCXRenderer) etl.Definition {
	return etl.Definition{
		Name:             "call_summary",
		PromptName:       "etl.call_summary",
		CategoryTemplate: categories,
		Tier:             etl.TierLarge,
		Renderer:         renderer,
		ReportType:       "call_summary",
	}
}
