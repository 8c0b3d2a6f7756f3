// Package keythemes wires C11's shared Runner to the key themes ETL: the
// extracted Q&A statements are grouped by theme before rendering, rather
// than the Runner's default category-template-order grouping.
//
// Grounded on original_source/src/aegis/etls/key_themes/config/config.py
// and tests/aegis/etls/key_themes/test_key_themes_utils.py, whose
// QABlock/ThemeGroup/apply_grouping_to_index shapes etl.GroupByTheme ports.
// Lacking a second model call to propose theme groups, themes here fall
// back to each category's own CategoryGroup column, which the upstream
// category template already assigns a human-chosen theme name.
package keythemes

import "aegis/pkg/core/etl"

// Definition builds the key themes etl.Definition.
func Definition(categories []etl.CategoryTemplate, renderer etl.DOCXRenderer) etl.Definition {
	return etl.Definition{
		Name:             "key_themes",
		PromptName:       "etl.key_themes",
		CategoryTemplate: categories,
		Tier:             etl.TierLarge,
		Renderer:         renderer,
		ReportType:       "key_themes",
		BuildPlan:        buildPlan,
	}
}

func buildPlan(period etl.BankPeriod, statements []etl.Statement) etl.DocumentPlan {
	groups, order := groupByTheme(statements)

	sections := make([]etl.DocumentSection, 0, len(order))
	for _, title := range order {
		stmts := groups[title]
		for i := range stmts {
			stmts[i].Statement = etl.AutoBold(stmts[i].Statement)
		}
		sections = append(sections, etl.DocumentSection{Title: title, Statements: stmts})
	}

	return etl.DocumentPlan{
		BankName:    period.BankName,
		BankSymbol:  period.BankSymbol,
		FiscalYear:  period.FiscalYear,
		Quarter:     period.Quarter,
		ReportTitle: period.BankName + " — Key Themes",
		Sections:    sections,
	}
}

// groupByTheme builds one QABlock per QAID-bearing statement, assigns each
// to a ThemeGroup keyed by CategoryGroup via etl.GroupByTheme, then
// reassembles each group's Statements in QAID-matched order. Statements
// with no QAID (not every category emits one) or no CategoryGroup are
// appended to an "Other" group, since they carry no block or theme to
// assign through GroupByTheme.
func groupByTheme(statements []etl.Statement) (map[string][]etl.Statement, []string) {
	index := make(map[string]*etl.QABlock)
	byQAID := make(map[string]etl.Statement)
	groupByTitle := make(map[string]*etl.ThemeGroup)
	var order []string

	const otherTitle = "Other"
	out := make(map[string][]etl.Statement)

	for _, s := range statements {
		if s.QAID == nil || s.CategoryGroup == nil || *s.CategoryGroup == "" {
			out[otherTitle] = append(out[otherTitle], s)
			continue
		}
		title := *s.CategoryGroup
		index[*s.QAID] = &etl.QABlock{QAID: *s.QAID, OriginalContent: s.Statement}
		byQAID[*s.QAID] = s
		if _, ok := groupByTitle[title]; !ok {
			// title doubles as GroupID: category groups are already unique
			// by CategoryGroup name in this construction.
			groupByTitle[title] = &etl.ThemeGroup{GroupID: title, GroupTitle: title}
			order = append(order, title)
		}
		groupByTitle[title].QAIDs = append(groupByTitle[title].QAIDs, *s.QAID)
	}

	groups := make([]*etl.ThemeGroup, 0, len(order))
	for _, title := range order {
		groups = append(groups, groupByTitle[title])
	}
	etl.GroupByTheme(index, groups)

	for _, g := range groups {
		for _, block := range g.QABlocks {
			out[g.GroupTitle] = append(out[g.GroupTitle], byQAID[block.QAID])
		}
	}
	if len(out[otherTitle]) > 0 {
		order = append(order, otherTitle)
	}
	return out, order
}
