package etl

import (
	"context"
	"strconv"
	"strings"
)

// PlainTextRenderer is the local stand-in for DOCXRenderer, the same way
// LocalObjectStore stands in for a production object store (spec.md §1
// Non-goal: the real DOCX renderer is out of scope). It flattens a
// DocumentPlan into a readable plain-text document so the ETL framework
// is exercisable end to end without one.
type PlainTextRenderer struct{}

func (PlainTextRenderer) Render(ctx context.Context, plan DocumentPlan) ([]byte, string, error) {
	var b strings.Builder

	b.WriteString(plan.ReportTitle)
	b.WriteString("\n")
	b.WriteString(plan.BankSymbol)
	b.WriteString(" — FY")
	b.WriteString(strconv.Itoa(plan.FiscalYear))
	b.WriteString(" Q")
	b.WriteString(strconv.Itoa(plan.Quarter))
	b.WriteString("\n\n")

	if plan.Overview != "" {
		b.WriteString("Overview\n")
		b.WriteString(plan.Overview)
		b.WriteString("\n\n")
	}

	for _, section := range plan.Sections {
		b.WriteString(section.Title)
		b.WriteString("\n")
		for _, s := range section.Statements {
			b.WriteString("- ")
			b.WriteString(s.Statement)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	return []byte(b.String()), "txt", nil
}
