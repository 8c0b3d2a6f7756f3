package etl

import (
	"context"
	"strings"
	"testing"
)

func TestPlainTextRendererIncludesOverviewAndSections(t *testing.T) {
	plan := DocumentPlan{
		BankName:    "Citigroup",
		BankSymbol:  "C",
		FiscalYear:  2026,
		Quarter:     2,
		ReportTitle: "Citigroup — Call Summary",
		Overview:    "Net income rose year over year.",
		Sections: []DocumentSection{
			{Title: "Revenue", Statements: []Statement{{Statement: "Revenue grew 6%."}}},
		},
	}

	content, ext, err := PlainTextRenderer{}.Render(context.Background(), plan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ext != "txt" {
		t.Fatalf("expected txt extension, got %q", ext)
	}
	out := string(content)
	if !strings.Contains(out, "FY2026 Q2") || !strings.Contains(out, "Net income rose") || !strings.Contains(out, "Revenue grew 6%.") {
		t.Fatalf("unexpected render output: %q", out)
	}
}
