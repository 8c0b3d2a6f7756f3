package callsummary

import (
	"testing"

	"aegis/pkg/core/etl"
)

func TestDefinitionUsesCallSummaryPromptAndReportType(t *testing.T) {
	categories := []etl.CategoryTemplate{{Category: "Guidance", Description: "Forward guidance commentary"}}
	def := Definition(categories, nil)

	if def.PromptName != "etl.call_summary" {
		t.Fatalf("unexpected prompt name: %q", def.PromptName)
	}
	if def.ReportType != "call_summary" {
		t.Fatalf("unexpected report type: %q", def.ReportType)
	}
	if def.Tier != etl.TierLarge {
		t.Fatalf("expected the large tier, got %q", def.Tier)
	}
	if def.BuildPlan != nil {
		t.Fatal("expected call summary to use the Runner's default category-order plan")
	}
	if len(def.CategoryTemplate) != 1 {
		t.Fatalf("expected categories to pass through unchanged, got %+v", def.CategoryTemplate)
	}
}
