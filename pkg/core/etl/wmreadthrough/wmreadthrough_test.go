package wmreadthrough

import (
	"testing"

	"aegis/pkg/core/etl"
)

func TestBuildPlanPreservesCategoryOrderAndBolds(t *testing.T) {
	statements := []etl.Statement{
		{Category: "Net Flows", Statement: "Net new assets of $5.2 BN this quarter."},
		{Category: "Net Flows", Statement: "Advisory headcount grew 3%."},
		{Category: "Fee Rate", Statement: "Fee rate compressed slightly."},
	}

	plan := buildPlan(etl.BankPeriod{BankName: "Morgan Stanley"}, statements)

	if len(plan.Sections) != 2 {
		t.Fatalf("expected two category sections, got %+v", plan.Sections)
	}
	if plan.Sections[0].Title != "Net Flows" || len(plan.Sections[0].Statements) != 2 {
		t.Fatalf("unexpected first section: %+v", plan.Sections[0])
	}
	if plan.Sections[0].Statements[0].Statement != "Net new assets of <strong><u>$5.2 BN</u></strong> this quarter." {
		t.Fatalf("expected metric auto-bolding, got %q", plan.Sections[0].Statements[0].Statement)
	}
}
