package cmreadthrough

import (
	"testing"

	"aegis/pkg/core/etl"
)

func ptr(s string) *string { return &s }

func TestBuildPlanGroupsIntoThreeFixedSections(t *testing.T) {
	statements := []etl.Statement{
		{CategoryGroup: ptr("market"), Statement: "Spreads widened 15bps."},
		{CategoryGroup: ptr("activity"), Statement: "Pipeline remains robust."},
		{Statement: "General outlook commentary."},
	}

	plan := buildPlan(etl.BankPeriod{BankName: "Goldman Sachs"}, statements)

	if len(plan.Sections) != 3 {
		t.Fatalf("expected all three sections populated, got %+v", plan.Sections)
	}
	if plan.Sections[0].Title != sectionOutlook {
		t.Fatalf("expected Outlook first, got %q", plan.Sections[0].Title)
	}
	if plan.Sections[1].Title != sectionMarketQA || plan.Sections[2].Title != sectionActivityQ {
		t.Fatalf("unexpected section order: %+v", plan.Sections)
	}
}

func TestBuildPlanSkipsEmptySections(t *testing.T) {
	statements := []etl.Statement{{Statement: "Outlook commentary only."}}

	plan := buildPlan(etl.BankPeriod{}, statements)

	if len(plan.Sections) != 1 || plan.Sections[0].Title != sectionOutlook {
		t.Fatalf("expected only the Outlook section, got %+v", plan.Sections)
	}
}
