package etl

import "testing"

func TestGroupByThemeAssignsBlocksToGroups(t *testing.T) {
	index := map[string]*QABlock{
		"qa_1": {QAID: "qa_1", Position: 1, OriginalContent: "Revenue question"},
		"qa_2": {QAID: "qa_2", Position: 2, OriginalContent: "Profit question"},
		"qa_3": {QAID: "qa_3", Position: 3, OriginalContent: "Operations question"},
	}
	groups := []*ThemeGroup{
		{GroupID: "fin", GroupTitle: "Financial Metrics", QAIDs: []string{"qa_1", "qa_2"}, Rationale: "Finance related"},
		{GroupID: "ops", GroupTitle: "Operations", QAIDs: []string{"qa_3"}, Rationale: "Operations related"},
	}

	GroupByTheme(index, groups)

	if index["qa_1"].AssignedGroupID != "fin" || index["qa_2"].AssignedGroupID != "fin" {
		t.Fatalf("expected qa_1 and qa_2 assigned to group fin")
	}
	if index["qa_3"].AssignedGroupID != "ops" {
		t.Fatalf("expected qa_3 assigned to group ops")
	}
	if len(groups[0].QABlocks) != 2 || len(groups[1].QABlocks) != 1 {
		t.Fatalf("unexpected group block counts: %+v", groups)
	}
}

func TestGroupByThemeSkipsMissingQABlocks(t *testing.T) {
	index := map[string]*QABlock{"qa_1": {QAID: "qa_1"}}
	groups := []*ThemeGroup{{GroupID: "test", GroupTitle: "Test Group", QAIDs: []string{"qa_1", "qa_999"}}}

	GroupByTheme(index, groups)

	if index["qa_1"].AssignedGroupID != "test" {
		t.Fatalf("expected qa_1 assigned")
	}
	if len(groups[0].QABlocks) != 1 {
		t.Fatalf("expected only the existing block assigned, got %+v", groups[0].QABlocks)
	}
}

func TestGroupByThemeNoGroupsLeavesUnassigned(t *testing.T) {
	index := map[string]*QABlock{"qa_1": {QAID: "qa_1"}}

	GroupByTheme(index, nil)

	if index["qa_1"].AssignedGroupID != "" {
		t.Fatalf("expected no assignment with empty groups")
	}
}
