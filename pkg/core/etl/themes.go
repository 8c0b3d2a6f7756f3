package etl

import "aegis/pkg/core/obslog"

// QABlock is one question-and-answer block extracted from a transcript,
// pending theme assignment. Ported from key_themes' QABlock.
type QABlock struct {
	QAID             string
	Position         int
	OriginalContent  string
	ThemeTitle       *string
	Summary          *string
	KeyMetrics       []string
	FormattedContent *string
	AssignedGroupID  string // id of the ThemeGroup this block was assigned to; "" if unassigned
}

// ThemeGroup is one model-proposed grouping of Q&A blocks sharing a topic.
// Ported from key_themes' ThemeGroup. GroupID is the group's stable
// identity; blocks reference a group by this id rather than holding a
// pointer back to it, so a QABlock can be serialized or compared without
// pulling its whole group along.
type ThemeGroup struct {
	GroupID    string
	GroupTitle string
	QAIDs      []string
	Rationale  string
	QABlocks   []*QABlock
}

// GroupByTheme applies groups to index in place: each QABlock named in a
// group's QAIDs records that group's GroupID in AssignedGroupID, and is
// appended to the group's own QABlocks slice. A QAID with no matching
// entry in index is skipped and logged, not treated as a failure — the
// model may reference a block ID that didn't survive earlier filtering.
//
// Ported from key_themes/main.py's apply_grouping_to_index.
func GroupByTheme(index map[string]*QABlock, groups []*ThemeGroup) {
	for _, group := range groups {
		for _, qaID := range group.QAIDs {
			block, ok := index[qaID]
			if !ok {
				obslog.Warn("etl.key_themes.missing_qa_block", "qa_id", qaID)
				continue
			}
			block.AssignedGroupID = group.GroupID
			group.QABlocks = append(group.QABlocks, block)
		}
	}
}
