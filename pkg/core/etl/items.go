package etl

import (
	"fmt"
	"sort"
)

// Item is one "Item of Note" candidate surfaced from either RTS regulatory
// filings or an earnings call transcript, ahead of score-based selection.
type Item struct {
	Description       string
	Impact            string
	Segment           string
	Timing            string
	Source            string // "RTS" | "Transcript"
	SignificanceScore int
}

// ItemSelection is the result of SelectItemsOfNote: a small "featured" set
// drawn evenly from both sources, plus everything else that didn't make
// the cut, both sorted by significance score.
type ItemSelection struct {
	Featured       []Item
	Remaining      []Item
	SelectionNotes string
}

// defaultSignificanceScore is substituted for items missing a score,
// matching the original extraction's "default to 5 if missing" rule.
const defaultSignificanceScore = 5

// featuredPerSource caps how many of each source's top items become
// "featured" rather than "remaining".
const featuredPerSource = 2

// SelectItemsOfNote combines items from RTS and transcript extraction using
// score-based selection: no LLM deduplication, just the top
// featuredPerSource items from each source by significance score.
//
// Ported from items_deduplication.py#combine_and_select_items: sort each
// source descending by score, take the top featuredPerSource from each as
// "featured" (re-sorted together), combine the remainders as "remaining"
// (also sorted), and note how the split was made.
func SelectItemsOfNote(rtsItems, transcriptItems []Item) ItemSelection {
	rtsSorted := sortedByScore(withDefaults(rtsItems, "RTS"))
	transcriptSorted := sortedByScore(withDefaults(transcriptItems, "Transcript"))

	rtsFeaturedCount := min(featuredPerSource, len(rtsSorted))
	transcriptFeaturedCount := min(featuredPerSource, len(transcriptSorted))

	featured := sortedByScore(append(
		append([]Item{}, rtsSorted[:rtsFeaturedCount]...),
		transcriptSorted[:transcriptFeaturedCount]...,
	))
	remaining := sortedByScore(append(
		append([]Item{}, rtsSorted[rtsFeaturedCount:]...),
		transcriptSorted[transcriptFeaturedCount:]...,
	))

	notes := fmt.Sprintf(
		"Selected top %d from RTS (%d total) and top %d from Transcript (%d total). Featured: %d, Remaining: %d.",
		rtsFeaturedCount, len(rtsItems), transcriptFeaturedCount, len(transcriptItems), len(featured), len(remaining),
	)

	return ItemSelection{Featured: featured, Remaining: remaining, SelectionNotes: notes}
}

// GetAllItemsSorted returns every item from both sources as a flat list
// sorted by significance score, for callers that don't need the
// featured/remaining split SelectItemsOfNote produces.
func GetAllItemsSorted(rtsItems, transcriptItems []Item) []Item {
	all := append(withDefaults(rtsItems, "RTS"), withDefaults(transcriptItems, "Transcript")...)
	return sortedByScore(all)
}

func withDefaults(items []Item, source string) []Item {
	out := make([]Item, len(items))
	for i, item := range items {
		item.Source = source
		if item.SignificanceScore == 0 {
			item.SignificanceScore = defaultSignificanceScore
		}
		out[i] = item
	}
	return out
}

func sortedByScore(items []Item) []Item {
	out := append([]Item{}, items...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SignificanceScore > out[j].SignificanceScore
	})
	return out
}
