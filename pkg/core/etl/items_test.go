package etl

import "testing"

func TestSelectItemsOfNoteFeaturesTopTwoFromEachSource(t *testing.T) {
	rts := []Item{
		{Description: "rts-low", SignificanceScore: 3},
		{Description: "rts-high", SignificanceScore: 9},
		{Description: "rts-mid", SignificanceScore: 6},
	}
	transcript := []Item{
		{Description: "tx-high", SignificanceScore: 8},
		{Description: "tx-low", SignificanceScore: 2},
	}

	sel := SelectItemsOfNote(rts, transcript)

	if len(sel.Featured) != 4 {
		t.Fatalf("want 4 featured items, got %d: %+v", len(sel.Featured), sel.Featured)
	}
	if sel.Featured[0].Description != "rts-high" || sel.Featured[0].Source != "RTS" {
		t.Fatalf("expected highest-scored item first, got %+v", sel.Featured[0])
	}
	if len(sel.Remaining) != 1 || sel.Remaining[0].Description != "rts-low" {
		t.Fatalf("expected rts-low as sole remaining item, got %+v", sel.Remaining)
	}
	if sel.SelectionNotes == "" {
		t.Fatal("expected non-empty selection notes")
	}
}

func TestSelectItemsOfNoteDefaultsMissingScore(t *testing.T) {
	rts := []Item{{Description: "unscored"}}

	sel := SelectItemsOfNote(rts, nil)

	if len(sel.Featured) != 1 || sel.Featured[0].SignificanceScore != defaultSignificanceScore {
		t.Fatalf("expected default score %d applied, got %+v", defaultSignificanceScore, sel.Featured)
	}
}

func TestSelectItemsOfNoteHandlesFewerThanFeaturedCount(t *testing.T) {
	sel := SelectItemsOfNote(nil, nil)

	if len(sel.Featured) != 0 || len(sel.Remaining) != 0 {
		t.Fatalf("expected empty selection, got %+v", sel)
	}
}

func TestGetAllItemsSortedFlattensBothSources(t *testing.T) {
	rts := []Item{{Description: "a", SignificanceScore: 1}}
	transcript := []Item{{Description: "b", SignificanceScore: 5}}

	all := GetAllItemsSorted(rts, transcript)

	if len(all) != 2 || all[0].Description != "b" {
		t.Fatalf("expected descending score order, got %+v", all)
	}
}
