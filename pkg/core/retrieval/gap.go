package retrieval

import (
	"fmt"
	"strings"
)

// gapThreshold is the largest ChunkIndex difference between two
// consecutive results that still counts as contiguous (a difference of 1 means the
// chunks are adjacent; anything more means document text was skipped).
const gapThreshold = 1

// MarkGaps renders chunks in the order given, inserting a
// "[Gap: N chunks omitted]" sentinel between any two consecutive entries
// whose ChunkIndex values aren't adjacent. CategorySimilarity and
// VectorTopK always need it, since their results come from a similarity
// ranking rather than a contiguous scan (spec.md §4.7's gap-marking
// invariant); ChunkNeighborhood needs it only at a section boundary,
// where a requested neighbor offset has no corresponding row.
// FullSection/SpeakerBlock/QAGroup never produce a gap, since every row
// they return is contiguous by construction.
func MarkGaps(chunks []Chunk) string {
	var b strings.Builder
	for i, c := range chunks {
		if i > 0 {
			prev := chunks[i-1]
			if c.Section == prev.Section && c.ChunkIndex-prev.ChunkIndex > gapThreshold {
				fmt.Fprintf(&b, "\n\n%s\n\n", gapMarker(c.ChunkIndex-prev.ChunkIndex-1))
			} else {
				b.WriteString("\n\n")
			}
		}
		b.WriteString(c.Text)
	}
	return b.String()
}

func gapMarker(omitted int) string {
	return fmt.Sprintf("[Gap: %d chunks omitted]", omitted)
}
