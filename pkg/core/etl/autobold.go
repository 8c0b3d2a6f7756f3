package etl

import "regexp"

// metricPattern matches the numeric metrics a generated report emphasizes:
// percentages ("12%", "5.2%"), dollar amounts with a magnitude suffix
// ("$5.2 BN", "$450MM"), and basis-point deltas ("25bps", "25 bps").
var metricPattern = regexp.MustCompile(
	`\$[\d,]+(?:\.\d+)?\s?(?:BN|MM|B|M|K|bn|mm)?\b|\b\d+(?:\.\d+)?%|\b\d+(?:\.\d+)?\s?bps\b`,
)

// alreadyBoldPattern matches a metric already wrapped in the emphasis
// markup, so AutoBold can skip over it rather than nesting another layer.
var alreadyBoldPattern = regexp.MustCompile(`<strong><u>.*?</u></strong>`)

const (
	boldOpen  = "<strong><u>"
	boldClose = "</u></strong>"
)

// AutoBold wraps every numeric metric in text with <strong><u>...</u></strong>
// emphasis markup, matching the DOCX renderer's recognized inline style.
// Idempotent: metrics already inside that markup are left untouched, so
// re-running AutoBold over already-rendered statements (the second pass
// spec.md §4.11 step 5 allows) never nests a duplicate wrapper.
func AutoBold(text string) string {
	var out []byte
	last := 0
	for _, span := range alreadyBoldPattern.FindAllStringIndex(text, -1) {
		out = append(out, []byte(boldMetrics(text[last:span[0]]))...)
		out = append(out, text[span[0]:span[1]]...)
		last = span[1]
	}
	out = append(out, []byte(boldMetrics(text[last:]))...)
	return string(out)
}

func boldMetrics(text string) string {
	return metricPattern.ReplaceAllStringFunc(text, func(match string) string {
		return boldOpen + match + boldClose
	})
}
