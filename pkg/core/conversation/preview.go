package conversation

// previewRunes is the maximum number of runes kept before truncation,
// per spec.md §4.8's 50-character preview.
const previewRunes = 50

// Preview renders a telemetry-friendly preview of msg.Content: at most
// previewRunes runes, with "…" appended only when truncation actually
// occurred. Rune-aware rather than byte-aware, since slicing a
// multi-byte UTF-8 string at a byte boundary can split a character in
// half and produce invalid output for any non-ASCII content.
func Preview(msg Message) string {
	r := []rune(msg.Content)
	if len(r) <= previewRunes {
		return msg.Content
	}
	return string(r[:previewRunes]) + "…"
}
