package conversation

import (
	"strings"
	"testing"
)

func TestPreviewNoTruncationNoEllipsis(t *testing.T) {
	msg := Message{Content: "short message"}
	got := Preview(msg)
	if got != "short message" {
		t.Fatalf("expected content unchanged, got %q", got)
	}
	if strings.Contains(got, "…") {
		t.Fatal("expected no ellipsis when content is under the preview length")
	}
}

func TestPreviewTruncatesAtFiftyRunes(t *testing.T) {
	content := strings.Repeat("a", 80)
	msg := Message{Content: content}
	got := Preview(msg)
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected ellipsis suffix, got %q", got)
	}
	if len([]rune(got)) != previewRunes+1 {
		t.Fatalf("expected %d runes + ellipsis, got %d runes", previewRunes, len([]rune(got)))
	}
}

func TestPreviewMultiByteRunesNotSplit(t *testing.T) {
	content := strings.Repeat("日", 80)
	msg := Message{Content: content}
	got := Preview(msg)
	r := []rune(got)
	if r[len(r)-1] != '…' {
		t.Fatalf("expected the last rune to be the ellipsis, got %q", string(r[len(r)-1]))
	}
	for _, c := range r[:len(r)-1] {
		if c != '日' {
			t.Fatalf("expected every preceding rune to be a whole 日 character, got %q", string(c))
		}
	}
}

func TestPreviewExactlyAtLimitNoEllipsis(t *testing.T) {
	content := strings.Repeat("a", previewRunes)
	got := Preview(Message{Content: content})
	if strings.Contains(got, "…") {
		t.Fatal("expected no ellipsis when content is exactly at the preview length")
	}
}
