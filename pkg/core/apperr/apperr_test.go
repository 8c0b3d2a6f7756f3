package apperr

import (
	"errors"
	"testing"
)

func TestErrorMessageFormatting(t *testing.T) {
	err := Upstream("llm.complete", "gemini request failed", errors.New("dial tcp: timeout"))
	want := "upstream[llm.complete]: gemini request failed: dial tcp: timeout"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestErrorMessageWithoutCause(t *testing.T) {
	err := Content("prompt_registry", "prompt not found", nil)
	want := "content[prompt_registry]: prompt not found"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIsWalksWrapChain(t *testing.T) {
	inner := Upstream("store.query", "connection reset", nil)
	outer := Invariant("pipeline.stage", "unexpected wrap", inner)

	if !Is(outer, KindInvariant) {
		t.Error("expected outer kind to match")
	}
	if !Is(outer, KindUpstream) {
		t.Error("expected Is to walk into the wrapped inner error")
	}
	if Is(outer, KindAuth) {
		t.Error("did not expect KindAuth to match")
	}
}

func TestIsReturnsFalseForPlainError(t *testing.T) {
	if Is(errors.New("plain"), KindConfig) {
		t.Error("plain errors should never match a taxonomy kind")
	}
}

func TestSentinelsAreContentKind(t *testing.T) {
	if !Is(ErrPromptNotFound, KindContent) {
		t.Error("ErrPromptNotFound should be KindContent")
	}
	if !Is(ErrEmptyConversation, KindContent) {
		t.Error("ErrEmptyConversation should be KindContent")
	}
}
