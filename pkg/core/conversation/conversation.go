// Package conversation implements C8: normalizing the caller-supplied
// chat history into a validated, role-filtered, length-capped
// Conversation before it reaches the agent pipeline (C9).
//
// Grounded on the teacher's pkg/api/assistant request decoding (which
// accepts a loose client payload and validates it before use), adapted
// to the dict-or-list duck-typed input spec.md §4.8 documents for the
// original Python handler.
package conversation

import (
	"encoding/json"

	"aegis/pkg/core/apperr"
)

// Message is one turn in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation is the normalized, validated result: every Role is in the
// configured allow-list and len(Messages) <= the configured history cap.
type Conversation struct {
	Messages []Message
}

// Latest returns the last message, the one the rest of the pipeline
// treats as "the query".
func (c *Conversation) Latest() Message {
	return c.Messages[len(c.Messages)-1]
}

// Config controls normalization behavior.
type Config struct {
	AllowedRoles []string // e.g. {"user", "assistant"} or {"user", "assistant", "system"}
	HistoryCap   int       // keep at most this many most-recent messages
}

// RawInput accepts either `{"messages": [...]}` or a bare `[...]` array,
// the Go equivalent of the original Python handler's duck-typed
// dict-or-list input (spec.md §4.8). A custom UnmarshalJSON tries the
// object shape first, falling back to the bare-array shape.
type RawInput struct {
	Messages []Message
}

func (r *RawInput) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Messages []Message `json:"messages"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Messages != nil {
		r.Messages = wrapped.Messages
		return nil
	}

	var bare []Message
	if err := json.Unmarshal(data, &bare); err != nil {
		return apperr.Content("conversation.unmarshal", "input is neither {messages:[...]} nor a bare message array", err)
	}
	r.Messages = bare
	return nil
}

func allowed(role string, roles []string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// Normalize validates, filters, and truncates input into a Conversation.
//
//  1. Every entry must carry a non-empty role and content; entries
//     missing either are dropped rather than erroring the whole call,
//     since a malformed system-injected message shouldn't sink an
//     otherwise-valid user turn.
//  2. Entries whose role isn't in cfg.AllowedRoles are filtered out.
//  3. The remainder is truncated to the most recent cfg.HistoryCap
//     entries.
//  4. If nothing survives, Normalize fails with apperr.ErrEmptyConversation.
func Normalize(input RawInput, cfg Config) (*Conversation, error) {
	var kept []Message
	for _, m := range input.Messages {
		if m.Role == "" || m.Content == "" {
			continue
		}
		if !allowed(m.Role, cfg.AllowedRoles) {
			continue
		}
		kept = append(kept, m)
	}

	if len(kept) == 0 {
		return nil, apperr.ErrEmptyConversation
	}

	if cfg.HistoryCap > 0 && len(kept) > cfg.HistoryCap {
		kept = kept[len(kept)-cfg.HistoryCap:]
	}

	return &Conversation{Messages: kept}, nil
}
