// Package apperr defines the Aegis error taxonomy.
//
// Every component classifies its failures into one of these kinds so that
// the owning pipeline/ETL layer can decide user-visible behavior (spec
// §7: connector retries, component classifies, pipeline decides).
package apperr

import "fmt"

// Kind identifies a class of failure in the taxonomy.
type Kind string

const (
	KindConfig     Kind = "config"     // fatal, startup
	KindAuth       Kind = "auth"       // fatal per request
	KindUpstream   Kind = "upstream"   // LLM/DB transport failure
	KindContent    Kind = "content"    // malformed/invalid LLM output
	KindUser       Kind = "user"       // bad batch input (bank/period not available)
	KindInvariant  Kind = "invariant"  // should-not-happen
)

// Error wraps an underlying cause with a taxonomy Kind and stage label.
type Error struct {
	Kind  Kind
	Stage string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s[%s]: %s: %v", e.Kind, e.Stage, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s[%s]: %s", e.Kind, e.Stage, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func new_(kind Kind, stage, msg string, cause error) *Error {
	return &Error{Kind: kind, Stage: stage, Msg: msg, Err: cause}
}

func Config(stage, msg string, cause error) *Error    { return new_(KindConfig, stage, msg, cause) }
func Auth(stage, msg string, cause error) *Error      { return new_(KindAuth, stage, msg, cause) }
func Upstream(stage, msg string, cause error) *Error  { return new_(KindUpstream, stage, msg, cause) }
func Content(stage, msg string, cause error) *Error   { return new_(KindContent, stage, msg, cause) }
func User(stage, msg string, cause error) *Error      { return new_(KindUser, stage, msg, cause) }
func Invariant(stage, msg string, cause error) *Error { return new_(KindInvariant, stage, msg, cause) }

// Is reports whether err (or something it wraps) is an *Error of the given Kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		if ae, ok := err.(*Error); ok {
			if ae.Kind == kind {
				return true
			}
			err = ae.Err
			continue
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Sentinel content-error variants named in the spec.
var (
	ErrPromptNotFound    = Content("prompt_registry", "prompt not found", nil)
	ErrEmptyConversation = Content("conversation", "no messages remain after normalization", nil)
)
