package review

import (
	"errors"
	"fmt"

	"github.com/dshills/codelens/internal/providers"
)

// Kind classifies a relay failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindUpstream
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindUpstream:
		return "upstream_error"
	case KindInternal:
		return "internal_error"
	default:
		return "unknown"
	}
}

// Error is the tagged error returned by the relay.
type Error struct {
	Kind Kind
	Msg  string
	// StatusCode and Body are set for upstream non-200 answers.
	StatusCode int
	Body       string
	// Stack is set for recovered panics.
	Stack string
	Err   error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or KindUnknown when err is not a relay error.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindUnknown
}

// InvalidInput reports a request the relay refuses to forward.
func InvalidInput(msg string) *Error {
	return &Error{Kind: KindInvalidInput, Msg: msg}
}

// Upstream wraps a failure of the generation service. Non-200 answers keep
// their status and body.
func Upstream(err error) *Error {
	e := &Error{Kind: KindUpstream, Msg: "generation request failed", Err: err}
	var se *providers.StatusError
	if errors.As(err, &se) {
		e.StatusCode = se.StatusCode
		e.Body = se.Body
	}
	return e
}

// Internal reports an unexpected failure, typically a recovered panic.
func Internal(err error, stack []byte) *Error {
	return &Error{Kind: KindInternal, Msg: "unexpected failure", Err: err, Stack: string(stack)}
}
