package mdtty

import (
	"errors"
	"fmt"

	"pkt.systems/mdtty/event"
)

// ErrStackConsistency reports an event that does not fit the open context,
// such as an end event without a matching start.
var ErrStackConsistency = errors.New("stack consistency violation")

// StackError describes a stack consistency violation. It matches
// ErrStackConsistency with errors.Is.
type StackError struct {
	// Event is the offending event.
	Event event.Event
	// AtEOF is set when the violation was found at the end of the input;
	// Event is unset then.
	AtEOF bool
	// Open is the innermost open container, TagNone when the stack was empty.
	Open   event.Tag
	Reason string
}

func (e *StackError) Error() string {
	what := e.Event.String()
	if e.AtEOF {
		what = "end of input"
	}
	if e.Open == event.TagNone {
		return fmt.Sprintf("%s: %s with no open container: %s", ErrStackConsistency, what, e.Reason)
	}
	return fmt.Sprintf("%s: %s inside %s: %s", ErrStackConsistency, what, e.Open, e.Reason)
}

func (e *StackError) Is(target error) bool { return target == ErrStackConsistency }

// RenderError wraps a fatal failure that stopped rendering: an I/O error on
// the output, a failing event source or a stack consistency violation.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string { return "render: " + e.Err.Error() }

func (e *RenderError) Unwrap() error { return e.Err }

// Warning records a recoverable failure. The affected element was rendered
// in its degraded text form.
type Warning struct {
	Target string
	Err    error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %v", w.Target, w.Err)
}
