package resource

import (
	"errors"
	"strconv"
)

// Kind classifies a resource failure.
type Kind uint8

const (
	// NotFound means the target does not exist.
	NotFound Kind = iota + 1
	// FetchFailed means reading or downloading the bytes failed.
	FetchFailed
	// DecodeFailed means the bytes are not a decodable image.
	DecodeFailed
	// Unsupported means the target or its format cannot be handled.
	Unsupported
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case FetchFailed:
		return "fetch failed"
	case DecodeFailed:
		return "decode failed"
	case Unsupported:
		return "unsupported"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Error is returned for every failed resolution.
type Error struct {
	Kind   Kind
	Target string
	Err    error
}

// Sentinels for errors.Is; only the Kind is compared.
var (
	ErrNotFound     = &Error{Kind: NotFound}
	ErrFetchFailed  = &Error{Kind: FetchFailed}
	ErrDecodeFailed = &Error{Kind: DecodeFailed}
	ErrUnsupported  = &Error{Kind: Unsupported}
)

func (e *Error) Error() string {
	msg := "resource"
	if e.Target != "" {
		msg += " " + strconv.Quote(e.Target)
	}
	msg += ": " + e.Kind.String()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error with the same Kind.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

func newError(kind Kind, target string, err error) *Error {
	return &Error{Kind: kind, Target: target, Err: err}
}

// wrap keeps the kind of an existing *Error and defaults to fallback.
func wrap(fallback Kind, target string, err error) *Error {
	var re *Error
	if errors.As(err, &re) {
		if re.Target == "" {
			return &Error{Kind: re.Kind, Target: target, Err: re.Err}
		}
		return re
	}
	return newError(fallback, target, err)
}
