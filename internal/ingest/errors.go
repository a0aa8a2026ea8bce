package ingest

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures inside the ingestion pipeline.
type ErrorKind string

const (
	KindProvider   ErrorKind = "provider"
	KindParse      ErrorKind = "parse"
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindDisabled   ErrorKind = "disabled"
)

var (
	// ErrNotFound is returned by lookups when the id is absent from a settled collection.
	ErrNotFound = &Error{Kind: KindNotFound, Message: "not found"}
	// ErrLoading is returned by lookups while the first batch, or a batch that may
	// still contain the id, is in flight.
	ErrLoading = errors.New("opportunities are still loading")

	// ErrDisabled is the fallback reason when AI search is switched off.
	ErrDisabled = &Error{Kind: KindDisabled, Message: "AI search is currently disabled. Displaying sample data."}
)

type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func providerError(err error) *Error {
	return &Error{Kind: KindProvider, Message: "text generation failed", Err: err}
}

func parseErrorf(format string, args ...any) *Error {
	return &Error{Kind: KindParse, Message: fmt.Sprintf(format, args...)}
}

func validationErrorf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of an ingestion error, or "" for foreign errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
