package regmodel

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the parsers and the assembler. Wrapped errors
// always unwrap to one of these.
var (
	ErrSourceUnavailable           = errors.New("source unavailable")
	ErrMalformedHeader             = errors.New("malformed header")
	ErrMalformedTable              = errors.New("malformed table")
	ErrUnknownAccessMode           = errors.New("unknown access mode")
	ErrDanglingContinuationRow     = errors.New("continuation row without preceding field")
	ErrModelInvalid                = errors.New("model invalid")
	ErrArrayPeripheralNotSupported = errors.New("array peripheral not supported")
)

// SourceError locates a failure inside one source file.
type SourceError struct {
	File string // may be empty for in-memory sources
	Rule string // grammar rule or table element that failed
	Line int    // 1-based, 0 when unknown
	Err  error
}

func (e *SourceError) Error() string {
	loc := e.File
	if loc == "" {
		loc = "<input>"
	}
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, e.Line)
	}
	if e.Rule != "" {
		return fmt.Sprintf("%s: %s: %v", loc, e.Rule, e.Err)
	}
	return fmt.Sprintf("%s: %v", loc, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Invalidf returns an error wrapping ErrModelInvalid.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrModelInvalid, fmt.Sprintf(format, args...))
}
