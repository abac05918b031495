package project

import (
	"errors"
	"fmt"
)

// ErrSaveNotImplemented is returned by Project.Save. Writing a project back
// to disk is declared but not implemented; the JSON marshallers exist for
// tooling output only.
var ErrSaveNotImplemented = errors.New("saving a project back to disk is not implemented")

// ReadError reports that the identified project file could not be read.
// It carries the offending path and wraps the underlying IO error.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading project file %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// ParseError reports that file content was not well-formed for the project
// schema: malformed JSON, a wrong value type, or an unknown field. It
// carries the offending path and wraps the structural complaint.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing project file %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// UnknownFieldError reports a top-level key that is not part of the project
// schema. The schema is closed on purpose: a misspelled or not-yet-supported
// field fails fast instead of being silently ignored.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q", e.Field)
}

// MissingFieldError reports a required top-level key that is absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}
