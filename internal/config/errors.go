package config

import (
	"errors"
	"fmt"
)

// Errors returned by configuration operations.
var (
	// ErrUnknownFormat indicates a file extension with no known format.
	ErrUnknownFormat = errors.New("unknown config format")

	// ErrValidationFailed indicates a setting outside its allowed range.
	ErrValidationFailed = errors.New("validation failed")
)

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	// Path is the file that failed to parse, or "<reader>".
	Path string
	// Line is the line number where the error occurred, if known.
	Line int
	// Message describes the parse error.
	Message string
	// Err is the underlying error.
	Err error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError reports one invalid setting.
type ValidationError struct {
	// Key is the dotted setting name, e.g. "editor.tab_width".
	Key     string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s = %v: %s", e.Key, e.Value, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
