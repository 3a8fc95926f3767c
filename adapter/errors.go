package adapter

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-postfix/value"
)

// Alias failures reported as the Cause of a YAML ParseError.
var (
	ErrAliasCycle     = errors.New("adapter: yaml alias refers to an enclosing node")
	ErrAliasExpansion = errors.New("adapter: yaml aliases expand beyond the document budget")
)

// ParseError reports malformed source content.
type ParseError struct {
	// Format is the adapter format that rejected the content.
	Format string

	// Postfix identifies the source being ingested.
	Postfix string

	// Name is the file or document name when known.
	Name string

	// Cause is the underlying parser error.
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("adapter: %s: parse %s (postfix %q): %v", e.Format, e.Name, e.Postfix, e.Cause)
	}
	return fmt.Sprintf("adapter: %s: parse postfix %q: %v", e.Format, e.Postfix, e.Cause)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// UnsupportedOperationError reports a request the adapter cannot honour,
// such as asking a plain-text source for a structured value.
type UnsupportedOperationError struct {
	Format    string
	Operation string
	Shape     value.Shape
}

// Error implements the error interface.
func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("adapter: %s does not support %s for %s targets", e.Format, e.Operation, e.Shape)
}
