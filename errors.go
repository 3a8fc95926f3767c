package postfix

import (
	"errors"

	"github.com/goliatone/go-postfix/adapter"
	"github.com/goliatone/go-postfix/internal/hydrate"
)

var (
	// ErrNotLoaded reports a lookup against an engine with no sources.
	ErrNotLoaded = errors.New("postfix: no sources loaded")
	// ErrConfiguration reports an invalid engine configuration.
	ErrConfiguration = errors.New("postfix: invalid configuration")
)

// TypeMismatchError reports a resolved value that cannot be converted into
// the requested target type.
type TypeMismatchError = hydrate.TypeMismatchError

// ParseError reports malformed source content during a load.
type ParseError = adapter.ParseError

// UnsupportedOperationError reports a request the adapter cannot honour,
// such as a structured read from a plain-text source.
type UnsupportedOperationError = adapter.UnsupportedOperationError

// Conversion failure causes, usable with errors.Is.
var (
	ErrStructuredText = hydrate.ErrStructuredText
	ErrCharLength     = hydrate.ErrCharLength
	ErrOverflow       = hydrate.ErrOverflow
	ErrNotIntegral    = hydrate.ErrNotIntegral
)
