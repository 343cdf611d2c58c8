// Package errors provides the structured error type (SiteError) used across
// the generator and server, classified by kind for CLI exit-code mapping.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a SiteError for exit-code mapping and error inspection.
type Kind string

const (
	// KindGeneral is the catchall for errors with no more specific kind.
	KindGeneral Kind = "general"

	// KindFileOrDirNotFound covers missing project directories and missing
	// template references.
	KindFileOrDirNotFound Kind = "file_or_dir_not_found"

	// KindMissingElement covers required frontmatter or config keys that are
	// absent.
	KindMissingElement Kind = "missing_element"

	// KindWrongTypeOrFormat covers values that are present but of the wrong
	// type, shape, range or filename pattern.
	KindWrongTypeOrFormat Kind = "wrong_type_or_format"

	// KindTemplate covers failures surfaced by the template engine during
	// either render phase.
	KindTemplate Kind = "template"

	// KindYAML covers malformed frontmatter blocks.
	KindYAML Kind = "yaml"

	// KindJSON covers malformed data or config files.
	KindJSON Kind = "json"

	// KindImage covers undecodable image sources.
	KindImage Kind = "image"
)

// SiteError is a structured error carrying a kind and a fully formatted,
// user-facing message. The core pipeline returns these instead of exiting;
// the CLI adapter decides how to surface them.
type SiteError struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *SiteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap supports errors.Is/errors.As chains.
func (e *SiteError) Unwrap() error {
	return e.Cause
}

// New creates a SiteError of the given kind.
func New(kind Kind, message string) *SiteError {
	return &SiteError{Kind: kind, Message: message}
}

// Newf creates a SiteError of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *SiteError {
	return &SiteError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a SiteError of the given kind that wraps an existing error.
func Wrap(err error, kind Kind, message string) *SiteError {
	return &SiteError{Kind: kind, Message: message, Cause: err}
}

// KindOf extracts the kind from an error, or KindGeneral for errors that are
// not SiteErrors.
func KindOf(err error) Kind {
	var se *SiteError
	if stderrors.As(err, &se) {
		return se.Kind
	}
	return KindGeneral
}

// IsKind reports whether err is a SiteError of the given kind.
func IsKind(err error, kind Kind) bool {
	var se *SiteError
	return stderrors.As(err, &se) && se.Kind == kind
}
