// Package collect runs every configured collector in parallel and merges their
// output into one validated, capped, deduplicated item set.
package collect

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for collection operations.
var (
	// ErrPipelineTimeout indicates the outer deadline expired before every collector reported.
	ErrPipelineTimeout = errors.New("collection pipeline timed out")

	// ErrNoItems indicates nothing survived validation, caps and deduplication.
	ErrNoItems = errors.New("no items survived validation")

	// ErrInvalidConfig indicates the collection configuration is unusable.
	ErrInvalidConfig = errors.New("invalid collection config")
)

// SourceError is a per-source failure recorded as a warning.
type SourceError struct {
	Source  string `json:"source"`
	Message string `json:"error"`
	Err     error  `json:"-"`
}

func newSourceError(source string, err error) SourceError {
	return SourceError{Source: source, Message: err.Error(), Err: err}
}

func (e SourceError) String() string {
	return e.Source + ": " + e.Message
}

// CollectionError is the single fatal error a collection run returns.
// Component names the failing part ("collector:web" or "pipeline");
// Warnings carries the optional-source failures recorded before it.
type CollectionError struct {
	Component string
	Cause     error
	Warnings  []SourceError
}

func (e *CollectionError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Component, e.Cause)
	if len(e.Warnings) > 0 {
		parts := make([]string, len(e.Warnings))
		for i, w := range e.Warnings {
			parts[i] = w.String()
		}
		msg += " [warnings: " + strings.Join(parts, "; ") + "]"
	}
	return msg
}

func (e *CollectionError) Unwrap() error { return e.Cause }
