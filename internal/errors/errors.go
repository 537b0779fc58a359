// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages. The database gateway, the tool layer and the agents all
// report failures through E so callers can decide per kind whether a failure is fatal,
// recoverable by the model, or a configuration problem.
//
// The package supports wrapping underlying errors while maintaining error kind information,
// making it easier to handle different types of failures appropriately.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// ConnectionFailed indicates a network, authentication or scope selection failure.
	ConnectionFailed Kind = "connection_failed"
	// QueryFailed indicates the datastore rejected or failed to execute a statement.
	QueryFailed Kind = "query_failed"
	// SerializationFailed indicates a result could not be converted to a JSON value tree.
	SerializationFailed Kind = "serialization_failed"
	// InvalidInput indicates a caller supplied unusable input (e.g. a blank table name).
	InvalidInput Kind = "invalid_input"
	// DecompositionFailed indicates the map stage produced output outside the catalog schema.
	DecompositionFailed Kind = "decomposition_failed"
	// CompletionFailed indicates the language-model completion service returned an error.
	CompletionFailed Kind = "completion_failed"
	// ConfigInvalid indicates missing or malformed configuration.
	ConfigInvalid Kind = "config_invalid"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying error to errors.Is and errors.As.
func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of the first E in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MessageOf returns the human-friendly message of the first E in err's chain,
// or err.Error() when there is none.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var e *E
	if stderrors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
