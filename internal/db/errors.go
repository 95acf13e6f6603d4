// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mosaic Contributors

package db

import "errors"

// Sentinel errors for client operations.
// These errors can be checked using errors.Is() for classification.
var (
	// ErrClosed indicates an operation was attempted after Close.
	ErrClosed = errors.New("client is closed")

	// ErrUnsupportedStatement indicates a statement shape outside the
	// interpreter's dialect subset. The interpreter logs it and returns
	// an empty Result rather than surfacing this error; it exists for
	// callers that need to detect the condition in strict contexts.
	ErrUnsupportedStatement = errors.New("unsupported statement")

	// ErrUnsupportedPredicate indicates a WHERE clause outside the
	// equality/AND subset. Unlike unsupported statements this is a hard
	// error: matching every row on a predicate the interpreter cannot
	// read would turn a filter bug into data loss on UPDATE or DELETE.
	ErrUnsupportedPredicate = errors.New("unsupported predicate")

	// ErrInvalidInput indicates malformed statement input, such as a
	// placeholder count that does not match the bound arguments.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")
)
