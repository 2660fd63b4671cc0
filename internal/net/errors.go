package net

import "errors"

// Errors returned by Network. Callers test for them with errors.Is.
var (
	// ErrConfiguration is returned by New and UpdateWithRate for unusable settings.
	ErrConfiguration = errors.New("net: invalid configuration")

	// ErrShape is returned when an input or target cannot be read as a column
	// of the configured size, or does not fit the loss function.
	ErrShape = errors.New("net: shape mismatch")

	// ErrInvalidState is returned by Loss without a preceding Forward and by
	// Update without any accumulated pass.
	ErrInvalidState = errors.New("net: invalid state")
)
