package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	// Requests failing validation never reach the provider chain.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotConfigured indicates a provider has no usable configuration.
	// Expected condition, recorded in diagnostics rather than failing a run.
	ErrNotConfigured = errors.New("provider not configured")

	// ErrSessionInvalid indicates the live provider's session credential was
	// rejected by the probe endpoint.
	ErrSessionInvalid = errors.New("session invalid")

	// ErrAllProvidersFailed indicates every queried provider errored and the
	// run produced no targets.
	ErrAllProvidersFailed = errors.New("all configured scout providers failed")

	// ErrNoActiveProfile indicates no scoring weight profile is active.
	ErrNoActiveProfile = errors.New("no active weight profile")

	// ErrInsufficientSamples indicates auto-tuning was requested with fewer
	// outcome samples than the configured minimum.
	ErrInsufficientSamples = errors.New("insufficient feedback samples")
)
