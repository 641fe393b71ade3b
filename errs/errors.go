// Package errs holds the sentinel errors shared by the finder packages.
// Callers wrap them with fmt.Errorf("...: %w", err) and test with errors.Is.
package errs

import "errors"

var (
	// ErrNotFound is returned for an unknown vertex name or a hospital
	// missing from the index.
	ErrNotFound = errors.New("hospital-finder: not found")

	// ErrCapacityExceeded is returned once the vertex or comment cap is
	// reached. The rejected insert is dropped, not queued.
	ErrCapacityExceeded = errors.New("hospital-finder: capacity exceeded")

	// ErrIOFailure is returned when a ledger file cannot be read or written.
	// In-memory state already applied by the failing operation is kept.
	ErrIOFailure = errors.New("hospital-finder: ledger i/o failure")

	// ErrInvalidInput is returned for a malformed record line or request value.
	ErrInvalidInput = errors.New("hospital-finder: invalid input")

	// ErrNoMatches is returned when a nearby query ran but no vertex qualified.
	ErrNoMatches = errors.New("hospital-finder: no matching hospitals")
)
