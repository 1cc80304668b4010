// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package santa

import "errors"

// Precondition failures. These are outcomes, not faults: callers map them to
// user-facing messages and never retry them without a state change.
var (
	ErrGroupNotFound            = errors.New("group not found")
	ErrAlreadyAssigned          = errors.New("group already assigned")
	ErrInsufficientParticipants = errors.New("at least two participants are required")
	ErrNotAssigned              = errors.New("group is not assigned yet")
	ErrNotParticipant           = errors.New("user is not a participant of this group")
	ErrNoAssignment             = errors.New("no assignment found")
)

// Validation failures for supplemental group and participant data.
var (
	ErrInvalidPrice        = errors.New("max price must be positive")
	ErrInvalidDate         = errors.New("event date must be YYYY-MM-DD")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrWishTooLong         = errors.New("wish is too long")
	ErrEmptyMessage        = errors.New("message text is required")
	ErrMessageTooLong      = errors.New("message is too long")
)

// Engine contract violations. TryAssign never lets these reach the engine.
var (
	ErrTooFewParticipants   = errors.New("assignment needs at least two participants")
	ErrDuplicateParticipant = errors.New("duplicate participant identifier")
)

// Outcome is the unambiguous result code of a TryAssign call.
type Outcome string

const (
	OutcomeSuccess                  Outcome = "success"
	OutcomeNotFound                 Outcome = "not found"
	OutcomeAlreadyAssigned          Outcome = "already assigned"
	OutcomeInsufficientParticipants Outcome = "insufficient participants"
	OutcomeInternalError            Outcome = "internal error"
)

// OutcomeOf maps an error returned by TryAssign to its outcome.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrGroupNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrAlreadyAssigned):
		return OutcomeAlreadyAssigned
	case errors.Is(err, ErrInsufficientParticipants):
		return OutcomeInsufficientParticipants
	default:
		return OutcomeInternalError
	}
}
