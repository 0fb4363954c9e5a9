package domain

import "errors"

var (
	// ErrSessionNotFound is returned when no live quiz session has the given ID.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionClosed is returned when a command reaches a session after it was torn down.
	ErrSessionClosed = errors.New("quiz session closed")
	// ErrInvalidPhase indicates a command that the current session phase does not accept.
	ErrInvalidPhase = errors.New("command not allowed in current phase")
	// ErrSkipNotAllowed is returned when an interstitial is skipped before it becomes skippable.
	ErrSkipNotAllowed = errors.New("advertisement cannot be skipped yet")
	// ErrInvalidAnswer indicates an empty answer submission.
	ErrInvalidAnswer = errors.New("invalid answer")
	// ErrReviewLocked is returned when result review is requested before the after-quiz ad finished.
	ErrReviewLocked = errors.New("result review is locked until the advertisement finishes")
	// ErrNoQuestions indicates a quiz fetch produced an empty question set.
	ErrNoQuestions = errors.New("quiz has no questions")
	// ErrSlotNotFound indicates there is no live quiz slot for a format.
	ErrSlotNotFound = errors.New("quiz slot not found")
	// ErrAdNotFound indicates there is no active ad for a slot.
	ErrAdNotFound = errors.New("no active ad for slot")
	// ErrInvalidAdSlot indicates an unknown ad slot identifier.
	ErrInvalidAdSlot = errors.New("invalid ad slot")
	// ErrAttemptNotFound indicates a quiz attempt could not be found.
	ErrAttemptNotFound = errors.New("quiz attempt not found")
	// ErrInvalidQuestion indicates a question record violates its schema.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrUnauthenticated indicates a missing or rejected identity token.
	ErrUnauthenticated = errors.New("unauthenticated")
)
