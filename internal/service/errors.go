package service

import "errors"

// Typed failures surfaced to the handler layer. Nothing here is retried;
// every failure maps to one user-facing response.
var (
	// ErrNotFound: the referenced listing, bid or profile does not exist.
	ErrNotFound = errors.New("not_found")
	// ErrForbidden: the actor may not perform the action (e.g. bidding on
	// their own listing, accepting someone else's listing).
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidAmount: the bid is below the current floor.
	ErrInvalidAmount = errors.New("invalid_amount")
	// ErrInvalidState: the action is illegal for the current listing or bid
	// status (e.g. second acceptance on a finalized listing).
	ErrInvalidState = errors.New("invalid_state")
	// ErrTransient: the store or network failed; the caller may retry.
	ErrTransient = errors.New("transient")
)
