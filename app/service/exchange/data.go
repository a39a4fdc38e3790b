package exchange

import "errors"

// State of the exchange engine for the current conversation view.
type State int

const (
	StateIdle State = iota
	StateSending
)

// FailureNotice is the fixed bot message synthesized locally when an ask
// request fails. It carries no sources and is never rolled back or retried.
const FailureNotice = "Sorry, something went wrong. Please try again."

var (
	// ErrEmptyQuery rejects sends whose text is empty after trimming.
	ErrEmptyQuery = errors.New("query is empty")
	// ErrNotAuthenticated gates sends when no identity is present. The caller
	// keeps the typed text and routes the user to login.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrBusy rejects a second send while one is in flight. Rejected, not queued.
	ErrBusy = errors.New("an exchange is already in flight")
	// ErrStaleView rejects operations issued for a view that is no longer active.
	ErrStaleView = errors.New("conversation view is no longer active")
)
