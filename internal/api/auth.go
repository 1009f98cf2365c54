package api

import (
	"slices"
	"sync"
)

// Reasons reported when the service rejects a request.
const (
	ReasonKeyRequired = "API Key is required"
	ReasonKeyInvalid  = "Invalid API Key"
)

// AuthState records whether the user must enter a new API key.
// The client's failure path is the only writer; the UI reads it and
// subscribes to changes.
type AuthState struct {
	mu     sync.Mutex
	reason string
	subs   []chan struct{}
}

// NewAuthState creates an AuthState with no pending requirement.
func NewAuthState() *AuthState {
	return &AuthState{}
}

// Require marks authentication as required. A pending reason is kept until
// Resolve: once a rejected key is cleared, later requests go out without one
// and would otherwise report a missing key instead of the rejection.
func (a *AuthState) Require(reason string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.reason != "" {
		return
	}
	a.setLocked(reason)
}

// Resolve clears the requirement once a new credential has been stored.
func (a *AuthState) Resolve() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.setLocked("")
}

// Reason returns the pending reason, or "" when none.
func (a *AuthState) Reason() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reason
}

// Required reports whether a credential must be entered.
func (a *AuthState) Required() bool {
	return a.Reason() != ""
}

// Subscribe returns a channel that receives a value after every change and
// a function that stops the notifications. Notifications coalesce when the
// reader falls behind.
func (a *AuthState) Subscribe() (<-chan struct{}, func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ch := make(chan struct{}, 1)
	a.subs = append(a.subs, ch)
	return ch, func() { a.unsubscribe(ch) }
}

func (a *AuthState) unsubscribe(ch chan struct{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.subs = slices.DeleteFunc(a.subs, func(c chan struct{}) bool { return c == ch })
}

func (a *AuthState) setLocked(reason string) {
	if a.reason == reason {
		return
	}
	a.reason = reason
	for _, ch := range a.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
