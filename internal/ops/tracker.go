// Package ops tracks the lifecycle of asynchronous operations against
// the backend: idle → pending → fulfilled | rejected, one state per
// operation kind. Pending on one kind never blocks another, and a
// rejection only captures the error message; it never clears data
// fetched earlier.
package ops

import (
	"errors"
	"sync"
)

type Kind string

const (
	FetchCart     Kind = "cart/fetch"
	AddItem       Kind = "cart/add"
	UpdateItem    Kind = "cart/update"
	RemoveItem    Kind = "cart/remove"
	Checkout      Kind = "cart/checkout"
	Login         Kind = "auth/login"
	Register      Kind = "auth/register"
	VerifyOTP     Kind = "auth/verifyOtp"
	ResendOTP     Kind = "auth/resendOtp"
	FetchProducts Kind = "products/fetch"
	FetchOrders   Kind = "orders/fetch"
	CreateOrder   Kind = "orders/create"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusPending   Status = "pending"
	StatusFulfilled Status = "fulfilled"
	StatusRejected  Status = "rejected"
)

func (s Status) Terminal() bool {
	return s == StatusFulfilled || s == StatusRejected
}

// State is the snapshot for one operation kind. Err holds the
// user-facing message of the last rejection.
type State struct {
	Status Status
	Err    string
}

type Tracker struct {
	mu     sync.RWMutex
	states map[Kind]State
}

func NewTracker() *Tracker {
	return &Tracker{states: make(map[Kind]State)}
}

// Begin marks kind pending and clears any prior error.
func (t *Tracker) Begin(kind Kind) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states[kind] = State{Status: StatusPending}
}

// Done settles kind in completion order: fulfilled on nil, otherwise
// rejected with the server's own message when the error carries one.
func (t *Tracker) Done(kind Kind, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.states[kind] = State{Status: StatusRejected, Err: userMessage(err)}
		return
	}
	t.states[kind] = State{Status: StatusFulfilled}
}

// userMessage prefers the server-reported message over the wrapped
// transport error text.
func userMessage(err error) string {
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	return err.Error()
}

// State returns the current snapshot for kind; unknown kinds are idle.
func (t *Tracker) State(kind Kind) State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if s, ok := t.states[kind]; ok {
		return s
	}
	return State{Status: StatusIdle}
}

// Pending reports whether kind has an in-flight operation.
func (t *Tracker) Pending(kind Kind) bool {
	return t.State(kind).Status == StatusPending
}

// Track wraps fn in the pending → fulfilled | rejected lifecycle and
// passes its error through.
func (t *Tracker) Track(kind Kind, fn func() error) error {
	t.Begin(kind)
	err := fn()
	t.Done(kind, err)
	return err
}
