package state

import (
	"github.com/penwyp/go-automission-monitor/internal/core/auth"
)

// IncorrectPasswordMessage is shown once per rejected attempt.
const IncorrectPasswordMessage = "Incorrect password"

// Notifier surfaces a one-off message to the operator.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

// Gate checks password submissions. The attempt itself never reaches State.
type Gate struct {
	checker  auth.CredentialChecker
	notifier Notifier
}

func NewGate(checker auth.CredentialChecker, notifier Notifier) *Gate {
	if notifier == nil {
		notifier = NotifierFunc(func(string) {})
	}
	return &Gate{checker: checker, notifier: notifier}
}

// Submit unlocks s when password matches. On a mismatch the notifier fires
// exactly once and s comes back unchanged; retries are unlimited.
func (g *Gate) Submit(s State, password string) State {
	if g.checker.Check(password) {
		return Reduce(s, Authenticated{})
	}
	g.notifier.Notify(IncorrectPasswordMessage)
	return s
}
