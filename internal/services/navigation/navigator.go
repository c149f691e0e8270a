// File: internal/services/navigation/navigator.go
package navigation

import (
	"sync"

	"github.com/iyunix/go-onyom/internal/domain"
)

// inputs is the part of the session the decision depends on.
type inputs struct {
	initialized bool
	phase       domain.AuthPhase
	userID      string
	onboarded   bool
	path        string
}

func inputsOf(s domain.Session, path string) inputs {
	return inputs{
		initialized: s.Initialized,
		phase:       s.Phase,
		userID:      s.UserID,
		onboarded:   s.OnboardingComplete,
		path:        path,
	}
}

// Navigator re-runs Decide on every change and suppresses repeats: a second
// evaluation with unchanged inputs yields nothing.
type Navigator struct {
	mu   sync.Mutex
	last *inputs
}

func NewNavigator() *Navigator {
	return &Navigator{}
}

func (n *Navigator) Evaluate(session domain.Session, path string) (string, bool) {
	in := inputsOf(session, path)

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.last != nil && *n.last == in {
		return "", false
	}
	n.last = &in
	return Decide(session, path)
}

// Reset forgets the last evaluation.
func (n *Navigator) Reset() {
	n.mu.Lock()
	n.last = nil
	n.mu.Unlock()
}
