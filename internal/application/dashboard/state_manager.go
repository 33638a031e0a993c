package dashboard

import (
	"sync"

	"github.com/penwyp/go-automission-monitor/internal/core/state"
)

// InteractionState holds terminal-only settings that never reach State.
type InteractionState struct {
	LayoutStyle int
	ShowHelp    bool
}

// StateManager owns the current State. Every change goes through Reduce
// under the write lock, so readers always see a whole value.
type StateManager struct {
	mu sync.RWMutex

	state            state.State
	interactionState InteractionState

	changed chan struct{}
}

// NewStateManager creates a new StateManager instance
func NewStateManager() *StateManager {
	return &StateManager{changed: make(chan struct{}, 1)}
}

// Snapshot returns the current state.
func (sm *StateManager) Snapshot() state.State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.state
}

// Dispatch applies ev and returns the resulting state.
func (sm *StateManager) Dispatch(ev state.Event) state.State {
	sm.mu.Lock()
	sm.state = state.Reduce(sm.state, ev)
	s := sm.state
	sm.mu.Unlock()

	sm.notify()
	return s
}

// Submit runs one password attempt through gate.
func (sm *StateManager) Submit(gate *state.Gate, password string) state.State {
	sm.mu.Lock()
	sm.state = gate.Submit(sm.state, password)
	s := sm.state
	sm.mu.Unlock()

	sm.notify()
	return s
}

// Changed fires after any dispatch. Bursts collapse into one signal.
func (sm *StateManager) Changed() <-chan struct{} {
	return sm.changed
}

func (sm *StateManager) notify() {
	select {
	case sm.changed <- struct{}{}:
	default:
	}
}

// GetInteractionState returns current interaction state
func (sm *StateManager) GetInteractionState() InteractionState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.interactionState
}

// UpdateInteractionState updates specific fields of interaction state
func (sm *StateManager) UpdateInteractionState(updateFunc func(*InteractionState)) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	updateFunc(&sm.interactionState)
}
