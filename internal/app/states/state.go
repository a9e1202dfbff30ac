// Package states implements the viewer states: nothing open and an
// experience on screen.
package states

import (
	"github.com/Faultbox/arscene/internal/engine/input"
)

// State is one screen of the viewer.
type State interface {
	// Enter is called when entering this state.
	Enter() error

	// Exit is called when leaving this state.
	Exit() error

	// Update is called every frame.
	Update(dt float32) error

	// DrawOverlay draws the state's 2D controls.
	DrawOverlay(ui Overlay)

	// HandleKey processes a bound key and reports whether it was used.
	HandleKey(k input.Key) bool
}

// Manager manages state transitions.
type Manager struct {
	current State
	next    State
}

// NewManager creates a new state manager.
func NewManager() *Manager {
	return &Manager{}
}

// Current returns the current state.
func (m *Manager) Current() State {
	return m.current
}

// Change schedules a state change for the next Update.
func (m *Manager) Change(next State) {
	m.next = next
}

// Update performs a pending transition and updates the current state.
func (m *Manager) Update(dt float32) error {
	if m.next != nil {
		if m.current != nil {
			if err := m.current.Exit(); err != nil {
				return err
			}
		}
		m.current = m.next
		m.next = nil
		if err := m.current.Enter(); err != nil {
			return err
		}
	}

	if m.current != nil {
		return m.current.Update(dt)
	}
	return nil
}

// DrawOverlay draws the current state's overlay.
func (m *Manager) DrawOverlay(ui Overlay) {
	if m.current != nil {
		m.current.DrawOverlay(ui)
	}
}

// HandleKey forwards k to the current state.
func (m *Manager) HandleKey(k input.Key) bool {
	if m.current == nil {
		return false
	}
	return m.current.HandleKey(k)
}

// Close exits the current state and drops a pending one.
func (m *Manager) Close() error {
	m.next = nil
	if m.current == nil {
		return nil
	}
	err := m.current.Exit()
	m.current = nil
	return err
}
