package interaction

import (
	"fmt"

	"go.uber.org/zap"

	"apptcal/internal/logging"
)

// Machine holds the current State for a single event loop
type Machine struct {
	st State
}

// NewMachine starts a machine at st
func NewMachine(st State) *Machine {
	return &Machine{st: st}
}

// State returns the current state
func (m *Machine) State() State {
	return m.st
}

// Dispatch applies ev and returns the writes it requested
func (m *Machine) Dispatch(ev Event) []Effect {
	prev := m.st.Mode
	next, effects := Step(m.st, ev)
	m.st = next

	if prev != next.Mode || len(effects) > 0 {
		logging.Log.Debug("interaction",
			zap.String("event", fmt.Sprintf("%T", ev)),
			zap.Stringer("from", prev),
			zap.Stringer("to", next.Mode),
			zap.Int("effects", len(effects)))
	}
	return effects
}
