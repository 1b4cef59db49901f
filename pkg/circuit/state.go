package circuit

import "github.com/mzangs/feedersolve/pkg/phasor"

// Slot is a named numeric state cell with the set/given flags that drive
// the fixed-point iteration (spec §3 "State slot S").
//
// isGiven marks a boundary condition: while it is true, Write is a no-op
// and the value does not change (Fix(false) releases it). isSet is a
// volatile "updated this sweep" flag, cleared by the opposite slot's own
// write (voltage write clears current's isSet and vice versa, §4.2).
type Slot struct {
	Name    string
	Value   phasor.C
	isSet   bool
	isGiven bool
}

// Write assigns value and marks the slot set, unless the slot is given —
// in which case it is a no-op (boundary conditions never move).
func (s *Slot) Write(value phasor.C) {
	if s.isGiven {
		return
	}
	s.Value = value
	s.isSet = true
}

// Fix marks the slot as a boundary condition (or releases it).
func (s *Slot) Fix(given bool) {
	s.isGiven = given
}

// IsSet reports whether the slot was written during the current sweep.
func (s *Slot) IsSet() bool { return s.isSet }

// IsGiven reports whether the slot is a fixed boundary condition.
func (s *Slot) IsGiven() bool { return s.isGiven }

// clearSet resets the volatile isSet flag without touching Value or
// isGiven — used by the cross-slot invalidation in setPortParameter.
func (s *Slot) clearSet() {
	s.isSet = false
}
