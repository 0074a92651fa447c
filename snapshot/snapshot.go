// Package snapshot saves and restores the mutable state of an interlocking, so a session can be
// resumed on the same topology.
package snapshot

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"

	"nyiyui.ca/hato/shingo/tal/circuit"
	"nyiyui.ca/hato/shingo/tal/interlock"
	"nyiyui.ca/hato/shingo/tal/signal"
)

// ErrTopologyMismatch is returned when a snapshot was taken on a different topology.
var ErrTopologyMismatch = errors.New("topology mismatch")

type Snapshot struct {
	Sections []SectionState `json:"sections"`
	Signals  []SignalState  `json:"signals"`
}

type SectionState struct {
	ActivePins        [2][2]circuit.Pin         `json:"activePins"`
	JunctionLastRoute int                       `json:"junctionLastRoute"`
	JunctionSetManual int                       `json:"junctionSetManual"`
	State             circuit.State             `json:"state"`
	DeadlockTraps     map[uuid.UUID][]uuid.UUID `json:"deadlockTraps"`
	DeadlockActives   []uuid.UUID               `json:"deadlockActives"`
	DeadlockAwaited   []uuid.UUID               `json:"deadlockAwaited"`
}

type SignalState struct {
	Hold       signal.Hold       `json:"hold"`
	Permission signal.Permission `json:"permission"`
	Enabled    *circuit.Routed   `json:"enabled"`
}

// clone copies s, with empty slices and maps as nil.
func clone[E any](s []E) []E {
	if len(s) == 0 {
		return nil
	}
	return slices.Clone(s)
}

func cloneRouted(r *circuit.Routed) *circuit.Routed {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

func cloneState(st circuit.State) circuit.State {
	c := circuit.State{
		Reserved:       cloneRouted(st.Reserved),
		SignalReserved: st.SignalReserved,
		PreReserved:    clone(st.PreReserved),
		Claimed:        clone(st.Claimed),
		Forced:         st.Forced,
	}
	if len(st.Occupy) > 0 {
		c.Occupy = make(map[uuid.UUID]int, len(st.Occupy))
		for t, dir := range st.Occupy {
			c.Occupy[t] = dir
		}
	}
	return c
}

func cloneTraps(traps map[uuid.UUID][]uuid.UUID) map[uuid.UUID][]uuid.UUID {
	if len(traps) == 0 {
		return nil
	}
	c := make(map[uuid.UUID][]uuid.UUID, len(traps))
	for other, holders := range traps {
		c[other] = clone(holders)
	}
	return c
}

// Capture copies the mutable state of il.
func Capture(il *interlock.Interlocking) Snapshot {
	s := Snapshot{
		Sections: make([]SectionState, len(il.Sections.Sections)),
		Signals:  make([]SignalState, len(il.Signals)),
	}
	for i, sec := range il.Sections.Sections {
		s.Sections[i] = SectionState{
			ActivePins:        sec.ActivePins,
			JunctionLastRoute: sec.JunctionLastRoute,
			JunctionSetManual: sec.JunctionSetManual,
			State:             cloneState(sec.State),
			DeadlockTraps:     cloneTraps(sec.DeadlockTraps),
			DeadlockActives:   clone(sec.DeadlockActives),
			DeadlockAwaited:   clone(sec.DeadlockAwaited),
		}
	}
	for i, o := range il.Signals {
		s.Signals[i] = SignalState{
			Hold:       o.Hold,
			Permission: o.Permission,
			Enabled:    cloneRouted(o.Enabled),
		}
	}
	return s
}

func (s Snapshot) check(il *interlock.Interlocking) error {
	if got, want := len(s.Sections), len(il.Sections.Sections); got != want {
		return fmt.Errorf("snapshot has %d sections, topology has %d: %w", got, want, ErrTopologyMismatch)
	}
	if got, want := len(s.Signals), len(il.Signals); got != want {
		return fmt.Errorf("snapshot has %d signals, topology has %d: %w", got, want, ErrTopologyMismatch)
	}
	// active links are checked against a copy of the network, so il is untouched on failure
	scratch := circuit.Network{Sections: make([]*circuit.Section, len(s.Sections))}
	for i, sec := range s.Sections {
		static := il.Sections.Sections[i]
		for dir, pins := range sec.ActivePins {
			for _, p := range pins {
				if !p.Valid() {
					continue
				}
				if p.Direction != 0 && p.Direction != 1 {
					return fmt.Errorf("section %d: active link %s in direction %d: invalid direction: %w", i, p, dir, ErrTopologyMismatch)
				}
				if p != static.Pins[dir][0] && p != static.Pins[dir][1] {
					return fmt.Errorf("section %d: active link %s in direction %d is not a link of %s: %w", i, p, dir, static, ErrTopologyMismatch)
				}
			}
		}
		c := *static
		c.ActivePins = sec.ActivePins
		scratch.Sections[i] = &c
		if sig := sec.State.SignalReserved; sig != circuit.NoSignal && il.Signal(sig) == nil {
			return fmt.Errorf("section %d: reserved for unknown signal %d: %w", i, sig, ErrTopologyMismatch)
		}
	}
	if err := scratch.CheckAlignment(); err != nil {
		return fmt.Errorf("%s: %w", err, ErrTopologyMismatch)
	}
	for i, sig := range s.Signals {
		if sig.Hold < signal.HoldNone || sig.Hold > signal.HoldManualApproach {
			return fmt.Errorf("signal %d: invalid hold %d", i, int(sig.Hold))
		}
		if sig.Permission < signal.PermissionGranted || sig.Permission > signal.PermissionDenied {
			return fmt.Errorf("signal %d: invalid permission %d", i, int(sig.Permission))
		}
	}
	return nil
}

// Apply replaces the mutable state of il with s.
// Nothing is changed if s does not fit il.
func Apply(il *interlock.Interlocking, s Snapshot) error {
	if err := s.check(il); err != nil {
		return err
	}
	for i, ss := range s.Sections {
		sec := il.Sections.Sections[i]
		sec.ActivePins = ss.ActivePins
		sec.JunctionLastRoute = ss.JunctionLastRoute
		sec.JunctionSetManual = ss.JunctionSetManual
		sec.State = cloneState(ss.State)
		if sec.State.Occupy == nil {
			sec.State.Occupy = map[uuid.UUID]int{}
		}
		sec.DeadlockTraps = cloneTraps(ss.DeadlockTraps)
		if sec.DeadlockTraps == nil {
			sec.DeadlockTraps = map[uuid.UUID][]uuid.UUID{}
		}
		sec.DeadlockActives = clone(ss.DeadlockActives)
		sec.DeadlockAwaited = clone(ss.DeadlockAwaited)
		sec.SignalsPassingRoutes = nil
	}
	for i, ss := range s.Signals {
		o := il.Signals[i]
		o.SetHold(ss.Hold)
		o.Permission = ss.Permission
		o.Enabled = cloneRouted(ss.Enabled)
	}
	il.Restored()
	return nil
}
