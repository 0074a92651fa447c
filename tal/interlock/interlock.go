// Package interlock owns the section graph and the signals on it: it builds them from a topology
// and applies every change to them.
package interlock

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"

	"nyiyui.ca/hato/shingo/notify"
	"nyiyui.ca/hato/shingo/tal/circuit"
	"nyiyui.ca/hato/shingo/tal/layout"
	"nyiyui.ca/hato/shingo/tal/signal"
)

var (
	ErrUnknownSection = circuit.ErrUnknownSection
	ErrUnknownSignal  = errors.New("unknown signal")
	ErrNotAvailable   = errors.New("not available")
	ErrNoPath         = errors.New("no path")
)

// DeniedError is returned when a route could not be reserved because of Section.
type DeniedError struct {
	Section int
	Train   uuid.UUID
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("section %d not available to %s", e.Section, e.Train)
}

func (e *DeniedError) Unwrap() error { return ErrNotAvailable }

// Interlocking is the arena of sections and signals.
// It is not safe for concurrent use; share it through a Loop.
type Interlocking struct {
	Sections         circuit.Network
	Signals          []*signal.Object
	Types            *signal.Types
	NumClearAheadMax int
	// Events carries an Event for every change.
	Events   *notify.Multiplexer[Event]
	events   *notify.MultiplexerSender[Event]
	topology *layout.Topology
}

func (il *Interlocking) Section(i int) *circuit.Section { return il.Sections.Section(i) }

func (il *Interlocking) Signal(i int) *signal.Object {
	if i < 0 || i >= len(il.Signals) {
		return nil
	}
	return il.Signals[i]
}

func (il *Interlocking) MaxHops() int { return il.Sections.MaxHops() }

func (il *Interlocking) Topology() *layout.Topology { return il.topology }

func (il *Interlocking) section(i int) (*circuit.Section, error) {
	s := il.Sections.Section(i)
	if s == nil {
		return nil, fmt.Errorf("section %d: %w", i, ErrUnknownSection)
	}
	return s, nil
}

func (il *Interlocking) signal(i int) (*signal.Object, error) {
	o := il.Signal(i)
	if o == nil {
		return nil, fmt.Errorf("signal %d: %w", i, ErrUnknownSignal)
	}
	return o, nil
}

func checkDirection(dir int) error {
	if dir != 0 && dir != 1 {
		return fmt.Errorf("invalid direction %d", dir)
	}
	return nil
}

// Reserve reserves every section of route for train, or none of them.
func (il *Interlocking) Reserve(train uuid.UUID, route circuit.Route) error {
	for _, e := range route {
		s, err := il.section(e.Section)
		if err != nil {
			return err
		}
		if err := checkDirection(e.Direction); err != nil {
			return fmt.Errorf("section %d: %w", e.Section, err)
		}
		if !s.IsAvailable(train) {
			reservationsTotal.WithLabelValues("denied").Inc()
			return &DeniedError{Section: e.Section, Train: train}
		}
	}
	for _, e := range route {
		s := il.Sections.Sections[e.Section]
		s.ClearAwaited(train)
		il.resetRoutes(il.Sections.Reserve(e.Section, circuit.Routed{Train: train, Direction: e.Direction}, route))
		if end := s.EndSignals[e.Direction]; end != circuit.NoSignal && e != route[len(route)-1] {
			il.Signals[end].Enabled = &circuit.Routed{Train: train, Direction: e.Direction}
		}
		il.publishSection(EventReserved, e.Section, train)
	}
	reservationsTotal.WithLabelValues("granted").Inc()
	return nil
}

// RequestRoute finds the shortest path over static links from from to the section to, and reserves it
// for train. A *DeniedError names the first section that could not be reserved.
func (il *Interlocking) RequestRoute(train uuid.UUID, from layout.Step, to int) (circuit.Route, error) {
	steps := il.topology.PathTo(from, to)
	if steps == nil {
		return nil, fmt.Errorf("%d/%d to %d: %w", from.Section, from.Direction, to, ErrNoPath)
	}
	route := make(circuit.Route, len(steps))
	for i, st := range steps {
		route[i] = circuit.RouteElement{Section: st.Section, Direction: st.Direction}
	}
	if err := il.Reserve(train, route); err != nil {
		return route, err
	}
	return route, nil
}

// Occupy records train as occupying section, travelling in dir.
func (il *Interlocking) Occupy(train uuid.UUID, section, dir int) error {
	s, err := il.section(section)
	if err != nil {
		return err
	}
	if err := checkDirection(dir); err != nil {
		return err
	}
	s.SetOccupied(train, dir)
	s.ClearAwaited(train)
	il.publishSection(EventOccupied, section, train)
	return nil
}

// Release removes train from section. Signals standing at the section that were cleared for train are
// returned to danger.
func (il *Interlocking) Release(train uuid.UUID, section int) error {
	if _, err := il.section(section); err != nil {
		return err
	}
	il.release(train, section)
	return nil
}

func (il *Interlocking) release(train uuid.UUID, section int) {
	s := il.Sections.Sections[section]
	before := s.State.Reserved
	il.resetRoutes(il.Sections.RemoveTrain(section, train))
	for _, end := range s.EndSignals {
		if o := il.Signal(end); o != nil && o.Enabled != nil && o.Enabled.Train == train {
			o.Enabled = nil
		}
	}
	il.publishSection(EventReleased, section, train)
	if r := s.State.Reserved; r != nil && r != before {
		il.publishSection(EventReserved, section, r.Train)
	}
}

// RemoveTrain removes every trace of train: occupation, reservations, claims and deadlock traps.
func (il *Interlocking) RemoveTrain(train uuid.UUID) {
	for i, s := range il.Sections.Sections {
		if s.IsSet(train, true) || s.State.PreReserves(train) {
			il.release(train, i)
		}
	}
	il.ClearDeadlockTrap(train)
}

// Claim queues train for section.
func (il *Interlocking) Claim(train uuid.UUID, section, dir int) error {
	s, err := il.section(section)
	if err != nil {
		return err
	}
	if err := checkDirection(dir); err != nil {
		return err
	}
	s.Claim(circuit.Routed{Train: train, Direction: dir})
	il.publishSection(EventClaimed, section, train)
	return nil
}

// PreReserve queues train to get section once it is cleared.
func (il *Interlocking) PreReserve(train uuid.UUID, section, dir int) error {
	s, err := il.section(section)
	if err != nil {
		return err
	}
	if err := checkDirection(dir); err != nil {
		return err
	}
	s.PreReserve(circuit.Routed{Train: train, Direction: dir})
	return nil
}

// ThrowJunction sets junction section to route by hand. It is refused while the junction is occupied or
// reserved.
func (il *Interlocking) ThrowJunction(section, route int) error {
	s, err := il.section(section)
	if err != nil {
		return err
	}
	if s.State.Occupied() || s.State.Reserved != nil || s.State.SignalReserved != circuit.NoSignal {
		return fmt.Errorf("junction %s: %w", s, ErrNotAvailable)
	}
	if err := il.Sections.AlignJunction(section, route); err != nil {
		return err
	}
	s.JunctionSetManual = route
	return nil
}

func (il *Interlocking) SetHold(sig int, hold signal.Hold) error {
	o, err := il.signal(sig)
	if err != nil {
		return err
	}
	o.SetHold(hold)
	il.publishSignal(EventHoldSet, sig)
	return nil
}

func (il *Interlocking) ClearHold(sig int) error {
	o, err := il.signal(sig)
	if err != nil {
		return err
	}
	o.ClearHold()
	il.publishSignal(EventHoldCleared, sig)
	return nil
}

// SetDeadlockTrap makes holder keep other out of sections until the trap is cleared.
func (il *Interlocking) SetDeadlockTrap(holder, other uuid.UUID, sections []int) error {
	for _, i := range sections {
		if _, err := il.section(i); err != nil {
			return err
		}
	}
	for _, i := range sections {
		il.Sections.Sections[i].SetDeadlockTrap(holder, other)
		il.publishSection(EventDeadlockTrapSet, i, holder)
	}
	il.countTraps()
	return nil
}

// ClearDeadlockTrap clears every trap held by train.
func (il *Interlocking) ClearDeadlockTrap(train uuid.UUID) {
	for i, s := range il.Sections.Sections {
		if slices.Contains(s.DeadlockActives, train) {
			il.publishSection(EventDeadlockTrapCleared, i, train)
		}
		s.ClearDeadlockTrap(train)
	}
	il.countTraps()
}

func (il *Interlocking) countTraps() {
	n := 0
	for _, s := range il.Sections.Sections {
		if len(s.DeadlockActives) > 0 {
			n++
		}
	}
	deadlockTrapsActive.Set(float64(n))
}

func (il *Interlocking) BlockState(sig int) (signal.BlockState, error) {
	o, err := il.signal(sig)
	if err != nil {
		return 0, err
	}
	return o.BlockState(il), nil
}

func (il *Interlocking) ThisSigMR(sig int, f signal.Function) (signal.Aspect, bool, error) {
	o, err := il.signal(sig)
	if err != nil {
		return signal.AspectStop, false, err
	}
	a, ok := o.ThisSigMR(f)
	return a, ok, nil
}

func (il *Interlocking) ThisSigLR(sig int, f signal.Function) (signal.Aspect, bool, error) {
	o, err := il.signal(sig)
	if err != nil {
		return signal.AspectStop, false, err
	}
	a, ok := o.ThisSigLR(f)
	return a, ok, nil
}

// SpeedLimit returns the limit posted by sig for f.
func (il *Interlocking) SpeedLimit(sig int, f signal.Function) (signal.SpeedInfo, error) {
	o, err := il.signal(sig)
	if err != nil {
		return signal.NoSpeed, err
	}
	return o.ThisLimSpeed(f), nil
}

func (il *Interlocking) NextSignal(sig int, f signal.Function) (int, error) {
	o, err := il.signal(sig)
	if err != nil {
		return circuit.NoSignal, err
	}
	return o.NextSignal(il, f), nil
}

// Distance is the distance along the live route between two positions, or -1.
func (il *Interlocking) Distance(fromSection int, fromOffset float64, dir int, toSection int, toOffset float64) float64 {
	return il.Sections.GetDistanceBetweenObjects(fromSection, fromOffset, dir, toSection, toOffset)
}

// DistanceToSignal is the distance from a position to sig along the live route, or -1.
func (il *Interlocking) DistanceToSignal(fromSection int, fromOffset float64, dir int, sig int) (float64, error) {
	o, err := il.signal(sig)
	if err != nil {
		return -1, err
	}
	return il.Distance(fromSection, fromOffset, dir, o.Section, o.Offset), nil
}
