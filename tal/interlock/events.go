package interlock

import (
	"github.com/google/uuid"

	"nyiyui.ca/hato/shingo/tal/circuit"
)

type EventKind string

const (
	EventReserved            EventKind = "reserved"
	EventOccupied            EventKind = "occupied"
	EventReleased            EventKind = "released"
	EventClaimed             EventKind = "claimed"
	EventJunctionThrown      EventKind = "junction-thrown"
	EventHoldSet             EventKind = "hold-set"
	EventHoldCleared         EventKind = "hold-cleared"
	EventDeadlockTrapSet     EventKind = "deadlock-trap-set"
	EventDeadlockTrapCleared EventKind = "deadlock-trap-cleared"
	// EventRouteReset is sent for a signal whose route lookup passed a junction that was reserved or released.
	EventRouteReset EventKind = "route-reset"
	// EventSignalUpdate is sent for a signal whose aspect may have changed with a junction's route.
	EventSignalUpdate EventKind = "signal-update"
	EventRestored     EventKind = "restored"
)

type Event struct {
	Kind    EventKind `json:"kind"`
	Section int       `json:"section"`
	Signal  int       `json:"signal"`
	Train   uuid.UUID `json:"train"`
}

func (il *Interlocking) publish(e Event) {
	if il.events == nil {
		return
	}
	il.events.Send(e)
}

func (il *Interlocking) publishSection(kind EventKind, section int, t uuid.UUID) {
	il.publish(Event{Kind: kind, Section: section, Signal: circuit.NoSignal, Train: t})
}

func (il *Interlocking) publishSignal(kind EventKind, signal int) {
	il.publish(Event{Kind: kind, Section: circuit.NoLink, Signal: signal})
}

func (il *Interlocking) resetRoutes(signals []int) {
	for _, si := range signals {
		il.publishSignal(EventRouteReset, si)
	}
}

func (il *Interlocking) onSwitch(s *circuit.Section, route int) {
	il.publishSection(EventJunctionThrown, s.Index, uuid.Nil)
	for _, si := range s.LinkedSignals {
		il.publishSignal(EventSignalUpdate, si)
	}
}

// Restored announces that state was replaced wholesale, as when a snapshot is applied.
func (il *Interlocking) Restored() {
	il.countTraps()
	il.publish(Event{Kind: EventRestored, Section: circuit.NoLink, Signal: circuit.NoSignal})
}
