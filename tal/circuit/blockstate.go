package circuit

import (
	"fmt"

	"github.com/google/uuid"
)

// InternalBlockState is ordered from least to most restrictive.
type InternalBlockState int

const (
	BlockReserved InternalBlockState = iota
	BlockReservable
	BlockOccupiedSameDirection
	BlockReservedOther
	BlockForcedWait
	BlockOccupiedOppositeDirection
	BlockOpen
	BlockBlocked
)

func (b InternalBlockState) String() string {
	switch b {
	case BlockReserved:
		return "reserved"
	case BlockReservable:
		return "reservable"
	case BlockOccupiedSameDirection:
		return "occupied-same-direction"
	case BlockReservedOther:
		return "reserved-other"
	case BlockForcedWait:
		return "forced-wait"
	case BlockOccupiedOppositeDirection:
		return "occupied-opposite-direction"
	case BlockOpen:
		return "open"
	case BlockBlocked:
		return "blocked"
	default:
		panic(fmt.Sprintf("unknown InternalBlockState %d", int(b)))
	}
}

// SectionState returns the state of the section as seen by train t travelling in direction, for a
// route requested by signal. It never returns a state less restrictive than passed.
// Use uuid.Nil as t when no train is involved.
func (s *Section) SectionState(t TrainID, direction int, passed InternalBlockState, route Route, signal int) InternalBlockState {
	st := &s.State
	local := BlockReservable
	set := false
	switch {
	case t != uuid.Nil && st.OccupiedBy(t):
		local, set = BlockReserved, true
	case st.Occupied():
		if st.OccupiedInDirection(1 - direction) {
			local = BlockOccupiedOppositeDirection
		} else {
			local = BlockOccupiedSameDirection
		}
		set = true
		if s.Kind.Switchable() && !s.routeAligned(route) {
			local = BlockBlocked
		}
	}
	if !set && st.Reserved != nil {
		if st.ReservedBy(t) {
			local = BlockReserved
		} else {
			local = BlockReservedOther
		}
		set = true
	}
	if !set && st.SignalReserved != NoSignal && st.SignalReserved != signal {
		local, set = BlockReservedOther, true
	}
	if head, ok := st.ClaimHead(); !set && ok && head != t {
		local = BlockOpen
	}
	if t != uuid.Nil && len(s.DeadlockTraps[t]) > 0 {
		local = BlockBlocked
		s.await(t)
	}
	if passed > local {
		return passed
	}
	return local
}

// routeAligned reports whether the active pins lead to the section after this one in route.
func (s *Section) routeAligned(route Route) bool {
	i := route.Index(s.Index)
	if i == -1 {
		return false
	}
	if i == len(route)-1 {
		return true
	}
	next := route[i+1].Section
	active := s.ActivePins[route[i].Direction]
	return active[0].Link == next || active[1].Link == next
}
