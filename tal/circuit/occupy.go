package circuit

// IsSet reports whether t occupies or has reserved the section, or, if claimValid, has claimed it.
func (s *Section) IsSet(t TrainID, claimValid bool) bool {
	switch {
	case s.State.OccupiedBy(t):
		return true
	case s.State.ReservedBy(t):
		return true
	case claimValid && s.State.Claims(t):
		return true
	default:
		return false
	}
}

// IsAvailable reports whether t may reserve the section.
// A deadlock trap set against t marks t as awaiting this section.
func (s *Section) IsAvailable(t TrainID) bool {
	st := &s.State
	if st.OccupiedBy(t) {
		return true
	}
	if st.Occupied() {
		return false
	}
	if st.ReservedBy(t) {
		return true
	}
	if st.Reserved != nil {
		return false
	}
	if st.SignalReserved != NoSignal {
		return false
	}
	if head, ok := st.ClaimHead(); ok {
		return head == t
	}
	if len(s.DeadlockTraps[t]) > 0 {
		s.await(t)
		return false
	}
	return true
}

// Reserve reserves section i for t, aligning a junction or crossover along route.
// It returns the signals whose looked-up routes passed through the section and must be reset.
func (n *Network) Reserve(i int, t Routed, route Route) (reset []int) {
	s := n.Section(i)
	if s == nil || s.State.OccupiedBy(t.Train) {
		return nil
	}
	s.State.Reserved = &t
	s.State.Claimed = dequeue(s.State.Claimed, t.Train)
	if !s.Kind.Switchable() || s.State.Forced {
		return nil
	}
	s.JunctionSetManual = -1
	if ri := route.Index(i); ri != -1 {
		if ri > 0 {
			n.AlignSwitchPins(i, route[ri-1].Section)
		}
		if ri < len(route)-1 {
			n.AlignSwitchPins(i, route[ri+1].Section)
		}
	}
	reset, s.SignalsPassingRoutes = s.SignalsPassingRoutes, nil
	return reset
}

// ReserveForSignal reserves section i on behalf of signal sig, with no train yet.
func (n *Network) ReserveForSignal(i, sig int) {
	if s := n.Section(i); s != nil {
		s.State.SignalReserved = sig
	}
}

// Claim queues t to reserve the section once it is released.
func (s *Section) Claim(t Routed) {
	if !s.State.Claims(t.Train) {
		s.State.Claimed = append(s.State.Claimed, t)
	}
}

// PreReserve queues t to be given the reservation when the section is cleared.
func (s *Section) PreReserve(t Routed) {
	if !s.State.PreReserves(t.Train) {
		s.State.PreReserved = append(s.State.PreReserved, t)
	}
}

// SetOccupied marks t as occupying the section travelling in direction.
func (s *Section) SetOccupied(t TrainID, direction int) {
	st := &s.State
	st.Occupy[t] = direction
	st.Forced = false
	st.Reserved = nil
	st.SignalReserved = NoSignal
	st.Claimed = dequeue(st.Claimed, t)
	st.PreReserved = dequeue(st.PreReserved, t)
}

// ClearOccupied removes t from section i.
// Once the section is free, its route is unset and the first pre-reserved train gets the reservation.
// It returns the signals whose looked-up routes must be reset.
func (n *Network) ClearOccupied(i int, t TrainID) (reset []int) {
	s := n.Section(i)
	if s == nil {
		return nil
	}
	st := &s.State
	delete(st.Occupy, t)
	if st.ReservedBy(t) {
		st.Reserved = nil
	}
	st.Claimed = dequeue(st.Claimed, t)
	st.PreReserved = dequeue(st.PreReserved, t)
	s.ClearDeadlockTrap(t)
	if st.Occupied() {
		return nil
	}
	if s.Kind.Switchable() {
		n.DeAlignSwitchPins(i)
		reset, s.SignalsPassingRoutes = s.SignalsPassingRoutes, nil
	}
	if st.Reserved == nil && len(st.PreReserved) > 0 {
		next := st.PreReserved[0]
		st.PreReserved = st.PreReserved[1:]
		reset = append(reset, n.Reserve(i, next, nil)...)
	}
	return reset
}

// RemoveTrain removes every trace of t from section i.
func (n *Network) RemoveTrain(i int, t TrainID) (reset []int) {
	s := n.Section(i)
	if s == nil {
		return nil
	}
	if s.State.OccupiedBy(t) || s.State.ReservedBy(t) {
		return n.ClearOccupied(i, t)
	}
	s.State.Claimed = dequeue(s.State.Claimed, t)
	s.State.PreReserved = dequeue(s.State.PreReserved, t)
	return nil
}

// UnreserveTrain drops t's reservation and claims on the section.
func (s *Section) UnreserveTrain(t TrainID) {
	if s.State.ReservedBy(t) {
		s.State.Reserved = nil
	}
	s.State.Claimed = dequeue(s.State.Claimed, t)
	s.State.PreReserved = dequeue(s.State.PreReserved, t)
}

// Unreserve drops a signal reservation.
func (s *Section) Unreserve() {
	s.State.SignalReserved = NoSignal
}
