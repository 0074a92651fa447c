package circuit

import "golang.org/x/exp/slices"

// SetDeadlockTrap makes holder block other from this section.
func (s *Section) SetDeadlockTrap(holder, other TrainID) {
	if !slices.Contains(s.DeadlockTraps[other], holder) {
		s.DeadlockTraps[other] = append(s.DeadlockTraps[other], holder)
	}
	if !slices.Contains(s.DeadlockActives, holder) {
		s.DeadlockActives = append(s.DeadlockActives, holder)
	}
}

// ClearDeadlockTrap removes every trap held by t, and t's wait on this section.
func (s *Section) ClearDeadlockTrap(t TrainID) {
	if i := slices.Index(s.DeadlockActives, t); i != -1 {
		for other, holders := range s.DeadlockTraps {
			if j := slices.Index(holders, t); j != -1 {
				holders = slices.Delete(holders, j, j+1)
			}
			if len(holders) == 0 {
				delete(s.DeadlockTraps, other)
			} else {
				s.DeadlockTraps[other] = holders
			}
		}
		s.DeadlockActives = slices.Delete(s.DeadlockActives, i, i+1)
	}
	if i := slices.Index(s.DeadlockAwaited, t); i != -1 {
		s.DeadlockAwaited = slices.Delete(s.DeadlockAwaited, i, i+1)
	}
}

// CheckDeadlockAwaited reports whether a train other than t is waiting on this section.
func (s *Section) CheckDeadlockAwaited(t TrainID) bool {
	for _, a := range s.DeadlockAwaited {
		if a != t {
			return true
		}
	}
	return false
}

func (s *Section) await(t TrainID) {
	if !slices.Contains(s.DeadlockAwaited, t) {
		s.DeadlockAwaited = append(s.DeadlockAwaited, t)
	}
}

// ClearAwaited removes t from the trains waiting on this section.
func (s *Section) ClearAwaited(t TrainID) {
	if i := slices.Index(s.DeadlockAwaited, t); i != -1 {
		s.DeadlockAwaited = slices.Delete(s.DeadlockAwaited, i, i+1)
	}
}
