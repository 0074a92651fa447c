package circuit

import (
	"github.com/google/uuid"
	"golang.org/x/exp/slices"
)

type TrainID = uuid.UUID

// Routed is a train together with its direction of travel.
type Routed struct {
	Train     TrainID `json:"train"`
	Direction int     `json:"dir"`
}

type State struct {
	// Occupy maps each occupying train to its direction of travel.
	Occupy         map[TrainID]int `json:"occupy"`
	Reserved       *Routed         `json:"reserved"`
	SignalReserved int             `json:"signalReserved"`
	PreReserved    []Routed        `json:"preReserved"`
	Claimed        []Routed        `json:"claimed"`
	Forced         bool            `json:"forced"`
}

func NewState() State {
	return State{Occupy: map[TrainID]int{}, SignalReserved: NoSignal}
}

func (st *State) Occupied() bool { return len(st.Occupy) > 0 }

func (st *State) OccupiedBy(t TrainID) bool {
	_, ok := st.Occupy[t]
	return ok
}

func (st *State) OccupiedByOther(t TrainID) bool {
	for o := range st.Occupy {
		if o != t {
			return true
		}
	}
	return false
}

// OccupiedInDirection reports whether any train occupies the section travelling in dir.
func (st *State) OccupiedInDirection(dir int) bool {
	for _, d := range st.Occupy {
		if d == dir {
			return true
		}
	}
	return false
}

func (st *State) ReservedBy(t TrainID) bool {
	return st.Reserved != nil && st.Reserved.Train == t
}

// ClaimHead returns the train first in the claim queue.
func (st *State) ClaimHead() (TrainID, bool) {
	if len(st.Claimed) == 0 {
		return uuid.Nil, false
	}
	return st.Claimed[0].Train, true
}

func (st *State) Claims(t TrainID) bool {
	return queueIndex(st.Claimed, t) != -1
}

func (st *State) PreReserves(t TrainID) bool {
	return queueIndex(st.PreReserved, t) != -1
}

func queueIndex(q []Routed, t TrainID) int {
	return slices.IndexFunc(q, func(r Routed) bool { return r.Train == t })
}

func dequeue(q []Routed, t TrainID) []Routed {
	for {
		i := queueIndex(q, t)
		if i == -1 {
			return q
		}
		q = slices.Delete(q, i, i+1)
	}
}
