package signal

import (
	"fmt"

	"nyiyui.ca/hato/shingo/tal/circuit"
)

// BlockState is the state of the block beyond a signal as seen by aspect logic.
type BlockState int

const (
	BlockClear BlockState = iota
	BlockOccupied
	BlockJnObstructed
)

func (b BlockState) String() string {
	switch b {
	case BlockClear:
		return "clear"
	case BlockOccupied:
		return "occupied"
	case BlockJnObstructed:
		return "jn-obstructed"
	default:
		panic(fmt.Sprintf("unknown BlockState %d", int(b)))
	}
}

func (b BlockState) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

func (b *BlockState) UnmarshalText(text []byte) error {
	for _, c := range []BlockState{BlockClear, BlockOccupied, BlockJnObstructed} {
		if c.String() == string(text) {
			*b = c
			return nil
		}
	}
	return fmt.Errorf("unknown block state %q", text)
}

// Project maps an internal block state to the block state it shows as.
func Project(b circuit.InternalBlockState) BlockState {
	switch b {
	case circuit.BlockReserved, circuit.BlockReservable:
		return BlockClear
	case circuit.BlockOccupiedSameDirection:
		return BlockOccupied
	case circuit.BlockReservedOther, circuit.BlockForcedWait, circuit.BlockOccupiedOppositeDirection, circuit.BlockOpen, circuit.BlockBlocked:
		return BlockJnObstructed
	default:
		panic("unreachable")
	}
}

// BlockRoute returns the sections from the one beyond the signal up to the next end signal or the
// end of the track, following the live route. ok is false if the route stops at an unset switch.
func (o *Object) BlockRoute(g Graph) (route circuit.Route, ok bool) {
	if o.NextSection == circuit.NoLink {
		return nil, true
	}
	s := g.Section(o.NextSection)
	dir := o.NextDirection
	last := o.Section
	for hops := 0; s != nil; hops++ {
		if hops > g.MaxHops() {
			return route, true
		}
		route = append(route, circuit.RouteElement{Section: s.Index, Direction: dir})
		if s.EndSignals[dir] != circuit.NoSignal || s.Kind == circuit.KindEndOfTrack {
			return route, true
		}
		next := s.GetNextActiveLink(dir, last)
		if !next.Valid() {
			return route, false
		}
		last = s.Index
		s = g.Section(next.Link)
		dir = next.Direction
	}
	return route, true
}

// InternalBlockState returns the state of the block beyond the signal, for the train it is enabled for
// if there is one.
func (o *Object) InternalBlockState(g Graph) circuit.InternalBlockState {
	route, ok := o.BlockRoute(g)
	state := circuit.BlockReservable
	if o.Enabled != nil {
		state = circuit.BlockReserved
		for _, e := range route {
			state = g.Section(e.Section).SectionState(o.Enabled.Train, e.Direction, state, route, o.Index)
		}
	} else {
		for _, e := range route {
			if g.Section(e.Section).State.Occupied() {
				state = circuit.BlockOccupiedSameDirection
				break
			}
		}
	}
	if !ok {
		return circuit.BlockBlocked
	}
	return state
}

// BlockState is InternalBlockState as the signal shows it.
func (o *Object) BlockState(g Graph) BlockState {
	return Project(o.InternalBlockState(g))
}
