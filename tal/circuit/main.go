// Package circuit is the track-circuit section graph: static and active pins, occupation,
// reservation and deadlock state, and the traversals built on them.
package circuit

import (
	"errors"
	"fmt"
)

var ErrUnknownSection = errors.New("unknown section")

type Kind int

const (
	KindNormal Kind = iota
	KindJunction
	KindCrossover
	KindEndOfTrack
	KindEmpty
)

func (k Kind) String() string {
	switch k {
	case KindNormal:
		return "normal"
	case KindJunction:
		return "junction"
	case KindCrossover:
		return "crossover"
	case KindEndOfTrack:
		return "end-of-track"
	case KindEmpty:
		return "empty"
	default:
		panic(fmt.Sprintf("unknown Kind %d", int(k)))
	}
}

// Switchable is true for kinds with more than one route through them.
func (k Kind) Switchable() bool {
	switch k {
	case KindJunction, KindCrossover:
		return true
	case KindNormal, KindEndOfTrack, KindEmpty:
		return false
	default:
		panic(fmt.Sprintf("unknown Kind %d", int(k)))
	}
}

// NoLink marks an unset Pin.
const NoLink = -1

// NoSignal marks an unset signal reference.
const NoSignal = -1

// Pin is a directed link to another section.
type Pin struct {
	Link int `json:"link"`
	// Direction is the direction of travel in the linked section.
	Direction int `json:"dir"`
}

var NoPin = Pin{Link: NoLink, Direction: NoLink}

func (p Pin) Valid() bool { return p.Link >= 0 }

func (p Pin) String() string {
	if !p.Valid() {
		return "-"
	}
	return fmt.Sprintf("%d/%d", p.Link, p.Direction)
}

type ItemKind int

const (
	ItemSignal ItemKind = iota
	ItemSpeedPost
	ItemMilepost
)

// Item is something placed along a section in one direction.
type Item struct {
	Kind ItemKind
	// Ref is the signal index for signals and speed posts.
	Ref    int
	Offset float64
	// Milepost is the displayed value of a milepost.
	Milepost string
}

type Section struct {
	Index   int
	Kind    Kind
	Length  float64
	Comment string

	Pins       [2][2]Pin
	ActivePins [2][2]Pin
	// EndIsTrailingJunction is set where the link in that direction runs into the branch end of a junction or into a crossover.
	EndIsTrailingJunction [2]bool

	JunctionDefaultRoute int
	JunctionLastRoute    int
	// JunctionSetManual is the route set by hand, or -1.
	JunctionSetManual int
	Overlap           float64

	EndSignals [2]int
	Items      [2][]Item
	// SignalsPassingRoutes are signals whose route was looked up through this junction.
	SignalsPassingRoutes []int
	// LinkedSignals are signals whose aspect depends on this junction's route.
	LinkedSignals []int

	State           State
	DeadlockTraps   map[TrainID][]TrainID
	DeadlockActives []TrainID
	DeadlockAwaited []TrainID
}

func NewSection(index int, kind Kind, length float64) *Section {
	s := &Section{
		Index:             index,
		Kind:              kind,
		Length:            length,
		JunctionSetManual: -1,
		EndSignals:        [2]int{NoSignal, NoSignal},
		State:             NewState(),
		DeadlockTraps:     map[TrainID][]TrainID{},
	}
	for dir := 0; dir < 2; dir++ {
		for k := 0; k < 2; k++ {
			s.Pins[dir][k] = NoPin
			s.ActivePins[dir][k] = NoPin
		}
	}
	return s
}

func (s *Section) String() string {
	return fmt.Sprintf("%d(%s %s)", s.Index, s.Comment, s.Kind)
}

// Network is the arena of sections. Index i of Sections has Index i.
type Network struct {
	Sections []*Section
	// OnSwitch is called when a junction's thrown route changes through alignment.
	OnSwitch func(s *Section, route int)
	// OnWalk is called with the number of sections visited by each walk.
	OnWalk func(hops int)
}

// Section returns the section at i, or nil if there is none.
func (n *Network) Section(i int) *Section {
	if i < 0 || i >= len(n.Sections) {
		return nil
	}
	return n.Sections[i]
}

// MaxHops bounds every walk over the network.
func (n *Network) MaxHops() int {
	return len(n.Sections) + 1
}
