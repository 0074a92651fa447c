package circuit

import (
	"go.uber.org/zap"

	"nyiyui.ca/hato/shingo/tal/layout"
)

func kindOf(k layout.Kind) Kind {
	switch k {
	case layout.KindNormal:
		return KindNormal
	case layout.KindJunction:
		return KindJunction
	case layout.KindCrossover:
		return KindCrossover
	case layout.KindEndOfTrack:
		return KindEndOfTrack
	case layout.KindEmpty:
		return KindEmpty
	default:
		panic("unreachable")
	}
}

// New builds the section graph of y with its active pins initialised.
// Junctions are not yet aligned to their default route.
func New(y *layout.Topology) *Network {
	n := &Network{Sections: make([]*Section, len(y.Sections))}
	for si, ys := range y.Sections {
		length := ys.Length
		if length < 0 {
			zap.S().Warnf("section %d (%s): invalid length %f, using 0", si, ys.Comment, length)
			length = 0
		}
		s := NewSection(si, kindOf(ys.Kind), length)
		s.Comment = ys.Comment
		s.Overlap = ys.Overlap
		for dir, pins := range ys.Pins {
			for k, p := range pins {
				s.Pins[dir][k] = Pin{Link: p.Link, Direction: p.Direction}
			}
		}
		if s.Kind == KindJunction {
			if ys.DefaultRoute != 0 && ys.DefaultRoute != 1 {
				zap.S().Warnf("section %d (%s): invalid default route %d, using 0", si, ys.Comment, ys.DefaultRoute)
			} else {
				s.JunctionDefaultRoute = ys.DefaultRoute
			}
			s.JunctionLastRoute = s.JunctionDefaultRoute
		}
		n.Sections[si] = s
	}
	n.InitActivePins()
	return n
}
