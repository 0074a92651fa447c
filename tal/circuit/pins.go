package circuit

import (
	"fmt"

	"go.uber.org/zap"
)

// SwitchableEnd returns the direction whose links are alternatives, or -1.
func (s *Section) SwitchableEnd() int {
	for dir := 0; dir < 2; dir++ {
		if s.Pins[dir][1].Valid() {
			return dir
		}
	}
	return -1
}

// IsFacing reports whether a train travelling in direction runs into this section's switchable end
// from the single-track side.
func (s *Section) IsFacing(direction int) bool {
	return s.Kind == KindJunction && s.Pins[direction][1].Valid()
}

// StaticNext returns the first static link in direction.
func (s *Section) StaticNext(direction int) Pin {
	if s.Pins[direction][0].Valid() {
		return s.Pins[direction][0]
	}
	return s.Pins[direction][1]
}

// GetNextActiveLink returns the active link leaving the section in direction, entered from last.
func (s *Section) GetNextActiveLink(direction, last int) Pin {
	if s.Kind == KindCrossover {
		in := 1 - direction
		switch last {
		case s.Pins[in][0].Link:
			return s.ActivePins[direction][0]
		case s.Pins[in][1].Link:
			return s.ActivePins[direction][1]
		default:
			return NoPin
		}
	}
	if s.ActivePins[direction][0].Valid() {
		return s.ActivePins[direction][0]
	}
	return s.ActivePins[direction][1]
}

// entersSwitchableEnd reports whether following p arrives at a junction's switchable end.
func (n *Network) entersSwitchableEnd(p Pin) bool {
	l := n.Section(p.Link)
	return l != nil && l.Kind == KindJunction && l.Pins[1-p.Direction][1].Valid()
}

// InitActivePins sets every section's active pins from the static ones. Links that point outside
// the network are dropped.
// Switchable ends, crossovers and links running into them are left unset until aligned.
func (n *Network) InitActivePins() {
	for _, s := range n.Sections {
		for dir := 0; dir < 2; dir++ {
			for k := 0; k < 2; k++ {
				p := s.Pins[dir][k]
				if p.Valid() && (n.Section(p.Link) == nil || (p.Direction != 0 && p.Direction != 1)) {
					zap.S().Warnf("section %s: dropping dangling link %s in direction %d", s, p, dir)
					s.Pins[dir][k] = NoPin
				}
			}
			if !s.Pins[dir][0].Valid() && s.Pins[dir][1].Valid() {
				s.Pins[dir][0], s.Pins[dir][1] = s.Pins[dir][1], NoPin
			}
		}
	}
	for _, s := range n.Sections {
		switch s.Kind {
		case KindCrossover:
			s.ActivePins = [2][2]Pin{{NoPin, NoPin}, {NoPin, NoPin}}
		case KindJunction:
			for dir := 0; dir < 2; dir++ {
				if s.Pins[dir][1].Valid() {
					s.ActivePins[dir] = [2]Pin{NoPin, NoPin}
				} else {
					s.ActivePins[dir] = s.Pins[dir]
				}
			}
		case KindNormal, KindEndOfTrack, KindEmpty:
			s.ActivePins = s.Pins
		default:
			panic("unreachable")
		}
	}
	for _, s := range n.Sections {
		for dir := 0; dir < 2; dir++ {
			for k := 0; k < 2; k++ {
				p := s.Pins[dir][k]
				if !p.Valid() {
					continue
				}
				if n.Sections[p.Link].Kind == KindCrossover || n.entersSwitchableEnd(p) {
					s.ActivePins[dir][k] = NoPin
					if s.Kind == KindNormal {
						s.EndIsTrailingJunction[dir] = true
					}
				}
			}
		}
	}
}

// AlignSwitchPins sets the route of section i towards its neighbour linked.
// Links previously active on that end are cleared on both sides; if linked has alternatives on the
// end facing i, the other alternative is cleared as well.
// It does nothing if linked is not a neighbour.
func (n *Network) AlignSwitchPins(i, linked int) {
	s := n.Section(i)
	if s == nil || linked < 0 {
		return
	}
	dir, k := -1, -1
	for d := 0; d < 2 && dir == -1; d++ {
		for kk := 0; kk < 2; kk++ {
			if s.Pins[d][kk].Link == linked {
				dir, k = d, kk
				break
			}
		}
	}
	if dir == -1 {
		return
	}
	n.clearActive(i, dir)
	s.ActivePins[dir][k] = s.Pins[dir][k]
	l := n.Sections[linked]
	for d := 0; d < 2; d++ {
		for kk := 0; kk < 2; kk++ {
			if l.Pins[d][kk].Link != i {
				continue
			}
			if l.Pins[d][1].Valid() && l.ActivePins[d][kk] != l.Pins[d][kk] {
				n.clearActive(linked, d)
			}
			l.ActivePins[d][kk] = l.Pins[d][kk]
		}
	}
	n.switched(s)
	if l != s {
		n.switched(l)
	}
}

// switched records the thrown route of junction s.
func (n *Network) switched(s *Section) {
	if s.Kind != KindJunction {
		return
	}
	end := s.SwitchableEnd()
	if end == -1 {
		return
	}
	route := -1
	switch {
	case s.ActivePins[end][0].Valid():
		route = 0
	case s.ActivePins[end][1].Valid():
		route = 1
	}
	if route == -1 {
		return
	}
	s.JunctionLastRoute = route
	if n.OnSwitch != nil {
		n.OnSwitch(s, route)
	}
}

// clearActive unsets the active links of section i in dir, and the links back into it.
func (n *Network) clearActive(i, dir int) {
	s := n.Sections[i]
	for k := 0; k < 2; k++ {
		p := s.ActivePins[dir][k]
		s.ActivePins[dir][k] = NoPin
		l := n.Section(p.Link)
		if l == nil {
			continue
		}
		for kk, back := range l.ActivePins[1-p.Direction] {
			if back.Link == i {
				l.ActivePins[1-p.Direction][kk] = NoPin
			}
		}
	}
}

// AlignJunction throws junction i to route (0 or 1) on its switchable end.
func (n *Network) AlignJunction(i, route int) error {
	s := n.Section(i)
	if s == nil {
		return fmt.Errorf("section %d: %w", i, ErrUnknownSection)
	}
	end := s.SwitchableEnd()
	if !s.Kind.Switchable() || end == -1 {
		return fmt.Errorf("section %s is not switchable", s)
	}
	if route != 0 && route != 1 {
		return fmt.Errorf("section %s: invalid route %d", s, route)
	}
	n.AlignSwitchPins(i, s.Pins[end][route].Link)
	return nil
}

// DeAlignSwitchPins unsets the route on every switchable end of section i, and the links back into it.
func (n *Network) DeAlignSwitchPins(i int) {
	s := n.Section(i)
	if s == nil {
		return
	}
	for dir := 0; dir < 2; dir++ {
		if s.Pins[dir][1].Valid() {
			n.clearActive(i, dir)
		}
	}
}

// CheckAlignment returns an error for the first active link that has no active link back.
func (n *Network) CheckAlignment() error {
	for _, s := range n.Sections {
		for dir := 0; dir < 2; dir++ {
			for _, p := range s.ActivePins[dir] {
				if !p.Valid() {
					continue
				}
				l := n.Section(p.Link)
				if l == nil {
					return fmt.Errorf("section %s: active link %s in direction %d: %w", s, p, dir, ErrUnknownSection)
				}
				want := Pin{Link: s.Index, Direction: 1 - dir}
				back := l.ActivePins[1-p.Direction]
				if back[0] != want && back[1] != want {
					return fmt.Errorf("misaligned: %s links %s in direction %d but %s does not link back", s, p, dir, l)
				}
			}
		}
	}
	return nil
}
