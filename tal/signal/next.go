package signal

import (
	"golang.org/x/exp/slices"

	"nyiyui.ca/hato/shingo/tal/circuit"
)

// start returns where lookups of f begin: the section beyond the signal for normal lookups of a
// normal signal, and the signal's own position otherwise. offset is -1 when every item counts.
func (o *Object) start(f Function) (section, dir int, offset float64) {
	if f == FunctionNormal && o.NextSection != circuit.NoLink {
		return o.NextSection, o.NextDirection, -1
	}
	return o.Section, o.Direction, o.Offset
}

// scanItems returns the first object beyond offset on s in dir with function f, other than o.
func (o *Object) scanItems(g Graph, s *circuit.Section, dir int, offset float64, f Function) int {
	for _, it := range s.Items[dir] {
		if it.Kind == circuit.ItemMilepost || it.Ref == o.Index || it.Offset <= offset {
			continue
		}
		if other := g.Signal(it.Ref); other != nil && other.HasFunction(f) {
			return it.Ref
		}
	}
	return circuit.NoSignal
}

// SetDefaultNextSignal looks up the first object of every function over consecutive plain sections.
// The walk stops at the first section that is not plain. The route is fixed if a normal signal bounds
// one of the sections walked, or the walk ends at the end of the track.
func (o *Object) SetDefaultNextSignal(g Graph) {
	for f := range o.DefaultNext {
		o.DefaultNext[f] = circuit.NoSignal
	}
	o.FixedRoute = false
	sectionIndex, dir, offset := o.start(FunctionNormal)
	setFixedRoute := o.NextSection != circuit.NoLink
	completed := false
	s := g.Section(sectionIndex)
	for hops := 0; s != nil && s.Kind == circuit.KindNormal; hops++ {
		if hops > g.MaxHops() {
			// a ring of plain sections
			break
		}
		for f := Function(0); f < NumFunctions; f++ {
			if f == FunctionNormal && completed {
				continue
			}
			if o.DefaultNext[f] == circuit.NoSignal {
				o.DefaultNext[f] = o.scanItems(g, s, dir, offset, f)
			}
		}
		if end := s.EndSignals[dir]; !completed && end != circuit.NoSignal && end != o.Index {
			if o.DefaultNext[FunctionNormal] == circuit.NoSignal {
				o.DefaultNext[FunctionNormal] = end
			}
			completed = true
		}
		next := s.Pins[dir][0]
		if !next.Valid() {
			s = nil
			break
		}
		s = g.Section(next.Link)
		dir = next.Direction
		offset = -1
	}
	if s != nil && s.Kind == circuit.KindEndOfTrack {
		completed = true
	}
	o.FixedRoute = setFixedRoute && completed
}

// NextSignal returns the next object of function f, or -1.
// A fixed normal route comes from SetDefaultNextSignal; everything else follows the live route.
func (o *Object) NextSignal(g Graph, f Function) int {
	if f == FunctionNormal && o.FixedRoute {
		return o.DefaultNext[FunctionNormal]
	}
	sectionIndex, dir, offset := o.start(f)
	last := circuit.NoLink
	if f == FunctionNormal && o.NextSection != circuit.NoLink {
		last = o.Section
	}
	s := g.Section(sectionIndex)
	for hops := 0; s != nil; hops++ {
		if hops > g.MaxHops() {
			return circuit.NoSignal
		}
		if found := o.scanItems(g, s, dir, offset, f); found != circuit.NoSignal {
			return found
		}
		if end := s.EndSignals[dir]; end != circuit.NoSignal && end != o.Index {
			if f == FunctionNormal {
				return end
			}
			return circuit.NoSignal
		}
		if s.Kind.Switchable() && !slices.Contains(s.SignalsPassingRoutes, o.Index) {
			s.SignalsPassingRoutes = append(s.SignalsPassingRoutes, o.Index)
		}
		next := s.GetNextActiveLink(dir, last)
		if !next.Valid() {
			return circuit.NoSignal
		}
		last = s.Index
		s = g.Section(next.Link)
		dir = next.Direction
		offset = -1
	}
	return circuit.NoSignal
}

// NextSigMR returns the most restrictive aspect of f on the next object of f.
func (o *Object) NextSigMR(g Graph, f Function) (Aspect, bool) {
	next := g.Signal(o.NextSignal(g, f))
	if next == nil {
		return AspectStop, false
	}
	return next.ThisSigMR(f)
}

// NextSigLR returns the least restrictive aspect of f on the next object of f.
func (o *Object) NextSigLR(g Graph, f Function) (Aspect, bool) {
	next := g.Signal(o.NextSignal(g, f))
	if next == nil {
		return AspectStop, false
	}
	return next.ThisSigLR(f)
}

// NextNthSigLR is NextSigLR for the nth object of f ahead, counting from 1.
func (o *Object) NextNthSigLR(g Graph, f Function, n int) (Aspect, bool) {
	cur := o
	for i := 0; i < n; i++ {
		cur = g.Signal(cur.NextSignal(g, f))
		if cur == nil {
			return AspectStop, false
		}
	}
	return cur.ThisSigLR(f)
}

// UpdateFacing recomputes whether the signal stands in front of the switchable end of a junction.
func (o *Object) UpdateFacing(g Graph) {
	o.Facing = false
	next, dir := o.NextSection, o.NextDirection
	if next == circuit.NoLink {
		s := g.Section(o.Section)
		if s == nil {
			return
		}
		p := s.StaticNext(o.Direction)
		next, dir = p.Link, p.Direction
	}
	if s := g.Section(next); s != nil {
		o.Facing = s.IsFacing(dir)
	}
}
