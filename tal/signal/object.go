package signal

import (
	"fmt"

	"nyiyui.ca/hato/shingo/tal/circuit"
)

type Kind int

const (
	KindSignal Kind = iota
	KindSpeedPost
)

func (k Kind) String() string {
	switch k {
	case KindSignal:
		return "signal"
	case KindSpeedPost:
		return "speedpost"
	default:
		panic("unreachable")
	}
}

// Graph is the arena objects look each other and their sections up in.
type Graph interface {
	Section(i int) *circuit.Section
	Signal(i int) *Object
	MaxHops() int
}

// Object is a logical signal or speed post.
type Object struct {
	Index int
	Kind  Kind

	Section   int
	Offset    float64
	Direction int
	// NextSection is the section beyond a normal signal, or -1.
	NextSection   int
	NextDirection int

	Heads            []*Head
	NumNormalHeads   int
	NumClearAheadMax int

	// DefaultNext is the next object of each function found without passing a junction, or -1.
	DefaultNext [NumFunctions]int
	// FixedRoute is set when DefaultNext[FunctionNormal] does not depend on any junction.
	FixedRoute bool

	Hold       Hold
	Permission Permission
	Facing     bool
	// TrackItems are the track item ids of the heads, in head order.
	TrackItems []int
	// Enabled is the train the signal is cleared for, if any.
	Enabled *circuit.Routed
}

func NewObject(index int, kind Kind) *Object {
	o := &Object{
		Index:       index,
		Kind:        kind,
		Section:     circuit.NoLink,
		NextSection: circuit.NoLink,
		Permission:  PermissionDenied,
	}
	for f := range o.DefaultNext {
		o.DefaultNext[f] = circuit.NoSignal
	}
	return o
}

func (o *Object) String() string {
	return fmt.Sprintf("%s %d", o.Kind, o.Index)
}

// AddHead appends h and takes ownership of it.
func (o *Object) AddHead(h *Head) {
	h.Owner = o.Index
	o.Heads = append(o.Heads, h)
	o.TrackItems = append(o.TrackItems, h.TrackItem)
}

// SetIndex renumbers o and its heads.
func (o *Object) SetIndex(i int) {
	o.Index = i
	for _, h := range o.Heads {
		h.Owner = i
	}
}

// SetTypes binds every signal head to its type and shows its most restrictive aspect.
func (o *Object) SetTypes(types *Types) {
	o.NumNormalHeads = 0
	for _, h := range o.Heads {
		if h.Function == FunctionSpeed && h.TypeName == "" {
			continue
		}
		if h.SetType(types, h.TypeName) && h.Function == FunctionNormal {
			o.NumNormalHeads++
			if h.Type.NumClearAhead > o.NumClearAheadMax {
				o.NumClearAheadMax = h.Type.NumClearAhead
			}
		}
		h.SetMostRestrictiveAspect()
	}
}

func (o *Object) HasFunction(f Function) bool {
	for _, h := range o.Heads {
		if h.Function == f {
			return true
		}
	}
	return false
}

func (o *Object) IsNormal() bool {
	return o.HasFunction(FunctionNormal)
}

// ThisSigMR returns the most restrictive aspect among heads of f.
// If there are none, it returns stop and false.
func (o *Object) ThisSigMR(f Function) (Aspect, bool) {
	found := false
	best := AspectStop
	for _, h := range o.Heads {
		if h.Function != f || h.Aspect == AspectUnknown {
			continue
		}
		if !found || h.Aspect.MoreRestrictive(best) {
			best, found = h.Aspect, true
		}
	}
	return best, found
}

// ThisSigLR returns the least restrictive aspect among heads of f.
// If there are none, it returns clear-2 for normal heads (unsignalled track is clear) and stop otherwise.
func (o *Object) ThisSigLR(f Function) (Aspect, bool) {
	found := false
	best := AspectStop
	for _, h := range o.Heads {
		if h.Function != f || h.Aspect == AspectUnknown {
			continue
		}
		if !found || best.MoreRestrictive(h.Aspect) {
			best, found = h.Aspect, true
		}
	}
	if !found && f == FunctionNormal {
		return AspectClear2, false
	}
	return best, found
}

// ThisSigSpeed returns the limit shown by the least restrictive head of f.
func (o *Object) ThisSigSpeed(f Function) SpeedInfo {
	var best *Head
	for _, h := range o.Heads {
		if h.Function != f || h.Aspect == AspectUnknown {
			continue
		}
		if best == nil || best.Aspect.MoreRestrictive(h.Aspect) {
			best = h
		}
	}
	if best == nil {
		return NoSpeed
	}
	return best.Speed(best.Aspect)
}

// ThisLimSpeed returns the lowest passenger and freight limits shown by heads of f, ignoring warnings.
// A speed with no limit is -1.
func (o *Object) ThisLimSpeed(f Function) SpeedInfo {
	const unset = 9e9
	pass, freight := unset, unset
	for _, h := range o.Heads {
		if h.Function != f {
			continue
		}
		s := h.Speed(h.Aspect)
		if s.Warning {
			continue
		}
		if s.Pass > 0 && s.Pass < pass {
			pass = s.Pass
		}
		if s.Freight > 0 && s.Freight < freight {
			freight = s.Freight
		}
	}
	if pass > 1e9 {
		pass = -1
	}
	if freight > 1e9 {
		freight = -1
	}
	return SpeedInfo{Pass: pass, Freight: freight}
}
