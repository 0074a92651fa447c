package interlock

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"

	"nyiyui.ca/hato/shingo/tal/circuit"
	"nyiyui.ca/hato/shingo/tal/signal"
)

// Overview is a read-only summary of the interlocking for display.
type Overview struct {
	Sections []SectionOverview `json:"sections"`
	Signals  []SignalOverview  `json:"signals"`
}

type SectionOverview struct {
	Index        int         `json:"index"`
	Comment      string      `json:"comment"`
	Kind         string      `json:"kind"`
	Occupied     []uuid.UUID `json:"occupied"`
	Reserved     *uuid.UUID  `json:"reserved"`
	Route        int         `json:"route"`
	DeadlockTrap bool        `json:"deadlockTrap"`
}

type SignalOverview struct {
	Index      int               `json:"index"`
	Section    int               `json:"section"`
	Direction  int               `json:"dir"`
	Aspect     signal.Aspect     `json:"aspect"`
	BlockState signal.BlockState `json:"blockState"`
	Hold       signal.Hold       `json:"hold"`
	Next       int               `json:"next"`
	Facing     bool              `json:"facing"`
	Enabled    *circuit.Routed   `json:"enabled"`
}

func (il *Interlocking) Overview() Overview {
	ov := Overview{
		Sections: make([]SectionOverview, len(il.Sections.Sections)),
		Signals:  make([]SignalOverview, len(il.Signals)),
	}
	for i, s := range il.Sections.Sections {
		so := SectionOverview{
			Index:        i,
			Comment:      s.Comment,
			Kind:         s.Kind.String(),
			Occupied:     []uuid.UUID{},
			Route:        -1,
			DeadlockTrap: len(s.DeadlockActives) > 0,
		}
		for t := range s.State.Occupy {
			so.Occupied = append(so.Occupied, t)
		}
		slices.SortFunc(so.Occupied, func(a, b uuid.UUID) int { return strings.Compare(a.String(), b.String()) })
		if s.State.Reserved != nil {
			t := s.State.Reserved.Train
			so.Reserved = &t
		}
		if s.Kind == circuit.KindJunction {
			so.Route = s.JunctionLastRoute
		}
		ov.Sections[i] = so
	}
	for i, o := range il.Signals {
		aspect, _ := o.ThisSigMR(signal.FunctionNormal)
		if !o.IsNormal() {
			aspect = signal.AspectUnknown
		}
		ov.Signals[i] = SignalOverview{
			Index:      i,
			Section:    o.Section,
			Direction:  o.Direction,
			Aspect:     aspect,
			BlockState: o.BlockState(il),
			Hold:       o.Hold,
			Next:       o.NextSignal(il, signal.FunctionNormal),
			Facing:     o.Facing,
			Enabled:    o.Enabled,
		}
	}
	return ov
}
