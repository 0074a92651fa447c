package signal

import (
	_ "embed"
	"testing"

	"nyiyui.ca/hato/shingo/tal/circuit"
	"nyiyui.ca/hato/shingo/tal/layout"
)

//go:embed testdata/types.yaml
var typesYAML []byte

func loadTypes(t *testing.T) *Types {
	ts, err := ParseTypes(typesYAML)
	if err != nil {
		t.Fatalf("ParseTypes: %s", err)
	}
	return ts
}

type testGraph struct {
	n    *circuit.Network
	sigs []*Object
}

func (g *testGraph) Section(i int) *circuit.Section { return g.n.Section(i) }

func (g *testGraph) Signal(i int) *Object {
	if i < 0 || i >= len(g.sigs) {
		return nil
	}
	return g.sigs[i]
}

func (g *testGraph) MaxHops() int { return g.n.MaxHops() }

// add places a one-head signal of typeName. A normal signal at the end of its section bounds it.
func (g *testGraph) add(t *testing.T, types *Types, section int, offset float64, dir int, typeName string) *Object {
	o := NewObject(len(g.sigs), KindSignal)
	o.AddHead(NewHead(o.Index, 1000+o.Index, typeName))
	o.SetTypes(types)
	o.Section, o.Offset, o.Direction = section, offset, dir
	s := g.n.Sections[section]
	s.Items[dir] = append(s.Items[dir], circuit.Item{Kind: circuit.ItemSignal, Ref: o.Index, Offset: offset})
	if o.IsNormal() && offset == s.Length {
		s.EndSignals[dir] = o.Index
		next := s.StaticNext(dir)
		o.NextSection, o.NextDirection = next.Link, next.Direction
	}
	g.sigs = append(g.sigs, o)
	return o
}

func (g *testGraph) setup() {
	for _, o := range g.sigs {
		o.UpdateFacing(g)
		o.SetDefaultNextSignal(g)
	}
}

// line is testbench 1 with: 0 home at the end of a, 1 distant on b, 2 home at the end of c,
// 3 home at the end of d.
func line(t *testing.T) (*testGraph, *layout.Topology) {
	types := loadTypes(t)
	y := layout.InitTestbench1()
	g := &testGraph{n: circuit.New(y)}
	g.add(t, types, y.MustLookupIndex("a"), 400, 0, "home")
	g.add(t, types, y.MustLookupIndex("b"), 100, 0, "distant")
	g.add(t, types, y.MustLookupIndex("c"), 500, 0, "home")
	g.add(t, types, y.MustLookupIndex("d"), 300, 0, "home")
	g.setup()
	return g, y
}

// passingLoop is testbench 2 with home signals at the east end of west, main and loop, and east.
func passingLoop(t *testing.T) (*testGraph, *layout.Topology) {
	types := loadTypes(t)
	y := layout.InitTestbench2()
	g := &testGraph{n: circuit.New(y)}
	g.add(t, types, y.MustLookupIndex("west"), 500, 0, "home")
	g.add(t, types, y.MustLookupIndex("main"), 400, 0, "home")
	g.add(t, types, y.MustLookupIndex("loop"), 420, 0, "home")
	g.add(t, types, y.MustLookupIndex("east"), 500, 0, "home")
	g.setup()
	return g, y
}
