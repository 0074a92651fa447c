package interlock

import (
	_ "embed"
	"testing"

	"github.com/google/go-cmp/cmp"

	"nyiyui.ca/hato/shingo/tal/circuit"
	"nyiyui.ca/hato/shingo/tal/layout"
	"nyiyui.ca/hato/shingo/tal/signal"
)

//go:embed testdata/types.yaml
var typesYAML []byte

func build(t *testing.T, y *layout.Topology) *Interlocking {
	types, err := signal.ParseTypes(typesYAML)
	if err != nil {
		t.Fatalf("ParseTypes: %s", err)
	}
	il, err := Build(y, types)
	if err != nil {
		t.Fatalf("Build: %s", err)
	}
	if err := il.Sections.CheckAlignment(); err != nil {
		t.Fatalf("CheckAlignment: %s", err)
	}
	return il
}

func trackItems(il *Interlocking) [][]int {
	got := make([][]int, len(il.Signals))
	for i, o := range il.Signals {
		got[i] = o.TrackItems
	}
	return got
}

// checkIndices checks that every reference to a signal points at the right place.
func checkIndices(t *testing.T, il *Interlocking) {
	for i, o := range il.Signals {
		if o == nil {
			t.Fatalf("signal %d is nil", i)
		}
		if o.Index != i {
			t.Fatalf("signal %d has Index %d", i, o.Index)
		}
		if len(o.Heads) == 0 {
			t.Fatalf("signal %d has no heads", i)
		}
		for _, h := range o.Heads {
			if h.Owner != i {
				t.Fatalf("signal %d: head of item %d owned by %d", i, h.TrackItem, h.Owner)
			}
		}
	}
	for _, s := range il.Sections.Sections {
		for dir, items := range s.Items {
			for _, it := range items {
				if it.Kind == circuit.ItemMilepost {
					continue
				}
				o := il.Signal(it.Ref)
				if o == nil || o.Section != s.Index || o.Direction != dir || o.Offset != it.Offset {
					t.Fatalf("section %s: stale item %+v in direction %d", s, it, dir)
				}
			}
			if end := s.EndSignals[dir]; end != circuit.NoSignal {
				if o := il.Signal(end); o == nil || o.Section != s.Index || o.Direction != dir {
					t.Fatalf("section %s: stale end signal %d in direction %d", s, end, dir)
				}
			}
		}
	}
}

func TestBuildTestbench1(t *testing.T) {
	y := layout.InitTestbench1()
	il := build(t, y)
	checkIndices(t, il)
	want := [][]int{{100}, {101}, {102}, {103}, {106, 107}, {104}}
	if diff := cmp.Diff(want, trackItems(il)); diff != "" {
		t.Fatalf("track items (-want +got):\n%s", diff)
	}
	if il.Signals[2].Kind != signal.KindSpeedPost {
		t.Fatalf("signal 2 is a %s", il.Signals[2].Kind)
	}
	if il.NumClearAheadMax != 1 {
		t.Fatalf("NumClearAheadMax = %d", il.NumClearAheadMax)
	}
	c := il.Sections.Sections[y.MustLookupIndex("c")]
	if c.EndSignals != [2]int{3, 5} {
		t.Fatalf("c end signals = %v", c.EndSignals)
	}
	d := il.Sections.Sections[y.MustLookupIndex("d")]
	if len(d.Items[0]) != 2 || d.Items[0][0].Kind != circuit.ItemMilepost || d.Items[0][0].Milepost != "12.5" {
		t.Fatalf("d items = %+v", d.Items[0])
	}
	home := il.Signals[0]
	if !home.FixedRoute || home.DefaultNext[signal.FunctionNormal] != 3 || home.DefaultNext[signal.FunctionDistance] != 1 {
		t.Fatalf("home: fixed %t next %v", home.FixedRoute, home.DefaultNext)
	}
	if home.NextSection != y.MustLookupIndex("b") {
		t.Fatalf("home next section = %d", home.NextSection)
	}
	if got, _ := il.SpeedLimit(2, signal.FunctionSpeed); got != (signal.SpeedInfo{Pass: 80, Freight: 60}) {
		t.Fatalf("speed limit = %+v", got)
	}
	if il.Signals[4].NumNormalHeads != 1 || !il.Signals[4].HasFunction(signal.FunctionShunting) {
		t.Fatal("home-shunt must keep both heads")
	}
}

func TestSplitBackfacing(t *testing.T) {
	il := build(t, layout.InitTestbench1())
	var split []*signal.Object
	for _, o := range il.Signals {
		for _, item := range o.TrackItems {
			if item == 103 || item == 104 {
				split = append(split, o)
			}
		}
	}
	if len(split) != 2 {
		t.Fatalf("got %d objects for the double-back signal", len(split))
	}
	for _, o := range split {
		if len(o.Heads) != 1 {
			t.Fatalf("%s has %d heads", o, len(o.Heads))
		}
	}
	if split[0].Direction == split[1].Direction {
		t.Fatalf("both halves face direction %d", split[0].Direction)
	}
	if !split[1].Heads[0].BackFacing || split[0].Heads[0].BackFacing {
		t.Fatal("back-facing head on the wrong object")
	}
}

func TestSplitBackfacingOnly(t *testing.T) {
	y := layout.InitTestbench1()
	y.Shapes = append(y.Shapes, layout.Shape{Name: "back", Heads: []layout.ShapeHead{{BackFacing: true}}})
	y.Placements[0] = layout.Placement{Shape: "back", Heads: []layout.HeadRef{{Item: 100}}}
	il := build(t, y)
	checkIndices(t, il)
	want := [][]int{{101}, {102}, {103}, {106, 107}, {100}, {104}}
	if diff := cmp.Diff(want, trackItems(il)); diff != "" {
		t.Fatalf("track items (-want +got):\n%s", diff)
	}
	if o := il.Signals[4]; o.Section != y.MustLookupIndex("a") || o.Direction != 0 || o.Offset != 400 {
		t.Fatalf("moved signal at %d/%d/%f", o.Section, o.Direction, o.Offset)
	}
}

func TestBuildDrops(t *testing.T) {
	type testCase struct {
		name   string
		modify func(y *layout.Topology)
		want   [][]int
	}
	base := [][]int{{100}, {101}, {102}, {103}, {106, 107}, {104}}
	for _, tc := range []testCase{
		{"none", func(y *layout.Topology) {}, base},
		{"duplicate item", func(y *layout.Topology) {
			y.Items = append(y.Items, layout.Item{ID: 101, Type: layout.ItemSignal, Section: 2, Offset: 50, SignalType: "home"})
		}, base},
		{"missing section", func(y *layout.Topology) {
			y.Items = append(y.Items, layout.Item{ID: 150, Type: layout.ItemSignal, Section: 99, SignalType: "home"})
		}, base},
		{"bad direction", func(y *layout.Topology) {
			y.Items = append(y.Items, layout.Item{ID: 151, Type: layout.ItemSignal, Section: 1, Direction: 2, SignalType: "home"})
		}, base},
		{"speed post without speed", func(y *layout.Topology) {
			y.Items = append(y.Items, layout.Item{ID: 152, Type: layout.ItemSpeedPost, Section: 1})
		}, base},
		{"unresolved shape", func(y *layout.Topology) {
			y.Placements[3].Shape = "nope"
		}, [][]int{{100}, {101}, {102}, {103}, {106}, {107}, {104}}},
		{"placement with missing item", func(y *layout.Topology) {
			y.Placements[3].Heads = append(y.Placements[3].Heads, layout.HeadRef{Item: 999, Head: 0})
		}, [][]int{{100}, {101}, {102}, {103}, {106}, {107}, {104}}},
		{"heads on different sections", func(y *layout.Topology) {
			y.Placements = append(y.Placements[:0:0], single100(), layout.Placement{Shape: "home-shunt", Heads: []layout.HeadRef{{Item: 101, Head: 0}, {Item: 106, Head: 1}}})
		}, [][]int{{100}, {101}, {102}, {103}, {104}, {106}, {107}}},
		{"placed twice", func(y *layout.Topology) {
			y.Placements = append(y.Placements, layout.Placement{Shape: "home-shunt", Heads: []layout.HeadRef{{Item: 100, Head: 0}, {Item: 101, Head: 1}}})
		}, base},
	} {
		t.Run(tc.name, func(t *testing.T) {
			y := layout.InitTestbench1()
			tc.modify(y)
			il := build(t, y)
			checkIndices(t, il)
			if diff := cmp.Diff(tc.want, trackItems(il)); diff != "" {
				t.Fatalf("track items (-want +got):\n%s", diff)
			}
		})
	}
}

func single100() layout.Placement {
	return layout.Placement{Shape: "single", Heads: []layout.HeadRef{{Item: 100, Head: 0}}}
}

func TestBuildEmptySection(t *testing.T) {
	y := layout.InitTestbench1()
	y.Sections[2].Kind = layout.KindEmpty
	il := build(t, y)
	checkIndices(t, il)
	for _, o := range il.Signals {
		if o.Section == 2 {
			t.Fatalf("%s left on an empty section", o)
		}
	}
}

func TestBuildInvalid(t *testing.T) {
	if _, err := Build(nil, nil); err == nil {
		t.Fatal("nil topology accepted")
	}
	if _, err := Build(&layout.Topology{}, nil); err == nil {
		t.Fatal("empty topology accepted")
	}
}

func TestBuildUnknownTypes(t *testing.T) {
	il, err := Build(layout.InitTestbench1(), nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, o := range il.Signals {
		if o.IsNormal() {
			t.Fatalf("%s is normal without types", o)
		}
	}
	if il.Signals[2].Heads[0].Function != signal.FunctionSpeed {
		t.Fatal("speed post lost its function")
	}
}

func TestBuildPassingLoop(t *testing.T) {
	y := layout.InitTestbench2()
	il := build(t, y)
	checkIndices(t, il)
	jw := il.Sections.Sections[y.MustLookupIndex("jw")]
	je := il.Sections.Sections[y.MustLookupIndex("je")]
	if jw.JunctionLastRoute != 0 || !jw.ActivePins[1][0].Valid() {
		t.Fatal("jw not aligned to its default route")
	}
	if !cmp.Equal(jw.LinkedSignals, []int{0}) || !cmp.Equal(je.LinkedSignals, []int{4}) {
		t.Fatalf("linked signals: jw %v, je %v", jw.LinkedSignals, je.LinkedSignals)
	}
	if !il.Signals[0].Facing || il.Signals[1].Facing {
		t.Fatal("facing")
	}
	if il.Signals[0].FixedRoute {
		t.Fatal("route through jw must not be fixed")
	}
	if got, _ := il.NextSignal(0, signal.FunctionNormal); got != 1 {
		t.Fatalf("next signal = %d", got)
	}
	if got := il.Distance(y.MustLookupIndex("west"), 100, 0, y.MustLookupIndex("east"), 50); got != 910 {
		t.Fatalf("distance = %f", got)
	}
	if got, err := il.DistanceToSignal(y.MustLookupIndex("west"), 100, 0, 3); err != nil || got != 1360 {
		t.Fatalf("distance to signal = %f %v", got, err)
	}
}
