package circuit

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"nyiyui.ca/hato/shingo/tal/layout"
)

func TestInitActivePins(t *testing.T) {
	y := layout.InitTestbench2()
	n := testbench(t, y)
	west := n.Sections[y.MustLookupIndex("west")]
	jw := n.Sections[y.MustLookupIndex("jw")]
	main := n.Sections[y.MustLookupIndex("main")]
	if want := (Pin{Link: jw.Index, Direction: 1}); west.ActivePins[0][0] != want {
		t.Fatalf("west active = %s, want %s", west.ActivePins[0][0], want)
	}
	if west.EndIsTrailingJunction[0] {
		t.Fatal("west runs into the single end of jw, not a trailing end")
	}
	if !cmp.Equal(jw.ActivePins[1], [2]Pin{NoPin, NoPin}) {
		t.Fatalf("jw switchable end is set: %v", jw.ActivePins[1])
	}
	if main.ActivePins[0][0].Valid() || main.ActivePins[1][0].Valid() {
		t.Fatalf("main links into junctions must be unset: %v", main.ActivePins)
	}
	if !main.EndIsTrailingJunction[0] || !main.EndIsTrailingJunction[1] {
		t.Fatalf("main EndIsTrailingJunction = %v", main.EndIsTrailingJunction)
	}
}

func TestAlignJunction(t *testing.T) {
	y := layout.InitTestbench2()
	n := testbench(t, y)
	jw := y.MustLookupIndex("jw")
	main := y.MustLookupIndex("main")
	loop := y.MustLookupIndex("loop")
	var switched []int
	n.OnSwitch = func(s *Section, route int) {
		if s.Index != jw {
			t.Fatalf("OnSwitch for %s", s)
		}
		switched = append(switched, route)
	}
	if err := n.AlignJunction(jw, 1); err != nil {
		t.Fatal(err)
	}
	if err := n.CheckAlignment(); err != nil {
		t.Fatal(err)
	}
	if got := n.Sections[jw].GetNextActiveLink(1, y.MustLookupIndex("west")); got.Link != loop {
		t.Fatalf("next from jw = %s, want loop", got)
	}
	if !n.Sections[loop].ActivePins[1][0].Valid() {
		t.Fatal("loop does not link back to jw")
	}
	if err := n.AlignJunction(jw, 0); err != nil {
		t.Fatal(err)
	}
	if got := n.Sections[jw].GetNextActiveLink(1, y.MustLookupIndex("west")); got.Link != main {
		t.Fatalf("next from jw = %s, want main", got)
	}
	if n.Sections[jw].JunctionLastRoute != 0 {
		t.Fatalf("JunctionLastRoute = %d", n.Sections[jw].JunctionLastRoute)
	}
	if !cmp.Equal(switched, []int{1, 0}) {
		t.Fatalf("switched = %v", switched)
	}
	if err := n.AlignJunction(main, 0); err == nil {
		t.Fatal("aligning a plain section must fail")
	}
	if err := n.AlignJunction(jw, 2); err == nil {
		t.Fatal("route 2 must fail")
	}
}

// Every link set by alignment has a link back.
func TestAlignReciprocity(t *testing.T) {
	y := layout.InitTestbench2()
	n := testbench(t, y)
	for si, s := range n.Sections {
		for dir := 0; dir < 2; dir++ {
			for _, p := range s.Pins[dir] {
				if !p.Valid() {
					continue
				}
				n.AlignSwitchPins(si, p.Link)
				if err := n.CheckAlignment(); err != nil {
					t.Fatalf("after aligning %s to %d: %s", s, p.Link, err)
				}
				next := s.GetNextActiveLink(dir, -1)
				if s.Kind != KindCrossover && next != p {
					t.Fatalf("%s: next in direction %d = %s, want %s", s, dir, next, p)
				}
			}
		}
	}
}

func TestAlignSwitchPinsNotNeighbour(t *testing.T) {
	y := layout.InitTestbench2()
	n := testbench(t, y)
	jw := y.MustLookupIndex("jw")
	before := n.Sections[jw].ActivePins
	n.AlignSwitchPins(jw, y.MustLookupIndex("east"))
	n.AlignSwitchPins(jw, NoLink)
	n.AlignSwitchPins(100, jw)
	if diff := cmp.Diff(before, n.Sections[jw].ActivePins); diff != "" {
		t.Fatalf("active pins changed (-before +after):\n%s", diff)
	}
}

func TestDeAlignSwitchPins(t *testing.T) {
	y := layout.InitTestbench2()
	n := testbench(t, y)
	jw := y.MustLookupIndex("jw")
	main := y.MustLookupIndex("main")
	if err := n.AlignJunction(jw, 0); err != nil {
		t.Fatal(err)
	}
	n.DeAlignSwitchPins(jw)
	if n.Sections[jw].ActivePins[1][0].Valid() || n.Sections[main].ActivePins[1][0].Valid() {
		t.Fatal("route still set after de-align")
	}
	if !n.Sections[jw].ActivePins[0][0].Valid() {
		t.Fatal("single end of jw must stay set")
	}
	if err := n.CheckAlignment(); err != nil {
		t.Fatal(err)
	}
}

func TestCrossover(t *testing.T) {
	y := layout.InitTestbench3()
	n := testbench(t, y)
	aw := y.MustLookupIndex("a-west")
	bw := y.MustLookupIndex("b-west")
	x := y.MustLookupIndex("x")
	ae := y.MustLookupIndex("a-east")
	if n.Sections[aw].ActivePins[0][0].Valid() {
		t.Fatal("link into crossover must start unset")
	}
	route := Route{{aw, 0}, {x, 0}, {ae, 0}}
	n.Reserve(x, routed(uuidA, 0), route)
	if err := n.CheckAlignment(); err != nil {
		t.Fatal(err)
	}
	if got := n.Sections[x].GetNextActiveLink(0, aw); got.Link != ae {
		t.Fatalf("from a-west got %s, want a-east", got)
	}
	if got := n.Sections[x].GetNextActiveLink(0, bw); got.Valid() {
		t.Fatalf("from b-west got %s, want none", got)
	}
	if got := n.Sections[x].GetNextActiveLink(0, ae); got.Valid() {
		t.Fatalf("from a stranger got %s, want none", got)
	}
}

func TestCheckAlignmentMisaligned(t *testing.T) {
	y := layout.InitTestbench2()
	n := testbench(t, y)
	jw := y.MustLookupIndex("jw")
	n.Sections[jw].ActivePins[1][0] = n.Sections[jw].Pins[1][0]
	if err := n.CheckAlignment(); err == nil {
		t.Fatal("one-way link not reported")
	}
}

func TestIsFacing(t *testing.T) {
	y := layout.InitTestbench2()
	n := testbench(t, y)
	jw := n.Sections[y.MustLookupIndex("jw")]
	if !jw.IsFacing(1) || jw.IsFacing(0) {
		t.Fatal("jw faces direction 1 only")
	}
	if n.Sections[y.MustLookupIndex("main")].IsFacing(0) {
		t.Fatal("main is not a junction")
	}
	if got := jw.StaticNext(1); got.Link != y.MustLookupIndex("main") {
		t.Fatalf("StaticNext = %s", got)
	}
}
