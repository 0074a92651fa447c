package layout

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPathTo(t *testing.T) {
	y := InitTestbench2()
	west := y.MustLookupIndex("west")
	jw := y.MustLookupIndex("jw")
	loop := y.MustLookupIndex("loop")
	je := y.MustLookupIndex("je")
	east := y.MustLookupIndex("east")

	expected := []Step{{west, 0}, {jw, 1}, {y.MustLookupIndex("main"), 0}, {je, 0}, {east, 0}}
	got := y.PathTo(Step{west, 0}, east)
	if !cmp.Equal(got, expected) {
		t.Logf("PathTo expected: %#v", expected)
		t.Logf("PathTo got: %#v", got)
		t.Fatalf("PathTo diff: %s", cmp.Diff(expected, got))
	}

	expected = []Step{{east, 1}, {je, 1}, {loop, 1}}
	got = y.PathTo(Step{east, 1}, loop)
	if !cmp.Equal(got, expected) {
		t.Fatalf("PathTo diff: %s", cmp.Diff(expected, got))
	}
}

func TestPathToUnreachable(t *testing.T) {
	y := InitTestbench2()
	// going west from main never reaches east
	if got := y.PathTo(Step{y.MustLookupIndex("main"), 1}, y.MustLookupIndex("east")); got != nil {
		t.Fatalf("expected nil, got %#v", got)
	}
	if got := y.PathTo(Step{-1, 0}, 0); got != nil {
		t.Fatalf("expected nil, got %#v", got)
	}
}

func TestPathToSame(t *testing.T) {
	y := InitTestbench1()
	got := y.PathTo(Step{2, 1}, 2)
	if !cmp.Equal(got, []Step{{2, 1}}) {
		t.Fatalf("got %#v", got)
	}
}

func TestPathToRing(t *testing.T) {
	y := InitTestbench4()
	got := y.PathTo(Step{1, 0}, 0)
	expected := []Step{{1, 0}, {2, 0}, {3, 0}, {0, 0}}
	if !cmp.Equal(got, expected) {
		t.Fatalf("PathTo diff: %s", cmp.Diff(expected, got))
	}
}
