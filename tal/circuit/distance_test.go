package circuit

import (
	"testing"

	"nyiyui.ca/hato/shingo/tal/layout"
)

func TestGetDistanceBetweenObjects(t *testing.T) {
	y := layout.InitTestbench2()
	n := testbench(t, y)
	west := y.MustLookupIndex("west")
	east := y.MustLookupIndex("east")
	if got := n.GetDistanceBetweenObjects(west, 100, 0, east, 50); got != -1 {
		t.Fatalf("unaligned junctions: got %f", got)
	}
	for _, j := range []string{"jw", "je"} {
		if err := n.AlignJunction(y.MustLookupIndex(j), 0); err != nil {
			t.Fatal(err)
		}
	}
	var walks []int
	n.OnWalk = func(hops int) { walks = append(walks, hops) }
	type testCase struct {
		name       string
		from       int
		fromOffset float64
		dir        int
		to         int
		toOffset   float64
		want       float64
	}
	for _, tc := range []testCase{
		{"same", west, 100, 0, west, 100, 0},
		{"ahead", west, 100, 0, west, 300, 200},
		{"through main", west, 100, 0, east, 50, 500 + 30 + 400 + 30 + 50 - 100},
		{"against", east, 10, 1, west, 20, 500 + 30 + 400 + 30 + 20 - 10},
		{"off route", west, 0, 0, y.MustLookupIndex("loop"), 0, -1},
		{"bad start", -1, 0, 0, east, 0, -1},
		{"bad end", west, 0, 0, 99, 0, -1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := n.GetDistanceBetweenObjects(tc.from, tc.fromOffset, tc.dir, tc.to, tc.toOffset)
			if got != tc.want {
				t.Fatalf("got %f, want %f", got, tc.want)
			}
		})
	}
	if len(walks) == 0 {
		t.Fatal("OnWalk never called")
	}
}

func TestGetDistanceRing(t *testing.T) {
	y := layout.InitTestbench4()
	spur := y.Append(layout.Buffer("spur"))
	n := testbench(t, y)
	if got := n.GetDistanceBetweenObjects(0, 30, 0, 3, 10); got != 280 {
		t.Fatalf("got %f, want 280", got)
	}
	// the walk comes back round to the start without finding spur
	if got := n.GetDistanceBetweenObjects(0, 30, 0, spur, 0); got != 370 {
		t.Fatalf("got %f, want 370", got)
	}
}
