package snapshot

import (
	_ "embed"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"nyiyui.ca/hato/shingo/tal/circuit"
	"nyiyui.ca/hato/shingo/tal/interlock"
	"nyiyui.ca/hato/shingo/tal/layout"
	"nyiyui.ca/hato/shingo/tal/signal"
)

//go:embed testdata/types.yaml
var typesYAML []byte

var (
	trainA = uuid.MustParse("3d0f6a8e-51c2-4b7e-8f19-2a6c0d9e4f01")
	trainB = uuid.MustParse("3d0f6a8e-51c2-4b7e-8f19-2a6c0d9e4f02")
)

func build(t *testing.T, y *layout.Topology) *interlock.Interlocking {
	types, err := signal.ParseTypes(typesYAML)
	if err != nil {
		t.Fatal(err)
	}
	il, err := interlock.Build(y, types)
	if err != nil {
		t.Fatal(err)
	}
	return il
}

// busy returns a passing loop with a train routed into the loop, a hold and a deadlock trap.
func busy(t *testing.T) *interlock.Interlocking {
	y := layout.InitTestbench2()
	il := build(t, y)
	if _, err := il.RequestRoute(trainA, layout.Step{Section: y.MustLookupIndex("west"), Direction: 0}, y.MustLookupIndex("loop")); err != nil {
		t.Fatal(err)
	}
	if err := il.Occupy(trainA, y.MustLookupIndex("west"), 0); err != nil {
		t.Fatal(err)
	}
	if err := il.Claim(trainB, y.MustLookupIndex("east"), 1); err != nil {
		t.Fatal(err)
	}
	if err := il.SetDeadlockTrap(trainA, trainB, []int{y.MustLookupIndex("je")}); err != nil {
		t.Fatal(err)
	}
	if err := il.SetHold(1, signal.HoldManualLock); err != nil {
		t.Fatal(err)
	}
	il.Signals[3].RequestPermission()
	return il
}

func TestCaptureApply(t *testing.T) {
	s := Capture(busy(t))
	il := build(t, layout.InitTestbench2())
	if err := Apply(il, s); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(s, Capture(il)); diff != "" {
		t.Fatalf("state after Apply (-want +got):\n%s", diff)
	}
	if err := il.Sections.CheckAlignment(); err != nil {
		t.Fatal(err)
	}
	if got, _ := il.NextSignal(0, signal.FunctionNormal); got != 2 {
		t.Fatalf("next signal = %d, want the loop signal", got)
	}
	if a, _, _ := il.ThisSigMR(1, signal.FunctionNormal); a != signal.AspectStop {
		t.Fatalf("held signal shows %s", a)
	}
	// sections must not share state with the snapshot
	il.Section(0).State.Occupy[trainB] = 0
	if len(s.Sections[0].State.Occupy) != 0 {
		t.Fatal("Apply aliased the snapshot")
	}
}

func TestApplyMismatch(t *testing.T) {
	s := Capture(busy(t))
	il := build(t, layout.InitTestbench1())
	before := Capture(il)
	err := Apply(il, s)
	if !errors.Is(err, ErrTopologyMismatch) {
		t.Fatalf("got %v, want ErrTopologyMismatch", err)
	}
	if diff := cmp.Diff(before, Capture(il)); diff != "" {
		t.Fatalf("state changed (-before +after):\n%s", diff)
	}

	il = build(t, layout.InitTestbench2())
	s.Signals = s.Signals[:2]
	if err := Apply(il, s); !errors.Is(err, ErrTopologyMismatch) {
		t.Fatalf("signal count: got %v", err)
	}
}

func TestApplyInvalid(t *testing.T) {
	y := layout.InitTestbench2()
	il := build(t, y)
	before := Capture(il)
	s := Capture(il)
	s.Sections[0].ActivePins[0][0].Link = 40
	if err := Apply(il, s); !errors.Is(err, ErrTopologyMismatch) {
		t.Fatalf("got %v", err)
	}
	west := y.MustLookupIndex("west")
	east := y.MustLookupIndex("east")
	s = Capture(il)
	s.Sections[west].ActivePins[0][0].Direction = 5
	if err := Apply(il, s); !errors.Is(err, ErrTopologyMismatch) {
		t.Fatalf("bad direction: got %v", err)
	}
	s = Capture(il)
	s.Sections[west].ActivePins[0][0] = circuit.Pin{Link: east, Direction: 1}
	if err := Apply(il, s); !errors.Is(err, ErrTopologyMismatch) {
		t.Fatalf("link to a section not joined to west: got %v", err)
	}
	s = Capture(il)
	jw := y.MustLookupIndex("jw")
	s.Sections[jw].ActivePins = [2][2]circuit.Pin{{circuit.NoPin, circuit.NoPin}, {circuit.NoPin, circuit.NoPin}}
	s.Sections[west].ActivePins[0] = il.Sections.Sections[west].Pins[0]
	if err := Apply(il, s); !errors.Is(err, ErrTopologyMismatch) {
		t.Fatalf("link with no link back: got %v", err)
	}
	s = Capture(il)
	s.Signals[len(s.Signals)-1].Hold = 17
	if err := Apply(il, s); err == nil {
		t.Fatal("invalid hold accepted")
	}
	if diff := cmp.Diff(before, Capture(il)); diff != "" {
		t.Fatalf("state changed (-before +after):\n%s", diff)
	}
}

func TestApplyRestoredEvent(t *testing.T) {
	il := build(t, layout.InitTestbench2())
	ch := make(chan interlock.Event, 4)
	il.Events.Subscribe("test", ch)
	defer il.Events.Unsubscribe(ch)
	if err := Apply(il, Capture(il)); err != nil {
		t.Fatal(err)
	}
	if e := <-ch; e.Kind != interlock.EventRestored {
		t.Fatalf("got %s", e.Kind)
	}
}

func TestStore(t *testing.T) {
	s := Capture(busy(t))
	path := filepath.Join(t.TempDir(), "shingo.db")
	st, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := st.Load(); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("empty store: got %v", err)
	}
	if err := st.Save(s); err != nil {
		t.Fatal(err)
	}
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}

	st, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	got, err := st.Load()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(s, got); diff != "" {
		t.Fatalf("loaded snapshot (-want +got):\n%s", diff)
	}
}

func TestStoreShrink(t *testing.T) {
	st, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	if err := st.Save(Capture(busy(t))); err != nil {
		t.Fatal(err)
	}
	small := Capture(build(t, layout.InitTestbench1()))
	if err := st.Save(small); err != nil {
		t.Fatal(err)
	}
	got, err := st.Load()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(small, got); diff != "" {
		t.Fatalf("loaded snapshot (-want +got):\n%s", diff)
	}
}

func TestParseKey(t *testing.T) {
	type testCase struct {
		key   string
		index int
		ok    bool
	}
	for _, tc := range []testCase{
		{sectionKey(12), 12, true},
		{"section:000003:state", 3, true},
		{"section:x:state", 0, false},
		{"section:-00001:state", 0, false},
		{"section:000003:hold", 0, false},
		{"meta:sections", 0, false},
	} {
		t.Run(tc.key, func(t *testing.T) {
			i, ok := parseKey(tc.key, "section", "state")
			if i != tc.index || ok != tc.ok {
				t.Fatalf("got %d %t", i, ok)
			}
		})
	}
}
