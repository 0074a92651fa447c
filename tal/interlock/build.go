package interlock

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"nyiyui.ca/hato/shingo/notify"
	"nyiyui.ca/hato/shingo/tal/circuit"
	"nyiyui.ca/hato/shingo/tal/layout"
	"nyiyui.ca/hato/shingo/tal/signal"
)

// builder holds the tables needed while building. It is dropped once Build returns.
type builder struct {
	y     *layout.Topology
	types *signal.Types
	// signals holds nil for tombstoned objects until compacted.
	signals []*signal.Object
	// headRefs maps a track item id to the index of the object holding its head.
	headRefs map[int]int
	// worldRefs maps a track item id to the placement its head belongs to.
	worldRefs map[int]int
	// placements that survived readPlacements, by index into y.Placements.
	placements []int
	found      int
}

func drop(reason string, format string, args ...interface{}) {
	zap.S().Warnf(format, args...)
	buildSignalsDropped.WithLabelValues(reason).Inc()
}

// readPlacements builds the placement reference table.
func (b *builder) readPlacements() {
	for pi, p := range b.y.Placements {
		shape, ok := b.y.LookupShape(p.Shape)
		if p.Shape == "" || !ok {
			drop("unresolved-shape", "placement %d: unresolved shape %q", pi, p.Shape)
			continue
		}
		valid := true
		for _, ref := range p.Heads {
			if _, ok := b.y.LookupItem(ref.Item); !ok {
				drop("missing-item", "placement %d: item %d does not exist", pi, ref.Item)
				valid = false
				break
			}
			if ref.Head < 0 || ref.Head >= len(shape.Heads) {
				drop("unresolved-shape", "placement %d: shape %s has no head %d", pi, shape.Name, ref.Head)
				valid = false
				break
			}
			if other, ok := b.worldRefs[ref.Item]; ok {
				drop("duplicate", "placement %d: item %d already placed by placement %d", pi, ref.Item, other)
				valid = false
				break
			}
		}
		if !valid {
			continue
		}
		for _, ref := range p.Heads {
			b.worldRefs[ref.Item] = pi
		}
		b.placements = append(b.placements, pi)
	}
}

// scan creates one object per signal or speed limit item, in section order.
func (b *builder) scan() {
	items := make([]layout.Item, len(b.y.Items))
	copy(items, b.y.Items)
	slices.SortStableFunc(items, func(a, c layout.Item) int { return a.Section - c.Section })
	for _, it := range items {
		var kind signal.Kind
		switch it.Type {
		case layout.ItemSignal:
			kind = signal.KindSignal
		case layout.ItemSpeedPost:
			if it.Speed == nil {
				continue
			}
			kind = signal.KindSpeedPost
		case layout.ItemMilepost:
			continue
		default:
			zap.S().Warnf("item %d: unknown type %q", it.ID, it.Type)
			continue
		}
		index := len(b.signals)
		if other, ok := b.headRefs[it.ID]; ok {
			drop("duplicate", "item %d: already used by signal %d", it.ID, other)
			b.signals = append(b.signals, nil)
			continue
		}
		if it.Section < 0 || it.Section >= len(b.y.Sections) {
			drop("no-section", "item %d: section %d does not exist", it.ID, it.Section)
			b.signals = append(b.signals, nil)
			continue
		}
		if it.Direction != 0 && it.Direction != 1 {
			drop("no-section", "item %d: invalid direction %d", it.ID, it.Direction)
			b.signals = append(b.signals, nil)
			continue
		}
		o := signal.NewObject(index, kind)
		if kind == signal.KindSpeedPost {
			o.AddHead(signal.NewSpeedHead(index, it.ID, signal.SpeedInfo(*it.Speed)))
		} else {
			o.AddHead(signal.NewHead(index, it.ID, it.SignalType))
		}
		o.Section, o.Offset, o.Direction = it.Section, it.Offset, it.Direction
		b.headRefs[it.ID] = index
		b.signals = append(b.signals, o)
		b.found++
	}
}

// mergeHeads merges the heads of each placement into the object of its first head.
// Merged objects are tombstoned.
func (b *builder) mergeHeads() {
	for _, pi := range b.placements {
		p := b.y.Placements[pi]
		shape, _ := b.y.LookupShape(p.Shape)
		var objs []int
		for _, ref := range p.Heads {
			oi, ok := b.headRefs[ref.Item]
			if !ok || b.signals[oi] == nil {
				zap.S().Infof("placement %d: item %d has no signal", pi, ref.Item)
				continue
			}
			for _, h := range b.signals[oi].Heads {
				if h.TrackItem == ref.Item {
					h.BackFacing = shape.Heads[ref.Head].BackFacing
					h.Description = shape.Heads[ref.Head].Description
				}
			}
			if !slices.Contains(objs, oi) {
				objs = append(objs, oi)
			}
		}
		if len(objs) < 2 {
			continue
		}
		first := b.signals[objs[0]]
		same := true
		for _, oi := range objs[1:] {
			if b.signals[oi].Section != first.Section {
				zap.S().Warnf("placement %d: heads on sections %d and %d, not merging", pi, first.Section, b.signals[oi].Section)
				same = false
				break
			}
		}
		if !same {
			continue
		}
		for _, oi := range objs[1:] {
			for _, h := range b.signals[oi].Heads {
				first.AddHead(h)
				b.headRefs[h.TrackItem] = first.Index
			}
			b.signals[oi] = nil
		}
	}
}

// compact removes tombstones and renumbers the remaining objects and every reference to them.
func (b *builder) compact() {
	remap := make([]int, len(b.signals))
	live := b.signals[:0]
	for i, o := range b.signals {
		if o == nil {
			remap[i] = circuit.NoSignal
			continue
		}
		remap[i] = len(live)
		o.SetIndex(len(live))
		live = append(live, o)
	}
	for i := len(live); i < len(b.signals); i++ {
		b.signals[i] = nil
	}
	b.signals = live
	for item, oi := range b.headRefs {
		if remap[oi] == circuit.NoSignal {
			delete(b.headRefs, item)
		} else {
			b.headRefs[item] = remap[oi]
		}
	}
}

// splitBackfacing moves back-facing heads to a new object facing the other way.
func (b *builder) splitBackfacing() {
	n := len(b.signals)
	for i := 0; i < n; i++ {
		o := b.signals[i]
		var front, back []*signal.Head
		for _, h := range o.Heads {
			if h.BackFacing {
				back = append(back, h)
			} else {
				front = append(front, h)
			}
		}
		if len(back) == 0 {
			continue
		}
		split := signal.NewObject(len(b.signals), o.Kind)
		for _, h := range back {
			split.AddHead(h)
			b.headRefs[h.TrackItem] = split.Index
		}
		b.anchor(split, o)
		b.signals = append(b.signals, split)
		o.Heads = nil
		o.TrackItems = nil
		for _, h := range front {
			o.AddHead(h)
		}
		if len(front) == 0 {
			b.signals[i] = nil
			continue
		}
		b.anchor(o, o)
	}
}

// anchor places o where the item of its first head is, falling back to from.
func (b *builder) anchor(o, from *signal.Object) {
	o.Section, o.Offset, o.Direction = from.Section, from.Offset, from.Direction
	it, ok := b.y.LookupItem(o.Heads[0].TrackItem)
	if !ok {
		return
	}
	o.Offset, o.Direction = it.Offset, it.Direction
	if it.Section >= 0 && it.Section < len(b.y.Sections) {
		o.Section = it.Section
	}
}

func (b *builder) setTypes() (numClearAheadMax int) {
	for _, o := range b.signals {
		o.SetTypes(b.types)
		if o.NumClearAheadMax > numClearAheadMax {
			numClearAheadMax = o.NumClearAheadMax
		}
	}
	return numClearAheadMax
}

// Build builds an interlocking from y. A single malformed item or placement is dropped with a
// warning; only problems with the topology as a whole return an error.
func Build(y *layout.Topology, types *signal.Types) (*Interlocking, error) {
	if y == nil {
		return nil, fmt.Errorf("no topology")
	}
	if err := y.Validate(); err != nil {
		return nil, fmt.Errorf("topology: %w", err)
	}
	b := &builder{
		y:         y,
		types:     types,
		headRefs:  map[int]int{},
		worldRefs: map[int]int{},
	}
	b.readPlacements()
	b.scan()
	b.mergeHeads()
	b.compact()
	b.splitBackfacing()
	b.compact()
	il := &Interlocking{
		Sections: *circuit.New(y),
		Types:    types,
		topology: y,
	}
	il.NumClearAheadMax = b.setTypes()
	for _, o := range b.signals {
		if s := il.Sections.Section(o.Section); s.Kind == circuit.KindEmpty {
			drop("no-section", "%s: section %s has no track", o, s)
			b.signals[o.Index] = nil
		}
	}
	b.compact()
	il.Signals = b.signals
	il.attachItems()
	il.setEndSignals()
	for i, s := range il.Sections.Sections {
		if s.Kind == circuit.KindJunction {
			if err := il.Sections.AlignJunction(i, s.JunctionDefaultRoute); err != nil {
				zap.S().Warnf("junction %s: %s", s, err)
			}
		}
	}
	for _, o := range il.Signals {
		o.UpdateFacing(il)
		o.SetDefaultNextSignal(il)
		if o.Facing {
			next := il.Sections.Section(o.NextSection)
			next.LinkedSignals = append(next.LinkedSignals, o.Index)
		}
	}
	il.Sections.OnSwitch = il.onSwitch
	il.Sections.OnWalk = func(hops int) { traversalHops.Observe(float64(hops)) }
	il.events, il.Events = notify.NewMultiplexerSender[Event]("interlock")
	zap.S().Infof("built %d sections and %d signals (%d found)", len(il.Sections.Sections), len(il.Signals), b.found)
	return il, nil
}

// attachItems lists signals, speed posts and mileposts on their sections, sorted by offset.
func (il *Interlocking) attachItems() {
	for _, o := range il.Signals {
		kind := circuit.ItemSignal
		if o.Kind == signal.KindSpeedPost {
			kind = circuit.ItemSpeedPost
		}
		s := il.Sections.Sections[o.Section]
		s.Items[o.Direction] = append(s.Items[o.Direction], circuit.Item{Kind: kind, Ref: o.Index, Offset: o.Offset})
	}
	for _, it := range il.topology.Items {
		if it.Type != layout.ItemMilepost {
			continue
		}
		s := il.Sections.Section(it.Section)
		if s == nil || (it.Direction != 0 && it.Direction != 1) {
			zap.S().Warnf("milepost %d: not on a section", it.ID)
			continue
		}
		s.Items[it.Direction] = append(s.Items[it.Direction], circuit.Item{Kind: circuit.ItemMilepost, Ref: circuit.NoSignal, Offset: it.Offset, Milepost: it.Milepost})
	}
	for _, s := range il.Sections.Sections {
		for dir := range s.Items {
			slices.SortStableFunc(s.Items[dir], func(a, b circuit.Item) int {
				switch {
				case a.Offset < b.Offset:
					return -1
				case a.Offset > b.Offset:
					return 1
				default:
					return 0
				}
			})
		}
	}
}

// setEndSignals makes each normal signal the end signal of its section in its direction. Where two
// compete, the one further along wins.
func (il *Interlocking) setEndSignals() {
	for _, o := range il.Signals {
		if o.Kind != signal.KindSignal || !o.IsNormal() {
			continue
		}
		s := il.Sections.Sections[o.Section]
		if prev := s.EndSignals[o.Direction]; prev != circuit.NoSignal {
			other := il.Signals[prev]
			if other.Offset >= o.Offset {
				zap.S().Warnf("section %s: %s is behind end signal %s, not bounding the section", s, o, other)
				continue
			}
			zap.S().Warnf("section %s: %s replaces %s as end signal", s, o, other)
			other.NextSection, other.NextDirection = circuit.NoLink, 0
		}
		s.EndSignals[o.Direction] = o.Index
		next := s.StaticNext(o.Direction)
		o.NextSection, o.NextDirection = next.Link, next.Direction
		if !next.Valid() {
			o.NextDirection = 0
		}
	}
}
