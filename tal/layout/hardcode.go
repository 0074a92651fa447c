package layout

func single(item int) Placement {
	return Placement{Shape: "single", Heads: []HeadRef{{Item: item, Head: 0}}}
}

var testbenchShapes = []Shape{
	{Name: "single", Heads: []ShapeHead{{Description: "main"}}},
	{Name: "double-back", Heads: []ShapeHead{{Description: "front"}, {Description: "back", BackFacing: true}}},
	{Name: "home-shunt", Heads: []ShapeHead{{Description: "main"}, {Description: "shunt"}}},
}

// InitTestbench1 is a plain line between two buffers.
// Going east (direction 0): a, b, c, d.
func InitTestbench1() *Topology {
	y := Connect([]Section{
		Buffer("buffer-w"),
		Straight("a", 400),
		Straight("b", 600),
		Straight("c", 500),
		Straight("d", 300),
		Buffer("buffer-e"),
	})
	y.Items = []Item{
		{ID: 100, Type: ItemSignal, Section: 1, Offset: 400, Direction: 0, SignalType: "home"},
		{ID: 101, Type: ItemSignal, Section: 2, Offset: 100, Direction: 0, SignalType: "distant"},
		{ID: 102, Type: ItemSpeedPost, Section: 2, Offset: 300, Direction: 0, Speed: &Speed{Pass: 80, Freight: 60}},
		{ID: 103, Type: ItemSignal, Section: 3, Offset: 500, Direction: 0, SignalType: "home"},
		{ID: 104, Type: ItemSignal, Section: 3, Offset: 500, Direction: 1, SignalType: "home"},
		{ID: 105, Type: ItemMilepost, Section: 4, Offset: 10, Direction: 0, Milepost: "12.5"},
		{ID: 106, Type: ItemSignal, Section: 4, Offset: 300, Direction: 0, SignalType: "home"},
		{ID: 107, Type: ItemSignal, Section: 4, Offset: 300, Direction: 0, SignalType: "shunt"},
	}
	y.Shapes = testbenchShapes
	y.Placements = []Placement{
		single(100),
		single(101),
		{Shape: "double-back", Heads: []HeadRef{{Item: 103, Head: 0}, {Item: 104, Head: 1}}},
		{Shape: "home-shunt", Heads: []HeadRef{{Item: 106, Head: 0}, {Item: 107, Head: 1}}},
	}
	return &y
}

// InitTestbench2 is a passing loop: west, then junction jw, then main or loop, then junction je, then east.
// Both junctions have their switchable end in direction 1.
func InitTestbench2() *Topology {
	y := Topology{}
	bw := y.Append(Buffer("buffer-w"))
	west := y.Append(Straight("west", 500))
	jw := y.Append(Junction("jw", 30, 0))
	main := y.Append(Straight("main", 400))
	loop := y.Append(Straight("loop", 420))
	je := y.Append(Junction("je", 30, 0))
	east := y.Append(Straight("east", 500))
	be := y.Append(Buffer("buffer-e"))
	y.Join(bw, 0, west, 0)
	y.Join(west, 0, jw, 1)
	y.Join(jw, 1, main, 0)
	y.Join(jw, 1, loop, 0)
	y.Join(main, 0, je, 0)
	y.Join(loop, 0, je, 0)
	y.Join(je, 0, east, 0)
	y.Join(east, 0, be, 0)
	y.Items = []Item{
		{ID: 200, Type: ItemSignal, Section: west, Offset: 500, Direction: 0, SignalType: "home"},
		{ID: 201, Type: ItemSignal, Section: main, Offset: 400, Direction: 0, SignalType: "home"},
		{ID: 202, Type: ItemSignal, Section: loop, Offset: 420, Direction: 0, SignalType: "home"},
		{ID: 203, Type: ItemSignal, Section: east, Offset: 500, Direction: 0, SignalType: "home"},
		{ID: 204, Type: ItemSignal, Section: east, Offset: 500, Direction: 1, SignalType: "home"},
	}
	y.Shapes = testbenchShapes
	y.Placements = []Placement{single(200), single(201), single(202), single(203), single(204)}
	return &y
}

// InitTestbench3 is a diamond crossing: a-west/a-east and b-west/b-east cross at x.
func InitTestbench3() *Topology {
	y := Topology{}
	aw := y.Append(Straight("a-west", 200))
	bw := y.Append(Straight("b-west", 200))
	x := y.Append(Section{Comment: "x", Kind: KindCrossover, Length: 20})
	ae := y.Append(Straight("a-east", 200))
	be := y.Append(Straight("b-east", 200))
	y.Join(aw, 0, x, 0)
	y.Join(bw, 0, x, 0)
	y.Join(x, 0, ae, 0)
	y.Join(x, 0, be, 0)
	y.Shapes = testbenchShapes
	return &y
}

// InitTestbench4 is a ring of four sections without any buffer.
func InitTestbench4() *Topology {
	y := Connect([]Section{
		Straight("n", 100),
		Straight("e", 100),
		Straight("s", 100),
		Straight("w", 100),
	})
	y.Join(3, 0, 0, 0)
	y.Shapes = testbenchShapes
	return &y
}
