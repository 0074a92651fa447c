package layout

import "fmt"

// Connect chains sections so that travelling in direction 0 goes from each section to the next one.
// Junctions and crossovers must be joined by hand with Join.
func Connect(sections []Section) Topology {
	y := Topology{Sections: make([]Section, len(sections))}
	copy(y.Sections, sections)
	for i := 1; i < len(y.Sections); i++ {
		y.Join(i-1, 0, i, 0)
	}
	return y
}

// Join links from (travelling in fromDir) to to (entered in toDir), and adds the reverse link.
func (y *Topology) Join(from, fromDir, to, toDir int) {
	y.checkStep(Step{from, fromDir})
	y.checkStep(Step{to, toDir})
	y.Sections[from].Pins[fromDir] = append(y.Sections[from].Pins[fromDir], Pin{Link: to, Direction: toDir})
	y.Sections[to].Pins[1-toDir] = append(y.Sections[to].Pins[1-toDir], Pin{Link: from, Direction: 1 - fromDir})
}

// Append adds a section and returns its index.
func (y *Topology) Append(s Section) int {
	y.Sections = append(y.Sections, s)
	return len(y.Sections) - 1
}

// checkStep panics if s doesn't exist in this Topology.
func (y *Topology) checkStep(s Step) {
	if s.Section < 0 || s.Section >= len(y.Sections) {
		panic(fmt.Sprintf("invalid Step: Section %d doesn't exist", s.Section))
	}
	if s.Direction != 0 && s.Direction != 1 {
		panic(fmt.Sprintf("invalid Step: Direction %d doesn't exist", s.Direction))
	}
}

func Straight(comment string, length float64) Section {
	return Section{Comment: comment, Kind: KindNormal, Length: length}
}

func Junction(comment string, length float64, defaultRoute int) Section {
	return Section{Comment: comment, Kind: KindJunction, Length: length, DefaultRoute: defaultRoute}
}

func Buffer(comment string) Section {
	return Section{Comment: comment, Kind: KindEndOfTrack}
}
