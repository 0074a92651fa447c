package circuit

type RouteElement struct {
	Section   int `json:"section"`
	Direction int `json:"dir"`
}

// Route is an ordered list of sections a train will traverse.
type Route []RouteElement

// Index returns the position of section in the route, or -1.
func (r Route) Index(section int) int {
	for i, e := range r {
		if e.Section == section {
			return i
		}
	}
	return -1
}
