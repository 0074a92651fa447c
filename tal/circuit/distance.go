package circuit

// GetDistanceBetweenObjects returns the distance along active links from an object at startOffset on
// startSection to one at endOffset on endSection, travelling in startDirection.
// Returns -1 if the end is not reached.
func (n *Network) GetDistanceBetweenObjects(startSection int, startOffset float64, startDirection int, endSection int, endOffset float64) float64 {
	s := n.Section(startSection)
	if s == nil || n.Section(endSection) == nil {
		return -1
	}
	dist := 0.0
	dir := startDirection
	last := NoLink
	hops := 0
	defer func() { n.walked(hops) }()
	for s.Index != endSection {
		hops++
		if hops > n.MaxHops() {
			return -1
		}
		dist += s.Length
		next := s.GetNextActiveLink(dir, last)
		if !next.Valid() {
			return -1
		}
		if next.Link == startSection {
			return dist - startOffset
		}
		last = s.Index
		s = n.Sections[next.Link]
		dir = next.Direction
	}
	return dist + endOffset - startOffset
}

func (n *Network) walked(hops int) {
	if n.OnWalk != nil {
		n.OnWalk(hops)
	}
}
