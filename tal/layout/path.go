package layout

// Step is a section traversed in a direction.
type Step struct {
	Section   int
	Direction int
}

func (y *Topology) stepOK(s Step) bool {
	return s.Section >= 0 && s.Section < len(y.Sections) && (s.Direction == 0 || s.Direction == 1)
}

// PathTo returns the shortest list of steps (by section count) from from to a step on section goal,
// following static pins only. The first step is from itself.
// Returns nil if goal is unreachable.
func (y *Topology) PathTo(from Step, goal int) []Step {
	if !y.stepOK(from) || goal < 0 || goal >= len(y.Sections) {
		return nil
	}
	if from.Section == goal {
		return []Step{from}
	}
	key := func(s Step) int { return s.Section*2 + s.Direction }
	distance := make([]int, len(y.Sections)*2)
	using := make([]Step, len(y.Sections)*2)
	for i := range distance {
		distance[i] = -1
	}
	distance[key(from)] = 0
	queue := make([]Step, 0, len(y.Sections)*2)
	queue = append(queue, from)
	var found *Step
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, p := range y.Sections[current.Section].Pins[current.Direction] {
			next := Step{p.Link, p.Direction}
			if !y.stepOK(next) {
				continue
			}
			if distance[key(next)] != -1 {
				continue
			}
			distance[key(next)] = distance[key(current)] + 1
			using[key(next)] = current
			if next.Section == goal {
				found = &next
				break
			}
			queue = append(queue, next)
		}
		if found != nil {
			break
		}
	}
	if found == nil {
		return nil
	}
	steps := make([]Step, distance[key(*found)]+1)
	for s, j := *found, len(steps)-1; j >= 0; j-- {
		steps[j] = s
		s = using[key(s)]
	}
	return steps
}
