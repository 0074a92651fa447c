// Package signal models signal heads and the logical signals (and speed posts) they make up,
// along with the aspect, speed and next-signal queries over them.
package signal

import "fmt"

// Aspect is the indication shown by a head.
// Use Rank to compare aspects; the numeric value carries no order.
type Aspect int

const (
	AspectStop Aspect = iota
	AspectStopAndProceed
	AspectRestricting
	AspectApproach1
	AspectApproach2
	AspectApproach3
	AspectClear1
	AspectClear2
	AspectUnknown
)

var aspectNames = map[Aspect]string{
	AspectStop:           "stop",
	AspectStopAndProceed: "stop-and-proceed",
	AspectRestricting:    "restricting",
	AspectApproach1:      "approach-1",
	AspectApproach2:      "approach-2",
	AspectApproach3:      "approach-3",
	AspectClear1:         "clear-1",
	AspectClear2:         "clear-2",
	AspectUnknown:        "unknown",
}

func (a Aspect) String() string {
	name, ok := aspectNames[a]
	if !ok {
		panic(fmt.Sprintf("unknown Aspect %d", int(a)))
	}
	return name
}

// Rank orders aspects from most (0) to least restrictive. AspectUnknown has rank -1.
func (a Aspect) Rank() int {
	switch a {
	case AspectStop:
		return 0
	case AspectStopAndProceed:
		return 1
	case AspectRestricting:
		return 2
	case AspectApproach1:
		return 3
	case AspectApproach2:
		return 4
	case AspectApproach3:
		return 5
	case AspectClear1:
		return 6
	case AspectClear2:
		return 7
	case AspectUnknown:
		return -1
	default:
		panic("unreachable")
	}
}

// MoreRestrictive reports whether a is more restrictive than b.
func (a Aspect) MoreRestrictive(b Aspect) bool {
	return a.Rank() < b.Rank()
}

func (a Aspect) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Aspect) UnmarshalText(text []byte) error {
	for k, name := range aspectNames {
		if name == string(text) {
			*a = k
			return nil
		}
	}
	return fmt.Errorf("unknown aspect %q", text)
}
