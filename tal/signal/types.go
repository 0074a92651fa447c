package signal

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AspectDef is one aspect a signal type can show.
type AspectDef struct {
	Aspect Aspect `yaml:"aspect"`
	// DrawState is the display state used for this aspect.
	DrawState int        `yaml:"draw-state"`
	Speed     *SpeedInfo `yaml:"speed,omitempty"`
}

// Type is a signal type definition, shared by every head of that type.
type Type struct {
	Name          string      `yaml:"name"`
	Function      Function    `yaml:"function"`
	Aspects       []AspectDef `yaml:"aspects"`
	NumClearAhead int         `yaml:"num-clear-ahead"`
	Semaphore     bool        `yaml:"semaphore"`
}

// MostRestrictive returns the most restrictive aspect the type declares, or stop if it declares none.
func (t *Type) MostRestrictive() Aspect {
	found := false
	var best Aspect
	for _, d := range t.Aspects {
		if d.Aspect == AspectUnknown {
			continue
		}
		if !found || d.Aspect.MoreRestrictive(best) {
			best, found = d.Aspect, true
		}
	}
	if !found {
		return AspectStop
	}
	return best
}

// LeastRestrictive returns the least restrictive aspect the type declares, or clear-2 if it declares none.
func (t *Type) LeastRestrictive() Aspect {
	found := false
	var best Aspect
	for _, d := range t.Aspects {
		if d.Aspect == AspectUnknown {
			continue
		}
		if !found || best.MoreRestrictive(d.Aspect) {
			best, found = d.Aspect, true
		}
	}
	if !found {
		return AspectClear2
	}
	return best
}

func (t *Type) lookup(a Aspect) (AspectDef, bool) {
	for _, d := range t.Aspects {
		if d.Aspect == a {
			return d, true
		}
	}
	return AspectDef{}, false
}

// Declares reports whether the type can show a.
func (t *Type) Declares(a Aspect) bool {
	_, ok := t.lookup(a)
	return ok
}

// DrawState returns the draw state for a, or -1.
func (t *Type) DrawState(a Aspect) int {
	d, ok := t.lookup(a)
	if !ok {
		return -1
	}
	return d.DrawState
}

// Types is a set of signal type definitions, as read from a file.
type Types struct {
	Types []Type `yaml:"types"`
}

func (ts *Types) Lookup(name string) (*Type, bool) {
	if ts == nil {
		return nil, false
	}
	for i := range ts.Types {
		if ts.Types[i].Name == name {
			return &ts.Types[i], true
		}
	}
	return nil, false
}

// LoadTypes reads signal type definitions from a YAML file.
func LoadTypes(path string) (*Types, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ts, err := ParseTypes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ts, nil
}

func ParseTypes(data []byte) (*Types, error) {
	var ts Types
	if err := yaml.Unmarshal(data, &ts); err != nil {
		return nil, err
	}
	return &ts, ts.Validate()
}

func (ts *Types) Validate() error {
	seen := map[string]bool{}
	for i, t := range ts.Types {
		if t.Name == "" {
			return fmt.Errorf("type %d: no name", i)
		}
		if seen[t.Name] {
			return fmt.Errorf("type %s: defined twice", t.Name)
		}
		seen[t.Name] = true
		if t.NumClearAhead < 0 {
			return fmt.Errorf("type %s: negative num-clear-ahead", t.Name)
		}
	}
	if len(ts.Types) == 0 {
		return errors.New("no types")
	}
	return nil
}
