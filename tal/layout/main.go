// Package layout is the parsed form of a route: track-circuit sections with their pins, the
// items placed along them, and the world placement records that group item heads into
// physical signals.
package layout

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind is the kind of a section as written in a topology file.
type Kind string

const (
	KindNormal     Kind = "normal"
	KindJunction   Kind = "junction"
	KindCrossover  Kind = "crossover"
	KindEndOfTrack Kind = "end"
	KindEmpty      Kind = "empty"
)

// ItemType is the type of a track item.
type ItemType string

const (
	ItemSignal    ItemType = "signal"
	ItemSpeedPost ItemType = "speedpost"
	ItemMilepost  ItemType = "milepost"
)

type Topology struct {
	Sections   []Section   `yaml:"sections" json:"sections"`
	Items      []Item      `yaml:"items" json:"items"`
	Shapes     []Shape     `yaml:"shapes" json:"shapes"`
	Placements []Placement `yaml:"placements" json:"placements"`
}

type Section struct {
	// Comment is a human-readable name for the section. Used for lookups in tests and logs.
	Comment string  `yaml:"comment" json:"comment"`
	Kind    Kind    `yaml:"kind" json:"kind"`
	Length  float64 `yaml:"length" json:"length"`
	// Pins are the links leaving this section when travelling in direction 0 and 1.
	// Each direction has at most two links; only junctions and crossovers have two.
	Pins         [2][]Pin `yaml:"pins" json:"pins"`
	DefaultRoute int      `yaml:"default-route" json:"default-route"`
	Overlap      float64  `yaml:"overlap" json:"overlap"`
}

// Pin is a directed link to another section.
type Pin struct {
	Link int `yaml:"link" json:"link"`
	// Direction of travel in the linked section.
	Direction int `yaml:"dir" json:"dir"`
}

// Item is a signal head, speed post or milepost placed along a section.
type Item struct {
	ID      int      `yaml:"id" json:"id"`
	Type    ItemType `yaml:"type" json:"type"`
	Section int      `yaml:"section" json:"section"`
	// Offset is measured from the entry end of the section when travelling in Direction.
	Offset    float64 `yaml:"offset" json:"offset"`
	Direction int     `yaml:"direction" json:"direction"`
	// SignalType names the signal type definition of a signal head.
	SignalType string `yaml:"signal-type,omitempty" json:"signal-type,omitempty"`
	// Speed is the posted limit of a speed post.
	Speed *Speed `yaml:"speed,omitempty" json:"speed,omitempty"`
	// Milepost is the displayed value of a milepost.
	Milepost string `yaml:"milepost,omitempty" json:"milepost,omitempty"`
}

type Speed struct {
	Pass    float64 `yaml:"pass" json:"pass"`
	Freight float64 `yaml:"freight" json:"freight"`
	Warning bool    `yaml:"warning" json:"warning"`
}

// Shape describes the heads a physical signal shape carries.
type Shape struct {
	Name  string      `yaml:"name" json:"name"`
	Heads []ShapeHead `yaml:"heads" json:"heads"`
}

type ShapeHead struct {
	Description string `yaml:"description" json:"description"`
	BackFacing  bool   `yaml:"back-facing" json:"back-facing"`
}

// Placement is one physical signal placed in the world, referring to the track items of its heads.
type Placement struct {
	Shape string    `yaml:"shape" json:"shape"`
	Heads []HeadRef `yaml:"heads" json:"heads"`
}

type HeadRef struct {
	Item int `yaml:"item" json:"item"`
	// Head is the index into the shape's heads.
	Head int `yaml:"head" json:"head"`
}

// Load reads a topology from a YAML or JSON file (chosen by extension).
func Load(path string) (*Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var y *Topology
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		y, err = ParseJSON(data)
	default:
		y, err = Parse(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return y, nil
}

func Parse(data []byte) (*Topology, error) {
	var y Topology
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, err
	}
	return &y, y.Validate()
}

func ParseJSON(data []byte) (*Topology, error) {
	var y Topology
	if err := json.Unmarshal(data, &y); err != nil {
		return nil, err
	}
	return &y, y.Validate()
}

// Validate checks for errors that make the topology unusable as a whole.
// Problems local to a single section or item are left to the builder, which drops or defaults them.
func (y *Topology) Validate() error {
	if len(y.Sections) == 0 {
		return errors.New("no sections")
	}
	for si, s := range y.Sections {
		switch s.Kind {
		case KindNormal, KindJunction, KindCrossover, KindEndOfTrack, KindEmpty:
		default:
			return fmt.Errorf("section %d (%s): unknown kind %q", si, s.Comment, s.Kind)
		}
		for dir, pins := range s.Pins {
			if len(pins) > 2 {
				return fmt.Errorf("section %d (%s): direction %d has %d pins", si, s.Comment, dir, len(pins))
			}
		}
	}
	return nil
}

// LookupItem returns the item with the given id.
func (y *Topology) LookupItem(id int) (Item, bool) {
	for _, it := range y.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// LookupShape returns the shape with the given name.
func (y *Topology) LookupShape(name string) (Shape, bool) {
	for _, s := range y.Shapes {
		if s.Name == name {
			return s, true
		}
	}
	return Shape{}, false
}

// MustLookupIndex finds a section with a matching comment. If it doesn't it panics.
// This is for debugging/testing.
func (y *Topology) MustLookupIndex(comment string) int {
	for si, s := range y.Sections {
		if s.Comment == comment {
			return si
		}
	}
	panic(fmt.Sprintf("found nothing when looking up for %s", comment))
}
