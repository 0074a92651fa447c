// Package config is the runtime configuration of the shingo command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const (
	DefaultListen   = "0.0.0.0:8001"
	DefaultDatabase = "shingo.db"
)

type Config struct {
	// Topology is the path of the topology file (YAML or JSON).
	Topology string `yaml:"topology"`
	// SignalTypes is the path of the signal type definitions.
	SignalTypes string `yaml:"signal-types"`
	// Database is the path of the snapshot database, or ":memory:".
	Database       string   `yaml:"database"`
	Listen         string   `yaml:"listen"`
	AllowedOrigins []string `yaml:"allowed-origins"`
	Trains         []Train  `yaml:"trains"`
}

// Train names a train id so commands can refer to it by name.
type Train struct {
	Name string    `yaml:"name"`
	ID   uuid.UUID `yaml:"id"`
}

// Load reads the configuration at path. Relative paths in it are taken relative to the file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.resolve(filepath.Dir(path))
	return c, nil
}

// Parse parses a configuration and fills in defaults.
func Parse(raw []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	c.setDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) setDefaults() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.Database == "" {
		c.Database = DefaultDatabase
	}
}

func (c *Config) resolve(dir string) {
	rel := func(p *string) {
		if *p == "" || *p == ":memory:" || filepath.IsAbs(*p) {
			return
		}
		*p = filepath.Join(dir, *p)
	}
	rel(&c.Topology)
	rel(&c.SignalTypes)
	rel(&c.Database)
}

func (c *Config) Validate() error {
	if c.Topology == "" {
		return errors.New("topology: required")
	}
	if c.SignalTypes == "" {
		return errors.New("signal-types: required")
	}
	names := map[string]bool{}
	ids := map[uuid.UUID]bool{}
	for i, t := range c.Trains {
		if t.Name == "" {
			return fmt.Errorf("trains[%d]: name required", i)
		}
		if t.ID == uuid.Nil {
			return fmt.Errorf("trains[%d] (%s): id required", i, t.Name)
		}
		if names[t.Name] {
			return fmt.Errorf("trains[%d]: duplicate name %s", i, t.Name)
		}
		if ids[t.ID] {
			return fmt.Errorf("trains[%d] (%s): duplicate id %s", i, t.Name, t.ID)
		}
		names[t.Name] = true
		ids[t.ID] = true
	}
	return nil
}

// LookupTrain returns the id of the train with the given name.
// A train can also be given by its id directly.
func (c *Config) LookupTrain(name string) (uuid.UUID, error) {
	for _, t := range c.Trains {
		if t.Name == name {
			return t.ID, nil
		}
	}
	id, err := uuid.Parse(name)
	if err != nil {
		return uuid.Nil, fmt.Errorf("unknown train %q", name)
	}
	return id, nil
}
