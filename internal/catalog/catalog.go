// Package catalog loads the static list of systems shown on the home page.
package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/leapstack-labs/pbconsole/pkg/core"
	"gopkg.in/yaml.v3"
)

// file is the on-disk layout of a systems catalog.
type file struct {
	Systems []core.System `yaml:"systems"`
}

// Defaults returns the built-in systems used when no catalog file exists.
func Defaults() []core.System {
	return []core.System{
		{ID: "1", Name: "System 1", Description: "System 1 - playbooks 1"},
		{ID: "2", Name: "System 2", Description: "System 2 - playbooks 2"},
		{ID: "3", Name: "System 3", Description: "System 3 - playbooks 3"},
	}
}

// Load reads systems from path. A missing file yields the defaults.
func Load(path string) ([]core.System, error) {
	if path == "" {
		return Defaults(), nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Defaults(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read systems file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes a YAML systems catalog and checks ids are present and unique.
func Parse(data []byte) ([]core.System, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid systems file: %w", err)
	}

	seen := make(map[string]bool, len(f.Systems))
	for i, s := range f.Systems {
		if s.ID == "" {
			return nil, fmt.Errorf("invalid systems file: system %d has no id", i)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("invalid systems file: duplicate system id %q", s.ID)
		}
		seen[s.ID] = true
	}
	return f.Systems, nil
}

// Catalog holds the current systems list and can be reloaded.
type Catalog struct {
	path string

	mu      sync.RWMutex
	systems []core.System
}

// Open loads the catalog at path.
func Open(path string) (*Catalog, error) {
	systems, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Catalog{path: path, systems: systems}, nil
}

// Static returns a catalog over a fixed list.
func Static(systems []core.System) *Catalog {
	return &Catalog{systems: systems}
}

// Path returns the backing file, or "" for a static catalog.
func (c *Catalog) Path() string {
	return c.path
}

// Reload re-reads the backing file. On error the previous list is kept.
func (c *Catalog) Reload() error {
	if c.path == "" {
		return nil
	}
	systems, err := Load(c.path)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.systems = systems
	c.mu.Unlock()
	return nil
}

// Systems returns a copy of the current list.
func (c *Catalog) Systems() []core.System {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]core.System(nil), c.systems...)
}

// System returns the system with the given id, or nil.
func (c *Catalog) System(id string) *core.System {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.systems {
		if c.systems[i].ID == id {
			s := c.systems[i]
			return &s
		}
	}
	return nil
}

// WithPlaybooks attaches playbooks to each system. A system without a playbook
// list gets the whole collection; otherwise only the listed ids, in list order.
func WithPlaybooks(systems []core.System, playbooks []core.Playbook) []core.System {
	byID := make(map[string]core.Playbook, len(playbooks))
	for _, pb := range playbooks {
		byID[pb.ID] = pb
	}

	out := make([]core.System, len(systems))
	for i, s := range systems {
		s.Playbooks = nil
		if len(s.PlaybookIDs) == 0 {
			s.Playbooks = append([]core.Playbook(nil), playbooks...)
		} else {
			for _, id := range s.PlaybookIDs {
				if pb, ok := byID[id]; ok {
					s.Playbooks = append(s.Playbooks, pb)
				}
			}
		}
		out[i] = s
	}
	return out
}
