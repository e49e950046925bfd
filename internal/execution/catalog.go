package execution

import (
	"fmt"
	"sort"
	"sync"
)

// Definition is a named suite. Define registers the suite's units.
type Definition struct {
	Name   string
	Define func(s *Suite)
}

// Catalog holds the suite definitions known to the binary
type Catalog struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// NewCatalog creates an empty Catalog
func NewCatalog() *Catalog {
	return &Catalog{defs: make(map[string]Definition)}
}

// Add registers a definition. Names must be unique.
func (c *Catalog) Add(name string, define func(s *Suite)) error {
	if name == "" {
		return fmt.Errorf("suite name is required")
	}
	if define == nil {
		return fmt.Errorf("suite %q has no definition", name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.defs[name]; ok {
		return fmt.Errorf("suite %q already registered", name)
	}
	c.defs[name] = Definition{Name: name, Define: define}
	return nil
}

// MustAdd is Add that panics, for package-level suite registration.
func (c *Catalog) MustAdd(name string, define func(s *Suite)) {
	if err := c.Add(name, define); err != nil {
		panic(err)
	}
}

// Get returns the definition registered under name
func (c *Catalog) Get(name string) (Definition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.defs[name]
	return d, ok
}

// Names returns the registered suite names, sorted
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.defs))
	for name := range c.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions returns the definitions of names, in that order. Unknown names are an error.
func (c *Catalog) Definitions(names []string) ([]Definition, error) {
	defs := make([]Definition, 0, len(names))
	for _, name := range names {
		d, ok := c.Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown suite %q", name)
		}
		defs = append(defs, d)
	}
	return defs, nil
}

// Build creates a suite from its definition without running it.
// A panic in Define is returned as an error.
func Build(def Definition, opts ...SuiteOption) (s *Suite, err error) {
	s = NewSuite(def.Name, opts...)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to define suite %q: %v", def.Name, r)
		}
	}()
	def.Define(s)
	return s, nil
}
