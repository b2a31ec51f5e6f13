package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is the declarative replay format the CLI demo reads: a list
// of operations to run against one arena tree, in the style of a
// smoke-test script rather than a general-purpose language. It exists
// because §1 calls the CLI demo "scaffolding... out of scope except
// where it defines external contracts" - a YAML step list gives it a
// real structured-input format instead of a pile of ad hoc flags, one
// step per exercised operation (add/alloc/xalloc/free/dump).
type Scenario struct {
	Name        string `yaml:"name"`
	Quantum     uint64 `yaml:"quantum"`
	InitialSize uint64 `yaml:"initial_size"`
	Steps       []Step `yaml:"steps"`
}

// Step is one replayed operation. Only the fields relevant to Op are
// read; Label names the result of an alloc/xalloc so a later free step
// can refer back to it without the caller needing to echo raw addresses.
type Step struct {
	Op    string `yaml:"op"` // add | alloc | xalloc | free | dump
	Label string `yaml:"label,omitempty"`

	Size    uint64 `yaml:"size,omitempty"`
	Align   uint64 `yaml:"align,omitempty"`
	Phase   uint64 `yaml:"phase,omitempty"`
	MinAddr uint64 `yaml:"minaddr,omitempty"`
	MaxAddr uint64 `yaml:"maxaddr,omitempty"`

	Addr     uint64 `yaml:"addr,omitempty"`
	AddrOf   string `yaml:"addr_of,omitempty"` // resolve Addr from a prior Label instead
	BestFit  bool   `yaml:"bestfit,omitempty"`
	NextFit  bool   `yaml:"nextfit,omitempty"`
}

// loadScenario reads and parses a scenario file from path.
func loadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s: no steps", path)
	}
	return &sc, nil
}
