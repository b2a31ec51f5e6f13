package main

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleScenario = `
name: demo
quantum: 4096
initial_size: 1048576
steps:
  - op: alloc
    size: 256
    label: a
  - op: xalloc
    size: 4096
    align: 4096
    label: b
  - op: free
    addr_of: a
    size: 256
  - op: dump
`

func TestLoadScenario(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	if err := os.WriteFile(path, []byte(sampleScenario), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	sc, err := loadScenario(path)
	if err != nil {
		t.Fatalf("loadScenario: %v", err)
	}

	if sc.Name != "demo" {
		t.Errorf("Name = %q, want demo", sc.Name)
	}
	if sc.Quantum != 4096 {
		t.Errorf("Quantum = %d, want 4096", sc.Quantum)
	}
	if len(sc.Steps) != 4 {
		t.Fatalf("len(Steps) = %d, want 4", len(sc.Steps))
	}
	if sc.Steps[0].Op != "alloc" || sc.Steps[0].Label != "a" {
		t.Errorf("Steps[0] = %+v", sc.Steps[0])
	}
	if sc.Steps[2].AddrOf != "a" {
		t.Errorf("Steps[2].AddrOf = %q, want a", sc.Steps[2].AddrOf)
	}
}

func TestLoadScenarioRejectsEmptySteps(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(path, []byte("name: empty\n"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	if _, err := loadScenario(path); err == nil {
		t.Fatalf("expected an error for a scenario with no steps")
	}
}

func TestLoadScenarioMissingFile(t *testing.T) {
	if _, err := loadScenario(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected an error for a missing scenario file")
	}
}
