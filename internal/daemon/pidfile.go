// Package daemon tracks background server processes through a small YAML
// state file.
package daemon

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// State is what a running server records about itself.
type State struct {
	PID     int       `yaml:"pid"`
	Addr    string    `yaml:"addr"`
	Started time.Time `yaml:"started"`
}

// PIDFile manages the state file of one background server.
type PIDFile struct {
	Path string
}

// NewPIDFile creates a PIDFile manager for the given path.
func NewPIDFile(path string) *PIDFile {
	return &PIDFile{Path: path}
}

// Write records the current process as serving addr.
func (p *PIDFile) Write(addr string) error {
	return p.WriteState(State{PID: os.Getpid(), Addr: addr, Started: time.Now().UTC()})
}

// WriteState writes s to the file.
func (p *PIDFile) WriteState(s State) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	return os.WriteFile(p.Path, data, 0o644)
}

// Read reads the state from the file.
func (p *PIDFile) Read() (*State, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, err
	}
	var s State
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("invalid PID file content: %w", err)
	}
	if s.PID <= 0 {
		return nil, errors.New("invalid PID file content: missing pid")
	}
	return &s, nil
}

// Remove deletes the PID file.
func (p *PIDFile) Remove() error {
	return os.Remove(p.Path)
}
