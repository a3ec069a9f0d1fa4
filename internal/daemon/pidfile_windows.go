//go:build windows

package daemon

import (
	"fmt"
	"os"
	"syscall"
)

// IsRunning reports the recorded state and whether its process is alive.
func (p *PIDFile) IsRunning() (*State, bool) {
	s, err := p.Read()
	if err != nil {
		return nil, false
	}
	proc, err := os.FindProcess(s.PID)
	if err != nil {
		return s, false
	}
	// FindProcess always succeeds on Windows.
	err = proc.Signal(syscall.Signal(0))
	return s, err == nil
}

// Signal sends the given signal to the recorded process. Only os.Kill is
// reliably supported on Windows.
func (p *PIDFile) Signal(sig syscall.Signal) error {
	s, err := p.Read()
	if err != nil {
		return fmt.Errorf("read PID file: %w", err)
	}
	proc, err := os.FindProcess(s.PID)
	if err != nil {
		return fmt.Errorf("find process %d: %w", s.PID, err)
	}
	return proc.Signal(sig)
}
