package health

import (
	"os"
	"os/exec"
	"path/filepath"
)

// Status is the readiness payload served by /api/v1/health.
type Status struct {
	OK        bool   `json:"ok"`
	Converter string `json:"converter"`
	TempRoot  string `json:"tempRoot"`
}

// Service encapsulates health-related checks.
type Service struct {
	Binary   string
	TempRoot string

	lookPath func(string) (string, error)
}

// NewService constructs a new health service.
func NewService(binary, tempRoot string) *Service {
	return &Service{Binary: binary, TempRoot: tempRoot, lookPath: exec.LookPath}
}

// Status reports whether the converter binary resolves and the temp root is writable.
func (s *Service) Status() Status {
	st := Status{OK: true, Converter: "ok", TempRoot: "ok"}

	lookPath := s.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if _, err := lookPath(s.Binary); err != nil {
		st.OK = false
		st.Converter = "missing"
	}

	if err := os.MkdirAll(s.TempRoot, 0o700); err != nil {
		st.OK = false
		st.TempRoot = "unavailable"
		return st
	}
	probe, err := os.CreateTemp(s.TempRoot, ".health-*")
	if err != nil {
		st.OK = false
		st.TempRoot = "read-only"
		return st
	}
	_ = probe.Close()
	_ = os.Remove(filepath.Clean(probe.Name()))
	return st
}
