package health

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestStatusHealthy(t *testing.T) {
	root := t.TempDir()
	svc := NewService("soffice", root)
	svc.lookPath = func(string) (string, error) { return "/usr/bin/soffice", nil }

	st := svc.Status()
	if !st.OK || st.Converter != "ok" || st.TempRoot != "ok" {
		t.Fatalf("unexpected status: %+v", st)
	}
	entries, _ := os.ReadDir(root)
	if len(entries) != 0 {
		t.Fatalf("probe file left behind: %v", entries)
	}
}

func TestStatusMissingConverter(t *testing.T) {
	svc := NewService("soffice", t.TempDir())
	svc.lookPath = func(string) (string, error) { return "", errors.New("not found") }

	st := svc.Status()
	if st.OK || st.Converter != "missing" {
		t.Fatalf("unexpected status: %+v", st)
	}
}

func TestStatusUnusableTempRoot(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, nil, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	svc := NewService("soffice", file)
	svc.lookPath = func(string) (string, error) { return "/usr/bin/soffice", nil }

	if st := svc.Status(); st.OK || st.TempRoot != "unavailable" {
		t.Fatalf("unexpected status: %+v", st)
	}
}
