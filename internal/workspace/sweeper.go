package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"cv-generator/internal/shared/metrics"
	"cv-generator/internal/shared/telemetry"
)

// Report summarizes one sweep pass.
type Report struct {
	Root     string
	Scanned  int
	Deleted  []string
	Failures []Failure
	Skipped  bool
}

// Failure is a directory that could not be removed.
type Failure struct {
	Path string
	Err  error
}

// Sweeper removes expired workspace directories under Root.
type Sweeper struct {
	Root     string
	MaxAge   time.Duration
	Interval time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
	// Remove defaults to os.RemoveAll.
	Remove func(path string) error

	mu      sync.Mutex
	lastRun time.Time
}

func (s *Sweeper) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Sweeper) remove(path string) error {
	if s.Remove != nil {
		return s.Remove(path)
	}
	return os.RemoveAll(path)
}

// SweepExpired deletes workspace directories under root last modified
// strictly before now-maxAge. Entries whose name is not a workspace id are
// never touched. Per-directory failures are reported, not returned.
func (s *Sweeper) SweepExpired(root string, maxAge time.Duration) (Report, error) {
	report := Report{Root: root}
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return report, nil
		}
		return report, fmt.Errorf("read sweep root: %w", err)
	}
	cutoff := s.now().Add(-maxAge)
	for _, entry := range entries {
		if !entry.IsDir() || !IsWorkspaceName(entry.Name()) {
			continue
		}
		report.Scanned++
		path := filepath.Join(root, entry.Name())
		info, err := entry.Info()
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				report.Failures = append(report.Failures, Failure{Path: path, Err: err})
			}
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := s.remove(path); err != nil {
			report.Failures = append(report.Failures, Failure{Path: path, Err: err})
			telemetry.Warn("workspace.sweep.delete_failed", map[string]any{
				"path":  path,
				"error": err,
			})
			continue
		}
		report.Deleted = append(report.Deleted, path)
	}
	metrics.ObserveSweep(len(report.Deleted), len(report.Failures))
	telemetry.Info("workspace.sweep", map[string]any{
		"root":    root,
		"scanned": report.Scanned,
		"deleted": len(report.Deleted),
		"failed":  len(report.Failures),
	})
	return report, nil
}

// MaybeSweep runs SweepExpired on s.Root unless a pass already ran within Interval.
func (s *Sweeper) MaybeSweep() (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if !s.lastRun.IsZero() && now.Sub(s.lastRun) < s.Interval {
		return Report{Root: s.Root, Skipped: true}, nil
	}
	s.lastRun = now
	return s.SweepExpired(s.Root, s.MaxAge)
}

func (s *Sweeper) sweepNow() (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRun = s.now()
	return s.SweepExpired(s.Root, s.MaxAge)
}

// LastRun returns when MaybeSweep last ran a pass.
func (s *Sweeper) LastRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

// Run sweeps immediately and then on every tick until ctx is done. Passes are not
// gated by Interval, but each one updates LastRun for MaybeSweep.
func (s *Sweeper) Run(ctx context.Context, every time.Duration) error {
	if every <= 0 {
		every = time.Hour
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		if _, err := s.sweepNow(); err != nil {
			telemetry.Error("workspace.sweep.failed", map[string]any{"root": s.Root, "error": err})
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
