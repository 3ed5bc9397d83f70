package convert

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"cv-generator/internal/shared/metrics"
	"cv-generator/internal/shared/telemetry"
)

const (
	DefaultBinary  = "soffice"
	DefaultTimeout = 300 * time.Second

	pdfFilter = "pdf:writer_pdf_Export"
)

var outputPattern = regexp.MustCompile(`-> (.*?) using filter`)

// Result describes a successful conversion.
type Result struct {
	OutputPath string
	Stdout     string
	Stderr     string
	Duration   time.Duration
}

// Converter turns office documents into PDF with a headless office suite.
type Converter struct {
	Binary  string
	Runner  Runner
	Timeout time.Duration
}

// New returns a Converter running binary through ExecRunner.
func New(binary string, timeout time.Duration) *Converter {
	return &Converter{Binary: binary, Runner: ExecRunner{}, Timeout: timeout}
}

// Args returns the command line used to convert source into outDir.
func Args(source, outDir string) []string {
	return []string{"--headless", "--convert-to", pdfFilter, "--outdir", outDir, source}
}

// Convert exports source to PDF inside outDir and returns the absolute path
// the engine reported. Every failure is an *Error.
func (c *Converter) Convert(ctx context.Context, source, outDir string) (Result, error) {
	start := time.Now()
	res, err := c.convert(ctx, source, outDir)
	res.Duration = time.Since(start)

	fields := map[string]any{
		"source":      filepath.Base(source),
		"duration_ms": res.Duration.Milliseconds(),
	}
	if err != nil {
		kind := KindOf(err)
		metrics.IncConversionFailed(string(kind))
		fields["kind"] = string(kind)
		fields["error"] = err
		telemetry.Error("convert.failed", fields)
		return res, err
	}
	metrics.ObserveConversionDurationMs(float64(res.Duration.Milliseconds()))
	fields["output"] = filepath.Base(res.OutputPath)
	telemetry.Info("convert.finished", fields)
	return res, nil
}

func (c *Converter) convert(ctx context.Context, source, outDir string) (Result, error) {
	absSource, err := filepath.Abs(source)
	if err != nil {
		return Result{}, &Error{Kind: KindSourceMissing, Err: err}
	}
	if info, err := os.Stat(absSource); err != nil {
		return Result{}, &Error{Kind: KindSourceMissing, Err: err}
	} else if info.IsDir() {
		return Result{}, &Error{Kind: KindSourceMissing, Err: fmt.Errorf("%s is a directory", absSource)}
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return Result{}, &Error{Kind: KindNoOutput, Err: err}
	}

	binary := c.Binary
	if binary == "" {
		binary = DefaultBinary
	}
	runner := c.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stdout, stderr, runErr := runner.Run(runCtx, binary, Args(absSource, absOut)...)
	res := Result{Stdout: stdout, Stderr: stderr}
	if runErr != nil {
		return res, classify(ctx, runCtx, runErr, stderr, timeout)
	}

	path, ok := ParseOutputPath(stdout)
	if !ok {
		return res, &Error{Kind: KindNoOutput, Stderr: strings.TrimSpace(stderr)}
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(absOut, path)
	}
	path = filepath.Clean(path)
	if _, err := os.Stat(path); err != nil {
		return res, &Error{Kind: KindNoOutput, Err: fmt.Errorf("reported output %s: %w", path, err)}
	}
	res.OutputPath = path
	return res, nil
}

func classify(parent, runCtx context.Context, err error, stderr string, timeout time.Duration) error {
	switch {
	case errors.Is(parent.Err(), context.Canceled):
		return &Error{Kind: KindCanceled, Err: parent.Err()}
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Err: fmt.Errorf("killed after %s", timeout)}
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return &Error{Kind: KindNotFound, Err: err}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &Error{Kind: KindExit, ExitCode: exitErr.ExitCode(), Stderr: strings.TrimSpace(stderr), Err: err}
	}
	return &Error{Kind: KindExit, ExitCode: -1, Stderr: strings.TrimSpace(stderr), Err: err}
}

// ParseOutputPath extracts the path from the engine's "-> <path> using filter" line.
func ParseOutputPath(stdout string) (string, bool) {
	m := outputPattern.FindStringSubmatch(stdout)
	if len(m) < 2 {
		return "", false
	}
	path := strings.TrimSpace(m[1])
	if path == "" {
		return "", false
	}
	return path, true
}
