package convert

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	stdout, stderr string
	err            error
	onRun          func(ctx context.Context, args []string) error

	name string
	args []string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	f.name = name
	f.args = args
	if f.onRun != nil {
		if err := f.onRun(ctx, args); err != nil {
			return f.stdout, f.stderr, err
		}
	}
	return f.stdout, f.stderr, f.err
}

func writeSource(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "Dev_Ana.docx")
	require.NoError(t, os.WriteFile(src, []byte("docx"), 0o600))
	return dir, src
}

func TestConvertParsesReportedPath(t *testing.T) {
	dir, src := writeSource(t)
	pdf := filepath.Join(dir, "Dev_Ana.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.4"), 0o600))

	runner := &fakeRunner{stdout: "convert " + src + " -> " + pdf + " using filter : writer_pdf_Export\n"}
	c := &Converter{Binary: "soffice", Runner: runner, Timeout: time.Second}

	res, err := c.Convert(context.Background(), src, dir)
	require.NoError(t, err)
	assert.Equal(t, pdf, res.OutputPath)
	assert.Equal(t, "soffice", runner.name)
	assert.Equal(t, []string{"--headless", "--convert-to", "pdf:writer_pdf_Export", "--outdir", dir, src}, runner.args)
}

func TestConvertResolvesRelativeReportedPath(t *testing.T) {
	dir, src := writeSource(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "out.pdf"), []byte("%PDF"), 0o600))

	c := &Converter{Runner: &fakeRunner{stdout: "convert x -> out.pdf using filter : writer_pdf_Export"}}
	res, err := c.Convert(context.Background(), src, dir)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(res.OutputPath))
	assert.Equal(t, filepath.Join(dir, "out.pdf"), res.OutputPath)
}

func TestConvertMissingSourceNeverRuns(t *testing.T) {
	runner := &fakeRunner{}
	c := &Converter{Runner: runner}

	_, err := c.Convert(context.Background(), filepath.Join(t.TempDir(), "nope.docx"), t.TempDir())
	require.Error(t, err)
	assert.Equal(t, KindSourceMissing, KindOf(err))
	assert.Empty(t, runner.name, "runner must not be called")
}

func TestConvertFailureKinds(t *testing.T) {
	dir, src := writeSource(t)

	tests := []struct {
		name   string
		runner *fakeRunner
		want   Kind
	}{
		{
			name:   "non-zero exit",
			runner: &fakeRunner{stderr: "Error: source file could not be loaded", err: exitError(t, 77)},
			want:   KindExit,
		},
		{
			name:   "binary not found",
			runner: &fakeRunner{err: &exec.Error{Name: "soffice", Err: exec.ErrNotFound}},
			want:   KindNotFound,
		},
		{
			name:   "stdout without report",
			runner: &fakeRunner{stdout: "Warning: failed to launch javaldx"},
			want:   KindNoOutput,
		},
		{
			name:   "reported file missing",
			runner: &fakeRunner{stdout: "convert a -> " + filepath.Join(dir, "ghost.pdf") + " using filter : writer_pdf_Export"},
			want:   KindNoOutput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Converter{Runner: tt.runner, Timeout: time.Second}
			res, err := c.Convert(context.Background(), src, dir)
			require.Error(t, err)
			assert.Equal(t, tt.want, KindOf(err))
			assert.True(t, errors.Is(err, &Error{Kind: tt.want}))
			assert.Empty(t, res.OutputPath, "a failure never carries an output path")
		})
	}
}

func TestConvertExitErrorCarriesCodeAndStderr(t *testing.T) {
	dir, src := writeSource(t)
	c := &Converter{Runner: &fakeRunner{stderr: " boom \n", err: exitError(t, 3)}}

	_, err := c.Convert(context.Background(), src, dir)
	var convErr *Error
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, 3, convErr.ExitCode)
	assert.Equal(t, "boom", convErr.Stderr)
	assert.Contains(t, convErr.Error(), "exit code 3")
}

func TestConvertTimeoutWithFakeRunner(t *testing.T) {
	dir, src := writeSource(t)
	runner := &fakeRunner{onRun: func(ctx context.Context, _ []string) error {
		<-ctx.Done()
		return errors.New("signal: killed")
	}}
	c := &Converter{Runner: runner, Timeout: 20 * time.Millisecond}

	_, err := c.Convert(context.Background(), src, dir)
	assert.Equal(t, KindTimeout, KindOf(err))
}

func TestConvertParentCancel(t *testing.T) {
	dir, src := writeSource(t)
	ctx, cancel := context.WithCancel(context.Background())
	runner := &fakeRunner{onRun: func(runCtx context.Context, _ []string) error {
		cancel()
		<-runCtx.Done()
		return runCtx.Err()
	}}
	c := &Converter{Runner: runner, Timeout: time.Minute}

	_, err := c.Convert(ctx, src, dir)
	assert.Equal(t, KindCanceled, KindOf(err))
}

func TestParseOutputPath(t *testing.T) {
	tests := []struct {
		stdout string
		want   string
		ok     bool
	}{
		{stdout: "convert /tmp/a.docx -> /tmp/a.pdf using filter : writer_pdf_Export\n", want: "/tmp/a.pdf", ok: true},
		{stdout: "convert /tmp/a b.docx -> /tmp/x y/a b.pdf using filter : writer_pdf_Export", want: "/tmp/x y/a b.pdf", ok: true},
		{stdout: `convert C:\t\a.docx -> C:\t\a.pdf using filter : writer_pdf_Export`, want: `C:\t\a.pdf`, ok: true},
		{stdout: "", ok: false},
		{stdout: "-> using filter", ok: false},
		{stdout: "Error: no export filter", ok: false},
	}
	for _, tt := range tests {
		got, ok := ParseOutputPath(tt.stdout)
		assert.Equal(t, tt.ok, ok, tt.stdout)
		assert.Equal(t, tt.want, got, tt.stdout)
	}
}

func exitError(t *testing.T, code int) error {
	t.Helper()
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	err = exec.Command(sh, "-c", "exit "+strconv.Itoa(code)).Run()
	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	return exitErr
}
