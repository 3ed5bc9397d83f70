//go:build !windows

package convert

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeSoffice(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "soffice")
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

const convertingScript = `
outdir=""
src=""
while [ $# -gt 0 ]; do
  case "$1" in
    --outdir) outdir="$2"; shift 2 ;;
    --*) shift ;;
    pdf:*) shift ;;
    *) src="$1"; shift ;;
  esac
done
base=$(basename "$src" .docx)
printf '%%PDF-1.4 fake' > "$outdir/$base.pdf"
echo "convert $src -> $outdir/$base.pdf using filter : writer_pdf_Export"
`

func TestExecRunnerSuccess(t *testing.T) {
	dir, src := writeSource(t)
	c := New(fakeSoffice(t, convertingScript), 10*time.Second)

	res, err := c.Convert(context.Background(), src, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Dev_Ana.pdf"), res.OutputPath)
	data, err := os.ReadFile(res.OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "%PDF")
}

func TestExecRunnerTimeoutIsBounded(t *testing.T) {
	dir, src := writeSource(t)
	c := New(fakeSoffice(t, "sleep 30 & wait"), 200*time.Millisecond)

	start := time.Now()
	_, err := c.Convert(context.Background(), src, dir)
	elapsed := time.Since(start)

	assert.Equal(t, KindTimeout, KindOf(err))
	assert.Less(t, elapsed, 5*time.Second)
}

func TestExecRunnerNonZeroExit(t *testing.T) {
	dir, src := writeSource(t)
	c := New(fakeSoffice(t, "echo 'Error: source file could not be loaded' >&2; exit 81"), 5*time.Second)

	_, err := c.Convert(context.Background(), src, dir)
	var convErr *Error
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, KindExit, convErr.Kind)
	assert.Equal(t, 81, convErr.ExitCode)
	assert.Contains(t, convErr.Stderr, "could not be loaded")
}

func TestExecRunnerBinaryNotFound(t *testing.T) {
	dir, src := writeSource(t)

	_, err := New(filepath.Join(t.TempDir(), "missing-soffice"), time.Second).Convert(context.Background(), src, dir)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = New("definitely-not-an-office-suite", time.Second).Convert(context.Background(), src, dir)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestExecRunnerExitZeroWithoutReport(t *testing.T) {
	dir, src := writeSource(t)
	c := New(fakeSoffice(t, "echo 'javaldx: Could not find a Java Runtime'"), 5*time.Second)

	_, err := c.Convert(context.Background(), src, dir)
	assert.Equal(t, KindNoOutput, KindOf(err))
	assert.Contains(t, err.Error(), "no recoverable output path")
}
