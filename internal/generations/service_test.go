package generations

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cv-generator/internal/convert"
	"cv-generator/internal/session"
	"cv-generator/internal/shared/storage/object/local"
	"cv-generator/internal/workspace"
	"cv-generator/resume/model"
)

const fakePDF = "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n"

type fakeRenderer struct {
	out []byte
	err error
}

func (f fakeRenderer) Render(model.FormContext) ([]byte, error) {
	return f.out, f.err
}

type fakeConverter struct {
	calls  int
	pdf    string
	err    error
	source string
}

func (f *fakeConverter) Convert(_ context.Context, source, outDir string) (convert.Result, error) {
	f.calls++
	f.source = source
	if f.err != nil {
		return convert.Result{}, f.err
	}
	out := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(source), ".docx")+".pdf")
	if err := os.WriteFile(out, []byte(f.pdf), 0o600); err != nil {
		return convert.Result{}, err
	}
	return convert.Result{OutputPath: out}, nil
}

type countingSweeper struct {
	calls int
	err   error
}

func (s *countingSweeper) MaybeSweep() (workspace.Report, error) {
	s.calls++
	return workspace.Report{}, s.err
}

func newTestService(t *testing.T, conv *fakeConverter) (*Service, *MemoryRepo, *countingSweeper) {
	t.Helper()
	repo := NewMemoryRepo()
	sweeper := &countingSweeper{}
	return &Service{
		Repo:       repo,
		Workspaces: &workspace.Manager{Root: t.TempDir()},
		Sweeper:    sweeper,
		Renderer:   fakeRenderer{out: []byte("docx-bytes")},
		Converter:  conv,
	}, repo, sweeper
}

func sampleForm() model.FormContext {
	return model.FormContext{JobTitle: "Analista de Dados", CandidateName: "Maria Silva", Skills: []string{"SQL"}}
}

func TestGenerateProducesPreviewAndRecord(t *testing.T) {
	conv := &fakeConverter{pdf: fakePDF}
	svc, repo, sweeper := newTestService(t, conv)
	state := session.NewState()

	out, err := svc.Generate(context.Background(), "sess-1", state, sampleForm())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if sweeper.calls != 1 {
		t.Fatalf("expected sweeper to be consulted once, got %d", sweeper.calls)
	}
	if filepath.Base(out.DocxPath) != "Analista de Dados_Maria Silva.docx" {
		t.Fatalf("unexpected docx name %q", out.DocxPath)
	}
	if filepath.Dir(out.DocxPath) != state.WorkspacePath() {
		t.Fatalf("docx written outside the session workspace: %q", out.DocxPath)
	}
	if !strings.HasPrefix(out.PreviewDataURI, "data:application/pdf;base64,") {
		t.Fatalf("unexpected preview prefix")
	}
	if string(out.PDF) != fakePDF {
		t.Fatalf("pdf bytes mismatch")
	}

	gens, err := repo.ListBySession(context.Background(), "sess-1", 0, 0)
	if err != nil || len(gens) != 1 {
		t.Fatalf("expected one record, got %d (%v)", len(gens), err)
	}
	if gens[0].Status != StatusCompleted || gens[0].PDFName != "Analista de Dados_Maria Silva.pdf" {
		t.Fatalf("unexpected record: %+v", gens[0])
	}
}

func TestGenerateReusesWorkspaceAndDocx(t *testing.T) {
	conv := &fakeConverter{pdf: fakePDF}
	svc, _, _ := newTestService(t, conv)
	state := session.NewState()

	first, err := svc.Generate(context.Background(), "s", state, sampleForm())
	if err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	second, err := svc.Generate(context.Background(), "s", state, sampleForm())
	if err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	if first.Workspace != second.Workspace {
		t.Fatalf("expected same workspace, got %q and %q", first.Workspace, second.Workspace)
	}
	if first.DocxReused || !second.DocxReused {
		t.Fatalf("expected only the second docx to be reused")
	}
}

func TestGenerateStopsAtFirstFailure(t *testing.T) {
	tests := []struct {
		name      string
		renderErr error
		convErr   error
		pdf       string
		wantStage Stage
		wantConv  int
	}{
		{name: "render", renderErr: errors.New("bad template"), wantStage: StageRender, wantConv: 0},
		{name: "convert", convErr: &convert.Error{Kind: convert.KindTimeout}, wantStage: StageConvert, wantConv: 1},
		{name: "not a pdf", pdf: "plain text", wantStage: StageInspect, wantConv: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := &fakeConverter{pdf: tt.pdf, err: tt.convErr}
			svc, repo, _ := newTestService(t, conv)
			svc.Renderer = fakeRenderer{out: []byte("docx"), err: tt.renderErr}

			_, err := svc.Generate(context.Background(), "s", session.NewState(), sampleForm())
			if err == nil {
				t.Fatalf("expected error")
			}
			if got := StageOf(err); got != tt.wantStage {
				t.Fatalf("expected stage %q, got %q (%v)", tt.wantStage, got, err)
			}
			if conv.calls != tt.wantConv {
				t.Fatalf("expected %d convert calls, got %d", tt.wantConv, conv.calls)
			}
			gens, _ := repo.ListBySession(context.Background(), "s", 0, 0)
			if len(gens) != 1 || gens[0].Status != StatusFailed || gens[0].FailedStage != tt.wantStage {
				t.Fatalf("expected failed record, got %+v", gens)
			}
		})
	}
}

func TestGenerateRecordsConversionKind(t *testing.T) {
	conv := &fakeConverter{err: &convert.Error{Kind: convert.KindNoOutput}}
	svc, repo, _ := newTestService(t, conv)

	_, err := svc.Generate(context.Background(), "s", session.NewState(), sampleForm())
	if !errors.Is(err, &convert.Error{Kind: convert.KindNoOutput}) {
		t.Fatalf("expected no_output conversion error, got %v", err)
	}
	gens, _ := repo.ListBySession(context.Background(), "s", 0, 0)
	if gens[0].FailureKind != "no_output" {
		t.Fatalf("expected failure kind no_output, got %q", gens[0].FailureKind)
	}
}

func TestGenerateIgnoresSweepFailure(t *testing.T) {
	svc, _, sweeper := newTestService(t, &fakeConverter{pdf: fakePDF})
	sweeper.err = errors.New("permission denied")
	if _, err := svc.Generate(context.Background(), "s", session.NewState(), sampleForm()); err != nil {
		t.Fatalf("sweep failure must not abort generation: %v", err)
	}
}

func TestGenerateRejectsInvalidForm(t *testing.T) {
	conv := &fakeConverter{pdf: fakePDF}
	svc, _, _ := newTestService(t, conv)
	form := sampleForm()
	form.Languages = []model.LanguageEntry{{Level: "Fluente"}}
	if _, err := svc.Generate(context.Background(), "s", session.NewState(), form); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if conv.calls != 0 {
		t.Fatalf("converter must not run for invalid input")
	}
}

func TestGenerateArchivesAndOpensPDF(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeConverter{pdf: fakePDF})
	svc.Archive = local.New(t.TempDir())

	out, err := svc.Generate(context.Background(), "s", session.NewState(), sampleForm())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !out.Generation.Archived() {
		t.Fatalf("expected archived generation")
	}
	_, rc, err := svc.OpenPDF(context.Background(), "s", out.Generation.ID)
	if err != nil {
		t.Fatalf("OpenPDF: %v", err)
	}
	rc.Close()

	if _, _, err := svc.OpenPDF(context.Background(), "other", out.Generation.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestOpenPDFWithoutArchive(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeConverter{pdf: fakePDF})
	out, err := svc.Generate(context.Background(), "s", session.NewState(), sampleForm())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, _, err := svc.OpenPDF(context.Background(), "s", out.Generation.ID); !errors.Is(err, ErrNotArchived) {
		t.Fatalf("expected ErrNotArchived, got %v", err)
	}
}
