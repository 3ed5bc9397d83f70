package generations

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"cv-generator/internal/convert"
	"cv-generator/internal/extract"
	"cv-generator/internal/preview"
	"cv-generator/internal/shared/metrics"
	"cv-generator/internal/shared/storage/object"
	"cv-generator/internal/shared/telemetry"
	"cv-generator/internal/shared/util"
	"cv-generator/internal/workspace"
	"cv-generator/resume/model"
)

// Renderer fills the CV template.
type Renderer interface {
	Render(form model.FormContext) ([]byte, error)
}

// Converter exports a document to PDF.
type Converter interface {
	Convert(ctx context.Context, source, outDir string) (convert.Result, error)
}

// Sweeper opportunistically removes stale workspaces.
type Sweeper interface {
	MaybeSweep() (workspace.Report, error)
}

// Outcome is the result of a successful generation.
type Outcome struct {
	Generation     Generation
	Workspace      string
	DocxPath       string
	PDFPath        string
	PDF            []byte
	PreviewDataURI string
	DocxReused     bool
}

// Service runs the CV generation pipeline.
type Service struct {
	Repo       Repo
	Workspaces *workspace.Manager
	Sweeper    Sweeper
	Renderer   Renderer
	Converter  Converter
	// Archive is optional; when set, generated PDFs are stored for later download.
	Archive object.ObjectStore

	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Generate fills the template for form inside the holder's workspace, converts it
// to PDF and returns the PDF with its preview. Steps run in order and the first
// failure aborts the attempt with a *StageError. Every attempt is recorded.
func (s *Service) Generate(ctx context.Context, sessionID string, holder workspace.Holder, form model.FormContext) (Outcome, error) {
	if s.Workspaces == nil || s.Renderer == nil || s.Converter == nil {
		return Outcome{}, errors.New("missing dependencies")
	}
	if holder == nil {
		return Outcome{}, ErrInvalidInput
	}
	if err := form.Validate(); err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	metrics.IncGenerationStarted()
	start := s.now()
	gen := Generation{
		ID:            newID(start),
		SessionID:     sessionID,
		JobTitle:      form.JobTitle,
		CandidateName: form.CandidateName,
		DocxName:      util.DocumentFileName(form.JobTitle, form.CandidateName, ".docx"),
		CreatedAt:     start.UTC(),
	}

	out, err := s.run(ctx, holder, form, &gen)
	gen.DurationMs = s.now().Sub(start).Milliseconds()

	fields := map[string]any{
		"session_id":    sessionID,
		"generation_id": gen.ID,
		"duration_ms":   gen.DurationMs,
	}
	if err != nil {
		gen.Status = StatusFailed
		gen.FailedStage = StageOf(err)
		gen.Error = err.Error()
		if kind := convert.KindOf(err); kind != "" {
			gen.FailureKind = string(kind)
		}
		s.record(ctx, gen)
		metrics.IncGenerationFailed()
		fields["stage"] = string(gen.FailedStage)
		fields["error"] = err
		if gen.FailureKind != "" {
			fields["kind"] = gen.FailureKind
		}
		telemetry.Error("generation.failed", fields)
		return Outcome{Generation: gen}, err
	}

	if s.Archive != nil {
		key, archiveErr := s.archive(ctx, sessionID, gen.PDFName, out.PDF)
		if archiveErr != nil {
			telemetry.Warn("generation.archive_failed", map[string]any{
				"session_id":    sessionID,
				"generation_id": gen.ID,
				"error":         archiveErr,
			})
		} else {
			gen.StorageKey = key
		}
	}

	gen.Status = StatusCompleted
	s.record(ctx, gen)
	metrics.IncGenerationCompleted()
	fields["pages"] = gen.Pages
	fields["size_bytes"] = gen.SizeBytes
	fields["archived"] = gen.Archived()
	telemetry.Info("generation.completed", fields)

	out.Generation = gen
	return out, nil
}

func (s *Service) run(ctx context.Context, holder workspace.Holder, form model.FormContext, gen *Generation) (Outcome, error) {
	if s.Sweeper != nil {
		if _, err := s.Sweeper.MaybeSweep(); err != nil {
			telemetry.Warn("workspace.sweep_failed", map[string]any{"error": err})
		}
	}

	dir, err := s.Workspaces.GetOrCreate(holder)
	if err != nil {
		return Outcome{}, stageErr(StageWorkspace, err)
	}

	docx, err := s.Renderer.Render(form)
	if err != nil {
		return Outcome{}, stageErr(StageRender, err)
	}

	docxPath, reused, err := workspace.StoreFile(dir, gen.DocxName, docx)
	if err != nil {
		return Outcome{}, stageErr(StageSaveDocx, err)
	}

	res, err := s.Converter.Convert(ctx, docxPath, dir)
	if err != nil {
		return Outcome{}, stageErr(StageConvert, err)
	}

	pdf, err := os.ReadFile(res.OutputPath)
	if err != nil {
		return Outcome{}, stageErr(StageReadPDF, err)
	}
	info, err := extract.InspectPDF(pdf)
	if err != nil {
		return Outcome{}, stageErr(StageInspect, err)
	}

	gen.PDFName = filepath.Base(res.OutputPath)
	gen.Pages = info.Pages
	gen.SizeBytes = int64(info.Size)

	return Outcome{
		Workspace:      dir,
		DocxPath:       docxPath,
		PDFPath:        res.OutputPath,
		PDF:            pdf,
		PreviewDataURI: preview.DataURI(pdf),
		DocxReused:     reused,
	}, nil
}

func (s *Service) archive(ctx context.Context, sessionID, name string, pdf []byte) (string, error) {
	key, _, mimeType, err := s.Archive.Save(ctx, sessionID, name, bytes.NewReader(pdf))
	if err != nil {
		return "", err
	}
	if mimeType != extract.MimePDF {
		return "", fmt.Errorf("archived object has type %s", mimeType)
	}
	return key, nil
}

func (s *Service) record(ctx context.Context, gen Generation) {
	if s.Repo == nil {
		return
	}
	if err := s.Repo.Create(context.WithoutCancel(ctx), gen); err != nil {
		telemetry.Warn("generation.record_failed", map[string]any{
			"generation_id": gen.ID,
			"error":         err,
		})
	}
}

// Get returns a generation owned by sessionID.
func (s *Service) Get(ctx context.Context, sessionID, id string) (Generation, error) {
	if strings.TrimSpace(sessionID) == "" || strings.TrimSpace(id) == "" {
		return Generation{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, sessionID, id)
}

// List returns a session's generations ordered newest-first.
func (s *Service) List(ctx context.Context, sessionID string, limit, offset int) ([]Generation, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListBySession(ctx, sessionID, limit, offset)
}

// OpenPDF opens the archived PDF of a generation.
func (s *Service) OpenPDF(ctx context.Context, sessionID, id string) (Generation, io.ReadCloser, error) {
	gen, err := s.Get(ctx, sessionID, id)
	if err != nil {
		return Generation{}, nil, err
	}
	if !gen.Archived() || s.Archive == nil {
		return gen, nil, ErrNotArchived
	}
	rc, err := s.Archive.Open(ctx, gen.StorageKey)
	if err != nil {
		return gen, nil, err
	}
	return gen, rc, nil
}

func newID(at time.Time) string {
	id, err := ulid.New(ulid.Timestamp(at), ulid.Monotonic(rand.Reader, 0))
	if err != nil {
		return ulid.Make().String()
	}
	return id.String()
}
