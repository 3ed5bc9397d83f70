package generations

import "time"

// Status is the outcome of a generation attempt.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Stage names a step of the generation pipeline.
type Stage string

const (
	StageWorkspace Stage = "workspace"
	StageRender    Stage = "render"
	StageSaveDocx  Stage = "save_docx"
	StageConvert   Stage = "convert"
	StageReadPDF   Stage = "read_pdf"
	StageInspect   Stage = "inspect"
)

// Generation records one attempt at producing a CV.
type Generation struct {
	ID            string
	SessionID     string
	JobTitle      string
	CandidateName string
	DocxName      string
	PDFName       string
	Status        Status
	FailedStage   Stage
	FailureKind   string
	Error         string
	Pages         int
	SizeBytes     int64
	StorageKey    string
	DurationMs    int64
	CreatedAt     time.Time
}

// Archived reports whether the PDF can be downloaded later.
func (g Generation) Archived() bool {
	return g.StorageKey != ""
}
