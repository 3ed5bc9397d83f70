package generations

import "time"

// Response is the outward-facing representation of a generation.
type Response struct {
	GenerationID  string    `json:"generationId"`
	JobTitle      string    `json:"jobTitle"`
	CandidateName string    `json:"candidateName"`
	DocxName      string    `json:"docxName"`
	PDFName       string    `json:"pdfName,omitempty"`
	Status        Status    `json:"status"`
	FailedStage   Stage     `json:"failedStage,omitempty"`
	FailureKind   string    `json:"failureKind,omitempty"`
	Error         string    `json:"error,omitempty"`
	Pages         int       `json:"pages"`
	SizeBytes     int64     `json:"sizeBytes"`
	Archived      bool      `json:"archived"`
	DurationMs    int64     `json:"durationMs"`
	CreatedAt     time.Time `json:"createdAt"`
}

// GenerateResponse adds the inline preview to a fresh generation.
type GenerateResponse struct {
	Response
	PreviewDataURI string `json:"previewDataUri"`
}

func toResponse(g Generation) Response {
	return Response{
		GenerationID:  g.ID,
		JobTitle:      g.JobTitle,
		CandidateName: g.CandidateName,
		DocxName:      g.DocxName,
		PDFName:       g.PDFName,
		Status:        g.Status,
		FailedStage:   g.FailedStage,
		FailureKind:   g.FailureKind,
		Error:         g.Error,
		Pages:         g.Pages,
		SizeBytes:     g.SizeBytes,
		Archived:      g.Archived(),
		DurationMs:    g.DurationMs,
		CreatedAt:     g.CreatedAt,
	}
}
