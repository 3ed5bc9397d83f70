package generations

import (
	"errors"
	"net/http"

	"cv-generator/internal/convert"
	"cv-generator/internal/extract"
	"cv-generator/resume/render"
)

// MsgNoOutput is shown when the office suite exited cleanly without writing a PDF.
const MsgNoOutput = "Conversion failed. No PDF file was created."

// Failure is the user-facing view of a generation error.
type Failure struct {
	Status  int
	Code    string
	Message string
}

// Describe maps a Generate error to an HTTP status, error code and message.
func Describe(err error) Failure {
	switch {
	case err == nil:
		return Failure{Status: http.StatusOK}
	case errors.Is(err, ErrInvalidInput):
		return Failure{http.StatusBadRequest, "validation_error", err.Error()}
	}

	var convErr *convert.Error
	if errors.As(err, &convErr) {
		switch convErr.Kind {
		case convert.KindTimeout:
			return Failure{http.StatusGatewayTimeout, "conversion_timeout", withCause("Conversion timed out", convErr)}
		case convert.KindNotFound:
			return Failure{http.StatusServiceUnavailable, "converter_unavailable", withCause("The PDF converter is not installed", convErr)}
		case convert.KindNoOutput:
			return Failure{http.StatusBadGateway, "conversion_no_output", MsgNoOutput}
		case convert.KindCanceled:
			return Failure{499, "conversion_canceled", "Conversion was canceled."}
		default:
			return Failure{http.StatusBadGateway, "conversion_failed", withCause("Conversion failed", convErr)}
		}
	}

	switch StageOf(err) {
	case StageRender:
		if errors.Is(err, render.ErrTemplateMissing) {
			return Failure{http.StatusInternalServerError, "template_missing", withCause("The CV template could not be found", cause(err))}
		}
		return Failure{http.StatusUnprocessableEntity, "render_failed", withCause("The CV template could not be filled", cause(err))}
	case StageWorkspace, StageSaveDocx:
		return Failure{http.StatusInternalServerError, "workspace_error", withCause("The working directory could not be prepared", cause(err))}
	case StageReadPDF:
		return Failure{http.StatusInternalServerError, "read_failed", withCause("The converted PDF could not be read", cause(err))}
	case StageInspect:
		if errors.Is(err, extract.ErrNotPDF) {
			return Failure{http.StatusBadGateway, "invalid_output", withCause("The converter did not produce a PDF", cause(err))}
		}
		return Failure{http.StatusBadGateway, "invalid_output", withCause("The converted PDF could not be inspected", cause(err))}
	}
	return Failure{http.StatusInternalServerError, "internal_error", withCause("Generation failed", cause(err))}
}

// cause strips the stage prefix so users see the underlying error.
func cause(err error) error {
	var se *StageError
	if errors.As(err, &se) && se.Err != nil {
		return se.Err
	}
	return err
}

func withCause(msg string, err error) string {
	if err == nil {
		return msg + "."
	}
	return msg + ": " + err.Error()
}
