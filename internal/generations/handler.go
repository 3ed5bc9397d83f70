package generations

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cv-generator/internal/session"
	"cv-generator/internal/shared/server/middleware"
	"cv-generator/internal/shared/server/respond"
	"cv-generator/resume/model"
)

const maxFormBody = 1 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc      *Service
	Sessions session.Store
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, sessions session.Store) *Handler {
	return &Handler{Svc: svc, Sessions: sessions}
}

// RegisterRoutes attaches generation routes. generate guards the POST route.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, generate ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, generate...), h.create)
	rg.POST("/generations", handlers...)
	rg.GET("/generations", h.list)
	rg.GET("/generations/:id", h.get)
	rg.GET("/generations/:id/pdf", h.pdf)
}

func (h *Handler) create(c *gin.Context) {
	sessionID := middleware.SessionIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxFormBody)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respond.Error(c, http.StatusRequestEntityTooLarge, "validation_error", "request body too large", nil)
		return
	}
	if err := ValidateFormJSON(body); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	var form model.FormContext
	if err := json.Unmarshal(body, &form); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	state := h.Sessions.Get(sessionID)
	out, err := h.Svc.Generate(c.Request.Context(), sessionID, state, form)
	if err != nil {
		f := Describe(err)
		details := gin.H{"stage": StageOf(err)}
		if out.Generation.ID != "" {
			details["generationId"] = out.Generation.ID
		}
		respond.Error(c, f.Status, f.Code, f.Message, details)
		return
	}

	respond.JSON(c, http.StatusCreated, GenerateResponse{
		Response:       toResponse(out.Generation),
		PreviewDataURI: out.PreviewDataURI,
	})
}

func (h *Handler) list(c *gin.Context) {
	sessionID := middleware.SessionIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > 50 {
		limit = 50
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	gens, err := h.Svc.List(c.Request.Context(), sessionID, limit, offset)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list generations", nil)
		}
		return
	}

	resp := make([]Response, 0, len(gens))
	for _, g := range gens {
		resp = append(resp, toResponse(g))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) get(c *gin.Context) {
	gen, err := h.Svc.Get(c.Request.Context(), middleware.SessionIDFromContext(c), c.Param("id"))
	if err != nil {
		h.lookupError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(gen))
}

func (h *Handler) pdf(c *gin.Context) {
	gen, rc, err := h.Svc.OpenPDF(c.Request.Context(), middleware.SessionIDFromContext(c), c.Param("id"))
	if err != nil {
		h.lookupError(c, err)
		return
	}
	defer rc.Close()

	respond.File(c, gen.PDFName, "application/pdf", gen.SizeBytes, rc)
}

func (h *Handler) lookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "generation not found", nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "generation belongs to another session", nil)
	case errors.Is(err, ErrNotArchived):
		respond.Error(c, http.StatusNotFound, "not_archived", "the PDF of this generation was not archived", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch generation", nil)
	}
}
