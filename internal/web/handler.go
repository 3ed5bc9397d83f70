package web

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cv-generator/internal/generations"
	"cv-generator/internal/preview"
	"cv-generator/internal/session"
	"cv-generator/internal/shared/server/middleware"
	"cv-generator/internal/shared/server/respond"
	"cv-generator/internal/shared/telemetry"
	"cv-generator/internal/workspace"
	"cv-generator/resume/model"
)

// Preview is the converted PDF shown under the form.
type Preview struct {
	Name  string
	Frame template.HTML
}

// PageData is the form page model.
type PageData struct {
	Title       string
	Form        session.View
	SummaryHTML template.HTML
	Error       string
	Preview     *Preview
}

// Handler serves the browser form.
type Handler struct {
	Sessions    session.Store
	Generations *generations.Service
	Workspaces  *workspace.Manager
}

// NewHandler constructs a Handler.
func NewHandler(sessions session.Store, svc *generations.Service, workspaces *workspace.Manager) *Handler {
	return &Handler{Sessions: sessions, Generations: svc, Workspaces: workspaces}
}

// RegisterRoutes attaches the form routes. generate guards POST /generate.
func (h *Handler) RegisterRoutes(r gin.IRoutes, generate ...gin.HandlerFunc) {
	r.GET("/", h.index)
	r.POST("/form", h.saveScalars)
	r.POST("/form/:list", h.addEntry)
	r.POST("/form/:list/:id/remove", h.removeEntry)
	handlers := append(append([]gin.HandlerFunc{}, generate...), h.generate)
	r.POST("/generate", handlers...)
	r.POST("/session/reset", h.reset)
}

func (h *Handler) state(c *gin.Context) *session.State {
	return h.Sessions.Get(middleware.SessionIDFromContext(c))
}

func (h *Handler) page(state *session.State) PageData {
	view := state.View()
	return PageData{
		Title:       "Gerador de Currículo",
		Form:        view,
		SummaryHTML: RenderMarkdown(view.Summary),
	}
}

func (h *Handler) index(c *gin.Context) {
	c.HTML(http.StatusOK, PageTemplate, h.page(h.state(c)))
}

func (h *Handler) saveScalars(c *gin.Context) {
	h.state(c).SetScalars(c.PostForm("vaga"), c.PostForm("nome_candidato"), c.PostForm("apresentacao"))
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) addEntry(c *gin.Context) {
	state := h.state(c)
	var err error
	switch c.Param("list") {
	case model.SectionExperiences:
		_, err = state.AddExperience(model.ExperienceEntry{
			Period:       c.PostForm("periodo"),
			Start:        c.PostForm("inicio"),
			End:          c.PostForm("fim"),
			Role:         c.PostForm("cargo"),
			Organization: c.PostForm("empresa"),
			Description:  c.PostForm("descricao"),
		})
	case model.SectionEducation:
		_, err = state.AddEducation(model.EducationEntry{
			Start:       c.PostForm("inicio"),
			End:         c.PostForm("fim"),
			Program:     c.PostForm("curso"),
			Institution: c.PostForm("instituicao"),
		})
	case model.SectionSkills:
		state.AddSkill(c.PostForm("valor"))
	case model.SectionCertifications:
		state.AddCertification(c.PostForm("valor"))
	case model.SectionTrainings:
		state.AddTraining(c.PostForm("valor"))
	case model.SectionLanguages:
		err = state.AddLanguage(c.PostForm("lingua"), c.PostForm("nivel"))
	default:
		h.fail(c, state, http.StatusNotFound, "not_found", "unknown list")
		return
	}
	if err != nil {
		h.fail(c, state, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) removeEntry(c *gin.Context) {
	state := h.state(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.fail(c, state, http.StatusBadRequest, "validation_error", "invalid entry id")
		return
	}
	switch c.Param("list") {
	case model.SectionExperiences:
		err = state.RemoveExperience(id)
	case model.SectionEducation:
		err = state.RemoveEducation(id)
	case model.SectionSkills:
		err = state.RemoveSkill(id)
	case model.SectionCertifications:
		err = state.RemoveCertification(id)
	case model.SectionTrainings:
		err = state.RemoveTraining(id)
	case model.SectionLanguages:
		err = state.RemoveLanguage(id)
	default:
		err = session.ErrNotFound
	}
	if errors.Is(err, session.ErrNotFound) {
		h.fail(c, state, http.StatusNotFound, "not_found", "entry not found")
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) generate(c *gin.Context) {
	sessionID := middleware.SessionIDFromContext(c)
	state := h.Sessions.Get(sessionID)
	if _, ok := c.GetPostForm("vaga"); ok {
		state.SetScalars(c.PostForm("vaga"), c.PostForm("nome_candidato"), c.PostForm("apresentacao"))
	}

	out, err := h.Generations.Generate(c.Request.Context(), sessionID, state, state.FormContext())
	if err != nil {
		f := generations.Describe(err)
		h.fail(c, state, f.Status, f.Code, f.Message)
		return
	}

	data := h.page(state)
	data.Preview = &Preview{
		Name:  out.Generation.PDFName,
		Frame: template.HTML(preview.IFrame(out.Generation.PDFName, out.PreviewDataURI)),
	}
	c.HTML(http.StatusOK, PageTemplate, data)
}

func (h *Handler) reset(c *gin.Context) {
	state := h.state(c)
	if err := h.Workspaces.Remove(state); err != nil {
		telemetry.Warn("session.reset_failed", map[string]any{
			"session_id": middleware.SessionIDFromContext(c),
			"error":      err,
		})
	}
	state.Reset()
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) fail(c *gin.Context, state *session.State, status int, code, message string) {
	data := h.page(state)
	data.Error = message
	respond.HTMLError(c, status, code, message, PageTemplate, gin.H{
		"Title":       data.Title,
		"Form":        data.Form,
		"SummaryHTML": data.SummaryHTML,
		"Error":       data.Error,
	})
}
