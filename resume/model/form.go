package model

import (
	"errors"
	"fmt"
	"strings"
)

// FormContext is everything the candidate filled in for one generation.
type FormContext struct {
	JobTitle       string            `json:"vaga" yaml:"vaga"`
	CandidateName  string            `json:"nome_candidato" yaml:"nome_candidato"`
	Summary        string            `json:"apresentacao" yaml:"apresentacao"`
	Experiences    []ExperienceEntry `json:"experiencias" yaml:"experiencias"`
	Education      []EducationEntry  `json:"cursos" yaml:"cursos"`
	Skills         []string          `json:"habilidades" yaml:"habilidades"`
	Certifications []string          `json:"certificados" yaml:"certificados"`
	Languages      []LanguageEntry   `json:"idiomas" yaml:"idiomas"`
	Trainings      []string          `json:"treinamentos" yaml:"treinamentos"`
}

// ExperienceEntry is one job held by the candidate.
type ExperienceEntry struct {
	// Period, when set, is printed as-is instead of "inicio - fim".
	Period       string `json:"periodo,omitempty" yaml:"periodo,omitempty"`
	Start        string `json:"inicio" yaml:"inicio"`
	End          string `json:"fim" yaml:"fim"`
	Role         string `json:"cargo" yaml:"cargo"`
	Organization string `json:"empresa" yaml:"empresa"`
	Description  string `json:"descricao" yaml:"descricao"`
}

// PeriodLabel is the text printed for {{periodo}}.
func (e ExperienceEntry) PeriodLabel() string {
	if p := strings.TrimSpace(e.Period); p != "" {
		return p
	}
	return e.Start + " - " + e.End
}

// EducationEntry is one course or degree.
type EducationEntry struct {
	Start       string `json:"inicio" yaml:"inicio"`
	End         string `json:"fim" yaml:"fim"`
	Program     string `json:"curso" yaml:"curso"`
	Institution string `json:"instituicao" yaml:"instituicao"`
}

// LanguageEntry pairs a language with a proficiency level.
type LanguageEntry struct {
	Language string `json:"lingua" yaml:"lingua"`
	Level    string `json:"nivel" yaml:"nivel"`
}

// Label renders "lingua - nivel", or whichever half is present.
func (l LanguageEntry) Label() string {
	lang := strings.TrimSpace(l.Language)
	level := strings.TrimSpace(l.Level)
	switch {
	case lang != "" && level != "":
		return lang + " - " + level
	case lang != "":
		return lang
	default:
		return level
	}
}

// Validate rejects shapes the template cannot print. Blank scalars are allowed.
func (f FormContext) Validate() error {
	for i, lang := range f.Languages {
		if strings.TrimSpace(lang.Language) == "" {
			return fmt.Errorf("idiomas[%d].lingua is required", i)
		}
	}
	for i, skill := range f.Skills {
		if strings.TrimSpace(skill) == "" {
			return fmt.Errorf("habilidades[%d] is blank", i)
		}
	}
	for i, cert := range f.Certifications {
		if strings.TrimSpace(cert) == "" {
			return fmt.Errorf("certificados[%d] is blank", i)
		}
	}
	if strings.ContainsAny(f.JobTitle+f.CandidateName, "\x00") {
		return errors.New("vaga and nome_candidato must not contain NUL bytes")
	}
	return nil
}
