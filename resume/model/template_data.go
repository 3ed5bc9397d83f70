package model

// Section names recognised by the document template.
const (
	SectionExperiences    = "experiencias"
	SectionEducation      = "cursos"
	SectionSkills         = "habilidades"
	SectionCertifications = "certificados"
	SectionLanguages      = "idiomas"
	SectionTrainings      = "treinamentos"
)

// SectionFields lists the per-item placeholders each section understands.
var SectionFields = map[string][]string{
	SectionExperiences:    {"periodo", "inicio", "fim", "cargo", "empresa", "descricao"},
	SectionEducation:      {"inicio", "fim", "curso", "instituicao"},
	SectionSkills:         {"habilidade"},
	SectionCertifications: {"certificado"},
	SectionLanguages:      {"idioma", "lingua", "nivel"},
	SectionTrainings:      {"treinamento"},
}

// TemplateData is the flattened view of a FormContext bound to placeholders.
// Scalars fill {{name}} tokens and each section repeats once per item.
// Fields names the placeholders a section accepts even when it has no items.
type TemplateData struct {
	Scalars  map[string]string
	Sections map[string][]map[string]string
	Fields   map[string][]string
}

// HasSection reports whether name can be used as {{#name}}.
func (d TemplateData) HasSection(name string) bool {
	if _, ok := d.Sections[name]; ok {
		return true
	}
	_, ok := d.Fields[name]
	return ok
}

// SectionHasField reports whether {{field}} is valid inside {{#section}}.
func (d TemplateData) SectionHasField(section, field string) bool {
	for _, f := range d.Fields[section] {
		if f == field {
			return true
		}
	}
	for _, item := range d.Sections[section] {
		if _, ok := item[field]; ok {
			return true
		}
	}
	return false
}

// ToTemplateData maps the form onto template placeholder names.
func (f FormContext) ToTemplateData() TemplateData {
	data := TemplateData{
		Scalars: map[string]string{
			"vaga":           f.JobTitle,
			"nome_candidato": f.CandidateName,
			"apresentacao":   f.Summary,
		},
		Sections: make(map[string][]map[string]string, len(SectionFields)),
		Fields:   SectionFields,
	}

	experiences := make([]map[string]string, 0, len(f.Experiences))
	for _, exp := range f.Experiences {
		experiences = append(experiences, map[string]string{
			"periodo":   exp.PeriodLabel(),
			"inicio":    exp.Start,
			"fim":       exp.End,
			"cargo":     exp.Role,
			"empresa":   exp.Organization,
			"descricao": exp.Description,
		})
	}
	data.Sections[SectionExperiences] = experiences

	education := make([]map[string]string, 0, len(f.Education))
	for _, edu := range f.Education {
		education = append(education, map[string]string{
			"inicio":      edu.Start,
			"fim":         edu.End,
			"curso":       edu.Program,
			"instituicao": edu.Institution,
		})
	}
	data.Sections[SectionEducation] = education

	data.Sections[SectionSkills] = singleField("habilidade", f.Skills)
	data.Sections[SectionCertifications] = singleField("certificado", f.Certifications)
	data.Sections[SectionTrainings] = singleField("treinamento", f.Trainings)

	languages := make([]map[string]string, 0, len(f.Languages))
	for _, lang := range f.Languages {
		languages = append(languages, map[string]string{
			"idioma": lang.Label(),
			"lingua": lang.Language,
			"nivel":  lang.Level,
		})
	}
	data.Sections[SectionLanguages] = languages

	return data
}

func singleField(key string, values []string) []map[string]string {
	out := make([]map[string]string, 0, len(values))
	for _, v := range values {
		out = append(out, map[string]string{key: v})
	}
	return out
}
