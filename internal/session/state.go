package session

import (
	"errors"
	"strings"
	"sync"

	"cv-generator/resume/model"
)

var (
	// ErrNotFound is returned when a list entry id or index does not exist.
	ErrNotFound = errors.New("entry not found")
	// ErrInvalidInput is returned for entries missing required fields.
	ErrInvalidInput = errors.New("invalid input")
)

// Experience is a stored experience entry with its list id.
type Experience struct {
	ID int `json:"id"`
	model.ExperienceEntry
}

// Education is a stored course entry with its list id.
type Education struct {
	ID int `json:"id"`
	model.EducationEntry
}

// State holds one visitor's form between requests. It is safe for concurrent use.
type State struct {
	mu sync.Mutex

	jobTitle      string
	candidateName string
	summary       string

	experiences    []Experience
	education      []Education
	skills         []string
	certifications []string
	languages      []model.LanguageEntry
	trainings      []string

	nextID        int
	workspacePath string
}

// NewState returns an empty form.
func NewState() *State {
	return &State{}
}

// WorkspacePath returns the cached workspace directory, if any.
func (s *State) WorkspacePath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workspacePath
}

// SetWorkspacePath caches the workspace directory.
func (s *State) SetWorkspacePath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspacePath = path
}

// SetScalars replaces the single-valued fields.
func (s *State) SetScalars(jobTitle, candidateName, summary string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobTitle = strings.TrimSpace(jobTitle)
	s.candidateName = strings.TrimSpace(candidateName)
	s.summary = strings.TrimSpace(summary)
}

func (s *State) allocID() int {
	s.nextID++
	return s.nextID
}

// AddExperience appends an entry and returns its id.
func (s *State) AddExperience(e model.ExperienceEntry) (int, error) {
	e = trimExperience(e)
	if e.Role == "" && e.Organization == "" {
		return 0, errors.Join(ErrInvalidInput, errors.New("cargo or empresa is required"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.allocID()
	s.experiences = append(s.experiences, Experience{ID: id, ExperienceEntry: e})
	return id, nil
}

// UpdateExperience replaces the entry with the given id.
func (s *State) UpdateExperience(id int, e model.ExperienceEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.experiences {
		if s.experiences[i].ID == id {
			s.experiences[i].ExperienceEntry = trimExperience(e)
			return nil
		}
	}
	return ErrNotFound
}

// RemoveExperience drops the entry with the given id.
func (s *State) RemoveExperience(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.experiences {
		if s.experiences[i].ID == id {
			s.experiences = append(s.experiences[:i], s.experiences[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// AddEducation appends a course and returns its id.
func (s *State) AddEducation(e model.EducationEntry) (int, error) {
	e = trimEducation(e)
	if e.Program == "" && e.Institution == "" {
		return 0, errors.Join(ErrInvalidInput, errors.New("curso or instituicao is required"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.allocID()
	s.education = append(s.education, Education{ID: id, EducationEntry: e})
	return id, nil
}

// UpdateEducation replaces the course with the given id.
func (s *State) UpdateEducation(id int, e model.EducationEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.education {
		if s.education[i].ID == id {
			s.education[i].EducationEntry = trimEducation(e)
			return nil
		}
	}
	return ErrNotFound
}

// RemoveEducation drops the course with the given id.
func (s *State) RemoveEducation(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.education {
		if s.education[i].ID == id {
			s.education = append(s.education[:i], s.education[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// AddSkill appends a skill. Blank values are ignored and report false.
func (s *State) AddSkill(skill string) bool {
	return s.addText(&s.skills, skill)
}

// RemoveSkill drops the skill at index.
func (s *State) RemoveSkill(index int) error {
	return s.removeText(&s.skills, index)
}

// AddCertification appends a certification. Blank values are ignored.
func (s *State) AddCertification(cert string) bool {
	return s.addText(&s.certifications, cert)
}

// RemoveCertification drops the certification at index.
func (s *State) RemoveCertification(index int) error {
	return s.removeText(&s.certifications, index)
}

// AddTraining appends a training. Blank values are ignored.
func (s *State) AddTraining(training string) bool {
	return s.addText(&s.trainings, training)
}

// RemoveTraining drops the training at index.
func (s *State) RemoveTraining(index int) error {
	return s.removeText(&s.trainings, index)
}

// AddLanguage stores a language with its level. Both parts are required.
func (s *State) AddLanguage(language, level string) error {
	entry := model.LanguageEntry{Language: strings.TrimSpace(language), Level: strings.TrimSpace(level)}
	if entry.Language == "" || entry.Level == "" {
		return errors.Join(ErrInvalidInput, errors.New("lingua and nivel are required"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.languages = append(s.languages, entry)
	return nil
}

// RemoveLanguage drops the language at index.
func (s *State) RemoveLanguage(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removeAt(&s.languages, index)
}

// Reset clears the form and the cached workspace path. Ids keep counting up.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobTitle = ""
	s.candidateName = ""
	s.summary = ""
	s.experiences = nil
	s.education = nil
	s.skills = nil
	s.certifications = nil
	s.languages = nil
	s.trainings = nil
	s.workspacePath = ""
}

// FormContext snapshots the state for rendering.
func (s *State) FormContext() model.FormContext {
	s.mu.Lock()
	defer s.mu.Unlock()

	form := model.FormContext{
		JobTitle:       s.jobTitle,
		CandidateName:  s.candidateName,
		Summary:        s.summary,
		Experiences:    make([]model.ExperienceEntry, 0, len(s.experiences)),
		Education:      make([]model.EducationEntry, 0, len(s.education)),
		Skills:         append([]string{}, s.skills...),
		Certifications: append([]string{}, s.certifications...),
		Languages:      append([]model.LanguageEntry{}, s.languages...),
		Trainings:      append([]string{}, s.trainings...),
	}
	for _, e := range s.experiences {
		form.Experiences = append(form.Experiences, e.ExperienceEntry)
	}
	for _, e := range s.education {
		form.Education = append(form.Education, e.EducationEntry)
	}
	return form
}

// View is a read-only copy of the state used by templates. Languages are "lingua - nivel" labels.
type View struct {
	JobTitle       string
	CandidateName  string
	Summary        string
	Experiences    []Experience
	Education      []Education
	Skills         []string
	Certifications []string
	Languages      []string
	Trainings      []string
}

// View returns a copy of the state with list ids.
func (s *State) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	labels := make([]string, 0, len(s.languages))
	for _, lang := range s.languages {
		labels = append(labels, lang.Label())
	}
	return View{
		JobTitle:       s.jobTitle,
		CandidateName:  s.candidateName,
		Summary:        s.summary,
		Experiences:    append([]Experience{}, s.experiences...),
		Education:      append([]Education{}, s.education...),
		Skills:         append([]string{}, s.skills...),
		Certifications: append([]string{}, s.certifications...),
		Languages:      labels,
		Trainings:      append([]string{}, s.trainings...),
	}
}

func (s *State) addText(list *[]string, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	*list = append(*list, value)
	return true
}

func (s *State) removeText(list *[]string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removeAt(list, index)
}

func removeAt[T any](list *[]T, index int) error {
	if index < 0 || index >= len(*list) {
		return ErrNotFound
	}
	*list = append((*list)[:index], (*list)[index+1:]...)
	return nil
}

func trimExperience(e model.ExperienceEntry) model.ExperienceEntry {
	return model.ExperienceEntry{
		Period:       strings.TrimSpace(e.Period),
		Start:        strings.TrimSpace(e.Start),
		End:          strings.TrimSpace(e.End),
		Role:         strings.TrimSpace(e.Role),
		Organization: strings.TrimSpace(e.Organization),
		Description:  strings.TrimSpace(e.Description),
	}
}

func trimEducation(e model.EducationEntry) model.EducationEntry {
	return model.EducationEntry{
		Start:       strings.TrimSpace(e.Start),
		End:         strings.TrimSpace(e.End),
		Program:     strings.TrimSpace(e.Program),
		Institution: strings.TrimSpace(e.Institution),
	}
}
