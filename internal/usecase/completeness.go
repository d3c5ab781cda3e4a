package usecase

import (
	"fmt"
	"strings"

	"resume-builder/internal/domain"
)

// StageValidationResult holds validation state for a stage
type StageValidationResult struct {
	Stage   string   `json:"stage"`
	Valid   bool     `json:"valid"`
	Missing []string `json:"missing"`
}

func newStage(name string) *StageValidationResult {
	return &StageValidationResult{Stage: name, Valid: true, Missing: []string{}}
}

func (r *StageValidationResult) miss(path string) {
	r.Valid = false
	r.Missing = append(r.Missing, path)
}

// HeaderStage requires header.fullName and header.email. A resume cannot be
// published until this stage is valid.
func HeaderStage(doc domain.ResumeDocument) *StageValidationResult {
	r := newStage("header")
	if blank(doc.Header.FullName) {
		r.miss("header.fullName")
	}
	if blank(doc.Header.Email) {
		r.miss("header.email")
	}
	return r
}

// ExperienceStage checks that every role names a company and a position,
// and has an end date unless it is current.
func ExperienceStage(doc domain.ResumeDocument) *StageValidationResult {
	r := newStage("experience")
	for i, e := range doc.Experience {
		if blank(e.Company) {
			r.miss(fmt.Sprintf("experience[%d].company", i))
		}
		if blank(e.Position) {
			r.miss(fmt.Sprintf("experience[%d].position", i))
		}
		if !e.Current && blank(e.EndDate) && !blank(e.StartDate) {
			r.miss(fmt.Sprintf("experience[%d].endDate", i))
		}
	}
	return r
}

// EducationStage checks that every entry names an institution and degree.
func EducationStage(doc domain.ResumeDocument) *StageValidationResult {
	r := newStage("education")
	for i, e := range doc.Education {
		if blank(e.Institution) {
			r.miss(fmt.Sprintf("education[%d].institution", i))
		}
		if blank(e.Degree) {
			r.miss(fmt.Sprintf("education[%d].degree", i))
		}
	}
	return r
}

// ShowcaseStage checks projects and certifications have names and that at
// least one technical skill is listed.
func ShowcaseStage(doc domain.ResumeDocument) *StageValidationResult {
	r := newStage("showcase")
	if len(compactStrings(doc.Skills.Technical)) == 0 {
		r.miss("skills.technical")
	}
	for i, p := range doc.Projects {
		if blank(p.Name) {
			r.miss(fmt.Sprintf("projects[%d].name", i))
		}
	}
	for i, c := range doc.Certifications {
		if blank(c.Name) {
			r.miss(fmt.Sprintf("certifications[%d].name", i))
		}
	}
	return r
}

// Completeness runs every stage in order.
func Completeness(doc domain.ResumeDocument) []*StageValidationResult {
	return []*StageValidationResult{
		HeaderStage(doc),
		ExperienceStage(doc),
		EducationStage(doc),
		ShowcaseStage(doc),
	}
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
