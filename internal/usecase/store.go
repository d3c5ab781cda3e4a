package usecase

import (
	"errors"
	"fmt"
	"sync"

	"resume-builder/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrUnknownSection = errors.New("unknown section")
	ErrUnknownField   = errors.New("unknown field")
	ErrSectionType    = errors.New("value does not match section type")
)

// Store holds the single mutable document of an editing session.
//
// Index based operations treat an out of range index as a no-op and report
// false. Every mutation bumps the revision of the section it touched and
// no other, so observers can skip unchanged sections.
type Store struct {
	mu    sync.Mutex
	doc   domain.ResumeDocument
	revs  map[domain.Section]uint64
	newID func() string
}

// NewStore wraps doc. Nil slices are replaced with empty ones.
func NewStore(doc domain.ResumeDocument) *Store {
	doc = doc.Clone()
	doc.Normalize()
	return &Store{
		doc:   doc,
		revs:  map[domain.Section]uint64{},
		newID: uuid.NewString,
	}
}

// Snapshot returns a deep copy of the current document.
func (s *Store) Snapshot() domain.ResumeDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Revision reports how many times section has been changed.
func (s *Store) Revision(section domain.Section) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revs[section]
}

func (s *Store) touch(section domain.Section) { s.revs[section]++ }

// ReplaceSection assigns a whole section. The value must have the section's
// Go type: Header, string, []Experience, []Education, Skills, []Project or
// []Certification.
func (s *Store) ReplaceSection(section domain.Section, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch section {
	case domain.SectionHeader:
		v, ok := value.(domain.Header)
		if !ok {
			return typeErr(section, value)
		}
		s.doc.Header = v
	case domain.SectionSummary:
		v, ok := value.(string)
		if !ok {
			return typeErr(section, value)
		}
		s.doc.Summary = v
	case domain.SectionExperience:
		v, ok := value.([]domain.Experience)
		if !ok {
			return typeErr(section, value)
		}
		s.doc.Experience = domain.ResumeDocument{Experience: v}.Clone().Experience
	case domain.SectionEducation:
		v, ok := value.([]domain.Education)
		if !ok {
			return typeErr(section, value)
		}
		s.doc.Education = domain.ResumeDocument{Education: v}.Clone().Education
	case domain.SectionSkills:
		v, ok := value.(domain.Skills)
		if !ok {
			return typeErr(section, value)
		}
		s.doc.Skills = domain.ResumeDocument{Skills: v}.Clone().Skills
	case domain.SectionProjects:
		v, ok := value.([]domain.Project)
		if !ok {
			return typeErr(section, value)
		}
		s.doc.Projects = domain.ResumeDocument{Projects: v}.Clone().Projects
	case domain.SectionCertifications:
		v, ok := value.([]domain.Certification)
		if !ok {
			return typeErr(section, value)
		}
		s.doc.Certifications = domain.ResumeDocument{Certifications: v}.Clone().Certifications
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
	s.doc.Normalize()
	s.ensureIDs(section)
	s.touch(section)
	return nil
}

// AddItem appends item to a list section and returns the id assigned to it.
// Any id already on item is replaced.
func (s *Store) AddItem(section domain.Section, item interface{}) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	switch section {
	case domain.SectionExperience:
		v, ok := item.(domain.Experience)
		if !ok {
			return "", typeErr(section, item)
		}
		v.ID = id
		v.Description = append([]string{}, v.Description...)
		s.doc.Experience = append(s.doc.Experience, v)
	case domain.SectionEducation:
		v, ok := item.(domain.Education)
		if !ok {
			return "", typeErr(section, item)
		}
		v.ID = id
		v.Achievements = append([]string{}, v.Achievements...)
		s.doc.Education = append(s.doc.Education, v)
	case domain.SectionProjects:
		v, ok := item.(domain.Project)
		if !ok {
			return "", typeErr(section, item)
		}
		v.ID = id
		v.Technologies = append([]string{}, v.Technologies...)
		s.doc.Projects = append(s.doc.Projects, v)
	case domain.SectionCertifications:
		v, ok := item.(domain.Certification)
		if !ok {
			return "", typeErr(section, item)
		}
		v.ID = id
		s.doc.Certifications = append(s.doc.Certifications, v)
	default:
		return "", fmt.Errorf("%w: %q is not a list section", ErrUnknownSection, section)
	}
	s.touch(section)
	return id, nil
}

// UpdateItemField sets one field of the item at index. It reports whether
// an item was changed; an out of range index leaves the section untouched.
func (s *Store) UpdateItemField(section domain.Section, index int, field string, value interface{}) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= s.length(section) {
		if !section.IsList() {
			return false, fmt.Errorf("%w: %q is not a list section", ErrUnknownSection, section)
		}
		return false, nil
	}
	return s.setField(section, index, field, value)
}

// UpdateItemFieldByID is UpdateItemField keyed by item id, which stays valid
// while other items are added or removed.
func (s *Store) UpdateItemFieldByID(section domain.Section, id, field string, value interface{}) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index := s.indexOf(section, id)
	if index < 0 {
		if !section.IsList() {
			return false, fmt.Errorf("%w: %q is not a list section", ErrUnknownSection, section)
		}
		return false, nil
	}
	return s.setField(section, index, field, value)
}

// RemoveItem deletes the item at index; later items shift down by one.
func (s *Store) RemoveItem(section domain.Section, index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(section, index)
}

// RemoveItemByID deletes the item with the given id.
func (s *Store) RemoveItemByID(section domain.Section, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(section, s.indexOf(section, id))
}

// AddSkill appends an empty entry to category and returns its index.
func (s *Store) AddSkill(category domain.SkillCategory) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.skills(category)
	if err != nil {
		return -1, err
	}
	*list = append(*list, "")
	s.touch(domain.SectionSkills)
	return len(*list) - 1, nil
}

// UpdateSkill sets the entry at index. Out of range is a no-op.
func (s *Store) UpdateSkill(category domain.SkillCategory, index int, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.skills(category)
	if err != nil {
		return false, err
	}
	if index < 0 || index >= len(*list) {
		return false, nil
	}
	(*list)[index] = value
	s.touch(domain.SectionSkills)
	return true, nil
}

// RemoveSkill deletes the entry at index, preserving the order of the rest.
func (s *Store) RemoveSkill(category domain.SkillCategory, index int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.skills(category)
	if err != nil {
		return false, err
	}
	if index < 0 || index >= len(*list) {
		return false, nil
	}
	*list = append((*list)[:index:index], (*list)[index+1:]...)
	s.touch(domain.SectionSkills)
	return true, nil
}

func (s *Store) skills(category domain.SkillCategory) (*[]string, error) {
	switch category {
	case domain.SkillsTechnical:
		return &s.doc.Skills.Technical, nil
	case domain.SkillsSoft:
		return &s.doc.Skills.Soft, nil
	case domain.SkillsLanguages:
		return &s.doc.Skills.Languages, nil
	}
	return nil, fmt.Errorf("%w: skills category %q", ErrUnknownSection, category)
}

func (s *Store) length(section domain.Section) int {
	switch section {
	case domain.SectionExperience:
		return len(s.doc.Experience)
	case domain.SectionEducation:
		return len(s.doc.Education)
	case domain.SectionProjects:
		return len(s.doc.Projects)
	case domain.SectionCertifications:
		return len(s.doc.Certifications)
	}
	return 0
}

func (s *Store) indexOf(section domain.Section, id string) int {
	if id == "" {
		return -1
	}
	for i := 0; i < s.length(section); i++ {
		if s.itemID(section, i) == id {
			return i
		}
	}
	return -1
}

func (s *Store) itemID(section domain.Section, i int) string {
	switch section {
	case domain.SectionExperience:
		return s.doc.Experience[i].ID
	case domain.SectionEducation:
		return s.doc.Education[i].ID
	case domain.SectionProjects:
		return s.doc.Projects[i].ID
	case domain.SectionCertifications:
		return s.doc.Certifications[i].ID
	}
	return ""
}

// ensureIDs gives every item of a replaced list section a unique id.
func (s *Store) ensureIDs(section domain.Section) {
	fillIDs(&s.doc, section, s.newID)
}

// fillIDs replaces empty and repeated item ids of section with new ones.
func fillIDs(doc *domain.ResumeDocument, section domain.Section, newID func() string) {
	seen := map[string]bool{}
	fix := func(id *string) {
		if *id == "" || seen[*id] {
			*id = newID()
		}
		seen[*id] = true
	}
	switch section {
	case domain.SectionExperience:
		for i := range doc.Experience {
			fix(&doc.Experience[i].ID)
		}
	case domain.SectionEducation:
		for i := range doc.Education {
			fix(&doc.Education[i].ID)
		}
	case domain.SectionProjects:
		for i := range doc.Projects {
			fix(&doc.Projects[i].ID)
		}
	case domain.SectionCertifications:
		for i := range doc.Certifications {
			fix(&doc.Certifications[i].ID)
		}
	}
}

func (s *Store) remove(section domain.Section, index int) bool {
	if index < 0 || index >= s.length(section) {
		return false
	}
	switch section {
	case domain.SectionExperience:
		s.doc.Experience = append(s.doc.Experience[:index:index], s.doc.Experience[index+1:]...)
	case domain.SectionEducation:
		s.doc.Education = append(s.doc.Education[:index:index], s.doc.Education[index+1:]...)
	case domain.SectionProjects:
		s.doc.Projects = append(s.doc.Projects[:index:index], s.doc.Projects[index+1:]...)
	case domain.SectionCertifications:
		s.doc.Certifications = append(s.doc.Certifications[:index:index], s.doc.Certifications[index+1:]...)
	}
	s.touch(section)
	return true
}

func (s *Store) setField(section domain.Section, index int, field string, value interface{}) (bool, error) {
	var err error
	switch section {
	case domain.SectionExperience:
		item := s.doc.Experience[index]
		err = setExperienceField(&item, field, value)
		if err == nil {
			s.doc.Experience[index] = item
		}
	case domain.SectionEducation:
		item := s.doc.Education[index]
		err = setEducationField(&item, field, value)
		if err == nil {
			s.doc.Education[index] = item
		}
	case domain.SectionProjects:
		item := s.doc.Projects[index]
		err = setProjectField(&item, field, value)
		if err == nil {
			s.doc.Projects[index] = item
		}
	case domain.SectionCertifications:
		item := s.doc.Certifications[index]
		err = setCertificationField(&item, field, value)
		if err == nil {
			s.doc.Certifications[index] = item
		}
	}
	if err != nil {
		return false, fmt.Errorf("%s[%d].%s: %w", section, index, field, err)
	}
	s.touch(section)
	return true, nil
}

func setExperienceField(e *domain.Experience, field string, value interface{}) error {
	switch field {
	case "company":
		return setString(&e.Company, value)
	case "position":
		return setString(&e.Position, value)
	case "location":
		return setString(&e.Location, value)
	case "startDate":
		return setString(&e.StartDate, value)
	case "endDate":
		return setString(&e.EndDate, value)
	case "current":
		return setBool(&e.Current, value)
	case "description":
		return setStrings(&e.Description, value)
	}
	return ErrUnknownField
}

func setEducationField(e *domain.Education, field string, value interface{}) error {
	switch field {
	case "institution":
		return setString(&e.Institution, value)
	case "degree":
		return setString(&e.Degree, value)
	case "field":
		return setString(&e.Field, value)
	case "location":
		return setString(&e.Location, value)
	case "startDate":
		return setString(&e.StartDate, value)
	case "endDate":
		return setString(&e.EndDate, value)
	case "current":
		return setBool(&e.Current, value)
	case "gpa":
		return setString(&e.GPA, value)
	case "achievements":
		return setStrings(&e.Achievements, value)
	}
	return ErrUnknownField
}

func setProjectField(p *domain.Project, field string, value interface{}) error {
	switch field {
	case "name":
		return setString(&p.Name, value)
	case "description":
		return setString(&p.Description, value)
	case "technologies":
		return setStrings(&p.Technologies, value)
	case "link":
		return setString(&p.Link, value)
	case "github":
		return setString(&p.GitHub, value)
	}
	return ErrUnknownField
}

func setCertificationField(c *domain.Certification, field string, value interface{}) error {
	switch field {
	case "name":
		return setString(&c.Name, value)
	case "issuer":
		return setString(&c.Issuer, value)
	case "date":
		return setString(&c.Date, value)
	case "link":
		return setString(&c.Link, value)
	}
	return ErrUnknownField
}

func setString(dst *string, value interface{}) error {
	v, ok := value.(string)
	if !ok {
		return fmt.Errorf("%w: want string, got %T", ErrSectionType, value)
	}
	*dst = v
	return nil
}

func setBool(dst *bool, value interface{}) error {
	v, ok := value.(bool)
	if !ok {
		return fmt.Errorf("%w: want bool, got %T", ErrSectionType, value)
	}
	*dst = v
	return nil
}

// setStrings accepts []string or the []interface{} produced by JSON decoding.
func setStrings(dst *[]string, value interface{}) error {
	switch v := value.(type) {
	case []string:
		*dst = append([]string{}, v...)
		return nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, it := range v {
			s, ok := it.(string)
			if !ok {
				return fmt.Errorf("%w: want string item, got %T", ErrSectionType, it)
			}
			out = append(out, s)
		}
		*dst = out
		return nil
	}
	return fmt.Errorf("%w: want []string, got %T", ErrSectionType, value)
}

func typeErr(section domain.Section, value interface{}) error {
	return fmt.Errorf("%w: %s got %T", ErrSectionType, section, value)
}
