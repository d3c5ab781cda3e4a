package domain

// Section names a top-level field of ResumeDocument.
type Section string

const (
	SectionHeader         Section = "header"
	SectionSummary        Section = "summary"
	SectionExperience     Section = "experience"
	SectionEducation      Section = "education"
	SectionSkills         Section = "skills"
	SectionProjects       Section = "projects"
	SectionCertifications Section = "certifications"
)

// Sections lists every section in document order.
var Sections = []Section{
	SectionHeader,
	SectionSummary,
	SectionExperience,
	SectionEducation,
	SectionSkills,
	SectionProjects,
	SectionCertifications,
}

// IsList reports whether the section holds an ordered list of items with ids.
func (s Section) IsList() bool {
	switch s {
	case SectionExperience, SectionEducation, SectionProjects, SectionCertifications:
		return true
	}
	return false
}

type SkillCategory string

const (
	SkillsTechnical SkillCategory = "technical"
	SkillsSoft      SkillCategory = "soft"
	SkillsLanguages SkillCategory = "languages"
)
