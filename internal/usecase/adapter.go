package usecase

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"resume-builder/internal/domain"

	"github.com/microcosm-cc/bluemonday"
)

// DefaultLegacyPosition labels a free-text experience entry whose role
// could not be parsed.
const DefaultLegacyPosition = "Intern"

var stripPolicy = bluemonday.StrictPolicy()

// markup matches the inline and block tags produced by rich-text inputs.
// Text such as "Vec<T>" or "p<b" is not markup and is kept as written.
var markup = regexp.MustCompile(`(?i)</?(a|b|i|u|p|br|em|strong|span|div|font|small|sub|sup|ul|ol|li|h[1-6])(\s[^<>]*)?/?>`)

// AdaptProfile converts a loosely-typed profile into a resume document.
// It never fails: unknown shapes degrade to empty values, and every section
// of the result is non-nil. Item ids are derived from section and position
// so the same profile always yields the same document.
func AdaptProfile(p map[string]interface{}) domain.ResumeDocument {
	doc := domain.NewResumeDocument()
	if p == nil {
		return doc
	}

	doc.Header = adaptHeader(p)
	doc.Summary = firstString(p, "summary", "bio", "about", "objective")

	for _, raw := range listOf(firstValue(p, "experience", "work_experience", "experiences")) {
		if m, ok := raw.(map[string]interface{}); ok {
			doc.Experience = append(doc.Experience, adaptExperience(m))
		} else if s := text(raw); s != "" {
			doc.Experience = append(doc.Experience, parseLegacyExperience(s))
		}
	}
	switch legacy := firstValue(p, "internship_experience").(type) {
	case string:
		for _, line := range splitLines(legacy) {
			if s := text(line); s != "" {
				doc.Experience = append(doc.Experience, parseLegacyExperience(s))
			}
		}
	default:
		for _, raw := range listOf(legacy) {
			if m, ok := raw.(map[string]interface{}); ok {
				doc.Experience = append(doc.Experience, adaptExperience(m))
			} else if s := text(raw); s != "" {
				doc.Experience = append(doc.Experience, parseLegacyExperience(s))
			}
		}
	}
	for i := range doc.Experience {
		doc.Experience[i].ID = itemID(domain.SectionExperience, i)
	}

	if edu := listOf(firstValue(p, "education", "educations")); len(edu) > 0 {
		for _, raw := range edu {
			if m, ok := raw.(map[string]interface{}); ok {
				doc.Education = append(doc.Education, adaptEducation(m))
			}
		}
	} else if inst := firstString(p, "college", "university", "institution", "college_name"); inst != "" {
		e := adaptEducation(p)
		e.Institution = inst
		doc.Education = append(doc.Education, e)
	}
	for i := range doc.Education {
		doc.Education[i].ID = itemID(domain.SectionEducation, i)
	}

	doc.Skills = adaptSkills(p)

	for _, raw := range listOf(firstValue(p, "projects")) {
		switch v := raw.(type) {
		case map[string]interface{}:
			doc.Projects = append(doc.Projects, domain.Project{
				Name:         firstString(v, "name", "title"),
				Description:  firstString(v, "description", "summary"),
				Technologies: stringList(firstValue(v, "technologies", "tech_stack", "stack")),
				Link:         firstString(v, "link", "url", "live_url"),
				GitHub:       firstString(v, "github", "github_url", "repo"),
			})
		default:
			if s := text(v); s != "" {
				doc.Projects = append(doc.Projects, domain.Project{Name: s, Technologies: []string{}})
			}
		}
	}
	for i := range doc.Projects {
		doc.Projects[i].ID = itemID(domain.SectionProjects, i)
	}

	for _, raw := range listOf(firstValue(p, "certifications", "certificates")) {
		switch v := raw.(type) {
		case map[string]interface{}:
			doc.Certifications = append(doc.Certifications, domain.Certification{
				Name:   firstString(v, "name", "title"),
				Issuer: firstString(v, "issuer", "organization", "authority"),
				Date:   firstString(v, "date", "issued_at", "year"),
				Link:   firstString(v, "link", "url", "credential_url"),
			})
		default:
			if s := text(v); s != "" {
				doc.Certifications = append(doc.Certifications, domain.Certification{Name: s})
			}
		}
	}
	for i := range doc.Certifications {
		doc.Certifications[i].ID = itemID(domain.SectionCertifications, i)
	}

	doc.Normalize()
	return doc
}

func adaptHeader(p map[string]interface{}) domain.Header {
	name := firstString(p, "name", "full_name", "fullName")
	if name == "" {
		name = strings.TrimSpace(firstString(p, "first_name") + " " + firstString(p, "last_name"))
	}
	return domain.Header{
		FullName:     name,
		Email:        firstString(p, "email"),
		Phone:        firstString(p, "phone", "phone_number", "contact_number", "mobile"),
		Location:     firstString(p, "location", "city", "address"),
		LinkedIn:     firstString(p, "linkedin", "linkedin_url", "linkedin_profile"),
		Website:      firstString(p, "website", "portfolio", "portfolio_url"),
		ProfilePhoto: firstString(p, "profile_photo", "profilePhoto", "profile_picture", "avatar", "photo_url"),
	}
}

func adaptExperience(m map[string]interface{}) domain.Experience {
	return domain.Experience{
		Company:     firstString(m, "company", "company_name", "organization"),
		Position:    firstString(m, "position", "title", "role"),
		Location:    firstString(m, "location"),
		StartDate:   firstString(m, "start_date", "startDate", "from"),
		EndDate:     firstString(m, "end_date", "endDate", "to"),
		Current:     boolean(firstValue(m, "current", "is_current")),
		Description: lines(firstValue(m, "description", "responsibilities", "bullets")),
	}
}

func adaptEducation(m map[string]interface{}) domain.Education {
	return domain.Education{
		Institution:  firstString(m, "institution", "school", "university", "college"),
		Degree:       firstString(m, "degree"),
		Field:        firstString(m, "field", "field_of_study", "branch", "major"),
		Location:     firstString(m, "location"),
		StartDate:    firstString(m, "start_date", "startDate", "start_year"),
		EndDate:      firstString(m, "end_date", "endDate", "graduation_year", "year_of_passing"),
		Current:      boolean(firstValue(m, "current", "is_current")),
		GPA:          firstString(m, "gpa", "cgpa", "percentage"),
		Achievements: lines(firstValue(m, "achievements")),
	}
}

func adaptSkills(p map[string]interface{}) domain.Skills {
	s := domain.Skills{}
	switch v := firstValue(p, "skills").(type) {
	case map[string]interface{}:
		s.Technical = stringList(firstValue(v, "technical", "hard"))
		s.Soft = stringList(firstValue(v, "soft"))
		s.Languages = stringList(firstValue(v, "languages"))
	default:
		s.Technical = stringList(v)
	}
	if extra := stringList(firstValue(p, "technical_skills")); len(extra) > 0 {
		s.Technical = append(s.Technical, extra...)
	}
	if extra := stringList(firstValue(p, "soft_skills")); len(extra) > 0 {
		s.Soft = append(s.Soft, extra...)
	}
	if extra := stringList(firstValue(p, "languages")); len(extra) > 0 {
		s.Languages = append(s.Languages, extra...)
	}
	return s
}

// parseLegacyExperience splits "<role> at <company> (<when>)". Anything
// else becomes a single description line under DefaultLegacyPosition.
func parseLegacyExperience(s string) domain.Experience {
	exp := domain.Experience{Description: []string{}}
	if i := strings.Index(s, " at "); i > 0 {
		position := strings.TrimSpace(s[:i])
		company := s[i+len(" at "):]
		when := ""
		if j := strings.Index(company, " ("); j >= 0 {
			when = strings.TrimSuffix(strings.TrimSpace(company[j+2:]), ")")
			company = company[:j]
		}
		company = strings.TrimSpace(company)
		if position != "" && company != "" {
			exp.Position = position
			exp.Company = company
			exp.StartDate = when
			return exp
		}
	}
	exp.Position = DefaultLegacyPosition
	exp.Description = []string{s}
	return exp
}

func itemID(section domain.Section, i int) string {
	return fmt.Sprintf("%s-%d", section, i+1)
}

func firstValue(m map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func firstString(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s := text(m[k]); s != "" {
			return s
		}
	}
	return ""
}

// text renders scalar values as trimmed strings. Values carrying rich-text
// markup have their tags stripped; anything else is kept verbatim.
func text(v interface{}) string {
	var s string
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		s = t
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		s = strconv.Itoa(t)
	case int64:
		s = strconv.FormatInt(t, 10)
	case bool:
		s = strconv.FormatBool(t)
	case map[string]interface{}, []interface{}, []string:
		return ""
	default:
		s = fmt.Sprintf("%v", t)
	}
	if markup.MatchString(s) {
		s = html.UnescapeString(stripPolicy.Sanitize(s))
	}
	return strings.TrimSpace(s)
}

func boolean(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(t))
		return b
	case float64:
		return t != 0
	}
	return false
}

func listOf(v interface{}) []interface{} {
	switch t := v.(type) {
	case []interface{}:
		return t
	case []map[string]interface{}:
		out := make([]interface{}, 0, len(t))
		for _, m := range t {
			out = append(out, m)
		}
		return out
	case []string:
		out := make([]interface{}, 0, len(t))
		for _, s := range t {
			out = append(out, s)
		}
		return out
	}
	return nil
}

// stringList accepts arrays or a comma separated string.
func stringList(v interface{}) []string {
	out := []string{}
	if s, ok := v.(string); ok {
		for _, part := range strings.Split(s, ",") {
			if t := text(part); t != "" {
				out = append(out, t)
			}
		}
		return out
	}
	for _, it := range listOf(v) {
		if t := text(it); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// lines accepts arrays or a newline separated string.
func lines(v interface{}) []string {
	if s, ok := v.(string); ok {
		out := []string{}
		for _, l := range splitLines(s) {
			if t := text(l); t != "" {
				out = append(out, t)
			}
		}
		return out
	}
	return stringList(v)
}

func splitLines(s string) []string {
	out := []string{}
	for _, l := range strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == ';' }) {
		l = strings.TrimLeft(strings.TrimSpace(l), "-•* ")
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}
