package usecase

import (
	"strings"

	"resume-builder/internal/domain"
)

// Compact prepares a document for saving. Empty and whitespace-only
// entries are dropped from every string list (duplicates are kept), string
// list entries are trimmed, EndDate is cleared on current items and nil
// slices become empty ones. The input is not modified.
func Compact(doc domain.ResumeDocument) domain.ResumeDocument {
	out := doc.Clone()
	for i := range out.Experience {
		e := &out.Experience[i]
		e.Description = compactStrings(e.Description)
		if e.Current {
			e.EndDate = ""
		}
	}
	for i := range out.Education {
		e := &out.Education[i]
		e.Achievements = compactStrings(e.Achievements)
		if e.Current {
			e.EndDate = ""
		}
	}
	out.Skills.Technical = compactStrings(out.Skills.Technical)
	out.Skills.Soft = compactStrings(out.Skills.Soft)
	out.Skills.Languages = compactStrings(out.Skills.Languages)
	for i := range out.Projects {
		out.Projects[i].Technologies = compactStrings(out.Projects[i].Technologies)
	}
	out.Normalize()
	return out
}

func compactStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
