package templates

import (
	"html/template"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

var funcs = template.FuncMap{
	"dateRange": dateRange,
	"linkLabel": LinkLabel,
	"join":      strings.Join,
	"hasText":   func(s string) bool { return strings.TrimSpace(s) != "" },
	"nonEmpty":  nonEmpty,
}

// dateRange formats "<start> – <end>", using Present for current items and
// ignoring end when current is set.
func dateRange(start, end string, current bool) string {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if current {
		end = "Present"
	}
	switch {
	case start == "" && end == "":
		return ""
	case start == "":
		return end
	case end == "":
		return start
	}
	return start + " – " + end
}

// LinkLabel shortens a URL to its registrable domain plus path, e.g.
// "https://www.linkedin.com/in/jane/" becomes "linkedin.com/in/jane".
func LinkLabel(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	candidate := raw
	if !strings.HasPrefix(candidate, "http://") && !strings.HasPrefix(candidate, "https://") {
		candidate = "https://" + candidate
	}
	u, err := url.Parse(candidate)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	if etld, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		host = etld
	}
	return host + strings.TrimSuffix(u.EscapedPath(), "/")
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
