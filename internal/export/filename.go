package export

import (
	"strings"
	"time"
	"unicode"
)

// FileName builds "<Full_Name>_Resume_<YYYY-MM-DD>.pdf". Repeated exports
// on the same day share a name.
func FileName(owner string, now time.Time) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.TrimSpace(owner) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	name := b.String()
	if name == "" {
		return "Resume_" + now.Format("2006-01-02") + ".pdf"
	}
	return name + "_Resume_" + now.Format("2006-01-02") + ".pdf"
}
