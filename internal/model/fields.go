package model

import (
	"strconv"
	"strings"
	"unicode"

	"resume-builder/internal/domain"

	"github.com/go-playground/validator/v10"
)

// FieldKind tags the shape of a form value.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindTextarea FieldKind = "textarea"
	KindURL      FieldKind = "url"
	KindNumber   FieldKind = "number"
	KindEnum     FieldKind = "enum"
	KindFile     FieldKind = "file"
)

// Field declares one form input. Format, when set, rewrites a value before
// it is validated and stored.
type Field struct {
	Name     string
	Kind     FieldKind
	Required bool
	Options  []string
	Format   string
}

// Formatters known to Field.Format.
const (
	FormatTrim  = "trim"
	FormatLower = "lower"
	FormatPhone = "phone"
	FormatURL   = "url"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type checkFunc func(f Field, v string) string

var kindChecks = map[FieldKind]checkFunc{
	KindText:     func(Field, string) string { return "" },
	KindTextarea: func(Field, string) string { return "" },
	KindURL: func(_ Field, v string) string {
		if validate.Var(v, "url") != nil {
			return "must be a valid URL"
		}
		return ""
	},
	KindNumber: func(_ Field, v string) string {
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return "must be a number"
		}
		return ""
	},
	KindEnum: func(f Field, v string) string {
		for _, o := range f.Options {
			if o == v {
				return ""
			}
		}
		return "must be one of " + strings.Join(f.Options, ", ")
	},
	KindFile: func(f Field, v string) string {
		if len(f.Options) == 0 {
			return ""
		}
		for _, o := range f.Options {
			if strings.EqualFold(o, v) {
				return ""
			}
		}
		return "unsupported file type"
	},
}

// named rules keyed by field name, applied after the kind check
var nameChecks = map[string]checkFunc{
	"email": func(_ Field, v string) string {
		if validate.Var(v, "email") != nil {
			return "must be a valid email address"
		}
		return ""
	},
	"phone": func(_ Field, v string) string {
		n := 0
		for _, r := range v {
			if unicode.IsDigit(r) {
				n++
			}
		}
		if n < 10 || n > 15 {
			return "must contain 10 to 15 digits"
		}
		return ""
	},
}

// Apply formats v according to f.Format.
func (f Field) Apply(v string) string {
	switch f.Format {
	case FormatTrim:
		return strings.TrimSpace(v)
	case FormatLower:
		return strings.ToLower(strings.TrimSpace(v))
	case FormatPhone:
		v = strings.TrimSpace(v)
		var b strings.Builder
		for i, r := range v {
			if unicode.IsDigit(r) || (r == '+' && i == 0) {
				b.WriteRune(r)
			}
		}
		return b.String()
	case FormatURL:
		v = strings.TrimSpace(v)
		if v != "" && !strings.Contains(v, "://") {
			v = "https://" + v
		}
		return v
	}
	return v
}

// Check returns an empty string when v satisfies f, else a message.
// Empty optional values always pass.
func (f Field) Check(v string) string {
	if strings.TrimSpace(v) == "" {
		if f.Required {
			return "is required"
		}
		return ""
	}
	if check, ok := kindChecks[f.Kind]; ok {
		if msg := check(f, v); msg != "" {
			return msg
		}
	}
	if check, ok := nameChecks[f.Name]; ok {
		return check(f, v)
	}
	return ""
}

// HeaderFields is the declarative table for the resume header form.
var HeaderFields = []Field{
	{Name: "fullName", Kind: KindText, Required: true, Format: FormatTrim},
	{Name: "email", Kind: KindText, Required: true, Format: FormatLower},
	{Name: "phone", Kind: KindText, Format: FormatPhone},
	{Name: "location", Kind: KindText, Format: FormatTrim},
	{Name: "linkedin", Kind: KindURL, Format: FormatURL},
	{Name: "website", Kind: KindURL, Format: FormatURL},
	{Name: "profilePhoto", Kind: KindURL, Format: FormatTrim},
}

// NormalizeHeader formats and validates h, returning the formatted header.
// On failure the returned header is the formatted input and err is a
// *ValidationError keyed by "header.<field>".
func NormalizeHeader(h domain.Header, requireComplete bool) (domain.Header, error) {
	values := map[string]*string{
		"fullName":     &h.FullName,
		"email":        &h.Email,
		"phone":        &h.Phone,
		"location":     &h.Location,
		"linkedin":     &h.LinkedIn,
		"website":      &h.Website,
		"profilePhoto": &h.ProfilePhoto,
	}
	ve := &ValidationError{}
	for _, f := range HeaderFields {
		ptr := values[f.Name]
		*ptr = f.Apply(*ptr)
		if !requireComplete {
			f.Required = false
		}
		if msg := f.Check(*ptr); msg != "" {
			ve.Add("header."+f.Name, msg)
		}
	}
	return h, ve.Err()
}
