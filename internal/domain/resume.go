package domain

// Header holds the contact block shown at the top of every template.
// FullName and Email are required for a resume to count as complete.
type Header struct {
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Location     string `json:"location"`
	LinkedIn     string `json:"linkedin"`
	Website      string `json:"website"`
	ProfilePhoto string `json:"profilePhoto"`
}

// Experience is one role. When Current is true EndDate is ignored.
type Experience struct {
	ID          string   `json:"id"`
	Company     string   `json:"company"`
	Position    string   `json:"position"`
	Location    string   `json:"location"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	Current     bool     `json:"current"`
	Description []string `json:"description"`
}

type Education struct {
	ID           string   `json:"id"`
	Institution  string   `json:"institution"`
	Degree       string   `json:"degree"`
	Field        string   `json:"field"`
	Location     string   `json:"location"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"`
	Current      bool     `json:"current"`
	GPA          string   `json:"gpa"`
	Achievements []string `json:"achievements"`
}

type Skills struct {
	Technical []string `json:"technical"`
	Soft      []string `json:"soft"`
	Languages []string `json:"languages"`
}

type Project struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	Link         string   `json:"link"`
	GitHub       string   `json:"github"`
}

type Certification struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Date   string `json:"date"`
	Link   string `json:"link"`
}

// ResumeDocument is the editable resume content. No section is ever nil:
// absence is an empty string or an empty slice.
type ResumeDocument struct {
	Header         Header          `json:"header"`
	Summary        string          `json:"summary"`
	Experience     []Experience    `json:"experience"`
	Education      []Education     `json:"education"`
	Skills         Skills          `json:"skills"`
	Projects       []Project       `json:"projects"`
	Certifications []Certification `json:"certifications"`
}

// NewResumeDocument returns an empty document with every slice allocated.
func NewResumeDocument() ResumeDocument {
	return ResumeDocument{
		Experience:     []Experience{},
		Education:      []Education{},
		Skills:         Skills{Technical: []string{}, Soft: []string{}, Languages: []string{}},
		Projects:       []Project{},
		Certifications: []Certification{},
	}
}

// Normalize replaces nil slices with empty ones, recursively.
func (d *ResumeDocument) Normalize() {
	if d.Experience == nil {
		d.Experience = []Experience{}
	}
	for i := range d.Experience {
		d.Experience[i].Description = nonNil(d.Experience[i].Description)
	}
	if d.Education == nil {
		d.Education = []Education{}
	}
	for i := range d.Education {
		d.Education[i].Achievements = nonNil(d.Education[i].Achievements)
	}
	d.Skills.Technical = nonNil(d.Skills.Technical)
	d.Skills.Soft = nonNil(d.Skills.Soft)
	d.Skills.Languages = nonNil(d.Skills.Languages)
	if d.Projects == nil {
		d.Projects = []Project{}
	}
	for i := range d.Projects {
		d.Projects[i].Technologies = nonNil(d.Projects[i].Technologies)
	}
	if d.Certifications == nil {
		d.Certifications = []Certification{}
	}
}

// Clone returns a deep copy that shares no slice memory with d.
func (d ResumeDocument) Clone() ResumeDocument {
	out := d
	out.Experience = make([]Experience, len(d.Experience))
	for i, e := range d.Experience {
		e.Description = cloneStrings(e.Description)
		out.Experience[i] = e
	}
	out.Education = make([]Education, len(d.Education))
	for i, e := range d.Education {
		e.Achievements = cloneStrings(e.Achievements)
		out.Education[i] = e
	}
	out.Skills = Skills{
		Technical: cloneStrings(d.Skills.Technical),
		Soft:      cloneStrings(d.Skills.Soft),
		Languages: cloneStrings(d.Skills.Languages),
	}
	out.Projects = make([]Project, len(d.Projects))
	for i, p := range d.Projects {
		p.Technologies = cloneStrings(p.Technologies)
		out.Projects[i] = p
	}
	out.Certifications = append([]Certification{}, d.Certifications...)
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
