package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"sort"
	"sync"

	"resume-builder/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml html/*.html
var files embed.FS

// Info is the static description of a template.
type Info struct {
	ID           string `yaml:"id" json:"id"`
	Name         string `yaml:"name" json:"name"`
	Layout       string `yaml:"layout" json:"layout"`
	FontFamily   string `yaml:"font_family" json:"font_family"`
	FontSize     int    `yaml:"font_size" json:"font_size"`
	Description  string `yaml:"description" json:"description"`
	Category     string `yaml:"category" json:"category"`
	Sections     int    `yaml:"sections" json:"sections"`
	PreviewImage string `yaml:"preview_image" json:"preview_image"`
}

// Data is what a template executes against.
type Data struct {
	Doc         domain.ResumeDocument
	Info        Info
	Photo       template.URL
	PhotoBroken bool
}

// Template renders one layout. Templates are immutable once parsed.
type Template struct {
	info Info
	tpl  *template.Template
}

func (t *Template) Info() Info { return t.info }

// Execute writes the full HTML page for data. data.Info is overwritten with
// the template's own metadata.
func (t *Template) Execute(w io.Writer, data Data) error {
	data.Info = t.info
	return t.tpl.ExecuteTemplate(w, "page", data)
}

// Registry maps template ids to renderers. Component lookups never fail:
// unknown ids resolve to the default template. Info lookups report absence.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*Template
	defaultID string
}

type catalog struct {
	Default   string `yaml:"default"`
	Templates []Info `yaml:"templates"`
}

// Load parses the embedded catalogue. defaultID overrides the catalogue
// default when non-empty.
func Load(defaultID string) (*Registry, error) {
	raw, err := files.ReadFile("catalog.yaml")
	if err != nil {
		return nil, err
	}
	var c catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("templates: parse catalog: %w", err)
	}
	if defaultID == "" {
		defaultID = c.Default
	}

	r := &Registry{templates: map[string]*Template{}}
	for _, info := range c.Templates {
		tpl, err := template.New(info.ID).Funcs(funcs).ParseFS(files, "html/partials.html", "html/"+info.ID+".html")
		if err != nil {
			return nil, fmt.Errorf("templates: parse %q: %w", info.ID, err)
		}
		if err := r.Register(&Template{info: info, tpl: tpl}); err != nil {
			return nil, err
		}
	}
	if err := r.SetDefault(defaultID); err != nil {
		return nil, err
	}
	return r, nil
}

// MustLoad panics when the embedded catalogue is broken.
func MustLoad() *Registry {
	r, err := Load("")
	if err != nil {
		panic(err)
	}
	return r
}

// Register adds t. Duplicate ids return an error.
func (r *Registry) Register(t *Template) error {
	if t == nil || t.info.ID == "" {
		return fmt.Errorf("templates: template id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.templates[t.info.ID]; exists {
		return fmt.Errorf("templates: template %q already registered", t.info.ID)
	}
	r.templates[t.info.ID] = t
	return nil
}

// SetDefault selects the fallback template.
func (r *Registry) SetDefault(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[id]; !ok {
		return fmt.Errorf("templates: default template %q not registered", id)
	}
	r.defaultID = id
	return nil
}

func (r *Registry) DefaultID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultID
}

// Component returns the template for id, or the default template.
func (r *Registry) Component(id string) *Template {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.templates[id]; ok {
		return t
	}
	return r.templates[r.defaultID]
}

// Info returns the metadata for id and whether id is registered.
func (r *Registry) Info(id string) (Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[id]
	if !ok {
		return Info{}, false
	}
	return t.info, true
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.Info(id)
	return ok
}

// List returns every template's metadata sorted by id.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t.info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
