package render

import (
	"context"
	"errors"
)

var ErrNotReady = errors.New("view is not ready")

// View is a rendered resume page. Its HTML is available once Ready is closed.
type View struct {
	templateID string
	ownerName  string
	ready      chan struct{}
	html       string
	err        error
}

// NewStaticView wraps already rendered HTML in a ready view.
func NewStaticView(templateID, ownerName, html string) *View {
	ready := make(chan struct{})
	close(ready)
	return &View{templateID: templateID, ownerName: ownerName, ready: ready, html: html}
}

// Ready is closed when rendering has finished, successfully or not.
func (v *View) Ready() <-chan struct{} { return v.ready }

// Wait blocks until the view is ready or ctx is done, returning any
// rendering error.
func (v *View) Wait(ctx context.Context) error {
	select {
	case <-v.ready:
		return v.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HTML returns the rendered page, or ErrNotReady before Ready fires.
func (v *View) HTML() (string, error) {
	select {
	case <-v.ready:
		return v.html, v.err
	default:
		return "", ErrNotReady
	}
}

// TemplateID is the id of the template actually used, after fallback.
func (v *View) TemplateID() string { return v.templateID }

// OwnerName is the resume owner's full name, used for export file names.
func (v *View) OwnerName() string { return v.ownerName }
