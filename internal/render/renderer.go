package render

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"resume-builder/internal/domain"
	"resume-builder/internal/templates"
)

// Renderer turns a document and template id into a self-contained HTML view.
// Output depends only on the document, the template and the bytes of any
// remote images, which are inlined so later rasterisation needs no network.
type Renderer struct {
	registry     *templates.Registry
	images       ImageFetcher
	imageTimeout time.Duration
	logger       *slog.Logger
}

type Option func(*Renderer)

// WithImageFetcher overrides the fetcher used for remote photos.
func WithImageFetcher(f ImageFetcher) Option {
	return func(r *Renderer) { r.images = f }
}

// WithImageTimeout bounds how long a single image may take to resolve.
func WithImageTimeout(d time.Duration) Option {
	return func(r *Renderer) {
		if d > 0 {
			r.imageTimeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

func New(reg *templates.Registry, opts ...Option) *Renderer {
	r := &Renderer{
		registry:     reg,
		imageTimeout: 10 * time.Second,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.images == nil {
		r.images = NewHTTPImageFetcher(r.imageTimeout)
	}
	return r
}

// Render starts rendering doc with the template for templateID. The
// returned view becomes ready once every image has resolved or failed;
// rendering itself never blocks on a bad image.
func (r *Renderer) Render(ctx context.Context, doc domain.ResumeDocument, templateID string) *View {
	tpl := r.registry.Component(templateID)
	v := &View{
		templateID: tpl.Info().ID,
		ownerName:  doc.Header.FullName,
		ready:      make(chan struct{}),
	}
	doc = doc.Clone()

	go func() {
		defer close(v.ready)

		data := templates.Data{Doc: doc}
		if doc.Header.ProfilePhoto != "" {
			photo, err := r.resolvePhoto(ctx, doc.Header.ProfilePhoto)
			if err != nil {
				r.logger.Warn("profile photo unavailable, using placeholder", "template", v.templateID, "error", err)
				data.PhotoBroken = true
			}
			data.Photo = photo
		}

		var buf bytes.Buffer
		if err := tpl.Execute(&buf, data); err != nil {
			v.err = err
			return
		}
		v.html = buf.String()
	}()
	return v
}

// RenderSync renders and waits for the view to become ready.
func (r *Renderer) RenderSync(ctx context.Context, doc domain.ResumeDocument, templateID string) (*View, error) {
	v := r.Render(ctx, doc, templateID)
	if err := v.Wait(ctx); err != nil {
		return nil, err
	}
	return v, nil
}
