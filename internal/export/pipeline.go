package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png"
	"log/slog"
	"sync/atomic"
	"time"

	"resume-builder/internal/render"
)

// Rasterizer paints HTML into a full-page lossless image (PNG bytes) at the
// given CSS width and device scale factor.
type Rasterizer interface {
	// Available reports why the rasteriser cannot run, or nil.
	Available() error
	Rasterize(ctx context.Context, html string, widthPx int, scale float64) ([]byte, error)
}

// Printer is implemented by rasterisers that can also print vector PDFs.
type Printer interface {
	PrintPDF(ctx context.Context, html string, opts Options) ([]byte, error)
}

// Result is a finished export.
type Result struct {
	FileName string
	PDF      []byte
	Pages    int
}

// Pipeline turns rendered views into PDF files.
type Pipeline struct {
	raster   Rasterizer
	now      func() time.Time
	attempts int
	backoff  time.Duration
	logger   *slog.Logger
}

type PipelineOption func(*Pipeline)

func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) { p.now = now }
}

// WithRetry sets how many rasterisation attempts are made and the first
// backoff, which doubles after each failure.
func WithRetry(attempts int, backoff time.Duration) PipelineOption {
	return func(p *Pipeline) {
		if attempts > 0 {
			p.attempts = attempts
		}
		p.backoff = backoff
	}
}

func WithPipelineLogger(l *slog.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = l }
}

func NewPipeline(r Rasterizer, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		raster:   r,
		now:      time.Now,
		attempts: 3,
		backoff:  time.Second,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CanExport reports whether a renderable surface is available.
func (p *Pipeline) CanExport() bool {
	return p.raster != nil && p.raster.Available() == nil
}

// Export waits for view to be ready and converts it into a PDF.
func (p *Pipeline) Export(ctx context.Context, view *render.View, opts Options) (*Result, error) {
	if p.raster == nil {
		return nil, ErrUnsupportedEnvironment
	}
	if err := p.raster.Available(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedEnvironment, err)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := view.Wait(ctx); err != nil {
		return nil, fmt.Errorf("export: render: %w", err)
	}
	html, err := view.HTML()
	if err != nil {
		return nil, fmt.Errorf("export: render: %w", err)
	}

	now := p.now()
	res := &Result{FileName: FileName(view.OwnerName(), now)}

	if opts.Mode == ModeVector {
		printer, ok := p.raster.(Printer)
		if !ok {
			return nil, fmt.Errorf("%w: vector mode not supported by rasteriser", ErrInvalidOptions)
		}
		pdf, err := p.retry(ctx, func() ([]byte, error) { return printer.PrintPDF(ctx, html, opts) })
		if err != nil {
			return nil, err
		}
		if !bytes.HasPrefix(pdf, []byte("%PDF")) {
			return nil, fmt.Errorf("%w (len=%d)", ErrInvalidOutput, len(pdf))
		}
		res.PDF = pdf
		return res, nil
	}

	raw, err := p.retry(ctx, func() ([]byte, error) {
		return p.raster.Rasterize(ctx, html, opts.ViewportWidthPx(), opts.Scale)
	})
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: decode raster: %v", ErrInvalidOutput, err)
	}

	pdf, pages, err := assemblePDF(img, opts, view.OwnerName(), now)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		return nil, fmt.Errorf("%w (len=%d)", ErrInvalidOutput, len(pdf))
	}
	res.PDF = pdf
	res.Pages = pages
	p.logger.Info("resume exported", "file", res.FileName, "pages", pages, "bytes", len(pdf), "quality", opts.ImageQuality, "scale", opts.Scale)
	return res, nil
}

// retry runs fn with exponential backoff between attempts.
func (p *Pipeline) retry(ctx context.Context, fn func() ([]byte, error)) ([]byte, error) {
	var lastErr error
	for i := 0; i < p.attempts; i++ {
		out, err := fn()
		if err == nil {
			return out, nil
		}
		lastErr = err
		p.logger.Warn("render attempt failed", "attempt", i+1, "error", err)
		if i < p.attempts-1 {
			select {
			case <-time.After(p.backoff << i):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, fmt.Errorf("export: rendering failed after %d attempts: %w", p.attempts, lastErr)
}

// Exporter admits one export at a time. Each editing session owns one.
type Exporter struct {
	pipeline *Pipeline
	busy     atomic.Bool
}

func NewExporter(p *Pipeline) *Exporter {
	return &Exporter{pipeline: p}
}

func (e *Exporter) CanExport() bool { return e.pipeline.CanExport() }

// Export rejects the call with ErrExportInProgress while another export
// from the same Exporter is running.
func (e *Exporter) Export(ctx context.Context, view *render.View, opts Options) (*Result, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return nil, ErrExportInProgress
	}
	defer e.busy.Store(false)
	return e.pipeline.Export(ctx, view, opts)
}

// Busy reports whether an export is running.
func (e *Exporter) Busy() bool { return e.busy.Load() }
