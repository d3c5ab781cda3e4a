package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"resume-builder/internal/export"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// chromeCandidates are looked up on PATH when no explicit binary is set.
var chromeCandidates = []string{
	"headless-shell",
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
	"chrome",
}

var ErrChromeNotFound = errors.New("no chrome or chromium executable found")

// ChromedpRasterizer drives headless Chrome to screenshot or print pages.
type ChromedpRasterizer struct {
	execPath     string
	timeout      time.Duration
	imageTimeout time.Duration
	lookPath     func(string) (string, error)
}

func NewChromedpRasterizer(execPath string, timeout time.Duration) *ChromedpRasterizer {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ChromedpRasterizer{
		execPath:     execPath,
		timeout:      timeout,
		imageTimeout: 10 * time.Second,
		lookPath:     exec.LookPath,
	}
}

// Available reports whether a Chrome binary can be located.
func (r *ChromedpRasterizer) Available() error {
	_, err := r.resolve()
	return err
}

func (r *ChromedpRasterizer) resolve() (string, error) {
	if r.execPath != "" {
		if _, err := os.Stat(r.execPath); err != nil {
			return "", fmt.Errorf("%w: %v", ErrChromeNotFound, err)
		}
		return r.execPath, nil
	}
	for _, name := range chromeCandidates {
		if p, err := r.lookPath(name); err == nil {
			return p, nil
		}
	}
	return "", ErrChromeNotFound
}

// Rasterize returns a full-page PNG of html at widthPx CSS pixels and the
// given device scale factor.
func (r *ChromedpRasterizer) Rasterize(ctx context.Context, html string, widthPx int, scale float64) ([]byte, error) {
	var buf []byte
	err := r.run(ctx, html, func(ctx context.Context) error {
		return chromedp.Run(ctx,
			chromedp.EmulateViewport(int64(widthPx), 1123, chromedp.EmulateScale(scale)),
			chromedp.FullScreenshot(&buf, 100),
		)
	})
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// PrintPDF uses Chrome's print pipeline, keeping text selectable.
func (r *ChromedpRasterizer) PrintPDF(ctx context.Context, html string, opts export.Options) ([]byte, error) {
	w, h := opts.PageSizeMM()
	margin := opts.MarginMM / 25.4
	scale := opts.Scale
	if scale > 2 {
		scale = 2
	}
	var buf []byte
	err := r.run(ctx, html, func(ctx context.Context) error {
		return chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, _, err = page.PrintToPDF().WithPrintBackground(true).
				WithPaperWidth(w / 25.4).
				WithPaperHeight(h / 25.4).
				WithMarginTop(margin).
				WithMarginBottom(margin).
				WithMarginLeft(margin).
				WithMarginRight(margin).
				WithScale(scale).
				Do(ctx)
			return err
		}))
	})
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// run starts a browser, loads html from a temporary file, waits for images
// and then calls fn. A page whose images never settle is still captured.
func (r *ChromedpRasterizer) run(ctx context.Context, html string, fn func(context.Context) error) error {
	bin, err := r.resolve()
	if err != nil {
		return err
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.ExecPath(bin),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	cctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	ctx2, cancel2 := context.WithTimeout(cctx, r.timeout)
	defer cancel2()

	tmpDir, err := os.MkdirTemp("", "resume-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return err
	}

	if err := chromedp.Run(ctx2,
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return err
	}

	var settled bool
	_ = chromedp.Run(ctx2, chromedp.Poll(
		`document.readyState === "complete" && Array.from(document.images).every(i => i.complete)`,
		&settled,
		chromedp.WithPollingTimeout(r.imageTimeout),
	))

	return fn(ctx2)
}
