package render

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// ImageFetcher downloads a remote image.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

var ErrNotAnImage = errors.New("resource is not an image")

// HTTPImageFetcher fetches images over HTTP, refusing bodies above MaxBytes.
type HTTPImageFetcher struct {
	HTTP     *http.Client
	MaxBytes int64
}

func NewHTTPImageFetcher(timeout time.Duration) *HTTPImageFetcher {
	return &HTTPImageFetcher{HTTP: &http.Client{Timeout: timeout}, MaxBytes: 5 << 20}
}

func (f *HTTPImageFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image fetch returned status %d", resp.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, f.MaxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > f.MaxBytes {
		return nil, fmt.Errorf("image larger than %d bytes", f.MaxBytes)
	}
	return b, nil
}

// inlineImage turns image bytes into a data URI, rejecting non-images.
func inlineImage(b []byte) (template.URL, error) {
	mt := mimetype.Detect(b)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%w: %s", ErrNotAnImage, mt.String())
	}
	return template.URL("data:" + mt.String() + ";base64," + base64.StdEncoding.EncodeToString(b)), nil
}

// resolvePhoto returns an inline photo source. Any failure yields an empty
// source so the template shows a placeholder.
func (r *Renderer) resolvePhoto(ctx context.Context, src string) (template.URL, error) {
	src = strings.TrimSpace(src)
	switch {
	case src == "":
		return "", nil
	case strings.HasPrefix(src, "data:image/"):
		return template.URL(src), nil
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
	default:
		return "", fmt.Errorf("unsupported image source %q", src)
	}
	if r.images == nil {
		return "", errors.New("no image fetcher configured")
	}
	ctx, cancel := context.WithTimeout(ctx, r.imageTimeout)
	defer cancel()
	b, err := r.images.Fetch(ctx, src)
	if err != nil {
		return "", err
	}
	return inlineImage(b)
}
