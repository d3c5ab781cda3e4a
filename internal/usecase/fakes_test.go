package usecase

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sort"
	"sync"
	"time"

	"resume-builder/internal/domain"
	"resume-builder/internal/export"
	"resume-builder/internal/render"
	"resume-builder/internal/templates"

	"github.com/google/uuid"
)

type memRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]domain.ResumeRecord
	updates int
}

func newMemRepo() *memRepo {
	return &memRepo{records: map[uuid.UUID]domain.ResumeRecord{}}
}

func (r *memRepo) Create(_ context.Context, rec *domain.ResumeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.ID] = *rec
	return nil
}

func (r *memRepo) Get(_ context.Context, id uuid.UUID) (*domain.ResumeRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	rec.Content = rec.Content.Clone()
	return &rec, nil
}

func (r *memRepo) List(_ context.Context, userID uuid.UUID) ([]domain.ResumeRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.ResumeRecord{}
	for _, rec := range r.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memRepo) Update(_ context.Context, rec *domain.ResumeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[rec.ID]; !ok {
		return domain.ErrNotFound
	}
	r.records[rec.ID] = *rec
	r.updates++
	return nil
}

func (r *memRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

type profileMap map[uuid.UUID]map[string]interface{}

func (p profileMap) GetProfile(_ context.Context, id uuid.UUID) (map[string]interface{}, error) {
	prof, ok := p[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return prof, nil
}

// pngRaster returns a small white page, optionally blocking until release
// is closed.
type pngRaster struct {
	unavailable error
	started     chan struct{}
	release     chan struct{}
}

func (r *pngRaster) Available() error { return r.unavailable }

func (r *pngRaster) Rasterize(ctx context.Context, _ string, widthPx int, _ float64) ([]byte, error) {
	if r.started != nil {
		r.started <- struct{}{}
	}
	if r.release != nil {
		select {
		case <-r.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	img := image.NewRGBA(image.Rect(0, 0, widthPx, 600))
	for y := 0; y < 600; y++ {
		for x := 0; x < widthPx; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var fixedNow = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

func newTestService(raster export.Rasterizer, profiles ProfileSource) (*Service, *memRepo) {
	repo := newMemRepo()
	reg := templates.MustLoad()
	svc := NewService(Deps{
		Repo:     repo,
		Profiles: profiles,
		Registry: reg,
		Renderer: render.New(reg),
		Pipeline: export.NewPipeline(raster, export.WithClock(func() time.Time { return fixedNow }), export.WithRetry(1, 0)),
		Now:      func() time.Time { return fixedNow },
	})
	return svc, repo
}
