package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"resume-builder/internal/domain"
	"resume-builder/internal/export"
	"resume-builder/internal/model"
	"resume-builder/internal/render"
	"resume-builder/internal/templates"

	"github.com/google/uuid"
)

// ErrUploadsDisabled is returned by Upload when no storage is configured.
var ErrUploadsDisabled = errors.New("uploads are not configured")

type ResumesRepo interface {
	Create(ctx context.Context, rec *domain.ResumeRecord) error
	Get(ctx context.Context, id uuid.UUID) (*domain.ResumeRecord, error)
	List(ctx context.Context, userID uuid.UUID) ([]domain.ResumeRecord, error)
	Update(ctx context.Context, rec *domain.ResumeRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProfileSource loads the loosely-typed profile a resume is seeded from.
type ProfileSource interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (map[string]interface{}, error)
}

// Uploader stores a file and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, filename string, data []byte) (string, error)
}

// Service orchestrates resume records: seeding from profiles, saving with
// validation, rendering and exporting.
type Service struct {
	repo     ResumesRepo
	profiles ProfileSource
	uploader Uploader
	registry *templates.Registry
	renderer *render.Renderer
	pipeline *export.Pipeline
	now      func() time.Time
	logger   *slog.Logger

	mu       sync.Mutex
	inflight map[uuid.UUID]*exportSlot
	editing  map[uuid.UUID]*editSlot
}

type exportSlot struct {
	ex   *export.Exporter
	refs int
}

type editSlot struct {
	mu   sync.Mutex
	refs int
}

// Deps groups the collaborators of a Service. Profiles and Uploader may be
// nil, in which case the operations that need them fail.
type Deps struct {
	Repo     ResumesRepo
	Profiles ProfileSource
	Uploader Uploader
	Registry *templates.Registry
	Renderer *render.Renderer
	Pipeline *export.Pipeline
	Now      func() time.Time
	Logger   *slog.Logger
}

func NewService(d Deps) *Service {
	s := &Service{
		repo:     d.Repo,
		profiles: d.Profiles,
		uploader: d.Uploader,
		registry: d.Registry,
		renderer: d.Renderer,
		pipeline: d.Pipeline,
		now:      d.Now,
		logger:   d.Logger,
		inflight: map[uuid.UUID]*exportSlot{},
		editing:  map[uuid.UUID]*editSlot{},
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

type CreateInput struct {
	UserID     uuid.UUID
	Name       string
	TemplateID string
	// Content, when nil, is seeded from the profile of ProfileUserID, or
	// of UserID when that is unset.
	Content       *domain.ResumeDocument
	ProfileUserID uuid.UUID
}

func (in CreateInput) profileID() uuid.UUID {
	if in.ProfileUserID != uuid.Nil {
		return in.ProfileUserID
	}
	return in.UserID
}

// UpdateInput carries the fields of a partial update; nil means unchanged.
type UpdateInput struct {
	Name       *string
	TemplateID *string
	Status     *domain.Status
	Content    *domain.ResumeDocument
}

func (s *Service) Templates() []templates.Info { return s.registry.List() }

func (s *Service) Template(id string) (templates.Info, error) {
	info, ok := s.registry.Info(id)
	if !ok {
		return templates.Info{}, fmt.Errorf("template %q: %w", id, domain.ErrNotFound)
	}
	return info, nil
}

// Create stores a new draft resume.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.ResumeRecord, error) {
	var doc domain.ResumeDocument
	switch {
	case in.Content != nil:
		doc = in.Content.Clone()
	case s.profiles != nil && in.profileID() != uuid.Nil:
		profile, err := s.profiles.GetProfile(ctx, in.profileID())
		switch {
		case errors.Is(err, domain.ErrNotFound):
			s.logger.Info("no profile to seed resume from", "user_id", in.profileID())
			doc = domain.NewResumeDocument()
		case err != nil:
			return nil, fmt.Errorf("load profile: %w", err)
		default:
			doc = AdaptProfile(profile)
		}
	default:
		doc = domain.NewResumeDocument()
	}

	rec := domain.ResumeRecord{
		ID:         uuid.New(),
		UserID:     in.UserID,
		Name:       strings.TrimSpace(in.Name),
		TemplateID: in.TemplateID,
		Content:    doc,
		Status:     domain.StatusDraft,
	}
	if rec.Name == "" {
		rec.Name = defaultName(doc)
	}
	if err := s.prepare(&rec); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	rec.CreatedAt, rec.UpdatedAt = now, now
	if err := s.repo.Create(ctx, &rec); err != nil {
		return nil, fmt.Errorf("create resume: %w", err)
	}
	s.logger.Info("resume created", "id", rec.ID, "user_id", rec.UserID, "template", rec.TemplateID)
	return &rec, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.ResumeRecord, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]domain.ResumeRecord, error) {
	return s.repo.List(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// Update applies in to the stored record. Validation failures leave the
// stored record unchanged.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*domain.ResumeRecord, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		rec.Name = strings.TrimSpace(*in.Name)
	}
	if in.TemplateID != nil {
		rec.TemplateID = *in.TemplateID
	}
	if in.Status != nil {
		rec.Status = *in.Status
	}
	if in.Content != nil {
		rec.Content = in.Content.Clone()
	}
	return s.Save(ctx, *rec)
}

// Save validates rec and writes it back. It is the SaveFunc of sessions
// opened by the service.
func (s *Service) Save(ctx context.Context, rec domain.ResumeRecord) (*domain.ResumeRecord, error) {
	rec.Content = rec.Content.Clone()
	if err := s.prepare(&rec); err != nil {
		return nil, err
	}
	rec.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, &rec); err != nil {
		return nil, fmt.Errorf("save resume %s: %w", rec.ID, err)
	}
	return &rec, nil
}

// prepare compacts and validates rec in place. Published records must have
// a complete header.
func (s *Service) prepare(rec *domain.ResumeRecord) error {
	ve := &model.ValidationError{}
	if rec.Status == "" {
		rec.Status = domain.StatusDraft
	}
	if !rec.Status.Valid() {
		ve.Add("status", "must be one of draft, published, archived")
	}
	if rec.TemplateID == "" {
		rec.TemplateID = s.registry.DefaultID()
	} else if !s.registry.Has(rec.TemplateID) {
		ve.Add("template_id", "unknown template")
	}
	if rec.Name == "" {
		ve.Add("name", "is required")
	}

	doc := Compact(rec.Content)
	for _, section := range domain.Sections {
		fillIDs(&doc, section, uuid.NewString)
	}
	publishing := rec.Status == domain.StatusPublished
	header, err := model.NormalizeHeader(doc.Header, publishing)
	doc.Header = header
	if hv, ok := model.AsValidation(err); ok {
		for k, v := range hv.Fields {
			ve.Add(k, v)
		}
	}
	if err := model.ValidateDocument(doc); err != nil {
		dv, ok := model.AsValidation(err)
		if !ok {
			return err
		}
		for k, v := range dv.Fields {
			ve.Add(k, v)
		}
	}
	if publishing {
		for _, path := range HeaderStage(doc).Missing {
			ve.Add(path, "is required")
		}
	}
	if err := ve.Err(); err != nil {
		return err
	}
	rec.Content = doc
	return nil
}

// Open starts an editing session on a stored record.
func (s *Service) Open(ctx context.Context, id uuid.UUID) (*Session, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewSession(*rec, s.renderer, export.NewExporter(s.pipeline), s.Save), nil
}

// Edit opens a session on the stored record, applies fn to it and saves the
// result. Edits of the same record run one at a time so none is lost. When
// fn or validation fails the stored record is left unchanged.
func (s *Service) Edit(ctx context.Context, id uuid.UUID, fn func(*Session) error) (*domain.ResumeRecord, error) {
	unlock := s.lockEdit(id)
	defer unlock()

	sess, err := s.Open(ctx, id)
	if err != nil {
		return nil, err
	}
	defer sess.Close()
	if err := fn(sess); err != nil {
		return nil, err
	}
	return sess.Save(ctx)
}

func (s *Service) lockEdit(id uuid.UUID) func() {
	s.mu.Lock()
	slot, ok := s.editing[id]
	if !ok {
		slot = &editSlot{}
		s.editing[id] = slot
	}
	slot.refs++
	s.mu.Unlock()

	slot.mu.Lock()
	return func() {
		slot.mu.Unlock()
		s.mu.Lock()
		slot.refs--
		if slot.refs == 0 {
			delete(s.editing, id)
		}
		s.mu.Unlock()
	}
}

// Completeness runs the staged checks against the stored record.
func (s *Service) Completeness(ctx context.Context, id uuid.UUID) ([]*StageValidationResult, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return Completeness(rec.Content), nil
}

// CanExport reports whether this process can rasterise resumes.
func (s *Service) CanExport() bool { return s.pipeline.CanExport() }

// Export renders the stored record and returns the PDF. Exports of the same
// record are serialised: a concurrent request gets ErrExportInProgress.
func (s *Service) Export(ctx context.Context, id uuid.UUID, opts export.Options) (*export.Result, error) {
	if !s.pipeline.CanExport() {
		return nil, export.ErrUnsupportedEnvironment
	}
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ex := s.acquire(id)
	defer s.release(id)

	view := s.renderer.Render(ctx, rec.Content, rec.TemplateID)
	res, err := ex.Export(ctx, view, opts)
	if err != nil {
		s.logger.Error("export failed", "id", id, "error", err)
		return nil, err
	}
	return res, nil
}

// acquire returns the exporter shared by all requests for id.
func (s *Service) acquire(id uuid.UUID) *export.Exporter {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.inflight[id]
	if !ok {
		slot = &exportSlot{ex: export.NewExporter(s.pipeline)}
		s.inflight[id] = slot
	}
	slot.refs++
	return slot.ex
}

func (s *Service) release(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slot, ok := s.inflight[id]; ok {
		slot.refs--
		if slot.refs <= 0 {
			delete(s.inflight, id)
		}
	}
}

// Upload stores a profile photo or attachment and returns its URL.
func (s *Service) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	if s.uploader == nil {
		return "", ErrUploadsDisabled
	}
	return s.uploader.Upload(ctx, filename, data)
}

func defaultName(doc domain.ResumeDocument) string {
	if n := strings.TrimSpace(doc.Header.FullName); n != "" {
		return n + " Resume"
	}
	return "Untitled Resume"
}
