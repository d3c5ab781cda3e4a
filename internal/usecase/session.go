package usecase

import (
	"context"
	"errors"
	"sync"

	"resume-builder/internal/domain"
	"resume-builder/internal/export"
	"resume-builder/internal/render"
)

// ErrSessionClosed is returned by every Session call made after Close, and
// in place of results that arrive once the session has closed.
var ErrSessionClosed = errors.New("editing session closed")

// SaveFunc persists a record and returns the stored version.
type SaveFunc func(ctx context.Context, rec domain.ResumeRecord) (*domain.ResumeRecord, error)

// Session is one open editor: a single document store plus the exporter
// that guarantees at most one export at a time.
type Session struct {
	store    *Store
	renderer *render.Renderer
	exporter *export.Exporter
	save     SaveFunc

	mu     sync.Mutex
	record domain.ResumeRecord
	closed bool
}

// NewSession opens rec for editing. save may be nil for sessions that are
// never persisted.
func NewSession(rec domain.ResumeRecord, r *render.Renderer, ex *export.Exporter, save SaveFunc) *Session {
	store := NewStore(rec.Content)
	rec.Content = domain.ResumeDocument{}
	return &Session{store: store, renderer: r, exporter: ex, save: save, record: rec}
}

// Close ends the session. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) guard() error {
	if s.Closed() {
		return ErrSessionClosed
	}
	return nil
}

// Record returns the session's record with the current document content.
func (s *Session) Record() domain.ResumeRecord {
	s.mu.Lock()
	rec := s.record
	s.mu.Unlock()
	rec.Content = s.store.Snapshot()
	return rec
}

// Document returns a deep copy of the document being edited.
func (s *Session) Document() domain.ResumeDocument { return s.store.Snapshot() }

// Revision reports the change counter of section.
func (s *Session) Revision(section domain.Section) uint64 { return s.store.Revision(section) }

func (s *Session) SetTemplate(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.record.TemplateID = id
	return nil
}

func (s *Session) ReplaceSection(section domain.Section, value interface{}) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.store.ReplaceSection(section, value)
}

func (s *Session) AddItem(section domain.Section, item interface{}) (string, error) {
	if err := s.guard(); err != nil {
		return "", err
	}
	return s.store.AddItem(section, item)
}

func (s *Session) UpdateItemField(section domain.Section, index int, field string, value interface{}) (bool, error) {
	if err := s.guard(); err != nil {
		return false, err
	}
	return s.store.UpdateItemField(section, index, field, value)
}

func (s *Session) UpdateItemFieldByID(section domain.Section, id, field string, value interface{}) (bool, error) {
	if err := s.guard(); err != nil {
		return false, err
	}
	return s.store.UpdateItemFieldByID(section, id, field, value)
}

func (s *Session) RemoveItem(section domain.Section, index int) (bool, error) {
	if err := s.guard(); err != nil {
		return false, err
	}
	return s.store.RemoveItem(section, index), nil
}

func (s *Session) RemoveItemByID(section domain.Section, id string) (bool, error) {
	if err := s.guard(); err != nil {
		return false, err
	}
	return s.store.RemoveItemByID(section, id), nil
}

func (s *Session) AddSkill(category domain.SkillCategory) (int, error) {
	if err := s.guard(); err != nil {
		return -1, err
	}
	return s.store.AddSkill(category)
}

func (s *Session) UpdateSkill(category domain.SkillCategory, index int, value string) (bool, error) {
	if err := s.guard(); err != nil {
		return false, err
	}
	return s.store.UpdateSkill(category, index, value)
}

func (s *Session) RemoveSkill(category domain.SkillCategory, index int) (bool, error) {
	if err := s.guard(); err != nil {
		return false, err
	}
	return s.store.RemoveSkill(category, index)
}

// Render renders the current document with the session's template.
func (s *Session) Render(ctx context.Context) (*render.View, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	rec := s.Record()
	return s.renderer.Render(ctx, rec.Content, rec.TemplateID), nil
}

// CanExport reports whether Export can run in this environment.
func (s *Session) CanExport() bool { return s.exporter.CanExport() }

// Export renders the current document and converts it into a PDF. A second
// call while one is running returns export.ErrExportInProgress.
func (s *Session) Export(ctx context.Context, opts export.Options) (*export.Result, error) {
	view, err := s.Render(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.exporter.Export(ctx, view, opts)
	if s.Closed() {
		return nil, ErrSessionClosed
	}
	return res, err
}

// Save persists the current document. The stored record replaces the
// session's metadata, but the document in the store is left as edited so
// that changes made while the save was in flight are kept.
func (s *Session) Save(ctx context.Context) (*domain.ResumeRecord, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	if s.save == nil {
		return nil, errors.New("session has no persistence")
	}
	saved, err := s.save(ctx, s.Record())
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	if err != nil {
		return nil, err
	}
	meta := *saved
	meta.Content = domain.ResumeDocument{}
	s.record = meta
	return saved, nil
}
