package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"resume-builder/internal/domain"
	"resume-builder/internal/export"
	"resume-builder/internal/model"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

var janeID = uuid.MustParse("5f1d7c4e-0000-4000-8000-000000000001")

func janeProfiles() profileMap {
	return profileMap{janeID: {
		"name":                  "Jane Doe",
		"email":                 "Jane@X.com",
		"internship_experience": "Intern at Acme (2022)",
		"skills":                "Go, SQL",
	}}
}

func TestService_CreateFromProfile(t *testing.T) {
	svc, repo := newTestService(&pngRaster{}, janeProfiles())

	rec, err := svc.Create(context.Background(), CreateInput{UserID: janeID})
	if err != nil {
		t.Fatal(err)
	}
	if rec.Name != "Jane Doe Resume" || rec.TemplateID != "modern" || rec.Status != domain.StatusDraft {
		t.Errorf("record metadata = %q %q %q", rec.Name, rec.TemplateID, rec.Status)
	}
	if rec.Content.Header.Email != "jane@x.com" {
		t.Errorf("email not normalised: %q", rec.Content.Header.Email)
	}
	if !rec.CreatedAt.Equal(fixedNow) || !rec.UpdatedAt.Equal(fixedNow) {
		t.Errorf("timestamps = %v %v", rec.CreatedAt, rec.UpdatedAt)
	}
	stored, err := repo.Get(context.Background(), rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(rec.Content, stored.Content); diff != "" {
		t.Errorf("stored content differs (-returned +stored):\n%s", diff)
	}
	if got := stored.Content.Experience; len(got) != 1 || got[0].ID != "experience-1" || got[0].Company != "Acme" {
		t.Errorf("experience = %+v", got)
	}
}

func TestService_CreateRejectsInvalidInput(t *testing.T) {
	svc, repo := newTestService(&pngRaster{}, nil)

	doc := domain.NewResumeDocument()
	doc.Header.Email = "not-an-email"
	_, err := svc.Create(context.Background(), CreateInput{Name: "Mine", TemplateID: "baroque", Content: &doc})

	ve, ok := model.AsValidation(err)
	if !ok {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	for _, field := range []string{"header.email", "template_id"} {
		if _, ok := ve.Fields[field]; !ok {
			t.Errorf("no message for %s in %v", field, ve.Fields)
		}
	}
	if len(repo.records) != 0 {
		t.Error("invalid record was stored")
	}
}

func TestService_UpdateCompactsAndAssignsIDs(t *testing.T) {
	svc, _ := newTestService(&pngRaster{}, janeProfiles())
	ctx := context.Background()
	rec, err := svc.Create(ctx, CreateInput{UserID: janeID})
	if err != nil {
		t.Fatal(err)
	}

	doc := rec.Content.Clone()
	doc.Skills.Technical = append(doc.Skills.Technical, "", "  ")
	doc.Projects = append(doc.Projects, domain.Project{Name: "Compiler", Technologies: []string{"Go", ""}})
	published := domain.StatusPublished

	got, err := svc.Update(ctx, rec.ID, UpdateInput{Content: &doc, Status: &published})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Go", "SQL"}, got.Content.Skills.Technical); diff != "" {
		t.Errorf("technical (-want +got):\n%s", diff)
	}
	if p := got.Content.Projects; len(p) != 1 || p[0].ID == "" || len(p[0].Technologies) != 1 {
		t.Errorf("projects = %+v", p)
	}
	if got.Status != domain.StatusPublished {
		t.Errorf("status = %q", got.Status)
	}
}

func TestService_PublishRequiresHeader(t *testing.T) {
	svc, repo := newTestService(&pngRaster{}, nil)
	ctx := context.Background()
	doc := domain.NewResumeDocument()
	doc.Header.FullName = "Jane Doe"
	rec, err := svc.Create(ctx, CreateInput{Name: "Draft", Content: &doc})
	if err != nil {
		t.Fatalf("incomplete draft should save: %v", err)
	}

	published := domain.StatusPublished
	_, err = svc.Update(ctx, rec.ID, UpdateInput{Status: &published})
	ve, ok := model.AsValidation(err)
	if !ok {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if _, ok := ve.Fields["header.email"]; !ok {
		t.Errorf("fields = %v, want header.email", ve.Fields)
	}
	stored, _ := repo.Get(ctx, rec.ID)
	if stored.Status != domain.StatusDraft {
		t.Errorf("failed publish changed stored status to %q", stored.Status)
	}
}

func TestService_NotFound(t *testing.T) {
	svc, _ := newTestService(&pngRaster{}, nil)
	if _, err := svc.Get(context.Background(), uuid.New()); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get err = %v", err)
	}
	if _, err := svc.Template("baroque"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Template err = %v", err)
	}
	if _, err := svc.Upload(context.Background(), "a.png", []byte{1}); !errors.Is(err, ErrUploadsDisabled) {
		t.Errorf("Upload err = %v", err)
	}
}

func TestService_Export(t *testing.T) {
	svc, _ := newTestService(&pngRaster{}, janeProfiles())
	ctx := context.Background()
	rec, err := svc.Create(ctx, CreateInput{UserID: janeID})
	if err != nil {
		t.Fatal(err)
	}

	res, err := svc.Export(ctx, rec.ID, export.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if res.FileName != "Jane_Doe_Resume_2026-10-15.pdf" {
		t.Errorf("FileName = %q", res.FileName)
	}
	if !bytes.HasPrefix(res.PDF, []byte("%PDF")) {
		t.Error("output is not a PDF")
	}
}

func TestService_ExportUnsupportedEnvironment(t *testing.T) {
	svc, _ := newTestService(&pngRaster{unavailable: errors.New("no chrome")}, nil)
	if svc.CanExport() {
		t.Error("CanExport = true without a rasteriser")
	}
	if _, err := svc.Export(context.Background(), uuid.New(), export.DefaultOptions()); !errors.Is(err, export.ErrUnsupportedEnvironment) {
		t.Errorf("err = %v", err)
	}
}

func TestService_ExportSingleFlightPerRecord(t *testing.T) {
	raster := &pngRaster{started: make(chan struct{}, 1), release: make(chan struct{})}
	svc, _ := newTestService(raster, janeProfiles())
	ctx := context.Background()
	rec, err := svc.Create(ctx, CreateInput{UserID: janeID})
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := svc.Export(ctx, rec.ID, export.DefaultOptions())
		done <- err
	}()
	<-raster.started

	if _, err := svc.Export(ctx, rec.ID, export.DefaultOptions()); !errors.Is(err, export.ErrExportInProgress) {
		t.Errorf("second export err = %v, want ErrExportInProgress", err)
	}
	close(raster.release)
	if err := <-done; err != nil {
		t.Fatalf("first export: %v", err)
	}

	if _, err := svc.Export(ctx, rec.ID, export.DefaultOptions()); err != nil {
		t.Errorf("export after completion: %v", err)
	}
	if len(svc.inflight) != 0 {
		t.Errorf("%d exporters left registered", len(svc.inflight))
	}
}

func TestService_EditByID(t *testing.T) {
	svc, repo := newTestService(&pngRaster{}, janeProfiles())
	ctx := context.Background()
	rec, err := svc.Create(ctx, CreateInput{UserID: janeID})
	if err != nil {
		t.Fatal(err)
	}

	var certID string
	got, err := svc.Edit(ctx, rec.ID, func(s *Session) error {
		if ok, err := s.UpdateItemFieldByID(domain.SectionExperience, "experience-1", "company", "Acme Corp"); err != nil || !ok {
			return fmt.Errorf("update company: %v %v", ok, err)
		}
		idx, err := s.AddSkill(domain.SkillsLanguages)
		if err != nil {
			return err
		}
		if _, err := s.UpdateSkill(domain.SkillsLanguages, idx, "Portuguese"); err != nil {
			return err
		}
		certID, err = s.AddItem(domain.SectionCertifications, domain.Certification{Name: "CKA"})
		return err
	})
	if err != nil {
		t.Fatal(err)
	}

	stored, _ := repo.Get(ctx, rec.ID)
	if diff := cmp.Diff(got.Content, stored.Content); diff != "" {
		t.Errorf("stored content differs (-returned +stored):\n%s", diff)
	}
	if c := stored.Content.Experience[0].Company; c != "Acme Corp" {
		t.Errorf("company = %q", c)
	}
	if diff := cmp.Diff([]string{"Portuguese"}, stored.Content.Skills.Languages); diff != "" {
		t.Errorf("languages (-want +got):\n%s", diff)
	}
	if c := stored.Content.Certifications; len(c) != 1 || c[0].ID != certID {
		t.Errorf("certifications = %+v, want id %s", c, certID)
	}
}

func TestService_EditFailureKeepsRecord(t *testing.T) {
	svc, repo := newTestService(&pngRaster{}, janeProfiles())
	ctx := context.Background()
	rec, err := svc.Create(ctx, CreateInput{UserID: janeID})
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.Edit(ctx, rec.ID, func(s *Session) error {
		if _, err := s.UpdateItemFieldByID(domain.SectionExperience, "experience-1", "company", "Globex"); err != nil {
			return err
		}
		_, err := s.UpdateItemFieldByID(domain.SectionExperience, "experience-1", "salary", "lots")
		return err
	})
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("err = %v, want ErrUnknownField", err)
	}
	_, err = svc.Edit(ctx, rec.ID, func(s *Session) error {
		return s.ReplaceSection(domain.SectionHeader, domain.Header{FullName: "Jane Doe", Email: "nope"})
	})
	if _, ok := model.AsValidation(err); !ok {
		t.Fatalf("err = %v, want ValidationError", err)
	}

	stored, _ := repo.Get(ctx, rec.ID)
	if diff := cmp.Diff(rec.Content, stored.Content); diff != "" {
		t.Errorf("failed edits changed the record (-before +after):\n%s", diff)
	}
	if repo.updates != 0 {
		t.Errorf("updates = %d, want 0", repo.updates)
	}
	if _, err := svc.Edit(ctx, uuid.New(), func(*Session) error { return nil }); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing record err = %v", err)
	}
}

func TestService_EditsAreSerialised(t *testing.T) {
	svc, repo := newTestService(&pngRaster{}, janeProfiles())
	ctx := context.Background()
	rec, err := svc.Create(ctx, CreateInput{UserID: janeID})
	if err != nil {
		t.Fatal(err)
	}

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Edit(ctx, rec.ID, func(s *Session) error {
				_, err := s.AddItem(domain.SectionCertifications, domain.Certification{Name: fmt.Sprintf("cert %d", i)})
				return err
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}

	stored, _ := repo.Get(ctx, rec.ID)
	if got := len(stored.Content.Certifications); got != n {
		t.Errorf("certifications = %d, want %d", got, n)
	}
	if len(svc.editing) != 0 {
		t.Errorf("edit locks left behind: %d", len(svc.editing))
	}
}

func TestService_Completeness(t *testing.T) {
	svc, _ := newTestService(&pngRaster{}, janeProfiles())
	ctx := context.Background()
	rec, err := svc.Create(ctx, CreateInput{UserID: janeID})
	if err != nil {
		t.Fatal(err)
	}

	stages, err := svc.Completeness(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := []*StageValidationResult{
		{Stage: "header", Valid: true, Missing: []string{}},
		{Stage: "experience", Valid: false, Missing: []string{"experience[0].endDate"}},
		{Stage: "education", Valid: true, Missing: []string{}},
		{Stage: "showcase", Valid: true, Missing: []string{}},
	}
	if diff := cmp.Diff(want, stages); diff != "" {
		t.Errorf("stages (-want +got):\n%s", diff)
	}
	if _, err := svc.Completeness(ctx, uuid.New()); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing record err = %v", err)
	}
}
