package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"resume-builder/internal/adapter/storage"
	"resume-builder/internal/domain"
	"resume-builder/internal/export"
	"resume-builder/internal/model"
	"resume-builder/internal/practice"
	"resume-builder/internal/templates"
	"resume-builder/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

// fakeService records inputs and returns canned results.
type fakeService struct {
	created   usecase.CreateInput
	updated   usecase.UpdateInput
	exportOpt export.Options
	exportErr error
	uploadErr error
	uploaded  []byte
	records   map[uuid.UUID]*domain.ResumeRecord
}

func (f *fakeService) Templates() []templates.Info {
	return []templates.Info{{ID: "classic"}, {ID: "modern"}}
}

func (f *fakeService) Template(id string) (templates.Info, error) {
	if id == "modern" {
		return templates.Info{ID: "modern", Name: "Modern"}, nil
	}
	return templates.Info{}, fmt.Errorf("template %q: %w", id, domain.ErrNotFound)
}

func (f *fakeService) Create(_ context.Context, in usecase.CreateInput) (*domain.ResumeRecord, error) {
	f.created = in
	if in.Name == "bad" {
		return nil, &model.ValidationError{Fields: map[string]string{"header.email": "must be a valid email address"}}
	}
	return &domain.ResumeRecord{ID: uuid.New(), Name: in.Name, Status: domain.StatusDraft, Content: domain.NewResumeDocument()}, nil
}

func (f *fakeService) Get(_ context.Context, id uuid.UUID) (*domain.ResumeRecord, error) {
	if rec, ok := f.records[id]; ok {
		return rec, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeService) List(_ context.Context, userID uuid.UUID) ([]domain.ResumeRecord, error) {
	out := []domain.ResumeRecord{}
	for _, r := range f.records {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeService) Update(_ context.Context, id uuid.UUID, in usecase.UpdateInput) (*domain.ResumeRecord, error) {
	f.updated = in
	rec, ok := f.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if in.Status != nil {
		rec.Status = *in.Status
	}
	return rec, nil
}

func (f *fakeService) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.records[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.records, id)
	return nil
}

func (f *fakeService) Export(_ context.Context, id uuid.UUID, opts export.Options) (*export.Result, error) {
	f.exportOpt = opts
	if f.exportErr != nil {
		return nil, f.exportErr
	}
	return &export.Result{FileName: "Jane_Doe_Resume_2026-10-15.pdf", PDF: []byte("%PDF-1.3 test"), Pages: 1}, nil
}

func (f *fakeService) Upload(_ context.Context, _ string, data []byte) (string, error) {
	f.uploaded = data
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return "https://cdn.example.com/uploads/x.png", nil
}

func newTestApp(svc *fakeService) *fiber.App {
	app := fiber.New(fiber.Config{BodyLimit: 6 << 20})
	api := app.Group("/api")
	NewHandler(svc).Register(api)
	NewPracticeHandler(practice.Default()).Register(api)
	return app
}

func do(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp, out
}

func TestTemplates(t *testing.T) {
	app := newTestApp(&fakeService{})

	resp, body := do(t, app, http.MethodGet, "/api/templates", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"id":"modern"`) {
		t.Errorf("list = %d %s", resp.StatusCode, body)
	}
	resp, _ = do(t, app, http.MethodGet, "/api/templates/baroque", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown template status = %d", resp.StatusCode)
	}
}

func TestCreateResume(t *testing.T) {
	svc := &fakeService{}
	app := newTestApp(svc)
	profile := uuid.New()

	resp, _ := do(t, app, http.MethodPost, "/api/resumes", map[string]interface{}{
		"name":            "Mine",
		"template_id":     "classic",
		"profile_user_id": profile.String(),
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	want := usecase.CreateInput{Name: "Mine", TemplateID: "classic", ProfileUserID: profile}
	if diff := cmp.Diff(want, svc.created); diff != "" {
		t.Errorf("create input (-want +got):\n%s", diff)
	}
}

func TestCreateResume_ValidationError(t *testing.T) {
	app := newTestApp(&fakeService{})
	resp, body := do(t, app, http.MethodPost, "/api/resumes", map[string]string{"name": "bad"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var er model.ErrorResponse
	if err := json.Unmarshal(body, &er); err != nil {
		t.Fatal(err)
	}
	if er.Fields["header.email"] == "" {
		t.Errorf("body = %s", body)
	}
}

func TestResumeCRUD(t *testing.T) {
	id, user := uuid.New(), uuid.New()
	svc := &fakeService{records: map[uuid.UUID]*domain.ResumeRecord{
		id: {ID: id, UserID: user, Name: "Mine", Status: domain.StatusDraft, Content: domain.NewResumeDocument()},
	}}
	app := newTestApp(svc)

	resp, body := do(t, app, http.MethodGet, "/api/resumes/"+id.String(), nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"name":"Mine"`) {
		t.Errorf("get = %d %s", resp.StatusCode, body)
	}
	resp, _ = do(t, app, http.MethodGet, "/api/resumes/not-a-uuid", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad id status = %d", resp.StatusCode)
	}
	resp, body = do(t, app, http.MethodGet, "/api/resumes?user_id="+user.String(), nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), id.String()) {
		t.Errorf("list = %d %s", resp.StatusCode, body)
	}
	resp, _ = do(t, app, http.MethodGet, "/api/resumes", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("list without user_id status = %d", resp.StatusCode)
	}

	resp, body = do(t, app, http.MethodPut, "/api/resumes/"+id.String(), map[string]string{"status": "published"})
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"status":"published"`) {
		t.Errorf("update = %d %s", resp.StatusCode, body)
	}
	if svc.updated.Status == nil || svc.updated.Content != nil || svc.updated.Name != nil {
		t.Errorf("update input = %+v", svc.updated)
	}

	resp, _ = do(t, app, http.MethodDelete, "/api/resumes/"+id.String(), nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d", resp.StatusCode)
	}
	resp, _ = do(t, app, http.MethodGet, "/api/resumes/"+id.String(), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete status = %d", resp.StatusCode)
	}
}

func TestExportResume(t *testing.T) {
	svc := &fakeService{}
	app := newTestApp(svc)

	resp, body := do(t, app, http.MethodPost, "/api/resumes/"+uuid.NewString()+"/export", map[string]interface{}{
		"image_quality": 0.85,
		"orientation":   "Landscape",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "Jane_Doe_Resume_2026-10-15.pdf") {
		t.Errorf("content disposition = %q", cd)
	}
	if !bytes.HasPrefix(body, []byte("%PDF")) {
		t.Error("body is not a PDF")
	}
	want := export.DefaultOptions()
	want.ImageQuality = 0.85
	want.Orientation = export.Landscape
	if diff := cmp.Diff(want, svc.exportOpt); diff != "" {
		t.Errorf("options (-want +got):\n%s", diff)
	}
}

func TestExportResume_ErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{export.ErrExportInProgress, http.StatusConflict},
		{export.ErrUnsupportedEnvironment, http.StatusNotImplemented},
		{fmt.Errorf("%w: scale", export.ErrInvalidOptions), http.StatusBadRequest},
		{domain.ErrNotFound, http.StatusNotFound},
		{export.ErrInvalidOutput, http.StatusBadGateway},
	}
	for _, tc := range tests {
		app := newTestApp(&fakeService{exportErr: tc.err})
		resp, _ := do(t, app, http.MethodPost, "/api/resumes/"+uuid.NewString()+"/export", nil)
		if resp.StatusCode != tc.want {
			t.Errorf("%v: status = %d, want %d", tc.err, resp.StatusCode, tc.want)
		}
	}
}

func multipartRequest(t *testing.T, field, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(data)
	w.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUpload(t *testing.T) {
	svc := &fakeService{}
	app := newTestApp(svc)

	resp, err := app.Test(multipartRequest(t, "file", "me.png", []byte("img")), -1)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated || !strings.Contains(string(body), `"file_url":"https://cdn.example.com/uploads/x.png"`) {
		t.Errorf("upload = %d %s", resp.StatusCode, body)
	}
	if string(svc.uploaded) != "img" {
		t.Errorf("uploaded = %q", svc.uploaded)
	}

	resp, _ = app.Test(multipartRequest(t, "other", "me.png", []byte("img")), -1)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing file status = %d", resp.StatusCode)
	}

	app = newTestApp(&fakeService{uploadErr: fmt.Errorf("%w: 503", storage.ErrStorage)})
	resp, _ = app.Test(multipartRequest(t, "file", "me.png", []byte("img")), -1)
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("storage failure status = %d", resp.StatusCode)
	}
}

func TestPracticeRoutes(t *testing.T) {
	app := newTestApp(&fakeService{})

	resp, body := do(t, app, http.MethodGet, "/api/practice/modules", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "resume-basics") {
		t.Errorf("list = %d %s", resp.StatusCode, body)
	}
	resp, body = do(t, app, http.MethodGet, "/api/practice/modules/resume-basics", nil)
	if resp.StatusCode != http.StatusOK || strings.Contains(string(body), `"answer"`) {
		t.Errorf("detail leaks answers or failed: %d %s", resp.StatusCode, body)
	}
	resp, body = do(t, app, http.MethodPost, "/api/practice/modules/interview-prep/submit", map[string]interface{}{
		"answers": map[string]interface{}{"ip-1": 0},
	})
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"score":1`) {
		t.Errorf("submit = %d %s", resp.StatusCode, body)
	}
	resp, _ = do(t, app, http.MethodPost, "/api/practice/modules/interview-prep/questions/bulk", map[string]interface{}{
		"questions": []map[string]interface{}{{"kind": "short_text", "prompt": "Why?"}},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bulk without answers status = %d", resp.StatusCode)
	}
	resp, _ = do(t, app, http.MethodGet, "/api/practice/modules/nope", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown module status = %d", resp.StatusCode)
	}
}
