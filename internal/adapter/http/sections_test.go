package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"resume-builder/internal/domain"
	"resume-builder/internal/model"
	"resume-builder/internal/usecase"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

// Edit runs fn against a real session over the stored record.
func (f *fakeService) Edit(ctx context.Context, id uuid.UUID, fn func(*usecase.Session) error) (*domain.ResumeRecord, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	save := func(_ context.Context, r domain.ResumeRecord) (*domain.ResumeRecord, error) {
		f.records[id] = &r
		return &r, nil
	}
	sess := usecase.NewSession(*rec, nil, nil, save)
	defer sess.Close()
	if err := fn(sess); err != nil {
		return nil, err
	}
	return sess.Save(ctx)
}

func (f *fakeService) Completeness(_ context.Context, id uuid.UUID) ([]*usecase.StageValidationResult, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return usecase.Completeness(rec.Content), nil
}

func editableRecord() (*fakeService, uuid.UUID) {
	id := uuid.New()
	doc := domain.NewResumeDocument()
	doc.Experience = []domain.Experience{{ID: "exp-a", Company: "Acme", Position: "Intern", Description: []string{}}}
	doc.Skills.Technical = []string{"Go"}
	return &fakeService{records: map[uuid.UUID]*domain.ResumeRecord{
		id: {ID: id, Name: "Mine", Status: domain.StatusDraft, Content: doc},
	}}, id
}

func TestSectionItems(t *testing.T) {
	svc, id := editableRecord()
	app := newTestApp(svc)
	base := "/api/resumes/" + id.String() + "/sections/"

	resp, body := do(t, app, http.MethodPatch, base+"experience/items/exp-a", map[string]interface{}{"field": "company", "value": "Globex"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update = %d %s", resp.StatusCode, body)
	}
	if got := svc.records[id].Content.Experience[0].Company; got != "Globex" {
		t.Errorf("company = %q", got)
	}

	resp, body = do(t, app, http.MethodPost, base+"certifications/items", map[string]string{"name": "CKA", "id": "ignored"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add = %d %s", resp.StatusCode, body)
	}
	var created model.ItemCreatedResponse
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatal(err)
	}
	certs := svc.records[id].Content.Certifications
	if created.ItemID == "" || created.ItemID == "ignored" || len(certs) != 1 || certs[0].ID != created.ItemID {
		t.Errorf("created %q, certifications = %+v", created.ItemID, certs)
	}

	resp, _ = do(t, app, http.MethodDelete, base+"experience/items/exp-a", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("remove status = %d", resp.StatusCode)
	}
	if n := len(svc.records[id].Content.Experience); n != 0 {
		t.Errorf("experience len = %d after remove", n)
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"unknown item", http.MethodPatch, base + "experience/items/exp-a", map[string]interface{}{"field": "company", "value": "X"}, http.StatusNotFound},
		{"removed item", http.MethodDelete, base + "experience/items/exp-a", nil, http.StatusNotFound},
		{"unknown field", http.MethodPatch, base + "certifications/items/" + created.ItemID, map[string]interface{}{"field": "salary", "value": "X"}, http.StatusBadRequest},
		{"wrong value type", http.MethodPatch, base + "certifications/items/" + created.ItemID, map[string]interface{}{"field": "name", "value": 3}, http.StatusBadRequest},
		{"missing field", http.MethodPatch, base + "certifications/items/" + created.ItemID, map[string]interface{}{"value": "X"}, http.StatusBadRequest},
		{"not a list", http.MethodPost, base + "summary/items", map[string]string{}, http.StatusBadRequest},
		{"unknown record", http.MethodDelete, "/api/resumes/" + uuid.NewString() + "/sections/projects/items/x", nil, http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := do(t, app, tc.method, tc.path, tc.body)
			if resp.StatusCode != tc.want {
				t.Errorf("status = %d, want %d: %s", resp.StatusCode, tc.want, body)
			}
		})
	}
}

func TestReplaceSection(t *testing.T) {
	svc, id := editableRecord()
	app := newTestApp(svc)
	base := "/api/resumes/" + id.String() + "/sections/"

	resp, body := do(t, app, http.MethodPut, base+"summary", "Backend engineer")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("summary = %d %s", resp.StatusCode, body)
	}
	resp, body = do(t, app, http.MethodPut, base+"projects", []map[string]interface{}{
		{"name": "Compiler", "technologies": []string{"Go"}},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("projects = %d %s", resp.StatusCode, body)
	}

	got := svc.records[id].Content
	if got.Summary != "Backend engineer" {
		t.Errorf("summary = %q", got.Summary)
	}
	if len(got.Projects) != 1 || got.Projects[0].ID == "" || got.Projects[0].Name != "Compiler" {
		t.Errorf("projects = %+v", got.Projects)
	}
	if got.Experience[0].Company != "Acme" {
		t.Errorf("unrelated section changed: %+v", got.Experience)
	}

	resp, _ = do(t, app, http.MethodPut, base+"hobbies", []string{"chess"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown section status = %d", resp.StatusCode)
	}
	resp, _ = do(t, app, http.MethodPut, base+"experience", map[string]string{"company": "not a list"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("mismatched body status = %d", resp.StatusCode)
	}
}

func TestSkillRoutes(t *testing.T) {
	svc, id := editableRecord()
	app := newTestApp(svc)
	base := "/api/resumes/" + id.String() + "/skills/"

	resp, body := do(t, app, http.MethodPost, base+"technical", map[string]string{"value": " Rust "})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add = %d %s", resp.StatusCode, body)
	}
	resp, _ = do(t, app, http.MethodPut, base+"technical/0", map[string]string{"value": "Golang"})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("update status = %d", resp.StatusCode)
	}
	if diff := cmp.Diff([]string{"Golang", "Rust"}, svc.records[id].Content.Skills.Technical); diff != "" {
		t.Errorf("technical (-want +got):\n%s", diff)
	}
	resp, _ = do(t, app, http.MethodDelete, base+"technical/0", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("remove status = %d", resp.StatusCode)
	}
	if diff := cmp.Diff([]string{"Rust"}, svc.records[id].Content.Skills.Technical); diff != "" {
		t.Errorf("technical after remove (-want +got):\n%s", diff)
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"blank value", http.MethodPost, base + "technical", map[string]string{"value": "  "}, http.StatusBadRequest},
		{"unknown category", http.MethodPost, base + "magic", map[string]string{"value": "x"}, http.StatusBadRequest},
		{"out of range", http.MethodDelete, base + "technical/5", nil, http.StatusNotFound},
		{"bad index", http.MethodPut, base + "technical/first", map[string]string{"value": "x"}, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := do(t, app, tc.method, tc.path, tc.body)
			if resp.StatusCode != tc.want {
				t.Errorf("status = %d, want %d: %s", resp.StatusCode, tc.want, body)
			}
		})
	}
	if diff := cmp.Diff([]string{"Rust"}, svc.records[id].Content.Skills.Technical); diff != "" {
		t.Errorf("rejected requests changed skills (-want +got):\n%s", diff)
	}
}

func TestCompleteness(t *testing.T) {
	svc, id := editableRecord()
	app := newTestApp(svc)

	resp, body := do(t, app, http.MethodGet, "/api/resumes/"+id.String()+"/completeness", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d %s", resp.StatusCode, body)
	}
	var got struct {
		Complete bool                             `json:"complete"`
		Stages   []usecase.StageValidationResult `json:"stages"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got.Complete || len(got.Stages) != 4 {
		t.Fatalf("completeness = %+v", got)
	}
	want := usecase.StageValidationResult{Stage: "header", Missing: []string{"header.fullName", "header.email"}}
	if diff := cmp.Diff(want, got.Stages[0]); diff != "" {
		t.Errorf("header stage (-want +got):\n%s", diff)
	}

	resp, _ = do(t, app, http.MethodGet, "/api/resumes/"+uuid.NewString()+"/completeness", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown record status = %d", resp.StatusCode)
	}
}
