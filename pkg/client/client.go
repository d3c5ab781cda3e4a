package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"time"

	"resume-builder/internal/domain"
	"resume-builder/internal/export"
	"resume-builder/internal/model"
	"resume-builder/internal/templates"

	"github.com/google/uuid"
)

// Client calls the resume REST API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	// Attempts bounds retries of idempotent requests on transport errors and
	// 5xx gateway responses.
	Attempts int
	Backoff  time.Duration
}

func NewClient() *Client {
	base := os.Getenv("RESUME_API_URL")
	if base == "" {
		base = "http://localhost:3000"
	}
	return &Client{BaseURL: base, HTTP: &http.Client{Timeout: 60 * time.Second}, Attempts: 3, Backoff: time.Second}
}

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Validation converts a 400 response into the validation error it carried.
func (e *APIError) Validation() (*model.ValidationError, bool) {
	if e.Status != http.StatusBadRequest {
		return nil, false
	}
	return &model.ValidationError{Fields: e.Fields}, true
}

// NotFound reports whether the resource did not exist.
func (e *APIError) NotFound() bool { return e.Status == http.StatusNotFound }

func (c *Client) ListTemplates(ctx context.Context) ([]templates.Info, error) {
	var out []templates.Info
	return out, c.doJSON(ctx, http.MethodGet, "/api/templates", nil, &out)
}

func (c *Client) GetTemplate(ctx context.Context, id string) (*templates.Info, error) {
	var out templates.Info
	if err := c.doJSON(ctx, http.MethodGet, "/api/templates/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateResume(ctx context.Context, req model.CreateResumeRequest) (*domain.ResumeRecord, error) {
	var out domain.ResumeRecord
	if err := c.doJSON(ctx, http.MethodPost, "/api/resumes", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetResume(ctx context.Context, id uuid.UUID) (*domain.ResumeRecord, error) {
	var out domain.ResumeRecord
	if err := c.doJSON(ctx, http.MethodGet, "/api/resumes/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListResumes(ctx context.Context, userID uuid.UUID) ([]domain.ResumeRecord, error) {
	var out []domain.ResumeRecord
	q := url.Values{"user_id": {userID.String()}}
	return out, c.doJSON(ctx, http.MethodGet, "/api/resumes?"+q.Encode(), nil, &out)
}

func (c *Client) UpdateResume(ctx context.Context, id uuid.UUID, req model.UpdateResumeRequest) (*domain.ResumeRecord, error) {
	var out domain.ResumeRecord
	if err := c.doJSON(ctx, http.MethodPut, "/api/resumes/"+id.String(), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteResume(ctx context.Context, id uuid.UUID) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/resumes/"+id.String(), nil, nil)
}

// ExportResume returns the PDF bytes and the server chosen file name.
func (c *Client) ExportResume(ctx context.Context, id uuid.UUID, ov export.Overrides) ([]byte, string, error) {
	body, err := json.Marshal(ov)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.send(ctx, http.MethodPost, "/api/resumes/"+id.String()+"/export", "application/json", body)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", decodeError(resp.StatusCode, data)
	}
	name := ""
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		name = params["filename"]
	}
	return data, name, nil
}

// Upload sends a file as multipart form data and returns its URL.
func (c *Client) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	resp, err := c.send(ctx, http.MethodPost, "/api/uploads", w.FormDataContentType(), buf.Bytes())
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	var out model.UploadResponse
	if err := readJSON(resp, &out); err != nil {
		return "", err
	}
	return out.FileURL, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return err
		}
	}
	resp, err := c.send(ctx, method, path, "application/json", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return readJSON(resp, out)
}

// send performs the request. Idempotent methods are retried with
// exponential backoff.
func (c *Client) send(ctx context.Context, method, path, contentType string, body []byte) (*http.Response, error) {
	attempts := 1
	if method != http.MethodPost && c.Attempts > 1 {
		attempts = c.Attempts
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", contentType)
		}
		req.Header.Set("Accept", "application/json, application/pdf")

		resp, err := c.HTTP.Do(req)
		if err == nil && !retryable(resp.StatusCode) {
			return resp, nil
		}
		if err == nil {
			if i == attempts-1 {
				return resp, nil
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("api: %s", resp.Status)
		} else {
			lastErr = err
		}
		// exponential backoff before retrying
		if i < attempts-1 {
			select {
			case <-time.After(c.Backoff << i):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, lastErr
}

func retryable(status int) bool {
	return status == http.StatusBadGateway || status == http.StatusServiceUnavailable || status == http.StatusGatewayTimeout
}

func readJSON(resp *http.Response, out interface{}) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

func decodeError(status int, data []byte) error {
	var er model.ErrorResponse
	if err := json.Unmarshal(data, &er); err != nil || er.Error == "" {
		er.Error = http.StatusText(status)
	}
	return &APIError{Status: status, Message: er.Error, Fields: er.Fields}
}
