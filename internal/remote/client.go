// Package remote is the Backend that talks to a running demodash API server
// over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/zulandar/demodash/internal/models"
	"github.com/zulandar/demodash/internal/store"
)

// Client implements store.Backend against the REST API rooted at BaseURL.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

var _ store.Backend = (*Client)(nil)

// New returns a client for baseURL with the given request timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Probe reports whether an API server answers GET /healthz at baseURL
// within timeout.
func Probe(ctx context.Context, baseURL string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("remote: probe: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("remote: probe %s: %w", baseURL, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("remote: probe %s: status %d", baseURL, resp.StatusCode)
	}
	return nil
}

// Mode reports store.ModeRemote.
func (c *Client) Mode() store.Mode { return store.ModeRemote }

type idResponse struct {
	ID int64 `json:"id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	out := []models.Project{}
	if err := c.do(ctx, http.MethodGet, "/api/projects", "Project", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProject(ctx context.Context, id int64) (models.Project, error) {
	var p models.Project
	if err := c.do(ctx, http.MethodGet, itemPath("projects", id), "Project", nil, &p); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

func (c *Client) CreateProject(ctx context.Context, p *models.Project) (int64, error) {
	return c.create(ctx, "/api/projects", "Project", p, func(id int64) { p.ID = id })
}

func (c *Client) UpdateProject(ctx context.Context, id int64, f models.ProjectFields) (models.Project, error) {
	if err := c.do(ctx, http.MethodPatch, itemPath("projects", id), "Project", f, &idResponse{}); err != nil {
		return models.Project{}, err
	}
	return c.GetProject(ctx, id)
}

func (c *Client) DeleteProject(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, itemPath("projects", id), "Project", nil, &idResponse{})
}

func (c *Client) ListRFIs(ctx context.Context) ([]models.RFI, error) {
	out := []models.RFI{}
	if err := c.do(ctx, http.MethodGet, "/api/rfis", "RFI", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetRFI(ctx context.Context, id int64) (models.RFI, error) {
	var r models.RFI
	if err := c.do(ctx, http.MethodGet, itemPath("rfis", id), "RFI", nil, &r); err != nil {
		return models.RFI{}, err
	}
	return r, nil
}

func (c *Client) CreateRFI(ctx context.Context, r *models.RFI) (int64, error) {
	return c.create(ctx, "/api/rfis", "RFI", r, func(id int64) { r.ID = id })
}

func (c *Client) UpdateRFI(ctx context.Context, id int64, f models.RFIFields) (models.RFI, error) {
	if err := c.do(ctx, http.MethodPatch, itemPath("rfis", id), "RFI", f, &idResponse{}); err != nil {
		return models.RFI{}, err
	}
	return c.GetRFI(ctx, id)
}

func (c *Client) DeleteRFI(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, itemPath("rfis", id), "RFI", nil, &idResponse{})
}

func (c *Client) ListTasks(ctx context.Context) ([]models.Task, error) {
	out := []models.Task{}
	if err := c.do(ctx, http.MethodGet, "/api/tasks", "Task", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetTask(ctx context.Context, id int64) (models.Task, error) {
	var t models.Task
	if err := c.do(ctx, http.MethodGet, itemPath("tasks", id), "Task", nil, &t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

func (c *Client) CreateTask(ctx context.Context, t *models.Task) (int64, error) {
	return c.create(ctx, "/api/tasks", "Task", t, func(id int64) { t.ID = id })
}

func (c *Client) UpdateTask(ctx context.Context, id int64, f models.TaskFields) (models.Task, error) {
	if err := c.do(ctx, http.MethodPatch, itemPath("tasks", id), "Task", f, &idResponse{}); err != nil {
		return models.Task{}, err
	}
	return c.GetTask(ctx, id)
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, itemPath("tasks", id), "Task", nil, &idResponse{})
}

func (c *Client) ListDocuments(ctx context.Context) ([]models.Document, error) {
	out := []models.Document{}
	if err := c.do(ctx, http.MethodGet, "/api/documents", "Document", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateDocument(ctx context.Context, d *models.Document) (int64, error) {
	return c.create(ctx, "/api/documents", "Document", d, func(id int64) { d.ID = id })
}

func (c *Client) create(ctx context.Context, path, entity string, body any, setID func(int64)) (int64, error) {
	var resp idResponse
	if err := c.do(ctx, http.MethodPost, path, entity, body, &resp); err != nil {
		return 0, err
	}
	setID(resp.ID)
	return resp.ID, nil
}

// do sends one request and decodes a 200 response into out. Error
// responses are mapped back onto the store and models error types.
func (c *Client) do(ctx context.Context, method, path, entity string, body, out any) error {
	op := strings.ToLower(method) + " " + path

	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("remote: encode %s: %w", op, err)
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return fmt.Errorf("remote: %s: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &store.IntegrationError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &store.IntegrationError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
		}
		return nil
	}

	var e errorResponse
	json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&e)
	switch resp.StatusCode {
	case http.StatusNotFound:
		if e.Error == "Not found" {
			return store.ErrUnsupported
		}
		return store.NotFound(entity)
	case http.StatusBadRequest:
		return badRequest(e.Error)
	}
	return &store.IntegrationError{Op: op, Err: fmt.Errorf("status %d: %s", resp.StatusCode, e.Error)}
}

// badRequest turns a 400 message back into a typed error. Validation
// messages take the form "<field> <reason>".
func badRequest(msg string) error {
	if msg == "" || msg == "Invalid request" {
		return store.ErrMalformedRequest
	}
	field, reason, ok := strings.Cut(msg, " ")
	if !ok {
		return store.ErrMalformedRequest
	}
	return &models.ValidationError{Field: field, Msg: reason}
}

func itemPath(resource string, id int64) string {
	return "/api/" + resource + "/" + strconv.FormatInt(id, 10)
}
