// Package localstore is the local-mode Backend: the whole dashboard kept as
// one JSON document on disk, used when no API server is reachable.
package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/zulandar/demodash/internal/models"
	"github.com/zulandar/demodash/internal/store"
)

// Key names the persisted document. The file is <dir>/<Key>.json.
const Key = "dashboardData"

// Store is a JSON-document Backend. Every write replaces the file
// atomically; a failed write leaves both the file and memory unchanged.
type Store struct {
	mu     sync.Mutex
	path   string
	data   models.Dataset
	lastID int64
	now    func() time.Time
}

var _ store.Backend = (*Store)(nil)

// Open loads the document in dir, creating the directory if needed. A
// missing document starts an empty store.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("localstore: create %s: %w", dir, err)
	}
	s := &Store{path: filepath.Join(dir, Key+".json"), now: time.Now}

	raw, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("localstore: read %s: %w", s.path, err)
	default:
		if err := json.Unmarshal(raw, &s.data); err != nil {
			return nil, fmt.Errorf("localstore: decode %s: %w", s.path, err)
		}
	}
	s.data.Normalize()
	s.lastID = maxID(s.data)
	return s, nil
}

// Path returns the document's file path.
func (s *Store) Path() string { return s.path }

// Mode reports store.ModeLocal.
func (s *Store) Mode() store.Mode { return store.ModeLocal }

// Snapshot returns a copy of every collection.
func (s *Store) Snapshot() models.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.data)
}

// Replace overwrites the document with ds.
func (s *Store) Replace(ctx context.Context, ds models.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := clone(ds)
	next.Normalize()
	if err := s.commit(next); err != nil {
		return err
	}
	if id := maxID(next); id > s.lastID {
		s.lastID = id
	}
	return nil
}

// Sync mirrors every collection of src into the document and returns what
// was written.
func (s *Store) Sync(ctx context.Context, src store.Backend) (models.Dataset, error) {
	ds, err := store.LoadAll(ctx, src)
	if err != nil {
		return models.Dataset{}, fmt.Errorf("localstore: sync: %w", err)
	}
	if err := s.Replace(ctx, ds); err != nil {
		return models.Dataset{}, err
	}
	return ds, nil
}

func (s *Store) ListProjects(context.Context) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.data.Projects), nil
}

func (s *Store) GetProject(_ context.Context, id int64) (models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.data.Projects, id, projectID); i >= 0 {
		return s.data.Projects[i], nil
	}
	return models.Project{}, store.NotFound("Project")
}

func (s *Store) CreateProject(ctx context.Context, p *models.Project) (int64, error) {
	return s.write(ctx, func(next *models.Dataset, id int64) error {
		p.ID = id
		next.Projects = append(next.Projects, *p)
		return nil
	})
}

func (s *Store) UpdateProject(ctx context.Context, id int64, f models.ProjectFields) (models.Project, error) {
	var out models.Project
	_, err := s.mutate(ctx, func(next *models.Dataset) error {
		i := indexOf(next.Projects, id, projectID)
		if i < 0 {
			return store.NotFound("Project")
		}
		f.Apply(&next.Projects[i])
		out = next.Projects[i]
		return nil
	})
	return out, err
}

// DeleteProject removes the project and every RFI and task that references
// it. Deleting an absent id is not an error.
func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	_, err := s.mutate(ctx, func(next *models.Dataset) error {
		next.Projects = slices.DeleteFunc(next.Projects, func(p models.Project) bool { return p.ID == id })
		next.RFIs = slices.DeleteFunc(next.RFIs, func(r models.RFI) bool { return r.ProjectID == id })
		next.Tasks = slices.DeleteFunc(next.Tasks, func(t models.Task) bool { return t.ProjectID == id })
		return nil
	})
	return err
}

func (s *Store) ListRFIs(context.Context) ([]models.RFI, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.data.RFIs), nil
}

func (s *Store) GetRFI(_ context.Context, id int64) (models.RFI, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.data.RFIs, id, rfiID); i >= 0 {
		return s.data.RFIs[i], nil
	}
	return models.RFI{}, store.NotFound("RFI")
}

func (s *Store) CreateRFI(ctx context.Context, r *models.RFI) (int64, error) {
	return s.write(ctx, func(next *models.Dataset, id int64) error {
		r.ID = id
		next.RFIs = append(next.RFIs, *r)
		return nil
	})
}

func (s *Store) UpdateRFI(ctx context.Context, id int64, f models.RFIFields) (models.RFI, error) {
	var out models.RFI
	_, err := s.mutate(ctx, func(next *models.Dataset) error {
		i := indexOf(next.RFIs, id, rfiID)
		if i < 0 {
			return store.NotFound("RFI")
		}
		f.Apply(&next.RFIs[i])
		out = next.RFIs[i]
		return nil
	})
	return out, err
}

func (s *Store) DeleteRFI(ctx context.Context, id int64) error {
	_, err := s.mutate(ctx, func(next *models.Dataset) error {
		next.RFIs = slices.DeleteFunc(next.RFIs, func(r models.RFI) bool { return r.ID == id })
		return nil
	})
	return err
}

func (s *Store) ListTasks(context.Context) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.data.Tasks), nil
}

func (s *Store) GetTask(_ context.Context, id int64) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.data.Tasks, id, taskID); i >= 0 {
		return s.data.Tasks[i], nil
	}
	return models.Task{}, store.NotFound("Task")
}

func (s *Store) CreateTask(ctx context.Context, t *models.Task) (int64, error) {
	return s.write(ctx, func(next *models.Dataset, id int64) error {
		t.ID = id
		next.Tasks = append(next.Tasks, *t)
		return nil
	})
}

func (s *Store) UpdateTask(ctx context.Context, id int64, f models.TaskFields) (models.Task, error) {
	var out models.Task
	_, err := s.mutate(ctx, func(next *models.Dataset) error {
		i := indexOf(next.Tasks, id, taskID)
		if i < 0 {
			return store.NotFound("Task")
		}
		f.Apply(&next.Tasks[i])
		out = next.Tasks[i]
		return nil
	})
	return out, err
}

func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	_, err := s.mutate(ctx, func(next *models.Dataset) error {
		next.Tasks = slices.DeleteFunc(next.Tasks, func(t models.Task) bool { return t.ID == id })
		return nil
	})
	return err
}

// ListDocuments is not served in local mode.
func (s *Store) ListDocuments(context.Context) ([]models.Document, error) {
	return nil, store.ErrUnsupported
}

// CreateDocument is not served in local mode.
func (s *Store) CreateDocument(context.Context, *models.Document) (int64, error) {
	return 0, store.ErrUnsupported
}

// write runs fn with a freshly allocated id and commits the result.
func (s *Store) write(ctx context.Context, fn func(next *models.Dataset, id int64) error) (int64, error) {
	var id int64
	_, err := s.mutate(ctx, func(next *models.Dataset) error {
		id = s.nextID()
		s.lastID = id
		return fn(next, id)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// mutate applies fn to a copy of the document and swaps it in only once
// the copy is on disk.
func (s *Store) mutate(ctx context.Context, fn func(next *models.Dataset) error) (models.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return models.Dataset{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := clone(s.data)
	if err := fn(&next); err != nil {
		return models.Dataset{}, err
	}
	if err := s.commit(next); err != nil {
		return models.Dataset{}, err
	}
	return next, nil
}

// nextID returns a time-based id that is strictly greater than any id
// handed out before. Caller holds s.mu.
func (s *Store) nextID() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	return id
}

// commit writes next to disk and makes it current. Caller holds s.mu.
func (s *Store) commit(next models.Dataset) error {
	raw, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return &store.IntegrationError{Op: "encode document", Err: err}
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), Key+"-*.tmp")
	if err != nil {
		return &store.IntegrationError{Op: "write document", Err: err}
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return &store.IntegrationError{Op: "write document", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &store.IntegrationError{Op: "write document", Err: err}
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return &store.IntegrationError{Op: "write document", Err: err}
	}
	s.data = next
	return nil
}

func clone(d models.Dataset) models.Dataset {
	return models.Dataset{
		Projects: slices.Clone(d.Projects),
		RFIs:     slices.Clone(d.RFIs),
		Tasks:    slices.Clone(d.Tasks),
	}
}

func maxID(d models.Dataset) int64 {
	var m int64
	for _, p := range d.Projects {
		m = max(m, p.ID)
	}
	for _, r := range d.RFIs {
		m = max(m, r.ID)
	}
	for _, t := range d.Tasks {
		m = max(m, t.ID)
	}
	return m
}

func projectID(p models.Project) int64 { return p.ID }
func rfiID(r models.RFI) int64         { return r.ID }
func taskID(t models.Task) int64       { return t.ID }

func indexOf[T any](items []T, id int64, key func(T) int64) int {
	return slices.IndexFunc(items, func(v T) bool { return key(v) == id })
}
