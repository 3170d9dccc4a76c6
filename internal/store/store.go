// Package store defines the storage backend the dashboard persists through
// and its relational (gorm) implementation.
package store

import (
	"context"
	"errors"

	"github.com/zulandar/demodash/internal/models"
)

// Mode names where a backend keeps its data.
type Mode string

const (
	// ModeServer is the authoritative relational store.
	ModeServer Mode = "server"
	// ModeRemote reaches the server over HTTP.
	ModeRemote Mode = "remote"
	// ModeLocal is the local JSON document used when no server is reachable.
	ModeLocal Mode = "local"
)

// Backend is the persistence contract shared by the relational store, the
// remote HTTP client and the local-mode document store.
//
// Create methods assign the record's ID and return it. Update methods merge
// the supplied fields into the stored record and return the result, or an
// error wrapping ErrNotFound. Delete methods are idempotent; deleting a
// project also deletes its RFIs and tasks.
type Backend interface {
	Mode() Mode

	ListProjects(ctx context.Context) ([]models.Project, error)
	GetProject(ctx context.Context, id int64) (models.Project, error)
	CreateProject(ctx context.Context, p *models.Project) (int64, error)
	UpdateProject(ctx context.Context, id int64, f models.ProjectFields) (models.Project, error)
	DeleteProject(ctx context.Context, id int64) error

	ListRFIs(ctx context.Context) ([]models.RFI, error)
	GetRFI(ctx context.Context, id int64) (models.RFI, error)
	CreateRFI(ctx context.Context, r *models.RFI) (int64, error)
	UpdateRFI(ctx context.Context, id int64, f models.RFIFields) (models.RFI, error)
	DeleteRFI(ctx context.Context, id int64) error

	ListTasks(ctx context.Context) ([]models.Task, error)
	GetTask(ctx context.Context, id int64) (models.Task, error)
	CreateTask(ctx context.Context, t *models.Task) (int64, error)
	UpdateTask(ctx context.Context, id int64, f models.TaskFields) (models.Task, error)
	DeleteTask(ctx context.Context, id int64) error

	// Documents are served by the relational store only; other backends
	// return ErrUnsupported.
	ListDocuments(ctx context.Context) ([]models.Document, error)
	CreateDocument(ctx context.Context, d *models.Document) (int64, error)
}

// LoadAll reads every collection from b into one Dataset.
func LoadAll(ctx context.Context, b Backend) (models.Dataset, error) {
	var (
		d   models.Dataset
		err error
	)
	if d.Projects, err = b.ListProjects(ctx); err != nil {
		return models.Dataset{}, err
	}
	if d.RFIs, err = b.ListRFIs(ctx); err != nil {
		return models.Dataset{}, err
	}
	if d.Tasks, err = b.ListTasks(ctx); err != nil {
		return models.Dataset{}, err
	}
	d.Normalize()
	return d, nil
}

// CreateProjects creates ps in order and returns their ids. If any create
// fails, the projects already created are deleted again before the error
// is returned.
func CreateProjects(ctx context.Context, b Backend, ps []models.Project) ([]int64, error) {
	ids := make([]int64, 0, len(ps))
	for i := range ps {
		id, err := b.CreateProject(ctx, &ps[i])
		if err != nil {
			return nil, errors.Join(err, rollbackProjects(ctx, b, ids))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func rollbackProjects(ctx context.Context, b Backend, ids []int64) error {
	ctx = context.WithoutCancel(ctx)
	var errs []error
	for _, id := range ids {
		if err := b.DeleteProject(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
