package store

import (
	"context"
	"errors"

	"github.com/zulandar/demodash/internal/models"
	"gorm.io/gorm"
)

// Gorm is the relational Backend. IDs come from the table's autoincrement
// column; the project cascade is done here, not by foreign-key constraints.
type Gorm struct {
	db *gorm.DB
}

// NewGorm wraps an open gorm connection.
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

// Mode reports ModeServer.
func (g *Gorm) Mode() Mode { return ModeServer }

// ListProjects returns every project ordered by id.
func (g *Gorm) ListProjects(ctx context.Context) ([]models.Project, error) {
	return list[models.Project](ctx, g.db, "list projects")
}

// GetProject returns the project with the given id.
func (g *Gorm) GetProject(ctx context.Context, id int64) (models.Project, error) {
	return get[models.Project](ctx, g.db, id, "Project")
}

// CreateProject inserts p, ignoring any id it carries.
func (g *Gorm) CreateProject(ctx context.Context, p *models.Project) (int64, error) {
	p.ID = 0
	if err := create(ctx, g.db, p, "create project"); err != nil {
		return 0, err
	}
	return p.ID, nil
}

// UpdateProject merges f into the stored project.
func (g *Gorm) UpdateProject(ctx context.Context, id int64, f models.ProjectFields) (models.Project, error) {
	return update(ctx, g.db, id, "Project", func(p *models.Project) { f.Apply(p) })
}

// DeleteProject removes the project with its RFIs, tasks and documents in
// one transaction.
func (g *Gorm) DeleteProject(ctx context.Context, id int64) error {
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.RFI{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.Document{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, id).Error
	})
	if err != nil {
		return &IntegrationError{Op: "delete project", Err: err}
	}
	return nil
}

// ListRFIs returns every RFI ordered by id.
func (g *Gorm) ListRFIs(ctx context.Context) ([]models.RFI, error) {
	return list[models.RFI](ctx, g.db, "list rfis")
}

// GetRFI returns the RFI with the given id.
func (g *Gorm) GetRFI(ctx context.Context, id int64) (models.RFI, error) {
	return get[models.RFI](ctx, g.db, id, "RFI")
}

// CreateRFI inserts r, ignoring any id it carries.
func (g *Gorm) CreateRFI(ctx context.Context, r *models.RFI) (int64, error) {
	r.ID = 0
	if err := create(ctx, g.db, r, "create rfi"); err != nil {
		return 0, err
	}
	return r.ID, nil
}

// UpdateRFI merges f into the stored RFI.
func (g *Gorm) UpdateRFI(ctx context.Context, id int64, f models.RFIFields) (models.RFI, error) {
	return update(ctx, g.db, id, "RFI", func(r *models.RFI) { f.Apply(r) })
}

// DeleteRFI removes the RFI. An absent id is not an error.
func (g *Gorm) DeleteRFI(ctx context.Context, id int64) error {
	return remove[models.RFI](ctx, g.db, id, "delete rfi")
}

// ListTasks returns every task ordered by id.
func (g *Gorm) ListTasks(ctx context.Context) ([]models.Task, error) {
	return list[models.Task](ctx, g.db, "list tasks")
}

// GetTask returns the task with the given id.
func (g *Gorm) GetTask(ctx context.Context, id int64) (models.Task, error) {
	return get[models.Task](ctx, g.db, id, "Task")
}

// CreateTask inserts t, ignoring any id it carries.
func (g *Gorm) CreateTask(ctx context.Context, t *models.Task) (int64, error) {
	t.ID = 0
	if err := create(ctx, g.db, t, "create task"); err != nil {
		return 0, err
	}
	return t.ID, nil
}

// UpdateTask merges f into the stored task.
func (g *Gorm) UpdateTask(ctx context.Context, id int64, f models.TaskFields) (models.Task, error) {
	return update(ctx, g.db, id, "Task", func(t *models.Task) { f.Apply(t) })
}

// DeleteTask removes the task. An absent id is not an error.
func (g *Gorm) DeleteTask(ctx context.Context, id int64) error {
	return remove[models.Task](ctx, g.db, id, "delete task")
}

// ListDocuments returns every document ordered by id.
func (g *Gorm) ListDocuments(ctx context.Context) ([]models.Document, error) {
	return list[models.Document](ctx, g.db, "list documents")
}

// CreateDocument inserts d, ignoring any id it carries.
func (g *Gorm) CreateDocument(ctx context.Context, d *models.Document) (int64, error) {
	d.ID = 0
	if err := create(ctx, g.db, d, "create document"); err != nil {
		return 0, err
	}
	return d.ID, nil
}

// list returns every row of T ordered by id.
func list[T any](ctx context.Context, db *gorm.DB, op string) ([]T, error) {
	out := []T{}
	if err := db.WithContext(ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, &IntegrationError{Op: op, Err: err}
	}
	return out, nil
}

func get[T any](ctx context.Context, db *gorm.DB, id int64, entity string) (T, error) {
	var v T
	err := db.WithContext(ctx).First(&v, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return v, NotFound(entity)
	}
	if err != nil {
		return v, &IntegrationError{Op: "get " + entity, Err: err}
	}
	return v, nil
}

func create[T any](ctx context.Context, db *gorm.DB, v *T, op string) error {
	if err := db.WithContext(ctx).Create(v).Error; err != nil {
		return &IntegrationError{Op: op, Err: err}
	}
	return nil
}

// update loads the row, applies the patch and saves it in one transaction.
func update[T any](ctx context.Context, db *gorm.DB, id int64, entity string, apply func(*T)) (T, error) {
	var out T
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&out, id).Error; err != nil {
			return err
		}
		apply(&out)
		return tx.Save(&out).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return out, NotFound(entity)
	}
	if err != nil {
		return out, &IntegrationError{Op: "update " + entity, Err: err}
	}
	return out, nil
}

func remove[T any](ctx context.Context, db *gorm.DB, id int64, op string) error {
	var v T
	if err := db.WithContext(ctx).Delete(&v, id).Error; err != nil {
		return &IntegrationError{Op: op, Err: err}
	}
	return nil
}
