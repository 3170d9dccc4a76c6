package db

import (
	"context"
	"fmt"

	"github.com/zulandar/demodash/internal/models"
	"gorm.io/gorm"
)

// AllModels returns every table the store manages.
func AllModels() []interface{} {
	return []interface{}{
		&models.Project{},
		&models.RFI{},
		&models.Task{},
		&models.Document{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// DropAll drops every managed table.
func DropAll(db *gorm.DB) error {
	if err := db.Migrator().DropTable(AllModels()...); err != nil {
		return fmt.Errorf("db: drop tables: %w", err)
	}
	return nil
}

// Seed inserts ds when the projects table is empty. Row IDs are reassigned
// by the database and the RFI/task project references follow them. It
// reports whether anything was written.
func Seed(ctx context.Context, db *gorm.DB, ds models.Dataset) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Project{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("db: seed: count projects: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make(map[int64]int64, len(ds.Projects))
		for _, p := range ds.Projects {
			old := p.ID
			p.ID = 0
			if err := tx.Create(&p).Error; err != nil {
				return fmt.Errorf("project %q: %w", p.Name, err)
			}
			ids[old] = p.ID
		}
		for _, r := range ds.RFIs {
			r.ID = 0
			if id, ok := ids[r.ProjectID]; ok {
				r.ProjectID = id
			}
			if err := tx.Create(&r).Error; err != nil {
				return fmt.Errorf("rfi %q: %w", r.Title, err)
			}
		}
		for _, t := range ds.Tasks {
			t.ID = 0
			if id, ok := ids[t.ProjectID]; ok {
				t.ProjectID = id
			}
			if err := tx.Create(&t).Error; err != nil {
				return fmt.Errorf("task %q: %w", t.Title, err)
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("db: seed: %w", err)
	}
	return true, nil
}

// Reset drops, recreates and reseeds every table.
func Reset(ctx context.Context, db *gorm.DB, ds models.Dataset) error {
	if err := DropAll(db); err != nil {
		return err
	}
	if err := AutoMigrate(db); err != nil {
		return err
	}
	_, err := Seed(ctx, db, ds)
	return err
}
