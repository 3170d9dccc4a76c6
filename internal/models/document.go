package models

import "strings"

// Document is a file record attached to a project (drawings, permits, ...).
type Document struct {
	ID           int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	ProjectID    int64  `json:"project_id" gorm:"index"`
	Name         string `json:"name" gorm:"size:256;not null"`
	Type         string `json:"type" gorm:"size:32"`
	UploadedDate string `json:"uploaded_date" gorm:"size:32"`
	Status       string `json:"status" gorm:"size:32"`
}

// DocumentFields is the create payload for a Document.
type DocumentFields struct {
	ProjectID    *int64  `json:"project_id,omitempty"`
	Name         *string `json:"name,omitempty"`
	Type         *string `json:"type,omitempty"`
	UploadedDate *string `json:"uploaded_date,omitempty"`
	Status       *string `json:"status,omitempty"`
}

// Build turns the payload into a new Document. Only the name is required.
func (f DocumentFields) Build() (Document, error) {
	if f.Name == nil || strings.TrimSpace(*f.Name) == "" {
		return Document{}, required("name")
	}
	d := Document{Name: *f.Name}
	if f.ProjectID != nil {
		d.ProjectID = *f.ProjectID
	}
	if f.Type != nil {
		d.Type = *f.Type
	}
	if f.UploadedDate != nil {
		d.UploadedDate = *f.UploadedDate
	}
	if f.Status != nil {
		d.Status = *f.Status
	}
	return d, nil
}
