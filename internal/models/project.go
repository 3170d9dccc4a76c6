package models

import (
	"math"
	"strings"
)

// Project status values.
const (
	StatusActive    = "active"
	StatusBidding   = "bidding"
	StatusCompleted = "completed"
)

// ProjectStatuses lists the valid project statuses in display order.
var ProjectStatuses = []string{StatusActive, StatusBidding, StatusCompleted}

// Project is a demolition job tracked on the dashboard.
type Project struct {
	ID          int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string  `json:"name" gorm:"size:256;not null"`
	Value       float64 `json:"value"`
	DueDate     string  `json:"due_date" gorm:"size:32"`
	Status      string  `json:"status" gorm:"size:16;default:active;index"`
	Description string  `json:"description" gorm:"type:text"`
	Location    string  `json:"location" gorm:"size:256"`
	Client      string  `json:"client,omitempty" gorm:"size:256"`
	Progress    int     `json:"progress"`
	StartDate   string  `json:"start_date,omitempty" gorm:"size:32"`
}

// ProjectFields is the set of project fields a caller may supply, used both
// as a create draft and as an update patch. Nil fields are left untouched.
type ProjectFields struct {
	Name        *string  `json:"name,omitempty"`
	Value       *float64 `json:"value,omitempty"`
	DueDate     *string  `json:"due_date,omitempty"`
	Status      *string  `json:"status,omitempty"`
	Description *string  `json:"description,omitempty"`
	Location    *string  `json:"location,omitempty"`
	Client      *string  `json:"client,omitempty"`
	Progress    *int     `json:"progress,omitempty"`
	StartDate   *string  `json:"start_date,omitempty"`

	// LegacyStartDate accepts the camel-cased key written by older clients.
	LegacyStartDate *string `json:"startDate,omitempty"`
}

// DefaultProgress returns the progress a new project starts with.
func DefaultProgress(status string) int {
	switch status {
	case StatusCompleted:
		return 100
	case StatusBidding:
		return 10
	default:
		return 35
	}
}

// Validate checks every supplied field. It does not require any field.
func (f ProjectFields) Validate() error {
	if f.Name != nil && strings.TrimSpace(*f.Name) == "" {
		return required("name")
	}
	if f.Status != nil && !oneOf(*f.Status, ProjectStatuses) {
		return mustBeOneOf("status", ProjectStatuses)
	}
	if f.Value != nil && (math.IsNaN(*f.Value) || math.IsInf(*f.Value, 0) || *f.Value < 0) {
		return &ValidationError{Field: "value", Msg: "must be a non-negative number"}
	}
	if f.Progress != nil && (*f.Progress < 0 || *f.Progress > 100) {
		return &ValidationError{Field: "progress", Msg: "must be between 0 and 100"}
	}
	return nil
}

// Build turns a draft into a new Project with create defaults applied.
// The returned project has no ID.
func (f ProjectFields) Build() (Project, error) {
	if f.Name == nil {
		return Project{}, required("name")
	}
	if err := f.Validate(); err != nil {
		return Project{}, err
	}

	p := Project{Status: StatusActive}
	f.Apply(&p)
	if f.Progress == nil {
		p.Progress = DefaultProgress(p.Status)
	}
	return p, nil
}

// Apply merges the supplied fields into p, preserving p.ID.
func (f ProjectFields) Apply(p *Project) {
	if f.Name != nil {
		p.Name = *f.Name
	}
	if f.Value != nil {
		p.Value = *f.Value
	}
	if f.DueDate != nil {
		p.DueDate = *f.DueDate
	}
	if f.Status != nil {
		p.Status = *f.Status
	}
	if f.Description != nil {
		p.Description = *f.Description
	}
	if f.Location != nil {
		p.Location = *f.Location
	}
	if f.Client != nil {
		p.Client = *f.Client
	}
	if f.Progress != nil {
		p.Progress = *f.Progress
	}
	switch {
	case f.StartDate != nil:
		p.StartDate = *f.StartDate
	case f.LegacyStartDate != nil:
		p.StartDate = *f.LegacyStartDate
	}
}
