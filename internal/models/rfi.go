package models

import "strings"

// Priority values shared by RFIs and tasks. Tasks never use PriorityUrgent.
const (
	PriorityUrgent = "urgent"
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// RFI status values.
const (
	RFIStatusPending  = "pending"
	RFIStatusAnswered = "answered"
	RFIStatusClosed   = "closed"
)

var (
	// RFIPriorities lists valid RFI priorities, most urgent first.
	RFIPriorities = []string{PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow}
	// RFIStatuses lists valid RFI statuses.
	RFIStatuses = []string{RFIStatusPending, RFIStatusAnswered, RFIStatusClosed}
)

// RFI is a request for information raised against a project.
type RFI struct {
	ID          int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string `json:"title" gorm:"size:256;not null"`
	ProjectID   int64  `json:"project_id" gorm:"not null;index"`
	DueDate     string `json:"due_date" gorm:"size:32"`
	Priority    string `json:"priority" gorm:"size:16;default:medium"`
	Status      string `json:"status" gorm:"size:16;default:pending"`
	Description string `json:"description" gorm:"type:text"`
}

// TableName keeps the acronym readable in the schema.
func (RFI) TableName() string {
	return "rfis"
}

// RFIFields is the draft/patch form of an RFI.
type RFIFields struct {
	Title       *string `json:"title,omitempty"`
	ProjectID   *int64  `json:"project_id,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Status      *string `json:"status,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Validate checks every supplied field.
func (f RFIFields) Validate() error {
	if f.Title != nil && strings.TrimSpace(*f.Title) == "" {
		return required("title")
	}
	if f.ProjectID != nil && *f.ProjectID <= 0 {
		return required("project_id")
	}
	if f.Priority != nil && !oneOf(*f.Priority, RFIPriorities) {
		return mustBeOneOf("priority", RFIPriorities)
	}
	if f.Status != nil && !oneOf(*f.Status, RFIStatuses) {
		return mustBeOneOf("status", RFIStatuses)
	}
	return nil
}

// Build turns a draft into a new RFI. Title and project are required;
// priority defaults to medium and status to pending.
func (f RFIFields) Build() (RFI, error) {
	if f.Title == nil {
		return RFI{}, required("title")
	}
	if f.ProjectID == nil {
		return RFI{}, required("project_id")
	}
	if err := f.Validate(); err != nil {
		return RFI{}, err
	}

	r := RFI{Priority: PriorityMedium, Status: RFIStatusPending}
	f.Apply(&r)
	return r, nil
}

// Apply merges the supplied fields into r, preserving r.ID.
func (f RFIFields) Apply(r *RFI) {
	if f.Title != nil {
		r.Title = *f.Title
	}
	if f.ProjectID != nil {
		r.ProjectID = *f.ProjectID
	}
	if f.DueDate != nil {
		r.DueDate = *f.DueDate
	}
	if f.Priority != nil {
		r.Priority = *f.Priority
	}
	if f.Status != nil {
		r.Status = *f.Status
	}
	if f.Description != nil {
		r.Description = *f.Description
	}
}
