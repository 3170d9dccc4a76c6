package models

import "strings"

// TaskPriorities lists valid task priorities, highest first.
var TaskPriorities = []string{PriorityHigh, PriorityMedium, PriorityLow}

// Task is a unit of site work scheduled against a project.
type Task struct {
	ID          int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string `json:"title" gorm:"size:256;not null"`
	ProjectID   int64  `json:"project_id" gorm:"not null;index"`
	DueDate     string `json:"due_date" gorm:"size:32;index"`
	Priority    string `json:"priority" gorm:"size:16;default:medium"`
	Completed   bool   `json:"completed" gorm:"default:false"`
	Description string `json:"description" gorm:"type:text"`
}

// TaskFields is the draft/patch form of a Task.
type TaskFields struct {
	Title       *string `json:"title,omitempty"`
	ProjectID   *int64  `json:"project_id,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Validate checks every supplied field.
func (f TaskFields) Validate() error {
	if f.Title != nil && strings.TrimSpace(*f.Title) == "" {
		return required("title")
	}
	if f.ProjectID != nil && *f.ProjectID <= 0 {
		return required("project_id")
	}
	if f.Priority != nil && !oneOf(*f.Priority, TaskPriorities) {
		return mustBeOneOf("priority", TaskPriorities)
	}
	return nil
}

// Build turns a draft into a new Task. New tasks are never completed unless
// the draft says so.
func (f TaskFields) Build() (Task, error) {
	if f.Title == nil {
		return Task{}, required("title")
	}
	if f.ProjectID == nil {
		return Task{}, required("project_id")
	}
	if err := f.Validate(); err != nil {
		return Task{}, err
	}

	t := Task{Priority: PriorityMedium}
	f.Apply(&t)
	return t, nil
}

// Apply merges the supplied fields into t, preserving t.ID.
func (f TaskFields) Apply(t *Task) {
	if f.Title != nil {
		t.Title = *f.Title
	}
	if f.ProjectID != nil {
		t.ProjectID = *f.ProjectID
	}
	if f.DueDate != nil {
		t.DueDate = *f.DueDate
	}
	if f.Priority != nil {
		t.Priority = *f.Priority
	}
	if f.Completed != nil {
		t.Completed = *f.Completed
	}
	if f.Description != nil {
		t.Description = *f.Description
	}
}
