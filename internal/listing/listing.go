// Package listing orders and filters dashboard collections. Every function
// returns a new slice and leaves its input untouched.
package listing

import (
	"slices"
	"strings"
	"time"

	"github.com/zulandar/demodash/internal/models"
)

// StatusAll disables the project status filter.
const StatusAll = "all"

// StatusRank returns the sort rank of a project status (active first).
func StatusRank(status string) int {
	switch status {
	case models.StatusActive:
		return 0
	case models.StatusBidding:
		return 1
	case models.StatusCompleted:
		return 2
	default:
		return 3
	}
}

// RFIPriorityRank returns the sort rank of an RFI priority (urgent first).
func RFIPriorityRank(priority string) int {
	switch priority {
	case models.PriorityUrgent:
		return 0
	case models.PriorityHigh:
		return 1
	case models.PriorityMedium:
		return 2
	case models.PriorityLow:
		return 3
	default:
		return 4
	}
}

// TaskPriorityRank returns the sort rank of a task priority (high first).
func TaskPriorityRank(priority string) int {
	switch priority {
	case models.PriorityHigh:
		return 0
	case models.PriorityMedium:
		return 1
	case models.PriorityLow:
		return 2
	default:
		return 3
	}
}

// SortProjects orders projects by status rank, then due date ascending.
// Ties keep their original order.
func SortProjects(projects []models.Project) []models.Project {
	out := slices.Clone(projects)
	slices.SortStableFunc(out, func(a, b models.Project) int {
		if ra, rb := StatusRank(a.Status), StatusRank(b.Status); ra != rb {
			return ra - rb
		}
		return compareDue(a.DueDate, b.DueDate)
	})
	return out
}

// SortRFIs orders RFIs by priority rank, then due date ascending.
func SortRFIs(rfis []models.RFI) []models.RFI {
	out := slices.Clone(rfis)
	slices.SortStableFunc(out, func(a, b models.RFI) int {
		if ra, rb := RFIPriorityRank(a.Priority), RFIPriorityRank(b.Priority); ra != rb {
			return ra - rb
		}
		return compareDue(a.DueDate, b.DueDate)
	})
	return out
}

// SortTasks orders tasks by due date, then priority rank.
func SortTasks(tasks []models.Task) []models.Task {
	out := slices.Clone(tasks)
	slices.SortStableFunc(out, func(a, b models.Task) int {
		if c := compareDue(a.DueDate, b.DueDate); c != 0 {
			return c
		}
		return TaskPriorityRank(a.Priority) - TaskPriorityRank(b.Priority)
	})
	return out
}

// WeekRange returns the Sunday and Saturday calendar days of the week
// containing now.
func WeekRange(now time.Time) (start, end time.Time) {
	today := models.CalendarDay(now)
	start = today.AddDate(0, 0, -int(today.Weekday()))
	end = start.AddDate(0, 0, 6)
	return start, end
}

// WeekTasks returns the open tasks due in now's Sunday-to-Saturday week,
// ordered by due date then priority. Tasks without a usable due date are
// dropped.
func WeekTasks(tasks []models.Task, now time.Time) []models.Task {
	start, end := WeekRange(now)
	var out []models.Task
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		due, ok := models.ParseDate(t.DueDate)
		if !ok || due.Before(start) || due.After(end) {
			continue
		}
		out = append(out, t)
	}
	return SortTasks(out)
}

// SearchProjects keeps projects whose name or description contains term,
// case-insensitively. A blank term keeps everything.
func SearchProjects(projects []models.Project, term string) []models.Project {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return slices.Clone(projects)
	}
	var out []models.Project
	for _, p := range projects {
		if strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.Description), term) {
			out = append(out, p)
		}
	}
	return out
}

// FilterProjectsByStatus keeps projects with exactly the given status.
// StatusAll or a blank status keeps everything.
func FilterProjectsByStatus(projects []models.Project, status string) []models.Project {
	if status == "" || status == StatusAll {
		return slices.Clone(projects)
	}
	var out []models.Project
	for _, p := range projects {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out
}

// compareDue orders parseable dates ascending, with blank or unparseable
// dates after all valid ones.
func compareDue(a, b string) int {
	da, okA := models.ParseDate(a)
	db, okB := models.ParseDate(b)
	switch {
	case okA && okB:
		return da.Compare(db)
	case okA:
		return -1
	case okB:
		return 1
	default:
		return 0
	}
}
