package dashstate

import (
	"time"

	"github.com/zulandar/demodash/internal/format"
	"github.com/zulandar/demodash/internal/listing"
	"github.com/zulandar/demodash/internal/metrics"
	"github.com/zulandar/demodash/internal/models"
)

// Tabs of the dashboard page.
const (
	TabDashboard = "dashboard"
	TabProjects  = "projects"
	TabRFIs      = "rfis"
	TabTasks     = "tasks"
)

// Tabs lists the tabs in display order.
var Tabs = []string{TabDashboard, TabProjects, TabRFIs, TabTasks}

// View is the ephemeral view state: active tab and project filters.
type View struct {
	Tab    string
	Status string
	Search string
}

// RFIRow is an RFI with its resolved project name and time left.
type RFIRow struct {
	models.RFI
	ProjectName   string
	DaysRemaining string
}

// TaskRow is a task with its resolved project name.
type TaskRow struct {
	models.Task
	ProjectName string
}

// ViewModel is everything a renderer needs for one tab.
type ViewModel struct {
	Tab     string
	Status  string
	Search  string
	Metrics metrics.Metrics

	ShowMetrics  bool
	ShowProjects bool
	ShowRFIs     bool
	ShowTasks    bool

	Projects  []models.Project
	RFIs      []RFIRow
	Tasks     []TaskRow
	WeekStart time.Time
	WeekEnd   time.Time
}

// BuildView projects snap into the lists shown on v.Tab. Unknown tabs
// fall back to the dashboard tab.
func BuildView(snap Snapshot, v View, now time.Time) ViewModel {
	vm := ViewModel{Tab: v.Tab, Status: v.Status, Search: v.Search, Metrics: snap.Metrics}
	switch v.Tab {
	case TabProjects:
		vm.ShowProjects = true
	case TabRFIs:
		vm.ShowRFIs = true
	case TabTasks:
		vm.ShowTasks = true
	default:
		vm.Tab = TabDashboard
		vm.ShowMetrics, vm.ShowProjects, vm.ShowRFIs, vm.ShowTasks = true, true, true, true
	}
	if vm.Status == "" {
		vm.Status = listing.StatusAll
	}

	projects := listing.FilterProjectsByStatus(snap.Projects, vm.Status)
	projects = listing.SearchProjects(projects, v.Search)
	vm.Projects = listing.SortProjects(projects)

	for _, r := range listing.SortRFIs(snap.RFIs) {
		vm.RFIs = append(vm.RFIs, RFIRow{
			RFI:           r,
			ProjectName:   snap.ProjectName(r.ProjectID),
			DaysRemaining: format.DaysRemaining(r.DueDate, now),
		})
	}

	vm.WeekStart, vm.WeekEnd = listing.WeekRange(now)
	for _, t := range listing.WeekTasks(snap.Tasks, now) {
		vm.Tasks = append(vm.Tasks, TaskRow{Task: t, ProjectName: snap.ProjectName(t.ProjectID)})
	}
	return vm
}
