package dashstate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zulandar/demodash/internal/models"
)

var march22 = time.Date(2025, 3, 22, 9, 0, 0, 0, time.UTC)

func TestBuildView_Dashboard(t *testing.T) {
	snap := demoState(t).Snapshot()
	vm := BuildView(snap, View{}, march22)

	assert.Equal(t, TabDashboard, vm.Tab)
	assert.True(t, vm.ShowMetrics && vm.ShowProjects && vm.ShowRFIs && vm.ShowTasks)
	assert.Equal(t, snap.Metrics, vm.Metrics)

	require.Len(t, vm.Projects, 4)
	assert.Equal(t, "Central Park Renovation", vm.Projects[0].Name)
	assert.Equal(t, "Oakridge Elementary School", vm.Projects[3].Name)

	require.Len(t, vm.RFIs, 3)
	assert.Equal(t, "HVAC Duct Conflict", vm.RFIs[0].Title)
	assert.Equal(t, "Highland Office Tower", vm.RFIs[0].ProjectName)
	assert.Equal(t, "3 days", vm.RFIs[0].DaysRemaining)

	require.Len(t, vm.Tasks, 2)
	assert.Equal(t, "Schedule site inspection", vm.Tasks[0].Title)
	assert.Equal(t, "Central Park Renovation", vm.Tasks[0].ProjectName)
	assert.Equal(t, time.Saturday, vm.WeekEnd.Weekday())
}

func TestBuildView_ProjectsTabFilters(t *testing.T) {
	snap := demoState(t).Snapshot()
	vm := BuildView(snap, View{Tab: TabProjects, Status: models.StatusActive, Search: "park"}, march22)

	assert.True(t, vm.ShowProjects)
	assert.False(t, vm.ShowMetrics)
	require.Len(t, vm.Projects, 1)
	assert.Equal(t, int64(3), vm.Projects[0].ID)
}

func TestBuildView_UnknownProject(t *testing.T) {
	snap := Snapshot{
		RFIs:  []models.RFI{{ID: 1, ProjectID: 9, Title: "orphan", DueDate: "2025-03-20"}},
		Tasks: []models.Task{{ID: 1, ProjectID: 9, DueDate: "2025-03-21"}},
	}
	vm := BuildView(snap, View{Tab: TabRFIs}, march22)

	require.Len(t, vm.RFIs, 1)
	assert.Equal(t, UnknownProject, vm.RFIs[0].ProjectName)
	assert.Equal(t, "Overdue", vm.RFIs[0].DaysRemaining)
	require.Len(t, vm.Tasks, 1)
	assert.Equal(t, UnknownProject, vm.Tasks[0].ProjectName)
	assert.Equal(t, "all", vm.Status)
}

func TestBuildView_BogusTab(t *testing.T) {
	vm := BuildView(Snapshot{}, View{Tab: "gantt"}, march22)
	assert.Equal(t, TabDashboard, vm.Tab)
	assert.Empty(t, vm.Projects)
}
