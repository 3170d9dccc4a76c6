package jobs

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zulandar/demodash/internal/dashstate"
	"github.com/zulandar/demodash/internal/models"
)

var march22 = time.Date(2025, 3, 22, 9, 0, 0, 0, time.UTC)

func demoSnapshot(t *testing.T) dashstate.Snapshot {
	t.Helper()
	st := dashstate.New(nil, nil)
	st.Load(models.DemoData())
	return st.Snapshot()
}

func TestBuildDigest_DemoData(t *testing.T) {
	d := BuildDigest(demoSnapshot(t), march22)
	require.NotNil(t, d)

	assert.Equal(t, "Project digest for Mar 22, 2025", d.Title())
	assert.Equal(t, "Active value $6.3M | 3 pending RFIs | 1 current bids | 25% complete", d.Summary())
	assert.Equal(t, ColorInfo, d.Color())
	assert.Zero(t, d.Overdue)

	// Exterior Finish Specification is 14 days out.
	assert.Equal(t, []string{
		"HVAC Duct Conflict (Highland Office Tower), urgent, 3 days",
		"Structural Support Detail (Central Park Renovation), high, 6 days",
	}, d.RFILines())
	assert.Equal(t, []string{
		"Schedule site inspection (Central Park Renovation), medium, due Mar 21, 2025",
		"Review structural drawings (Highland Office Tower), high, due Mar 22, 2025",
	}, d.TaskLines())
}

func TestBuildDigest_Overdue(t *testing.T) {
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	d := BuildDigest(demoSnapshot(t), now)
	require.NotNil(t, d)

	assert.Len(t, d.RFIs, 3)
	assert.Equal(t, 2, d.Overdue)
	assert.Equal(t, ColorWarning, d.Color())
	assert.Equal(t, "Overdue", d.RFIs[0].DaysRemaining)
	assert.Empty(t, d.Tasks)
}

func TestBuildDigest_SkipsAnsweredAndUndated(t *testing.T) {
	snap := dashstate.Snapshot{
		Projects: []models.Project{{ID: 1, Name: "Depot"}},
		RFIs: []models.RFI{
			{ID: 1, Title: "Answered", ProjectID: 1, DueDate: "2025-03-23", Priority: models.PriorityHigh, Status: models.RFIStatusAnswered},
			{ID: 2, Title: "Closed", ProjectID: 1, DueDate: "2025-03-23", Priority: models.PriorityHigh, Status: models.RFIStatusClosed},
			{ID: 3, Title: "Undated", ProjectID: 1, Priority: models.PriorityHigh, Status: models.RFIStatusPending},
			{ID: 4, Title: "Orphan", ProjectID: 9, DueDate: "2025-03-24", Priority: models.PriorityLow, Status: models.RFIStatusPending},
		},
	}

	d := BuildDigest(snap, march22)
	require.NotNil(t, d)
	require.Len(t, d.RFIs, 1)
	assert.Equal(t, "Orphan", d.RFIs[0].Title)
	assert.Equal(t, dashstate.UnknownProject, d.RFIs[0].ProjectName)
}

func TestBuildDigest_NothingDue(t *testing.T) {
	assert.Nil(t, BuildDigest(dashstate.Snapshot{}, march22))
	assert.Nil(t, BuildDigest(demoSnapshot(t), time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestDigest_Body(t *testing.T) {
	d := BuildDigest(demoSnapshot(t), march22)
	require.NotNil(t, d)

	body := d.Body()
	assert.True(t, strings.HasPrefix(body, d.Summary()))
	assert.Contains(t, body, "\n\nRFIs due:\n- HVAC Duct Conflict")
	assert.Contains(t, body, "\n\nThis week's tasks:\n- Schedule site inspection")
	assert.Equal(t, d.Title()+"\n"+body, d.Text())
}
