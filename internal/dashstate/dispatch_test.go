package dashstate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zulandar/demodash/internal/models"
	"github.com/zulandar/demodash/internal/store"
)

type unknownCommand struct{}

func (unknownCommand) command() string { return "unknown" }

func TestDispatch_RoutesCommands(t *testing.T) {
	s := demoState(t)
	d := NewDispatcher(s, nil)
	ctx := context.Background()

	res, err := d.Dispatch(ctx, CreateProject{Fields: models.ProjectFields{Name: ptr("Depot")}})
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.ID)

	res, err = d.Dispatch(ctx, CreateRFI{Fields: models.RFIFields{Title: ptr("Utility shutoff"), ProjectID: ptr(res.ID)}})
	require.NoError(t, err)
	rfiID := res.ID

	res, err = d.Dispatch(ctx, CreateTask{Fields: models.TaskFields{Title: ptr("Fence site"), ProjectID: ptr(int64(5))}})
	require.NoError(t, err)
	taskID := res.ID

	_, err = d.Dispatch(ctx, UpdateRFI{ID: rfiID, Fields: models.RFIFields{Status: ptr(models.RFIStatusClosed)}})
	require.NoError(t, err)
	r, _ := s.FindRFI(rfiID)
	assert.Equal(t, models.RFIStatusClosed, r.Status)

	_, err = d.Dispatch(ctx, ToggleTask{ID: taskID})
	require.NoError(t, err)
	task, _ := s.FindTask(taskID)
	assert.True(t, task.Completed)

	_, err = d.Dispatch(ctx, UpdateTask{ID: taskID, Fields: models.TaskFields{Priority: ptr(models.PriorityHigh)}})
	require.NoError(t, err)

	_, err = d.Dispatch(ctx, UpdateProject{ID: 5, Fields: models.ProjectFields{Progress: ptr(50)}})
	require.NoError(t, err)

	res, err = d.Dispatch(ctx, DeleteProject{ID: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.ID)
	_, ok := s.FindRFI(rfiID)
	assert.False(t, ok)
	_, ok = s.FindTask(taskID)
	assert.False(t, ok)

	_, err = d.Dispatch(ctx, DeleteRFI{ID: 1})
	require.NoError(t, err)
	_, err = d.Dispatch(ctx, DeleteTask{ID: 1})
	require.NoError(t, err)

	_, err = d.Dispatch(ctx, Refresh{})
	require.NoError(t, err)
}

func TestDispatch_Errors(t *testing.T) {
	d := NewDispatcher(demoState(t), nil)
	ctx := context.Background()

	_, err := d.Dispatch(ctx, UpdateProject{ID: 77, Fields: models.ProjectFields{Name: ptr("x")}})
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = d.Dispatch(ctx, CreateTask{})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = d.Dispatch(ctx, unknownCommand{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}
