package dashstate

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/zulandar/demodash/internal/models"
)

// Command is a user intent routed through a Dispatcher.
type Command interface {
	command() string
}

type (
	CreateProject struct{ Fields models.ProjectFields }
	UpdateProject struct {
		ID     int64
		Fields models.ProjectFields
	}
	DeleteProject struct{ ID int64 }

	CreateRFI struct{ Fields models.RFIFields }
	UpdateRFI struct {
		ID     int64
		Fields models.RFIFields
	}
	DeleteRFI struct{ ID int64 }

	CreateTask struct{ Fields models.TaskFields }
	UpdateTask struct {
		ID     int64
		Fields models.TaskFields
	}
	DeleteTask struct{ ID int64 }
	ToggleTask struct{ ID int64 }

	// Refresh reloads the state from its backend.
	Refresh struct{}
)

func (CreateProject) command() string { return "create_project" }
func (UpdateProject) command() string { return "update_project" }
func (DeleteProject) command() string { return "delete_project" }
func (CreateRFI) command() string     { return "create_rfi" }
func (UpdateRFI) command() string     { return "update_rfi" }
func (DeleteRFI) command() string     { return "delete_rfi" }
func (CreateTask) command() string    { return "create_task" }
func (UpdateTask) command() string    { return "update_task" }
func (DeleteTask) command() string    { return "delete_task" }
func (ToggleTask) command() string    { return "toggle_task" }
func (Refresh) command() string       { return "refresh" }

// Result is what a dispatched command produced. ID is the created or
// affected record; it is zero for Refresh.
type Result struct {
	ID int64
}

// Dispatcher applies commands to a State. Rendering happens in the
// state's subscribers, never in the dispatcher.
type Dispatcher struct {
	state *State
	log   *slog.Logger
}

// NewDispatcher returns a dispatcher over s.
func NewDispatcher(s *State, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dispatcher{state: s, log: logger}
}

// Dispatch applies cmd. Errors are returned unchanged so callers can
// inspect them with errors.Is.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) (Result, error) {
	res, err := d.apply(ctx, cmd)
	if err != nil {
		d.log.Debug("command failed", "command", cmd.command(), "error", err)
		return Result{}, err
	}
	d.log.Debug("command applied", "command", cmd.command(), "id", res.ID)
	return res, nil
}

func (d *Dispatcher) apply(ctx context.Context, cmd Command) (Result, error) {
	s := d.state
	switch c := cmd.(type) {
	case CreateProject:
		id, err := s.CreateProject(ctx, c.Fields)
		return Result{ID: id}, err
	case UpdateProject:
		return Result{ID: c.ID}, s.UpdateProject(ctx, c.ID, c.Fields)
	case DeleteProject:
		return Result{ID: c.ID}, s.DeleteProject(ctx, c.ID)
	case CreateRFI:
		id, err := s.CreateRFI(ctx, c.Fields)
		return Result{ID: id}, err
	case UpdateRFI:
		return Result{ID: c.ID}, s.UpdateRFI(ctx, c.ID, c.Fields)
	case DeleteRFI:
		return Result{ID: c.ID}, s.DeleteRFI(ctx, c.ID)
	case CreateTask:
		id, err := s.CreateTask(ctx, c.Fields)
		return Result{ID: id}, err
	case UpdateTask:
		return Result{ID: c.ID}, s.UpdateTask(ctx, c.ID, c.Fields)
	case DeleteTask:
		return Result{ID: c.ID}, s.DeleteTask(ctx, c.ID)
	case ToggleTask:
		return Result{ID: c.ID}, s.ToggleTask(ctx, c.ID)
	case Refresh:
		return Result{}, s.Refresh(ctx)
	}
	return Result{}, fmt.Errorf("dashstate: unknown command %T", cmd)
}
