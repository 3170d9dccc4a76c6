package dashstate

import (
	"context"
	"slices"

	"github.com/zulandar/demodash/internal/models"
	"github.com/zulandar/demodash/internal/store"
)

// CreateProject validates the draft, applies create defaults, persists it
// and returns the assigned id.
func (s *State) CreateProject(ctx context.Context, f models.ProjectFields) (int64, error) {
	p, err := f.Build()
	if err != nil {
		return 0, err
	}
	err = s.change(func() error {
		if s.backend != nil {
			if _, err := s.backend.CreateProject(ctx, &p); err != nil {
				return err
			}
		} else {
			p.ID = nextLocalID(s.data.Projects, projectID)
		}
		s.data.Projects = append(s.data.Projects, p)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return p.ID, nil
}

// UpdateProject merges f into the project with the given id.
func (s *State) UpdateProject(ctx context.Context, id int64, f models.ProjectFields) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return s.change(func() error {
		i := find(s.data.Projects, id, projectID)
		if i < 0 {
			return store.NotFound("Project")
		}
		updated := s.data.Projects[i]
		if s.backend != nil {
			var err error
			if updated, err = s.backend.UpdateProject(ctx, id, f); err != nil {
				return err
			}
		} else {
			f.Apply(&updated)
		}
		s.data.Projects[i] = updated
		return nil
	})
}

// DeleteProject removes the project along with its RFIs and tasks.
func (s *State) DeleteProject(ctx context.Context, id int64) error {
	return s.change(func() error {
		if find(s.data.Projects, id, projectID) < 0 {
			return store.NotFound("Project")
		}
		if s.backend != nil {
			if err := s.backend.DeleteProject(ctx, id); err != nil {
				return err
			}
		}
		s.data.Projects = slices.DeleteFunc(s.data.Projects, func(p models.Project) bool { return p.ID == id })
		s.data.RFIs = slices.DeleteFunc(s.data.RFIs, func(r models.RFI) bool { return r.ProjectID == id })
		s.data.Tasks = slices.DeleteFunc(s.data.Tasks, func(t models.Task) bool { return t.ProjectID == id })
		return nil
	})
}

// FindProject returns the project with the given id.
func (s *State) FindProject(id int64) (models.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := find(s.data.Projects, id, projectID); i >= 0 {
		return s.data.Projects[i], true
	}
	return models.Project{}, false
}

// CreateRFI validates the draft, applies create defaults, persists it and
// returns the assigned id.
func (s *State) CreateRFI(ctx context.Context, f models.RFIFields) (int64, error) {
	r, err := f.Build()
	if err != nil {
		return 0, err
	}
	err = s.change(func() error {
		if s.backend != nil {
			if _, err := s.backend.CreateRFI(ctx, &r); err != nil {
				return err
			}
		} else {
			r.ID = nextLocalID(s.data.RFIs, rfiID)
		}
		s.data.RFIs = append(s.data.RFIs, r)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return r.ID, nil
}

// UpdateRFI merges f into the RFI with the given id.
func (s *State) UpdateRFI(ctx context.Context, id int64, f models.RFIFields) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return s.change(func() error {
		i := find(s.data.RFIs, id, rfiID)
		if i < 0 {
			return store.NotFound("RFI")
		}
		updated := s.data.RFIs[i]
		if s.backend != nil {
			var err error
			if updated, err = s.backend.UpdateRFI(ctx, id, f); err != nil {
				return err
			}
		} else {
			f.Apply(&updated)
		}
		s.data.RFIs[i] = updated
		return nil
	})
}

// DeleteRFI removes the RFI with the given id.
func (s *State) DeleteRFI(ctx context.Context, id int64) error {
	return s.change(func() error {
		if find(s.data.RFIs, id, rfiID) < 0 {
			return store.NotFound("RFI")
		}
		if s.backend != nil {
			if err := s.backend.DeleteRFI(ctx, id); err != nil {
				return err
			}
		}
		s.data.RFIs = slices.DeleteFunc(s.data.RFIs, func(r models.RFI) bool { return r.ID == id })
		return nil
	})
}

// FindRFI returns the RFI with the given id.
func (s *State) FindRFI(id int64) (models.RFI, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := find(s.data.RFIs, id, rfiID); i >= 0 {
		return s.data.RFIs[i], true
	}
	return models.RFI{}, false
}

// CreateTask validates the draft, applies create defaults, persists it and
// returns the assigned id.
func (s *State) CreateTask(ctx context.Context, f models.TaskFields) (int64, error) {
	t, err := f.Build()
	if err != nil {
		return 0, err
	}
	err = s.change(func() error {
		if s.backend != nil {
			if _, err := s.backend.CreateTask(ctx, &t); err != nil {
				return err
			}
		} else {
			t.ID = nextLocalID(s.data.Tasks, taskID)
		}
		s.data.Tasks = append(s.data.Tasks, t)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return t.ID, nil
}

// UpdateTask merges f into the task with the given id.
func (s *State) UpdateTask(ctx context.Context, id int64, f models.TaskFields) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return s.change(func() error {
		i := find(s.data.Tasks, id, taskID)
		if i < 0 {
			return store.NotFound("Task")
		}
		updated := s.data.Tasks[i]
		if s.backend != nil {
			var err error
			if updated, err = s.backend.UpdateTask(ctx, id, f); err != nil {
				return err
			}
		} else {
			f.Apply(&updated)
		}
		s.data.Tasks[i] = updated
		return nil
	})
}

// ToggleTask flips the task's completed flag.
func (s *State) ToggleTask(ctx context.Context, id int64) error {
	t, ok := s.FindTask(id)
	if !ok {
		return store.NotFound("Task")
	}
	done := !t.Completed
	return s.UpdateTask(ctx, id, models.TaskFields{Completed: &done})
}

// DeleteTask removes the task with the given id.
func (s *State) DeleteTask(ctx context.Context, id int64) error {
	return s.change(func() error {
		if find(s.data.Tasks, id, taskID) < 0 {
			return store.NotFound("Task")
		}
		if s.backend != nil {
			if err := s.backend.DeleteTask(ctx, id); err != nil {
				return err
			}
		}
		s.data.Tasks = slices.DeleteFunc(s.data.Tasks, func(t models.Task) bool { return t.ID == id })
		return nil
	})
}

// FindTask returns the task with the given id.
func (s *State) FindTask(id int64) (models.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := find(s.data.Tasks, id, taskID); i >= 0 {
		return s.data.Tasks[i], true
	}
	return models.Task{}, false
}
