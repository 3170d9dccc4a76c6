package dashboard

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/demodash/internal/models"
	"github.com/zulandar/demodash/internal/store"
)

type idResponse struct {
	ID int64 `json:"id"`
}

// writeError maps an error onto the API's status codes. Integration
// failures are logged and answered with a generic message.
func (s *server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrMalformedRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrUnsupported):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	default:
		s.log.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path,
			"request_id", c.GetString(requestIDKey), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// pathID parses :id. A non-numeric id can't name any record.
func pathID(c *gin.Context, entity string) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, store.NotFound(entity)
	}
	return id, nil
}

// bind decodes the JSON body into v.
func bind(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return store.ErrMalformedRequest
	}
	return nil
}

func (s *server) listProjects(c *gin.Context) {
	projects, err := s.backend.ListProjects(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (s *server) getProject(c *gin.Context) {
	id, err := pathID(c, "Project")
	if err != nil {
		s.writeError(c, err)
		return
	}
	p, err := s.backend.GetProject(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *server) createProject(c *gin.Context) {
	var f models.ProjectFields
	if err := bind(c, &f); err != nil {
		s.writeError(c, err)
		return
	}
	p, err := f.Build()
	if err != nil {
		s.writeError(c, err)
		return
	}
	id, err := s.backend.CreateProject(c.Request.Context(), &p)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, idResponse{ID: id})
}

func (s *server) updateProject(c *gin.Context) {
	id, err := pathID(c, "Project")
	if err != nil {
		s.writeError(c, err)
		return
	}
	var f models.ProjectFields
	if err := bind(c, &f); err != nil {
		s.writeError(c, err)
		return
	}
	if err := f.Validate(); err != nil {
		s.writeError(c, err)
		return
	}
	if _, err := s.backend.UpdateProject(c.Request.Context(), id, f); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, idResponse{ID: id})
}

func (s *server) deleteProject(c *gin.Context) {
	id, err := pathID(c, "Project")
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.backend.DeleteProject(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, idResponse{ID: id})
}

func (s *server) listRFIs(c *gin.Context) {
	rfis, err := s.backend.ListRFIs(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rfis)
}

func (s *server) getRFI(c *gin.Context) {
	id, err := pathID(c, "RFI")
	if err != nil {
		s.writeError(c, err)
		return
	}
	r, err := s.backend.GetRFI(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (s *server) createRFI(c *gin.Context) {
	var f models.RFIFields
	if err := bind(c, &f); err != nil {
		s.writeError(c, err)
		return
	}
	r, err := f.Build()
	if err != nil {
		s.writeError(c, err)
		return
	}
	id, err := s.backend.CreateRFI(c.Request.Context(), &r)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, idResponse{ID: id})
}

func (s *server) updateRFI(c *gin.Context) {
	id, err := pathID(c, "RFI")
	if err != nil {
		s.writeError(c, err)
		return
	}
	var f models.RFIFields
	if err := bind(c, &f); err != nil {
		s.writeError(c, err)
		return
	}
	if err := f.Validate(); err != nil {
		s.writeError(c, err)
		return
	}
	if _, err := s.backend.UpdateRFI(c.Request.Context(), id, f); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, idResponse{ID: id})
}

func (s *server) deleteRFI(c *gin.Context) {
	id, err := pathID(c, "RFI")
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.backend.DeleteRFI(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, idResponse{ID: id})
}

func (s *server) listTasks(c *gin.Context) {
	tasks, err := s.backend.ListTasks(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *server) getTask(c *gin.Context) {
	id, err := pathID(c, "Task")
	if err != nil {
		s.writeError(c, err)
		return
	}
	t, err := s.backend.GetTask(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *server) createTask(c *gin.Context) {
	var f models.TaskFields
	if err := bind(c, &f); err != nil {
		s.writeError(c, err)
		return
	}
	t, err := f.Build()
	if err != nil {
		s.writeError(c, err)
		return
	}
	id, err := s.backend.CreateTask(c.Request.Context(), &t)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, idResponse{ID: id})
}

func (s *server) updateTask(c *gin.Context) {
	id, err := pathID(c, "Task")
	if err != nil {
		s.writeError(c, err)
		return
	}
	var f models.TaskFields
	if err := bind(c, &f); err != nil {
		s.writeError(c, err)
		return
	}
	if err := f.Validate(); err != nil {
		s.writeError(c, err)
		return
	}
	if _, err := s.backend.UpdateTask(c.Request.Context(), id, f); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, idResponse{ID: id})
}

func (s *server) deleteTask(c *gin.Context) {
	id, err := pathID(c, "Task")
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.backend.DeleteTask(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, idResponse{ID: id})
}

func (s *server) listDocuments(c *gin.Context) {
	docs, err := s.backend.ListDocuments(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (s *server) createDocument(c *gin.Context) {
	if s.backend.Mode() == store.ModeLocal {
		s.writeError(c, store.ErrUnsupported)
		return
	}
	var f models.DocumentFields
	if err := bind(c, &f); err != nil {
		s.writeError(c, err)
		return
	}
	d, err := f.Build()
	if err != nil {
		s.writeError(c, err)
		return
	}
	id, err := s.backend.CreateDocument(c.Request.Context(), &d)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, idResponse{ID: id})
}
