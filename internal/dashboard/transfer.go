package dashboard

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/demodash/internal/models"
	"github.com/zulandar/demodash/internal/sheet"
	"github.com/zulandar/demodash/internal/store"
)

// maxImportBytes caps the size of an uploaded spreadsheet.
const maxImportBytes = 10 << 20

func (s *server) exportProjects(c *gin.Context) {
	projects, err := s.backend.ListProjects(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="projects.csv"`)
	c.Status(http.StatusOK)
	if err := sheet.WriteProjects(c.Writer, projects); err != nil {
		s.log.Error("export projects", "request_id", c.GetString(requestIDKey), "error", err)
	}
}

// importProjects creates one project per CSV row. The whole file is
// validated before the first create, and a failed create removes the rows
// already written.
func (s *server) importProjects(c *gin.Context) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)
	drafts, err := sheet.ReadProjects(body)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.writeError(c, store.ErrMalformedRequest)
		return
	}

	projects := make([]models.Project, 0, len(drafts))
	for _, f := range drafts {
		p, err := f.Build()
		if err != nil {
			s.writeError(c, err)
			return
		}
		projects = append(projects, p)
	}
	ids, err := store.CreateProjects(c.Request.Context(), s.backend, projects)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": len(ids), "ids": ids})
}
