package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/demodash/internal/dashstate"
	"github.com/zulandar/demodash/internal/metrics"
	"github.com/zulandar/demodash/internal/models"
	"github.com/zulandar/demodash/internal/store"
)

func (s *server) handleMetrics(c *gin.Context) {
	ds, err := store.LoadAll(c.Request.Context(), s.backend)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics.Compute(ds.Projects, ds.RFIs))
}

// handlePage renders the dashboard for ?tab=, ?status= and ?q=.
func (s *server) handlePage(c *gin.Context) {
	ds, err := store.LoadAll(c.Request.Context(), s.backend)
	if err != nil {
		s.log.Error("dashboard page: load failed", "request_id", c.GetString(requestIDKey), "error", err)
		c.String(http.StatusInternalServerError, "Dashboard data is unavailable.")
		return
	}
	snap := dashstate.Snapshot{
		Projects: ds.Projects,
		RFIs:     ds.RFIs,
		Tasks:    ds.Tasks,
		Metrics:  metrics.Compute(ds.Projects, ds.RFIs),
	}
	view := dashstate.View{
		Tab:    c.Query("tab"),
		Status: c.Query("status"),
		Search: c.Query("q"),
	}

	c.HTML(http.StatusOK, "layout.html", gin.H{
		"View":     dashstate.BuildView(snap, view, s.now()),
		"Mode":     string(s.backend.Mode()),
		"Tabs":     dashstate.Tabs,
		"Statuses": models.ProjectStatuses,
	})
}
