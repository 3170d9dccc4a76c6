package dashboard

import (
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all dashboard routes on the Gin router.
func registerRoutes(router *gin.Engine, s *server, latency time.Duration) {
	// Embedded static assets (served from assets/ subdir of the embed.FS).
	staticFS, _ := fs.Sub(assetsFS, "assets")
	router.StaticFS("/static", http.FS(staticFS))

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	if latency > 0 {
		api.Use(simulatedLatency(latency))
	}

	api.GET("/projects", s.listProjects)
	api.POST("/projects", s.createProject)
	api.GET("/projects/:id", s.getProject)
	api.PUT("/projects/:id", s.updateProject)
	api.PATCH("/projects/:id", s.updateProject)
	api.DELETE("/projects/:id", s.deleteProject)

	api.GET("/rfis", s.listRFIs)
	api.POST("/rfis", s.createRFI)
	api.GET("/rfis/:id", s.getRFI)
	api.PUT("/rfis/:id", s.updateRFI)
	api.PATCH("/rfis/:id", s.updateRFI)
	api.DELETE("/rfis/:id", s.deleteRFI)

	api.GET("/tasks", s.listTasks)
	api.POST("/tasks", s.createTask)
	api.GET("/tasks/:id", s.getTask)
	api.PUT("/tasks/:id", s.updateTask)
	api.PATCH("/tasks/:id", s.updateTask)
	api.DELETE("/tasks/:id", s.deleteTask)

	api.GET("/documents", s.listDocuments)
	api.POST("/documents", s.createDocument)

	api.GET("/metrics", s.handleMetrics)
	api.GET("/events", s.handleEvents)

	api.GET("/export/projects.csv", s.exportProjects)
	api.POST("/import/projects", s.importProjects)

	// Everything else under /api is an unknown resource; other paths get
	// the dashboard page.
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") || c.Request.URL.Path == "/api" {
			if hold(c, latency) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			}
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		s.handlePage(c)
	})
}

func (s *server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": s.backend.Mode()})
}
