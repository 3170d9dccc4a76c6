// Package dashboard serves the REST API, the metrics event stream and the
// HTML dashboard page over gin.
package dashboard

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/demodash/internal/format"
	"github.com/zulandar/demodash/internal/store"
)

// StartOpts holds configuration for the dashboard server.
type StartOpts struct {
	Backend store.Backend
	Host    string
	Port    int
	Out     io.Writer
	Logger  *slog.Logger

	// Latency delays every /api call; used by mock mode.
	Latency time.Duration
	// PollInterval is how often the event stream checks for metric
	// changes. Defaults to 3s.
	PollInterval time.Duration
	// Now overrides the clock used for the dashboard page.
	Now func() time.Time
}

// server carries the handler dependencies.
type server struct {
	backend store.Backend
	log     *slog.Logger
	poll    time.Duration
	now     func() time.Time
}

// Start launches the dashboard HTTP server. It blocks until ctx is cancelled,
// then shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	router, err := NewRouter(opts)
	if err != nil {
		return err
	}
	if opts.Port <= 0 {
		opts.Port = 3000
	}

	addr := net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Dashboard running at http://localhost:%d (%s mode)\n", opts.Port, opts.Backend.Mode())
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// NewRouter builds the gin engine without starting a listener.
func NewRouter(opts StartOpts) (*gin.Engine, error) {
	if opts.Backend == nil {
		return nil, fmt.Errorf("dashboard: backend is required")
	}
	s := &server{
		backend: opts.Backend,
		log:     opts.Logger,
		poll:    opts.PollInterval,
		now:     opts.Now,
	}
	if s.log == nil {
		s.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.poll <= 0 {
		s.poll = 3 * time.Second
	}
	if s.now == nil {
		s.now = time.Now
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(s.log))

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	registerRoutes(router, s, opts.Latency)
	return router, nil
}

// parseTemplates loads the embedded HTML templates.
func parseTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"currency": format.Currency,
		"date":     format.Date,
		"day":      format.Day,
	}
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}
