package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/demodash/internal/metrics"
	"github.com/zulandar/demodash/internal/store"
)

// heartbeatInterval keeps idle proxies from closing the stream.
const heartbeatInterval = 15 * time.Second

// handleEvents streams the dashboard metrics. A "metrics" event is sent on
// connect and again whenever the figures change.
func (s *server) handleEvents(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	// Send connected event.
	writeSSE(c.Writer, "connected", map[string]string{"type": "connected"})
	c.Writer.Flush()

	ctx := c.Request.Context()
	var (
		last metrics.Metrics
		sent bool
	)
	push := func() {
		ds, err := store.LoadAll(ctx, s.backend)
		if err != nil {
			if ctx.Err() == nil {
				s.log.Warn("event stream: load failed", "error", err)
			}
			return
		}
		m := metrics.Compute(ds.Projects, ds.RFIs)
		if sent && m == last {
			return
		}
		last, sent = m, true
		writeSSE(c.Writer, "metrics", m)
		c.Writer.Flush()
	}
	push()

	ticker := time.NewTicker(s.poll)
	heartbeat := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			writeSSE(c.Writer, "heartbeat", map[string]string{
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
			c.Writer.Flush()
		case <-ticker.C:
			push()
		}
	}
}

// writeSSE writes a single SSE event to the writer.
func writeSSE(w io.Writer, event string, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, string(jsonData))
}
