package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zulandar/demodash/internal/localstore"
	"github.com/zulandar/demodash/internal/models"
	"github.com/zulandar/demodash/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var march22 = time.Date(2025, 3, 22, 9, 0, 0, 0, time.UTC)

func mockRouter(t *testing.T, ds models.Dataset) (*gin.Engine, *localstore.Store) {
	t.Helper()
	ls, err := localstore.Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, ls.Replace(context.Background(), ds))

	router, err := NewRouter(StartOpts{Backend: ls, Now: func() time.Time { return march22 }})
	require.NoError(t, err)
	return router, ls
}

func serverRouter(t *testing.T) *gin.Engine {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.Project{}, &models.RFI{}, &models.Task{}, &models.Document{}))

	router, err := NewRouter(StartOpts{Backend: store.NewGorm(db)})
	require.NoError(t, err)
	return router
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeID(t *testing.T, w *httptest.ResponseRecorder) int64 {
	t.Helper()
	var resp struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.ID
}

func TestNewRouter_NilBackend(t *testing.T) {
	_, err := NewRouter(StartOpts{})
	if err == nil {
		t.Fatal("expected error for nil backend")
	}
	if !strings.Contains(err.Error(), "backend is required") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "backend is required")
	}
}

func TestStart_NilBackend(t *testing.T) {
	err := Start(context.Background(), StartOpts{})
	if err == nil || !strings.Contains(err.Error(), "backend is required") {
		t.Errorf("Start() error = %v, want backend is required", err)
	}
}

func TestEmbeddedAssets(t *testing.T) {
	data, err := assetsFS.ReadFile("assets/style.css")
	if err != nil {
		t.Fatalf("style.css not embedded: %v", err)
	}
	if len(data) == 0 {
		t.Error("style.css is empty")
	}
}

func TestEmbeddedTemplates(t *testing.T) {
	data, err := templatesFS.ReadFile("templates/layout.html")
	if err != nil {
		t.Fatalf("layout.html not embedded: %v", err)
	}
	if !strings.Contains(string(data), "Demodash") {
		t.Error("layout.html does not contain 'Demodash'")
	}
}

func TestStaticAssets_CSS(t *testing.T) {
	router, _ := mockRouter(t, models.Dataset{})
	w := do(t, router, http.MethodGet, "/static/style.css", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthz(t *testing.T) {
	router, _ := mockRouter(t, models.Dataset{})
	w := do(t, router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","mode":"local"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRequestID_Propagated(t *testing.T) {
	router, _ := mockRouter(t, models.Dataset{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestMock_EmptyCollections(t *testing.T) {
	router, _ := mockRouter(t, models.Dataset{})
	for _, path := range []string{"/api/projects", "/api/rfis", "/api/tasks"} {
		w := do(t, router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.JSONEq(t, "[]", w.Body.String(), path)
	}
}

func TestMock_CreateUpdateDelete(t *testing.T) {
	router, ls := mockRouter(t, models.Dataset{})

	w := do(t, router, http.MethodPost, "/api/projects", `{"name":"Harbor Warehouse","value":950000,"status":"bidding","startDate":"2025-04-01"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	id := decodeID(t, w)
	assert.Greater(t, id, int64(0))

	p, err := ls.GetProject(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 10, p.Progress)
	assert.Equal(t, "2025-04-01", p.StartDate)

	w = do(t, router, http.MethodPatch, "/api/projects/"+itoa(id), `{"progress":40}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, id, decodeID(t, w))

	w = do(t, router, http.MethodPut, "/api/projects/"+itoa(id), `{"status":"active"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodGet, "/api/projects/"+itoa(id), "")
	require.Equal(t, http.StatusOK, w.Code)
	var got models.Project
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Harbor Warehouse", got.Name)
	assert.Equal(t, 40, got.Progress)
	assert.Equal(t, models.StatusActive, got.Status)

	w = do(t, router, http.MethodPost, "/api/rfis", `{"title":"Slab thickness","project_id":`+itoa(id)+`}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, router, http.MethodPost, "/api/tasks", `{"title":"Fence site","project_id":`+itoa(id)+`}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodDelete, "/api/projects/"+itoa(id), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, decodeID(t, w))

	snap := ls.Snapshot()
	assert.Empty(t, snap.Projects)
	assert.Empty(t, snap.RFIs)
	assert.Empty(t, snap.Tasks)

	w = do(t, router, http.MethodDelete, "/api/projects/"+itoa(id), "")
	assert.Equal(t, http.StatusOK, w.Code, "delete is idempotent")
}

func TestMock_ErrorContract(t *testing.T) {
	router, _ := mockRouter(t, models.DemoData())

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{"update missing project", http.MethodPut, "/api/projects/999", `{"name":"x"}`, 404, `{"error":"Project not found"}`},
		{"patch missing rfi", http.MethodPatch, "/api/rfis/999", `{"status":"closed"}`, 404, `{"error":"RFI not found"}`},
		{"get missing task", http.MethodGet, "/api/tasks/999", "", 404, `{"error":"Task not found"}`},
		{"non-numeric id", http.MethodGet, "/api/projects/abc", "", 404, `{"error":"Project not found"}`},
		{"malformed body", http.MethodPost, "/api/projects", `{"name":`, 400, `{"error":"Invalid request"}`},
		{"wrong type", http.MethodPost, "/api/tasks", `{"title":"x","project_id":"one"}`, 400, `{"error":"Invalid request"}`},
		{"empty body", http.MethodPost, "/api/rfis", "", 400, `{"error":"Invalid request"}`},
		{"missing name", http.MethodPost, "/api/projects", `{"value":10}`, 400, `{"error":"name is required"}`},
		{"missing project", http.MethodPost, "/api/rfis", `{"title":"x"}`, 400, `{"error":"project_id is required"}`},
		{"bad status on update", http.MethodPatch, "/api/projects/1", `{"status":"paused"}`, 400, `{"error":"status must be one of active, bidding, completed"}`},
		{"unknown resource", http.MethodGet, "/api/widgets", "", 404, `{"error":"Not found"}`},
		{"unknown method", http.MethodPost, "/api/metrics", "{}", 404, `{"error":"Not found"}`},
		{"documents in mock mode", http.MethodGet, "/api/documents", "", 404, `{"error":"Not found"}`},
		{"document upload in mock mode", http.MethodPost, "/api/documents", `{"name":"permit.pdf"}`, 404, `{"error":"Not found"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestMock_FailedWritesLeaveStore(t *testing.T) {
	router, ls := mockRouter(t, models.DemoData())
	before := ls.Snapshot()

	do(t, router, http.MethodPost, "/api/projects", `{"value":10}`)
	do(t, router, http.MethodPut, "/api/projects/999", `{"name":"x"}`)
	do(t, router, http.MethodPatch, "/api/tasks/1", `{"priority":"urgent"}`)

	assert.Equal(t, before, ls.Snapshot())
}

func TestServer_Documents(t *testing.T) {
	router := serverRouter(t)

	w := do(t, router, http.MethodGet, "/api/documents", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	w = do(t, router, http.MethodPost, "/api/documents", `{"project_id":1,"name":"demo-permit.pdf","type":"permit","uploaded_date":"2025-03-01","status":"approved"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decodeID(t, w))

	w = do(t, router, http.MethodPost, "/api/documents", `{"type":"permit"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"name is required"}`, w.Body.String())

	w = do(t, router, http.MethodGet, "/api/documents", "")
	var docs []models.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "demo-permit.pdf", docs[0].Name)
}

func TestServer_ProjectAutoincrement(t *testing.T) {
	router := serverRouter(t)
	for want := int64(1); want <= 3; want++ {
		w := do(t, router, http.MethodPost, "/api/projects", `{"name":"p"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, want, decodeID(t, w))
	}
	w := do(t, router, http.MethodGet, "/healthz", "")
	assert.JSONEq(t, `{"status":"ok","mode":"server"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := mockRouter(t, models.DemoData())
	w := do(t, router, http.MethodGet, "/api/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"activeValue":6300000,"pendingRFIs":3,"currentBids":1,"completionRate":25}`, w.Body.String())
}

func TestSimulatedLatency(t *testing.T) {
	ls, err := localstore.Open(t.TempDir())
	require.NoError(t, err)
	router, err := NewRouter(StartOpts{Backend: ls, Latency: 50 * time.Millisecond})
	require.NoError(t, err)

	start := time.Now()
	w := do(t, router, http.MethodGet, "/api/projects", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	start = time.Now()
	w = do(t, router, http.MethodGet, "/api/widgets", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond, "unknown /api resources are delayed too")

	start = time.Now()
	do(t, router, http.MethodGet, "/healthz", "")
	assert.Less(t, time.Since(start), 50*time.Millisecond, "latency applies to /api only")
}

func TestSimulatedLatency_Cancelled(t *testing.T) {
	ls, err := localstore.Open(t.TempDir())
	require.NoError(t, err)
	router, err := NewRouter(StartOpts{Backend: ls, Latency: time.Hour})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader(`{"name":"never"}`)).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Empty(t, ls.Snapshot().Projects)
}

func TestEvents_StreamsMetrics(t *testing.T) {
	ls, err := localstore.Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, ls.Replace(context.Background(), models.DemoData()))
	router, err := NewRouter(StartOpts{Backend: ls, PollInterval: 10 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")
	body := w.Body.String()
	assert.Contains(t, body, "event: connected\n")
	assert.Contains(t, body, `event: metrics`+"\n"+`data: {"activeValue":6300000,"pendingRFIs":3,"currentBids":1,"completionRate":25}`)
	assert.Equal(t, 1, strings.Count(body, "event: metrics"), "unchanged metrics are not resent")
}

func TestWriteSSE(t *testing.T) {
	var buf bytes.Buffer
	writeSSE(&buf, "metrics", map[string]int{"pendingRFIs": 2})
	assert.Equal(t, "event: metrics\ndata: {\"pendingRFIs\":2}\n\n", buf.String())
}

func TestExportProjects(t *testing.T) {
	router, _ := mockRouter(t, models.DemoData())
	w := do(t, router, http.MethodGet, "/api/export/projects.csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "projects.csv")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "id,name,value"))
}

func TestImportProjects(t *testing.T) {
	router, ls := mockRouter(t, models.Dataset{})

	csv := "name,value,status\nMill Demolition,1250000,bidding\nPier 9,800000,active\n"
	req := httptest.NewRequest(http.MethodPost, "/api/import/projects", strings.NewReader(csv))
	req.Header.Set("Content-Type", "text/csv")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Imported int     `json:"imported"`
		IDs      []int64 `json:"ids"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Imported)
	assert.Len(t, resp.IDs, 2)
	assert.Len(t, ls.Snapshot().Projects, 2)
}

func TestImportProjects_RejectsWholeFile(t *testing.T) {
	router, ls := mockRouter(t, models.Dataset{})

	w := do(t, router, http.MethodPost, "/api/import/projects", "name,status\nGood,active\n,bidding\n")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"row 3: name is required"}`, w.Body.String())
	assert.Empty(t, ls.Snapshot().Projects)

	w = do(t, router, http.MethodPost, "/api/import/projects", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid request"}`, w.Body.String())
}

// failSecondCreate fails the second project create.
type failSecondCreate struct {
	*localstore.Store
	calls int
}

func (f *failSecondCreate) CreateProject(ctx context.Context, p *models.Project) (int64, error) {
	f.calls++
	if f.calls == 2 {
		return 0, &store.IntegrationError{Op: "create project", Err: errors.New("disk full")}
	}
	return f.Store.CreateProject(ctx, p)
}

func TestImportProjects_FailedCreateRollsBack(t *testing.T) {
	ls, err := localstore.Open(t.TempDir())
	require.NoError(t, err)
	router, err := NewRouter(StartOpts{Backend: &failSecondCreate{Store: ls}})
	require.NoError(t, err)

	w := do(t, router, http.MethodPost, "/api/import/projects",
		"name,status\nMill Demolition,bidding\nPier 9,active\nDepot,completed\n")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
	assert.Empty(t, ls.Snapshot().Projects)
}

func TestPage_Dashboard(t *testing.T) {
	router, _ := mockRouter(t, models.DemoData())
	w := do(t, router, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)

	html := w.Body.String()
	for _, want := range []string{
		"Demodash",
		"$6.3M",
		"Highland Office Tower",
		"HVAC Duct Conflict",
		"3 days",
		"Schedule site inspection",
		"Mar 16, 2025",
		"local mode",
	} {
		assert.Contains(t, html, want)
	}
}

func TestPage_FallbackRouteAndFilters(t *testing.T) {
	router, _ := mockRouter(t, models.DemoData())
	w := do(t, router, http.MethodGet, "/anything/else?tab=projects&status=completed", "")
	require.Equal(t, http.StatusOK, w.Code)

	html := w.Body.String()
	assert.Contains(t, html, "Oakridge Elementary School")
	assert.NotContains(t, html, "Highland Office Tower")
	assert.NotContains(t, html, "Pending RFIs")
}

// brokenBackend fails every read.
type brokenBackend struct {
	store.Backend
}

func (brokenBackend) Mode() store.Mode { return store.ModeServer }

func (brokenBackend) ListProjects(context.Context) ([]models.Project, error) {
	return nil, &store.IntegrationError{Op: "list projects", Err: errors.New("database is locked")}
}

func TestIntegrationError_Generic500(t *testing.T) {
	router, err := NewRouter(StartOpts{Backend: brokenBackend{}})
	require.NoError(t, err)

	w := do(t, router, http.MethodGet, "/api/projects", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "locked")

	w = do(t, router, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func itoa(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
