package webviz

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/skcajs/autolens/internal/db"
	"github.com/skcajs/autolens/internal/geom"
)

func newTestStore(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.OpenDB(filepath.Join(t.TempDir(), "viz.db"))
	if err != nil {
		t.Fatalf("OpenDB failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := database.MigrateUpEmbedded(); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}
	return database
}

func TestRunChart(t *testing.T) {
	store := newTestStore(t)
	runID, err := store.InsertLensRun(db.LensRun{
		Kind:      "solve",
		Model:     json.RawMessage(`{}`),
		Positions: []geom.Coord{{Y: 0, X: 1.1}, {Y: 0, X: -0.9}},
	})
	if err != nil {
		t.Fatal(err)
	}

	mux := NewServer(store).ServeMux()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/viz/runs/"+runID, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content-type = %s, want text/html", ct)
	}
	if !strings.Contains(rec.Body.String(), "echarts") {
		t.Error("rendered page does not reference echarts")
	}
}

func TestRunChartMissing(t *testing.T) {
	mux := NewServer(newTestStore(t)).ServeMux()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/viz/runs/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestLatestChartEmptyStore(t *testing.T) {
	mux := NewServer(newTestStore(t)).ServeMux()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/viz", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
