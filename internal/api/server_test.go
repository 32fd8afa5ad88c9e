package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/skcajs/autolens/internal/db"
	"github.com/skcajs/autolens/internal/geom"
)

const sisModelJSON = `{
  "galaxies": [
    {"redshift": 0.5, "mass": [{"type": "isothermal_sph", "einstein_radius": 1.0}]},
    {"redshift": 1.0, "point": {"centre": [0.0, 0.1], "flux": 0.8}}
  ]
}`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	database, err := db.OpenDB(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("OpenDB failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := database.MigrateUpEmbedded(); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}
	return NewServer(database, nil)
}

func postJSON(t *testing.T, mux *http.ServeMux, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	mux := newTestServer(t).ServeMux()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestSolveEndpoint(t *testing.T) {
	s := newTestServer(t)
	mux := s.ServeMux()

	rec := postJSON(t, mux, "/api/solve", `{"model": `+sisModelJSON+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		RunID          string       `json:"run_id"`
		Positions      []geom.Coord `json:"positions"`
		Magnifications []float64    `json:"magnifications"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Positions) != 2 {
		t.Fatalf("expected 2 image positions for an off-axis source, got %d", len(resp.Positions))
	}
	if len(resp.Magnifications) != len(resp.Positions) {
		t.Errorf("magnification count %d != position count %d",
			len(resp.Magnifications), len(resp.Positions))
	}
	if resp.RunID == "" {
		t.Error("expected a persisted run ID")
	}

	// The solve run is retrievable afterwards.
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/"+resp.RunID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("run lookup status = %d", rec.Code)
	}
	var run db.LensRun
	if err := json.NewDecoder(rec.Body).Decode(&run); err != nil {
		t.Fatal(err)
	}
	if run.Kind != "solve" {
		t.Errorf("run kind = %q, want solve", run.Kind)
	}
	if len(run.Positions) != 2 {
		t.Errorf("persisted %d positions, want 2", len(run.Positions))
	}
}

func TestSolveRejectsBadRequests(t *testing.T) {
	mux := newTestServer(t).ServeMux()

	rec := postJSON(t, mux, "/api/solve", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed JSON: status = %d, want 400", rec.Code)
	}

	rec = postJSON(t, mux, "/api/solve", `{"model": {"galaxies": []}}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty model: status = %d, want 400", rec.Code)
	}

	// No point source and no explicit target.
	noPoint := `{"model": {"galaxies": [
		{"redshift": 0.5, "mass": [{"type": "isothermal_sph", "einstein_radius": 1.0}]},
		{"redshift": 1.0}
	]}}`
	rec = postJSON(t, mux, "/api/solve", noPoint)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing target: status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/solve", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET solve: status = %d, want 405", rec.Code)
	}
}

func TestFitEndpoint(t *testing.T) {
	mux := newTestServer(t).ServeMux()

	body := fmt.Sprintf(`{
		"model": %s,
		"dataset": {
			"name": "point_0",
			"positions": [[0.0, 1.1], [0.0, -0.9]],
			"positions_noise_map": [0.05, 0.05]
		}
	}`, sisModelJSON)

	rec := postJSON(t, mux, "/api/fit", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		RunID          string       `json:"run_id"`
		ModelPositions []geom.Coord `json:"model_positions"`
		ChiSquared     float64      `json:"chi_squared"`
		LogLikelihood  float64      `json:"log_likelihood"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.ModelPositions) != 2 {
		t.Errorf("expected 2 model positions, got %d", len(resp.ModelPositions))
	}
	// Observations sit close to the true image positions, so the fit is
	// good but not exactly zero.
	if resp.ChiSquared > 50 {
		t.Errorf("chi-squared unexpectedly large: %g", resp.ChiSquared)
	}
}

func TestFitRejectsInvalidDataset(t *testing.T) {
	mux := newTestServer(t).ServeMux()

	body := fmt.Sprintf(`{"model": %s, "dataset": {"positions": [[0, 1.1]], "positions_noise_map": []}}`, sisModelJSON)
	rec := postJSON(t, mux, "/api/fit", body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestListRunsAndMissingRun(t *testing.T) {
	mux := newTestServer(t).ServeMux()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var runs []db.LensRun
	if err := json.NewDecoder(rec.Body).Decode(&runs); err != nil {
		t.Fatalf("list response not a JSON array: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected empty run list, got %d", len(runs))
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing run status = %d, want 404", rec.Code)
	}
}
