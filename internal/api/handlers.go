package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/skcajs/autolens/internal/dataset"
	"github.com/skcajs/autolens/internal/db"
	"github.com/skcajs/autolens/internal/fit"
	"github.com/skcajs/autolens/internal/geom"
	"github.com/skcajs/autolens/internal/httputil"
	"github.com/skcajs/autolens/internal/modelspec"
	"github.com/skcajs/autolens/internal/monitoring"
)

// Request bodies are bounded to keep a bad client from exhausting memory.
const maxRequestBytes = 4 * 1024 * 1024

type solveRequest struct {
	Model modelspec.ModelSpec `json:"model"`
	// Target overrides the source-plane point being solved for. When
	// omitted the model must carry a point source and its centre is used.
	Target *geom.Coord `json:"target,omitempty"`
}

type solveResponse struct {
	RunID          string       `json:"run_id"`
	Positions      []geom.Coord `json:"positions"`
	Magnifications []float64    `json:"magnifications"`
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		httputil.BadRequest(w, "failed to read request body")
		return
	}
	var req solveRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid request: %v", err))
		return
	}

	tr, solver, err := s.buildPipeline(req.Model)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	var target geom.Coord
	if req.Target != nil {
		target = *req.Target
	} else {
		point, ok := tr.SourcePoint()
		if !ok {
			httputil.BadRequest(w, "model has no point source and no target was given")
			return
		}
		target = point.Centre
	}

	positions, err := solver.Solve(tr.TracedCoords, target)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	magnifications := make([]float64, len(positions))
	for i, p := range positions {
		magnifications[i] = tr.MagnificationAt(p)
	}

	modelJSON, _ := json.Marshal(req.Model)
	runID, err := s.db.InsertLensRun(db.LensRun{
		Kind:      "solve",
		Model:     modelJSON,
		Positions: positions,
	})
	if err != nil {
		monitoring.Logf("api: failed to persist solve run: %v", err)
		httputil.InternalServerError(w, "failed to persist run")
		return
	}

	httputil.WriteJSONOK(w, solveResponse{
		RunID:          runID,
		Positions:      positions,
		Magnifications: magnifications,
	})
}

type fitRequest struct {
	Model   modelspec.ModelSpec  `json:"model"`
	Dataset dataset.PointDataset `json:"dataset"`
}

type fitResponse struct {
	RunID          string       `json:"run_id"`
	ModelPositions []geom.Coord `json:"model_positions"`
	ChiSquared     float64      `json:"chi_squared"`
	LogLikelihood  float64      `json:"log_likelihood"`
}

func (s *Server) handleFit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		httputil.BadRequest(w, "failed to read request body")
		return
	}
	var req fitRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid request: %v", err))
		return
	}
	if req.Dataset.Name == "" {
		req.Dataset.Name = "dataset"
	}
	if err := req.Dataset.Validate(); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	tr, solver, err := s.buildPipeline(req.Model)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	result, err := fit.FitPointDataset(req.Dataset, tr, solver)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	chiSquared := result.Positions.ChiSquared
	if result.Fluxes != nil {
		chiSquared += result.Fluxes.ChiSquared
	}

	modelJSON, _ := json.Marshal(req.Model)
	runID, err := s.db.InsertLensRun(db.LensRun{
		Kind:          "fit",
		DatasetName:   req.Dataset.Name,
		Model:         modelJSON,
		Positions:     result.Positions.ModelPositions,
		ChiSquared:    chiSquared,
		LogLikelihood: result.LogLikelihood,
	})
	if err != nil {
		monitoring.Logf("api: failed to persist fit run: %v", err)
		httputil.InternalServerError(w, "failed to persist run")
		return
	}

	httputil.WriteJSONOK(w, fitResponse{
		RunID:          runID,
		ModelPositions: result.Positions.ModelPositions,
		ChiSquared:     chiSquared,
		LogLikelihood:  result.LogLikelihood,
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	runs, err := s.db.ListLensRuns(100)
	if err != nil {
		monitoring.Logf("api: failed to list runs: %v", err)
		httputil.InternalServerError(w, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []db.LensRun{}
	}
	httputil.WriteJSONOK(w, runs)
}

func (s *Server) handleRunByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	runID := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	if runID == "" || strings.Contains(runID, "/") {
		httputil.NotFound(w, "run not found")
		return
	}
	run, err := s.db.GetLensRun(runID)
	if errors.Is(err, sql.ErrNoRows) {
		httputil.NotFound(w, "run not found")
		return
	}
	if err != nil {
		monitoring.Logf("api: failed to load run %s: %v", runID, err)
		httputil.InternalServerError(w, "failed to load run")
		return
	}
	httputil.WriteJSONOK(w, run)
}
