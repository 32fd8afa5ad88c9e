// Package api exposes the solver and model-fitting pipeline over HTTP.
package api

import (
	"fmt"
	"net/http"

	"github.com/skcajs/autolens/internal/config"
	"github.com/skcajs/autolens/internal/cosmo"
	"github.com/skcajs/autolens/internal/db"
	"github.com/skcajs/autolens/internal/geom"
	"github.com/skcajs/autolens/internal/httputil"
	"github.com/skcajs/autolens/internal/modelspec"
	"github.com/skcajs/autolens/internal/pointsolver"
	"github.com/skcajs/autolens/internal/tracer"
)

type Server struct {
	db  *db.DB
	cfg *config.TuningConfig
}

// NewServer builds an API server over the given run store. cfg supplies the
// default grid, solver and cosmology parameters; nil means all defaults.
func NewServer(database *db.DB, cfg *config.TuningConfig) *Server {
	if cfg == nil {
		cfg = config.EmptyTuningConfig()
	}
	return &Server{db: database, cfg: cfg}
}

// ServeMux returns the route table for this server.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/solve", s.handleSolve)
	mux.HandleFunc("/api/fit", s.handleFit)
	mux.HandleFunc("/api/runs", s.handleListRuns)
	mux.HandleFunc("/api/runs/", s.handleRunByID)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, map[string]string{"status": "ok"})
}

// buildPipeline turns a decoded model into a tracer and a solver over the
// model's grid, falling back to the configured grid when none is given.
func (s *Server) buildPipeline(m modelspec.ModelSpec) (*tracer.Tracer, *pointsolver.Solver, error) {
	if len(m.Galaxies) == 0 {
		return nil, nil, fmt.Errorf("model has no galaxies")
	}
	tr, err := m.Tracer(s.cosmology())
	if err != nil {
		return nil, nil, err
	}

	var g geom.Grid
	if m.Grid != nil {
		g, err = m.Grid.Build()
	} else {
		g, err = s.defaultGrid()
	}
	if err != nil {
		return nil, nil, err
	}

	solver, err := s.newSolver(g)
	if err != nil {
		return nil, nil, err
	}
	return tr, solver, nil
}

// cosmology builds the configured background cosmology.
func (s *Server) cosmology() cosmo.Cosmology {
	return cosmo.Cosmology{
		H0:     s.cfg.GetHubbleConstant(),
		OmegaM: s.cfg.GetOmegaMatter(),
	}
}

// defaultGrid builds the configured image-plane grid.
func (s *Server) defaultGrid() (geom.Grid, error) {
	return geom.Uniform(s.cfg.GetGridRows(), s.cfg.GetGridCols(), s.cfg.GetGridPixelScale())
}

// newSolver builds a solver over g with the configured precision.
func (s *Server) newSolver(g geom.Grid) (*pointsolver.Solver, error) {
	return pointsolver.New(g, s.cfg.GetPixelScalePrecision())
}
