// Package search fits lens models to point-source datasets by maximizing
// the dataset log likelihood with a derivative-free Nelder-Mead simplex.
//
// The free parameters of each model are laid out in an explicit, fixed
// vector order so results stay reproducible and seed models can be chained
// from one search stage to the next.
package search

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/skcajs/autolens/internal/cosmo"
	"github.com/skcajs/autolens/internal/dataset"
	"github.com/skcajs/autolens/internal/fit"
	"github.com/skcajs/autolens/internal/geom"
	"github.com/skcajs/autolens/internal/monitoring"
	"github.com/skcajs/autolens/internal/pointsolver"
	"github.com/skcajs/autolens/internal/profiles"
	"github.com/skcajs/autolens/internal/tracer"
)

// Likelihood penalty for parameter vectors outside the physical range.
// Large enough that the simplex always retreats from invalid regions.
const invalidPenalty = 1e10

// PointModel is the parameterization of a single elliptical isothermal lens
// with one lensed point source behind it.
type PointModel struct {
	// LensRedshift and SourceRedshift are fixed during a search.
	LensRedshift   float64
	SourceRedshift float64

	LensCentre     geom.Coord
	EllComps       [2]float64
	EinsteinRadius float64

	SourceCentre geom.Coord
	SourceFlux   float64
}

// Tracer builds the tracer this model describes.
func (m PointModel) Tracer(cosmology cosmo.Cosmology) (*tracer.Tracer, error) {
	lens := tracer.Galaxy{
		Redshift: m.LensRedshift,
		Mass: []profiles.MassProfile{profiles.Isothermal{
			Centre:         m.LensCentre,
			EllComps:       m.EllComps,
			EinsteinRadius: m.EinsteinRadius,
		}},
	}
	source := tracer.Galaxy{
		Redshift: m.SourceRedshift,
		Point:    &profiles.PointFlux{Centre: m.SourceCentre, Flux: m.SourceFlux},
	}
	return tracer.New(cosmology, lens, source)
}

func (m PointModel) valid() bool {
	e := math.Hypot(m.EllComps[0], m.EllComps[1])
	return m.EinsteinRadius > 0 && e < 1 && m.SourceFlux >= 0 &&
		m.LensCentre.IsFinite() && m.SourceCentre.IsFinite()
}

// Free-parameter vector layout for a full lens search.
const lensVectorLen = 7

func (m PointModel) toVector() []float64 {
	return []float64{
		m.LensCentre.Y, m.LensCentre.X,
		m.EllComps[0], m.EllComps[1],
		m.EinsteinRadius,
		m.SourceCentre.Y, m.SourceCentre.X,
	}
}

func (m PointModel) fromVector(x []float64) PointModel {
	m.LensCentre = geom.Coord{Y: x[0], X: x[1]}
	m.EllComps = [2]float64{x[2], x[3]}
	m.EinsteinRadius = x[4]
	m.SourceCentre = geom.Coord{Y: x[5], X: x[6]}
	return m
}

// Result is the outcome of one search stage.
type Result struct {
	Model           PointModel
	LogLikelihood   float64
	FuncEvaluations int
	Converged       bool
}

// Searcher runs model fits against one dataset with a shared solver.
type Searcher struct {
	cosmology cosmo.Cosmology
	solver    *pointsolver.Solver
	maxIter   int
}

// NewSearcher builds a searcher. maxIter bounds the optimizer's major
// iterations per stage; values below 1 fall back to 200.
func NewSearcher(cosmology cosmo.Cosmology, solver *pointsolver.Solver, maxIter int) *Searcher {
	if maxIter < 1 {
		maxIter = 200
	}
	return &Searcher{cosmology: cosmology, solver: solver, maxIter: maxIter}
}

// logLikelihood scores one candidate model against the dataset. Invalid
// parameters and failed fits score the flat penalty so the simplex can
// recover.
func (s *Searcher) logLikelihood(m PointModel, ds dataset.PointDataset) float64 {
	if !m.valid() {
		return -invalidPenalty
	}
	tr, err := m.Tracer(s.cosmology)
	if err != nil {
		return -invalidPenalty
	}
	f, err := fit.FitPointDataset(ds, tr, s.solver)
	if err != nil {
		return -invalidPenalty
	}
	if math.IsInf(f.LogLikelihood, -1) || math.IsNaN(f.LogLikelihood) {
		return -invalidPenalty
	}
	return f.LogLikelihood
}

// FitSourcePosition fits only the source-plane centre of seed, holding the
// lens parameters fixed. This is the cheap first stage of a chained search.
func (s *Searcher) FitSourcePosition(ds dataset.PointDataset, seed PointModel) (Result, error) {
	objective := func(x []float64) float64 {
		m := seed
		m.SourceCentre = geom.Coord{Y: x[0], X: x[1]}
		return -s.logLikelihood(m, ds)
	}
	r, err := s.minimize(objective, []float64{seed.SourceCentre.Y, seed.SourceCentre.X})
	if err != nil {
		return Result{}, fmt.Errorf("source position fit: %w", err)
	}

	best := seed
	best.SourceCentre = geom.Coord{Y: r.X[0], X: r.X[1]}
	return s.result(best, r), nil
}

// FitLens fits the full lens-plus-source parameter vector starting from
// seed. Chain it after FitSourcePosition by passing that stage's Model.
func (s *Searcher) FitLens(ds dataset.PointDataset, seed PointModel) (Result, error) {
	objective := func(x []float64) float64 {
		return -s.logLikelihood(seed.fromVector(x), ds)
	}
	r, err := s.minimize(objective, seed.toVector())
	if err != nil {
		return Result{}, fmt.Errorf("lens fit: %w", err)
	}
	return s.result(seed.fromVector(r.X), r), nil
}

func (s *Searcher) minimize(objective func([]float64) float64, init []float64) (*optimize.Result, error) {
	problem := optimize.Problem{Func: objective}
	settings := &optimize.Settings{
		MajorIterations: s.maxIter,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-8,
			Iterations: 50,
		},
	}
	r, err := optimize.Minimize(problem, init, settings, &optimize.NelderMead{})
	if err != nil && r == nil {
		return nil, err
	}
	monitoring.Logf("search: %d evaluations, status %v", r.FuncEvaluations, r.Status)
	return r, nil
}

func (s *Searcher) result(m PointModel, r *optimize.Result) Result {
	return Result{
		Model:           m,
		LogLikelihood:   -r.F,
		FuncEvaluations: r.FuncEvaluations,
		Converged:       r.Status == optimize.FunctionConvergence || r.Status == optimize.GradientThreshold,
	}
}
