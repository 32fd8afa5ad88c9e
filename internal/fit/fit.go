// Package fit evaluates how well a lens model reproduces a point-source
// dataset: residuals between observed and model multiple-image positions
// (and fluxes), chi-squared values, and Gaussian log likelihoods.
package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/skcajs/autolens/internal/dataset"
	"github.com/skcajs/autolens/internal/geom"
	"github.com/skcajs/autolens/internal/pointsolver"
	"github.com/skcajs/autolens/internal/tracer"
)

// PositionFit is the comparison of observed multiple-image positions with
// the model positions the solver located.
type PositionFit struct {
	ModelPositions []geom.Coord
	// Residuals holds, per observed position, the distance to the nearest
	// model position in arcseconds.
	Residuals          []float64
	ChiSquared         float64
	NoiseNormalization float64
	LogLikelihood      float64
}

// FitPositions pairs every observed position with its nearest model position
// and forms the Gaussian likelihood. With no model positions at all the
// likelihood is -Inf: a model that produces no images cannot explain
// observed ones.
func FitPositions(observed []geom.Coord, noise []float64, model []geom.Coord) PositionFit {
	f := PositionFit{
		ModelPositions: model,
		Residuals:      make([]float64, len(observed)),
	}

	chiSq := make([]float64, len(observed))
	norm := make([]float64, len(observed))
	for i, obs := range observed {
		f.Residuals[i] = nearestDistance(obs, model)
		chiSq[i] = (f.Residuals[i] / noise[i]) * (f.Residuals[i] / noise[i])
		norm[i] = math.Log(2 * math.Pi * noise[i] * noise[i])
	}

	f.ChiSquared = floats.Sum(chiSq)
	f.NoiseNormalization = floats.Sum(norm)
	f.LogLikelihood = -0.5 * (f.ChiSquared + f.NoiseNormalization)
	return f
}

// FluxFit is the comparison of observed image fluxes with model fluxes,
// which are the source flux scaled by the absolute magnification at the
// model position paired to each observation.
type FluxFit struct {
	ModelFluxes        []float64
	Residuals          []float64
	ChiSquared         float64
	NoiseNormalization float64
	LogLikelihood      float64
}

// FitFluxes forms the flux likelihood. Each observed position is paired to
// its nearest model position; the model flux there is |magnification| times
// the unlensed source flux.
func FitFluxes(observed []geom.Coord, fluxes, noise []float64, model []geom.Coord,
	sourceFlux float64, magnification func(geom.Coord) float64) FluxFit {

	f := FluxFit{
		ModelFluxes: make([]float64, len(observed)),
		Residuals:   make([]float64, len(observed)),
	}

	chiSq := make([]float64, len(observed))
	norm := make([]float64, len(observed))
	for i, obs := range observed {
		j := nearestIndex(obs, model)
		if j < 0 {
			f.ModelFluxes[i] = 0
		} else {
			f.ModelFluxes[i] = math.Abs(magnification(model[j])) * sourceFlux
		}
		f.Residuals[i] = fluxes[i] - f.ModelFluxes[i]
		chiSq[i] = (f.Residuals[i] / noise[i]) * (f.Residuals[i] / noise[i])
		norm[i] = math.Log(2 * math.Pi * noise[i] * noise[i])
	}

	f.ChiSquared = floats.Sum(chiSq)
	f.NoiseNormalization = floats.Sum(norm)
	f.LogLikelihood = -0.5 * (f.ChiSquared + f.NoiseNormalization)
	return f
}

// PointFit combines the position fit and, when the dataset has fluxes, the
// flux fit of one point dataset.
type PointFit struct {
	Positions     PositionFit
	Fluxes        *FluxFit
	LogLikelihood float64
}

// FitPointDataset solves for the model's multiple images of its point source
// and fits them against the dataset. The tracer must host a point source in
// its source plane.
func FitPointDataset(ds dataset.PointDataset, tr *tracer.Tracer, solver *pointsolver.Solver) (PointFit, error) {
	if err := ds.Validate(); err != nil {
		return PointFit{}, err
	}
	point, ok := tr.SourcePoint()
	if !ok {
		return PointFit{}, fmt.Errorf("fit %q: tracer has no point source", ds.Name)
	}

	model, err := solver.Solve(tr.TracedCoords, point.Centre)
	if err != nil {
		return PointFit{}, fmt.Errorf("fit %q: %w", ds.Name, err)
	}

	f := PointFit{Positions: FitPositions(ds.Positions, ds.PositionNoise, model)}
	f.LogLikelihood = f.Positions.LogLikelihood

	if len(ds.Fluxes) > 0 && point.Flux > 0 {
		flux := FitFluxes(ds.Positions, ds.Fluxes, ds.FluxNoise, model, point.Flux, tr.MagnificationAt)
		f.Fluxes = &flux
		f.LogLikelihood += flux.LogLikelihood
	}
	return f, nil
}

// nearestDistance returns the distance from c to the nearest coordinate in
// model, or +Inf if model is empty.
func nearestDistance(c geom.Coord, model []geom.Coord) float64 {
	j := nearestIndex(c, model)
	if j < 0 {
		return math.Inf(1)
	}
	return geom.Distance(c, model[j])
}

// nearestIndex returns the index of the nearest model coordinate, or -1 for
// an empty model set.
func nearestIndex(c geom.Coord, model []geom.Coord) int {
	best := -1
	bestSq := math.Inf(1)
	for j, m := range model {
		if d := geom.DistanceSq(c, m); d < bestSq {
			bestSq = d
			best = j
		}
	}
	return best
}
