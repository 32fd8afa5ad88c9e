package dataset

import (
	"fmt"
	"math/rand"

	"github.com/skcajs/autolens/internal/geom"
	"github.com/skcajs/autolens/internal/pointsolver"
	"github.com/skcajs/autolens/internal/tracer"
)

// SimulatePoint generates a synthetic point dataset from a tracer whose
// source plane hosts a point source: the solver locates the multiple images
// of the source centre, then Gaussian noise of the given scale is added to
// every position and flux. Pass a seeded rand.Rand for reproducible datasets.
func SimulatePoint(tr *tracer.Tracer, solver *pointsolver.Solver, name string,
	positionNoise, fluxNoise float64, rng *rand.Rand) (PointDataset, error) {

	point, ok := tr.SourcePoint()
	if !ok {
		return PointDataset{}, fmt.Errorf("simulate %q: tracer has no point source", name)
	}

	positions, err := solver.Solve(tr.TracedCoords, point.Centre)
	if err != nil {
		return PointDataset{}, fmt.Errorf("simulate %q: %w", name, err)
	}
	if len(positions) == 0 {
		return PointDataset{}, fmt.Errorf("simulate %q: no multiple images in field of view", name)
	}

	ds := PointDataset{
		Name:          name,
		Positions:     make([]geom.Coord, len(positions)),
		PositionNoise: make([]float64, len(positions)),
	}
	for i, p := range positions {
		ds.Positions[i] = geom.Coord{
			Y: p.Y + rng.NormFloat64()*positionNoise,
			X: p.X + rng.NormFloat64()*positionNoise,
		}
		ds.PositionNoise[i] = positionNoise
	}

	if point.Flux > 0 {
		ds.Fluxes = make([]float64, len(positions))
		ds.FluxNoise = make([]float64, len(positions))
		for i, p := range positions {
			mu := tr.MagnificationAt(p)
			ds.Fluxes[i] = abs(mu)*point.Flux + rng.NormFloat64()*fluxNoise
			ds.FluxNoise[i] = fluxNoise
		}
	}
	return ds, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
