package pointsolver

import (
	"errors"
	"math"
	"sort"

	"github.com/skcajs/autolens/internal/geom"
)

// ErrInvalidPrecision is returned when the solver is configured with a
// non-positive pixel scale precision.
var ErrInvalidPrecision = errors.New("pointsolver: pixel scale precision must be positive")

// RayTraceFunc maps image-plane coordinates to source-plane coordinates, one
// output per input, in order. It is supplied per fit and must be
// deterministic; the solver performs no retries.
type RayTraceFunc func(coords []geom.Coord) []geom.Coord

// Solver finds multiple-image positions by iterative grid refinement.
type Solver struct {
	grid      geom.Grid
	precision float64
}

// New constructs a solver over the given initial grid. The precision is the
// angular cell size, in arcseconds, at which refinement stops.
func New(grid geom.Grid, pixelScalePrecision float64) (*Solver, error) {
	if pixelScalePrecision <= 0 {
		return nil, ErrInvalidPrecision
	}
	return &Solver{grid: grid, precision: pixelScalePrecision}, nil
}

// Grid returns the solver's initial grid.
func (s *Solver) Grid() geom.Grid { return s.grid }

// PixelScalePrecision returns the configured stopping precision.
func (s *Solver) PixelScalePrecision() float64 { return s.precision }

// maxRefinements returns the refinement iteration cap,
// ceil(log2(initial pixel scale / precision)). Cell size halves every
// iteration, so this bound guarantees termination even if floating-point
// effects keep the size fractionally above the precision.
func (s *Solver) maxRefinements() int {
	bound := int(math.Ceil(math.Log2(s.grid.PixelScale() / s.precision)))
	if bound < 0 {
		return 0
	}
	return bound
}

// Solve returns the distinct image-plane coordinates whose ray-traced
// source-plane position lies within the configured precision of sourcePlane.
// An empty result means no image exists in the grid's field of view; it is a
// valid terminal state, not an error.
func (s *Solver) Solve(rayTrace RayTraceFunc, sourcePlane geom.Coord) ([]geom.Coord, error) {
	if s.precision <= 0 {
		return nil, ErrInvalidPrecision
	}

	centres := s.grid.Coords()
	size := s.grid.PixelScale()
	bound := s.maxRefinements()

	for iter := 0; ; iter++ {
		centres = survivors(rayTrace, centres, size, sourcePlane)
		if len(centres) == 0 {
			return nil, nil
		}
		if size <= s.precision || iter >= bound {
			break
		}
		centres = withNeighbours(centres, size)
		centres = subdivide(centres, size)
		size /= 2
	}

	return s.dedup(rayTrace, centres, size, sourcePlane), nil
}

// survivors keeps the cells whose four ray-traced corners bracket the target:
// the source-plane mapping is continuous, so if the target lies inside the
// bounding region of a cell's traced corners the cell may contain an image.
// Cells with any non-finite traced corner (mass-model singularities) are
// excluded from candidacy.
func survivors(rayTrace RayTraceFunc, centres []geom.Coord, size float64, target geom.Coord) []geom.Coord {
	if len(centres) == 0 {
		return nil
	}

	half := size / 2
	corners := make([]geom.Coord, 0, 4*len(centres))
	for _, c := range centres {
		corners = append(corners,
			geom.Coord{Y: c.Y - half, X: c.X - half},
			geom.Coord{Y: c.Y - half, X: c.X + half},
			geom.Coord{Y: c.Y + half, X: c.X - half},
			geom.Coord{Y: c.Y + half, X: c.X + half},
		)
	}
	traced := rayTrace(corners)

	kept := centres[:0]
	for i, c := range centres {
		bounds, ok := geom.BoundsOf(traced[4*i : 4*i+4])
		if !ok {
			continue
		}
		if bounds.Contains(target) {
			kept = append(kept, c)
		}
	}
	return kept
}

// withNeighbours expands the candidate set with the eight lattice neighbours
// of every cell. The corner-bracket test underestimates the true image of a
// cell interior under a nonlinear mapping, so an image close to a cell edge
// can register only in the adjacent cell; buffering keeps it in the search.
func withNeighbours(centres []geom.Coord, size float64) []geom.Coord {
	type key struct{ y, x int64 }
	quantise := func(c geom.Coord) key {
		return key{
			y: int64(math.Round(c.Y / size)),
			x: int64(math.Round(c.X / size)),
		}
	}

	seen := make(map[key]geom.Coord, 9*len(centres))
	for _, c := range centres {
		for dy := -1.0; dy <= 1; dy++ {
			for dx := -1.0; dx <= 1; dx++ {
				n := geom.Coord{Y: c.Y + dy*size, X: c.X + dx*size}
				seen[quantise(n)] = n
			}
		}
	}

	out := make([]geom.Coord, 0, len(seen))
	for _, c := range seen {
		out = append(out, c)
	}
	sortCoords(out)
	return out
}

// subdivide splits every cell into its four quadrants at half the size.
func subdivide(centres []geom.Coord, size float64) []geom.Coord {
	quarter := size / 4
	out := make([]geom.Coord, 0, 4*len(centres))
	for _, c := range centres {
		out = append(out,
			geom.Coord{Y: c.Y - quarter, X: c.X - quarter},
			geom.Coord{Y: c.Y - quarter, X: c.X + quarter},
			geom.Coord{Y: c.Y + quarter, X: c.X - quarter},
			geom.Coord{Y: c.Y + quarter, X: c.X + quarter},
		)
	}
	return out
}

// dedup merges adjacent surviving cells that correspond to the same image and
// returns, per merged group, the member whose traced position is closest to
// the target. Groups whose best member misses the target by more than the
// precision are discarded; this enforces the precision contract and removes
// false brackets (e.g. cells spanning a deflection singularity, whose traced
// corners scatter wide enough to cover any target).
func (s *Solver) dedup(rayTrace RayTraceFunc, centres []geom.Coord, size float64, target geom.Coord) []geom.Coord {
	if len(centres) == 0 {
		return nil
	}

	traced := rayTrace(centres)

	// Union adjacent cells (including diagonals) into groups.
	linkSq := (2 * size) * (2 * size)
	parent := make([]int, len(centres))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	for i := 0; i < len(centres); i++ {
		for j := i + 1; j < len(centres); j++ {
			if geom.DistanceSq(centres[i], centres[j]) <= linkSq {
				ri, rj := find(i), find(j)
				if ri != rj {
					parent[rj] = ri
				}
			}
		}
	}

	best := make(map[int]int) // group root -> index of best member
	for i := range centres {
		if !traced[i].IsFinite() {
			continue
		}
		root := find(i)
		b, ok := best[root]
		if !ok || geom.DistanceSq(traced[i], target) < geom.DistanceSq(traced[b], target) {
			best[root] = i
		}
	}

	precisionSq := s.precision * s.precision
	out := make([]geom.Coord, 0, len(best))
	for _, i := range best {
		if geom.DistanceSq(traced[i], target) <= precisionSq {
			out = append(out, centres[i])
		}
	}
	sortCoords(out)
	return out
}

// sortCoords orders coordinates by descending y then ascending x, the same
// row-major order grids use. Sorting keeps Solve deterministic regardless of
// intermediate map iteration order.
func sortCoords(coords []geom.Coord) {
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].Y != coords[j].Y {
			return coords[i].Y > coords[j].Y
		}
		return coords[i].X < coords[j].X
	})
}
