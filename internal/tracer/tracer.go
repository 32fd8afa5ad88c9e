// Package tracer composes galaxies into redshift planes and performs the
// forward ray-tracing from image-plane to source-plane coordinates.
//
// Ownership is explicit: a Tracer owns its planes, a plane owns its galaxies
// and a galaxy owns its profiles. For the common single-lens-plane case the
// traced coordinate is theta - alpha(theta); with more than two planes the
// standard multi-plane recursion applies, with deflections rescaled between
// planes by the cosmological scaling factor.
package tracer

import (
	"errors"
	"math"
	"sort"

	"github.com/skcajs/autolens/internal/cosmo"
	"github.com/skcajs/autolens/internal/geom"
	"github.com/skcajs/autolens/internal/profiles"
)

// ErrNoGalaxies is returned when a tracer is constructed without galaxies.
var ErrNoGalaxies = errors.New("tracer: at least one galaxy is required")

// Galaxy is a collection of profiles at a single redshift.
type Galaxy struct {
	Redshift float64                 `json:"redshift"`
	Mass     []profiles.MassProfile  `json:"-"`
	Light    []profiles.LightProfile `json:"-"`
	// Point is the optional point source hosted by this galaxy, used by
	// point-dataset fitting.
	Point *profiles.PointFlux `json:"point,omitempty"`
}

// DeflectionAt sums the deflections of all mass profiles.
func (g Galaxy) DeflectionAt(c geom.Coord) geom.Coord {
	var sum geom.Coord
	for _, m := range g.Mass {
		sum = sum.Add(m.DeflectionAt(c))
	}
	return sum
}

// IntensityAt sums the intensities of all light profiles.
func (g Galaxy) IntensityAt(c geom.Coord) float64 {
	total := 0.0
	for _, l := range g.Light {
		total += l.IntensityAt(c)
	}
	return total
}

// plane groups the galaxies sharing one redshift.
type plane struct {
	redshift float64
	galaxies []Galaxy
}

func (p plane) deflectionAt(c geom.Coord) geom.Coord {
	var sum geom.Coord
	for _, g := range p.galaxies {
		sum = sum.Add(g.DeflectionAt(c))
	}
	return sum
}

func (p plane) intensityAt(c geom.Coord) float64 {
	total := 0.0
	for _, g := range p.galaxies {
		total += g.IntensityAt(c)
	}
	return total
}

// Tracer ray-traces through a sequence of redshift planes.
type Tracer struct {
	planes    []plane
	cosmology cosmo.Cosmology
}

// New builds a tracer from galaxies, sorting them into planes of equal
// redshift in ascending order. The highest-redshift plane is the source
// plane.
func New(cosmology cosmo.Cosmology, galaxies ...Galaxy) (*Tracer, error) {
	if len(galaxies) == 0 {
		return nil, ErrNoGalaxies
	}

	byRedshift := make(map[float64][]Galaxy)
	for _, g := range galaxies {
		byRedshift[g.Redshift] = append(byRedshift[g.Redshift], g)
	}

	redshifts := make([]float64, 0, len(byRedshift))
	for z := range byRedshift {
		redshifts = append(redshifts, z)
	}
	sort.Float64s(redshifts)

	planes := make([]plane, 0, len(redshifts))
	for _, z := range redshifts {
		planes = append(planes, plane{redshift: z, galaxies: byRedshift[z]})
	}
	return &Tracer{planes: planes, cosmology: cosmology}, nil
}

// PlaneCount returns the number of redshift planes.
func (t *Tracer) PlaneCount() int { return len(t.planes) }

// SourceRedshift returns the redshift of the final (source) plane.
func (t *Tracer) SourceRedshift() float64 {
	return t.planes[len(t.planes)-1].redshift
}

// SourcePoint returns the first point source found in the source plane, if
// any.
func (t *Tracer) SourcePoint() (profiles.PointFlux, bool) {
	for _, g := range t.planes[len(t.planes)-1].galaxies {
		if g.Point != nil {
			return *g.Point, true
		}
	}
	return profiles.PointFlux{}, false
}

// tracePlanes returns the ray position on every plane for one image-plane
// coordinate, using the multi-plane recursion
//
//	x_j = theta - sum_{i<j} beta_ij * alpha_i(x_i)
//
// where alpha_i is the reduced deflection of plane i at its own traced
// position and beta_ij the cosmological scaling factor.
func (t *Tracer) tracePlanes(theta geom.Coord) []geom.Coord {
	n := len(t.planes)
	positions := make([]geom.Coord, n)
	deflections := make([]geom.Coord, n)
	zs := t.SourceRedshift()

	for j := 0; j < n; j++ {
		x := theta
		for i := 0; i < j; i++ {
			beta := t.cosmology.ScalingFactor(t.planes[i].redshift, t.planes[j].redshift, zs)
			x = x.Sub(deflections[i].Scale(beta))
		}
		positions[j] = x
		if j < n-1 {
			deflections[j] = t.planes[j].deflectionAt(x)
		}
	}
	return positions
}

// TraceOne maps a single image-plane coordinate to the source plane.
func (t *Tracer) TraceOne(theta geom.Coord) geom.Coord {
	if len(t.planes) == 1 {
		return theta
	}
	positions := t.tracePlanes(theta)
	return positions[len(positions)-1]
}

// TracedCoords maps image-plane coordinates to source-plane coordinates, one
// output per input. It has the signature the position solver expects of a
// ray-tracing callable.
func (t *Tracer) TracedCoords(coords []geom.Coord) []geom.Coord {
	out := make([]geom.Coord, len(coords))
	for i, c := range coords {
		out[i] = t.TraceOne(c)
	}
	return out
}

// Deflections returns the total deflection angle at each coordinate, the
// offset between the image-plane position and where its ray lands on the
// source plane.
func (t *Tracer) Deflections(coords []geom.Coord) []geom.Coord {
	out := make([]geom.Coord, len(coords))
	for i, c := range coords {
		out[i] = c.Sub(t.TraceOne(c))
	}
	return out
}

// Image evaluates the lensed surface brightness on the grid: every plane's
// light, each evaluated at the ray position on that plane. The result is in
// row-major grid order.
func (t *Tracer) Image(g geom.Grid) []float64 {
	coords := g.Coords()
	out := make([]float64, len(coords))
	for i, theta := range coords {
		if len(t.planes) == 1 {
			out[i] = t.planes[0].intensityAt(theta)
			continue
		}
		positions := t.tracePlanes(theta)
		total := 0.0
		for j, p := range t.planes {
			total += p.intensityAt(positions[j])
		}
		out[i] = total
	}
	return out
}

// magnificationStep is the finite-difference step in arcseconds for the
// lensing Jacobian.
const magnificationStep = 1e-4

// MagnificationAt returns the signed point magnification 1/det(A) where A is
// the Jacobian of the image-to-source mapping, evaluated by central
// differences. Near critical curves the value diverges; callers should not
// assume it is finite.
func (t *Tracer) MagnificationAt(c geom.Coord) float64 {
	h := magnificationStep
	sYp := t.TraceOne(geom.Coord{Y: c.Y + h, X: c.X})
	sYm := t.TraceOne(geom.Coord{Y: c.Y - h, X: c.X})
	sXp := t.TraceOne(geom.Coord{Y: c.Y, X: c.X + h})
	sXm := t.TraceOne(geom.Coord{Y: c.Y, X: c.X - h})

	a11 := (sYp.Y - sYm.Y) / (2 * h) // d beta_y / d theta_y
	a12 := (sXp.Y - sXm.Y) / (2 * h) // d beta_y / d theta_x
	a21 := (sYp.X - sYm.X) / (2 * h) // d beta_x / d theta_y
	a22 := (sXp.X - sXm.X) / (2 * h) // d beta_x / d theta_x

	det := a11*a22 - a12*a21
	return 1 / det
}

// CriticalCurvePoints samples det(A) on the grid and returns midpoints of
// adjacent cells where its sign flips, a piecewise approximation of the
// critical curves at the grid's resolution.
func (t *Tracer) CriticalCurvePoints(g geom.Grid) []geom.Coord {
	rows, cols := g.Shape()
	det := make([]float64, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			mu := t.MagnificationAt(g.At(r, c))
			det[r*cols+c] = 1 / mu
		}
	}

	var points []geom.Coord
	signFlip := func(a, b float64) bool {
		return !math.IsNaN(a) && !math.IsNaN(b) && a*b < 0
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			here := det[r*cols+c]
			if c+1 < cols && signFlip(here, det[r*cols+c+1]) {
				a, b := g.At(r, c), g.At(r, c+1)
				points = append(points, geom.Coord{Y: (a.Y + b.Y) / 2, X: (a.X + b.X) / 2})
			}
			if r+1 < rows && signFlip(here, det[(r+1)*cols+c]) {
				a, b := g.At(r, c), g.At(r+1, c)
				points = append(points, geom.Coord{Y: (a.Y + b.Y) / 2, X: (a.X + b.X) / 2})
			}
		}
	}
	return points
}
