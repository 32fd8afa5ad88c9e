package pointsolver

import (
	"math"
	"testing"

	"github.com/skcajs/autolens/internal/cosmo"
	"github.com/skcajs/autolens/internal/geom"
	"github.com/skcajs/autolens/internal/profiles"
	"github.com/skcajs/autolens/internal/tracer"
)

func mustGrid(t *testing.T, rows, cols int, pixelScale float64) geom.Grid {
	t.Helper()
	g, err := geom.Uniform(rows, cols, pixelScale)
	if err != nil {
		t.Fatalf("Uniform returned error: %v", err)
	}
	return g
}

func identityTrace(coords []geom.Coord) []geom.Coord {
	out := make([]geom.Coord, len(coords))
	copy(out, coords)
	return out
}

func sisTrace(t *testing.T, einsteinRadius float64) RayTraceFunc {
	t.Helper()
	lens := tracer.Galaxy{
		Redshift: 0.5,
		Mass:     []profiles.MassProfile{profiles.IsothermalSph{EinsteinRadius: einsteinRadius}},
	}
	tr, err := tracer.New(cosmo.Planck15(), lens, tracer.Galaxy{Redshift: 1.0})
	if err != nil {
		t.Fatalf("tracer.New returned error: %v", err)
	}
	return tr.TracedCoords
}

func sieTrace(t *testing.T, einsteinRadius float64, ellComps [2]float64) RayTraceFunc {
	t.Helper()
	lens := tracer.Galaxy{
		Redshift: 0.5,
		Mass: []profiles.MassProfile{profiles.Isothermal{
			EllComps:       ellComps,
			EinsteinRadius: einsteinRadius,
		}},
	}
	tr, err := tracer.New(cosmo.Planck15(), lens, tracer.Galaxy{Redshift: 1.0})
	if err != nil {
		t.Fatalf("tracer.New returned error: %v", err)
	}
	return tr.TracedCoords
}

func TestNew_InvalidPrecision(t *testing.T) {
	g := mustGrid(t, 10, 10, 0.1)
	if _, err := New(g, 0); err != ErrInvalidPrecision {
		t.Errorf("expected ErrInvalidPrecision for zero precision, got %v", err)
	}
	if _, err := New(g, -0.01); err != ErrInvalidPrecision {
		t.Errorf("expected ErrInvalidPrecision for negative precision, got %v", err)
	}
}

func TestSolve_IdentityMap(t *testing.T) {
	s, err := New(mustGrid(t, 50, 50, 0.1), 0.01)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	target := geom.Coord{Y: 0.05, X: 0.05}
	got, err := s.Solve(identityTrace, target)
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 image for the identity map, got %d: %v", len(got), got)
	}
	if geom.Distance(got[0], target) > 0.01 {
		t.Errorf("image %+v not within precision of target %+v", got[0], target)
	}
}

func TestSolve_TargetOutsideFieldOfView(t *testing.T) {
	s, err := New(mustGrid(t, 20, 20, 0.1), 0.01)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	// The identity map only reaches the grid extent (+-1 arcsec); a target
	// well outside it has no solution, which is a valid empty result.
	got, err := s.Solve(identityTrace, geom.Coord{Y: 10, X: 10})
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}

func TestSolve_SISOffAxisTwoImages(t *testing.T) {
	s, err := New(mustGrid(t, 100, 100, 0.1), 0.025)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	// An SIS with theta_E = 1.0 and a source at (0, 0.1) forms two images on
	// the x-axis, at x = 1.1 and x = -0.9.
	rayTrace := sisTrace(t, 1.0)
	got, err := s.Solve(rayTrace, geom.Coord{Y: 0, X: 0.1})
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 images, got %d: %v", len(got), got)
	}

	want := []geom.Coord{{Y: 0, X: -0.9}, {Y: 0, X: 1.1}}
	for _, w := range want {
		found := false
		for _, g := range got {
			if geom.Distance(g, w) < 0.05 {
				found = true
			}
		}
		if !found {
			t.Errorf("no image near analytic position %+v (got %v)", w, got)
		}
	}
}

func TestSolve_SISOnAxisEinsteinRing(t *testing.T) {
	s, err := New(mustGrid(t, 100, 100, 0.1), 0.025)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	// A source exactly behind the lens centre is the degenerate
	// Einstein-ring case: every returned coordinate must sit on the ring at
	// the Einstein radius. The number of representatives of the connected
	// ring region is implementation-defined.
	rayTrace := sisTrace(t, 1.6)
	got, err := s.Solve(rayTrace, geom.Coord{})
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected ring coordinates, got none")
	}
	for _, c := range got {
		if math.Abs(c.Radius()-1.6) > 0.05 {
			t.Errorf("ring coordinate %+v at radius %v, expected ~1.6", c, c.Radius())
		}
	}
}

func TestSolve_SIEQuadScenario(t *testing.T) {
	// Worked scenario: (100, 100) grid at 0.1"/pixel, isothermal lens with
	// Einstein radius 1.6" and a source offset (0.05, 0.05) inside the
	// caustic. A spherical lens would only form two images; the elliptical
	// isothermal forms the classic quad.
	s, err := New(mustGrid(t, 100, 100, 0.1), 0.025)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	target := geom.Coord{Y: 0.05, X: 0.05}
	rayTrace := sieTrace(t, 1.6, [2]float64{0.17647, 0.0})
	got, err := s.Solve(rayTrace, target)
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 images inside the caustic, got %d: %v", len(got), got)
	}

	// Precision contract: every returned coordinate ray-traces to within the
	// precision of the target.
	traced := rayTrace(got)
	for i, src := range traced {
		if geom.Distance(src, target) > 0.025 {
			t.Errorf("image %d (%+v) traces to %+v, %.4f from target",
				i, got[i], src, geom.Distance(src, target))
		}
	}
}

func TestSolve_Deterministic(t *testing.T) {
	s, err := New(mustGrid(t, 100, 100, 0.1), 0.025)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	target := geom.Coord{Y: 0.05, X: 0.05}
	rayTrace := sieTrace(t, 1.6, [2]float64{0.17647, 0.0})

	first, err := s.Solve(rayTrace, target)
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}
	second, err := s.Solve(rayTrace, target)
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("non-deterministic image count: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("image %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestSolve_MonotonicWithResolution(t *testing.T) {
	target := geom.Coord{Y: 0.05, X: 0.05}
	prev := 0
	for _, res := range []struct {
		n     int
		scale float64
	}{
		{50, 0.2},
		{100, 0.1},
		{200, 0.05},
	} {
		s, err := New(mustGrid(t, res.n, res.n, res.scale), 0.025)
		if err != nil {
			t.Fatalf("New returned error: %v", err)
		}
		got, err := s.Solve(sieTrace(t, 1.6, [2]float64{0.17647, 0.0}), target)
		if err != nil {
			t.Fatalf("Solve returned error: %v", err)
		}
		if len(got) < prev {
			t.Fatalf("image count decreased with finer grid: %d -> %d at scale %v",
				prev, len(got), res.scale)
		}
		prev = len(got)
	}
}

func TestSolve_SingularCentreExcluded(t *testing.T) {
	// The SIS deflection is non-finite at the profile centre. An even grid
	// puts cell corners exactly on the singularity; those cells must be
	// excluded from candidacy without panicking or leaking NaN.
	g, err := geom.UniformAt(20, 20, 0.1, geom.Coord{})
	if err != nil {
		t.Fatalf("UniformAt returned error: %v", err)
	}
	s, err := New(g, 0.025)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	got, err := s.Solve(sisTrace(t, 1.0), geom.Coord{Y: 0, X: 0.1})
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}
	for _, c := range got {
		if !c.IsFinite() {
			t.Errorf("non-finite coordinate in result: %+v", c)
		}
	}
}

func TestSolve_TerminatesWithinIterationBound(t *testing.T) {
	s, err := New(mustGrid(t, 40, 40, 0.1), 0.025)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	// A mapping engineered so every cell brackets the target forever: the
	// traced corners scatter over a wide area. The solver must still stop at
	// the iteration bound ceil(log2(0.1 / 0.025)) = 2, i.e. at most
	// 3 bracket passes plus 1 dedup pass of ray-tracing.
	calls := 0
	scatter := func(coords []geom.Coord) []geom.Coord {
		calls++
		out := make([]geom.Coord, len(coords))
		for i, c := range coords {
			out[i] = geom.Coord{
				Y: 100 * math.Sin(12345*c.Y+6789*c.X),
				X: 100 * math.Cos(9876*c.Y-54321*c.X),
			}
		}
		return out
	}

	if _, err := s.Solve(scatter, geom.Coord{}); err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}
	if calls > 4 {
		t.Errorf("solver exceeded iteration bound: %d ray-trace calls", calls)
	}
}
