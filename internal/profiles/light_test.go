package profiles

import (
	"math"
	"testing"

	"github.com/skcajs/autolens/internal/geom"
)

func TestSersicSph_EffectiveRadius(t *testing.T) {
	// By construction the Sersic law evaluates to Intensity at the effective
	// radius, for any index.
	for _, n := range []float64{1.0, 2.5, 4.0} {
		p := SersicSph{Intensity: 2.0, EffectiveRadius: 1.0, SersicIndex: n}
		got := p.IntensityAt(geom.Coord{Y: 0, X: 1.0})
		if math.Abs(got-2.0) > 1e-12 {
			t.Errorf("n=%v: intensity at Re = %v, want 2.0", n, got)
		}
	}
}

func TestSersicSph_MonotonicDecrease(t *testing.T) {
	p := SersicSph{Intensity: 1.0, EffectiveRadius: 0.8, SersicIndex: 4.0}
	prev := math.Inf(1)
	for r := 0.1; r < 5; r += 0.1 {
		i := p.IntensityAt(geom.Coord{Y: r, X: 0})
		if i >= prev {
			t.Fatalf("intensity not decreasing at r=%v", r)
		}
		prev = i
	}
}

func TestExponential_IsSersicIndexOne(t *testing.T) {
	exp := Exponential{Intensity: 1.5, EffectiveRadius: 0.6}
	ser := Sersic{Intensity: 1.5, EffectiveRadius: 0.6, SersicIndex: 1}

	c := geom.Coord{Y: 0.4, X: -0.3}
	if math.Abs(exp.IntensityAt(c)-ser.IntensityAt(c)) > 1e-12 {
		t.Errorf("exponential and n=1 Sersic disagree: %v vs %v",
			exp.IntensityAt(c), ser.IntensityAt(c))
	}
}

func TestSersic_EllipticalIsophotes(t *testing.T) {
	e1, e2 := EllComps(0.5, 0.0) // major axis along x
	p := Sersic{EllComps: [2]float64{e1, e2}, Intensity: 1.0, EffectiveRadius: 1.0, SersicIndex: 1.0}

	// A point on the major axis is brighter than the same radius on the
	// minor axis (isophotes stretched along x).
	major := p.IntensityAt(geom.Coord{Y: 0, X: 1.0})
	minor := p.IntensityAt(geom.Coord{Y: 1.0, X: 0})
	if major <= minor {
		t.Errorf("expected major-axis intensity > minor-axis: %v vs %v", major, minor)
	}
}

func TestPointProfilesHaveNoExtendedEmission(t *testing.T) {
	if (Point{}).IntensityAt(geom.Coord{Y: 1, X: 1}) != 0 {
		t.Error("Point should contribute no surface brightness")
	}
	if (PointFlux{Flux: 3}).IntensityAt(geom.Coord{}) != 0 {
		t.Error("PointFlux should contribute no surface brightness")
	}
}
