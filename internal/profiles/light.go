package profiles

import (
	"math"

	"github.com/skcajs/autolens/internal/geom"
)

// LightProfile is the capability interface of a luminous component. The
// intensity is in arbitrary surface-brightness units per square arcsecond.
type LightProfile interface {
	IntensityAt(c geom.Coord) float64
}

// sersicB returns the b_n factor such that the effective radius encloses half
// of the total Sersic light, using the Ciotti & Bertin asymptotic expansion.
func sersicB(n float64) float64 {
	return 2*n - 1.0/3 + 4/(405*n) + 46/(25515*n*n) + 131/(1148175*n*n*n)
}

// sersicIntensity evaluates the Sersic law at circularised radius r.
func sersicIntensity(r, intensity, effectiveRadius, index float64) float64 {
	return intensity * math.Exp(-sersicB(index)*(math.Pow(r/effectiveRadius, 1/index)-1))
}

// SersicSph is the spherical Sersic profile. The intensity at the effective
// radius equals Intensity by construction.
type SersicSph struct {
	Centre          geom.Coord `json:"centre"`
	Intensity       float64    `json:"intensity"`
	EffectiveRadius float64    `json:"effective_radius"`
	SersicIndex     float64    `json:"sersic_index"`
}

func (p SersicSph) IntensityAt(c geom.Coord) float64 {
	r := c.Sub(p.Centre).Radius()
	return sersicIntensity(r, p.Intensity, p.EffectiveRadius, p.SersicIndex)
}

// Sersic is the elliptical Sersic profile. The radius entering the Sersic law
// is the circularised elliptical radius sqrt(q) * sqrt(x'^2 + (y'/q)^2), which
// preserves the enclosed area of isophotes as the axis ratio changes.
type Sersic struct {
	Centre          geom.Coord `json:"centre"`
	EllComps        [2]float64 `json:"ell_comps"`
	Intensity       float64    `json:"intensity"`
	EffectiveRadius float64    `json:"effective_radius"`
	SersicIndex     float64    `json:"sersic_index"`
}

func (p Sersic) IntensityAt(c geom.Coord) float64 {
	q, angle := AxisRatioAngle(p.EllComps[0], p.EllComps[1])
	y, x, _, _ := toProfileFrame(c, p.Centre, angle)
	r := math.Sqrt(q) * math.Sqrt(x*x+(y/q)*(y/q))
	return sersicIntensity(r, p.Intensity, p.EffectiveRadius, p.SersicIndex)
}

// Exponential is the Sersic profile with index fixed at 1, the standard model
// for galactic disks.
type Exponential struct {
	Centre          geom.Coord `json:"centre"`
	EllComps        [2]float64 `json:"ell_comps"`
	Intensity       float64    `json:"intensity"`
	EffectiveRadius float64    `json:"effective_radius"`
}

func (p Exponential) IntensityAt(c geom.Coord) float64 {
	return Sersic{
		Centre:          p.Centre,
		EllComps:        p.EllComps,
		Intensity:       p.Intensity,
		EffectiveRadius: p.EffectiveRadius,
		SersicIndex:     1,
	}.IntensityAt(c)
}
