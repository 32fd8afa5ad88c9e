package profiles

import (
	"math"

	"github.com/skcajs/autolens/internal/geom"
)

// MassProfile is the capability interface of a deflector component. The
// deflection is the reduced deflection angle in arcseconds; the convergence
// is the dimensionless surface mass density.
type MassProfile interface {
	DeflectionAt(c geom.Coord) geom.Coord
	ConvergenceAt(c geom.Coord) float64
}

// IsothermalSph is the singular isothermal sphere (SIS). Its deflection has
// constant magnitude EinsteinRadius, directed radially away from the centre.
type IsothermalSph struct {
	Centre         geom.Coord `json:"centre"`
	EinsteinRadius float64    `json:"einstein_radius"`
}

// DeflectionAt returns the SIS deflection. At the exact centre the deflection
// is undefined and non-finite components are returned.
func (p IsothermalSph) DeflectionAt(c geom.Coord) geom.Coord {
	d := c.Sub(p.Centre)
	r := d.Radius()
	if r == 0 {
		return geom.Coord{Y: math.NaN(), X: math.NaN()}
	}
	return d.Scale(p.EinsteinRadius / r)
}

// ConvergenceAt returns kappa = theta_E / (2 r).
func (p IsothermalSph) ConvergenceAt(c geom.Coord) float64 {
	r := c.Sub(p.Centre).Radius()
	return p.EinsteinRadius / (2 * r)
}

// Isothermal is the singular isothermal ellipsoid (SIE), parameterised by
// elliptical components (e1, e2). Deflections use the analytic Kormann
// solution; the Einstein radius convention reduces to the SIS radius as the
// axis ratio approaches 1.
type Isothermal struct {
	Centre         geom.Coord `json:"centre"`
	EllComps       [2]float64 `json:"ell_comps"`
	EinsteinRadius float64    `json:"einstein_radius"`
}

// axisRatioThreshold is the axis ratio above which the SIE deflection is
// numerically unstable (the 1/sqrt(1-q^2) prefactor) and the profile falls
// back to the spherical solution.
const axisRatioThreshold = 0.9999

func (p Isothermal) DeflectionAt(c geom.Coord) geom.Coord {
	q, angle := AxisRatioAngle(p.EllComps[0], p.EllComps[1])
	if q > axisRatioThreshold {
		return IsothermalSph{Centre: p.Centre, EinsteinRadius: p.EinsteinRadius}.DeflectionAt(c)
	}

	y, x, sinPhi, cosPhi := toProfileFrame(c, p.Centre, angle)
	psi := math.Sqrt(q*q*x*x + y*y)
	if psi == 0 {
		return geom.Coord{Y: math.NaN(), X: math.NaN()}
	}

	e := math.Sqrt(1 - q*q)
	norm := p.EinsteinRadius * math.Sqrt(q) / e
	ax := norm * math.Atan(e*x/psi)
	ay := norm * math.Atanh(e*y/psi)
	return fromProfileFrame(ay, ax, sinPhi, cosPhi)
}

func (p Isothermal) ConvergenceAt(c geom.Coord) float64 {
	q, angle := AxisRatioAngle(p.EllComps[0], p.EllComps[1])
	y, x, _, _ := toProfileFrame(c, p.Centre, angle)
	psi := math.Sqrt(q*q*x*x + y*y)
	return p.EinsteinRadius * math.Sqrt(q) / (2 * psi)
}

// PowerLawSph is a spherical power-law density profile with 3D slope Slope.
// Slope = 2 recovers the isothermal sphere. The deflection magnitude is
// theta_E * (r / theta_E)^(2 - Slope), so it equals the Einstein radius on
// the Einstein ring for every slope.
type PowerLawSph struct {
	Centre         geom.Coord `json:"centre"`
	EinsteinRadius float64    `json:"einstein_radius"`
	Slope          float64    `json:"slope"`
}

func (p PowerLawSph) DeflectionAt(c geom.Coord) geom.Coord {
	d := c.Sub(p.Centre)
	r := d.Radius()
	if r == 0 {
		return geom.Coord{Y: math.NaN(), X: math.NaN()}
	}
	alpha := p.EinsteinRadius * math.Pow(r/p.EinsteinRadius, 2-p.Slope)
	return d.Scale(alpha / r)
}

func (p PowerLawSph) ConvergenceAt(c geom.Coord) float64 {
	r := c.Sub(p.Centre).Radius()
	return (3 - p.Slope) / 2 * math.Pow(p.EinsteinRadius/r, p.Slope-1)
}

// ExternalShear models the tidal field of structure outside the modelled
// galaxies as a uniform shear (gamma1, gamma2). It has zero convergence.
type ExternalShear struct {
	Gamma1 float64 `json:"gamma_1"`
	Gamma2 float64 `json:"gamma_2"`
}

func (p ExternalShear) DeflectionAt(c geom.Coord) geom.Coord {
	return geom.Coord{
		Y: p.Gamma2*c.X - p.Gamma1*c.Y,
		X: p.Gamma1*c.X + p.Gamma2*c.Y,
	}
}

func (p ExternalShear) ConvergenceAt(geom.Coord) float64 { return 0 }
