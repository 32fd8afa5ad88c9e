// Package cosmo provides the flat Lambda-CDM background cosmology used to
// scale deflection angles between lens planes in multi-plane ray tracing.
//
// Distances are in megaparsecs and redshifts are dimensionless. Curvature is
// not modelled; the corpus of lens models this serves assumes flatness.
package cosmo

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
)

// SpeedOfLightKMS is the speed of light in km/s.
const SpeedOfLightKMS = 299792.458

// quadNodes is the fixed Gauss-Legendre node count for distance integrals.
// The integrand 1/E(z) is smooth, so a modest count is already converged to
// double precision over the redshift ranges of strong lenses.
const quadNodes = 64

// Cosmology is a flat Lambda-CDM background.
type Cosmology struct {
	H0     float64 // Hubble constant in km/s/Mpc
	OmegaM float64 // matter density parameter; dark energy is 1 - OmegaM
}

// Planck15 returns the Planck 2015 flat Lambda-CDM parameters, the default
// cosmology for lens modeling.
func Planck15() Cosmology {
	return Cosmology{H0: 67.74, OmegaM: 0.3075}
}

// HubbleDistance returns c/H0 in Mpc.
func (c Cosmology) HubbleDistance() float64 {
	return SpeedOfLightKMS / c.H0
}

// efunc is the dimensionless Hubble parameter E(z) = H(z)/H0.
func (c Cosmology) efunc(z float64) float64 {
	zp1 := 1 + z
	return math.Sqrt(c.OmegaM*zp1*zp1*zp1 + (1 - c.OmegaM))
}

// ComovingDistance returns the line-of-sight comoving distance to redshift z
// in Mpc.
func (c Cosmology) ComovingDistance(z float64) float64 {
	if z <= 0 {
		return 0
	}
	integral := quad.Fixed(func(z float64) float64 {
		return 1 / c.efunc(z)
	}, 0, z, quadNodes, nil, 0)
	return c.HubbleDistance() * integral
}

// AngularDiameterDistance returns the angular diameter distance to redshift z
// in Mpc.
func (c Cosmology) AngularDiameterDistance(z float64) float64 {
	return c.ComovingDistance(z) / (1 + z)
}

// AngularDiameterDistanceBetween returns the angular diameter distance from
// redshift z1 to z2 (z1 <= z2) in Mpc. For a flat universe this is the
// comoving distance difference divided by (1 + z2).
func (c Cosmology) AngularDiameterDistanceBetween(z1, z2 float64) float64 {
	if z2 <= z1 {
		return 0
	}
	return (c.ComovingDistance(z2) - c.ComovingDistance(z1)) / (1 + z2)
}

// ScalingFactor returns the multi-plane deflection scaling beta_ij for a
// deflector at zi acting on rays traced to plane zj, with the final source
// plane at zs. Deflections are stored reduced to the source plane, so the
// factor rescales them to the intermediate plane:
//
//	beta_ij = (D_ij * D_s) / (D_j * D_is)
//
// where D are angular diameter distances. When zj equals the source redshift
// the factor is exactly 1.
func (c Cosmology) ScalingFactor(zi, zj, zs float64) float64 {
	if zj >= zs {
		return 1
	}
	dij := c.AngularDiameterDistanceBetween(zi, zj)
	dis := c.AngularDiameterDistanceBetween(zi, zs)
	dj := c.AngularDiameterDistance(zj)
	ds := c.AngularDiameterDistance(zs)
	if dis == 0 || dj == 0 {
		return 0
	}
	return (dij * ds) / (dj * dis)
}
