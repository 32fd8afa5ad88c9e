package profiles

import (
	"math"

	"github.com/skcajs/autolens/internal/geom"
)

// EllComps converts an axis ratio q in (0, 1] and a position angle in degrees
// (counter-clockwise from the positive x-axis) into the elliptical component
// pair (e1, e2) used to parameterise elliptical profiles:
//
//	fac = (1 - q) / (1 + q)
//	e1 = fac * sin(2*angle), e2 = fac * cos(2*angle)
func EllComps(axisRatio, angleDeg float64) (e1, e2 float64) {
	fac := (1 - axisRatio) / (1 + axisRatio)
	phi := 2 * angleDeg * math.Pi / 180
	return fac * math.Sin(phi), fac * math.Cos(phi)
}

// AxisRatioAngle is the inverse of EllComps. The angle is returned in degrees
// in (-90, 90].
func AxisRatioAngle(e1, e2 float64) (axisRatio, angleDeg float64) {
	fac := math.Hypot(e1, e2)
	axisRatio = (1 - fac) / (1 + fac)
	angleDeg = 0.5 * math.Atan2(e1, e2) * 180 / math.Pi
	return axisRatio, angleDeg
}

// toProfileFrame shifts a coordinate to be relative to the profile centre and
// rotates it so the profile major axis lies along x. Returns the rotated
// (y', x') pair plus the sin/cos of the rotation for mapping vectors back.
func toProfileFrame(c, centre geom.Coord, angleDeg float64) (y, x, sinPhi, cosPhi float64) {
	d := c.Sub(centre)
	phi := angleDeg * math.Pi / 180
	sinPhi, cosPhi = math.Sin(phi), math.Cos(phi)
	x = d.X*cosPhi + d.Y*sinPhi
	y = -d.X*sinPhi + d.Y*cosPhi
	return y, x, sinPhi, cosPhi
}

// fromProfileFrame rotates a vector computed in the profile frame back to the
// sky frame.
func fromProfileFrame(y, x, sinPhi, cosPhi float64) geom.Coord {
	return geom.Coord{
		Y: x*sinPhi + y*cosPhi,
		X: x*cosPhi - y*sinPhi,
	}
}
