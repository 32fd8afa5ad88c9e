// Package units provides shared constants and validation for angular units
package units

import "math"

// Unit constants
const (
	Arcsec = "arcsec"
	Mas    = "mas"
	Deg    = "deg"
	Rad    = "rad"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{Arcsec, Mas, Deg, Rad}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "arcsec, mas, deg, rad"
}

// ConvertAngle converts an angle from arcseconds to the target units.
// Grids and datasets store angles in arcseconds throughout.
func ConvertAngle(angleArcsec float64, targetUnits string) float64 {
	switch targetUnits {
	case Mas:
		return angleArcsec * 1000 // arcsec to milliarcsec
	case Deg:
		return angleArcsec / 3600 // arcsec to degrees
	case Rad:
		return angleArcsec / 3600 * math.Pi / 180 // arcsec to radians
	case Arcsec:
		return angleArcsec // no conversion needed
	default:
		return angleArcsec // default to arcsec if unknown unit
	}
}
