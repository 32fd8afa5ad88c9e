package profiles

import "github.com/skcajs/autolens/internal/geom"

// Point is a point source in the source plane. It has no extended emission;
// its observable consequence is the set of multiple images the position
// solver locates for its centre.
type Point struct {
	Centre geom.Coord `json:"centre"`
}

// IntensityAt is always zero: a point source contributes no surface
// brightness to an extended image.
func (p Point) IntensityAt(geom.Coord) float64 { return 0 }

// PointFlux is a point source with an unlensed flux. Each multiple image is
// observed with flux |magnification| * Flux.
type PointFlux struct {
	Centre geom.Coord `json:"centre"`
	Flux   float64    `json:"flux"`
}

// IntensityAt is always zero, as for Point.
func (p PointFlux) IntensityAt(geom.Coord) float64 { return 0 }
