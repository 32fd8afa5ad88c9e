// Package modelspec decodes lens-system descriptions from JSON: mass and
// light profiles, galaxies with redshifts, and the image-plane grid. The
// API and command-line tools share this format.
//
// The profile set is closed. Every profile carries a "type" tag and decodes
// to one concrete implementation; unknown tags are rejected rather than
// skipped so malformed models fail loudly.
package modelspec

import (
	"encoding/json"
	"fmt"

	"github.com/skcajs/autolens/internal/cosmo"
	"github.com/skcajs/autolens/internal/geom"
	"github.com/skcajs/autolens/internal/profiles"
	"github.com/skcajs/autolens/internal/tracer"
)

// MassProfileSpec is the JSON form of one mass profile.
type MassProfileSpec struct {
	Type           string     `json:"type"`
	Centre         geom.Coord `json:"centre"`
	EllComps       [2]float64 `json:"ell_comps,omitempty"`
	EinsteinRadius float64    `json:"einstein_radius,omitempty"`
	Slope          float64    `json:"slope,omitempty"`
	Gamma1         float64    `json:"gamma_1,omitempty"`
	Gamma2         float64    `json:"gamma_2,omitempty"`
}

// Build returns the mass profile this spec describes.
func (s MassProfileSpec) Build() (profiles.MassProfile, error) {
	switch s.Type {
	case "isothermal":
		return profiles.Isothermal{
			Centre:         s.Centre,
			EllComps:       s.EllComps,
			EinsteinRadius: s.EinsteinRadius,
		}, nil
	case "isothermal_sph":
		return profiles.IsothermalSph{
			Centre:         s.Centre,
			EinsteinRadius: s.EinsteinRadius,
		}, nil
	case "power_law_sph":
		slope := s.Slope
		if slope == 0 {
			slope = 2.0 // isothermal
		}
		return profiles.PowerLawSph{
			Centre:         s.Centre,
			EinsteinRadius: s.EinsteinRadius,
			Slope:          slope,
		}, nil
	case "external_shear":
		return profiles.ExternalShear{Gamma1: s.Gamma1, Gamma2: s.Gamma2}, nil
	default:
		return nil, fmt.Errorf("unknown mass profile type %q", s.Type)
	}
}

// LightProfileSpec is the JSON form of one light profile.
type LightProfileSpec struct {
	Type            string     `json:"type"`
	Centre          geom.Coord `json:"centre"`
	EllComps        [2]float64 `json:"ell_comps,omitempty"`
	Intensity       float64    `json:"intensity"`
	EffectiveRadius float64    `json:"effective_radius"`
	SersicIndex     float64    `json:"sersic_index,omitempty"`
}

// Build returns the light profile this spec describes.
func (s LightProfileSpec) Build() (profiles.LightProfile, error) {
	switch s.Type {
	case "sersic":
		return profiles.Sersic{
			Centre:          s.Centre,
			EllComps:        s.EllComps,
			Intensity:       s.Intensity,
			EffectiveRadius: s.EffectiveRadius,
			SersicIndex:     s.SersicIndex,
		}, nil
	case "sersic_sph":
		return profiles.SersicSph{
			Centre:          s.Centre,
			Intensity:       s.Intensity,
			EffectiveRadius: s.EffectiveRadius,
			SersicIndex:     s.SersicIndex,
		}, nil
	case "exponential":
		return profiles.Exponential{
			Centre:          s.Centre,
			EllComps:        s.EllComps,
			Intensity:       s.Intensity,
			EffectiveRadius: s.EffectiveRadius,
		}, nil
	default:
		return nil, fmt.Errorf("unknown light profile type %q", s.Type)
	}
}

// PointSpec is the JSON form of a point source. Flux 0 means positions only.
type PointSpec struct {
	Centre geom.Coord `json:"centre"`
	Flux   float64    `json:"flux,omitempty"`
}

// GalaxySpec is the JSON form of one galaxy.
type GalaxySpec struct {
	Redshift float64            `json:"redshift"`
	Mass     []MassProfileSpec  `json:"mass,omitempty"`
	Light    []LightProfileSpec `json:"light,omitempty"`
	Point    *PointSpec         `json:"point,omitempty"`
}

// Build returns the galaxy this spec describes.
func (s GalaxySpec) Build() (tracer.Galaxy, error) {
	g := tracer.Galaxy{Redshift: s.Redshift}
	for i, ms := range s.Mass {
		p, err := ms.Build()
		if err != nil {
			return tracer.Galaxy{}, fmt.Errorf("mass profile %d: %w", i, err)
		}
		g.Mass = append(g.Mass, p)
	}
	for i, ls := range s.Light {
		p, err := ls.Build()
		if err != nil {
			return tracer.Galaxy{}, fmt.Errorf("light profile %d: %w", i, err)
		}
		g.Light = append(g.Light, p)
	}
	if s.Point != nil {
		g.Point = &profiles.PointFlux{Centre: s.Point.Centre, Flux: s.Point.Flux}
	}
	return g, nil
}

// GridSpec is the JSON form of the image-plane grid.
type GridSpec struct {
	Rows       int     `json:"rows"`
	Cols       int     `json:"cols"`
	PixelScale float64 `json:"pixel_scale"`
}

// Build returns the grid this spec describes.
func (s GridSpec) Build() (geom.Grid, error) {
	return geom.Uniform(s.Rows, s.Cols, s.PixelScale)
}

// ModelSpec is a complete lens system: its galaxies plus an optional grid
// override.
type ModelSpec struct {
	Galaxies []GalaxySpec `json:"galaxies"`
	Grid     *GridSpec    `json:"grid,omitempty"`
}

// Parse decodes a model from JSON.
func Parse(data []byte) (ModelSpec, error) {
	var m ModelSpec
	if err := json.Unmarshal(data, &m); err != nil {
		return ModelSpec{}, fmt.Errorf("failed to parse model JSON: %w", err)
	}
	if len(m.Galaxies) == 0 {
		return ModelSpec{}, fmt.Errorf("model has no galaxies")
	}
	return m, nil
}

// Tracer builds the tracer for this model under the given cosmology.
func (m ModelSpec) Tracer(cosmology cosmo.Cosmology) (*tracer.Tracer, error) {
	galaxies := make([]tracer.Galaxy, 0, len(m.Galaxies))
	for i, gs := range m.Galaxies {
		g, err := gs.Build()
		if err != nil {
			return nil, fmt.Errorf("galaxy %d: %w", i, err)
		}
		galaxies = append(galaxies, g)
	}
	return tracer.New(cosmology, galaxies...)
}
