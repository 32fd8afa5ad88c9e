// Package dataset owns point-source datasets: the observed multiple-image
// positions and fluxes of lensed point sources, with their noise values.
//
// Datasets persist as JSON dictionaries keyed by point-source name, the same
// shape the reference point_dict.json files use.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/skcajs/autolens/internal/geom"
)

// PointDataset holds the observations of one named point source.
type PointDataset struct {
	Name          string       `json:"name"`
	Positions     []geom.Coord `json:"positions"`
	PositionNoise []float64    `json:"positions_noise_map"`
	Fluxes        []float64    `json:"fluxes,omitempty"`
	FluxNoise     []float64    `json:"fluxes_noise_map,omitempty"`
}

// Validate checks internal consistency: every position needs a noise value,
// and fluxes, when present, need one noise value each.
func (d PointDataset) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("point dataset has no name")
	}
	if len(d.Positions) == 0 {
		return fmt.Errorf("point dataset %q has no positions", d.Name)
	}
	if len(d.PositionNoise) != len(d.Positions) {
		return fmt.Errorf("point dataset %q: %d positions but %d noise values",
			d.Name, len(d.Positions), len(d.PositionNoise))
	}
	if len(d.Fluxes) != 0 && len(d.FluxNoise) != len(d.Fluxes) {
		return fmt.Errorf("point dataset %q: %d fluxes but %d flux noise values",
			d.Name, len(d.Fluxes), len(d.FluxNoise))
	}
	for i, p := range d.Positions {
		if !p.IsFinite() {
			return fmt.Errorf("point dataset %q: position %d is not finite", d.Name, i)
		}
	}
	return nil
}

// PointDict is a collection of point datasets keyed by name.
type PointDict map[string]PointDataset

// Names returns the dataset names in sorted order.
func (pd PointDict) Names() []string {
	names := make([]string, 0, len(pd))
	for name := range pd {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadPointDict reads a point dictionary from a JSON file and validates every
// entry.
func LoadPointDict(path string) (PointDict, error) {
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read point dict: %w", err)
	}

	var pd PointDict
	if err := json.Unmarshal(data, &pd); err != nil {
		return nil, fmt.Errorf("failed to parse point dict JSON: %w", err)
	}
	for name, ds := range pd {
		if ds.Name == "" {
			ds.Name = name
			pd[name] = ds
		}
		if err := pd[name].Validate(); err != nil {
			return nil, err
		}
	}
	return pd, nil
}

// Save writes the point dictionary as indented JSON.
func (pd PointDict) Save(path string) error {
	data, err := json.MarshalIndent(pd, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode point dict: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write point dict: %w", err)
	}
	return nil
}
