package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for tuning parameters.
// The schema matches the /api/solve request options so the same JSON can
// be used for both startup configuration and per-request overrides.
type TuningConfig struct {
	// Image-plane grid params
	GridRows       *int     `json:"grid_rows,omitempty"`
	GridCols       *int     `json:"grid_cols,omitempty"`
	GridPixelScale *float64 `json:"grid_pixel_scale,omitempty"` // arcsec per pixel

	// Solver params
	PixelScalePrecision *float64 `json:"pixel_scale_precision,omitempty"` // arcsec

	// Cosmology params
	HubbleConstant *float64 `json:"hubble_constant,omitempty"` // km/s/Mpc
	OmegaMatter    *float64 `json:"omega_matter,omitempty"`

	// Search params (optional)
	OptimizerMaxIterations *int     `json:"optimizer_max_iterations,omitempty"`
	SimulatePositionNoise  *float64 `json:"simulate_position_noise,omitempty"` // arcsec
	SimulateFluxNoise      *float64 `json:"simulate_flux_noise,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	// Validate the config file path.
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse JSON into empty config. The Get* methods provide fallback
	// defaults for any fields not specified in the JSON.
	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	// Try paths from current dir up to repo root
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.GridRows != nil && *c.GridRows < 1 {
		return fmt.Errorf("grid_rows must be positive, got %d", *c.GridRows)
	}
	if c.GridCols != nil && *c.GridCols < 1 {
		return fmt.Errorf("grid_cols must be positive, got %d", *c.GridCols)
	}
	if c.GridPixelScale != nil {
		if *c.GridPixelScale <= 0 || math.IsInf(*c.GridPixelScale, 0) || math.IsNaN(*c.GridPixelScale) {
			return fmt.Errorf("grid_pixel_scale must be positive and finite, got %f", *c.GridPixelScale)
		}
	}
	if c.PixelScalePrecision != nil {
		if *c.PixelScalePrecision <= 0 || math.IsInf(*c.PixelScalePrecision, 0) || math.IsNaN(*c.PixelScalePrecision) {
			return fmt.Errorf("pixel_scale_precision must be positive and finite, got %f", *c.PixelScalePrecision)
		}
	}
	if c.HubbleConstant != nil && *c.HubbleConstant <= 0 {
		return fmt.Errorf("hubble_constant must be positive, got %f", *c.HubbleConstant)
	}
	if c.OmegaMatter != nil {
		if *c.OmegaMatter < 0 || *c.OmegaMatter > 1 {
			return fmt.Errorf("omega_matter must be between 0 and 1, got %f", *c.OmegaMatter)
		}
	}
	if c.OptimizerMaxIterations != nil && *c.OptimizerMaxIterations < 1 {
		return fmt.Errorf("optimizer_max_iterations must be positive, got %d", *c.OptimizerMaxIterations)
	}
	return nil
}

// GetGridRows returns the grid_rows value or the default.
func (c *TuningConfig) GetGridRows() int {
	if c.GridRows == nil {
		return 100 // default
	}
	return *c.GridRows
}

// GetGridCols returns the grid_cols value or the default.
func (c *TuningConfig) GetGridCols() int {
	if c.GridCols == nil {
		return 100 // default
	}
	return *c.GridCols
}

// GetGridPixelScale returns the grid_pixel_scale value or the default.
func (c *TuningConfig) GetGridPixelScale() float64 {
	if c.GridPixelScale == nil {
		return 0.1 // default, arcsec per pixel
	}
	return *c.GridPixelScale
}

// GetPixelScalePrecision returns the pixel_scale_precision value or the default.
func (c *TuningConfig) GetPixelScalePrecision() float64 {
	if c.PixelScalePrecision == nil {
		return 0.025 // default, arcsec
	}
	return *c.PixelScalePrecision
}

// GetHubbleConstant returns the hubble_constant value or the default.
func (c *TuningConfig) GetHubbleConstant() float64 {
	if c.HubbleConstant == nil {
		return 67.74 // Planck 2015
	}
	return *c.HubbleConstant
}

// GetOmegaMatter returns the omega_matter value or the default.
func (c *TuningConfig) GetOmegaMatter() float64 {
	if c.OmegaMatter == nil {
		return 0.3075 // Planck 2015
	}
	return *c.OmegaMatter
}

// GetOptimizerMaxIterations returns the optimizer_max_iterations value or the default.
func (c *TuningConfig) GetOptimizerMaxIterations() int {
	if c.OptimizerMaxIterations == nil {
		return 200
	}
	return *c.OptimizerMaxIterations
}

// GetSimulatePositionNoise returns the simulate_position_noise value or the default.
func (c *TuningConfig) GetSimulatePositionNoise() float64 {
	if c.SimulatePositionNoise == nil {
		return 0.01
	}
	return *c.SimulatePositionNoise
}

// GetSimulateFluxNoise returns the simulate_flux_noise value or the default.
func (c *TuningConfig) GetSimulateFluxNoise() float64 {
	if c.SimulateFluxNoise == nil {
		return 0.05
	}
	return *c.SimulateFluxNoise
}
