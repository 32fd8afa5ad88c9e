// Command solve locates the multiple images of a lensed point source for a
// model described in a JSON file, printing the image-plane positions and
// optionally writing a figure.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/skcajs/autolens/internal/config"
	"github.com/skcajs/autolens/internal/cosmo"
	"github.com/skcajs/autolens/internal/geom"
	"github.com/skcajs/autolens/internal/modelspec"
	"github.com/skcajs/autolens/internal/plotting"
	"github.com/skcajs/autolens/internal/pointsolver"
	"github.com/skcajs/autolens/internal/units"
)

var (
	modelPath  = flag.String("model", "", "Path to the model JSON file (required)")
	configPath = flag.String("config", "", "Path to a tuning config JSON file")
	plotPath   = flag.String("plot", "", "Write a PNG figure of the solution to this path")
	jsonOut    = flag.Bool("json", false, "Print the result as JSON instead of text")
	outUnits   = flag.String("units", units.Arcsec, "Angular units for printed positions")
)

func main() {
	flag.Parse()
	if *modelPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	if !units.IsValid(*outUnits) {
		log.Fatalf("Invalid units %q (valid: %s)", *outUnits, units.GetValidUnitsString())
	}

	cfg := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	data, err := os.ReadFile(*modelPath)
	if err != nil {
		log.Fatalf("Failed to read model file: %v", err)
	}
	model, err := modelspec.Parse(data)
	if err != nil {
		log.Fatalf("Failed to parse model: %v", err)
	}

	cosmology := cosmo.Cosmology{H0: cfg.GetHubbleConstant(), OmegaM: cfg.GetOmegaMatter()}
	tr, err := model.Tracer(cosmology)
	if err != nil {
		log.Fatalf("Failed to build tracer: %v", err)
	}
	point, ok := tr.SourcePoint()
	if !ok {
		log.Fatal("Model has no point source to solve for")
	}

	var g geom.Grid
	if model.Grid != nil {
		g, err = model.Grid.Build()
	} else {
		g, err = geom.Uniform(cfg.GetGridRows(), cfg.GetGridCols(), cfg.GetGridPixelScale())
	}
	if err != nil {
		log.Fatalf("Failed to build grid: %v", err)
	}

	solver, err := pointsolver.New(g, cfg.GetPixelScalePrecision())
	if err != nil {
		log.Fatalf("Failed to build solver: %v", err)
	}

	positions, err := solver.Solve(tr.TracedCoords, point.Centre)
	if err != nil {
		log.Fatalf("Solve failed: %v", err)
	}

	if *jsonOut {
		out := struct {
			Target    geom.Coord   `json:"target"`
			Positions []geom.Coord `json:"positions"`
		}{point.Centre, positions}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			log.Fatalf("Failed to encode output: %v", err)
		}
	} else {
		conv := func(v float64) float64 { return units.ConvertAngle(v, *outUnits) }
		fmt.Printf("source (%.4f, %.4f) %s -> %d image(s)\n",
			conv(point.Centre.Y), conv(point.Centre.X), *outUnits, len(positions))
		for _, p := range positions {
			fmt.Printf("  (%.4f, %.4f)  magnification %.3f\n",
				conv(p.Y), conv(p.X), tr.MagnificationAt(p))
		}
	}

	if *plotPath != "" {
		sp := plotting.SolutionPlot{
			Title:         "Point-source images",
			Grid:          g,
			Positions:     positions,
			Target:        &point.Centre,
			CriticalCurve: tr.CriticalCurvePoints(g),
		}
		if err := sp.Save(*plotPath); err != nil {
			log.Fatalf("Failed to write plot: %v", err)
		}
		fmt.Printf("wrote %s\n", *plotPath)
	}
}
