// Package webviz renders stored solver runs as browser-viewable ECharts
// scatter plots. These are debugging views; the PNG output in the plotting
// package is the publication path.
package webviz

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/skcajs/autolens/internal/db"
	"github.com/skcajs/autolens/internal/httputil"
)

type Server struct {
	db *db.DB
}

func NewServer(database *db.DB) *Server {
	return &Server{db: database}
}

// ServeMux returns the route table for the visualisation pages.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/viz/runs/", s.handleRunChart)
	mux.HandleFunc("/viz", s.handleLatestChart)
	return mux
}

// handleLatestChart renders the most recent run, or a 404 when the store is
// empty.
func (s *Server) handleLatestChart(w http.ResponseWriter, r *http.Request) {
	runs, err := s.db.ListLensRuns(1)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to list runs: %v", err))
		return
	}
	if len(runs) == 0 {
		httputil.NotFound(w, "no runs recorded yet")
		return
	}
	s.renderRunChart(w, runs[0])
}

func (s *Server) handleRunChart(w http.ResponseWriter, r *http.Request) {
	runID := strings.TrimPrefix(r.URL.Path, "/viz/runs/")
	if runID == "" || strings.Contains(runID, "/") {
		httputil.NotFound(w, "run not found")
		return
	}

	run, err := s.db.GetLensRun(runID)
	if errors.Is(err, sql.ErrNoRows) {
		httputil.NotFound(w, "run not found")
		return
	}
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to load run: %v", err))
		return
	}
	s.renderRunChart(w, run)
}

func (s *Server) renderRunChart(w http.ResponseWriter, run db.LensRun) {
	data := make([]opts.ScatterData, 0, len(run.Positions))
	maxAbs := 0.0
	for _, p := range run.Positions {
		if math.Abs(p.X) > maxAbs {
			maxAbs = math.Abs(p.X)
		}
		if math.Abs(p.Y) > maxAbs {
			maxAbs = math.Abs(p.Y)
		}
		data = append(data, opts.ScatterData{Value: []interface{}{p.X, p.Y}})
	}

	// Pad so edge points stay visible
	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1.0
	}

	subtitle := fmt.Sprintf("run=%s kind=%s images=%d", run.RunID, run.Kind, len(run.Positions))
	if run.Kind == "fit" {
		subtitle = fmt.Sprintf("%s chi2=%.3f logL=%.3f", subtitle, run.ChiSquared, run.LogLikelihood)
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Lens Images", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "Image-Plane Positions", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "x (arcsec)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "y (arcsec)", NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries("images", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
