// Package plotting renders solver output as image-plane figures: the located
// multiple-image positions, the source-plane target, and optionally the
// tangential critical curve of the lens.
package plotting

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/skcajs/autolens/internal/geom"
)

// SolutionPlot holds everything one figure shows. CriticalCurve and Target
// may be empty.
type SolutionPlot struct {
	Title         string
	Grid          geom.Grid
	Positions     []geom.Coord
	Target        *geom.Coord
	CriticalCurve []geom.Coord
}

func coordsToXYs(coords []geom.Coord) plotter.XYs {
	pts := make(plotter.XYs, len(coords))
	for i, c := range coords {
		pts[i] = plotter.XY{X: c.X, Y: c.Y}
	}
	return pts
}

// Save renders the figure as a PNG at path.
func (sp SolutionPlot) Save(path string) error {
	p := plot.New()
	p.Title.Text = sp.Title
	p.X.Label.Text = "x (arcsec)"
	p.Y.Label.Text = "y (arcsec)"

	// Frame the axes on the grid extent so repeated runs are comparable.
	ext := sp.Grid.Extent()
	p.X.Min, p.X.Max = ext.MinX, ext.MaxX
	p.Y.Min, p.Y.Max = ext.MinY, ext.MaxY

	if len(sp.CriticalCurve) > 0 {
		crit, err := plotter.NewScatter(coordsToXYs(sp.CriticalCurve))
		if err != nil {
			return fmt.Errorf("critical curve scatter: %w", err)
		}
		crit.GlyphStyle.Color = color.RGBA{R: 180, G: 180, B: 180, A: 255}
		crit.GlyphStyle.Radius = vg.Points(1)
		p.Add(crit)
		p.Legend.Add("critical curve", crit)
	}

	if len(sp.Positions) > 0 {
		images, err := plotter.NewScatter(coordsToXYs(sp.Positions))
		if err != nil {
			return fmt.Errorf("image positions scatter: %w", err)
		}
		images.GlyphStyle.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
		images.GlyphStyle.Radius = vg.Points(4)
		p.Add(images)
		p.Legend.Add("images", images)
	}

	if sp.Target != nil {
		target, err := plotter.NewScatter(coordsToXYs([]geom.Coord{*sp.Target}))
		if err != nil {
			return fmt.Errorf("target scatter: %w", err)
		}
		target.GlyphStyle.Color = color.RGBA{R: 214, G: 39, B: 40, A: 255}
		target.GlyphStyle.Radius = vg.Points(3)
		target.GlyphStyle.Shape = draw.CrossGlyph{}
		p.Add(target)
		p.Legend.Add("source", target)
	}

	p.Legend.Top = true
	p.Legend.Left = false

	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}
