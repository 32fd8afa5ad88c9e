package geom

import "fmt"

// Grid is a finite ordered collection of 2D angular coordinates laid out on
// a uniform rectangular lattice. It is immutable once constructed.
//
// Coordinates run row-major from the top-left: row 0 has the largest y value
// and column 0 the smallest x value, matching the convention that grids are
// viewed as images of the sky with north up.
type Grid struct {
	rows       int
	cols       int
	pixelScale float64
	centre     Coord
}

// Uniform constructs a grid of shape (rows, cols) with the given pixel scale
// in arcseconds per pixel, centred on the origin.
func Uniform(rows, cols int, pixelScale float64) (Grid, error) {
	return UniformAt(rows, cols, pixelScale, Coord{})
}

// UniformAt constructs a grid of shape (rows, cols) with the given pixel
// scale, centred on the given coordinate.
func UniformAt(rows, cols int, pixelScale float64, centre Coord) (Grid, error) {
	if rows <= 0 || cols <= 0 {
		return Grid{}, fmt.Errorf("grid shape must be positive, got (%d, %d)", rows, cols)
	}
	if pixelScale <= 0 {
		return Grid{}, fmt.Errorf("grid pixel scale must be positive, got %v", pixelScale)
	}
	return Grid{rows: rows, cols: cols, pixelScale: pixelScale, centre: centre}, nil
}

// Shape returns the number of rows and columns.
func (g Grid) Shape() (rows, cols int) { return g.rows, g.cols }

// Len returns the total number of coordinates on the grid.
func (g Grid) Len() int { return g.rows * g.cols }

// PixelScale returns the angular size of one cell in arcseconds.
func (g Grid) PixelScale() float64 { return g.pixelScale }

// Centre returns the centre of the grid.
func (g Grid) Centre() Coord { return g.centre }

// At returns the coordinate of the cell centre at (row, col).
func (g Grid) At(row, col int) Coord {
	return Coord{
		Y: g.centre.Y + (float64(g.rows-1)/2-float64(row))*g.pixelScale,
		X: g.centre.X + (float64(col)-float64(g.cols-1)/2)*g.pixelScale,
	}
}

// Coords returns all cell-centre coordinates in row-major order.
func (g Grid) Coords() []Coord {
	out := make([]Coord, 0, g.rows*g.cols)
	for row := 0; row < g.rows; row++ {
		for col := 0; col < g.cols; col++ {
			out = append(out, g.At(row, col))
		}
	}
	return out
}

// SubGrid returns a finer grid covering the same angular extent, with every
// cell split into subSize x subSize sub-cells. A subSize of 1 returns the
// receiver unchanged.
func (g Grid) SubGrid(subSize int) (Grid, error) {
	if subSize < 1 {
		return Grid{}, fmt.Errorf("sub-grid size must be >= 1, got %d", subSize)
	}
	if subSize == 1 {
		return g, nil
	}
	return Grid{
		rows:       g.rows * subSize,
		cols:       g.cols * subSize,
		pixelScale: g.pixelScale / float64(subSize),
		centre:     g.centre,
	}, nil
}

// Extent returns the outer bounding box of the grid, i.e. the box enclosing
// every cell including the half-pixel border around the outermost centres.
func (g Grid) Extent() Bounds {
	halfH := float64(g.rows) * g.pixelScale / 2
	halfW := float64(g.cols) * g.pixelScale / 2
	return Bounds{
		MinY: g.centre.Y - halfH, MaxY: g.centre.Y + halfH,
		MinX: g.centre.X - halfW, MaxX: g.centre.X + halfW,
	}
}
