// Package render draws role heatmaps: per-role PNG files via gonum/plot
// and a standalone HTML page via go-echarts. Input rows are
// presentation-filtered basis rows; bins carrying NaN have been removed
// by the filter and are not drawn.
package render

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// basisGrid adapts a flattened row-major role row to plotter.GridXYZ.
type basisGrid struct {
	values []float64
	nx, ny int
	cell   float64
}

func (g basisGrid) Dims() (int, int) { return g.nx, g.ny }
func (g basisGrid) Z(c, r int) float64 {
	return g.values[r*g.nx+c]
}
func (g basisGrid) X(c int) float64 { return (float64(c) + 0.5) * g.cell }
func (g basisGrid) Y(r int) float64 { return (float64(r) + 0.5) * g.cell }

// WritePNG renders one role's filtered basis row as a heatmap PNG.
func WritePNG(values []float64, nx, ny int, cellSize float64, title, path string) error {
	if len(values) != nx*ny {
		return fmt.Errorf("row has %d bins, grid is %dx%d", len(values), ny, nx)
	}
	finite := 0
	for _, v := range values {
		if !math.IsNaN(v) {
			finite++
		}
	}
	if finite == 0 {
		return fmt.Errorf("heatmap %q has no retained bins", title)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"

	h := plotter.NewHeatMap(basisGrid{values: values, nx: nx, ny: ny, cell: cellSize}, palette.Heat(12, 1))
	p.Add(h)

	if err := p.Save(7*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save heatmap: %w", err)
	}
	return nil
}
