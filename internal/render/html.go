package render

import (
	"fmt"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// viridis is the colour ramp for the visual maps.
var viridis = []string{
	"#440154", "#482777", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
}

// WriteHTML renders every role's filtered basis row as a heatmap on one
// self-contained HTML page. Bins removed by the presentation filter are
// omitted from the series entirely.
func WriteHTML(rows [][]float64, nx, ny int, title, path string) error {
	page := components.NewPage()
	page.PageTitle = title

	for k, row := range rows {
		if len(row) != nx*ny {
			return fmt.Errorf("role %d row has %d bins, grid is %dx%d", k, len(row), ny, nx)
		}
		data := make([]opts.HeatMapData, 0, len(row))
		maxV := 0.0
		for i, v := range row {
			if math.IsNaN(v) {
				continue
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{i % nx, i / nx, v}})
			if v > maxV {
				maxV = v
			}
		}
		if maxV == 0 {
			maxV = 1
		}

		hm := charts.NewHeatMap()
		hm.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "620px"}),
			charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("%s, role %d", title, k)}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
			charts.WithXAxisOpts(opts.XAxis{Type: "category"}),
			charts.WithYAxisOpts(opts.YAxis{Type: "category"}),
			charts.WithVisualMapOpts(opts.VisualMap{
				Calculable: opts.Bool(true),
				Min:        0,
				Max:        float32(maxV),
				InRange:    &opts.VisualMapInRange{Color: viridis},
			}),
		)
		hm.AddSeries("occupancy", data)
		page.AddCharts(hm)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create heatmap page: %w", err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		return fmt.Errorf("render heatmap page: %w", err)
	}
	return nil
}
