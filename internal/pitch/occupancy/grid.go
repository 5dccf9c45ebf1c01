// Package occupancy bins full-match player trajectories into smoothed
// spatial probability distributions and stacks them into the matrix the
// role factorization consumes.
package occupancy

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/pitchlab/formations/internal/pitch"
)

// Default analysis parameters.
const (
	DefaultCellSize = 5.0
	DefaultSigma    = 1.0
)

// Grid partitions a pitch bounding box into axis-aligned square cells.
// Rows are flattened row-major: index = yBin*NX + xBin, so the grid shape
// is (NY, NX).
type Grid struct {
	Bounds   pitch.Bounds
	CellSize float64
	NX, NY   int
}

// NewGrid builds a grid with cells of the given size. Dimensions are the
// ceiling of each axis extent over the cell size: a boundary-adjacent
// partial cell still counts as one full cell.
func NewGrid(b pitch.Bounds, cellSize float64) (Grid, error) {
	if cellSize <= 0 {
		return Grid{}, fmt.Errorf("cell size must be positive, got %v", cellSize)
	}
	if b.XMax <= b.XMin || b.YMax <= b.YMin {
		return Grid{}, fmt.Errorf("degenerate pitch bounds %+v", b)
	}
	return Grid{
		Bounds:   b,
		CellSize: cellSize,
		NX:       int(math.Ceil((b.XMax - b.XMin) / cellSize)),
		NY:       int(math.Ceil((b.YMax - b.YMin) / cellSize)),
	}, nil
}

// Bins returns the total bin count L.
func (g Grid) Bins() int { return g.NX * g.NY }

// binIndex maps a position to its flattened bin index. In-bounds and
// boundary coordinates clamp to the nearest valid bin: no sample is ever
// dropped for sitting exactly on a boundary, and the result is always in
// range.
func (g Grid) binIndex(p pitch.Position) int {
	xb := int((p.X - g.Bounds.XMin) / g.CellSize)
	if xb < 0 {
		xb = 0
	}
	if xb >= g.NX {
		xb = g.NX - 1
	}
	yb := int((p.Y - g.Bounds.YMin) / g.CellSize)
	if yb < 0 {
		yb = 0
	}
	if yb >= g.NY {
		yb = g.NY - 1
	}
	return yb*g.NX + xb
}

// Count bins one player's full-match series into raw per-bin counts.
// Instants where either coordinate is the missing marker are excluded
// entirely.
func (g Grid) Count(series []pitch.Position) []float64 {
	row := make([]float64, g.Bins())
	for _, p := range series {
		if p.IsMissing() {
			continue
		}
		row[g.binIndex(p)]++
	}
	return row
}

// Normalize divides a count row by its total, producing a probability
// mass function. This removes the effect of differing time on pitch. A
// row with no valid samples stays all-zero without an arithmetic error,
// and normalizing an already normalized row returns it unchanged.
func Normalize(row []float64) []float64 {
	out := append([]float64(nil), row...)
	total := floats.Sum(out)
	if total > 0 {
		floats.Scale(1/total, out)
	}
	return out
}

// Smooth applies isotropic gaussian smoothing with the given bandwidth in
// bin units and renormalizes to unit sum, since smoothing alone does not
// preserve it. Grid edges are handled by half-sample mirror reflection.
// The kernel is truncated at four bandwidths.
func (g Grid) Smooth(row []float64, sigma float64) []float64 {
	if sigma <= 0 {
		return Normalize(row)
	}
	kernel := gaussianKernel(sigma)
	radius := (len(kernel) - 1) / 2

	// Separable passes: horizontal into tmp, vertical into out.
	tmp := make([]float64, len(row))
	for y := 0; y < g.NY; y++ {
		for x := 0; x < g.NX; x++ {
			var acc float64
			for j := -radius; j <= radius; j++ {
				acc += kernel[j+radius] * row[y*g.NX+reflect(x+j, g.NX)]
			}
			tmp[y*g.NX+x] = acc
		}
	}
	out := make([]float64, len(row))
	for y := 0; y < g.NY; y++ {
		for x := 0; x < g.NX; x++ {
			var acc float64
			for j := -radius; j <= radius; j++ {
				acc += kernel[j+radius] * tmp[reflect(y+j, g.NY)*g.NX+x]
			}
			out[y*g.NX+x] = acc
		}
	}
	return Normalize(out)
}

// BuildRow produces one player's smoothed occupancy distribution: count,
// normalize, smooth.
func (g Grid) BuildRow(series []pitch.Position, sigma float64) []float64 {
	return g.Smooth(Normalize(g.Count(series)), sigma)
}

// BuildMatrix stacks one smoothed occupancy row per player into the N x L
// matrix X. Players are independent, so rows are computed in parallel;
// each goroutine owns exactly one row and row identity is fixed up front,
// keeping the output deterministic regardless of scheduling.
func BuildMatrix(ctx context.Context, series [][]pitch.Position, g Grid, sigma float64) (*mat.Dense, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("no player series to bin")
	}
	x := mat.NewDense(len(series), g.Bins(), nil)
	grp, ctx := errgroup.WithContext(ctx)
	for i := range series {
		i := i
		grp.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			x.SetRow(i, g.BuildRow(series[i], sigma))
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return x, nil
}

// SeriesFromFrames transposes a permuted frame sequence into per-column
// trajectories, one series per slot.
func SeriesFromFrames(frames []pitch.Frame) [][]pitch.Position {
	if len(frames) == 0 {
		return nil
	}
	n := len(frames[0])
	series := make([][]pitch.Position, n)
	for i := range series {
		series[i] = make([]pitch.Position, len(frames))
	}
	for t, f := range frames {
		for i := 0; i < n && i < len(f); i++ {
			series[i][t] = f[i]
		}
	}
	return series
}

func gaussianKernel(sigma float64) []float64 {
	radius := int(4*sigma + 0.5)
	k := make([]float64, 2*radius+1)
	for i := -radius; i <= radius; i++ {
		k[i+radius] = math.Exp(-0.5 * float64(i*i) / (sigma * sigma))
	}
	floats.Scale(1/floats.Sum(k), k)
	return k
}

// reflect maps an out-of-range index back into [0,n) by half-sample
// mirroring: -1 -> 0, n -> n-1.
func reflect(i, n int) int {
	for i < 0 || i >= n {
		if i < 0 {
			i = -i - 1
		}
		if i >= n {
			i = 2*n - 1 - i
		}
	}
	return i
}
