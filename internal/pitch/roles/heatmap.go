package roles

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/pitchlab/formations/internal/pitch"
)

// FilterMode selects which presentation filter trims a basis row. The
// modes are mutually exclusive; exactly one applies per call.
type FilterMode int

const (
	// FilterNone keeps every bin.
	FilterNone FilterMode = iota
	// FilterThreshold drops entries below an absolute value.
	FilterThreshold
	// FilterTopK keeps only the K largest entries; ties at the cut are
	// retained.
	FilterTopK
	// FilterPercentile keeps entries at or above a percentile computed
	// over the strictly positive entries only.
	FilterPercentile
)

// Filter describes one presentation filter.
type Filter struct {
	Mode       FilterMode
	Threshold  float64
	TopK       int
	Percentile float64 // 0-100
}

// Heatmap returns role k's basis row filtered for presentation. Bins
// removed by the filter become NaN, an explicit "no value" marker, never
// zero, since zero is itself a valid occupancy value. The row is laid out
// row-major over the model's grid shape (NY, NX).
func (m *Model) Heatmap(role int, f Filter) ([]float64, error) {
	k, l := m.B.Dims()
	if role < 0 || role >= k {
		return nil, fmt.Errorf("%w: role %d out of range [0,%d)", pitch.ErrConfiguration, role, k)
	}
	row := make([]float64, l)
	mat.Row(row, role, m.B)
	if err := applyFilter(row, f); err != nil {
		return nil, err
	}
	return row, nil
}

// Heatmaps filters every role's basis row.
func (m *Model) Heatmaps(f Filter) ([][]float64, error) {
	k, _ := m.B.Dims()
	out := make([][]float64, k)
	for role := 0; role < k; role++ {
		row, err := m.Heatmap(role, f)
		if err != nil {
			return nil, err
		}
		out[role] = row
	}
	return out, nil
}

func applyFilter(row []float64, f Filter) error {
	var cut float64
	switch f.Mode {
	case FilterNone:
		return nil
	case FilterThreshold:
		cut = f.Threshold
	case FilterTopK:
		if f.TopK < 1 {
			return fmt.Errorf("%w: top-k filter needs k >= 1, got %d", pitch.ErrConfiguration, f.TopK)
		}
		if f.TopK >= len(row) {
			return nil
		}
		cut = kthLargest(row, f.TopK)
	case FilterPercentile:
		if f.Percentile < 0 || f.Percentile > 100 {
			return fmt.Errorf("%w: percentile must be in [0,100], got %v", pitch.ErrConfiguration, f.Percentile)
		}
		var pos []float64
		for _, v := range row {
			if v > 0 {
				pos = append(pos, v)
			}
		}
		if len(pos) == 0 {
			return nil // nothing positive: keep the row as is
		}
		cut = percentile(pos, f.Percentile)
	default:
		return fmt.Errorf("%w: unknown filter mode %d", pitch.ErrConfiguration, f.Mode)
	}
	for i, v := range row {
		if v < cut {
			row[i] = math.NaN()
		}
	}
	return nil
}

// kthLargest returns the k-th largest value of row.
func kthLargest(row []float64, k int) float64 {
	s := append([]float64(nil), row...)
	sort.Sort(sort.Reverse(sort.Float64Slice(s)))
	return s[k-1]
}

// percentile computes the q-th percentile (0-100) with linear
// interpolation between order statistics.
func percentile(values []float64, q float64) float64 {
	s := append([]float64(nil), values...)
	sort.Float64s(s)
	if len(s) == 1 {
		return s[0]
	}
	pos := q / 100 * float64(len(s)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if hi >= len(s) {
		hi = len(s) - 1
	}
	return s[lo] + (pos-float64(lo))*(s[hi]-s[lo])
}
