package roles

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/pitchlab/formations/internal/pitch"
)

func heatmapModel() *Model {
	return &Model{B: mat.NewDense(2, 6, []float64{
		0.5, 0.3, 0.3, 0.1, 0.0, 0.05,
		0.0, 0.0, 0.2, 0.2, 0.4, 0.2,
	})}
}

// keptMask reports which bins survived the filter.
func keptMask(row []float64) []bool {
	out := make([]bool, len(row))
	for i, v := range row {
		out[i] = !math.IsNaN(v)
	}
	return out
}

func TestHeatmap_NoneReturnsCopy(t *testing.T) {
	m := heatmapModel()
	row, err := m.Heatmap(0, Filter{Mode: FilterNone})
	if err != nil {
		t.Fatal(err)
	}
	row[0] = 99
	if m.B.At(0, 0) != 0.5 {
		t.Error("heatmap must not alias the basis matrix")
	}
}

func TestHeatmap_RoleOutOfRange(t *testing.T) {
	m := heatmapModel()
	for _, role := range []int{-1, 2} {
		if _, err := m.Heatmap(role, Filter{}); !errors.Is(err, pitch.ErrConfiguration) {
			t.Errorf("role %d: expected ErrConfiguration, got %v", role, err)
		}
	}
}

func TestHeatmap_Threshold(t *testing.T) {
	m := heatmapModel()
	row, err := m.Heatmap(0, Filter{Mode: FilterThreshold, Threshold: 0.3})
	if err != nil {
		t.Fatal(err)
	}
	want := []bool{true, true, true, false, false, false}
	for i, kept := range keptMask(row) {
		if kept != want[i] {
			t.Errorf("bin %d kept = %v, want %v (value at the cutoff stays)", i, kept, want[i])
		}
	}
	if row[3] == 0 {
		t.Error("removed bins must be NaN, not zero")
	}
}

func TestHeatmap_TopKRetainsTies(t *testing.T) {
	m := heatmapModel()
	// Role 0 sorted: 0.5, 0.3, 0.3, 0.1, 0.05, 0. K=2 cuts at 0.3 and
	// both 0.3 bins stay.
	row, err := m.Heatmap(0, Filter{Mode: FilterTopK, TopK: 2})
	if err != nil {
		t.Fatal(err)
	}
	want := []bool{true, true, true, false, false, false}
	for i, kept := range keptMask(row) {
		if kept != want[i] {
			t.Errorf("bin %d kept = %v, want %v", i, kept, want[i])
		}
	}
}

func TestHeatmap_TopKValidation(t *testing.T) {
	m := heatmapModel()
	if _, err := m.Heatmap(0, Filter{Mode: FilterTopK, TopK: 0}); !errors.Is(err, pitch.ErrConfiguration) {
		t.Errorf("k=0: expected ErrConfiguration, got %v", err)
	}
	row, err := m.Heatmap(0, Filter{Mode: FilterTopK, TopK: 100})
	if err != nil {
		t.Fatal(err)
	}
	for i, kept := range keptMask(row) {
		if !kept {
			t.Errorf("k >= len keeps everything, bin %d dropped", i)
		}
	}
}

func TestHeatmap_PercentileIgnoresNonPositive(t *testing.T) {
	m := heatmapModel()
	// Role 1 positives: 0.2, 0.2, 0.2, 0.4. The 50th percentile of the
	// positives is 0.2, so the zeros drop and every positive bin stays.
	row, err := m.Heatmap(1, Filter{Mode: FilterPercentile, Percentile: 50})
	if err != nil {
		t.Fatal(err)
	}
	want := []bool{false, false, true, true, true, true}
	for i, kept := range keptMask(row) {
		if kept != want[i] {
			t.Errorf("bin %d kept = %v, want %v", i, kept, want[i])
		}
	}
}

func TestHeatmap_PercentileValidation(t *testing.T) {
	m := heatmapModel()
	for _, q := range []float64{-1, 101} {
		if _, err := m.Heatmap(0, Filter{Mode: FilterPercentile, Percentile: q}); !errors.Is(err, pitch.ErrConfiguration) {
			t.Errorf("q=%v: expected ErrConfiguration, got %v", q, err)
		}
	}
}

func TestHeatmap_PercentileAllZeroRow(t *testing.T) {
	m := &Model{B: mat.NewDense(1, 4, []float64{0, 0, 0, 0})}
	row, err := m.Heatmap(0, Filter{Mode: FilterPercentile, Percentile: 90})
	if err != nil {
		t.Fatal(err)
	}
	for i, kept := range keptMask(row) {
		if !kept {
			t.Errorf("a row with no positive entries stays unfiltered, bin %d dropped", i)
		}
	}
}

func TestHeatmaps(t *testing.T) {
	m := heatmapModel()
	maps, err := m.Heatmaps(Filter{Mode: FilterThreshold, Threshold: 0.2})
	if err != nil {
		t.Fatal(err)
	}
	if len(maps) != 2 || len(maps[0]) != 6 {
		t.Fatalf("unexpected shape: %d rows", len(maps))
	}
}

func TestPercentile_LinearInterpolation(t *testing.T) {
	values := []float64{1, 2, 3, 4}
	cases := []struct {
		q    float64
		want float64
	}{
		{0, 1},
		{100, 4},
		{50, 2.5},
		{25, 1.75},
	}
	for _, c := range cases {
		if got := percentile(values, c.q); math.Abs(got-c.want) > 1e-12 {
			t.Errorf("percentile(%v) = %v, want %v", c.q, got, c.want)
		}
	}
	if got := percentile([]float64{7}, 90); got != 7 {
		t.Errorf("single-element percentile = %v, want 7", got)
	}
}
