package render

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func rampRow(nx, ny int) []float64 {
	row := make([]float64, nx*ny)
	for i := range row {
		row[i] = float64(i)
	}
	return row
}

func TestBasisGrid(t *testing.T) {
	g := basisGrid{values: rampRow(4, 3), nx: 4, ny: 3, cell: 5}
	c, r := g.Dims()
	if c != 4 || r != 3 {
		t.Fatalf("Dims = %d,%d", c, r)
	}
	if g.Z(1, 2) != 9 { // row 2, col 1 -> 2*4+1
		t.Errorf("Z(1,2) = %v, want 9", g.Z(1, 2))
	}
	if g.X(0) != 2.5 || g.Y(1) != 7.5 {
		t.Errorf("cell centers wrong: X(0)=%v Y(1)=%v", g.X(0), g.Y(1))
	}
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "role.png")
	if err := WritePNG(rampRow(4, 3), 4, 3, 5, "ramp", path); err != nil {
		t.Fatal(err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() == 0 {
		t.Error("empty PNG written")
	}
}

func TestWritePNG_Invalid(t *testing.T) {
	dir := t.TempDir()
	if err := WritePNG([]float64{1, 2}, 4, 3, 5, "short", filepath.Join(dir, "a.png")); err == nil {
		t.Error("length mismatch should be rejected")
	}
	allNaN := make([]float64, 12)
	for i := range allNaN {
		allNaN[i] = math.NaN()
	}
	if err := WritePNG(allNaN, 4, 3, 5, "empty", filepath.Join(dir, "b.png")); err == nil {
		t.Error("a fully filtered row cannot be drawn")
	}
}

func TestWriteHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "team.html")
	row := rampRow(4, 3)
	row[5] = math.NaN() // filtered bin must be skipped, not rendered
	if err := WriteHTML([][]float64{row, rampRow(4, 3)}, 4, 3, "Test Team", path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.Contains(content, "Test Team") {
		t.Error("page title missing")
	}
	if strings.Contains(content, "NaN") {
		t.Error("filtered bins leaked into the page")
	}
}

func TestWriteHTML_LengthMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.html")
	if err := WriteHTML([][]float64{{1, 2}}, 4, 3, "bad", path); err == nil {
		t.Error("length mismatch should be rejected")
	}
}
