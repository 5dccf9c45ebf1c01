package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/pitchlab/formations/internal/monitoring"
	"github.com/pitchlab/formations/internal/pitch"
	"github.com/pitchlab/formations/internal/pitch/occupancy"
	"github.com/pitchlab/formations/internal/pitch/roles"
)

// TeamReport summarizes one factorized team unit. The Model carries the
// dense factor matrices for rendering and is excluded from the JSON
// report.
type TeamReport struct {
	MatchID       string   `json:"match_id"`
	Title         string   `json:"title,omitempty"`
	Side          string   `json:"side"`
	Formation     string   `json:"formation"`
	Slots         []string `json:"slots,omitempty"`
	Players       int      `json:"players"`
	Frames        int      `json:"frames"`
	Divergence    float64  `json:"divergence"`
	Converged     bool     `json:"converged"`
	Iterations    int      `json:"iterations"`
	DominantRoles []int    `json:"dominant_roles"`

	Model *roles.Model `json:"-"`
}

// Report is the run-level output written as report.json.
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`

	CellSize float64 `json:"cell_size"`
	Sigma    float64 `json:"sigma"`
	Roles    int     `json:"roles"`
	MaxIter  int     `json:"max_iter"`
	Seed     int64   `json:"seed"`
	GridNX   int     `json:"grid_nx"`
	GridNY   int     `json:"grid_ny"`

	Formations     []FormationCount `json:"formations"`
	Teams          []TeamReport     `json:"teams"`
	Failures       []UnitFailure    `json:"failures,omitempty"`
	MeanDivergence float64          `json:"mean_divergence"`
}

// Run executes the full batch: collect permuted units, build one
// occupancy matrix per unit, and factorize each into latent roles.
// Numerical failures abort the unit, not the run.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	col, err := p.Collect(ctx)
	if err != nil {
		return nil, err
	}

	grid, err := occupancy.NewGrid(pitch.StandardPitch, p.cfg.CellSize)
	if err != nil {
		return nil, err
	}
	params := roles.Params{
		Roles:   p.cfg.Roles,
		MaxIter: p.cfg.MaxIter,
		Tol:     p.cfg.Tol,
		Seed:    p.cfg.Seed,
	}

	report := &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		CellSize:    p.cfg.CellSize,
		Sigma:       p.cfg.Sigma,
		Roles:       p.cfg.Roles,
		MaxIter:     p.cfg.MaxIter,
		Seed:        p.cfg.Seed,
		GridNX:      grid.NX,
		GridNY:      grid.NY,
		Formations:  col.Census(),
		Failures:    col.Failures,
	}

	var divergences []float64
	for _, unit := range col.Units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(unit.Frames) == 0 {
			report.Failures = append(report.Failures,
				UnitFailure{MatchID: unit.MatchID, Side: unit.Side.String(), Reason: "no frames"})
			continue
		}
		series := occupancy.SeriesFromFrames(unit.Frames)
		x, err := occupancy.BuildMatrix(ctx, series, grid, p.cfg.Sigma)
		if err != nil {
			return nil, err
		}
		model, err := roles.Extract(x, grid, params)
		if err != nil {
			report.Failures = append(report.Failures,
				UnitFailure{MatchID: unit.MatchID, Side: unit.Side.String(), Reason: err.Error()})
			monitoring.L().Warnw("factorization failed",
				"match", unit.MatchID, "side", unit.Side, "error", err)
			continue
		}
		monitoring.L().Infow("factorized unit",
			"match", unit.MatchID, "side", unit.Side, "formation", unit.Formation,
			"frames", len(unit.Frames), "divergence", model.Divergence,
			"converged", model.Converged, "iterations", model.Iterations)

		report.Teams = append(report.Teams, TeamReport{
			MatchID:       unit.MatchID,
			Title:         unit.Title,
			Side:          unit.Side.String(),
			Formation:     unit.Formation.String(),
			Slots:         unit.Slots,
			Players:       len(series),
			Frames:        len(unit.Frames),
			Divergence:    model.Divergence,
			Converged:     model.Converged,
			Iterations:    model.Iterations,
			DominantRoles: model.Dominant,
			Model:         model,
		})
		divergences = append(divergences, model.Divergence)
	}
	if len(divergences) > 0 {
		report.MeanDivergence = stat.Mean(divergences, nil)
	}
	return report, nil
}
