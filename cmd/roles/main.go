// Command roles runs the full batch: it discovers DFL match files,
// permutes tracking frames into formation slot order, builds smoothed
// occupancy distributions, factorizes them into latent roles, and writes
// a JSON report plus PNG and HTML heatmaps per team.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/pitchlab/formations/internal/config"
	"github.com/pitchlab/formations/internal/fsutil"
	"github.com/pitchlab/formations/internal/monitoring"
	"github.com/pitchlab/formations/internal/pipeline"
	"github.com/pitchlab/formations/internal/pitch/roles"
	"github.com/pitchlab/formations/internal/render"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (or FORMATIONS_CONFIG)")
	dataDir := flag.String("data", "", "Directory with DFL match information and positions files (overrides config)")
	outDir := flag.String("out", "", "Output directory for report and heatmaps (overrides config)")
	rosterFile := flag.String("rosters", "", "Roster YAML with slot assignments and orientation overrides (overrides config)")
	filterMode := flag.String("filter", "none", "Heatmap filter: none, threshold, topk or percentile")
	threshold := flag.Float64("threshold", 0, "Absolute cutoff for the threshold filter")
	topK := flag.Int("top-k", 10, "Number of bins kept by the topk filter")
	pct := flag.Float64("percentile", 75, "Percentile cutoff over positive bins for the percentile filter")
	noRender := flag.Bool("no-render", false, "Skip PNG/HTML heatmap output, write only the JSON report")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *outDir != "" {
		cfg.OutDir = *outDir
	}
	if *rosterFile != "" {
		cfg.RosterFile = *rosterFile
	}
	if *verbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	zl, err := monitoring.Init(cfg.Verbose)
	if err != nil {
		log.Fatalf("Could not initialize logger: %v", err)
	}
	defer zl.Sync()

	filter, err := parseFilter(*filterMode, *threshold, *topK, *pct)
	if err != nil {
		log.Fatalf("Invalid filter: %v", err)
	}

	book := &config.RosterBook{}
	if cfg.RosterFile != "" {
		if _, statErr := os.Stat(cfg.RosterFile); statErr == nil {
			book, err = config.LoadRosterBook(cfg.RosterFile)
			if err != nil {
				log.Fatalf("Could not load rosters from %s: %v", cfg.RosterFile, err)
			}
		} else {
			monitoring.L().Infow("no roster file, using starting lineups only", "path", cfg.RosterFile)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(cfg, book, fsutil.OSFileSystem{})
	report, err := p.Run(ctx)
	if err != nil {
		log.Fatalf("Run failed: %v", err)
	}

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		log.Fatalf("Could not create output directory: %v", err)
	}
	reportPath := filepath.Join(cfg.OutDir, "report.json")
	if err := writeReport(report, reportPath); err != nil {
		log.Fatalf("Could not write report: %v", err)
	}
	monitoring.L().Infow("wrote report", "path", reportPath,
		"teams", len(report.Teams), "failures", len(report.Failures))

	if !*noRender {
		if err := renderTeams(report, filter, cfg.OutDir); err != nil {
			log.Fatalf("Could not render heatmaps: %v", err)
		}
	}

	fmt.Printf("run %s: %d teams factorized, %d failures, mean divergence %.4f\n",
		report.RunID, len(report.Teams), len(report.Failures), report.MeanDivergence)
}

func parseFilter(mode string, threshold float64, topK int, pct float64) (roles.Filter, error) {
	switch strings.ToLower(mode) {
	case "", "none":
		return roles.Filter{Mode: roles.FilterNone}, nil
	case "threshold":
		return roles.Filter{Mode: roles.FilterThreshold, Threshold: threshold}, nil
	case "topk":
		return roles.Filter{Mode: roles.FilterTopK, TopK: topK}, nil
	case "percentile":
		return roles.Filter{Mode: roles.FilterPercentile, Percentile: pct}, nil
	default:
		return roles.Filter{}, fmt.Errorf("unknown filter mode %q", mode)
	}
}

func writeReport(report *pipeline.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// renderTeams writes one HTML page and one PNG per role for every team.
func renderTeams(report *pipeline.Report, filter roles.Filter, outDir string) error {
	for _, team := range report.Teams {
		maps, err := team.Model.Heatmaps(filter)
		if err != nil {
			return fmt.Errorf("%s %s: %w", team.MatchID, team.Side, err)
		}
		base := fmt.Sprintf("%s-%s", team.MatchID, team.Side)
		title := team.Title
		if title == "" {
			title = base
		}
		htmlPath := filepath.Join(outDir, base+".html")
		if err := render.WriteHTML(maps, report.GridNX, report.GridNY, title, htmlPath); err != nil {
			return err
		}
		for role, values := range maps {
			pngPath := filepath.Join(outDir, fmt.Sprintf("%s-role-%02d.png", base, role))
			roleTitle := fmt.Sprintf("%s (role %d)", title, role)
			if err := render.WritePNG(values, report.GridNX, report.GridNY, report.CellSize, roleTitle, pngPath); err != nil {
				return err
			}
		}
		monitoring.L().Debugw("rendered team", "match", team.MatchID, "side", team.Side, "roles", len(maps))
	}
	return nil
}
