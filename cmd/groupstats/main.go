// Command groupstats prints a census of permuted frame sequences per
// formation without running the factorization, useful for checking how
// much material each formation group would contribute.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/pitchlab/formations/internal/config"
	"github.com/pitchlab/formations/internal/fsutil"
	"github.com/pitchlab/formations/internal/monitoring"
	"github.com/pitchlab/formations/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (or FORMATIONS_CONFIG)")
	dataDir := flag.String("data", "", "Directory with DFL match information and positions files (overrides config)")
	rosterFile := flag.String("rosters", "", "Roster YAML with slot assignments and orientation overrides (overrides config)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
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

	book := &config.RosterBook{}
	if cfg.RosterFile != "" {
		if _, statErr := os.Stat(cfg.RosterFile); statErr == nil {
			book, err = config.LoadRosterBook(cfg.RosterFile)
			if err != nil {
				log.Fatalf("Could not load rosters from %s: %v", cfg.RosterFile, err)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(cfg, book, fsutil.OSFileSystem{})
	col, err := p.Collect(ctx)
	if err != nil {
		log.Fatalf("Collect failed: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FORMATION\tSEQUENCES\tFRAMES")
	frameTotals := make(map[string]int)
	for _, u := range col.Units {
		frameTotals[u.Formation.String()] += len(u.Frames)
	}
	for _, row := range col.Census() {
		fmt.Fprintf(w, "%s\t%d\t%d\n", row.Formation, row.Sequences, frameTotals[row.Formation])
	}
	w.Flush()

	if len(col.Failures) > 0 {
		fmt.Printf("\n%d unit(s) failed:\n", len(col.Failures))
		for _, f := range col.Failures {
			fmt.Printf("  %s %s: %s\n", f.MatchID, f.Side, f.Reason)
		}
	}
}
