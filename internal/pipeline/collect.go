// Package pipeline orchestrates the batch run: discover match files,
// resolve rosters and orientation, permute frames into slot order, group
// the permuted sequences by formation, build occupancy matrices, and
// extract latent roles.
package pipeline

import (
	"context"
	"fmt"

	"github.com/pitchlab/formations/internal/config"
	"github.com/pitchlab/formations/internal/dfl"
	"github.com/pitchlab/formations/internal/fsutil"
	"github.com/pitchlab/formations/internal/monitoring"
	"github.com/pitchlab/formations/internal/pitch"
)

// Pipeline processes every match found under the configured data
// directory.
type Pipeline struct {
	cfg  *config.Config
	book *config.RosterBook
	fs   fsutil.FileSystem
}

// New assembles a pipeline. The roster book may be empty but not nil.
func New(cfg *config.Config, book *config.RosterBook, fsys fsutil.FileSystem) *Pipeline {
	return &Pipeline{cfg: cfg, book: book, fs: fsys}
}

// Unit is one (match, side) slot-ordered frame sequence.
type Unit struct {
	MatchID   string
	Title     string
	Side      pitch.Side
	Formation pitch.Formation
	// Slots names the output columns; nil for the unpermuted passthrough
	// of an unsupported formation.
	Slots  []string
	Frames []pitch.Frame
}

// UnitFailure records a match/team unit aborted by a configuration or
// data-integrity error. Aborting beats emitting silently wrong columns.
type UnitFailure struct {
	MatchID string `json:"match_id"`
	Side    string `json:"side"`
	Reason  string `json:"reason"`
}

// Collection holds every successfully permuted unit plus the failures.
type Collection struct {
	Units    []Unit
	Failures []UnitFailure
}

// FormationCount is one census row.
type FormationCount struct {
	Formation string `json:"formation"`
	Sequences int    `json:"sequences"`
}

// Census counts permuted sequences per formation, iterating the closed
// formation set in its fixed order so output is deterministic. Units that
// fell back to passthrough are reported under "unsupported".
func (c *Collection) Census() []FormationCount {
	counts := make(map[pitch.Formation]int)
	for _, u := range c.Units {
		counts[u.Formation]++
	}
	out := make([]FormationCount, 0, len(counts)+1)
	for _, f := range pitch.Formations() {
		if counts[f] > 0 {
			out = append(out, FormationCount{Formation: f.String(), Sequences: counts[f]})
		}
	}
	if counts[pitch.FormationUnsupported] > 0 {
		out = append(out, FormationCount{Formation: pitch.FormationUnsupported.String(), Sequences: counts[pitch.FormationUnsupported]})
	}
	return out
}

// Collect discovers, parses and permutes every match unit. Configuration
// and data-integrity errors abort only the unit they occur in; the rest
// of the batch continues.
func (p *Pipeline) Collect(ctx context.Context) (*Collection, error) {
	pairs, err := dfl.DiscoverMatches(p.fs, p.cfg.DataDir)
	if err != nil {
		return nil, err
	}
	monitoring.L().Infow("discovered matches", "count", len(pairs), "dir", p.cfg.DataDir)

	col := &Collection{}
	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, frames, err := p.loadMatch(pair)
		if err != nil {
			col.Failures = append(col.Failures,
				UnitFailure{MatchID: pair.MatchID, Side: "both", Reason: err.Error()})
			monitoring.L().Warnw("skipping match", "match", pair.MatchID, "error", err)
			continue
		}
		for _, side := range []pitch.Side{pitch.Home, pitch.Away} {
			unit, err := p.permuteUnit(info, side, frames[side])
			if err != nil {
				col.Failures = append(col.Failures,
					UnitFailure{MatchID: info.MatchID, Side: side.String(), Reason: err.Error()})
				monitoring.L().Warnw("aborting unit", "match", info.MatchID, "side", side, "error", err)
				continue
			}
			col.Units = append(col.Units, *unit)
		}
	}
	return col, nil
}

func (p *Pipeline) loadMatch(pair dfl.MatchFiles) (*dfl.MatchInfo, map[pitch.Side]dfl.HalfFrames, error) {
	infoFile, err := p.fs.Open(pair.MatchInformation)
	if err != nil {
		return nil, nil, fmt.Errorf("open match information: %w", err)
	}
	defer infoFile.Close()
	info, err := dfl.ParseMatchInformation(infoFile)
	if err != nil {
		return nil, nil, err
	}

	posFile, err := p.fs.Open(pair.Positions)
	if err != nil {
		return nil, nil, fmt.Errorf("open positions: %w", err)
	}
	defer posFile.Close()
	frames, err := dfl.ParsePositions(posFile, info)
	if err != nil {
		return nil, nil, err
	}
	return info, frames, nil
}

// permuteUnit resolves one side's formation and slot assignment, applies
// the orientation override per half, and permutes both halves into slot
// order.
func (p *Pipeline) permuteUnit(info *dfl.MatchInfo, side pitch.Side, halves dfl.HalfFrames) (*Unit, error) {
	team := info.Team(side)
	sheet, err := team.Teamsheet()
	if err != nil {
		return nil, err
	}

	formation := pitch.ParseFormation(team.LineUp)
	assign := team.StartingAssignment()
	withSubs := false
	if roster, ok := p.book.Roster(info.MatchID, side); ok {
		if roster.Formation != "" {
			formation = pitch.ParseFormation(roster.Formation)
		}
		if len(roster.Slots) > 0 {
			assign = roster.Assignment()
		}
		withSubs = roster.HasSubstitutes()
	}
	match := info.Match(p.book.Flips(info.MatchID))

	unit := &Unit{
		MatchID:   info.MatchID,
		Title:     info.Title,
		Side:      side,
		Formation: formation,
	}

	var subs *pitch.SubstitutionPermuter
	var perm []int
	if withSubs {
		subs, err = pitch.NewSubstitutionPermuter(formation, assign, sheet)
		if err != nil {
			return nil, err
		}
		unit.Slots = subs.Slots()
	} else {
		perm, err = pitch.Permutation(formation, assign, sheet)
		if err != nil {
			return nil, err
		}
		if perm != nil {
			unit.Slots = formation.SlotOrder()
		} else {
			monitoring.L().Infow("unsupported formation, frames pass through unpermuted",
				"match", info.MatchID, "side", side, "lineup", team.LineUp)
		}
	}

	for _, half := range []pitch.Half{pitch.FirstHalf, pitch.SecondHalf} {
		frames, ok := halves[half]
		if !ok {
			continue
		}
		frames = pitch.NormalizeOrientation(frames, match.Flipped(half, side), pitch.StandardPitch)
		var permuted []pitch.Frame
		if subs != nil {
			permuted, err = subs.PermuteAll(frames)
		} else {
			permuted, err = pitch.PermuteFrames(perm, frames, sheet.Size())
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", half, err)
		}
		unit.Frames = append(unit.Frames, permuted...)
	}
	return unit, nil
}
