package dfl

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/pitchlab/formations/internal/pitch"
)

// HalfFrames holds one team's frame sequences keyed by game section.
type HalfFrames map[pitch.Half][]pitch.Frame

type positionsDoc struct {
	XMLName   xml.Name `xml:"PutDataRequest"`
	Positions struct {
		FrameSet []struct {
			TeamID      string `xml:"TeamId,attr"`
			PersonID    string `xml:"PersonId,attr"`
			GameSection string `xml:"GameSection,attr"`
			Frame       []struct {
				N int     `xml:"N,attr"`
				X float64 `xml:"X,attr"`
				Y float64 `xml:"Y,attr"`
			} `xml:"Frame"`
		} `xml:"FrameSet"`
	} `xml:"Positions"`
}

// ParsePositions decodes a DFL raw-positions document into per-side,
// per-half frame sequences aligned to the match information's player
// order. Frame sets only span the instants a player was on the pitch;
// everything outside a player's sets is the missing marker.
func ParsePositions(r io.Reader, info *MatchInfo) (map[pitch.Side]HalfFrames, error) {
	var doc positionsDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode positions: %w", err)
	}

	// person -> tracking index per team
	type teamIdx struct {
		side  pitch.Side
		index map[string]int
		count int
	}
	teams := map[string]*teamIdx{
		info.Home.ID: {side: pitch.Home, index: make(map[string]int), count: len(info.Home.Players)},
		info.Away.ID: {side: pitch.Away, index: make(map[string]int), count: len(info.Away.Players)},
	}
	for i, p := range info.Home.Players {
		teams[info.Home.ID].index[p.PersonID] = i
	}
	for i, p := range info.Away.Players {
		teams[info.Away.ID].index[p.PersonID] = i
	}

	type unitKey struct {
		side pitch.Side
		half pitch.Half
	}
	type span struct {
		minN, maxN int
		seen       bool
	}
	spans := make(map[unitKey]*span)

	// First pass: frame extents per (side, half).
	for _, fs := range doc.Positions.FrameSet {
		team, ok := teams[fs.TeamID]
		if !ok {
			continue // ball and referee sets carry other team ids
		}
		half, ok := parseSection(fs.GameSection)
		if !ok {
			continue
		}
		key := unitKey{side: team.side, half: half}
		sp := spans[key]
		if sp == nil {
			sp = &span{}
			spans[key] = sp
		}
		for _, f := range fs.Frame {
			if !sp.seen || f.N < sp.minN {
				sp.minN = f.N
			}
			if !sp.seen || f.N > sp.maxN {
				sp.maxN = f.N
			}
			sp.seen = true
		}
	}

	out := map[pitch.Side]HalfFrames{
		pitch.Home: make(HalfFrames),
		pitch.Away: make(HalfFrames),
	}
	for key, sp := range spans {
		if !sp.seen {
			continue
		}
		n := teams[teamID(info, key.side)].count
		frames := make([]pitch.Frame, sp.maxN-sp.minN+1)
		for t := range frames {
			frame := make(pitch.Frame, n)
			for i := range frame {
				frame[i] = pitch.Missing
			}
			frames[t] = frame
		}
		out[key.side][key.half] = frames
	}

	// Second pass: fill positions.
	for _, fs := range doc.Positions.FrameSet {
		team, ok := teams[fs.TeamID]
		if !ok {
			continue
		}
		half, ok := parseSection(fs.GameSection)
		if !ok {
			continue
		}
		idx, ok := team.index[fs.PersonID]
		if !ok {
			return nil, fmt.Errorf("%w: frame set references unknown person %q of team %q", pitch.ErrConfiguration, fs.PersonID, fs.TeamID)
		}
		sp := spans[unitKey{side: team.side, half: half}]
		frames := out[team.side][half]
		for _, f := range fs.Frame {
			t := f.N - sp.minN
			if t < 0 || t >= len(frames) {
				return nil, fmt.Errorf("%w: frame %d outside section extent [%d,%d]", pitch.ErrDataIntegrity, f.N, sp.minN, sp.maxN)
			}
			frames[t][idx] = pitch.Position{X: f.X, Y: f.Y}
		}
	}

	return out, nil
}

func teamID(info *MatchInfo, side pitch.Side) string {
	if side == pitch.Home {
		return info.Home.ID
	}
	return info.Away.ID
}

func parseSection(s string) (pitch.Half, bool) {
	switch s {
	case "firstHalf":
		return pitch.FirstHalf, true
	case "secondHalf":
		return pitch.SecondHalf, true
	}
	return 0, false
}
