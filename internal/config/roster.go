package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/pitchlab/formations/internal/pitch"
)

// RosterBook is the immutable per-match configuration: slot assignments
// with substitute queues, optional formation overrides, and orientation
// overrides per (half, side). Keyed by DFL match identifier.
type RosterBook struct {
	Matches map[string]MatchRoster `koanf:"matches"`
}

// MatchRoster configures one match.
type MatchRoster struct {
	Home *TeamRoster `koanf:"home"`
	Away *TeamRoster `koanf:"away"`

	// FlipFirstHalf and FlipSecondHalf name the sides ("home", "away")
	// whose attacking direction must be rotated 180 degrees in that half
	// to match the canonical convention.
	FlipFirstHalf  []string `koanf:"flip_first_half"`
	FlipSecondHalf []string `koanf:"flip_second_half"`
}

// TeamRoster configures one side of a match.
type TeamRoster struct {
	// Formation optionally overrides the lineup string from the match
	// information file.
	Formation string `koanf:"formation"`

	// Slots maps slot name to shirt numbers: primary occupant first,
	// substitutes in chronological entry order.
	Slots map[string][]int `koanf:"slots"`
}

// LoadRosterBook reads and validates a roster book YAML file.
func LoadRosterBook(path string) (*RosterBook, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load roster book: %w", err)
	}
	var book RosterBook
	if err := k.UnmarshalWithConf("", &book, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("parse roster book: %w", err)
	}
	if err := book.Validate(); err != nil {
		return nil, err
	}
	return &book, nil
}

// Validate checks each configured team whose formation is stated: the
// formation must be supported and the slot map consistent with its
// canonical slot ordering. Teams without a formation override are
// validated later, once the lineup is known from the match information.
func (b *RosterBook) Validate() error {
	for id, m := range b.Matches {
		for side, tr := range map[string]*TeamRoster{"home": m.Home, "away": m.Away} {
			if tr == nil || tr.Formation == "" {
				continue
			}
			f := pitch.ParseFormation(tr.Formation)
			if !f.Supported() {
				return fmt.Errorf("match %s %s: %w: unsupported formation %q", id, side, pitch.ErrConfiguration, tr.Formation)
			}
			if err := pitch.SlotAssignment(tr.Slots).Validate(f); err != nil {
				return fmt.Errorf("match %s %s: %w", id, side, err)
			}
		}
		for _, s := range append(append([]string(nil), m.FlipFirstHalf...), m.FlipSecondHalf...) {
			if s != "home" && s != "away" {
				return fmt.Errorf("match %s: %w: orientation override names unknown side %q", id, pitch.ErrConfiguration, s)
			}
		}
	}
	return nil
}

// Roster returns the configured roster for a match side, if any.
func (b *RosterBook) Roster(matchID string, side pitch.Side) (*TeamRoster, bool) {
	m, ok := b.Matches[matchID]
	if !ok {
		return nil, false
	}
	tr := m.Home
	if side == pitch.Away {
		tr = m.Away
	}
	if tr == nil {
		return nil, false
	}
	return tr, true
}

// Flips assembles the orientation override map for one match.
func (b *RosterBook) Flips(matchID string) map[pitch.OrientationKey]bool {
	out := make(map[pitch.OrientationKey]bool)
	m, ok := b.Matches[matchID]
	if !ok {
		return out
	}
	for _, s := range m.FlipFirstHalf {
		out[pitch.OrientationKey{Half: pitch.FirstHalf, Side: parseSide(s)}] = true
	}
	for _, s := range m.FlipSecondHalf {
		out[pitch.OrientationKey{Half: pitch.SecondHalf, Side: parseSide(s)}] = true
	}
	return out
}

// Assignment returns the slot map in engine form.
func (t *TeamRoster) Assignment() pitch.SlotAssignment {
	assign := make(pitch.SlotAssignment, len(t.Slots))
	for slot, shirts := range t.Slots {
		assign[slot] = append([]int(nil), shirts...)
	}
	return assign
}

// HasSubstitutes reports whether any slot lists more than one shirt.
func (t *TeamRoster) HasSubstitutes() bool {
	for _, shirts := range t.Slots {
		if len(shirts) > 1 {
			return true
		}
	}
	return false
}

func parseSide(s string) pitch.Side {
	if s == "away" {
		return pitch.Away
	}
	return pitch.Home
}
