// Package pitch implements formation-aligned reordering of tracking
// frames: canonical slot orderings per formation, orientation
// normalization, and the fixed and substitution-aware permutation
// engines.
package pitch

import (
	"fmt"
	"math"
)

// Position is a single tracked point in pitch coordinates.
type Position struct {
	X, Y float64
}

// Missing is the marker for a player who is off the pitch at an instant.
// It is NaN on both axes so it can never collide with the valid
// coordinate (0,0).
var Missing = Position{X: math.NaN(), Y: math.NaN()}

// IsMissing reports whether the position is the off-pitch marker.
func (p Position) IsMissing() bool {
	return math.IsNaN(p.X) || math.IsNaN(p.Y)
}

// Frame holds the tracked positions at one time step, indexed by tracking
// index.
type Frame []Position

// Teamsheet is the ordered tracking-index -> shirt-number mapping for one
// team in one match. Tracking indices are stable for a whole half.
type Teamsheet struct {
	shirts []int
	index  map[int]int
}

// NewTeamsheet builds a teamsheet from shirt numbers given in
// tracking-index order. Shirt numbers must be unique within the team.
func NewTeamsheet(shirts []int) (*Teamsheet, error) {
	index := make(map[int]int, len(shirts))
	for i, s := range shirts {
		if _, dup := index[s]; dup {
			return nil, fmt.Errorf("%w: shirt %d appears twice in teamsheet", ErrConfiguration, s)
		}
		index[s] = i
	}
	return &Teamsheet{shirts: append([]int(nil), shirts...), index: index}, nil
}

// Size returns the declared player count.
func (t *Teamsheet) Size() int { return len(t.shirts) }

// TrackingIndex returns the tracking index for a shirt number.
func (t *Teamsheet) TrackingIndex(shirt int) (int, bool) {
	i, ok := t.index[shirt]
	return i, ok
}

// Shirts returns the shirt numbers in tracking-index order.
func (t *Teamsheet) Shirts() []int {
	return append([]int(nil), t.shirts...)
}

// Bounds is an axis-aligned pitch bounding box.
type Bounds struct {
	XMin, XMax float64
	YMin, YMax float64
}

// StandardPitch is the default 105m x 68m pitch.
var StandardPitch = Bounds{XMin: 0, XMax: 105, YMin: 0, YMax: 68}

// Half identifies a game section.
type Half int

const (
	FirstHalf Half = iota + 1
	SecondHalf
)

func (h Half) String() string {
	switch h {
	case FirstHalf:
		return "firstHalf"
	case SecondHalf:
		return "secondHalf"
	}
	return fmt.Sprintf("Half(%d)", int(h))
}

// Side identifies the home or away team of a match.
type Side int

const (
	Home Side = iota
	Away
)

func (s Side) String() string {
	if s == Home {
		return "home"
	}
	return "away"
}

// OrientationKey addresses one (half, side) unit of a match.
type OrientationKey struct {
	Half Half
	Side Side
}

// Match is the immutable per-match metadata the engines consume. It is
// loaded once and read-only thereafter.
type Match struct {
	ID         string
	Title      string
	Formations map[Side]Formation
	// FlipOrientation marks the (half, side) units whose attacking
	// direction must be rotated 180 degrees to match the canonical
	// convention. Populated from configuration only.
	FlipOrientation map[OrientationKey]bool
}

// Flipped reports whether the given unit's coordinates must be rotated.
func (m Match) Flipped(h Half, s Side) bool {
	return m.FlipOrientation[OrientationKey{Half: h, Side: s}]
}
