package pitch

import "fmt"

// SubstitutionPermuter reorders frames into slot order while advancing
// through each slot's candidate queue as players leave the pitch.
//
// Each slot owns a FIFO queue of tracking indices, seeded with the
// primary occupant followed by the substitutes in roster order. For each
// frame, a slot emits the coordinates of the first candidate whose
// position is present; whenever the head candidate is missing it is
// popped permanently, so advancement is one-directional and never
// reverses even if the popped player's data becomes valid again later.
// A substitution is an irreversible event.
type SubstitutionPermuter struct {
	slots    []string
	queues   [][]int
	nPlayers int
}

// NewSubstitutionPermuter builds the per-slot queues. The formation must
// be a supported one: there is no passthrough fallback in substitution
// mode because queue ownership cannot be derived without a slot ordering.
func NewSubstitutionPermuter(f Formation, assign SlotAssignment, sheet *Teamsheet) (*SubstitutionPermuter, error) {
	if !f.Supported() {
		return nil, fmt.Errorf("%w: substitution-aware permutation requires a supported formation, got %s", ErrConfiguration, f)
	}
	if err := assign.Validate(f); err != nil {
		return nil, err
	}
	order := f.SlotOrder()
	queues := make([][]int, len(order))
	for i, slot := range order {
		shirts := assign[slot]
		if len(shirts) == 0 {
			return nil, fmt.Errorf("%w: no shirt assigned to slot %q", ErrConfiguration, slot)
		}
		q := make([]int, 0, len(shirts))
		for _, shirt := range shirts {
			idx, ok := sheet.TrackingIndex(shirt)
			if !ok {
				return nil, fmt.Errorf("%w: shirt %d (slot %q) not in teamsheet", ErrConfiguration, shirt, slot)
			}
			q = append(q, idx)
		}
		queues[i] = q
	}
	return &SubstitutionPermuter{slots: order, queues: queues, nPlayers: sheet.Size()}, nil
}

// Slots returns the slot ordering the output columns follow.
func (p *SubstitutionPermuter) Slots() []string {
	return append([]string(nil), p.slots...)
}

// Next permutes one frame into slot order and advances the queues. An
// exhausted queue is fatal for the unit being processed: a mis-assigned
// slot would corrupt all downstream statistics undetectably.
func (p *SubstitutionPermuter) Next(frame Frame) (Frame, error) {
	if len(frame) != p.nPlayers {
		return nil, fmt.Errorf("%w: frame holds %d players, teamsheet declares %d", ErrDataIntegrity, len(frame), p.nPlayers)
	}
	out := make(Frame, len(p.queues))
	for i, q := range p.queues {
		for len(q) > 0 && frame[q[0]].IsMissing() {
			q = q[1:]
		}
		if len(q) == 0 {
			return nil, fmt.Errorf("%w: slot %q substitution queue exhausted with no on-pitch candidate", ErrDataIntegrity, p.slots[i])
		}
		p.queues[i] = q
		out[i] = frame[q[0]]
	}
	return out, nil
}

// PermuteAll permutes a whole frame sequence, stopping at the first
// failure.
func (p *SubstitutionPermuter) PermuteAll(frames []Frame) ([]Frame, error) {
	out := make([]Frame, 0, len(frames))
	for t, f := range frames {
		pf, err := p.Next(f)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", t, err)
		}
		out = append(out, pf)
	}
	return out, nil
}
