package pitch

import "fmt"

// Permutation computes the fixed slot-order -> tracking-index permutation:
// perm[i] is the tracking index whose coordinates slot i reads, resolved
// once through the primary shirt of each slot. The same permutation is
// then applied to every frame.
//
// FormationUnsupported returns (nil, nil): the documented fallback is to
// pass frames through in original tracking order, unpermuted.
func Permutation(f Formation, assign SlotAssignment, sheet *Teamsheet) ([]int, error) {
	if !f.Supported() {
		return nil, nil
	}
	if err := assign.Validate(f); err != nil {
		return nil, err
	}
	order := f.SlotOrder()
	perm := make([]int, len(order))
	for i, slot := range order {
		shirts := assign[slot]
		if len(shirts) == 0 {
			return nil, fmt.Errorf("%w: no shirt assigned to slot %q", ErrConfiguration, slot)
		}
		idx, ok := sheet.TrackingIndex(shirts[0])
		if !ok {
			return nil, fmt.Errorf("%w: shirt %d (slot %q) not in teamsheet", ErrConfiguration, shirts[0], slot)
		}
		perm[i] = idx
	}
	return perm, nil
}

// Apply reorders one frame into slot order. A nil permutation is the
// passthrough fallback and yields a copy of the frame unchanged.
func Apply(perm []int, frame Frame) (Frame, error) {
	if perm == nil {
		return append(Frame(nil), frame...), nil
	}
	out := make(Frame, len(perm))
	for i, idx := range perm {
		if idx < 0 || idx >= len(frame) {
			return nil, fmt.Errorf("%w: frame holds %d players, permutation reads index %d", ErrDataIntegrity, len(frame), idx)
		}
		out[i] = frame[idx]
	}
	return out, nil
}

// PermuteFrames applies one fixed permutation to a whole frame sequence.
// Every frame must carry exactly nPlayers entries.
func PermuteFrames(perm []int, frames []Frame, nPlayers int) ([]Frame, error) {
	out := make([]Frame, 0, len(frames))
	for t, f := range frames {
		if len(f) != nPlayers {
			return nil, fmt.Errorf("%w: frame %d holds %d players, teamsheet declares %d", ErrDataIntegrity, t, len(f), nPlayers)
		}
		pf, err := Apply(perm, f)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", t, err)
		}
		out = append(out, pf)
	}
	return out, nil
}

// Inverse returns the inverse of a permutation of 0..n-1, so that
// applying perm and then its inverse reproduces the original frame.
func Inverse(perm []int) []int {
	inv := make([]int, len(perm))
	for i, j := range perm {
		inv[j] = i
	}
	return inv
}
