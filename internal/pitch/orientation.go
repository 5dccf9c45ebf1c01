package pitch

// Rotate180 rotates one frame 180 degrees about the pitch center. Missing
// positions stay the missing marker.
func Rotate180(frame Frame, b Bounds) Frame {
	out := make(Frame, len(frame))
	for i, p := range frame {
		if p.IsMissing() {
			out[i] = p
			continue
		}
		out[i] = Position{X: b.XMin + b.XMax - p.X, Y: b.YMin + b.YMax - p.Y}
	}
	return out
}

// NormalizeOrientation rotates every frame of one (half, team) unit when
// the per-match override marks its attacking direction as flipped. The
// decision comes from configuration only; nothing here inspects match
// titles. With flip false the input slice is returned unchanged.
func NormalizeOrientation(frames []Frame, flip bool, b Bounds) []Frame {
	if !flip {
		return frames
	}
	out := make([]Frame, len(frames))
	for t, f := range frames {
		out[t] = Rotate180(f, b)
	}
	return out
}
