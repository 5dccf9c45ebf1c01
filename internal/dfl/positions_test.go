package dfl

import (
	"errors"
	"strings"
	"testing"

	"github.com/pitchlab/formations/internal/pitch"
)

const positionsXML = `<?xml version="1.0" encoding="UTF-8"?>
<PutDataRequest>
  <Positions>
    <FrameSet TeamId="DFL-CLU-000G00" PersonId="DFL-OBJ-0001" GameSection="firstHalf">
      <Frame N="10000" X="10.5" Y="34.0"/>
      <Frame N="10001" X="10.6" Y="34.1"/>
      <Frame N="10002" X="10.7" Y="34.2"/>
    </FrameSet>
    <FrameSet TeamId="DFL-CLU-000G00" PersonId="DFL-OBJ-0002" GameSection="firstHalf">
      <Frame N="10001" X="20.0" Y="10.0"/>
      <Frame N="10002" X="20.5" Y="10.5"/>
    </FrameSet>
    <FrameSet TeamId="DFL-CLU-000G00" PersonId="DFL-OBJ-0001" GameSection="secondHalf">
      <Frame N="80000" X="94.5" Y="34.0"/>
    </FrameSet>
    <FrameSet TeamId="DFL-CLU-000A00" PersonId="DFL-OBJ-0101" GameSection="firstHalf">
      <Frame N="10000" X="52.5" Y="34.0"/>
    </FrameSet>
    <FrameSet TeamId="DFL-OBJ-BALL" PersonId="DFL-OBJ-BALL" GameSection="firstHalf">
      <Frame N="10000" X="52.5" Y="34.0"/>
    </FrameSet>
  </Positions>
</PutDataRequest>`

func parseFixture(t *testing.T) (*MatchInfo, map[pitch.Side]HalfFrames) {
	t.Helper()
	info, err := ParseMatchInformation(strings.NewReader(matchInfoXML))
	if err != nil {
		t.Fatal(err)
	}
	frames, err := ParsePositions(strings.NewReader(positionsXML), info)
	if err != nil {
		t.Fatal(err)
	}
	return info, frames
}

func TestParsePositions_SpanAndFill(t *testing.T) {
	info, frames := parseFixture(t)

	first := frames[pitch.Home][pitch.FirstHalf]
	if len(first) != 3 {
		t.Fatalf("first half should span 3 frames, got %d", len(first))
	}
	if n := len(first[0]); n != len(info.Home.Players) {
		t.Fatalf("frame width %d, want %d", n, len(info.Home.Players))
	}

	// Player 0 present from the first instant.
	if first[0][0].X != 10.5 || first[0][0].Y != 34.0 {
		t.Errorf("frame 0 player 0 = %v", first[0][0])
	}
	// Player 1's set starts one frame later: the first instant is missing.
	if !first[0][1].IsMissing() {
		t.Error("player 1 should be missing before their frame set begins")
	}
	if first[1][1].X != 20.0 {
		t.Errorf("frame 1 player 1 = %v", first[1][1])
	}
	// Players with no set at all stay missing throughout.
	for tIdx := range first {
		if !first[tIdx][2].IsMissing() || !first[tIdx][3].IsMissing() {
			t.Fatalf("players without frame sets must stay missing at frame %d", tIdx)
		}
	}
}

func TestParsePositions_HalvesAreIndependent(t *testing.T) {
	_, frames := parseFixture(t)
	second := frames[pitch.Home][pitch.SecondHalf]
	if len(second) != 1 {
		t.Fatalf("second half should span 1 frame, got %d", len(second))
	}
	if second[0][0].X != 94.5 {
		t.Errorf("second half frame 0 player 0 = %v", second[0][0])
	}
}

func TestParsePositions_AwaySide(t *testing.T) {
	_, frames := parseFixture(t)
	away := frames[pitch.Away][pitch.FirstHalf]
	if len(away) != 1 || away[0][0].X != 52.5 {
		t.Errorf("away frames wrong: %v", away)
	}
	if len(away[0]) != 2 {
		t.Errorf("away frame width = %d, want 2", len(away[0]))
	}
}

func TestParsePositions_BallSetsIgnored(t *testing.T) {
	// The ball frame set carries a team id that is neither side; parsing
	// must not fail and must not add a unit for it.
	_, frames := parseFixture(t)
	if len(frames) != 2 {
		t.Errorf("only the two sides should appear, got %d units", len(frames))
	}
}

func TestParsePositions_UnknownPerson(t *testing.T) {
	info, err := ParseMatchInformation(strings.NewReader(matchInfoXML))
	if err != nil {
		t.Fatal(err)
	}
	bad := strings.Replace(positionsXML, "DFL-OBJ-0002", "DFL-OBJ-9999", 1)
	_, err = ParsePositions(strings.NewReader(bad), info)
	if !errors.Is(err, pitch.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestParsePositions_UnknownSectionSkipped(t *testing.T) {
	info, err := ParseMatchInformation(strings.NewReader(matchInfoXML))
	if err != nil {
		t.Fatal(err)
	}
	extra := strings.Replace(positionsXML, `GameSection="secondHalf"`, `GameSection="overtime"`, 1)
	frames, err := ParsePositions(strings.NewReader(extra), info)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := frames[pitch.Home][pitch.SecondHalf]; ok {
		t.Error("an unrecognized game section must not produce a half")
	}
}
