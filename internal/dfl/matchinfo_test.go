package dfl

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pitchlab/formations/internal/pitch"
)

const matchInfoXML = `<?xml version="1.0" encoding="UTF-8"?>
<PutDataRequest>
  <MatchInformation>
    <General MatchId="DFL-MAT-003BN1" MatchTitle="FCB - KOE" HomeTeamId="DFL-CLU-000G00" AwayTeamId="DFL-CLU-000A00"/>
    <Teams>
      <Team TeamId="DFL-CLU-000G00" TeamName="Bayern" LineUp="4-2-3-1">
        <Players>
          <Player PersonId="DFL-OBJ-0001" ShirtNumber="1" PlayingPosition="TW" Starting="true"/>
          <Player PersonId="DFL-OBJ-0002" ShirtNumber="19" PlayingPosition="LV" Starting="true"/>
          <Player PersonId="DFL-OBJ-0003" ShirtNumber="25" PlayingPosition="ZO" Starting="true"/>
          <Player PersonId="DFL-OBJ-0004" ShirtNumber="29" PlayingPosition="OLM" Starting="false"/>
        </Players>
      </Team>
      <Team TeamId="DFL-CLU-000A00" TeamName="Koeln" LineUp="4-4-2">
        <Players>
          <Player PersonId="DFL-OBJ-0101" ShirtNumber="1" PlayingPosition="TW" Starting="true"/>
          <Player PersonId="DFL-OBJ-0102" ShirtNumber="13" PlayingPosition="STL" Starting="true"/>
        </Players>
      </Team>
    </Teams>
  </MatchInformation>
</PutDataRequest>`

func TestParseMatchInformation(t *testing.T) {
	info, err := ParseMatchInformation(strings.NewReader(matchInfoXML))
	if err != nil {
		t.Fatal(err)
	}
	if info.MatchID != "DFL-MAT-003BN1" || info.Title != "FCB - KOE" {
		t.Errorf("match identity wrong: %q %q", info.MatchID, info.Title)
	}
	if info.Home.Name != "Bayern" || info.Home.LineUp != "4-2-3-1" {
		t.Errorf("home team wrong: %+v", info.Home)
	}
	if info.Away.Name != "Koeln" || len(info.Away.Players) != 2 {
		t.Errorf("away team wrong: %+v", info.Away)
	}

	want := PlayerInfo{PersonID: "DFL-OBJ-0002", Shirt: 19, Position: "LV", Starting: true}
	if diff := cmp.Diff(want, info.Home.Players[1]); diff != "" {
		t.Errorf("player mismatch (-want +got):\n%s", diff)
	}
}

func TestParseMatchInformation_GuestTeamFallback(t *testing.T) {
	xmlDoc := strings.Replace(matchInfoXML, `AwayTeamId="DFL-CLU-000A00"`, `GuestTeamId="DFL-CLU-000A00"`, 1)
	info, err := ParseMatchInformation(strings.NewReader(xmlDoc))
	if err != nil {
		t.Fatal(err)
	}
	if info.Away.ID != "DFL-CLU-000A00" {
		t.Errorf("guest team should become the away side, got %q", info.Away.ID)
	}
}

func TestParseMatchInformation_MissingTeam(t *testing.T) {
	xmlDoc := strings.Replace(matchInfoXML, `AwayTeamId="DFL-CLU-000A00"`, `AwayTeamId="DFL-CLU-OTHER"`, 1)
	_, err := ParseMatchInformation(strings.NewReader(xmlDoc))
	if !errors.Is(err, pitch.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestParseMatchInformation_BadXML(t *testing.T) {
	if _, err := ParseMatchInformation(strings.NewReader("<PutDataRequest>")); err == nil {
		t.Error("truncated document should fail to decode")
	}
}

func TestTeamInfo_Teamsheet(t *testing.T) {
	info, err := ParseMatchInformation(strings.NewReader(matchInfoXML))
	if err != nil {
		t.Fatal(err)
	}
	sheet, err := info.Home.Teamsheet()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{1, 19, 25, 29}, sheet.Shirts()); diff != "" {
		t.Errorf("teamsheet order must follow document order (-want +got):\n%s", diff)
	}
}

func TestTeamInfo_StartingAssignment(t *testing.T) {
	info, err := ParseMatchInformation(strings.NewReader(matchInfoXML))
	if err != nil {
		t.Fatal(err)
	}
	assign := info.Home.StartingAssignment()
	want := pitch.SlotAssignment{"TW": {1}, "LV": {19}, "ZO": {25}}
	if diff := cmp.Diff(want, assign); diff != "" {
		t.Errorf("non-starters must not appear (-want +got):\n%s", diff)
	}
}

func TestMatchInfo_Match(t *testing.T) {
	info, err := ParseMatchInformation(strings.NewReader(matchInfoXML))
	if err != nil {
		t.Fatal(err)
	}
	flips := map[pitch.OrientationKey]bool{
		{Half: pitch.SecondHalf, Side: pitch.Home}: true,
	}
	m := info.Match(flips)
	if m.Formations[pitch.Home] != pitch.Formation4231 || m.Formations[pitch.Away] != pitch.Formation442 {
		t.Errorf("formations wrong: %v", m.Formations)
	}
	if !m.Flipped(pitch.SecondHalf, pitch.Home) || m.Flipped(pitch.FirstHalf, pitch.Home) {
		t.Error("orientation overrides not carried through")
	}
	if mi := info.Team(pitch.Away); mi.ID != "DFL-CLU-000A00" {
		t.Errorf("Team(Away) = %q", mi.ID)
	}
}
