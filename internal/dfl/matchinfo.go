// Package dfl reads DFL match-information and raw-positions XML files and
// discovers match file pairs on disk. It is the thin boundary between the
// tracking-data supplier and the analytical engines, which only ever see
// frames, teamsheets and match metadata.
package dfl

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/pitchlab/formations/internal/pitch"
)

// PlayerInfo is one rostered player of a team.
type PlayerInfo struct {
	PersonID string
	Shirt    int
	Position string // DFL playing position code, e.g. "TW", "IVL"
	Starting bool
}

// TeamInfo is one side's roster and declared lineup. The player list
// keeps document order, which fixes the tracking-index order for the
// positions file.
type TeamInfo struct {
	ID      string
	Name    string
	LineUp  string
	Players []PlayerInfo
}

// MatchInfo is the parsed match-information document.
type MatchInfo struct {
	MatchID string
	Title   string
	Home    TeamInfo
	Away    TeamInfo
}

type matchInformationDoc struct {
	XMLName          xml.Name `xml:"PutDataRequest"`
	MatchInformation struct {
		General struct {
			MatchID     string `xml:"MatchId,attr"`
			MatchTitle  string `xml:"MatchTitle,attr"`
			HomeTeamID  string `xml:"HomeTeamId,attr"`
			AwayTeamID  string `xml:"AwayTeamId,attr"`
			GuestTeamID string `xml:"GuestTeamId,attr"` // older files name the away side "guest"
		} `xml:"General"`
		Teams struct {
			Team []struct {
				TeamID  string `xml:"TeamId,attr"`
				Name    string `xml:"TeamName,attr"`
				LineUp  string `xml:"LineUp,attr"`
				Players struct {
					Player []struct {
						PersonID string `xml:"PersonId,attr"`
						Shirt    int    `xml:"ShirtNumber,attr"`
						Position string `xml:"PlayingPosition,attr"`
						Starting bool   `xml:"Starting,attr"`
					} `xml:"Player"`
				} `xml:"Players"`
			} `xml:"Team"`
		} `xml:"Teams"`
	} `xml:"MatchInformation"`
}

// ParseMatchInformation decodes a DFL match-information XML document.
func ParseMatchInformation(r io.Reader) (*MatchInfo, error) {
	var doc matchInformationDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode match information: %w", err)
	}
	g := doc.MatchInformation.General
	awayID := g.AwayTeamID
	if awayID == "" {
		awayID = g.GuestTeamID
	}

	info := &MatchInfo{MatchID: g.MatchID, Title: g.MatchTitle}
	for _, t := range doc.MatchInformation.Teams.Team {
		ti := TeamInfo{ID: t.TeamID, Name: t.Name, LineUp: t.LineUp}
		for _, p := range t.Players.Player {
			ti.Players = append(ti.Players, PlayerInfo{
				PersonID: p.PersonID,
				Shirt:    p.Shirt,
				Position: p.Position,
				Starting: p.Starting,
			})
		}
		switch t.TeamID {
		case g.HomeTeamID:
			info.Home = ti
		case awayID:
			info.Away = ti
		}
	}
	if info.Home.ID == "" || info.Away.ID == "" {
		return nil, fmt.Errorf("%w: match information does not identify both teams", pitch.ErrConfiguration)
	}
	return info, nil
}

// Team returns the side's team info.
func (mi *MatchInfo) Team(side pitch.Side) TeamInfo {
	if side == pitch.Home {
		return mi.Home
	}
	return mi.Away
}

// Teamsheet builds the tracking-index ordered teamsheet for the team.
func (t TeamInfo) Teamsheet() (*pitch.Teamsheet, error) {
	shirts := make([]int, 0, len(t.Players))
	for _, p := range t.Players {
		shirts = append(shirts, p.Shirt)
	}
	return pitch.NewTeamsheet(shirts)
}

// StartingAssignment derives a slot assignment from the starting lineup's
// playing position codes: each starter's position becomes the slot its
// shirt occupies. It carries no substitutes; roster configuration
// supersedes it when present.
func (t TeamInfo) StartingAssignment() pitch.SlotAssignment {
	assign := make(pitch.SlotAssignment)
	for _, p := range t.Players {
		if !p.Starting || p.Position == "" {
			continue
		}
		assign[p.Position] = append(assign[p.Position], p.Shirt)
	}
	return assign
}

// Match assembles the immutable match metadata, merging the orientation
// overrides supplied by configuration.
func (mi *MatchInfo) Match(flips map[pitch.OrientationKey]bool) pitch.Match {
	return pitch.Match{
		ID:    mi.MatchID,
		Title: mi.Title,
		Formations: map[pitch.Side]pitch.Formation{
			pitch.Home: pitch.ParseFormation(mi.Home.LineUp),
			pitch.Away: pitch.ParseFormation(mi.Away.LineUp),
		},
		FlipOrientation: flips,
	}
}
