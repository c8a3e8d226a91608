package bbapi

import (
	"math"
	"strconv"
	"strings"

	"courtside/backend/internal/models"
)

// apiResponse is the envelope every BB endpoint returns. The root element
// name varies between endpoints so it is left unconstrained.
type apiResponse struct {
	Error    *apiError  `xml:"error"`
	LoggedIn *apiLogin  `xml:"loggedIn"`
	Team     *apiTeam   `xml:"team"`
	Roster   *apiRoster `xml:"roster"`
}

// apiError carries the failure reason either as element text or as a
// message attribute, depending on the endpoint.
type apiError struct {
	Message string `xml:"message,attr"`
	Text    string `xml:",chardata"`
}

func (e *apiError) reason() string {
	if t := strings.TrimSpace(e.Text); t != "" {
		return t
	}
	if e.Message != "" {
		return e.Message
	}
	return "Login failed"
}

type apiLogin struct {
	UserID    string `xml:"userId,attr"`
	UserName  string `xml:"userName,attr"`
	Supporter string `xml:"supporter,attr"`
}

func (l *apiLogin) supporter() bool {
	switch l.Supporter {
	case "1", "true", "True":
		return true
	}
	return false
}

type apiTeam struct {
	ID       int    `xml:"id,attr"`
	TeamName string `xml:"teamName"`
	Owner    string `xml:"owner"`
}

func (t *apiTeam) name() string {
	if t.TeamName == "" {
		return "Unknown"
	}
	return t.TeamName
}

type apiRoster struct {
	Players []apiPlayer `xml:"player"`
}

// apiPlayer is one roster entry. Height comes in inches; dmi and the whole
// skills block are absent on rosters the session is not authorized for.
type apiPlayer struct {
	ID           int        `xml:"id,attr"`
	FirstName    string     `xml:"firstName"`
	LastName     string     `xml:"lastName"`
	Nationality  string     `xml:"nationality"`
	Age          int        `xml:"age"`
	Height       int        `xml:"height"`
	Salary       int        `xml:"salary"`
	DMI          string     `xml:"dmi"`
	BestPosition string     `xml:"bestPosition"`
	Skills       *apiSkills `xml:"skills"`
}

// apiSkills uses the short tag names of the BB wire format.
type apiSkills struct {
	Potential  *int `xml:"potential"`
	GameShape  *int `xml:"gameShape"`
	JumpShot   *int `xml:"jumpShot"`
	Range      *int `xml:"range"`
	OutsideDef *int `xml:"outsideDef"`
	Handling   *int `xml:"handling"`
	Driving    *int `xml:"driving"`
	Passing    *int `xml:"passing"`
	InsideShot *int `xml:"insideShot"`
	InsideDef  *int `xml:"insideDef"`
	Rebound    *int `xml:"rebound"`
	Block      *int `xml:"block"`
	Stamina    *int `xml:"stamina"`
	FreeThrow  *int `xml:"freeThrow"`
	Experience *int `xml:"experience"`
}

func (p apiPlayer) toPlayer() Player {
	out := Player{
		PlayerID:     p.ID,
		Name:         strings.TrimSpace(p.FirstName + " " + p.LastName),
		Nationality:  p.Nationality,
		Age:          p.Age,
		HeightCM:     int(math.Round(float64(p.Height) * 2.54)),
		Salary:       p.Salary,
		BestPosition: p.BestPosition,
	}
	if raw := strings.TrimSpace(p.DMI); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			out.DMI = &v
		}
	}
	if s := p.Skills; s != nil {
		out.Potential = s.Potential
		out.GameShape = s.GameShape
		out.Skills = models.SkillSet{
			JumpShot:       s.JumpShot,
			JumpRange:      s.Range,
			OutsideDefense: s.OutsideDef,
			Handling:       s.Handling,
			Driving:        s.Driving,
			Passing:        s.Passing,
			InsideShot:     s.InsideShot,
			InsideDefense:  s.InsideDef,
			Rebounding:     s.Rebound,
			ShotBlocking:   s.Block,
			Stamina:        s.Stamina,
			FreeThrows:     s.FreeThrow,
			Experience:     s.Experience,
		}
	}
	return out
}
