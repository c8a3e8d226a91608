// Package bbapi is a thin client for the BuzzerBeater XML API. It covers the
// two flows the backend needs: credential login with team discovery, and
// roster downloads for synced teams.
package bbapi

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"

	"courtside/backend/internal/models"
)

const requestTimeout = 15 * time.Second

// TeamInfo is one team discovered during login.
type TeamInfo struct {
	TeamID int
	Name   string
	Type   models.TeamType
}

// LoginResult reports a credential check. Success false with a Message is a
// normal outcome for bad credentials, not an error.
type LoginResult struct {
	Success   bool
	Message   string
	UserID    string
	LoginName string
	Username  string
	Supporter bool
	Teams     []TeamInfo
}

// Player is a parsed roster entry with height converted to centimeters.
type Player struct {
	PlayerID     int
	Name         string
	Nationality  string
	Age          int
	HeightCM     int
	Salary       int
	DMI          *int
	BestPosition string
	Potential    *int
	GameShape    *int
	Skills       models.SkillSet
}

type Client struct {
	baseURL string
}

func NewClient(baseURL string) *Client {
	return &Client{baseURL: baseURL}
}

// httpClient returns a client with a fresh cookie jar. The roster endpoint
// is session-scoped, so each flow gets its own jar.
func (c *Client) httpClient() *http.Client {
	jar, _ := cookiejar.New(nil) // never fails with nil options
	return &http.Client{Jar: jar, Timeout: requestTimeout}
}

func loginParams(login, code string) url.Values {
	v := url.Values{}
	v.Set("login", login)
	v.Set("code", code)
	return v
}

// Login verifies BB credentials and collects the account's teams. The main
// team comes from a quickinfo call, the Utopia team from a second call with
// secondteam set; BB answers the latter with the main team again for
// accounts without one, so duplicate ids are dropped.
func (c *Client) Login(ctx context.Context, login, code string) (*LoginResult, error) {
	client := c.httpClient()

	root, err := c.get(ctx, client, "/login.aspx", loginParams(login, code))
	if err != nil {
		return nil, err
	}
	if root.Error != nil {
		return &LoginResult{Message: root.Error.reason()}, nil
	}
	if root.LoggedIn == nil {
		return &LoginResult{Message: "Login failed"}, nil
	}

	result := &LoginResult{
		Success:   true,
		UserID:    root.LoggedIn.UserID,
		LoginName: root.LoggedIn.UserName,
		Username:  login,
		Supporter: root.LoggedIn.supporter(),
	}
	if result.LoginName == "" {
		result.LoginName = login
	}

	quick := loginParams(login, code)
	quick.Set("quickinfo", "1")
	main, err := c.get(ctx, client, "/login.aspx", quick)
	if err != nil {
		return nil, err
	}
	if main.Team != nil {
		name := main.Team.name()
		// The owner element holds the public manager name. BB echoes the
		// team name there for accounts that never set one.
		if owner := main.Team.Owner; owner != "" && owner != name {
			result.Username = owner
		}
		result.Teams = append(result.Teams, TeamInfo{
			TeamID: main.Team.ID,
			Name:   name,
			Type:   models.TeamMain,
		})
	}

	quick.Set("secondteam", "1")
	second, err := c.get(ctx, client, "/login.aspx", quick)
	if err != nil {
		return nil, err
	}
	if second.Team != nil {
		if len(result.Teams) == 0 || second.Team.ID != result.Teams[0].TeamID {
			result.Teams = append(result.Teams, TeamInfo{
				TeamID: second.Team.ID,
				Name:   second.Team.name(),
				Type:   models.TeamUtopia,
			})
		}
	}

	return result, nil
}

// Roster downloads the roster of one team. A login call on the same cookie
// jar establishes the session first; utopia selects the second team so BB
// authorizes full skills for it.
func (c *Client) Roster(ctx context.Context, login, code string, teamID int, utopia bool) ([]Player, error) {
	client := c.httpClient()

	session := loginParams(login, code)
	if utopia {
		session.Set("secondteam", "1")
	}
	auth, err := c.get(ctx, client, "/login.aspx", session)
	if err != nil {
		return nil, err
	}
	if auth.Error != nil {
		return nil, fmt.Errorf("roster login failed: %s", auth.Error.reason())
	}

	params := url.Values{}
	params.Set("teamid", strconv.Itoa(teamID))
	root, err := c.get(ctx, client, "/roster.aspx", params)
	if err != nil {
		return nil, err
	}
	if root.Error != nil {
		return nil, fmt.Errorf("roster fetch failed: %s", root.Error.reason())
	}
	if root.Roster == nil {
		return nil, nil
	}

	players := make([]Player, 0, len(root.Roster.Players))
	for _, p := range root.Roster.Players {
		players = append(players, p.toPlayer())
	}
	return players, nil
}

func (c *Client) get(ctx context.Context, client *http.Client, path string, params url.Values) (*apiResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bb api request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bb api request %s: HTTP %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var out apiResponse
	if err := xml.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("bb api response %s: %w", path, err)
	}
	return &out, nil
}
