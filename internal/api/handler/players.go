package handler

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"courtside/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type rosterPlayerDto struct {
	ID           string          `json:"id"`
	PlayerID     int             `json:"playerId"`
	FirstName    string          `json:"firstName"`
	LastName     string          `json:"lastName"`
	Nationality  string          `json:"nationality"`
	Age          *int            `json:"age"`
	Height       int             `json:"height"`
	Salary       *int            `json:"salary"`
	DMI          *int            `json:"dmi"`
	BestPosition string          `json:"bestPosition"`
	Potential    int             `json:"potential"`
	Archived     bool            `json:"archived"`
	Skills       models.SkillSet `json:"skills"`
}

type marketPlayerDto struct {
	ID             string           `json:"id"`
	PlayerID       int              `json:"playerId"`
	Name           string           `json:"name"`
	Country        string           `json:"country"`
	TeamName       *string          `json:"teamName"`
	Age            *int             `json:"age"`
	Height         int              `json:"height"`
	BestPosition   string           `json:"bestPosition"`
	Potential      int              `json:"potential"`
	IsSharedWithMe bool             `json:"isSharedWithMe"`
	Skills         *models.SkillSet `json:"skills"`
}

type marketPageDto struct {
	Players    []marketPlayerDto `json:"players"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}

// Roster returns the players of the session's team. Archived players, the
// ones that dropped off the synced roster, are included only on request.
func (h *Handler) Roster(c *gin.Context) {
	claims := currentClaims(c)
	showArchived := strings.EqualFold(c.Query("show_archived"), "true")

	team, err := h.Storage.GetTeamByBBID(claims.TeamID)
	if err != nil {
		respondError(c, err)
		return
	}
	if team == nil {
		c.JSON(http.StatusOK, []rosterPlayerDto{})
		return
	}

	players, err := h.Storage.ListPlayersForTeam(team.ID, showArchived)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]rosterPlayerDto, 0, len(players))
	for _, p := range players {
		first, last := splitName(p.Name)
		out = append(out, rosterPlayerDto{
			ID:           p.ID,
			PlayerID:     p.PlayerID,
			FirstName:    first,
			LastName:     last,
			Nationality:  p.Country,
			Age:          p.Age,
			Height:       p.Height,
			Salary:       p.Salary,
			DMI:          p.DMI,
			BestPosition: p.BestPosition,
			Potential:    p.Potential,
			Archived:     !p.Active,
			Skills:       p.SkillSet,
		})
	}
	c.JSON(http.StatusOK, out)
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// SyncRoster refreshes the session team's roster from the upstream API on
// demand, outside the weekly cron.
func (h *Handler) SyncRoster(c *gin.Context) {
	user := currentUser(c)
	claims := currentClaims(c)

	if string(user.BBKey) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "BB key not available"})
		return
	}
	team, err := h.Storage.GetTeamByBBID(claims.TeamID)
	if err != nil {
		respondError(c, err)
		return
	}
	if team == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Team not found"})
		return
	}

	synced, err := h.Sync.SyncTeam(c.Request.Context(), user, team)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": fmt.Sprintf("Synced %d players", synced)})
}

// AllPlayers pages through players outside the caller's own teams, the pool
// worth scouting. Skills stay hidden unless the player was shared with the
// caller; shared_only narrows the listing to those.
func (h *Handler) AllPlayers(c *gin.Context) {
	user := currentUser(c)
	sharedOnly := strings.EqualFold(c.Query("shared_only"), "true")
	page := intQuery(c, "page", 1)
	pageSize := intQuery(c, "page_size", 50)

	sharedIDs, err := h.Storage.ListSharedPlayerIDs(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	shared := make(map[string]bool, len(sharedIDs))
	for _, id := range sharedIDs {
		shared[id] = true
	}

	if sharedOnly && len(sharedIDs) == 0 {
		c.JSON(http.StatusOK, marketPageDto{Players: []marketPlayerDto{}, Page: page, PageSize: pageSize})
		return
	}

	players, total, err := h.Storage.ListOtherPlayers(user.ID, sharedOnly, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]marketPlayerDto, 0, len(players))
	for i := range players {
		p := &players[i]
		dto := marketPlayerDto{
			ID:             p.ID,
			PlayerID:       p.PlayerID,
			Name:           p.Name,
			Country:        p.Country,
			Age:            p.Age,
			Height:         p.Height,
			BestPosition:   p.BestPosition,
			Potential:      p.Potential,
			IsSharedWithMe: shared[p.ID],
		}
		if p.CurrentTeam != nil {
			dto.TeamName = &p.CurrentTeam.Name
		}
		if shared[p.ID] {
			dto.Skills = &p.SkillSet
		}
		out = append(out, dto)
	}

	c.JSON(http.StatusOK, marketPageDto{
		Players:    out,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

// PlayerDetail returns one player. Salary, DMI, game shape and skills are
// only disclosed when the caller owns the player or had them shared.
func (h *Handler) PlayerDetail(c *gin.Context) {
	user := currentUser(c)

	player, ok := h.bbPlayer(c)
	if !ok {
		return
	}

	ids, err := h.teamIDs(user)
	if err != nil {
		respondError(c, err)
		return
	}
	isOwn := player.CurrentTeamID != nil && slices.Contains(ids, *player.CurrentTeamID)

	isShared := false
	if !isOwn {
		share, err := h.Storage.FindShare(player.ID, user.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		isShared = share != nil
	}
	fullAccess := isOwn || isShared

	resp := gin.H{
		"id":            player.ID,
		"playerId":      player.PlayerID,
		"name":          player.Name,
		"country":       player.Country,
		"teamName":      nil,
		"teamId":        nil,
		"age":           player.Age,
		"height":        player.Height,
		"bestPosition":  player.BestPosition,
		"potential":     player.Potential,
		"hasFullAccess": fullAccess,
		"isOwnPlayer":   isOwn,
		"isSharedPlayer": isShared,
		"salary":        nil,
		"dmi":           nil,
		"gameShape":     nil,
		"skills":        nil,
	}
	if player.CurrentTeam != nil {
		resp["teamName"] = player.CurrentTeam.Name
		resp["teamId"] = player.CurrentTeam.TeamID
	}
	if fullAccess {
		resp["salary"] = player.Salary
		resp["dmi"] = player.DMI
		resp["gameShape"] = player.GameShape
		resp["skills"] = player.SkillSet
	}
	c.JSON(http.StatusOK, resp)
}
