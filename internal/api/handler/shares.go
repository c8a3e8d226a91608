package handler

import (
	"fmt"
	"net/http"
	"time"

	"courtside/backend/internal/apperr"
	"courtside/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type shareRequest struct {
	RecipientUsername string `json:"recipientUsername"`
	PlayerIDs         []int  `json:"playerIds"`
	ShareEntireTeam   bool   `json:"shareEntireTeam"`
}

// shareResponse always ships with HTTP 200; clients read the success flag.
type shareResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	SharedCount int    `json:"shared_count"`
}

// The share screens consume snake_case, unlike the rest of the API.
type sharedPlayerDto struct {
	ID           string  `json:"id"`
	PlayerID     int     `json:"player_id"`
	Name         string  `json:"name"`
	Age          *int    `json:"age"`
	Potential    int     `json:"potential"`
	BestPosition *string `json:"best_position"`

	JumpShot       *int `json:"jump_shot"`
	JumpRange      *int `json:"jump_range"`
	OutsideDefense *int `json:"outside_defense"`
	Handling       *int `json:"handling"`
	Driving        *int `json:"driving"`
	Passing        *int `json:"passing"`
	InsideShot     *int `json:"inside_shot"`
	InsideDefense  *int `json:"inside_defense"`
	Rebounding     *int `json:"rebounding"`
	ShotBlocking   *int `json:"shot_blocking"`
	Stamina        *int `json:"stamina"`
	FreeThrows     *int `json:"free_throws"`
	Experience     *int `json:"experience"`
}

type shareDto struct {
	ShareID           string          `json:"share_id"`
	Player            sharedPlayerDto `json:"player"`
	OwnerUsername     string          `json:"owner_username"`
	OwnerName         *string         `json:"owner_name"`
	OwnerTeamName     *string         `json:"owner_team_name"`
	RecipientUsername string          `json:"recipient_username"`
	RecipientName     *string         `json:"recipient_name"`
	SharedAt          time.Time       `json:"shared_at"`
}

func sharedPlayer(p *models.Player) sharedPlayerDto {
	return sharedPlayerDto{
		ID:           p.ID,
		PlayerID:     p.PlayerID,
		Name:         p.Name,
		Age:          p.Age,
		Potential:    p.Potential,
		BestPosition: nilIfEmpty(p.BestPosition),

		JumpShot:       p.JumpShot,
		JumpRange:      p.JumpRange,
		OutsideDefense: p.OutsideDefense,
		Handling:       p.Handling,
		Driving:        p.Driving,
		Passing:        p.Passing,
		InsideShot:     p.InsideShot,
		InsideDefense:  p.InsideDefense,
		Rebounding:     p.Rebounding,
		ShotBlocking:   p.ShotBlocking,
		Stamina:        p.Stamina,
		FreeThrows:     p.FreeThrows,
		Experience:     p.Experience,
	}
}

// CreateShares shares players with another user by public username. Either an
// explicit list of player ids or the whole current roster. Duplicates are
// skipped silently and count against nothing.
func (h *Handler) CreateShares(c *gin.Context) {
	user := currentUser(c)
	claims := currentClaims(c)

	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	recipient, err := h.Storage.GetUserByUsername(req.RecipientUsername)
	if err != nil {
		if apperr.StatusOf(err) == http.StatusNotFound {
			c.JSON(http.StatusOK, shareResponse{Message: "User not found"})
			return
		}
		respondError(c, err)
		return
	}
	if recipient.ID == user.ID {
		c.JSON(http.StatusOK, shareResponse{Message: "Cannot share with yourself"})
		return
	}

	var players []models.Player
	if req.ShareEntireTeam {
		team, err := h.Storage.GetTeamByBBID(claims.TeamID)
		if err != nil {
			respondError(c, err)
			return
		}
		if team == nil {
			c.JSON(http.StatusOK, shareResponse{Message: "Team not found"})
			return
		}
		players, err = h.Storage.ListPlayersForTeam(team.ID, false)
		if err != nil {
			respondError(c, err)
			return
		}
	} else {
		players, err = h.Storage.ListPlayersByBBIDs(req.PlayerIDs)
		if err != nil {
			respondError(c, err)
			return
		}
	}
	if len(players) == 0 {
		c.JSON(http.StatusOK, shareResponse{Message: "No players found to share"})
		return
	}

	shared := 0
	for i := range players {
		existing, err := h.Storage.FindShare(players[i].ID, recipient.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		if existing != nil {
			continue
		}
		share := models.PlayerShare{
			PlayerID:    players[i].ID,
			OwnerID:     user.ID,
			RecipientID: recipient.ID,
		}
		if err := h.Storage.CreateShare(&share); err != nil {
			respondError(c, err)
			return
		}
		shared++
	}

	c.JSON(http.StatusOK, shareResponse{
		Success:     true,
		Message:     fmt.Sprintf("Shared %d players with %s", shared, recipient.Username),
		SharedCount: shared,
	})
}

// SharesReceived lists players other managers shared with the caller.
func (h *Handler) SharesReceived(c *gin.Context) {
	user := currentUser(c)

	shares, err := h.Storage.ListSharesReceived(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]shareDto, 0, len(shares))
	for i := range shares {
		s := &shares[i]
		if s.Player == nil || s.Owner == nil {
			continue
		}
		out = append(out, shareDto{
			ShareID:           s.ID,
			Player:            sharedPlayer(s.Player),
			OwnerUsername:     s.Owner.Username,
			OwnerName:         nilIfEmpty(s.Owner.Name),
			RecipientUsername: user.Username,
			RecipientName:     nilIfEmpty(user.Name),
			SharedAt:          s.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

// SharesSent lists the shares the caller handed out.
func (h *Handler) SharesSent(c *gin.Context) {
	user := currentUser(c)

	shares, err := h.Storage.ListSharesSent(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]shareDto, 0, len(shares))
	for i := range shares {
		s := &shares[i]
		if s.Player == nil || s.Recipient == nil {
			continue
		}
		out = append(out, shareDto{
			ShareID:           s.ID,
			Player:            sharedPlayer(s.Player),
			OwnerUsername:     user.Username,
			OwnerName:         nilIfEmpty(user.Name),
			RecipientUsername: s.Recipient.Username,
			RecipientName:     nilIfEmpty(s.Recipient.Name),
			SharedAt:          s.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

// DeleteShare revokes a share the caller owns. Foreign shares read as absent,
// not forbidden.
func (h *Handler) DeleteShare(c *gin.Context) {
	user := currentUser(c)

	share, err := h.Storage.GetShareByID(c.Param("shareID"))
	if err != nil {
		respondError(c, err)
		return
	}
	if share.OwnerID != user.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Share not found"})
		return
	}
	if err := h.Storage.DeleteShare(share.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Share removed"})
}

// SearchShareUsers finds potential recipients by public username. Queries
// under two characters return nothing rather than the whole user table.
func (h *Handler) SearchShareUsers(c *gin.Context) {
	user := currentUser(c)

	q := c.Query("q")
	if len(q) < 2 {
		c.JSON(http.StatusOK, []gin.H{})
		return
	}
	users, err := h.Storage.SearchUsers(q, user.ID, 10)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, gin.H{"username": u.Username, "name": u.Username})
	}
	c.JSON(http.StatusOK, out)
}
