package handler

import (
	"net/http"
	"slices"
	"time"

	"courtside/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type planDto struct {
	ID        string    `json:"id"`
	PlayerID  int       `json:"playerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	models.SkillSet
}

// ownedPlayer resolves the playerID route param and requires the caller to
// coach the player's current team. Plans are private to the owner.
func (h *Handler) ownedPlayer(c *gin.Context) (*models.Player, bool) {
	player, ok := h.bbPlayer(c)
	if !ok {
		return nil, false
	}
	user := currentUser(c)
	ids, err := h.teamIDs(user)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if player.CurrentTeamID == nil || !slices.Contains(ids, *player.CurrentTeamID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your player"})
		return nil, false
	}
	return player, true
}

func clampSkill(v *int) *int {
	if v == nil {
		return nil
	}
	n := min(20, max(1, *v))
	return &n
}

func clampSkills(s *models.SkillSet) {
	for _, f := range []**int{
		&s.JumpShot, &s.JumpRange, &s.OutsideDefense, &s.Handling, &s.Driving,
		&s.Passing, &s.InsideShot, &s.InsideDefense, &s.Rebounding,
		&s.ShotBlocking, &s.Stamina, &s.FreeThrows, &s.Experience,
	} {
		*f = clampSkill(*f)
	}
}

func planResponse(plan *models.PlayerTrainingPlan, bbPlayerID int) planDto {
	return planDto{
		ID:        plan.ID,
		PlayerID:  bbPlayerID,
		CreatedAt: plan.CreatedAt,
		UpdatedAt: plan.UpdatedAt,
		SkillSet:  plan.SkillSet,
	}
}

// GetPlan returns the player's training plan.
func (h *Handler) GetPlan(c *gin.Context) {
	player, ok := h.ownedPlayer(c)
	if !ok {
		return
	}
	plan, err := h.Storage.GetPlanForPlayer(player.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if plan == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No plan for this player"})
		return
	}
	c.JSON(http.StatusOK, planResponse(plan, player.PlayerID))
}

// UpsertPlan creates or replaces the player's training plan. The body is the
// complete set of targets; an omitted skill clears any previous target.
func (h *Handler) UpsertPlan(c *gin.Context) {
	player, ok := h.ownedPlayer(c)
	if !ok {
		return
	}
	var body models.SkillSet
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	clampSkills(&body)

	plan, err := h.Storage.GetPlanForPlayer(player.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if plan == nil {
		plan = &models.PlayerTrainingPlan{PlayerID: player.ID}
	}
	plan.SkillSet = body
	if err := h.Storage.SavePlan(plan); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, planResponse(plan, player.PlayerID))
}

// DeletePlan removes the plan. Deleting an absent plan still returns 204.
func (h *Handler) DeletePlan(c *gin.Context) {
	player, ok := h.ownedPlayer(c)
	if !ok {
		return
	}
	if err := h.Storage.DeletePlanForPlayer(player.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
