package storage

import (
	"errors"
	"log"

	"courtside/backend/internal/apperr"
	"courtside/backend/internal/models"

	"gorm.io/gorm"
)

// GetTeamByID loads a team by internal id with its coach.
func (s *Service) GetTeamByID(id string) (*models.Team, error) {
	var team models.Team
	err := s.DB.Preload("Coach").Where("id = ?", id).First(&team).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Team", err)
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// GetTeamByBBID loads a team by its BuzzerBeater id, or nil when the team is
// not known yet. Used by the roster upsert.
func (s *Service) GetTeamByBBID(teamID int) (*models.Team, error) {
	var team models.Team
	err := s.DB.Where("team_id = ?", teamID).First(&team).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// SaveTeam persists a team.
func (s *Service) SaveTeam(team *models.Team) error {
	if err := s.DB.Save(team).Error; err != nil {
		log.Printf("ERROR: Failed to save team %d: %v", team.TeamID, err)
		return err
	}
	return nil
}

// ListTeamsForCoach returns every team coached by the user, main team first.
func (s *Service) ListTeamsForCoach(coachID string) ([]models.Team, error) {
	var teams []models.Team
	err := s.DB.Where("coach_id = ?", coachID).
		Order("team_type asc").
		Find(&teams).Error
	return teams, err
}

// GetPlayerByID loads a player by internal id with their current team.
func (s *Service) GetPlayerByID(id string) (*models.Player, error) {
	var player models.Player
	err := s.DB.Preload("CurrentTeam").Where("id = ?", id).First(&player).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Player", err)
	}
	if err != nil {
		return nil, err
	}
	return &player, nil
}

// GetPlayerByBBID loads a player by BuzzerBeater id, or nil when unknown.
func (s *Service) GetPlayerByBBID(playerID int) (*models.Player, error) {
	var player models.Player
	err := s.DB.Preload("CurrentTeam").Where("player_id = ?", playerID).First(&player).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &player, nil
}

// ListPlayersByBBIDs loads the players matching the given BuzzerBeater ids.
// Unknown ids are silently dropped.
func (s *Service) ListPlayersByBBIDs(playerIDs []int) ([]models.Player, error) {
	if len(playerIDs) == 0 {
		return nil, nil
	}
	var players []models.Player
	err := s.DB.Where("player_id IN ?", playerIDs).Find(&players).Error
	return players, err
}

// SavePlayer persists a player.
func (s *Service) SavePlayer(player *models.Player) error {
	if err := s.DB.Save(player).Error; err != nil {
		log.Printf("ERROR: Failed to save player %d: %v", player.PlayerID, err)
		return err
	}
	return nil
}

// ListPlayersForTeam returns the team's players. Archived ones are players
// who dropped off the synced roster; they are hidden unless asked for.
func (s *Service) ListPlayersForTeam(teamID string, includeArchived bool) ([]models.Player, error) {
	var players []models.Player
	q := s.DB.Where("current_team_id = ?", teamID)
	if !includeArchived {
		q = q.Where("active = ?", true)
	}
	err := q.Order("name asc").Find(&players).Error
	return players, err
}

// ListOtherPlayers pages through players outside the user's own teams. With
// sharedOnly it narrows to players shared with the user instead, regardless
// of active status. NOT IN over the team subquery keeps teamless players out
// once the user coaches at least one team.
func (s *Service) ListOtherPlayers(userID string, sharedOnly bool, page, pageSize int) ([]models.Player, int64, error) {
	q := s.DB.Model(&models.Player{})
	if sharedOnly {
		shareQ := s.DB.Model(&models.PlayerShare{}).
			Select("player_id").
			Where("recipient_id = ?", userID)
		q = q.Where("id IN (?)", shareQ)
	} else {
		teamQ := s.DB.Model(&models.Team{}).
			Select("id").
			Where("coach_id = ?", userID)
		q = q.Where("active = ?", true).
			Where("current_team_id NOT IN (?)", teamQ)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var players []models.Player
	err := q.Preload("CurrentTeam").
		Order("name asc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&players).Error
	return players, total, err
}

// DeactivatePlayersNotIn flags players who vanished from the synced roster.
// They stay in the database so threads and shares pointing at them survive.
func (s *Service) DeactivatePlayersNotIn(teamID string, keepBBIDs []int) (int64, error) {
	q := s.DB.Model(&models.Player{}).
		Where("current_team_id = ?", teamID).
		Where("active = ?", true)
	if len(keepBBIDs) > 0 {
		q = q.Where("player_id NOT IN ?", keepBBIDs)
	}
	res := q.Update("active", false)
	if res.Error != nil {
		log.Printf("ERROR: Failed to deactivate departed players for team %s: %v", teamID, res.Error)
	}
	return res.RowsAffected, res.Error
}

// GetShareByID loads a share by id.
func (s *Service) GetShareByID(id string) (*models.PlayerShare, error) {
	var share models.PlayerShare
	err := s.DB.Where("id = ?", id).First(&share).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Share", err)
	}
	if err != nil {
		return nil, err
	}
	return &share, nil
}

// FindShare returns the share of a player to a recipient, or nil when the
// player was never shared with them. Used to skip duplicates.
func (s *Service) FindShare(playerID, recipientID string) (*models.PlayerShare, error) {
	var share models.PlayerShare
	err := s.DB.Where("player_id = ? AND recipient_id = ?", playerID, recipientID).First(&share).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &share, nil
}

// ListSharedPlayerIDs returns the ids of every player shared with the user.
func (s *Service) ListSharedPlayerIDs(recipientID string) ([]string, error) {
	var ids []string
	err := s.DB.Model(&models.PlayerShare{}).
		Where("recipient_id = ?", recipientID).
		Pluck("player_id", &ids).Error
	return ids, err
}

// CreateShare persists a new share.
func (s *Service) CreateShare(share *models.PlayerShare) error {
	if err := s.DB.Create(share).Error; err != nil {
		log.Printf("ERROR: Failed to share player %s with %s: %v", share.PlayerID, share.RecipientID, err)
		return err
	}
	return nil
}

// ListSharesReceived returns shares addressed to the user, newest first.
func (s *Service) ListSharesReceived(userID string) ([]models.PlayerShare, error) {
	var shares []models.PlayerShare
	err := s.DB.Preload("Player").Preload("Owner").
		Where("recipient_id = ?", userID).
		Order("created_at desc").
		Find(&shares).Error
	return shares, err
}

// ListSharesSent returns shares the user handed out, newest first.
func (s *Service) ListSharesSent(userID string) ([]models.PlayerShare, error) {
	var shares []models.PlayerShare
	err := s.DB.Preload("Player").Preload("Recipient").
		Where("owner_id = ?", userID).
		Order("created_at desc").
		Find(&shares).Error
	return shares, err
}

// DeleteShare removes a share. Ownership is checked by the caller.
func (s *Service) DeleteShare(id string) error {
	return s.DB.Where("id = ?", id).Delete(&models.PlayerShare{}).Error
}

// GetPlanForPlayer returns the player's training plan, or nil when none was
// written.
func (s *Service) GetPlanForPlayer(playerID string) (*models.PlayerTrainingPlan, error) {
	var plan models.PlayerTrainingPlan
	err := s.DB.Where("player_id = ?", playerID).First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// SavePlan upserts the training plan.
func (s *Service) SavePlan(plan *models.PlayerTrainingPlan) error {
	if err := s.DB.Save(plan).Error; err != nil {
		log.Printf("ERROR: Failed to save plan for player %s: %v", plan.PlayerID, err)
		return err
	}
	return nil
}

// DeletePlanForPlayer removes the plan if one exists. Deleting an absent plan
// is a no-op.
func (s *Service) DeletePlanForPlayer(playerID string) error {
	return s.DB.Where("player_id = ?", playerID).Delete(&models.PlayerTrainingPlan{}).Error
}
