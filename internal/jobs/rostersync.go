package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"courtside/backend/internal/bbapi"
	"courtside/backend/internal/models"
)

// Pause between team downloads to stay clear of BB rate limits.
const teamSyncPause = time.Second

// RosterStore is the slice of storage the roster sync needs.
type RosterStore interface {
	ListAutoSyncUsers() ([]models.User, error)
	ListTeamsForCoach(coachID string) ([]models.Team, error)
	GetPlayerByBBID(playerID int) (*models.Player, error)
	SavePlayer(player *models.Player) error
	DeactivatePlayersNotIn(teamID string, keepBBIDs []int) (int64, error)
}

// RosterSyncJob refreshes rosters from BB for every user with auto sync
// enabled and a stored key.
type RosterSyncJob struct {
	Store RosterStore
	BB    *bbapi.Client
}

func NewRosterSyncJob(store RosterStore, bb *bbapi.Client) *RosterSyncJob {
	return &RosterSyncJob{Store: store, BB: bb}
}

func (j *RosterSyncJob) Name() string { return "roster-sync" }

func (j *RosterSyncJob) Run(ctx context.Context) error {
	users, err := j.Store.ListAutoSyncUsers()
	if err != nil {
		return err
	}

	totalTeams, totalPlayers := 0, 0
	for i := range users {
		user := &users[i]
		teams, err := j.Store.ListTeamsForCoach(user.ID)
		if err != nil {
			log.Printf("ERROR: list teams for user %s: %v", user.LoginName, err)
			continue
		}
		for t := range teams {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			synced, err := j.SyncTeam(ctx, user, &teams[t])
			if err != nil {
				log.Printf("ERROR: sync team %s for user %s: %v", teams[t].Name, user.LoginName, err)
			} else if synced > 0 {
				totalTeams++
				totalPlayers += synced
			}

			select {
			case <-time.After(teamSyncPause):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	log.Printf("INFO: roster sync complete: %d teams, %d players", totalTeams, totalPlayers)
	return nil
}

// SyncTeam downloads one team's roster and upserts it, deactivating players
// that left. Returns the number of players written. Also used by the sync
// endpoint and the admin CLI.
func (j *RosterSyncJob) SyncTeam(ctx context.Context, user *models.User, team *models.Team) (int, error) {
	key := string(user.BBKey)
	if key == "" {
		return 0, fmt.Errorf("user %s has no BB key", user.LoginName)
	}

	players, err := j.BB.Roster(ctx, user.LoginName, key, team.TeamID, team.TeamType == models.TeamUtopia)
	if err != nil {
		return 0, err
	}
	if len(players) == 0 {
		log.Printf("WARNING: no players returned for team %s (%d)", team.Name, team.TeamID)
		return 0, nil
	}

	keep := make([]int, 0, len(players))
	for _, p := range players {
		keep = append(keep, p.PlayerID)
	}
	if _, err := j.Store.DeactivatePlayersNotIn(team.ID, keep); err != nil {
		return 0, err
	}

	synced := 0
	for _, bp := range players {
		player, err := j.Store.GetPlayerByBBID(bp.PlayerID)
		if err != nil {
			log.Printf("ERROR: load player %d: %v", bp.PlayerID, err)
			continue
		}
		if player == nil {
			player = &models.Player{PlayerID: bp.PlayerID}
		}
		applyRoster(player, bp, team)
		if err := j.Store.SavePlayer(player); err != nil {
			continue
		}
		synced++
	}
	return synced, nil
}

// applyRoster copies a BB roster entry onto the stored player. Players
// reappearing on a roster are reactivated and moved to the synced team.
func applyRoster(player *models.Player, bp bbapi.Player, team *models.Team) {
	age := bp.Age
	salary := bp.Salary

	player.Name = bp.Name
	player.Country = bp.Nationality
	player.TeamName = team.Name
	player.Age = &age
	player.Height = bp.HeightCM
	player.Potential = intOrZero(bp.Potential)
	player.GameShape = intOrZero(bp.GameShape)
	player.Salary = &salary
	player.DMI = bp.DMI
	player.BestPosition = bp.BestPosition
	player.SkillSet = bp.Skills
	player.CurrentTeamID = &team.ID
	player.Active = true
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
