package handler_test

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"courtside/backend/internal/apperr"
	"courtside/backend/internal/models"
	"courtside/backend/internal/storage"
)

// fakeStore is an in-memory storage.Storage for handler tests. It reproduces
// the semantics the handlers lean on: direct pairs stored in canonical order,
// at most one active thread per pair or triple, appends that bump the
// thread's last-activity timestamp to the message's creation time, and unread
// counts recomputed from message rows. A stepped clock keeps creation times
// strictly increasing.
type fakeStore struct {
	mu  sync.Mutex
	seq int

	users   map[string]*models.User
	teams   map[string]*models.Team
	players map[string]*models.Player
	plans   map[string]*models.PlayerTrainingPlan
	shares  []*models.PlayerShare

	userThreads    []*models.UserThread
	userMessages   []*models.UserMessage
	playerThreads  []*models.PlayerThread
	playerMessages []*models.PlayerMessage
}

var _ storage.Storage = (*fakeStore)(nil)

var fakeEpoch = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:   make(map[string]*models.User),
		teams:   make(map[string]*models.Team),
		players: make(map[string]*models.Player),
		plans:   make(map[string]*models.PlayerTrainingPlan),
	}
}

// tick hands out a timestamp strictly later than every one before it. Must
// be called with the mutex held.
func (f *fakeStore) tick() time.Time {
	f.seq++
	return fakeEpoch.Add(time.Duration(f.seq) * time.Second)
}

// --- seed helpers ---

func (f *fakeStore) addUser(loginName, username string) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	user := &models.User{
		ID:                     uuid.New().String(),
		LoginName:              loginName,
		Username:               username,
		AutoSyncEnabled:        true,
		UnreadReminderDelayMin: 60,
	}
	f.users[user.ID] = user
	return user
}

func (f *fakeStore) addTeam(bbID int, name string, coach *models.User) *models.Team {
	f.mu.Lock()
	defer f.mu.Unlock()
	team := &models.Team{
		ID:        uuid.New().String(),
		TeamID:    bbID,
		Name:      name,
		ShortName: strings.ToUpper(name),
		TeamType:  models.TeamMain,
		CoachID:   coach.ID,
	}
	f.teams[team.ID] = team
	return team
}

func (f *fakeStore) addPlayer(bbID int, name string, team *models.Team) *models.Player {
	f.mu.Lock()
	defer f.mu.Unlock()
	player := &models.Player{
		ID:       uuid.New().String(),
		PlayerID: bbID,
		Name:     name,
		Active:   true,
	}
	if team != nil {
		player.CurrentTeamID = &team.ID
		player.TeamName = team.Name
	}
	f.players[player.ID] = player
	return player
}

// --- users ---

func (f *fakeStore) GetUserByID(id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, apperr.NotFound("User", nil)
}

func (f *fakeStore) GetUserByLogin(loginName string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.LoginName == loginName {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User", nil)
}

func (f *fakeStore) GetUserByUsername(username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, apperr.NotFound("Recipient", nil)
}

func (f *fakeStore) GetUserByTelegramChatID(chatID int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.TelegramChatID != nil && *user.TelegramChatID == chatID {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User", nil)
}

func (f *fakeStore) SaveUser(user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.UnreadReminderDelayMin == 0 {
		user.UnreadReminderDelayMin = 60
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeStore) SearchUsers(query, excludeID string, limit int) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	needle := strings.ToLower(query)
	var out []models.User
	for _, user := range f.users {
		if user.ID == excludeID {
			continue
		}
		if strings.Contains(strings.ToLower(user.Username), needle) {
			out = append(out, *user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) ListReminderCandidates() ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, user := range f.users {
		if user.UnreadReminderEnabled {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (f *fakeStore) ListAutoSyncUsers() ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, user := range f.users {
		if user.AutoSyncEnabled && string(user.BBKey) != "" {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (f *fakeStore) SetLastReminderSent(userID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[userID]; ok {
		user.LastUnreadReminderSentAt = &at
	}
	return nil
}

// --- teams ---

func (f *fakeStore) GetTeamByID(id string) (*models.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	team, ok := f.teams[id]
	if !ok {
		return nil, apperr.NotFound("Team", nil)
	}
	team.Coach = f.users[team.CoachID]
	return team, nil
}

func (f *fakeStore) GetTeamByBBID(teamID int) (*models.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, team := range f.teams {
		if team.TeamID == teamID {
			return team, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) SaveTeam(team *models.Team) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if team.ID == "" {
		team.ID = uuid.New().String()
	}
	f.teams[team.ID] = team
	return nil
}

func (f *fakeStore) ListTeamsForCoach(coachID string) ([]models.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Team
	for _, team := range f.teams {
		if team.CoachID == coachID {
			out = append(out, *team)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamType < out[j].TeamType })
	return out, nil
}

// --- players ---

func (f *fakeStore) GetPlayerByID(id string) (*models.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	player, ok := f.players[id]
	if !ok {
		return nil, apperr.NotFound("Player", nil)
	}
	f.attachTeam(player)
	return player, nil
}

func (f *fakeStore) GetPlayerByBBID(playerID int) (*models.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, player := range f.players {
		if player.PlayerID == playerID {
			f.attachTeam(player)
			return player, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListPlayersByBBIDs(playerIDs []int) ([]models.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wanted := make(map[int]bool, len(playerIDs))
	for _, id := range playerIDs {
		wanted[id] = true
	}
	var out []models.Player
	for _, player := range f.players {
		if wanted[player.PlayerID] {
			out = append(out, *player)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out, nil
}

func (f *fakeStore) SavePlayer(player *models.Player) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if player.ID == "" {
		player.ID = uuid.New().String()
	}
	f.players[player.ID] = player
	return nil
}

func (f *fakeStore) ListPlayersForTeam(teamID string, includeArchived bool) ([]models.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Player
	for _, player := range f.players {
		if player.CurrentTeamID == nil || *player.CurrentTeamID != teamID {
			continue
		}
		if !includeArchived && !player.Active {
			continue
		}
		out = append(out, *player)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeStore) ListOtherPlayers(userID string, sharedOnly bool, page, pageSize int) ([]models.Player, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matches []*models.Player
	if sharedOnly {
		shared := make(map[string]bool)
		for _, share := range f.shares {
			if share.RecipientID == userID {
				shared[share.PlayerID] = true
			}
		}
		for _, player := range f.players {
			if shared[player.ID] {
				matches = append(matches, player)
			}
		}
	} else {
		own := make(map[string]bool)
		for _, team := range f.teams {
			if team.CoachID == userID {
				own[team.ID] = true
			}
		}
		for _, player := range f.players {
			if !player.Active {
				continue
			}
			// With at least one own team the SQL NOT IN also drops teamless
			// players; with none it matches everyone.
			if len(own) > 0 && (player.CurrentTeamID == nil || own[*player.CurrentTeamID]) {
				continue
			}
			matches = append(matches, player)
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Name < matches[j].Name })
	total := int64(len(matches))

	start := (page - 1) * pageSize
	if start > len(matches) {
		start = len(matches)
	}
	end := start + pageSize
	if end > len(matches) {
		end = len(matches)
	}
	out := make([]models.Player, 0, end-start)
	for _, player := range matches[start:end] {
		f.attachTeam(player)
		out = append(out, *player)
	}
	return out, total, nil
}

func (f *fakeStore) DeactivatePlayersNotIn(teamID string, keepBBIDs []int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	keep := make(map[int]bool, len(keepBBIDs))
	for _, id := range keepBBIDs {
		keep[id] = true
	}
	var n int64
	for _, player := range f.players {
		if player.CurrentTeamID == nil || *player.CurrentTeamID != teamID || !player.Active {
			continue
		}
		if keep[player.PlayerID] {
			continue
		}
		player.Active = false
		n++
	}
	return n, nil
}

func (f *fakeStore) attachTeam(player *models.Player) {
	if player.CurrentTeamID != nil {
		player.CurrentTeam = f.teams[*player.CurrentTeamID]
	}
}

// --- direct threads ---

func (f *fakeStore) GetOrCreateUserThread(userID, otherID string) (*models.UserThread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	candidate := models.NewUserThread(userID, otherID)
	for _, t := range f.userThreads {
		if t.IsActive && t.UserAID == candidate.UserAID && t.UserBID == candidate.UserBID {
			f.attachUserThread(t)
			return t, nil
		}
	}
	now := f.tick()
	candidate.ID = uuid.New().String()
	candidate.CreatedAt = now
	candidate.UpdatedAt = now
	f.userThreads = append(f.userThreads, candidate)
	f.attachUserThread(candidate)
	return candidate, nil
}

func (f *fakeStore) GetUserThread(threadID string) (*models.UserThread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.userThreads {
		if t.ID == threadID {
			f.attachUserThread(t)
			return t, nil
		}
	}
	return nil, apperr.NotFound("Thread", nil)
}

func (f *fakeStore) ListUserThreads(userID string) ([]storage.UserThreadSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var threads []*models.UserThread
	for _, t := range f.userThreads {
		if t.UserAID == userID || t.UserBID == userID {
			threads = append(threads, t)
		}
	}
	sort.Slice(threads, func(i, j int) bool { return threads[i].UpdatedAt.After(threads[j].UpdatedAt) })

	out := make([]storage.UserThreadSummary, 0, len(threads))
	for _, t := range threads {
		f.attachUserThread(t)
		sum := storage.UserThreadSummary{Thread: *t}
		for _, msg := range f.userMessages {
			if msg.ThreadID != t.ID {
				continue
			}
			if sum.LastMessage == nil || msg.CreatedAt.After(sum.LastMessage.CreatedAt) {
				m := *msg
				sum.LastMessage = &m
			}
			if msg.SenderID != userID && msg.ReadAt == nil {
				sum.UnreadCount++
			}
		}
		out = append(out, sum)
	}
	return out, nil
}

func (f *fakeStore) ListUserMessages(threadID string) ([]models.UserMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.UserMessage
	for _, msg := range f.userMessages {
		if msg.ThreadID != threadID {
			continue
		}
		m := *msg
		m.Sender = f.users[m.SenderID]
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) AppendUserMessage(threadID, senderID, content string) (*models.UserMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var thread *models.UserThread
	for _, t := range f.userThreads {
		if t.ID == threadID {
			thread = t
			break
		}
	}
	if thread == nil {
		return nil, apperr.NotFound("Thread", nil)
	}
	msg := &models.UserMessage{
		ID:        uuid.New().String(),
		CreatedAt: f.tick(),
		Content:   content,
		ThreadID:  threadID,
		SenderID:  senderID,
	}
	f.userMessages = append(f.userMessages, msg)
	thread.UpdatedAt = msg.CreatedAt
	return msg, nil
}

func (f *fakeStore) MarkUserThreadRead(threadID, readerID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.tick()
	var n int64
	for _, msg := range f.userMessages {
		if msg.ThreadID == threadID && msg.SenderID != readerID && msg.ReadAt == nil {
			at := now
			msg.ReadAt = &at
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) ArchiveUserThread(threadID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.userThreads {
		if t.ID == threadID {
			t.IsActive = false
		}
	}
	return nil
}

func (f *fakeStore) attachUserThread(t *models.UserThread) {
	t.UserA = f.users[t.UserAID]
	t.UserB = f.users[t.UserBID]
}

// --- player threads ---

func (f *fakeStore) GetOrCreatePlayerThread(playerID, ownerID, participantID string) (*models.PlayerThread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t := f.findActivePlayerThread(playerID, ownerID, participantID); t != nil {
		return t, nil
	}
	now := f.tick()
	t := &models.PlayerThread{
		ID:            uuid.New().String(),
		CreatedAt:     now,
		UpdatedAt:     now,
		IsActive:      true,
		PlayerID:      playerID,
		OwnerID:       ownerID,
		ParticipantID: participantID,
	}
	f.playerThreads = append(f.playerThreads, t)
	f.attachPlayerThread(t)
	return t, nil
}

func (f *fakeStore) FindActivePlayerThread(playerID, ownerID, participantID string) (*models.PlayerThread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.findActivePlayerThread(playerID, ownerID, participantID), nil
}

func (f *fakeStore) findActivePlayerThread(playerID, ownerID, participantID string) *models.PlayerThread {
	for _, t := range f.playerThreads {
		if t.IsActive && t.PlayerID == playerID && t.OwnerID == ownerID && t.ParticipantID == participantID {
			f.attachPlayerThread(t)
			return t
		}
	}
	return nil
}

func (f *fakeStore) GetPlayerThread(threadID string) (*models.PlayerThread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.playerThreads {
		if t.ID == threadID {
			f.attachPlayerThread(t)
			return t, nil
		}
	}
	return nil, apperr.NotFound("Thread", nil)
}

func (f *fakeStore) ListPlayerThreads(userID string) ([]storage.PlayerThreadSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var threads []*models.PlayerThread
	for _, t := range f.playerThreads {
		if t.OwnerID == userID || t.ParticipantID == userID {
			threads = append(threads, t)
		}
	}
	return f.playerThreadSummaries(threads, userID), nil
}

func (f *fakeStore) ListActivePlayerThreadsAsOwner(playerID, ownerID string) ([]storage.PlayerThreadSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var threads []*models.PlayerThread
	for _, t := range f.playerThreads {
		if t.IsActive && t.PlayerID == playerID && t.OwnerID == ownerID {
			threads = append(threads, t)
		}
	}
	return f.playerThreadSummaries(threads, ownerID), nil
}

func (f *fakeStore) playerThreadSummaries(threads []*models.PlayerThread, userID string) []storage.PlayerThreadSummary {
	sort.Slice(threads, func(i, j int) bool { return threads[i].UpdatedAt.After(threads[j].UpdatedAt) })
	out := make([]storage.PlayerThreadSummary, 0, len(threads))
	for _, t := range threads {
		f.attachPlayerThread(t)
		sum := storage.PlayerThreadSummary{Thread: *t}
		for _, msg := range f.playerMessages {
			if msg.ThreadID != t.ID {
				continue
			}
			if sum.LastMessage == nil || msg.CreatedAt.After(sum.LastMessage.CreatedAt) {
				m := *msg
				sum.LastMessage = &m
			}
			if msg.SenderID != userID && msg.ReadAt == nil {
				sum.UnreadCount++
			}
		}
		out = append(out, sum)
	}
	return out
}

func (f *fakeStore) ListPlayerMessages(threadID string) ([]models.PlayerMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PlayerMessage
	for _, msg := range f.playerMessages {
		if msg.ThreadID != threadID {
			continue
		}
		m := *msg
		m.Sender = f.users[m.SenderID]
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) AppendPlayerMessage(threadID, senderID, content string) (*models.PlayerMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var thread *models.PlayerThread
	for _, t := range f.playerThreads {
		if t.ID == threadID {
			thread = t
			break
		}
	}
	if thread == nil {
		return nil, apperr.NotFound("Thread", nil)
	}
	msg := &models.PlayerMessage{
		ID:        uuid.New().String(),
		CreatedAt: f.tick(),
		Content:   content,
		ThreadID:  threadID,
		SenderID:  senderID,
	}
	f.playerMessages = append(f.playerMessages, msg)
	thread.UpdatedAt = msg.CreatedAt
	return msg, nil
}

func (f *fakeStore) MarkPlayerThreadRead(threadID, readerID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.tick()
	var n int64
	for _, msg := range f.playerMessages {
		if msg.ThreadID == threadID && msg.SenderID != readerID && msg.ReadAt == nil {
			at := now
			msg.ReadAt = &at
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) ArchivePlayerThread(threadID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.playerThreads {
		if t.ID == threadID {
			t.IsActive = false
		}
	}
	return nil
}

func (f *fakeStore) attachPlayerThread(t *models.PlayerThread) {
	t.Player = f.players[t.PlayerID]
	t.Owner = f.users[t.OwnerID]
	t.Participant = f.users[t.ParticipantID]
}

// --- unread aggregation ---

func (f *fakeStore) CountUnreadOlderThan(userID string, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, msg := range f.userMessages {
		if msg.SenderID == userID || msg.ReadAt != nil || !msg.CreatedAt.Before(cutoff) {
			continue
		}
		for _, t := range f.userThreads {
			if t.ID == msg.ThreadID && t.IsActive && (t.UserAID == userID || t.UserBID == userID) {
				n++
				break
			}
		}
	}
	for _, msg := range f.playerMessages {
		if msg.SenderID == userID || msg.ReadAt != nil || !msg.CreatedAt.Before(cutoff) {
			continue
		}
		for _, t := range f.playerThreads {
			if t.ID == msg.ThreadID && t.IsActive && (t.OwnerID == userID || t.ParticipantID == userID) {
				n++
				break
			}
		}
	}
	return n, nil
}

// --- shares ---

func (f *fakeStore) GetShareByID(id string) (*models.PlayerShare, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, share := range f.shares {
		if share.ID == id {
			return share, nil
		}
	}
	return nil, apperr.NotFound("Share", nil)
}

func (f *fakeStore) FindShare(playerID, recipientID string) (*models.PlayerShare, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, share := range f.shares {
		if share.PlayerID == playerID && share.RecipientID == recipientID {
			return share, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListSharedPlayerIDs(recipientID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for _, share := range f.shares {
		if share.RecipientID == recipientID {
			ids = append(ids, share.PlayerID)
		}
	}
	return ids, nil
}

func (f *fakeStore) CreateShare(share *models.PlayerShare) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if share.ID == "" {
		share.ID = uuid.New().String()
	}
	share.CreatedAt = f.tick()
	f.shares = append(f.shares, share)
	return nil
}

func (f *fakeStore) ListSharesReceived(userID string) ([]models.PlayerShare, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PlayerShare
	for _, share := range f.shares {
		if share.RecipientID != userID {
			continue
		}
		s := *share
		s.Player = f.players[s.PlayerID]
		s.Owner = f.users[s.OwnerID]
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) ListSharesSent(userID string) ([]models.PlayerShare, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PlayerShare
	for _, share := range f.shares {
		if share.OwnerID != userID {
			continue
		}
		s := *share
		s.Player = f.players[s.PlayerID]
		s.Recipient = f.users[s.RecipientID]
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) DeleteShare(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.shares[:0]
	for _, share := range f.shares {
		if share.ID != id {
			kept = append(kept, share)
		}
	}
	f.shares = kept
	return nil
}

// --- training plans ---

func (f *fakeStore) GetPlanForPlayer(playerID string) (*models.PlayerTrainingPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.plans[playerID], nil
}

func (f *fakeStore) SavePlan(plan *models.PlayerTrainingPlan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if plan.ID == "" {
		plan.ID = uuid.New().String()
		plan.CreatedAt = f.tick()
	}
	plan.UpdatedAt = f.tick()
	f.plans[plan.PlayerID] = plan
	return nil
}

func (f *fakeStore) DeletePlanForPlayer(playerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.plans, playerID)
	return nil
}
