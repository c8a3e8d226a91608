package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"courtside/backend/internal/apperr"
	"courtside/backend/internal/mailer"
	"courtside/backend/internal/models"
	"courtside/backend/internal/secrets"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
)

// Login checks the credentials against BuzzerBeater, upserts the account and
// its teams, and opens a session scoped to the first team. Bad credentials
// are a 200 with success=false, not an error.
func (h *Handler) Login(c *gin.Context) {
	username := c.Query("username")
	bbKey := c.Query("bbKey")

	result, err := h.BB.Login(c.Request.Context(), username, bbKey)
	if err != nil {
		respondError(c, err)
		return
	}
	if !result.Success {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": result.Message})
		return
	}

	publicName := result.Username
	if publicName == "" {
		publicName = username
	}

	user, err := h.Storage.GetUserByLogin(result.LoginName)
	switch {
	case err == nil:
		user.BBKey = secrets.String(bbKey)
		user.Username = publicName
		user.Supporter = result.Supporter
	case apperr.StatusOf(err) == http.StatusNotFound:
		user = &models.User{
			LoginName: result.LoginName,
			Username:  publicName,
			BBKey:     secrets.String(bbKey),
			Supporter: result.Supporter,
		}
	default:
		respondError(c, err)
		return
	}
	if err := h.Storage.SaveUser(user); err != nil {
		respondError(c, err)
		return
	}

	firstTeamID := 0
	firstTeamType := string(models.TeamMain)
	for i, ti := range result.Teams {
		team, err := h.Storage.GetTeamByBBID(ti.TeamID)
		if err != nil {
			respondError(c, err)
			return
		}
		if team == nil {
			team = &models.Team{
				TeamID:    ti.TeamID,
				Name:      ti.Name,
				ShortName: shortName(ti.Name),
				TeamType:  ti.Type,
				CoachID:   user.ID,
			}
		} else {
			// Name and coach follow the upstream; the short name is only
			// derived once so a manual edit survives re-logins.
			team.Name = ti.Name
			team.CoachID = user.ID
		}
		if err := h.Storage.SaveTeam(team); err != nil {
			respondError(c, err)
			return
		}
		if i == 0 {
			firstTeamID = ti.TeamID
			firstTeamType = string(ti.Type)
		}
	}

	token, err := h.Tokens.IssueSession(user.LoginName, firstTeamID, firstTeamType)
	if err != nil {
		respondError(c, err)
		return
	}
	setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Login successful"})
}

func shortName(name string) string {
	r := []rune(name)
	if len(r) > 3 {
		r = r[:3]
	}
	return strings.ToUpper(string(r))
}

// Logout drops the session cookie. The token itself stays valid until it
// expires; there is no server-side session state.
func (h *Handler) Logout(c *gin.Context) {
	clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}

// ListTeams returns the caller's teams, flagging the one the session is
// scoped to.
func (h *Handler) ListTeams(c *gin.Context) {
	user := currentUser(c)
	claims := currentClaims(c)

	teams, err := h.Storage.ListTeamsForCoach(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]gin.H, 0, len(teams))
	for _, team := range teams {
		out = append(out, gin.H{
			"teamId":   team.TeamID,
			"name":     team.Name,
			"teamType": team.TeamType,
			"active":   team.TeamID == claims.TeamID,
		})
	}
	c.JSON(http.StatusOK, out)
}

// SwitchTeam reissues the session cookie scoped to another of the caller's
// teams.
func (h *Handler) SwitchTeam(c *gin.Context) {
	user := currentUser(c)

	teamID, err := strconv.Atoi(c.Query("teamId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "teamId must be an integer"})
		return
	}

	teams, err := h.Storage.ListTeamsForCoach(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	var target *models.Team
	for i := range teams {
		if teams[i].TeamID == teamID {
			target = &teams[i]
			break
		}
	}
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Team not found"})
		return
	}

	token, err := h.Tokens.IssueSession(user.LoginName, teamID, string(target.TeamType))
	if err != nil {
		respondError(c, err)
		return
	}
	setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Switched to team " + target.Name})
}

// Me returns the caller's profile and notification settings.
func (h *Handler) Me(c *gin.Context) {
	user := currentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"username":               user.DisplayName(),
		"supporter":              user.Supporter,
		"autoSyncEnabled":        user.AutoSyncEnabled,
		"email":                  nilIfEmpty(user.Email),
		"emailVerified":          user.EmailVerified,
		"unreadReminderEnabled":  user.UnreadReminderEnabled,
		"unreadReminderDelayMin": delayOrDefault(user.UnreadReminderDelayMin),
	})
}

func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, settingsBody(currentUser(c)))
}

// UpdateSettings applies the settings passed as query parameters; absent
// parameters leave their setting untouched. A present-but-empty email clears
// the address. Any email change drops the verified flag until the new
// address is confirmed.
func (h *Handler) UpdateSettings(c *gin.Context) {
	user := currentUser(c)

	if v, ok := c.GetQuery("autoSyncEnabled"); ok {
		user.AutoSyncEnabled = strings.EqualFold(v, "true")
	}
	if v, ok := c.GetQuery("email"); ok {
		user.Email = strings.ToLower(strings.TrimSpace(v))
		user.EmailVerified = false
	}
	if v, ok := c.GetQuery("unreadReminderEnabled"); ok {
		user.UnreadReminderEnabled = strings.EqualFold(v, "true")
	}
	if v, ok := c.GetQuery("unreadReminderDelayMin"); ok {
		delay, err := strconv.Atoi(v)
		if err != nil || (delay != 30 && delay != 60 && delay != 180) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadReminderDelayMin must be one of: 30, 60, 180"})
			return
		}
		user.UnreadReminderDelayMin = delay
	}
	if v, ok := c.GetQuery("reminderChannels"); ok {
		channels, err := parseReminderChannels(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		user.ReminderChannels = channels
	}

	if err := h.Storage.SaveUser(user); err != nil {
		respondError(c, err)
		return
	}

	body := settingsBody(user)
	body["success"] = true
	c.JSON(http.StatusOK, body)
}

func settingsBody(user *models.User) gin.H {
	return gin.H{
		"autoSyncEnabled":        user.AutoSyncEnabled,
		"email":                  nilIfEmpty(user.Email),
		"emailVerified":          user.EmailVerified,
		"unreadReminderEnabled":  user.UnreadReminderEnabled,
		"unreadReminderDelayMin": delayOrDefault(user.UnreadReminderDelayMin),
		"reminderChannels":       user.ReminderChannels,
	}
}

func delayOrDefault(min int) int {
	if min == 0 {
		return 60
	}
	return min
}

func parseReminderChannels(raw string) (pq.StringArray, error) {
	out := pq.StringArray{}
	for _, part := range strings.Split(raw, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		if name != models.ChannelEmail && name != models.ChannelTelegram {
			return nil, errors.New("reminderChannels must be a comma-separated list of: email, telegram")
		}
		out = append(out, name)
	}
	return out, nil
}

type emailVerificationRequest struct {
	Email string `json:"email"`
}

// StartEmailVerification mails a signed verification link to the given
// address. The address is only persisted once the mail went out, so a
// provider outage does not half-update the account.
func (h *Handler) StartEmailVerification(c *gin.Context) {
	user := currentUser(c)

	var body emailVerificationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	email := strings.TrimSpace(body.Email)
	if !strings.Contains(email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email address"})
		return
	}

	if !h.Mail.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Email notifications are not configured"})
		return
	}

	token, err := h.Tokens.IssueEmailVerify(user.LoginName, email)
	if err != nil {
		respondError(c, err)
		return
	}
	verifyURL := fmt.Sprintf("%s/api/v1/user/email/verify?token=%s", h.Cfg.AppBaseURL, token)

	if err := h.Mail.Send(c.Request.Context(), mailer.VerificationEmail(email, verifyURL)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to send verification email: %v", err)})
		return
	}

	user.Email = email
	user.EmailVerified = false
	if err := h.Storage.SaveUser(user); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Verification email sent"})
}

// VerifyEmail consumes the link from the verification mail. No session is
// required; the signed token identifies the account and the address.
func (h *Handler) VerifyEmail(c *gin.Context) {
	loginName, email, err := h.Tokens.ParseEmailVerify(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired token"})
		return
	}
	user, err := h.Storage.GetUserByLogin(loginName)
	if err != nil {
		respondError(c, err)
		return
	}
	if user.Email != email {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email does not match current user email"})
		return
	}

	user.EmailVerified = true
	if err := h.Storage.SaveUser(user); err != nil {
		respondError(c, err)
		return
	}

	c.Redirect(http.StatusFound, h.Cfg.AppBaseURL+"/login?verified=1")
}

// TelegramLink hands out a t.me deep link that binds the caller's account to
// the chat that opens it.
func (h *Handler) TelegramLink(c *gin.Context) {
	user := currentUser(c)
	if h.Bot == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Telegram bot is not configured"})
		return
	}
	link := fmt.Sprintf("https://t.me/%s?start=%s", h.Bot.Username(), h.Bot.IssueLinkToken(user.LoginName))
	c.JSON(http.StatusOK, gin.H{"success": true, "link": link})
}

func (h *Handler) TelegramUnlink(c *gin.Context) {
	user := currentUser(c)
	user.TelegramChatID = nil
	if err := h.Storage.SaveUser(user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Telegram unlinked"})
}
