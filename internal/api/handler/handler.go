// Package handler wires the HTTP API: session auth, the REST surface for
// accounts, rosters, shares, plans and both kinds of message threads, plus
// the websocket upgrade for realtime delivery.
package handler

import (
	"log"
	"net/http"
	"strings"

	"courtside/backend/internal/apperr"
	"courtside/backend/internal/auth"
	"courtside/backend/internal/bbapi"
	"courtside/backend/internal/chathub"
	"courtside/backend/internal/config"
	"courtside/backend/internal/jobs"
	"courtside/backend/internal/mailer"
	"courtside/backend/internal/models"
	"courtside/backend/internal/storage"
	"courtside/backend/internal/telegram"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	sessionCookie = "bb_session"
	sessionMaxAge = 24 * 60 * 60 // seconds, matches the session token TTL

	ctxUserKey   = "currentUser"
	ctxClaimsKey = "sessionClaims"
)

// Handler carries the dependencies of the HTTP layer. Bot and Redis are nil
// when the matching integration is not configured.
type Handler struct {
	Storage storage.Storage
	Hub     *chathub.Hub
	Redis   *redis.Client
	Tokens  *auth.Manager
	Mail    *mailer.Service
	BB      *bbapi.Client
	Bot     *telegram.Bot
	Sync    *jobs.RosterSyncJob
	Cfg     config.Config
}

// RegisterRoutes mounts the API under /api/v1, mirroring the paths the web
// client already speaks.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api/v1")
	api.GET("/health/redis", h.RedisHealth)
	api.GET("/admin/sync-all-rosters", h.SyncAllRosters)

	user := api.Group("/user")
	user.GET("/login", h.Login)
	user.POST("/logout", h.Logout)
	user.GET("/email/verify", h.VerifyEmail) // token-authed, reached from the mail link
	userAuth := user.Group("", h.RequireUser)
	userAuth.GET("/me", h.Me)
	userAuth.GET("/teams", h.ListTeams)
	userAuth.POST("/switch-team", h.SwitchTeam)
	userAuth.GET("/settings", h.GetSettings)
	userAuth.POST("/settings", h.UpdateSettings)
	userAuth.POST("/email/start-verification", h.StartEmailVerification)
	userAuth.POST("/telegram/link", h.TelegramLink)
	userAuth.POST("/telegram/unlink", h.TelegramUnlink)

	players := api.Group("/players", h.RequireUser)
	players.GET("/roster", h.Roster)
	players.POST("/sync", h.SyncRoster)
	players.GET("/all", h.AllPlayers)
	players.GET("/:playerID", h.PlayerDetail)

	shares := api.Group("/shares", h.RequireUser)
	shares.POST("", h.CreateShares)
	shares.GET("/received", h.SharesReceived)
	shares.GET("/sent", h.SharesSent)
	shares.GET("/users/search", h.SearchShareUsers)
	shares.DELETE("/:shareID", h.DeleteShare)

	plans := api.Group("/plans", h.RequireUser)
	plans.GET("/player/:playerID", h.GetPlan)
	plans.PUT("/player/:playerID", h.UpsertPlan)
	plans.DELETE("/player/:playerID", h.DeletePlan)

	dm := api.Group("/dm")
	dm.GET("/ws", h.ServeWS) // does its own auth before the upgrade
	dmAuth := dm.Group("", h.RequireUser)
	dmAuth.GET("", h.ListDMs)
	dmAuth.POST("", h.OpenDM)
	dmAuth.GET("/:threadID", h.DMDetail)
	dmAuth.POST("/:threadID/messages", h.SendDM)
	dmAuth.POST("/:threadID/archive", h.ArchiveDM)

	threads := api.Group("/threads", h.RequireUser)
	threads.GET("", h.ListPlayerThreads)
	threads.GET("/player/:playerID", h.ThreadForPlayer)
	threads.GET("/player/:playerID/as-owner", h.ThreadsAsOwner)
	threads.POST("/player/:playerID", h.OpenPlayerThread)
	threads.GET("/:threadID", h.PlayerThreadDetail)
	threads.POST("/:threadID/messages", h.SendPlayerMessage)
	threads.POST("/:threadID/archive", h.ArchiveThread)
}

// RequireUser resolves the session token and loads the account behind it.
// The token comes from the session cookie, a bearer header, or a token query
// parameter; websocket clients cannot set headers, so the query form stays.
func (h *Handler) RequireUser(c *gin.Context) {
	token := h.sessionToken(c)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	claims, err := h.Tokens.ParseSession(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}
	user, err := h.Storage.GetUserByLogin(claims.LoginName)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	c.Set(ctxUserKey, user)
	c.Set(ctxClaimsKey, claims)
	c.Next()
}

func (h *Handler) sessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(sessionCookie); err == nil && cookie != "" {
		return cookie
	}
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}

func currentUser(c *gin.Context) *models.User {
	return c.MustGet(ctxUserKey).(*models.User)
}

func currentClaims(c *gin.Context) *auth.SessionClaims {
	return c.MustGet(ctxClaimsKey).(*auth.SessionClaims)
}

// respondError translates application errors to their HTTP status. Untyped
// errors become opaque 500s and are logged with the route that hit them.
func respondError(c *gin.Context, err error) {
	status := apperr.StatusOf(err)
	if status == http.StatusInternalServerError {
		log.Printf("ERROR: %s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": apperr.MessageOf(err)})
}

func setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, sessionMaxAge, "/", "", false, true)
}

func clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
}

// teamIDs returns the internal ids of every team the user coaches.
func (h *Handler) teamIDs(user *models.User) ([]string, error) {
	teams, err := h.Storage.ListTeamsForCoach(user.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(teams))
	for _, team := range teams {
		ids = append(ids, team.ID)
	}
	return ids, nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
