package handler

import (
	"net/http"

	"courtside/backend/internal/chathub"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The SPA is served from another origin; cookies carry the auth.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades the connection and parks it in the hub. Auth happens
// before the upgrade so failures still come back as plain HTTP statuses.
func (h *Handler) ServeWS(c *gin.Context) {
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

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	chathub.NewWSConn(h.Hub, user.ID, conn).Run()
}
