// Package auth issues and validates the JWTs used by the service: session
// tokens and email verification tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const (
	issuer = "courtside"

	sessionTTL     = 24 * time.Hour
	emailVerifyTTL = 24 * time.Hour

	typeEmailVerify = "email_verify"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// SessionClaims is what a valid session token carries. TeamID and TeamType
// identify the team the client is acting as; users with a Utopia side can
// switch between their teams without re-entering credentials.
type SessionClaims struct {
	LoginName string
	TeamID    int
	TeamType  string
}

// Manager signs and parses all token kinds with one HS256 secret.
type Manager struct {
	secret []byte
}

func NewManager(secret string) *Manager {
	return &Manager{secret: []byte(secret)}
}

// IssueSession creates a 24h session token for the given login acting as the
// given team.
func (m *Manager) IssueSession(loginName string, teamID int, teamType string) (string, error) {
	claims := jwt.MapClaims{
		"sub":       loginName,
		"team_id":   teamID,
		"team_type": teamType,
		"exp":       time.Now().Add(sessionTTL).Unix(),
		"iss":       issuer,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseSession validates a session token and extracts its claims.
func (m *Manager) ParseSession(tokenString string) (*SessionClaims, error) {
	claims, err := m.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if _, tagged := claims["type"]; tagged {
		// Single-purpose tokens are not sessions.
		return nil, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrInvalidToken
	}
	out := &SessionClaims{LoginName: sub}
	if v, ok := claims["team_id"].(float64); ok {
		out.TeamID = int(v)
	}
	if v, ok := claims["team_type"].(string); ok {
		out.TeamType = v
	}
	return out, nil
}

// IssueEmailVerify creates the single-purpose token embedded in verification
// links. It binds the login to the address being verified so a changed email
// invalidates older links.
func (m *Manager) IssueEmailVerify(loginName, email string) (string, error) {
	claims := jwt.MapClaims{
		"sub":   loginName,
		"email": email,
		"type":  typeEmailVerify,
		"exp":   time.Now().Add(emailVerifyTTL).Unix(),
		"iss":   issuer,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseEmailVerify returns the login and email bound into a verification
// token.
func (m *Manager) ParseEmailVerify(tokenString string) (loginName, email string, err error) {
	claims, err := m.parse(tokenString)
	if err != nil {
		return "", "", err
	}
	if t, _ := claims["type"].(string); t != typeEmailVerify {
		return "", "", ErrInvalidToken
	}
	loginName, _ = claims["sub"].(string)
	email, _ = claims["email"].(string)
	if loginName == "" || email == "" {
		return "", "", ErrInvalidToken
	}
	return loginName, email, nil
}

func (m *Manager) parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
