// Package model defines domain entities for the application.
package model

import "time"

// AccessAuth is the only token purpose issued by the API.
const AccessAuth = "auth"

// AuthToken is one active session token held by a user.
type AuthToken struct {
	Access string `json:"access"`
	Token  string `json:"token"`
}

// User is an account that owns nominees and holds session tokens.
type User struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"` // Never serialize
	Tokens       []AuthToken `json:"-"`
	CreatedAt    time.Time   `json:"created_at"`
}

// HasToken reports whether token is one of the user's active auth tokens.
func (u *User) HasToken(token string) bool {
	for _, t := range u.Tokens {
		if t.Access == AccessAuth && t.Token == token {
			return true
		}
	}
	return false
}

// AuthContext holds the authenticated principal for a request.
// It is injected into the request context by the auth middleware.
type AuthContext struct {
	UserID string
	Email  string
	// Token is the raw session token presented with the request, kept so
	// the logout handler can revoke exactly that token.
	Token string
}
