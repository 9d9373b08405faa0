package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity is stored in the request context after authentication.
type Identity struct {
	UserID uuid.UUID
	// Role is the coarse global role from the access token. Team-scoped
	// permissions never use it.
	Role string
}

// Claims is the JWT payload of both credential classes. Refresh tokens
// carry only the subject.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenPair is what a successful login returns.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
