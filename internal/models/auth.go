package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating an administrator.
type LoginRequest struct {
	Email     string `json:"email" form:"email" validate:"required,email"`
	Password  string `json:"password" form:"password" validate:"required"`
	IP        string `json:"-" form:"-"`
	UserAgent string `json:"-" form:"-"`
}

// LoginResponse returns the issued access token and the signed-in user.
type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int64       `json:"expires_in"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        CurrentUser `json:"user"`
}

// CurrentUser is the authenticated principal attached to admin requests.
type CurrentUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      AdminRole `json:"role"`
	SessionID string    `json:"-"`
}

// JWTClaims represents the access token payload. The token ID is the
// session ID so signing out revokes the token.
type JWTClaims struct {
	UserID string    `json:"user_id"`
	Email  string    `json:"email"`
	Role   AdminRole `json:"role"`
	jwt.RegisteredClaims
}
