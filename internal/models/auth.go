package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims is the access token payload: sub carries the user id, email and
// role are informational passthrough claims.
type TokenClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Principal is the validated content of a token.
type Principal struct {
	UserID int64
	Email  string
	Role   string
}
