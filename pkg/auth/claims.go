package auth

import "github.com/golang-jwt/jwt/v5"

// SessionClaims is the payload of a session token issued by the content backend.
type SessionClaims struct {
	UserID int `json:"id"`
	jwt.RegisteredClaims
}
