package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var jwtSigningMethod = jwt.SigningMethodHS256

var (
	errSecretRequired = errors.New("jwt secret is required")
	errMissingSubject = errors.New("session token has no user id")
)

// ParseSessionToken validates the HS256 signature and expiry and returns typed claims.
func ParseSessionToken(secret, tokenString string) (*SessionClaims, error) {
	if secret == "" {
		return nil, errSecretRequired
	}
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, fmt.Errorf("session token is empty")
	}

	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(secret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if claims.UserID <= 0 {
		return nil, errMissingSubject
	}
	return claims, nil
}
