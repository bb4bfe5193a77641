package auth

import (
	"strings"

	"github.com/angelmondragon/homeplate-backend/pkg/content/models"
	"github.com/angelmondragon/homeplate-backend/pkg/enums"
)

// Session is the signed-in account attached to a request.
type Session struct {
	UserID        int             `json:"id"`
	Email         string          `json:"email"`
	Username      string          `json:"username"`
	IsAdmin       bool            `json:"isAdmin"`
	AdminType     enums.AdminType `json:"adminType,omitempty"`
	AdminVerified bool            `json:"adminVerified"`
	Token         string          `json:"-"`
}

// NewSession builds a session from the resolved account and its bearer token.
func NewSession(user models.User, token string) *Session {
	return &Session{
		UserID:        user.ID,
		Email:         strings.TrimSpace(user.Email),
		Username:      user.Username,
		IsAdmin:       user.IsAdmin,
		AdminType:     user.AdminType,
		AdminVerified: user.AdminVerified,
		Token:         token,
	}
}

// IsVerifiedAdmin reports whether the account may use the admin surface.
func (s *Session) IsVerifiedAdmin() bool {
	return s != nil && s.IsAdmin && s.AdminVerified
}

// User rebuilds the account view used by services that check admin privileges.
func (s *Session) User() models.User {
	if s == nil {
		return models.User{}
	}
	return models.User{
		ID:            s.UserID,
		Email:         s.Email,
		Username:      s.Username,
		IsAdmin:       s.IsAdmin,
		AdminType:     s.AdminType,
		AdminVerified: s.AdminVerified,
	}
}
