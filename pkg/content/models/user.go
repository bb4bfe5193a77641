package models

import (
	"strings"

	"github.com/angelmondragon/homeplate-backend/pkg/enums"
)

// SavedAddress is a delivery address kept on the user profile.
type SavedAddress struct {
	ID      string `json:"id" validate:"required"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// User is an account known to the content backend.
type User struct {
	ID            int             `json:"id" validate:"required"`
	Username      string          `json:"username"`
	Email         string          `json:"email" validate:"required"`
	IsAdmin       bool            `json:"isAdmin"`
	AdminType     enums.AdminType `json:"adminType,omitempty"`
	AdminVerified bool            `json:"adminVerified"`
	Addresses     []SavedAddress  `json:"addresses,omitempty"`
	RefundDetails string          `json:"refundDetails,omitempty"`
}

// IsMainAdmin reports whether the user administers other admins.
func (u User) IsMainAdmin() bool {
	return u.IsAdmin && u.AdminVerified && u.AdminType == enums.AdminTypeMain
}

// NormalizedEmail lowercases and trims the email for comparisons.
func (u User) NormalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(u.Email))
}
