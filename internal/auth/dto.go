package auth

import "github.com/angelmondragon/homeplate-backend/pkg/content/models"

// LoginRequest captures the credentials sent to the login endpoints. Identifier is an email or username.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required,max=254"`
	Password   string `json:"password" validate:"required,max=128"`
}

// RegisterRequest creates a customer account.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// LoginResponse is returned by register and login.
type LoginResponse struct {
	Token   string       `json:"jwt"`
	User    *models.User `json:"user"`
	Session *Session     `json:"-"`
}
