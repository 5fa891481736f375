package auth

import (
	"github.com/shopspring/decimal"

	"github.com/credeat/credeat-backend/internal/users"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the token pair and user produced by a successful login.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
}

// RefreshRequest carries the refresh token to exchange for a new pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ProfileResponse is the /me payload: identity plus the wallet balance
// when the role carries one.
type ProfileResponse struct {
	User    *users.UserDTO   `json:"user"`
	Balance *decimal.Decimal `json:"wallet_balance,omitempty"`
}
