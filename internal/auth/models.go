// Package auth authenticates API users and issues bearer tokens.
package auth

import (
	"time"

	id "partnersearch/pkg/domain"
)

type User struct {
	ID           id.UserID
	Username     string
	Email        string
	FullName     string
	PasswordHash []byte
	Disabled     bool
	CreatedAt    time.Time
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if r.Username == "" || r.Password == "" {
		return errMissingCredentials
	}
	return nil
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type VerifyResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}
