package domain

import "time"

// User is the account as returned by the auth backend.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name,omitempty"`
	Roles            []string  `json:"roles,omitempty"`
	EmailVerified    bool      `json:"email_verified"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
	CreatedAt        time.Time `json:"created_at"`
}

// TokenPair is issued on login, refresh and second-factor verification.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // seconds
}

// AuthResult is the body of a successful credential exchange. When
// TwoFactorRequired is set, Tokens is empty and ChallengeToken must be
// presented with the second factor.
type AuthResult struct {
	User              *User     `json:"user"`
	Tokens            TokenPair `json:"tokens"`
	TwoFactorRequired bool      `json:"two_factor_required"`
	ChallengeToken    string    `json:"challenge_token,omitempty"`
}

// Registration is the payload for creating an account.
type Registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// UserPage is one page of the admin user listing.
type UserPage struct {
	Users   []User `json:"users"`
	Total   int    `json:"total"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
}

// HealthReport is the backend's own view of its health.
type HealthReport struct {
	Status  string            `json:"status"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}
