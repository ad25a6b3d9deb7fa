package entity

import "time"

// Credential is the local identity provider's record for a user.
type Credential struct {
	UserID        string     `json:"user_id"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"-"`
	RevokedBefore *time.Time `json:"revoked_before,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type IdentityRequest struct {
	Email       string
	Password    string
	DisplayName string
}

// IssuedToken is what a successful password sign-in yields.
type IssuedToken struct {
	UserID      string
	AccessToken string
	ExpiresAt   time.Time
}
