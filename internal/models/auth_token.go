package models

import "time"

// AuthToken is an access/refresh token pair issued to a user.
// A user may hold any number of pairs; expired rows are pruned by the application.
type AuthToken struct {
	Base
	UserID       uint      `gorm:"not null;index:idx_auth_tokens_user_id" json:"user_id"`
	AccessToken  string    `gorm:"size:512;not null" json:"-"`
	RefreshToken string    `gorm:"size:512;not null;index:idx_auth_tokens_refresh_token" json:"-"`
	ExpiresAt    time.Time `gorm:"not null;index:idx_auth_tokens_expires_at" json:"expires_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

// Expired reports whether the token pair is no longer usable at now.
func (t *AuthToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
