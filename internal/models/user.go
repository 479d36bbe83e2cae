package models

import "time"

// User represents an account holder. Email and phone are globally unique.
type User struct {
	Base
	Email        string     `gorm:"size:255;not null;uniqueIndex:uni_users_email" json:"email"`
	Phone        string     `gorm:"size:20;not null;uniqueIndex:uni_users_phone" json:"phone"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	FullName     string     `gorm:"size:255;not null" json:"full_name"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}
