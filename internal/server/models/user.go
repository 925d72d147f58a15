package models

import "time"

const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

type User struct {
	ID           string
	UserName     string
	Email        string
	PasswordHash string // empty for federated-only accounts
	GoogleID     string
	AvatarKey    string
	Provider     string
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// HasPassword reports whether the account can sign in locally.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
