package entity

import (
	"time"
)

// User is the aggregate root for the registry.
// Username doubles as the storage key. Secret holds the bcrypt hash,
// never the plaintext password.
type User struct {
	Key       string    `json:"key"`
	Username  string    `json:"username"`
	Secret    string    `json:"secret"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUser builds a record keyed by username.
func NewUser(username, secret string) *User {
	return &User{Key: username, Username: username, Secret: secret}
}

// Public strips the secret.
func (u *User) Public() PublicUser {
	return PublicUser{Username: u.Username}
}

// PublicUser is the projection exposed outside the registry.
type PublicUser struct {
	Username string `json:"username"`
}
