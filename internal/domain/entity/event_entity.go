package entity

import "time"

const EventUserRegistered = "user.registered"

// UserRegistered is published after a record has been created.
type UserRegistered struct {
	Type         string    `json:"type"`
	Username     string    `json:"username"`
	RegisteredAt time.Time `json:"registered_at"`
}
