package model

import "time"

type User struct {
	ID           string    `json:"id" db:"id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password"`
}

// UserUpdate carries the mutable profile fields; nil means unchanged.
type UserUpdate struct {
	Email        *string
	PasswordHash *string
}
