package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists")
)

type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	IsAdmin    bool      `json:"is_admin"`
	IsDisabled bool      `json:"is_disabled"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Identity is the authorization view of a user: what a verified access
// token resolves to. The password hash never travels with it.
type Identity struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

// FlagUpdate carries administrative flag changes. Nil fields are left untouched.
type FlagUpdate struct {
	IsAdmin    *bool `json:"is_admin"`
	IsDisabled *bool `json:"is_disabled"`
}
