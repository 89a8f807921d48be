package model

import "time"

// User is the administrative operator account. The storefront is public;
// only the admin console requires an authenticated user.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
