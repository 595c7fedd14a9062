package domain

import "time"

type ID string

// User is the stored credential record. PasswordHash must never leave the
// service layer; callers receive the public DTO instead.
type User struct {
	ID           ID
	Email        string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
