package entity

import "time"

// Contact holds how a user can be reached. Email doubles as the login
// identifier and must be unique across users.
type Contact struct {
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	City  string `json:"city,omitempty"`
}

// User is the aggregate root for the user domain. PasswordHash is a bcrypt
// hash; the plaintext is never stored.
//
// ID, Version and the timestamps live in table columns, the rest is the
// stored document.
type User struct {
	ID           string    `json:"-"`
	Name         string    `json:"name"`
	DateOfBirth  string    `json:"date_of_birth"` // YYYY-MM-DD
	Contact      Contact   `json:"contact"`
	PasswordHash string    `json:"password_hash"`
	Version      int64     `json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}
