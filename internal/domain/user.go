package domain

import "time"

// User represents an authenticated identity. Users are referenced by
// organizations (as creator) and editing rights (as editor); a nil *User in
// service calls means the anonymous caller.
type User struct {
	ID           int64
	Username     string // Unique username
	Email        string // Unique email address
	PasswordHash string // Bcrypt hashed password (not returned in API)
	FirstName    string
	LastName     string
	IsSuperuser  bool
	CreatedAt    time.Time
}

// UserRepository defines data access for users
type UserRepository interface {
	Create(user *User) error
	GetByID(id int64) (*User, error)
	GetByUsername(username string) (*User, error)
	GetByEmail(email string) (*User, error)
	Delete(id int64) error
}
