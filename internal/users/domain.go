package users

import "time"

// User represents an account for administration.
type User struct {
	ID        int64
	Email     string
	Name      string
	RoleID    string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
