package model

import "github.com/google/uuid"

// User is the authenticated caller, as asserted by the session token.
type User struct {
	ID      uuid.UUID
	Email   string
	IsStaff bool
}

// IsAuthenticated reports whether u identifies a real user.
func (u *User) IsAuthenticated() bool {
	return u != nil && u.ID != uuid.Nil
}
