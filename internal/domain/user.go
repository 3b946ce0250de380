package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the authorization level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is a storefront account. PasswordHash never serializes.
type User struct {
	UserNumber   int64     `json:"userNumber"`
	FirstName    *string   `json:"firstName"`
	LastName     *string   `json:"lastName"`
	UserName     string    `json:"userName"`
	PasswordHash string    `json:"-"`
	Email        string    `json:"email"`
	PhoneNumber  *string   `json:"phoneNumber"`
	UserID       *string   `json:"userID"`
	UserRole     Role      `json:"userRole"`
	DateOfBirth  Date      `json:"dateOfBirth"`
	Address      *string   `json:"address"`
	Created      time.Time `json:"created"`
}

// RefreshToken is a server-side session handle exchanged for access tokens.
type RefreshToken struct {
	ID         uuid.UUID
	UserNumber int64
	Token      string
	ExpiresAt  time.Time
	CreatedAt  time.Time
	Revoked    bool
}
