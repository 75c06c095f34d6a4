package models

import (
	"time"

	"github.com/google/uuid"
)

// User role as stored in the 'role' database enum
type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

type User struct {
	ID             uuid.UUID
	Login          string
	HashedPassword string
	Role           Role
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
