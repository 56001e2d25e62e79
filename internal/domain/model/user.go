package model

import (
	"time"
)

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// Rank orders roles for hierarchy checks. Unknown roles rank below buyer.
func (r Role) Rank() int {
	switch r {
	case RoleBuyer:
		return 0
	case RoleSeller:
		return 1
	case RoleAdmin:
		return 2
	default:
		return -1
	}
}

func (r Role) Valid() bool {
	return r.Rank() >= 0
}

// AtLeast reports whether r satisfies a requirement of min.
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && min.Valid() && r.Rank() >= min.Rank()
}

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Not exposed
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Principal is the identity resolved for a single request.
// Role is the value persisted at resolution time, not the token snapshot.
type Principal struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	IsActive bool   `json:"is_active"`
}

func (u *User) Principal() *Principal {
	return &Principal{ID: u.ID, Email: u.Email, Role: u.Role, IsActive: u.IsActive}
}
