package model

import "time"

// User is a registered account. Accounts are soft-deleted, never removed.
type User struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"-"`
	RollNumber    string     `json:"roll_number"`
	Phone         string     `json:"phone,omitempty"`
	Role          string     `json:"role"`
	EmailVerified bool       `json:"email_verified"`
	PhotoMime     string     `json:"photo_mime,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

// Roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// RoleAtLeast checks if role meets or exceeds the minimum required role.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RoleAdmin: 2,
		RoleUser:  1,
	}
	return levels[role] >= levels[minimum]
}
