package domain

import "time"

// User is a registered member of the portal. The password hash never leaves
// the auth handlers.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Roles carried in the auth token.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)
