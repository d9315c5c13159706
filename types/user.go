package types

import "time"

// Role values recognised by the role gate. RoleWorker is spelled "workers"
// to match the values already present in stored user records.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
	RoleWorker     = "workers"
	RoleModerator  = "moderator"
)

// User represents an account in the locally simulated registered-user
// list. It is never reconciled with the farmer collection.
type User struct {
	// ID is the unique identifier of the user.
	ID string `json:"_id"`

	// Name is the user's display or full name.
	Name string `json:"name"`

	// Email is the user's email address and login name.
	Email string `json:"email"`

	// Subcity is the user's administrative area, if known.
	Subcity string `json:"subcity,omitempty"`

	// Role indicates the user's authorization level within the system.
	Role string `json:"role"`

	// Avatar is a reference to the user's avatar image, either a static
	// default or an object-storage key.
	Avatar string `json:"avatar"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at"`
}
