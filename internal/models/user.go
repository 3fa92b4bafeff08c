// ABOUTME: User model linked to an external identity provider account.
// ABOUTME: Users own workouts; deleting a user cascades to everything they logged.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a profile keyed by the identity provider's user ID.
type User struct {
	ID          uuid.UUID `json:"id" yaml:"id"`
	ClerkUserID string    `json:"clerk_user_id" yaml:"clerk_user_id"`
	Email       *string   `json:"email,omitempty" yaml:"email,omitempty"`
	Username    *string   `json:"username,omitempty" yaml:"username,omitempty"`
	FirstName   *string   `json:"first_name,omitempty" yaml:"first_name,omitempty"`
	LastName    *string   `json:"last_name,omitempty" yaml:"last_name,omitempty"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`

	Workouts []*Workout `json:"workouts,omitempty" yaml:"workouts,omitempty"` // Populated by eager loading
}

// NewUser creates a new User with generated UUID and current timestamps.
func NewUser(clerkUserID string) *User {
	now := Now()
	return &User{
		ID:          uuid.New(),
		ClerkUserID: clerkUserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// WithEmail sets the email address.
func (u *User) WithEmail(email string) *User {
	u.Email = &email
	return u
}

// WithUsername sets the username.
func (u *User) WithUsername(username string) *User {
	u.Username = &username
	return u
}

// WithName sets first and last name. Empty parts are left unset.
func (u *User) WithName(first, last string) *User {
	if first != "" {
		u.FirstName = &first
	}
	if last != "" {
		u.LastName = &last
	}
	return u
}

// DisplayName returns the best human-readable label for the user.
func (u *User) DisplayName() string {
	switch {
	case u.Username != nil && *u.Username != "":
		return *u.Username
	case u.FirstName != nil && u.LastName != nil:
		return *u.FirstName + " " + *u.LastName
	case u.FirstName != nil:
		return *u.FirstName
	case u.Email != nil && *u.Email != "":
		return *u.Email
	default:
		return u.ClerkUserID
	}
}
