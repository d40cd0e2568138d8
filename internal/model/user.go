// Package model defines domain entities for the application.
package model

import (
	"strings"
	"time"
)

// User mirrors the identity fields the API needs for alerts and reminders.
// Accounts themselves are managed by the external auth service.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Phone       string    `json:"phone"`
	MedicalInfo string    `json:"medical_info"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DisplayName joins first and last name, falling back to "Unknown User".
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return "Unknown User"
	}
	return name
}

// UserProfile holds body measurements maintained by the profile screens.
type UserProfile struct {
	UserID    string    `json:"user_id"`
	Age       *int      `json:"age"`
	Weight    *float64  `json:"weight"`
	Height    *float64  `json:"height"`
	Gender    *string   `json:"gender"`
	UpdatedAt time.Time `json:"updated_at"`
}
