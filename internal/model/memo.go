package model

import "time"

// Memo is a free-text note with a done flag.
type Memo struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Memo      string    `json:"memo"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
