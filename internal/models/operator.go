package models

import "time"

// Operator is a person allowed to drive the switch when auth is enabled.
// Commands they queue carry their id and name into the command log.
type Operator struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}
