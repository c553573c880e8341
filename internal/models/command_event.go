package models

import "time"

const (
	EventCommandSent   = "COMMAND_SENT"
	EventCommandFailed = "COMMAND_FAILED"
	EventStateChanged  = "STATE_CHANGED"
)

// CommandEvent is a single switch command log entry.
type CommandEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // COMMAND_SENT | COMMAND_FAILED | STATE_CHANGED
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
