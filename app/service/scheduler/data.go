package scheduler

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusSent      Status = "sent"
	StatusCancelled Status = "cancelled"
)

type reminder struct {
	id        string
	contactID string
	message   string
	fireAt    time.Time
	createdAt time.Time

	status Status
	timer  *time.Timer
}

// Snapshot is a read-only view of a live reminder.
type Snapshot struct {
	ID        string    `json:"id"`
	ContactID string    `json:"contact_id"`
	Message   string    `json:"message"`
	FireAt    time.Time `json:"fire_at"`
	Status    Status    `json:"status"`
}
