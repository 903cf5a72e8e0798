package contact

import "time"

const (
	StatusPending   = "pending"
	StatusScheduled = "scheduled"
	StatusSent      = "sent"
	StatusCompleted = "completed"
)

// Draft is a contact record before it has been persisted.
type Draft struct {
	Name    string
	Event   string
	Context string
}

type Record struct {
	ID                string
	Name              string
	Event             string
	Context           string
	Status            string
	Message           string
	ScheduledFollowUp *time.Time
	FollowUpSentAt    *time.Time
	CreatedAt         time.Time
}

// Patch is a partial update: only non-nil fields are written.
type Patch struct {
	Status            *string
	ScheduledFollowUp *time.Time
	FollowUpSentAt    *time.Time
}

type Summary struct {
	Total  int
	Recent []Record
}
