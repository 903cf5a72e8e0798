package conversation

import (
	"context"
	"time"

	"metbot/app/service/calendar"
	"metbot/app/service/contact"
)

// Collaborator contracts consumed by the controller. The concrete services
// satisfy them through DI; tests install fakes.

type Transport interface {
	Send(recipient int64, text string) error
}

type ContactStore interface {
	Add(ctx context.Context, draft contact.Draft, message string) (string, error)
	Update(ctx context.Context, id string, patch contact.Patch) error
	GetSummary(ctx context.Context, windowDays int) (contact.Summary, error)
}

type SlotFinder interface {
	FindSlots(daysAhead, durationMinutes int) ([]calendar.Slot, error)
}

type TopicWriter interface {
	Sentence(ctx context.Context, name, about, event string) (string, bool)
}

type ReminderScheduler interface {
	ScheduleAt(contactID, message string, fireAt time.Time) string
}
