package scheduler

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"metbot/app/service/dispatch"

	"github.com/samber/do"
)

const (
	sweepInterval   = time.Hour
	dispatchTimeout = 30 * time.Second
)

// Dispatcher delivers a fired reminder to its destination.
type Dispatcher interface {
	Deliver(ctx context.Context, contactID, message string) error
}

// Service holds the live set of one-shot reminders. Every reminder fires at
// most once: the Pending→Sent and Pending→Cancelled transitions happen under
// the mutex before any side effect, so a timer firing, a concurrent sweep
// and a cancel can never double-execute the action.
type Service struct {
	dispatcher Dispatcher
	now        func() time.Time

	mu        sync.Mutex
	reminders map[string]*reminder
}

func New(di *do.Injector) (*Service, error) {
	return NewWithDispatcher(do.MustInvoke[*dispatch.Service](di)), nil
}

func NewWithDispatcher(d Dispatcher) *Service {
	return &Service{
		dispatcher: d,
		now:        time.Now,
		reminders:  make(map[string]*reminder),
	}
}

// ScheduleAt registers a one-shot reminder. A fireAt in the past is clamped
// to "fire immediately": the reminder is dispatched synchronously and
// recorded as already sent.
func (s *Service) ScheduleAt(contactID, message string, fireAt time.Time) string {
	now := s.now()
	id := contactID + "-" + strconv.FormatInt(now.UnixNano(), 10)

	r := &reminder{
		id:        id,
		contactID: contactID,
		message:   message,
		fireAt:    fireAt,
		createdAt: now,
		status:    StatusPending,
	}

	s.mu.Lock()
	s.reminders[id] = r

	if !fireAt.After(now) {
		s.mu.Unlock()
		s.fire(id)

		return id
	}

	r.timer = time.AfterFunc(fireAt.Sub(now), func() {
		s.fire(id)
	})
	s.mu.Unlock()

	slog.Info("Reminder scheduled",
		"reminder_id", id,
		"contact_id", contactID,
		"fire_at", fireAt)

	return id
}

// Cancel stops a pending reminder. Returns false when the id is unknown or
// the reminder already reached a terminal state; that is never an error.
func (s *Service) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reminders[id]
	if !ok || r.status != StatusPending {
		return false
	}

	r.status = StatusCancelled
	if r.timer != nil {
		r.timer.Stop()
	}

	slog.Info("Reminder cancelled", "reminder_id", id)

	return true
}

// Pending returns snapshots of all reminders still waiting to fire.
func (s *Service) Pending() []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]Snapshot, 0, len(s.reminders))
	for _, r := range s.reminders {
		if r.status != StatusPending {
			continue
		}

		result = append(result, Snapshot{
			ID:        r.id,
			ContactID: r.contactID,
			Message:   r.message,
			FireAt:    r.fireAt,
			Status:    r.status,
		})
	}

	return result
}

// fire executes the reminder action exactly once. The status flips to Sent
// before the dispatch attempt, so a failing dispatcher cannot leave the
// reminder stuck pending or cause a retry.
func (s *Service) fire(id string) {
	s.mu.Lock()
	r, ok := s.reminders[id]
	if !ok || r.status != StatusPending {
		s.mu.Unlock()
		return
	}

	r.status = StatusSent
	contactID, message := r.contactID, r.message
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	if err := s.dispatcher.Deliver(ctx, contactID, message); err != nil {
		slog.Error("Failed to deliver reminder",
			"reminder_id", id,
			"contact_id", contactID,
			"error", err)
		return
	}

	slog.Info("Reminder delivered", "reminder_id", id, "contact_id", contactID)
}

// Run sweeps terminal reminders out of the live set until ctx is done.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := s.sweep()
			if removed > 0 {
				slog.Debug("Swept finished reminders", "count", removed)
			}
		}
	}
}

// sweep removes every non-pending reminder. Pending entries are never
// touched.
func (s *Service) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, r := range s.reminders {
		if r.status != StatusPending {
			delete(s.reminders, id)
			removed++
		}
	}

	return removed
}
