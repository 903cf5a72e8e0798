package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"metbot/app/client/telegram"
	"metbot/app/config"
	"metbot/app/service/calendar"
	"metbot/app/service/classify"
	"metbot/app/service/contact"
	"metbot/app/service/scheduler"
	"metbot/app/service/session"
	"metbot/app/service/topic"
	"metbot/app/service/trigger"

	"github.com/samber/do"
)

const summaryWindowDays = 30

// Service is the conversation state machine: it routes every inbound
// message to either "start a new interaction" or "resolve the pending one"
// and commits the outcome. The mutex makes peek-then-act on the session
// store a single critical section, so a reminder firing or a second poll
// cycle can never observe a half-committed interaction.
type Service struct {
	cfg      *config.Config
	sessions *session.Service

	transport Transport
	contacts  ContactStore
	slots     SlotFinder
	topics    TopicWriter
	reminders ReminderScheduler

	now func() time.Time
	mu  sync.Mutex
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		cfg:       do.MustInvoke[*config.Config](di),
		sessions:  do.MustInvoke[*session.Service](di),
		transport: do.MustInvoke[*telegram.Client](di),
		contacts:  do.MustInvoke[*contact.Service](di),
		slots:     do.MustInvoke[*calendar.Service](di),
		topics:    do.MustInvoke[*topic.Service](di),
		reminders: do.MustInvoke[*scheduler.Service](di),
		now:       time.Now,
	}, nil
}

func (s *Service) ProcessMessage(ctx context.Context, sender int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	trimmed := strings.TrimSpace(text)

	// "summary" works regardless of any pending interaction and leaves the
	// state machine alone.
	if strings.EqualFold(trimmed, "summary") {
		return s.handleSummary(ctx, sender)
	}

	if pending, ok := s.sessions.Peek(sender); ok {
		return s.resolvePending(ctx, sender, pending, trimmed)
	}

	return s.startInteraction(ctx, sender, trimmed)
}

func (s *Service) startInteraction(ctx context.Context, sender int64, text string) error {
	tr := trigger.Parse(text)
	if !tr.IsValid {
		return s.transport.Send(sender, helpMessage)
	}

	draft := contact.Draft{
		Name:    tr.Name,
		Event:   tr.Event,
		Context: tr.Context,
	}

	topicSentence, _ := s.topics.Sentence(ctx, tr.Name, tr.Context, tr.Event)
	message := followUpMessage(tr.Name, tr.Event, topicSentence)

	availability := calendarFallback
	slots, err := s.slots.FindSlots(s.cfg.Calendar.DaysAhead, s.cfg.Calendar.SlotMinutes)
	if err != nil {
		slog.Warn("Calendar lookup failed", "error", err)
	} else {
		availability = availabilityLine(slots)
	}

	s.sessions.Begin(sender, draft, message)

	slog.Info("Interaction started", "sender", sender, "name", tr.Name, "event", tr.Event)

	return s.transport.Send(sender, promptMessage(tr.Name, tr.Event, availability))
}

func (s *Service) resolvePending(ctx context.Context, sender int64, pending session.Pending, text string) error {
	// A fresh trigger while a reply is awaited replaces the pending draft,
	// discarding the old one without notice.
	if trigger.Parse(text).IsValid {
		return s.startInteraction(ctx, sender, text)
	}

	if strings.EqualFold(text, "cancel") {
		s.sessions.End(sender)

		slog.Info("Interaction cancelled", "sender", sender)

		return s.transport.Send(sender, confirmCancelled(pending.Contact.Name))
	}

	// Inconsistent store state fails closed: clear and recover.
	if pending.Contact.Name == "" || pending.Message == "" {
		s.sessions.End(sender)

		slog.Error("Pending interaction had no draft", "sender", sender)

		return s.transport.Send(sender, lostDraftMessage)
	}

	if !classify.IsRecognized(text) {
		return s.transport.Send(sender, rePromptMessage)
	}

	return s.commit(ctx, sender, pending, classify.Classify(text, s.now()))
}

// commit persists the draft and applies the directive. The contact is
// persisted for every directive, including "no reminder"; a storage failure
// aborts the whole interaction.
func (s *Service) commit(ctx context.Context, sender int64, pending session.Pending, d classify.Directive) error {
	id, err := s.contacts.Add(ctx, pending.Contact, pending.Message)
	if err != nil {
		s.sessions.End(sender)

		if sendErr := s.transport.Send(sender, storageFailure(pending.Contact.Name)); sendErr != nil {
			slog.Error("Failed to notify sender of storage failure", "error", sendErr)
		}

		return fmt.Errorf("failed to persist contact: %w", err)
	}

	var confirmation string

	switch d.Kind {
	case classify.KindNoReminder:
		status := contact.StatusCompleted
		if err := s.contacts.Update(ctx, id, contact.Patch{Status: &status}); err != nil {
			slog.Warn("Failed to mark contact completed", "contact_id", id, "error", err)
		}

		confirmation = confirmNoReminder(pending.Contact.Name)

	case classify.KindNow:
		// Fires synchronously inside ScheduleAt; the dispatcher flips the
		// contact to "sent".
		s.reminders.ScheduleAt(id, pending.Message, s.now())

		confirmation = confirmNow(pending.Contact.Name)

	default:
		s.reminders.ScheduleAt(id, pending.Message, d.At)

		status := contact.StatusScheduled
		at := d.At
		if err := s.contacts.Update(ctx, id, contact.Patch{
			Status:            &status,
			ScheduledFollowUp: &at,
		}); err != nil {
			slog.Warn("Failed to mark contact scheduled", "contact_id", id, "error", err)
		}

		if d.Kind == classify.KindTomorrow {
			confirmation = confirmTomorrow
		} else {
			confirmation = confirmCustom(d.At)
		}
	}

	s.sessions.End(sender)

	slog.Info("Interaction resolved",
		"sender", sender,
		"contact_id", id,
		"directive", d.Kind)

	return s.transport.Send(sender, confirmation)
}

func (s *Service) handleSummary(ctx context.Context, sender int64) error {
	summary, err := s.contacts.GetSummary(ctx, summaryWindowDays)
	if err != nil {
		return fmt.Errorf("failed to build summary: %w", err)
	}

	return s.transport.Send(sender, summaryMessage(summaryWindowDays, summary))
}
