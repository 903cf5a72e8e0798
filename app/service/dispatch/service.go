package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"metbot/app/client/telegram"
	"metbot/app/config"
	"metbot/app/service/contact"

	"github.com/samber/do"
)

// Service delivers fired reminders to the owner chat and records the send
// on the contact. Delivery is at-most-once: a transport failure is surfaced
// to the caller and never retried here.
type Service struct {
	cfg        *config.Config
	client     *telegram.Client
	contactSvc *contact.Service
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		cfg:        do.MustInvoke[*config.Config](di),
		client:     do.MustInvoke[*telegram.Client](di),
		contactSvc: do.MustInvoke[*contact.Service](di),
	}, nil
}

func (s *Service) Deliver(ctx context.Context, contactID, message string) error {
	text := "Time to follow up!\n\n" + message

	rec, found, err := s.contactSvc.Get(ctx, contactID)
	if err != nil {
		slog.Warn("Could not load contact for reminder", "contact_id", contactID, "error", err)
	} else if found {
		text = fmt.Sprintf("Time to follow up with %s (%s)!\n\n%s", rec.Name, rec.Event, message)
	}

	if err := s.client.Send(s.cfg.Telegram.OwnerChatID, text); err != nil {
		return fmt.Errorf("failed to send reminder: %w", err)
	}

	now := time.Now()
	status := contact.StatusSent

	if err := s.contactSvc.Update(ctx, contactID, contact.Patch{
		Status:         &status,
		FollowUpSentAt: &now,
	}); err != nil {
		slog.Error("Failed to mark contact as sent", "contact_id", contactID, "error", err)
	}

	return nil
}
