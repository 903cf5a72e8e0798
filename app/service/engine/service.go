package engine

import (
	"context"
	"log/slog"
	"time"

	"metbot/app/client/telegram"
	"metbot/app/config"
	"metbot/app/service/conversation"
	"metbot/app/service/queue"

	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

const pollErrorBackoff = 30 * time.Second

// Service drives the bot: one goroutine polls the transport on a fixed
// interval, one consumes the queue. The single consumer is what serializes
// inbound handling: at most one message is inside the controller at a time.
type Service struct {
	cfg             *config.Config
	client          *telegram.Client
	conversationSvc *conversation.Service
	queueSvc        *queue.Service
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		cfg:             do.MustInvoke[*config.Config](di),
		client:          do.MustInvoke[*telegram.Client](di),
		conversationSvc: do.MustInvoke[*conversation.Service](di),
		queueSvc:        do.MustInvoke[*queue.Service](di),
	}, nil
}

func (s *Service) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return s.pollLoop(ctx)
	})

	group.Go(func() error {
		return s.consumeLoop(ctx)
	})

	return group.Wait()
}

func (s *Service) pollLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.PollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			messages, err := s.client.PollRecent(ctx, s.cfg.Telegram.PollLimit)
			if err != nil {
				slog.Error("Polling failed", "error", err)
				time.Sleep(pollErrorBackoff)
				continue
			}

			for _, msg := range messages {
				s.queueSvc.Add(msg)
			}
		}
	}
}

func (s *Service) consumeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-s.queueSvc.Channel():
			if !ok {
				return context.Canceled
			}

			start := time.Now()
			if err := s.conversationSvc.ProcessMessage(ctx, msg.Sender, msg.Text); err != nil {
				slog.Warn("ProcessMessage error", "error", err)
			}

			slog.Info("Processed message",
				"sender", msg.Sender,
				"text", msg.Text,
				"duration", time.Since(start))
		}
	}
}
