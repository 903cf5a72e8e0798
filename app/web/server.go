package web

import (
	"context"
	"log/slog"

	"metbot/app/config"
	"metbot/app/service/contact"
	"metbot/app/service/scheduler"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/do"
)

const summaryWindowDays = 30

// Server exposes a read-only status surface: health, contact summary and
// the reminders still waiting to fire.
type Server struct {
	cfg          *config.Config
	contactSvc   *contact.Service
	schedulerSvc *scheduler.Service

	app *fiber.App
}

func New(di *do.Injector) (*Server, error) {
	s := &Server{
		cfg:          do.MustInvoke[*config.Config](di),
		contactSvc:   do.MustInvoke[*contact.Service](di),
		schedulerSvc: do.MustInvoke[*scheduler.Service](di),
	}

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	s.app.Get("/api/summary", func(c *fiber.Ctx) error {
		summary, err := s.contactSvc.GetSummary(c.Context(), summaryWindowDays)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		return c.JSON(summary)
	})

	s.app.Get("/api/reminders", func(c *fiber.Ctx) error {
		return c.JSON(s.schedulerSvc.Pending())
	})

	return s, nil
}

func (s *Server) Run(ctx context.Context) {
	if s.cfg.Web.Addr == "" {
		return
	}

	go func() {
		<-ctx.Done()
		_ = s.app.Shutdown()
	}()

	slog.Info("Status server listening", "addr", s.cfg.Web.Addr)

	if err := s.app.Listen(s.cfg.Web.Addr); err != nil {
		slog.Error("Status server stopped", "error", err)
	}
}
