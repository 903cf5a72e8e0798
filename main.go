package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"metbot/app/client/telegram"
	"metbot/app/config"
	"metbot/app/service/calendar"
	"metbot/app/service/contact"
	"metbot/app/service/conversation"
	"metbot/app/service/dispatch"
	"metbot/app/service/engine"
	"metbot/app/service/queue"
	"metbot/app/service/scheduler"
	"metbot/app/service/session"
	"metbot/app/service/topic"
	"metbot/app/util/mylog"
	"metbot/app/web"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
)

func main() {
	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	do.Provide(di, telegram.NewClient)
	do.Provide(di, contact.New)
	do.Provide(di, session.New)
	do.Provide(di, calendar.New)
	do.Provide(di, topic.New)
	do.Provide(di, dispatch.New)
	do.Provide(di, scheduler.New)
	do.Provide(di, conversation.New)
	do.Provide(di, queue.New)
	do.Provide(di, engine.New)
	do.Provide(di, web.New)

	slog.Info("Service started")

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	go do.MustInvoke[*scheduler.Service](di).Run(appCtx)
	go do.MustInvoke[*web.Server](di).Run(appCtx)

	go func() {
		if err := do.MustInvoke[*engine.Service](di).Run(appCtx); err != nil && appCtx.Err() == nil {
			slog.Error("Engine stopped", "error", err)
			cancel()
		}
	}()

	<-appCtx.Done()
}
