package main

import (
	"context"
	"coursechat/app/client/backend"
	"coursechat/app/config"
	"coursechat/app/service/confirm"
	"coursechat/app/service/directory"
	"coursechat/app/service/exchange"
	"coursechat/app/service/identity"
	"coursechat/app/service/notify"
	"coursechat/app/service/session"
	"coursechat/app/ui"
	"coursechat/app/util/mylog"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

func main() {
	di := do.New()
	defer di.Shutdown()

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

	do.Provide(di, backend.NewClient)
	do.Provide(di, identity.New)
	do.Provide(di, notify.New)
	do.Provide(di, directory.New)
	do.Provide(di, exchange.New)
	do.Provide(di, session.New)
	do.Provide(di, confirm.New)
	do.Provide(di, ui.New)

	slog.Info("Client started", "backend", cfg.Backend.BaseURL)

	group, groupCtx := errgroup.WithContext(appCtx)

	group.Go(func() error {
		return do.MustInvoke[*ui.Runner](di).Run(groupCtx)
	})

	group.Go(func() error {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)

		select {
		case <-groupCtx.Done():
		case <-sigint:
			slog.Info("Shutting down...")
			cancel()
		}

		return nil
	})

	if err = group.Wait(); err != nil && appCtx.Err() == nil {
		log.Fatalf("ui terminated: %v", err)
	}
}
