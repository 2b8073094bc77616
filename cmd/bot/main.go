package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"suitcraft-ai/internal/app"
	"suitcraft-ai/internal/config"
	"suitcraft-ai/internal/handlers"
	"suitcraft-ai/internal/httpclient"
	"suitcraft-ai/internal/metrics"
	"suitcraft-ai/internal/session"
	"suitcraft-ai/internal/telegram"
)

const draftTTL = 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err == nil {
		err = cfg.RequireTelegram()
	}
	if err != nil {
		panic(err)
	}

	logger := app.NewLogger(cfg, os.Stdout)

	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout(),
	})

	tg, err := telegram.New(telegram.Options{
		Token:      cfg.TelegramToken,
		HTTPClient: httpClient,
		Logger:     logger,
		Debug:      cfg.Debug,
	})
	if err != nil {
		logger.Error("telegram init failed", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := app.NewPipeline(ctx, cfg, app.Deps{
		HTTPClient: httpClient,
		Metrics:    metrics.NewRegistry(),
		Logger:     logger,
	})
	if err != nil {
		logger.Error("pipeline init failed", "err", err)
		os.Exit(1)
	}

	sessions := session.NewStore(session.Options{TTL: draftTTL})

	handler := handlers.New(handlers.Options{
		Telegram:    tg,
		Recommender: p,
		Sessions:    sessions,
		Logger:      logger,
	})

	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := sessions.Sweep(); n > 0 {
					logger.Debug("expired drafts dropped", "count", n)
				}
			}
		}
	}()

	logger.Info("bot started", "username", tg.Username(), "text_provider", cfg.TextProvider)

	updates := tg.Updates(telegram.UpdatesOptions{
		Timeout: 30 * time.Second,
	})
	defer tg.StopUpdates()

	sem := make(chan struct{}, cfg.MaxConcurrent)
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		case update, ok := <-updates:
			if !ok {
				logger.Info("updates channel closed")
				return
			}

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}

			go func(update telegram.Update) {
				defer func() { <-sem }()

				reqCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout())
				defer cancel()

				if err := handler.HandleUpdate(reqCtx, update); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("handle update failed", "err", err)
				}
			}(update)
		}
	}
}
