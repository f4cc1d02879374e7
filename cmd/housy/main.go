package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/housy/internal/config"
	"github.com/dukerupert/housy/internal/database"
	"github.com/dukerupert/housy/internal/email"
	"github.com/dukerupert/housy/internal/logging"
	"github.com/dukerupert/housy/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	emailClient := email.NewClient(cfg.PostmarkToken, cfg.FromEmail, cfg.BaseURL)
	if !emailClient.Configured() {
		logger.Warn("postmark token not set, email invites disabled")
	}

	srv := server.New(db, cfg, emailClient, logger)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	if sched := srv.PushScheduler(); sched != nil {
		sched.SetInterval(cfg.ReminderEvery)
		sched.Start(bgCtx)
		defer sched.Stop()
		logger.Info("push reminders enabled", "interval", cfg.ReminderEvery)
	} else {
		logger.Warn("VAPID keys not set, push notifications disabled")
	}

	srv.RateLimiter().StartCleanup(bgCtx, 10*time.Minute)

	// Background session cleanup
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				srv.Accounts().PurgeExpiredSessions(bgCtx)
			case <-bgCtx.Done():
				return
			}
		}
	}()

	go func() {
		logger.Info("housy starting", "addr", httpServer.Addr, "timezone", cfg.Timezone)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	bgCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
