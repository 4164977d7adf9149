// Package main runs the SOS monitor: it signs in as a guard or admin and
// logs every new unresolved SOS alert until interrupted.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/societyhub/community-server/internal/client"
	"github.com/societyhub/community-server/internal/config"
	"github.com/societyhub/community-server/internal/models"
	"github.com/societyhub/community-server/internal/poller"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	sugar := logger.Sugar()

	cfg, err := config.LoadMonitor()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(cfg.APIURL, nil)
	session, err := api.SignIn(ctx, cfg.Identifier, cfg.Password, models.Role(cfg.Role))
	if err != nil {
		sugar.Fatalf("Sign-in failed: %v", err)
	}
	sugar.Infow("Signed in",
		"user", session.User.Name,
		"role", session.User.Role,
		"expires_at", session.ExpiresAt,
	)

	watcher := client.NewSOSWatcher(api, session, sugar)
	p := poller.New("sos-monitor", cfg.Interval, watcher.Poll, sugar)
	if err := p.Start(ctx); err != nil {
		sugar.Fatalf("Failed to start poller: %v", err)
	}

	<-ctx.Done()
	p.Stop()

	signOutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := api.SignOut(signOutCtx, session); err != nil {
		sugar.Warnw("Sign-out failed", "error", err)
	}
	sugar.Info("SOS monitor stopped")
}
