package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/elee1766/calagent/src/approval"
)

// CallbackCmd runs the approval callback ingress on its own, for deployments
// where the assistant process and the public callback endpoint are separate.
// It needs no agents backend; only the tracker and the HTTP listener.
type CallbackCmd struct {
	Listen string `help:"Bind address (overrides config)"`
}

func (c *CallbackCmd) Run(ctx *kong.Context, cli *CLI) error {
	logger := createCLILogger(cli.LogLevel)

	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}

	tracker := approval.NewTracker(approval.Config{
		CallbackBaseURL: cfg.Approvals.CallbackBaseURL,
		Retention:       time.Duration(cfg.Approvals.RetentionMinutes) * time.Minute,
		Logger:          logger,
	})
	server := approval.NewServer(tracker, logger)

	addr := c.Listen
	if addr == "" {
		addr = cfg.Approvals.ListenAddr
	}

	if err := server.Start(addr); err != nil {
		return fmt.Errorf("failed to start callback server: %w", err)
	}
	fmt.Printf("Callback server listening on %s\n", addr)

	ttl := time.Duration(cfg.Approvals.PendingTTLMinutes) * time.Minute
	stop := make(chan struct{})
	defer close(stop)
	if ttl > 0 {
		go func() {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-stop:
					return
				case <-ticker.C:
					if n := tracker.SweepPending(ttl); n > 0 {
						logger.Info("expired stale approvals", "count", n)
					}
				}
			}
		}()
	}

	sigCtx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	<-sigCtx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}
