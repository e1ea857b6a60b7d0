package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/dreamjournal/internal/domain"
	"github.com/heartmarshall/dreamjournal/internal/service/capture"
	"github.com/heartmarshall/dreamjournal/internal/transport/rest"
)

// Serve runs the client until ctx is done: the connectivity observer fed by
// the prober, the periodic weekly report check and the status server. ctx
// must carry the user id; reconnect handlers inherit it.
func (c *Client) Serve(ctx context.Context) error {
	c.log.InfoContext(ctx, "starting client",
		slog.String("version", BuildVersion()),
		slog.Bool("online", c.observer.IsOnline()),
		slog.Bool("capture_auto_retry", c.cfg.Capture.AutoRetry),
	)

	if c.cfg.Capture.AutoRetry {
		c.observer.OnReconnect(c.capture.RetryOnReconnect(ctx, capture.RetryPolicy{
			Initial:    c.cfg.Capture.RetryInitial,
			MaxElapsed: c.cfg.Capture.RetryMaxElapsed,
			MaxTries:   c.cfg.Capture.RetryMaxTries,
		}))
	}

	// Replay whatever an earlier run left behind.
	if c.observer.IsOnline() {
		c.ops.SyncQueue(ctx)
	}

	router := rest.NewRouter(c.log,
		rest.NewHealthHandler(c.pool, c.observer, BuildVersion()),
		rest.NewQueueHandler(c.log, c.capture, c.ops, c.observer),
	)
	server := rest.NewServer(c.log, c.cfg.Status, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c.observer.Run(gctx, c.prober)
		return nil
	})
	g.Go(func() error {
		c.runReports(gctx)
		return nil
	})
	g.Go(func() error {
		return server.Run(gctx)
	})
	return g.Wait()
}

func (c *Client) runReports(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.Report.CheckInterval)
	defer ticker.Stop()

	for {
		c.checkReport(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (c *Client) checkReport(ctx context.Context) {
	agg, err := c.CheckAndGenerateReport(ctx)
	switch {
	case errors.Is(err, domain.ErrOffline):
		c.log.DebugContext(ctx, "weekly report check skipped while offline")
	case err != nil:
		c.log.WarnContext(ctx, "weekly report check failed, retrying next tick", slog.String("error", err.Error()))
	case agg != nil:
		c.log.InfoContext(ctx, "weekly report ready",
			slog.String("week_start", agg.WeekStart.Format(time.DateOnly)),
			slog.Int("dreams", agg.DreamCount),
		)
	}
}
