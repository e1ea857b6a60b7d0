// Package app wires the device-local queues, the remote store and the
// analysis service into the Client used by the CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/dreamjournal/internal/adapter/audio"
	"github.com/heartmarshall/dreamjournal/internal/adapter/localstore"
	"github.com/heartmarshall/dreamjournal/internal/adapter/postgres"
	dreamrepo "github.com/heartmarshall/dreamjournal/internal/adapter/postgres/dream"
	"github.com/heartmarshall/dreamjournal/internal/adapter/postgres/operation"
	reportrepo "github.com/heartmarshall/dreamjournal/internal/adapter/postgres/report"
	"github.com/heartmarshall/dreamjournal/internal/adapter/provider/analysis"
	"github.com/heartmarshall/dreamjournal/internal/config"
	"github.com/heartmarshall/dreamjournal/internal/connectivity"
	"github.com/heartmarshall/dreamjournal/internal/queue"
	"github.com/heartmarshall/dreamjournal/internal/service/capture"
	"github.com/heartmarshall/dreamjournal/internal/service/enrichment"
	"github.com/heartmarshall/dreamjournal/internal/service/opqueue"
	"github.com/heartmarshall/dreamjournal/internal/service/report"
)

// Client is one running dream journal client for a single device.
type Client struct {
	cfg *config.Config
	log *slog.Logger

	local    *localstore.Store
	pool     *pgxpool.Pool
	audio    *audio.Store
	dreams   *dreamrepo.Repo
	reports  *reportrepo.Repo
	prober   *connectivity.Prober
	observer *connectivity.Observer

	ops        *opqueue.Service
	capture    *capture.Service
	enrichment *enrichment.Service
	scheduler  *report.Scheduler
}

// New opens local storage and the remote pool and wires every service. The
// initial connectivity state comes from one probe, so New succeeds offline.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Client, error) {
	local, err := localstore.Open(ctx, cfg.Storage.LocalDBPath)
	if err != nil {
		return nil, fmt.Errorf("app.New: open local store: %w", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		local.Close() //nolint:errcheck
		return nil, fmt.Errorf("app.New: %w", err)
	}

	txm := postgres.NewTxManager(pool)
	dreams := dreamrepo.New(pool)
	reports := reportrepo.New(pool)
	applier := operation.NewApplier(dreams, reports, txm)

	prober := connectivity.NewProber(log, cfg.Connectivity.ProbeURL, cfg.Connectivity.ProbeInterval, cfg.Connectivity.ProbeTimeout)
	observer := connectivity.NewObserver(log, prober.Check(ctx))

	analysisClient := analysis.NewClient(log, cfg.Analysis)
	audioStore := audio.NewStore(cfg.Storage.AudioDir)

	ops := opqueue.NewService(log, queue.NewOperationQueue(local), applier, observer)
	enrich := enrichment.NewService(log, analysisClient, dreams, ops, cfg.Enrichment.Timeout)
	capt := capture.NewService(log, queue.NewCaptureQueue(local), analysisClient, dreams, audioStore, enrich, observer)
	sched := report.NewScheduler(log, reports, analysisClient, local, txm, cfg.Report.Location, cfg.Report.TopN)

	observer.OnReconnect(func(ctx context.Context) {
		ops.SyncQueue(ctx)
	})

	return &Client{
		cfg:        cfg,
		log:        log,
		local:      local,
		pool:       pool,
		audio:      audioStore,
		dreams:     dreams,
		reports:    reports,
		prober:     prober,
		observer:   observer,
		ops:        ops,
		capture:    capt,
		enrichment: enrich,
		scheduler:  sched,
	}, nil
}

// Close waits for background enrichment and reconnect handlers, then
// releases storage.
func (c *Client) Close() error {
	c.enrichment.Wait()
	c.observer.Wait()
	c.pool.Close()
	if err := c.local.Close(); err != nil {
		return fmt.Errorf("app.Close: %w", err)
	}
	return nil
}

// Online reports the last known connectivity state.
func (c *Client) Online() bool {
	return c.observer.IsOnline()
}

// Migrate applies remote store migrations.
func (c *Client) Migrate(ctx context.Context) (int, error) {
	n, err := postgres.Migrate(ctx, c.pool)
	if err != nil {
		return 0, fmt.Errorf("app.Migrate: %w", err)
	}
	return n, nil
}
