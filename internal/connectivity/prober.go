package connectivity

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Prober is a Signal that polls an HTTP endpoint. Any response below 500
// counts as reachable; transport errors count as offline.
type Prober struct {
	log      *slog.Logger
	client   *http.Client
	url      string
	interval time.Duration
}

// NewProber creates a Prober for url.
func NewProber(log *slog.Logger, url string, interval, timeout time.Duration) *Prober {
	return &Prober{
		log:      log.With("component", "prober"),
		client:   &http.Client{Timeout: timeout},
		url:      url,
		interval: interval,
	}
}

// Check performs one probe.
func (p *Prober) Check(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		p.log.ErrorContext(ctx, "build probe request", slog.String("error", err.Error()))
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		p.log.DebugContext(ctx, "probe failed", slog.String("error", err.Error()))
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}

// Watch implements Signal. It emits the first probe result immediately and
// afterwards only changes.
func (p *Prober) Watch(ctx context.Context) <-chan bool {
	out := make(chan bool, 1)

	go func() {
		defer close(out)

		last := p.Check(ctx)
		select {
		case out <- last:
		case <-ctx.Done():
			return
		}

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cur := p.Check(ctx)
				if cur == last {
					continue
				}
				last = cur
				select {
				case out <- cur:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}
