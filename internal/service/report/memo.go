package report

import (
	"context"
	"log/slog"
)

// concluded reports whether week key was already concluded, consulting local
// storage on first use.
func (s *Scheduler) concluded(ctx context.Context, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		v, ok, err := s.local.Get(ctx, LastWeekKey)
		if err != nil {
			// Retry the load next time; the existence check still guards duplicates.
			s.log.WarnContext(ctx, "load last report week", slog.String("error", err.Error()))
			return false
		}
		if ok {
			s.lastWeek = v
		}
		s.loaded = true
	}
	return s.lastWeek == key
}

func (s *Scheduler) conclude(ctx context.Context, key string) {
	s.mu.Lock()
	s.lastWeek = key
	s.loaded = true
	s.mu.Unlock()

	if err := s.local.Set(ctx, LastWeekKey, key); err != nil {
		s.log.WarnContext(ctx, "persist last report week",
			slog.String("week", key),
			slog.String("error", err.Error()),
		)
	}
}
