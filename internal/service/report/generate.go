package report

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/dreamjournal/internal/domain"
	"github.com/heartmarshall/dreamjournal/internal/metrics"
	"github.com/heartmarshall/dreamjournal/pkg/ctxutil"
)

// CheckAndGenerateReport writes the aggregate for the previous calendar week
// if that week has elapsed, has no aggregate yet and contains dreams. It
// returns the new aggregate, or nil when nothing was written.
//
// A week is remembered as concluded, in memory and in local storage, only
// once its aggregate exists. A failed or empty check is retried on the next
// call.
func (s *Scheduler) CheckAndGenerateReport(ctx context.Context, dreams []domain.DreamRecord) (*domain.WeeklyAggregate, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	now := s.now().In(s.loc)
	week := domain.PreviousWeek(now)
	key := week.Key()

	if s.concluded(ctx, key) {
		return nil, nil
	}
	if !week.Elapsed(now) {
		return nil, nil
	}

	if !s.generating.CompareAndSwap(false, true) {
		s.log.DebugContext(ctx, "report generation already running", slog.String("week", key))
		return nil, nil
	}
	defer s.generating.Store(false)

	agg, err := s.generate(ctx, userID, week, dreams)
	if err != nil {
		metrics.Reports.WithLabelValues("failed").Inc()
		s.log.ErrorContext(ctx, "weekly report generation failed",
			slog.String("week", key),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("report.CheckAndGenerateReport %s: %w", key, err)
	}
	return agg, nil
}

func (s *Scheduler) generate(ctx context.Context, userID uuid.UUID, week domain.WeekBounds, dreams []domain.DreamRecord) (*domain.WeeklyAggregate, error) {
	key := week.Key()

	exists, err := s.reports.ExistsForWeek(ctx, userID, week.Start)
	if err != nil {
		return nil, fmt.Errorf("check existing: %w", err)
	}
	if exists {
		metrics.Reports.WithLabelValues("exists").Inc()
		s.conclude(ctx, key)
		return nil, nil
	}

	inWeek := dreamsIn(week, dreams)
	if len(inWeek) == 0 {
		metrics.Reports.WithLabelValues("empty").Inc()
		s.log.DebugContext(ctx, "no dreams in week", slog.String("week", key))
		return nil, nil
	}

	summary, err := s.analysis.SummarizeWeek(ctx, inWeek)
	if err != nil {
		return nil, fmt.Errorf("summarize week: %w", err)
	}

	agg := s.build(userID, week, inWeek, summary)

	var created *domain.WeeklyAggregate
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		exists, err := s.reports.ExistsForWeek(ctx, userID, week.Start)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		created, err = s.reports.Create(ctx, &agg)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}

	s.conclude(ctx, key)

	if created == nil {
		metrics.Reports.WithLabelValues("exists").Inc()
		return nil, nil
	}

	metrics.Reports.WithLabelValues("generated").Inc()
	s.log.InfoContext(ctx, "weekly report generated",
		slog.String("week", key),
		slog.Int("dreams", created.DreamCount),
	)
	return created, nil
}

func (s *Scheduler) build(userID uuid.UUID, week domain.WeekBounds, dreams []domain.DreamRecord, summary domain.WeekSummary) domain.WeeklyAggregate {
	var themes, symbols, emotions, archetypes [][]string
	for _, d := range dreams {
		themes = append(themes, d.Themes)
		symbols = append(symbols, d.Symbols)
		emotions = append(emotions, d.Emotions)
		if d.DeepAnalysis != nil {
			archetypes = append(archetypes, d.DeepAnalysis.Archetypes)
		}
	}

	dominant := summary.DominantEmotions
	if len(dominant) == 0 {
		for _, e := range topFrequencies(emotions, 3) {
			dominant = append(dominant, e.Value)
		}
	}

	return domain.WeeklyAggregate{
		ID:            uuid.New(),
		UserID:        userID,
		WeekStart:     week.Start,
		WeekEnd:       week.End,
		DreamCount:    len(dreams),
		TopThemes:     topFrequencies(themes, s.topN),
		TopSymbols:    topFrequencies(symbols, s.topN),
		TopArchetypes: topFrequencies(archetypes, s.topN),
		EmotionalTrend: domain.EmotionalTrend{
			DominantEmotions: dominant,
			Trend:            summary.Trend,
			Narrative:        summary.Narrative,
		},
		Insight:   summary.Insight,
		CreatedAt: s.now(),
	}
}

func dreamsIn(week domain.WeekBounds, dreams []domain.DreamRecord) []domain.DreamRecord {
	var out []domain.DreamRecord
	for _, d := range dreams {
		if week.Contains(d.RecordedAt) {
			out = append(out, d)
		}
	}
	return out
}
