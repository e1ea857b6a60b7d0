// Package report implements the weekly report repository using PostgreSQL.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/dreamjournal/internal/adapter/postgres"
	"github.com/heartmarshall/dreamjournal/internal/domain"
)

const table = "weekly_reports"

var columns = []string{
	"id", "user_id", "week_start", "week_end", "dream_count",
	"top_themes", "top_symbols", "top_archetypes", "emotional_trend",
	"insight", "created_at",
}

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo provides weekly report persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new report repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ExistsForWeek reports whether the user already has a report starting at weekStart.
func (r *Repo) ExistsForWeek(ctx context.Context, userID uuid.UUID, weekStart time.Time) (bool, error) {
	sql, args, err := builder.Select("1").From(table).
		Where(sq.Eq{"user_id": userID, "week_start": weekStart}).
		Prefix("SELECT EXISTS (").Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists bool
	if err := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("weekly_report exists: %w", err)
	}
	return exists, nil
}

// GetByWeekStart returns the oldest report for the given week.
// Returns domain.ErrNotFound if none exists.
func (r *Repo) GetByWeekStart(ctx context.Context, userID uuid.UUID, weekStart time.Time) (*domain.WeeklyAggregate, error) {
	sql, args, err := builder.Select(columns...).From(table).
		Where(sq.Eq{"user_id": userID, "week_start": weekStart}).
		OrderBy("created_at ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	agg, err := scanReport(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "weekly_report", weekKey(weekStart))
	}
	return agg, nil
}

// List returns a user's reports, most recent week first.
// Returns an empty slice (not nil) when the user has none.
func (r *Repo) List(ctx context.Context, userID uuid.UUID, limit int) ([]domain.WeeklyAggregate, error) {
	query := builder.Select(columns...).From(table).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("week_start DESC", "created_at ASC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list weekly_reports: %w", err)
	}
	defer rows.Close()

	result := make([]domain.WeeklyAggregate, 0)
	for rows.Next() {
		agg, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("list weekly_reports: %w", err)
		}
		result = append(result, *agg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list weekly_reports: %w", err)
	}

	return result, nil
}

// Create inserts a report. The table carries no uniqueness on week_start;
// callers check ExistsForWeek first.
func (r *Repo) Create(ctx context.Context, agg *domain.WeeklyAggregate) (*domain.WeeklyAggregate, error) {
	themes, err := json.Marshal(nonNilEntries(agg.TopThemes))
	if err != nil {
		return nil, fmt.Errorf("encode top_themes: %w", err)
	}
	symbols, err := json.Marshal(nonNilEntries(agg.TopSymbols))
	if err != nil {
		return nil, fmt.Errorf("encode top_symbols: %w", err)
	}
	archetypes, err := json.Marshal(nonNilEntries(agg.TopArchetypes))
	if err != nil {
		return nil, fmt.Errorf("encode top_archetypes: %w", err)
	}
	trend, err := json.Marshal(agg.EmotionalTrend)
	if err != nil {
		return nil, fmt.Errorf("encode emotional_trend: %w", err)
	}

	sql, args, err := builder.Insert(table).
		Columns(columns...).
		Values(
			agg.ID, agg.UserID, agg.WeekStart, agg.WeekEnd, agg.DreamCount,
			themes, symbols, archetypes, trend,
			agg.Insight, agg.CreatedAt,
		).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	created, err := scanReport(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "weekly_report", agg.ID)
	}
	return created, nil
}

// Delete removes a report. Returns domain.ErrNotFound if it does not exist.
func (r *Repo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	sql, args, err := builder.Delete(table).
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "weekly_report", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("weekly_report %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanReport(row pgx.Row) (*domain.WeeklyAggregate, error) {
	var (
		agg                         domain.WeeklyAggregate
		themes, symbols, archetypes []byte
		trend                       []byte
	)

	err := row.Scan(
		&agg.ID, &agg.UserID, &agg.WeekStart, &agg.WeekEnd, &agg.DreamCount,
		&themes, &symbols, &archetypes, &trend,
		&agg.Insight, &agg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(themes, &agg.TopThemes); err != nil {
		return nil, fmt.Errorf("decode top_themes: %w", err)
	}
	if err := json.Unmarshal(symbols, &agg.TopSymbols); err != nil {
		return nil, fmt.Errorf("decode top_symbols: %w", err)
	}
	if err := json.Unmarshal(archetypes, &agg.TopArchetypes); err != nil {
		return nil, fmt.Errorf("decode top_archetypes: %w", err)
	}
	if err := json.Unmarshal(trend, &agg.EmotionalTrend); err != nil {
		return nil, fmt.Errorf("decode emotional_trend: %w", err)
	}

	return &agg, nil
}

func nonNilEntries(e []domain.FrequencyEntry) []domain.FrequencyEntry {
	if e == nil {
		return []domain.FrequencyEntry{}
	}
	return e
}

type weekKey time.Time

func (w weekKey) String() string { return time.Time(w).Format(time.DateOnly) }
