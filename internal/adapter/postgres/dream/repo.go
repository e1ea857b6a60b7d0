// Package dream implements the dream record repository using PostgreSQL.
// List-valued fields and the deep analysis block are stored as JSONB.
package dream

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

const table = "dreams"

var columns = []string{
	"id", "user_id", "capture_id", "title", "raw_transcript", "narrative",
	"figures", "locations", "emotions", "themes", "symbols", "word_count",
	"user_context", "deep_analysis", "recorded_at", "duration_seconds",
	"created_at", "updated_at",
}

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo provides dream record persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new dream repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a dream by primary key with user_id filter.
// Returns domain.ErrNotFound if the dream does not exist or belongs to another user.
func (r *Repo) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.DreamRecord, error) {
	query := builder.Select(columns...).From(table).
		Where(sq.Eq{"id": id, "user_id": userID})

	rec, err := r.getOne(ctx, query)
	if err != nil {
		return nil, postgres.MapError(err, "dream", id)
	}
	return rec, nil
}

// GetByCaptureID returns the dream derived from the given capture.
func (r *Repo) GetByCaptureID(ctx context.Context, userID uuid.UUID, captureID string) (*domain.DreamRecord, error) {
	query := builder.Select(columns...).From(table).
		Where(sq.Eq{"capture_id": captureID, "user_id": userID})

	rec, err := r.getOne(ctx, query)
	if err != nil {
		return nil, postgres.MapError(err, "dream capture", captureKey(captureID))
	}
	return rec, nil
}

// ListInRange returns dreams recorded within [from, to], oldest first.
func (r *Repo) ListInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.DreamRecord, error) {
	query := builder.Select(columns...).From(table).
		Where(sq.Eq{"user_id": userID}).
		Where(sq.GtOrEq{"recorded_at": from}).
		Where(sq.LtOrEq{"recorded_at": to}).
		OrderBy("recorded_at ASC", "id ASC")

	return r.list(ctx, query)
}

// List returns the most recent dreams of a user, newest first.
// A non-positive limit returns every dream.
func (r *Repo) List(ctx context.Context, userID uuid.UUID, limit int) ([]domain.DreamRecord, error) {
	query := builder.Select(columns...).From(table).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("recorded_at DESC", "id DESC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	return r.list(ctx, query)
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new dream and returns the persisted record.
// Returns domain.ErrAlreadyExists if the capture already produced a dream.
func (r *Repo) Create(ctx context.Context, rec *domain.DreamRecord) (*domain.DreamRecord, error) {
	lists, err := marshalLists(rec)
	if err != nil {
		return nil, fmt.Errorf("dream %s: %w", rec.ID, err)
	}
	deep, err := marshalDeep(rec.DeepAnalysis)
	if err != nil {
		return nil, fmt.Errorf("dream %s: %w", rec.ID, err)
	}

	query := builder.Insert(table).
		Columns(columns...).
		Values(
			rec.ID, rec.UserID, rec.CaptureID, rec.Title, rec.RawTranscript, rec.Narrative,
			lists[0], lists[1], lists[2], lists[3], lists[4], rec.WordCount,
			rec.UserContext, deep, rec.RecordedAt, rec.DurationSeconds,
			rec.CreatedAt, rec.UpdatedAt,
		).
		Suffix("RETURNING " + joinColumns())

	created, err := r.getOne(ctx, query)
	if err != nil {
		return nil, postgres.MapError(err, "dream", rec.ID)
	}
	return created, nil
}

// Update rewrites the editable fields of a dream. The deep analysis block is
// left untouched; use UpdateDeepAnalysis for it.
func (r *Repo) Update(ctx context.Context, rec *domain.DreamRecord) (*domain.DreamRecord, error) {
	lists, err := marshalLists(rec)
	if err != nil {
		return nil, fmt.Errorf("dream %s: %w", rec.ID, err)
	}

	query := builder.Update(table).
		Set("title", rec.Title).
		Set("raw_transcript", rec.RawTranscript).
		Set("narrative", rec.Narrative).
		Set("figures", lists[0]).
		Set("locations", lists[1]).
		Set("emotions", lists[2]).
		Set("themes", lists[3]).
		Set("symbols", lists[4]).
		Set("word_count", domain.WordCount(rec.RawTranscript)).
		Set("user_context", rec.UserContext).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": rec.ID, "user_id": rec.UserID}).
		Suffix("RETURNING " + joinColumns())

	updated, err := r.getOne(ctx, query)
	if err != nil {
		return nil, postgres.MapError(err, "dream", rec.ID)
	}
	return updated, nil
}

// UpdateDeepAnalysis replaces the deep analysis block and nothing else.
func (r *Repo) UpdateDeepAnalysis(ctx context.Context, userID, id uuid.UUID, analysis domain.DeepAnalysis) error {
	deep, err := marshalDeep(&analysis)
	if err != nil {
		return fmt.Errorf("dream %s: %w", id, err)
	}

	query := builder.Update(table).
		Set("deep_analysis", deep).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id, "user_id": userID})

	return r.execOne(ctx, query, id)
}

// Delete removes a dream. Returns domain.ErrNotFound if the dream
// does not exist or belongs to another user.
func (r *Repo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := builder.Delete(table).Where(sq.Eq{"id": id, "user_id": userID})
	return r.execOne(ctx, query, id)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (r *Repo) getOne(ctx context.Context, query sq.Sqlizer) (*domain.DreamRecord, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, sql, args...)
	return scanDream(row)
}

func (r *Repo) list(ctx context.Context, query sq.SelectBuilder) ([]domain.DreamRecord, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list dreams: %w", err)
	}
	defer rows.Close()

	result := make([]domain.DreamRecord, 0)
	for rows.Next() {
		rec, err := scanDream(rows)
		if err != nil {
			return nil, fmt.Errorf("list dreams: %w", err)
		}
		result = append(result, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list dreams: %w", err)
	}

	return result, nil
}

func (r *Repo) execOne(ctx context.Context, query sq.Sqlizer, id uuid.UUID) error {
	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "dream", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("dream %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanDream(row pgx.Row) (*domain.DreamRecord, error) {
	var (
		rec                                           domain.DreamRecord
		figures, locations, emotions, themes, symbols []byte
		deep                                          []byte
	)

	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.CaptureID, &rec.Title, &rec.RawTranscript, &rec.Narrative,
		&figures, &locations, &emotions, &themes, &symbols, &rec.WordCount,
		&rec.UserContext, &deep, &rec.RecordedAt, &rec.DurationSeconds,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	for _, f := range []struct {
		raw []byte
		dst *[]string
	}{
		{figures, &rec.Figures},
		{locations, &rec.Locations},
		{emotions, &rec.Emotions},
		{themes, &rec.Themes},
		{symbols, &rec.Symbols},
	} {
		*f.dst = []string{}
		if len(f.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(f.raw, f.dst); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
	}

	if len(deep) > 0 {
		var da domain.DeepAnalysis
		if err := json.Unmarshal(deep, &da); err != nil {
			return nil, fmt.Errorf("decode deep_analysis: %w", err)
		}
		rec.DeepAnalysis = &da
	}

	return &rec, nil
}

// marshalLists encodes figures, locations, emotions, themes, symbols in column order.
func marshalLists(rec *domain.DreamRecord) ([5][]byte, error) {
	var out [5][]byte
	for i, list := range [][]string{rec.Figures, rec.Locations, rec.Emotions, rec.Themes, rec.Symbols} {
		if list == nil {
			list = []string{}
		}
		b, err := json.Marshal(list)
		if err != nil {
			return out, fmt.Errorf("encode list: %w", err)
		}
		out[i] = b
	}
	return out, nil
}

func marshalDeep(da *domain.DeepAnalysis) ([]byte, error) {
	if da == nil {
		return nil, nil
	}
	b, err := json.Marshal(da)
	if err != nil {
		return nil, fmt.Errorf("encode deep_analysis: %w", err)
	}
	return b, nil
}

func joinColumns() string {
	return strings.Join(columns, ", ")
}

type captureKey string

func (k captureKey) String() string { return string(k) }
