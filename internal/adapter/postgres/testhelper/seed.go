package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/dreamjournal/internal/domain"
)

// SeedDream inserts a structured dream for userID recorded at recordedAt.
func SeedDream(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, recordedAt time.Time) domain.DreamRecord {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	rec := domain.DreamRecord{
		ID:              uuid.New(),
		UserID:          userID,
		CaptureID:       "cap-" + uuid.NewString()[:8],
		Title:           "Seeded dream",
		RawTranscript:   "I was flying over a city",
		Narrative:       "Flying over a city.",
		Figures:         []string{},
		Locations:       []string{"city"},
		Emotions:        []string{"joy"},
		Themes:          []string{"flight"},
		Symbols:         []string{"sky"},
		WordCount:       6,
		RecordedAt:      recordedAt.UTC().Truncate(time.Microsecond),
		DurationSeconds: 20,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO dreams (id, user_id, capture_id, title, raw_transcript, narrative,
		   figures, locations, emotions, themes, symbols, word_count,
		   recorded_at, duration_seconds, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, '[]', '["city"]', '["joy"]', '["flight"]', '["sky"]',
		   $7, $8, $9, $10, $11)`,
		rec.ID, rec.UserID, rec.CaptureID, rec.Title, rec.RawTranscript, rec.Narrative,
		rec.WordCount, rec.RecordedAt, rec.DurationSeconds, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedDream insert: %v", err)
	}

	return rec
}
