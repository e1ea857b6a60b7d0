package domain

import (
	"time"

	"github.com/google/uuid"
)

// FrequencyEntry is one row of a ranked frequency table.
type FrequencyEntry struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// EmotionalTrend summarises the emotional arc of a week.
type EmotionalTrend struct {
	DominantEmotions []string `json:"dominant_emotions"`
	Trend            string   `json:"trend"`
	Narrative        string   `json:"narrative"`
}

// WeeklyAggregate is a derived summary of one fully elapsed calendar week.
// At most one exists per (UserID, WeekStart); the pipeline never updates it.
type WeeklyAggregate struct {
	ID             uuid.UUID        `json:"id"`
	UserID         uuid.UUID        `json:"user_id"`
	WeekStart      time.Time        `json:"week_start"`
	WeekEnd        time.Time        `json:"week_end"`
	DreamCount     int              `json:"dream_count"`
	TopThemes      []FrequencyEntry `json:"top_themes"`
	TopSymbols     []FrequencyEntry `json:"top_symbols"`
	TopArchetypes  []FrequencyEntry `json:"top_archetypes"`
	EmotionalTrend EmotionalTrend   `json:"emotional_trend"`
	Insight        string           `json:"insight"`
	CreatedAt      time.Time        `json:"created_at"`
}

// WeekSummary is what the analysis service returns for a week of dreams.
type WeekSummary struct {
	DominantEmotions []string `json:"dominant_emotions"`
	Trend            string   `json:"trend"`
	Narrative        string   `json:"narrative"`
	Insight          string   `json:"insight"`
}
