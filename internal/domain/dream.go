package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DreamRecord is the structured, persisted representation of a dream.
// DeepAnalysis is nil until the background enrichment pass succeeds.
type DreamRecord struct {
	ID              uuid.UUID     `json:"id"`
	UserID          uuid.UUID     `json:"user_id"`
	CaptureID       string        `json:"capture_id"`
	Title           string        `json:"title"`
	RawTranscript   string        `json:"raw_transcript"`
	Narrative       string        `json:"narrative"`
	Figures         []string      `json:"figures"`
	Locations       []string      `json:"locations"`
	Emotions        []string      `json:"emotions"`
	Themes          []string      `json:"themes"`
	Symbols         []string      `json:"symbols"`
	WordCount       int           `json:"word_count"`
	UserContext     *string       `json:"user_context,omitempty"`
	DeepAnalysis    *DeepAnalysis `json:"deep_analysis,omitempty"`
	RecordedAt      time.Time     `json:"recorded_at"`
	DurationSeconds int           `json:"duration_seconds"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// NeedsEnrichment reports whether the record still lacks a deep analysis block.
func (d *DreamRecord) NeedsEnrichment() bool {
	return d.DeepAnalysis == nil
}

// DeepAnalysis is the interpretation block written by the enrichment pass.
// It is always replaced as a whole.
type DeepAnalysis struct {
	Interpretation string    `json:"interpretation"`
	Archetypes     []string  `json:"archetypes"`
	ShadowAspects  []string  `json:"shadow_aspects"`
	Guidance       string    `json:"guidance"`
	AnalyzedAt     time.Time `json:"analyzed_at"`
}

// Decomposition is the structured output of the first analysis pass.
type Decomposition struct {
	Transcript string   `json:"transcript"`
	Title      string   `json:"title"`
	Narrative  string   `json:"narrative"`
	Figures    []string `json:"figures"`
	Locations  []string `json:"locations"`
	Emotions   []string `json:"emotions"`
	Themes     []string `json:"themes"`
	Symbols    []string `json:"symbols"`
}

// NewDreamRecord builds a record from a capture and its decomposition.
// The record never carries a deep analysis block at creation.
func NewDreamRecord(userID uuid.UUID, capture QueuedCapture, dec Decomposition, now time.Time) DreamRecord {
	return DreamRecord{
		ID:              uuid.New(),
		UserID:          userID,
		CaptureID:       capture.ID,
		Title:           strings.TrimSpace(dec.Title),
		RawTranscript:   dec.Transcript,
		Narrative:       strings.TrimSpace(dec.Narrative),
		Figures:         nonNil(dec.Figures),
		Locations:       nonNil(dec.Locations),
		Emotions:        nonNil(dec.Emotions),
		Themes:          nonNil(dec.Themes),
		Symbols:         nonNil(dec.Symbols),
		WordCount:       WordCount(dec.Transcript),
		UserContext:     capture.UserContext,
		RecordedAt:      capture.RecordedAt,
		DurationSeconds: capture.DurationSeconds,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// DreamUpdate is the payload of a deferred dream update. Nil fields are left
// unchanged; a non-nil DeepAnalysis replaces the whole block.
type DreamUpdate struct {
	ID           uuid.UUID     `json:"id"`
	Title        *string       `json:"title,omitempty"`
	Narrative    *string       `json:"narrative,omitempty"`
	UserContext  *string       `json:"user_context,omitempty"`
	DeepAnalysis *DeepAnalysis `json:"deep_analysis,omitempty"`
}

// EntityRef is the payload of a deferred delete.
type EntityRef struct {
	ID uuid.UUID `json:"id"`
}
