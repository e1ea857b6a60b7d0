package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/heartmarshall/dreamjournal/internal/domain"
	"github.com/heartmarshall/dreamjournal/internal/metrics"
)

// Call labels used for metrics and error ops.
const (
	callTranscribe = "transcribe"
	callStructure  = "structure"
	callDeep       = "deep_analyze"
	callSummary    = "summarize_week"
)

// Analyze transcribes the recording and decomposes the transcript into a
// structured dream. fileName is sent as the upload name; the transcription
// service infers the format from its extension. Every failure is an
// *domain.AnalysisError.
func (c *Client) Analyze(ctx context.Context, audio io.Reader, fileName string, userContext *string) (domain.Decomposition, error) {
	transcript, err := c.transcribe(ctx, audio, fileName)
	if err != nil {
		return domain.Decomposition{}, err
	}
	if strings.TrimSpace(transcript) == "" {
		return domain.Decomposition{}, permanent(callTranscribe, fmt.Errorf("empty transcript"))
	}

	var dec domain.Decomposition
	if err := c.complete(ctx, callStructure, c.cfg.StructureModel, structureSystemPrompt,
		structurePrompt(transcript, userContext), &dec); err != nil {
		return domain.Decomposition{}, err
	}
	dec.Transcript = transcript

	if strings.TrimSpace(dec.Narrative) == "" {
		return domain.Decomposition{}, permanent(callStructure, fmt.Errorf("response has no narrative"))
	}

	c.log.InfoContext(ctx, "dream analyzed",
		slog.Int("words", domain.WordCount(transcript)),
		slog.Int("themes", len(dec.Themes)),
		slog.Int("symbols", len(dec.Symbols)),
	)
	return dec, nil
}

func (c *Client) transcribe(ctx context.Context, audio io.Reader, fileName string) (string, error) {
	start := time.Now()
	resp, err := c.whisper.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.cfg.TranscriptionModel,
		Reader:   audio,
		FilePath: fileName,
	})
	metrics.AnalysisDuration.WithLabelValues(callTranscribe).Observe(time.Since(start).Seconds())
	if err != nil {
		return "", classify(callTranscribe, err)
	}
	return resp.Text, nil
}

// DeepAnalyze interprets a structured dream from its narrative, symbols,
// themes, figures, emotions and the optional user context. AnalyzedAt is
// left for the caller to set.
func (c *Client) DeepAnalyze(ctx context.Context, rec domain.DreamRecord) (domain.DeepAnalysis, error) {
	var out domain.DeepAnalysis
	if err := c.complete(ctx, callDeep, c.cfg.DeepModel, deepSystemPrompt, deepPrompt(rec), &out); err != nil {
		return domain.DeepAnalysis{}, err
	}
	if strings.TrimSpace(out.Interpretation) == "" {
		return domain.DeepAnalysis{}, permanent(callDeep, fmt.Errorf("response has no interpretation"))
	}
	return out, nil
}

// SummarizeWeek describes the emotional arc of a week of dreams.
func (c *Client) SummarizeWeek(ctx context.Context, dreams []domain.DreamRecord) (domain.WeekSummary, error) {
	type dreamDigest struct {
		RecordedAt string   `json:"recorded_at"`
		Title      string   `json:"title"`
		Narrative  string   `json:"narrative"`
		Emotions   []string `json:"emotions"`
		Themes     []string `json:"themes"`
	}

	digest := make([]dreamDigest, len(dreams))
	for i, d := range dreams {
		digest[i] = dreamDigest{
			RecordedAt: d.RecordedAt.Format(time.RFC3339),
			Title:      d.Title,
			Narrative:  d.Narrative,
			Emotions:   d.Emotions,
			Themes:     d.Themes,
		}
	}
	body, err := json.MarshalIndent(digest, "", "  ")
	if err != nil {
		return domain.WeekSummary{}, fmt.Errorf("analysis.SummarizeWeek: %w", err)
	}

	var out domain.WeekSummary
	if err := c.complete(ctx, callSummary, c.cfg.StructureModel, summarySystemPrompt, summaryPrompt(string(body)), &out); err != nil {
		return domain.WeekSummary{}, err
	}
	return out, nil
}
