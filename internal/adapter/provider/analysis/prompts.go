package analysis

import (
	"fmt"
	"strings"

	"github.com/heartmarshall/dreamjournal/internal/domain"
)

const structureSystemPrompt = `You turn spoken dream recordings into structured journal entries.
Output ONLY a valid JSON object, no markdown, no explanations.`

const deepSystemPrompt = `You are a dream analyst grounded in Jungian psychology.
Output ONLY a valid JSON object, no markdown, no explanations.`

const summarySystemPrompt = `You review a week of a person's dream journal.
Output ONLY a valid JSON object, no markdown, no explanations.`

func structurePrompt(transcript string, userContext *string) string {
	return fmt.Sprintf(`Transcript of a dream, as spoken right after waking:

%s
%s
Return this exact schema:
{
  "title": "<short evocative title, max 8 words>",
  "narrative": "<the dream retold as clean prose in the first person, without filler words>",
  "figures": ["<people or beings that appear>"],
  "locations": ["<places>"],
  "emotions": ["<emotions felt, lowercase single words>"],
  "themes": ["<recurring dream themes, lowercase>"],
  "symbols": ["<notable objects or images, lowercase>"]
}

Rules:
- Use empty arrays, never null
- Do not invent details that are not in the transcript`, transcript, contextBlock(userContext))
}

func deepPrompt(rec domain.DreamRecord) string {
	return fmt.Sprintf(`Dream narrative:
%s

Symbols: %s
Themes: %s
Figures: %s
Emotions: %s
%s
Return this exact schema:
{
  "interpretation": "<2-4 paragraphs>",
  "archetypes": ["<Jungian archetypes present, lowercase>"],
  "shadow_aspects": ["<repressed or disowned aspects the dream points at>"],
  "guidance": "<one practical reflection prompt for the dreamer>"
}`,
		rec.Narrative,
		list(rec.Symbols), list(rec.Themes), list(rec.Figures), list(rec.Emotions),
		contextBlock(rec.UserContext),
	)
}

func summaryPrompt(dreamsJSON string) string {
	return fmt.Sprintf(`Dreams recorded this week, oldest first:
%s

Return this exact schema:
{
  "dominant_emotions": ["<up to 3 emotions, lowercase>"],
  "trend": "<one of: rising, falling, stable, mixed>",
  "narrative": "<one paragraph describing the emotional arc of the week>",
  "insight": "<one or two sentences the dreamer can reflect on>"
}`, dreamsJSON)
}

func contextBlock(userContext *string) string {
	if userContext == nil || strings.TrimSpace(*userContext) == "" {
		return ""
	}
	return fmt.Sprintf("\nWhat the dreamer says is going on in their life:\n%s\n", *userContext)
}

func list(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
