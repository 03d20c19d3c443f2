package analysis

import "strings"

// DefaultSystemPrompt frames the model as an emotion analyst that answers in JSON.
const DefaultSystemPrompt = "You are an expert music psychologist. You read how a person describes " +
	"their mood and map it to emotional coordinates and musical characteristics. " +
	"Respond with a single JSON object and nothing else."

// BuildPrompt renders the user prompt for a mood description and optional context.
func BuildPrompt(text, moodContext string) string {
	var b strings.Builder
	b.WriteString("Analyze this mood description and provide detailed emotional analysis:\n\n")
	b.WriteString("Mood Description: \"")
	b.WriteString(text)
	b.WriteString("\"\n")

	if strings.TrimSpace(moodContext) != "" {
		b.WriteString("Context: ")
		b.WriteString(moodContext)
		b.WriteString("\n")
	}

	b.WriteString(`
Provide your analysis in this exact JSON format:
{
  "primary_emotions": ["emotion1", "emotion2"],
  "energy_level": 7,
  "arousal_level": 6,
  "valence": 8,
  "music_characteristics": {
    "tempo_range": "medium-fast",
    "recommended_genres": ["indie-pop", "electronic"],
    "instrumentation": "upbeat, electronic elements",
    "mood_tags": ["uplifting", "energetic"]
  },
  "insight": "Brief explanation of the mood analysis"
}

Remember:
- Energy level: 1 (very low energy) to 10 (very high energy)
- Arousal level: 1 (very calm) to 10 (very excited)
- Valence: 1 (very negative) to 10 (very positive)
- Use only the JSON format specified above
`)
	return b.String()
}
