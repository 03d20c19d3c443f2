package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/justestif/go-moodbeats/internal/mood"
)

// ErrNoJSON is returned when a model response contains no {...} block.
var ErrNoJSON = errors.New("no JSON object in response")

// fields is a decoded JSON object whose values are converted one at a time.
// A value of the wrong shape is treated as absent rather than failing the parse.
type fields map[string]json.RawMessage

func (f fields) text(key string) string {
	var t text
	if err := json.Unmarshal(f[key], &t); err != nil {
		return ""
	}
	return string(t)
}

func (f fields) list(key string) []string {
	var l textList
	if err := json.Unmarshal(f[key], &l); err != nil {
		return nil
	}
	return l
}

func (f fields) object(key string) fields {
	var sub fields
	if err := json.Unmarshal(f[key], &sub); err != nil {
		return nil
	}
	return sub
}

// Parse extracts and normalizes the analysis from a raw model response.
// Only a body that is not a JSON object is an error.
func Parse(raw string) (*Result, error) {
	body, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var resp fields
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, fmt.Errorf("decoding analysis: %w", err)
	}

	mc := resp.object("music_characteristics")
	return &Result{
		Emotions:          resp.list("primary_emotions"),
		Energy:            parseLevel(resp["energy_level"]),
		Arousal:           parseLevel(resp["arousal_level"]),
		Valence:           parseLevel(resp["valence"]),
		TempoRange:        mc.text("tempo_range"),
		RecommendedGenres: mc.list("recommended_genres"),
		Instrumentation:   mc.text("instrumentation"),
		MoodTags:          mc.list("mood_tags"),
		Insight:           resp.text("insight"),
		Raw:               raw,
	}, nil
}

// extractJSON returns the substring from the first '{' to the last '}' inclusive.
func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", ErrNoJSON
	}
	return s[start : end+1], nil
}

// parseLevel accepts JSON numbers and numeric strings, truncating fractions
// and clamping into range. Anything else (absent, null, bool, words) is nil.
func parseLevel(raw json.RawMessage) *int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		f, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}

	f = math.Max(math.MinInt32, math.Min(math.MaxInt32, math.Trunc(f)))
	return intPtr(mood.ClampLevel(int(f)))
}

// text decodes any JSON scalar as a string. Null decodes as "".
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = text(s)
		return nil
	}
	if len(data) > 0 && (data[0] == '{' || data[0] == '[') {
		return fmt.Errorf("expected scalar, got %s", data[:1])
	}
	*t = text(data)
	return nil
}

// textList decodes an array of scalars, or a single scalar, as []string.
// Empty strings and non-scalar elements are dropped.
type textList []string

func (l *textList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	var items []text
	if len(data) > 0 && data[0] == '[' {
		var elems []json.RawMessage
		if err := json.Unmarshal(data, &elems); err != nil {
			return err
		}
		for _, e := range elems {
			var it text
			if json.Unmarshal(e, &it) == nil {
				items = append(items, it)
			}
		}
	} else {
		var one text
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		items = []text{one}
	}

	out := make([]string, 0, len(items))
	for _, it := range items {
		if s := strings.TrimSpace(string(it)); s != "" {
			out = append(out, s)
		}
	}
	*l = out
	return nil
}
