package mood

import (
	"errors"
	"math"
	"testing"
)

const tolerance = 1e-9

func mustRange(t *testing.T, lo, hi int) Range {
	t.Helper()
	r, err := NewRange(lo, hi)
	if err != nil {
		t.Fatalf("NewRange(%d, %d): %v", lo, hi, err)
	}
	return r
}

func song(title string, energy, arousal, valence int) Song {
	return Song{Title: title, Artist: "Test Artist", Mood: NewVector(energy, arousal, valence)}
}

func TestNewRange(t *testing.T) {
	tests := []struct {
		name    string
		lo, hi  int
		wantErr bool
	}{
		{name: "full range", lo: 1, hi: 10},
		{name: "single point", lo: 4, hi: 4},
		{name: "min above max", lo: 7, hi: 3, wantErr: true},
		{name: "min below 1", lo: 0, hi: 3, wantErr: true},
		{name: "max above 10", lo: 5, hi: 11, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRange(tt.lo, tt.hi)
			if tt.wantErr {
				if !errors.Is(err, ErrOutOfRange) {
					t.Errorf("NewRange() error = %v, want ErrOutOfRange", err)
				}
				return
			}
			if err != nil {
				t.Errorf("NewRange() unexpected error: %v", err)
			}
		})
	}
}

func TestNewGenreValidation(t *testing.T) {
	full := FullRange()
	if _, err := NewGenre("  ", full, full, full); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("blank name error = %v, want ErrInvalidArgument", err)
	}
	if _, err := NewGenre("rock", full, Range{}, full); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("zero range error = %v, want ErrOutOfRange", err)
	}
	g, err := NewGenre(" rock ", full, full, full)
	if err != nil {
		t.Fatalf("NewGenre() unexpected error: %v", err)
	}
	if g.Name != "rock" {
		t.Errorf("Name = %q, want trimmed %q", g.Name, "rock")
	}
}

func TestGenreCompatibilityScore(t *testing.T) {
	tests := []struct {
		name                   string
		energy, valence, arous Range
		mood                   Vector
		want                   float64
	}{
		{
			name:   "mood at every midpoint",
			energy: Range{Min: 6, Max: 8}, valence: Range{Min: 4, Max: 6}, arous: Range{Min: 2, Max: 4},
			mood: NewVector(7, 3, 5),
			want: 1.0,
		},
		{
			name:   "half-level midpoints",
			energy: Range{Min: 1, Max: 10}, valence: Range{Min: 1, Max: 10}, arous: Range{Min: 1, Max: 10},
			mood: NewVector(5, 5, 5),
			want: 0.95,
		},
		{
			name:   "extreme mismatch stays positive",
			energy: Range{Min: 1, Max: 1}, valence: Range{Min: 1, Max: 1}, arous: Range{Min: 1, Max: 1},
			mood: NewVector(10, 10, 10),
			want: 0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Genre{Name: "g", Energy: tt.energy, Valence: tt.valence, Arousal: tt.arous}
			got := g.CompatibilityScore(tt.mood)
			if math.Abs(got-tt.want) > tolerance {
				t.Errorf("CompatibilityScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenreIsCompatibleIsContainment(t *testing.T) {
	g := Genre{
		Name:    "ambient",
		Energy:  mustRange(t, 1, 4),
		Valence: mustRange(t, 3, 7),
		Arousal: mustRange(t, 1, 3),
	}

	if !g.IsCompatible(NewVector(4, 1, 3)) {
		t.Error("mood on range bounds should be compatible")
	}
	if g.IsCompatible(NewVector(5, 2, 5)) {
		t.Error("energy outside range should not be compatible")
	}
	// Close enough to score well, but outside the arousal range.
	near := NewVector(3, 4, 5)
	if g.IsCompatible(near) {
		t.Error("arousal outside range should not be compatible")
	}
	if g.CompatibilityScore(near) < 0.9 {
		t.Errorf("CompatibilityScore(%v) = %v, expected a high score despite incompatibility", near, g.CompatibilityScore(near))
	}
}

func TestSongMatchScore(t *testing.T) {
	tests := []struct {
		name   string
		song   Song
		mood   Vector
		want   float64
		compat bool
	}{
		{
			name:   "identical vectors score exactly 1",
			song:   song("same", 8, 6, 7),
			mood:   NewVector(8, 6, 7),
			want:   1.0,
			compat: true,
		},
		{
			name:   "far apart",
			song:   song("far", 2, 2, 2),
			mood:   NewVector(9, 9, 9),
			want:   0.3,
			compat: false,
		},
		{
			name:   "energy and valence dominate",
			song:   song("weighted", 5, 1, 5),
			mood:   NewVector(5, 10, 5),
			want:   0.4 + 0.4 + 0.2*0.1,
			compat: true,
		},
		{
			name:   "maximum distance on every axis",
			song:   song("opposite", 1, 1, 1),
			mood:   NewVector(10, 10, 10),
			want:   0.1,
			compat: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.song.MatchScore(tt.mood)
			if math.Abs(got-tt.want) > tolerance {
				t.Errorf("MatchScore() = %v, want %v", got, tt.want)
			}
			if c := tt.song.IsCompatible(tt.mood); c != tt.compat {
				t.Errorf("IsCompatible() = %v, want %v", c, tt.compat)
			}
		})
	}
}

func TestSongMatchScoreIdentityIsExact(t *testing.T) {
	for e := MinLevel; e <= MaxLevel; e++ {
		for a := MinLevel; a <= MaxLevel; a++ {
			for v := MinLevel; v <= MaxLevel; v++ {
				m := NewVector(e, a, v)
				if got := song("s", e, a, v).MatchScore(m); got != 1.0 {
					t.Fatalf("MatchScore(%v, %v) = %v, want exactly 1.0", m, m, got)
				}
			}
		}
	}
}

func TestScoresStayInUnitInterval(t *testing.T) {
	genres := []Genre{
		{Name: "low", Energy: Range{1, 1}, Valence: Range{1, 2}, Arousal: Range{1, 3}},
		{Name: "high", Energy: Range{9, 10}, Valence: Range{10, 10}, Arousal: Range{8, 10}},
		{Name: "wide", Energy: FullRange(), Valence: FullRange(), Arousal: FullRange()},
	}
	songs := []Song{song("a", 1, 1, 1), song("b", 10, 10, 10), song("c", 5, 9, 2)}

	for e := MinLevel; e <= MaxLevel; e++ {
		for a := MinLevel; a <= MaxLevel; a++ {
			for v := MinLevel; v <= MaxLevel; v++ {
				m := NewVector(e, a, v)
				for _, g := range genres {
					if s := g.CompatibilityScore(m); s < 0 || s > 1 {
						t.Fatalf("genre %s score %v out of [0,1] for %v", g.Name, s, m)
					}
				}
				for _, sg := range songs {
					if s := sg.MatchScore(m); s < 0 || s > 1 {
						t.Fatalf("song %s score %v out of [0,1] for %v", sg.Title, s, m)
					}
				}
			}
		}
	}
}

func TestSongValidate(t *testing.T) {
	tempo := 128
	slow := 40
	dur := int64(215000)
	short := int64(500)

	tests := []struct {
		name    string
		song    Song
		wantErr error
	}{
		{name: "valid", song: Song{Title: "t", Artist: "a", Mood: Neutral(), TempoBPM: &tempo, DurationMs: &dur}},
		{name: "missing title", song: Song{Artist: "a", Mood: Neutral()}, wantErr: ErrInvalidArgument},
		{name: "zero mood", song: Song{Title: "t", Artist: "a"}, wantErr: ErrOutOfRange},
		{name: "tempo too slow", song: Song{Title: "t", Artist: "a", Mood: Neutral(), TempoBPM: &slow}, wantErr: ErrOutOfRange},
		{name: "duration too short", song: Song{Title: "t", Artist: "a", Mood: Neutral(), DurationMs: &short}, wantErr: ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.song.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFormattedDuration(t *testing.T) {
	d := int64(215000)
	if got := (Song{DurationMs: &d}).FormattedDuration(); got != "3:35" {
		t.Errorf("FormattedDuration() = %q, want %q", got, "3:35")
	}
	if got := (Song{}).FormattedDuration(); got != "Unknown" {
		t.Errorf("FormattedDuration() = %q, want %q", got, "Unknown")
	}
}

func TestIsFastTempo(t *testing.T) {
	tempo := func(bpm int) *int { return &bpm }
	tests := []struct {
		name string
		bpm  *int
		want bool
	}{
		{"unknown", nil, false},
		{"slow", tempo(90), false},
		{"boundary", tempo(120), true},
		{"fast", tempo(174), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Song{TempoBPM: tt.bpm}).IsFastTempo(); got != tt.want {
				t.Errorf("IsFastTempo() = %v, want %v", got, tt.want)
			}
		})
	}
}
