// Package playlist models an ordered, user-owned list of songs.
//
// A Playlist owns its entries; entries refer to songs by ID only. Positions
// are 1-based and contiguous after every operation. All operations return a
// new Playlist and leave the receiver untouched.
package playlist

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/justestif/go-moodbeats/internal/mood"
)

// MaxNameLength is the longest accepted playlist name, in characters.
const MaxNameLength = 255

var (
	// ErrDuplicateSong is returned when a song is already in the playlist.
	ErrDuplicateSong = errors.New("song already in playlist")

	// ErrInvalidPosition is returned for a position outside [1, len+1].
	ErrInvalidPosition = errors.New("invalid playlist position")

	// ErrSongNotInPlaylist is returned when removing a song the playlist lacks.
	ErrSongNotInPlaylist = errors.New("song not in playlist")
)

// Entry places one song at one position.
type Entry struct {
	SongID   int64
	Position int
	AddedAt  time.Time
}

// Playlist is an ordered collection of songs owned by a user.
type Playlist struct {
	ID          uuid.UUID
	UserID      int64
	AnalysisID  *uuid.UUID // set when built from a mood analysis
	Name        string
	Description string
	Public      bool
	Entries     []Entry
	CreatedAt   time.Time
}

// New creates an empty playlist with a fresh ID.
func New(userID int64, name, description string) (Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Playlist{}, mood.InvalidArgument("playlist name", "must not be empty")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return Playlist{}, mood.InvalidArgument("playlist name", "must be at most 255 characters")
	}
	return Playlist{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Len returns the number of songs.
func (p Playlist) Len() int {
	return len(p.Entries)
}

// Contains reports whether songID is in the playlist.
func (p Playlist) Contains(songID int64) bool {
	return slices.ContainsFunc(p.Entries, func(e Entry) bool { return e.SongID == songID })
}

// SongIDs returns song IDs in position order.
func (p Playlist) SongIDs() []int64 {
	ids := make([]int64, len(p.Entries))
	for i, e := range p.Sorted().Entries {
		ids[i] = e.SongID
	}
	return ids
}

// Append adds songID at the end.
func (p Playlist) Append(songID int64) (Playlist, error) {
	return p.InsertAt(songID, p.Len()+1)
}

// InsertAt places songID at position, shifting later entries down by one.
// Valid positions are 1 through Len()+1.
func (p Playlist) InsertAt(songID int64, position int) (Playlist, error) {
	if p.Contains(songID) {
		return p, fmt.Errorf("song %d: %w", songID, ErrDuplicateSong)
	}
	if position < 1 || position > p.Len()+1 {
		return p, fmt.Errorf("position %d of %d: %w", position, p.Len()+1, ErrInvalidPosition)
	}

	out := p.Sorted()
	entry := Entry{SongID: songID, Position: position, AddedAt: time.Now().UTC()}
	out.Entries = slices.Insert(out.Entries, position-1, entry)
	return out.Renumber(), nil
}

// Remove drops songID and closes the gap.
func (p Playlist) Remove(songID int64) (Playlist, error) {
	out := p.Sorted()
	i := slices.IndexFunc(out.Entries, func(e Entry) bool { return e.SongID == songID })
	if i < 0 {
		return p, fmt.Errorf("song %d: %w", songID, ErrSongNotInPlaylist)
	}
	out.Entries = slices.Delete(out.Entries, i, i+1)
	return out.Renumber(), nil
}

// Sorted returns a copy with entries in position order.
func (p Playlist) Sorted() Playlist {
	p.Entries = slices.Clone(p.Entries)
	slices.SortStableFunc(p.Entries, func(a, b Entry) int { return a.Position - b.Position })
	return p
}

// Renumber returns a copy with positions reset to 1..n in the current order.
func (p Playlist) Renumber() Playlist {
	p.Entries = slices.Clone(p.Entries)
	for i := range p.Entries {
		p.Entries[i].Position = i + 1
	}
	return p
}

// MoodTitle is "Mood: <description>" with the description cut to 50
// characters, or the playlist name when description is empty.
func (p Playlist) MoodTitle(description string) string {
	description = strings.TrimSpace(description)
	if description == "" {
		return p.Name
	}
	if utf8.RuneCountInString(description) > 50 {
		description = string([]rune(description)[:47]) + "..."
	}
	return "Mood: " + description
}

// TotalDurationMs sums the known durations of songs.
func TotalDurationMs(songs []mood.Song) int64 {
	var total int64
	for _, s := range songs {
		if s.DurationMs != nil {
			total += *s.DurationMs
		}
	}
	return total
}

// FormatDuration renders ms as m:ss, or h:mm:ss from one hour up.
func FormatDuration(ms int64) string {
	seconds := ms / 1000
	minutes := seconds / 60
	seconds %= 60
	if minutes >= 60 {
		return fmt.Sprintf("%d:%02d:%02d", minutes/60, minutes%60, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
