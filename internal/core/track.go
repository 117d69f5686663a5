package core

import (
	"strings"
	"time"
)

// ReservedPlaylistName is the name held by the dedicated liked-songs list.
const ReservedPlaylistName = "liked songs"

// Track represents a playable audio track.
// Two tracks with the same ID are the same track even if other fields differ.
type Track struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	PrimaryArtists  string  `json:"primaryArtists"`
	DurationSeconds float64 `json:"duration"`
	AlbumArtURL     string  `json:"albumArt"`
	AudioURL        string  `json:"audioUrl"`
	Album           string  `json:"album,omitempty"`
	Language        string  `json:"language,omitempty"`
	ArtistImageURL  string  `json:"artistImage,omitempty"`
}

// Same reports whether t and other share an identity.
func (t Track) Same(other Track) bool {
	return t.ID == other.ID
}

// Playable returns true if the track has a resolvable audio URL.
func (t Track) Playable() bool {
	return strings.TrimSpace(t.AudioURL) != ""
}

// PrimaryArtist returns the first artist of the display string.
func (t Track) PrimaryArtist() string {
	first, _, _ := strings.Cut(t.PrimaryArtists, ",")
	return strings.TrimSpace(first)
}

// Playlist is a user-owned, ordered list of tracks.
type Playlist struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CoverArtURL string    `json:"coverArt"`
	Tracks      []Track   `json:"tracks"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Contains returns true if the playlist holds a track with the given ID.
func (p *Playlist) Contains(id string) bool {
	return p != nil && IndexOf(p.Tracks, id) >= 0
}

// IsReservedName reports whether name collides with the liked-songs list.
func IsReservedName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), ReservedPlaylistName)
}

// RecentTrack is a recently played track stamped with its play time.
type RecentTrack struct {
	Track
	PlayedAt time.Time `json:"playedAt"`
}

// IndexOf returns the position of the track with the given ID, or -1.
func IndexOf(tracks []Track, id string) int {
	for i := range tracks {
		if tracks[i].ID == id {
			return i
		}
	}
	return -1
}

// ContainsTrack returns true if tracks holds a track with the given ID.
func ContainsTrack(tracks []Track, id string) bool {
	return IndexOf(tracks, id) >= 0
}
