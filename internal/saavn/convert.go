package saavn

import (
	"strings"

	"github.com/FL1CKfps/Harmony-player/internal/core"
)

// PlaceholderImage is used when a song has no artwork.
const PlaceholderImage = "https://placehold.co/400x400?text=No+Image"

const (
	preferredImage = "500x500"
	preferredAudio = "320kbps"
)

// ToTrack converts a search result to a core.Track. ok is false when the
// song has no stream URL; such songs are never surfaced.
func ToTrack(s SongResult) (core.Track, bool) {
	audio := pick(s.DownloadURL, preferredAudio)
	if audio == "" || s.ID == "" {
		return core.Track{}, false
	}

	art := pick(s.Image, preferredImage)
	if art == "" {
		art = PlaceholderImage
	}

	return core.Track{
		ID:              s.ID,
		Name:            s.Name,
		PrimaryArtists:  artistNames(s),
		DurationSeconds: float64(s.Duration),
		AlbumArtURL:     cdnURL(art),
		AudioURL:        audio,
		Album:           s.Album.Name,
		Language:        s.Language,
		ArtistImageURL:  artistImage(s),
	}, true
}

// ToTracks converts results, dropping unplayable ones.
func ToTracks(results []SongResult) []core.Track {
	tracks := make([]core.Track, 0, len(results))
	for _, r := range results {
		if t, ok := ToTrack(r); ok {
			tracks = append(tracks, t)
		}
	}
	return tracks
}

func artistNames(s SongResult) string {
	if s.PrimaryArtists != "" {
		return string(s.PrimaryArtists)
	}
	if len(s.Artists.Primary) > 0 {
		names := make([]string, 0, len(s.Artists.Primary))
		for _, a := range s.Artists.Primary {
			names = append(names, a.Name)
		}
		return strings.Join(names, ", ")
	}
	return "Unknown Artist"
}

func artistImage(s SongResult) string {
	if len(s.Artists.Primary) == 0 {
		return ""
	}
	if u := pick(s.Artists.Primary[0].Image, preferredImage); u != "" {
		return cdnURL(u)
	}
	return ""
}

// pick returns the URL with the wanted quality, else the last entry.
func pick(links []Link, quality string) string {
	if len(links) == 0 {
		return ""
	}
	for _, l := range links {
		if l.Quality == quality && l.URL != "" {
			return l.URL
		}
	}
	return links[len(links)-1].URL
}

// cdnURL rewrites the thumbnail CDN host to the one serving full images.
func cdnURL(u string) string {
	return strings.Replace(u, "ts.saavncdn.com", "c.saavncdn.com", 1)
}
