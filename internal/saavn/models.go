package saavn

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Link is a quality-tagged URL (image or stream).
type Link struct {
	Quality string `json:"quality"`
	URL     string `json:"url"`
}

// Artist is an artist credit on a song.
type Artist struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Image []Link `json:"image"`
}

// Album is the album a song belongs to.
type Album struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// SongResult is a song as returned by the search and song endpoints.
type SongResult struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	PrimaryArtists ArtistNames  `json:"primaryArtists"`
	Artists        struct {
		Primary []Artist `json:"primary"`
	} `json:"artists"`
	Duration    Seconds `json:"duration"`
	Image       []Link  `json:"image"`
	DownloadURL []Link  `json:"downloadUrl"`
	Album       Album   `json:"album"`
	Language    string  `json:"language"`
}

// SearchResponse is the envelope of /search/songs.
type SearchResponse struct {
	Status  string `json:"status"`
	Success bool   `json:"success"`
	Data    struct {
		Total   int          `json:"total"`
		Results []SongResult `json:"results"`
	} `json:"data"`
}

// SongsResponse is the envelope of /songs/{id}.
type SongsResponse struct {
	Data []SongResult `json:"data"`
}

// LyricsResponse is the envelope of /lyrics/{id}.
type LyricsResponse struct {
	Data struct {
		Lyrics    string `json:"lyrics"`
		Copyright string `json:"copyright"`
	} `json:"data"`
}

// ArtistNames decodes primaryArtists, which is either a comma-joined
// string or an array of names.
type ArtistNames string

func (a *ArtistNames) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = ArtistNames(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*a = ArtistNames(strings.Join(list, ", "))
		return nil
	}
	// Unknown shapes are treated as missing.
	*a = ""
	return nil
}

// Seconds decodes a duration sent as either a number or a numeric string.
type Seconds float64

func (s *Seconds) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		*s = 0
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 {
		*s = 0
		return nil
	}
	*s = Seconds(f)
	return nil
}
