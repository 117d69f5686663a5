// Package saavn is a client for the JioSaavn-compatible song search API.
package saavn

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/FL1CKfps/Harmony-player/internal/core"
	herrors "github.com/FL1CKfps/Harmony-player/internal/errors"
	"github.com/FL1CKfps/Harmony-player/internal/httpclient"
)

// DefaultBaseURL is the public saavn.dev API.
const DefaultBaseURL = "https://saavn.dev/api"

// Client is a song-search API client.
type Client struct {
	http *httpclient.Client
}

// New creates a client rooted at baseURL.
func New(baseURL string, opts ...httpclient.Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{http: httpclient.New("saavn", baseURL, opts...)}
}

// SearchSongs returns raw search results. An empty query returns nothing.
func (c *Client) SearchSongs(ctx context.Context, query string) ([]SongResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	var resp SearchResponse
	if err := c.http.Get(ctx, "/search/songs", map[string]string{"query": query}, &resp); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return resp.Data.Results, nil
}

// Search returns playable tracks for query.
func (c *Client) Search(ctx context.Context, query string) ([]core.Track, error) {
	results, err := c.SearchSongs(ctx, query)
	if err != nil {
		return nil, err
	}
	return ToTracks(results), nil
}

// First returns the best playable match for query.
func (c *Client) First(ctx context.Context, query string) (core.Track, bool, error) {
	tracks, err := c.Search(ctx, query)
	if err != nil || len(tracks) == 0 {
		return core.Track{}, false, err
	}
	return tracks[0], true, nil
}

// Song returns a single song by ID.
func (c *Client) Song(ctx context.Context, id string) (core.Track, error) {
	var resp SongsResponse
	if err := c.http.Get(ctx, "/songs/"+url.PathEscape(id), nil, &resp); err != nil {
		return core.Track{}, fmt.Errorf("song %s: %w", id, err)
	}
	if len(resp.Data) == 0 {
		return core.Track{}, fmt.Errorf("song %s: %w", id, herrors.ErrSearchProvider)
	}
	t, ok := ToTrack(resp.Data[0])
	if !ok {
		return core.Track{}, fmt.Errorf("song %s: %w", id, herrors.ErrNoAudio)
	}
	return t, nil
}

// Lyrics returns the lyrics for a song, with HTML line breaks expanded.
func (c *Client) Lyrics(ctx context.Context, id string) (string, error) {
	var resp LyricsResponse
	if err := c.http.Get(ctx, "/lyrics/"+url.PathEscape(id), nil, &resp); err != nil {
		return "", fmt.Errorf("lyrics %s: %w", id, err)
	}
	return strings.ReplaceAll(resp.Data.Lyrics, "<br>", "\n"), nil
}

// ArtistImage searches for the artist and returns the first credited
// artist's portrait. Empty when none is found.
func (c *Client) ArtistImage(ctx context.Context, artist string) (string, error) {
	results, err := c.SearchSongs(ctx, artist)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", nil
	}
	return artistImage(results[0]), nil
}
