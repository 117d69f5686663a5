// Package lastfm queries Last.fm for similar tracks and artist top tracks.
package lastfm

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/FL1CKfps/Harmony-player/internal/httpclient"
	"github.com/FL1CKfps/Harmony-player/internal/logging"
)

// DefaultBaseURL is the Last.fm web service root.
const DefaultBaseURL = "https://ws.audioscrobbler.com/2.0"

// Track is a Last.fm track reference.
type Track struct {
	Name   string
	Artist string
}

type rawTrack struct {
	Name   string `json:"name"`
	Artist struct {
		Name string `json:"name"`
	} `json:"artist"`
}

type errorEnvelope struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}

// Client is a Last.fm API client.
type Client struct {
	http *httpclient.Client
	log  *zap.Logger
}

// New creates a client authenticated with apiKey.
func New(baseURL, apiKey string, log *zap.Logger, opts ...httpclient.Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	opts = append([]httpclient.Option{
		httpclient.WithDefaultParam("api_key", apiKey),
		httpclient.WithDefaultParam("format", "json"),
	}, opts...)
	return &Client{
		http: httpclient.New("lastfm", baseURL, opts...),
		log:  logging.OrNop(log),
	}
}

// Similar returns tracks similar to name by artist. When Last.fm has no
// similarity data it falls back to the artist's top tracks.
func (c *Client) Similar(ctx context.Context, name, artist string, limit int) ([]Track, error) {
	var resp struct {
		errorEnvelope
		SimilarTracks struct {
			Track []rawTrack `json:"track"`
		} `json:"similartracks"`
	}
	err := c.http.Get(ctx, "/", map[string]string{
		"method": "track.getSimilar",
		"track":  name,
		"artist": artist,
		"limit":  strconv.Itoa(limit),
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("similar to %q: %w", name, err)
	}
	if resp.Error != 0 || len(resp.SimilarTracks.Track) == 0 {
		c.log.Debug("no similar tracks, falling back to top tracks",
			zap.String("track", name), zap.String("artist", artist), zap.String("message", resp.Message))
		return c.TopTracks(ctx, artist, limit)
	}
	return convert(resp.SimilarTracks.Track), nil
}

// TopTracks returns an artist's most played tracks.
func (c *Client) TopTracks(ctx context.Context, artist string, limit int) ([]Track, error) {
	var resp struct {
		errorEnvelope
		TopTracks struct {
			Track []rawTrack `json:"track"`
		} `json:"toptracks"`
	}
	err := c.http.Get(ctx, "/", map[string]string{
		"method": "artist.getTopTracks",
		"artist": artist,
		"limit":  strconv.Itoa(limit),
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("top tracks of %q: %w", artist, err)
	}
	if resp.Error != 0 {
		return nil, fmt.Errorf("top tracks of %q: lastfm error %d: %s", artist, resp.Error, resp.Message)
	}
	return convert(resp.TopTracks.Track), nil
}

// TagTopTracks returns the most played tracks for a genre tag.
func (c *Client) TagTopTracks(ctx context.Context, tag string, limit int) ([]Track, error) {
	var resp struct {
		errorEnvelope
		Tracks struct {
			Track []rawTrack `json:"track"`
		} `json:"tracks"`
	}
	err := c.http.Get(ctx, "/", map[string]string{
		"method": "tag.getTopTracks",
		"tag":    tag,
		"limit":  strconv.Itoa(limit),
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("top tracks for tag %q: %w", tag, err)
	}
	if resp.Error != 0 {
		return nil, fmt.Errorf("top tracks for tag %q: lastfm error %d: %s", tag, resp.Error, resp.Message)
	}
	return convert(resp.Tracks.Track), nil
}

func convert(raw []rawTrack) []Track {
	out := make([]Track, 0, len(raw))
	for _, r := range raw {
		if r.Name == "" {
			continue
		}
		out = append(out, Track{Name: r.Name, Artist: r.Artist.Name})
	}
	return out
}
