// Package youtube reads trending and related music video titles from the
// YouTube Data API. Titles are only used as song-search queries.
package youtube

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/FL1CKfps/Harmony-player/internal/httpclient"
)

// DefaultBaseURL is the YouTube Data API v3 root.
const DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

// musicCategory is the YouTube video category for music.
const musicCategory = "10"

// Video is a video returned by the list and search endpoints.
type Video struct {
	ID    string
	Title string
}

type listResponse struct {
	Items []struct {
		ID      any `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
		} `json:"snippet"`
	} `json:"items"`
}

// Client is a YouTube Data API client.
type Client struct {
	http   *httpclient.Client
	region string
}

// New creates a client. region defaults to "IN".
func New(baseURL, apiKey, region string, opts ...httpclient.Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if region == "" {
		region = "IN"
	}
	opts = append([]httpclient.Option{httpclient.WithDefaultParam("key", apiKey)}, opts...)
	return &Client{
		http:   httpclient.New("youtube", baseURL, opts...),
		region: region,
	}
}

// MostPopular returns the current most popular music videos.
func (c *Client) MostPopular(ctx context.Context, max int) ([]Video, error) {
	var resp listResponse
	err := c.http.Get(ctx, "/videos", map[string]string{
		"part":            "snippet",
		"chart":           "mostPopular",
		"videoCategoryId": musicCategory,
		"regionCode":      c.region,
		"maxResults":      strconv.Itoa(max),
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("most popular: %w", err)
	}
	return resp.videos(), nil
}

// Search returns music videos matching query.
func (c *Client) Search(ctx context.Context, query string, max int) ([]Video, error) {
	var resp listResponse
	err := c.http.Get(ctx, "/search", map[string]string{
		"part":            "snippet",
		"type":            "video",
		"videoCategoryId": musicCategory,
		"q":               query,
		"maxResults":      strconv.Itoa(max),
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return resp.videos(), nil
}

func (r *listResponse) videos() []Video {
	out := make([]Video, 0, len(r.Items))
	for _, item := range r.Items {
		v := Video{Title: item.Snippet.Title}
		// /videos returns a string id, /search an object with videoId.
		switch id := item.ID.(type) {
		case string:
			v.ID = id
		case map[string]any:
			v.ID, _ = id["videoId"].(string)
		}
		out = append(out, v)
	}
	return out
}

var titleCleaners = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?i)\(Official.*?\)`), ""},
	{regexp.MustCompile(`\[.*?\]`), ""},
	{regexp.MustCompile(`(?i)ft\.|feat\.`), ""},
	{regexp.MustCompile(`\|.*$`), ""},
	{regexp.MustCompile(`(?i)Official (Music )?Video`), ""},
	{regexp.MustCompile(`(?i)Audio`), ""},
	{regexp.MustCompile(`(?i)Lyrics`), ""},
	{regexp.MustCompile(`\s+`), " "},
}

// CleanTitle strips video decorations so the title works as a song query.
func CleanTitle(title string) string {
	for _, c := range titleCleaners {
		title = c.re.ReplaceAllString(title, c.repl)
	}
	return strings.TrimSpace(title)
}
