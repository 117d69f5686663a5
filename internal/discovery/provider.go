// Package discovery combines the song-search API with the YouTube and
// Last.fm discovery APIs into a single core.Provider.
package discovery

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/FL1CKfps/Harmony-player/internal/core"
	herrors "github.com/FL1CKfps/Harmony-player/internal/errors"
	"github.com/FL1CKfps/Harmony-player/internal/fuzzy"
	"github.com/FL1CKfps/Harmony-player/internal/lastfm"
	"github.com/FL1CKfps/Harmony-player/internal/logging"
	"github.com/FL1CKfps/Harmony-player/internal/youtube"
)

const (
	trendingVideos    = 20
	relatedVideos     = 15
	sameArtistLimit   = 5
	lastfmLimit       = 10
	fallbackLimit     = 10
	lookupConcurrency = 5
	// minTitleMatch is the title similarity a Last.fm pick needs to accept
	// a search hit.
	minTitleMatch = 0.6
)

// trendingTags seed trending when YouTube is unavailable.
var trendingTags = []string{"pop", "rock", "hip-hop", "electronic", "indie"}

// Songs is the song-search API.
type Songs interface {
	Search(ctx context.Context, query string) ([]core.Track, error)
	ArtistImage(ctx context.Context, artist string) (string, error)
}

// Videos is the video discovery API.
type Videos interface {
	MostPopular(ctx context.Context, max int) ([]youtube.Video, error)
	Search(ctx context.Context, query string, max int) ([]youtube.Video, error)
}

// Scrobbler is the listening-data API.
type Scrobbler interface {
	Similar(ctx context.Context, name, artist string, limit int) ([]lastfm.Track, error)
	TagTopTracks(ctx context.Context, tag string, limit int) ([]lastfm.Track, error)
}

// Provider implements core.Provider. Videos and Scrobbler are optional.
type Provider struct {
	songs     Songs
	videos    Videos
	scrobbler Scrobbler
	log       *zap.Logger
}

// New creates a provider. videos and scrobbler may be nil.
func New(songs Songs, videos Videos, scrobbler Scrobbler, log *zap.Logger) *Provider {
	return &Provider{songs: songs, videos: videos, scrobbler: scrobbler, log: logging.OrNop(log)}
}

// Search returns playable tracks matching query.
func (p *Provider) Search(ctx context.Context, query string) ([]core.Track, error) {
	tracks, err := p.songs.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", herrors.ErrSearchProvider, err)
	}
	return tracks, nil
}

// ArtistImage returns a portrait URL for artist, or "" when none is known.
func (p *Provider) ArtistImage(ctx context.Context, artist string) (string, error) {
	return p.songs.ArtistImage(ctx, artist)
}

// Trending maps the most popular music videos to songs. Without YouTube it
// samples Last.fm genre charts instead.
func (p *Provider) Trending(ctx context.Context) ([]core.Track, error) {
	if p.videos != nil {
		videos, err := p.videos.MostPopular(ctx, trendingVideos)
		if err == nil {
			queries := lo.Map(videos, func(v youtube.Video, _ int) string {
				return youtube.CleanTitle(v.Title)
			})
			return p.resolve(ctx, queries, nil), nil
		}
		p.log.Warn("youtube trending failed", zap.Error(err))
	}

	if p.scrobbler != nil {
		return p.tagTrending(ctx)
	}
	return nil, fmt.Errorf("%w: no trending source configured", herrors.ErrSearchProvider)
}

func (p *Provider) tagTrending(ctx context.Context) ([]core.Track, error) {
	perTag := trendingVideos / len(trendingTags)
	results := make([][]lastfm.Track, len(trendingTags))

	g, gctx := errgroup.WithContext(ctx)
	for i, tag := range trendingTags {
		g.Go(func() error {
			tracks, err := p.scrobbler.TagTopTracks(gctx, tag, perTag)
			if err != nil {
				p.log.Debug("tag chart failed", zap.String("tag", tag), zap.Error(err))
				return nil
			}
			results[i] = tracks
			return nil
		})
	}
	_ = g.Wait()

	queries := lo.Map(lo.Flatten(results), func(t lastfm.Track, _ int) string {
		return t.Name + " " + t.Artist
	})
	if len(queries) == 0 {
		return nil, fmt.Errorf("%w: no trending tracks", herrors.ErrSearchProvider)
	}
	return p.resolve(ctx, queries, nil), nil
}

// Similar returns songs related to track: more by the same artist, songs
// from related videos and Last.fm similar tracks. It fails only when every
// source fails.
func (p *Provider) Similar(ctx context.Context, track core.Track) ([]core.Track, error) {
	var (
		sameArtist, related, scrobbled []core.Track
		result                         herrors.PartialResult[[]core.Track]
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tracks, err := p.songs.Search(gctx, track.PrimaryArtists)
		if err != nil {
			return nil
		}
		sameArtist = lo.Slice(lo.Reject(tracks, func(t core.Track, _ int) bool {
			return t.ID == track.ID
		}), 0, sameArtistLimit)
		return nil
	})
	g.Go(func() error {
		related = p.related(gctx, track)
		return nil
	})
	if p.scrobbler != nil {
		g.Go(func() error {
			scrobbled = p.scrobbled(gctx, track)
			return nil
		})
	}
	_ = g.Wait()

	all := append(append(sameArtist, related...), scrobbled...)
	all = lo.UniqBy(lo.Reject(all, func(t core.Track, _ int) bool {
		return t.ID == track.ID
	}), func(t core.Track) string { return t.ID })

	if len(all) == 0 {
		result.AddError(fmt.Errorf("%w: no similar songs for %q", herrors.ErrSearchProvider, track.Name))
		return nil, result.Err()
	}
	return all, nil
}

// related finds songs through YouTube search results. Without YouTube, or
// when it fails, it falls back to a plain song search.
func (p *Provider) related(ctx context.Context, track core.Track) []core.Track {
	if p.videos != nil {
		query := strings.TrimSpace(track.Name + " " + track.Language + " music")
		videos, err := p.videos.Search(ctx, query, relatedVideos)
		if err == nil {
			queries := lo.Map(videos, func(v youtube.Video, _ int) string {
				return youtube.CleanTitle(v.Title)
			})
			return p.resolve(ctx, queries, func(c core.Track) bool {
				return (track.Language != "" && c.Language == track.Language) ||
					fuzzy.SameArtist(c.PrimaryArtists, track.PrimaryArtists)
			})
		}
		p.log.Warn("youtube search failed, falling back to song search", zap.Error(err))
	}

	tracks, err := p.songs.Search(ctx, track.Name+" "+track.PrimaryArtists)
	if err != nil {
		return nil
	}
	return lo.Slice(tracks, 0, fallbackLimit)
}

func (p *Provider) scrobbled(ctx context.Context, track core.Track) []core.Track {
	similar, err := p.scrobbler.Similar(ctx, track.Name, track.PrimaryArtist(), lastfmLimit)
	if err != nil {
		p.log.Debug("lastfm similar failed", zap.Error(err))
		return nil
	}

	queries := make([]string, 0, len(similar))
	titles := make(map[string]string, len(similar))
	for _, s := range similar {
		q := s.Name + " " + s.Artist
		queries = append(queries, q)
		titles[q] = s.Name
	}
	return p.resolveEach(ctx, queries, func(q string, c core.Track) bool {
		return fuzzy.Similarity(c.Name, titles[q]) >= minTitleMatch
	})
}

// resolve searches each query and keeps the first hit accepted by keep
// (the first hit at all when keep is nil). Order follows queries; failed
// lookups are skipped.
func (p *Provider) resolve(ctx context.Context, queries []string, keep func(core.Track) bool) []core.Track {
	return p.resolveEach(ctx, queries, func(_ string, t core.Track) bool {
		return keep == nil || keep(t)
	})
}

func (p *Provider) resolveEach(ctx context.Context, queries []string, keep func(string, core.Track) bool) []core.Track {
	found := make([]*core.Track, len(queries))
	var result herrors.PartialResult[[]core.Track]
	errs := make([]error, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)
	for i, q := range queries {
		if strings.TrimSpace(q) == "" {
			continue
		}
		g.Go(func() error {
			tracks, err := p.songs.Search(gctx, q)
			if err != nil {
				errs[i] = err
				return nil
			}
			if t, ok := lo.Find(tracks, func(t core.Track) bool { return keep(q, t) }); ok {
				found[i] = &t
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		result.AddError(err)
	}
	if result.HasErrors() {
		p.log.Debug("some lookups failed", zap.Int("failed", len(result.Errors)), zap.String("summary", result.ErrorSummary()))
	}

	result.Data = lo.UniqBy(lo.FilterMap(found, func(t *core.Track, _ int) (core.Track, bool) {
		if t == nil {
			return core.Track{}, false
		}
		return *t, true
	}), func(t core.Track) string { return t.ID })
	return result.Data
}
