package discovery

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/FL1CKfps/Harmony-player/internal/core"
	herrors "github.com/FL1CKfps/Harmony-player/internal/errors"
	"github.com/FL1CKfps/Harmony-player/internal/lastfm"
	"github.com/FL1CKfps/Harmony-player/internal/youtube"
)

type fakeSongs struct {
	mu      sync.Mutex
	results map[string][]core.Track
	fail    map[string]bool
	queries []string
}

func (f *fakeSongs) Search(_ context.Context, q string) ([]core.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.fail[q] {
		return nil, errors.New("boom")
	}
	return f.results[q], nil
}

func (f *fakeSongs) ArtistImage(context.Context, string) (string, error) {
	return "https://img/artist.jpg", nil
}

type fakeVideos struct {
	popular []youtube.Video
	search  []youtube.Video
	err     error
}

func (f *fakeVideos) MostPopular(context.Context, int) ([]youtube.Video, error) {
	return f.popular, f.err
}

func (f *fakeVideos) Search(context.Context, string, int) ([]youtube.Video, error) {
	return f.search, f.err
}

type fakeScrobbler struct {
	similar []lastfm.Track
	tags    map[string][]lastfm.Track
}

func (f *fakeScrobbler) Similar(context.Context, string, string, int) ([]lastfm.Track, error) {
	return f.similar, nil
}

func (f *fakeScrobbler) TagTopTracks(_ context.Context, tag string, _ int) ([]lastfm.Track, error) {
	return f.tags[tag], nil
}

func tr(id, name, artist, lang string) core.Track {
	return core.Track{ID: id, Name: name, PrimaryArtists: artist, Language: lang, AudioURL: "https://a/" + id + ".mp3"}
}

func TestTrendingFromYouTube(t *testing.T) {
	songs := &fakeSongs{results: map[string][]core.Track{
		"Kesariya": {tr("k", "Kesariya", "Arijit Singh", "hindi")},
		"Heeriye":  {tr("h", "Heeriye", "Jasleen Royal", "hindi")},
	}}
	videos := &fakeVideos{popular: []youtube.Video{
		{Title: "Kesariya (Official Video)"},
		{Title: "Heeriye | Official Music Video"},
		{Title: "Unknown thing"},
		{Title: "Kesariya [4K]"},
	}}

	got, err := New(songs, videos, nil, nil).Trending(context.Background())
	if err != nil {
		t.Fatalf("Trending() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != "k" || got[1].ID != "h" {
		t.Errorf("Trending() = %v, want [k h] in video order, deduplicated", ids(got))
	}
}

func TestTrendingFallsBackToLastFM(t *testing.T) {
	songs := &fakeSongs{results: map[string][]core.Track{
		"Levitating Dua Lipa": {tr("l", "Levitating", "Dua Lipa", "english")},
	}}
	videos := &fakeVideos{err: errors.New("quota")}
	scrob := &fakeScrobbler{tags: map[string][]lastfm.Track{
		"pop": {{Name: "Levitating", Artist: "Dua Lipa"}},
	}}

	got, err := New(songs, videos, scrob, nil).Trending(context.Background())
	if err != nil {
		t.Fatalf("Trending() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "l" {
		t.Errorf("Trending() = %v, want [l]", ids(got))
	}
}

func TestTrendingWithoutSources(t *testing.T) {
	_, err := New(&fakeSongs{}, nil, nil, nil).Trending(context.Background())
	if !errors.Is(err, herrors.ErrSearchProvider) {
		t.Errorf("Trending() error = %v, want ErrSearchProvider", err)
	}
}

func TestSimilarCombinesSources(t *testing.T) {
	current := tr("k", "Kesariya", "Arijit Singh", "hindi")
	songs := &fakeSongs{results: map[string][]core.Track{
		"Arijit Singh": {
			current,
			tr("a1", "Channa Mereya", "Arijit Singh", "hindi"),
			tr("a2", "Tum Hi Ho", "Arijit Singh", "hindi"),
		},
		"Apna Bana Le": {
			tr("x", "Some English Song", "Other", "english"),
			tr("a3", "Apna Bana Le", "Arijit Singh", "hindi"),
		},
		"Apna Bana Le Arijit Singh": {tr("a3", "Apna Bana Le", "Arijit Singh", "hindi")},
		"Tum Hi Ho Arijit Singh":    {tr("a2", "Tum Hi Ho", "Arijit Singh", "hindi")},
	}}
	videos := &fakeVideos{search: []youtube.Video{{Title: "Apna Bana Le (Official Video)"}}}
	scrob := &fakeScrobbler{similar: []lastfm.Track{
		{Name: "Apna Bana Le", Artist: "Arijit Singh"},
		{Name: "Tum Hi Ho", Artist: "Arijit Singh"},
	}}

	got, err := New(songs, videos, scrob, nil).Similar(context.Background(), current)
	if err != nil {
		t.Fatalf("Similar() error = %v", err)
	}
	want := []string{"a1", "a2", "a3"}
	if strings.Join(ids(got), ",") != strings.Join(want, ",") {
		t.Errorf("Similar() = %v, want %v", ids(got), want)
	}
}

func TestSimilarFallsBackToSongSearch(t *testing.T) {
	current := tr("k", "Kesariya", "Arijit Singh", "hindi")
	songs := &fakeSongs{
		results: map[string][]core.Track{
			"Kesariya Arijit Singh": {current, tr("r", "Kesariya Rangu", "Arijit Singh", "kannada")},
		},
		fail: map[string]bool{"Arijit Singh": true},
	}

	got, err := New(songs, &fakeVideos{err: errors.New("403")}, nil, nil).Similar(context.Background(), current)
	if err != nil {
		t.Fatalf("Similar() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "r" {
		t.Errorf("Similar() = %v, want [r]", ids(got))
	}
}

func TestSimilarAllSourcesFail(t *testing.T) {
	current := tr("k", "Kesariya", "Arijit Singh", "hindi")
	songs := &fakeSongs{fail: map[string]bool{
		"Arijit Singh":          true,
		"Kesariya Arijit Singh": true,
	}}
	_, err := New(songs, nil, nil, nil).Similar(context.Background(), current)
	if !errors.Is(err, herrors.ErrSearchProvider) {
		t.Errorf("Similar() error = %v, want ErrSearchProvider", err)
	}
}

func TestSearchWrapsErrors(t *testing.T) {
	songs := &fakeSongs{fail: map[string]bool{"x": true}}
	_, err := New(songs, nil, nil, nil).Search(context.Background(), "x")
	if !errors.Is(err, herrors.ErrSearchProvider) {
		t.Errorf("Search() error = %v, want ErrSearchProvider", err)
	}
}

func ids(tracks []core.Track) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.ID
	}
	return out
}
