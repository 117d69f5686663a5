package store

import (
	"slices"

	"github.com/FL1CKfps/Harmony-player/internal/core"
)

// State is everything the store knows. Callers only ever see copies.
type State struct {
	// Tracks holds the latest search results.
	Tracks         []core.Track
	GlobalTrending []core.Track
	Suggestions    []core.Track

	CurrentTrack *core.Track
	Status       core.Status
	Playback     core.PlaybackState
	ArtistImage  string

	PriorityQueue []core.Track
	Queue         []core.Track
	History       []core.Track

	Context         *core.QueueContext
	CurrentPlaylist *core.Playlist
	Shuffled        bool
	Repeat          core.RepeatMode

	Playlists      []core.Playlist
	LikedSongs     []core.Track
	RecentlyPlayed []core.RecentTrack
	UserName       string
}

// Upcoming returns the queue pair as a core.Queue.
func (s *State) Upcoming() core.Queue {
	return core.Queue{Priority: s.PriorityQueue, Tracks: s.Queue}
}

// Clone returns a deep copy of s.
func (s *State) Clone() State {
	c := *s
	c.Tracks = slices.Clone(s.Tracks)
	c.GlobalTrending = slices.Clone(s.GlobalTrending)
	c.Suggestions = slices.Clone(s.Suggestions)
	c.PriorityQueue = slices.Clone(s.PriorityQueue)
	c.Queue = slices.Clone(s.Queue)
	c.History = slices.Clone(s.History)
	c.LikedSongs = slices.Clone(s.LikedSongs)
	c.RecentlyPlayed = slices.Clone(s.RecentlyPlayed)
	c.Playlists = clonePlaylists(s.Playlists)

	if s.CurrentTrack != nil {
		t := *s.CurrentTrack
		c.CurrentTrack = &t
	}
	if s.Context != nil {
		qc := *s.Context
		c.Context = &qc
	}
	if s.CurrentPlaylist != nil {
		p := clonePlaylist(*s.CurrentPlaylist)
		c.CurrentPlaylist = &p
	}
	return c
}

func clonePlaylist(p core.Playlist) core.Playlist {
	p.Tracks = slices.Clone(p.Tracks)
	return p
}

func clonePlaylists(ps []core.Playlist) []core.Playlist {
	if ps == nil {
		return nil
	}
	out := make([]core.Playlist, len(ps))
	for i, p := range ps {
		out[i] = clonePlaylist(p)
	}
	return out
}

// without returns a copy of tracks minus any track with the given ID.
func without(tracks []core.Track, id string) []core.Track {
	return slices.DeleteFunc(slices.Clone(tracks), func(t core.Track) bool {
		return t.ID == id
	})
}
