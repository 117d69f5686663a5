package store

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/FL1CKfps/Harmony-player/internal/core"
	herrors "github.com/FL1CKfps/Harmony-player/internal/errors"
	"github.com/FL1CKfps/Harmony-player/internal/kv"
)

const (
	// DefaultCoverArt is the cover of a new playlist.
	DefaultCoverArt = "https://images.unsplash.com/photo-1611339555312-e607c8352fd7?w=300"

	recentlyPlayedLimit = 50
)

// Search looks up tracks and keeps them as the current results.
func (s *Store) Search(ctx context.Context, query string) ([]core.Track, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	tracks, err := s.provider.Search(ctx, query)
	if err != nil {
		s.notify(core.NotifyError, "Failed to search tracks")
		return nil, err
	}
	tracks = playable(tracks)

	s.mu.Lock()
	s.st.Tracks = slices.Clone(tracks)
	s.mu.Unlock()
	return tracks, nil
}

// Playlists returns a copy of every playlist.
func (s *Store) Playlists() []core.Playlist {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePlaylists(s.st.Playlists)
}

// Playlist returns the playlist with the given id.
func (s *Store) Playlist(id string) (core.Playlist, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.playlistIndexLocked(id)
	if i < 0 {
		return core.Playlist{}, false
	}
	return clonePlaylist(s.st.Playlists[i]), true
}

func (s *Store) playlistIndexLocked(id string) int {
	return slices.IndexFunc(s.st.Playlists, func(p core.Playlist) bool { return p.ID == id })
}

// checkNameLocked validates a playlist name, notifying on rejection.
func (s *Store) checkNameLocked(name string) error {
	switch {
	case name == "":
		s.notify(core.NotifyError, "Please enter a playlist name")
		return herrors.ErrEmptyName
	case core.IsReservedName(name):
		s.notify(core.NotifyError, `Cannot create a playlist named "Liked Songs"`)
		return herrors.ErrReservedName
	}
	return nil
}

// CreatePlaylist adds an empty playlist.
func (s *Store) CreatePlaylist(name string) (core.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if err := s.checkNameLocked(name); err != nil {
		return core.Playlist{}, err
	}

	p := core.Playlist{
		ID:          uuid.NewString(),
		Name:        name,
		CoverArtURL: DefaultCoverArt,
		Tracks:      []core.Track{},
		CreatedAt:   s.now(),
	}
	s.st.Playlists = append(s.st.Playlists, p)
	s.savePlaylistsLocked()
	return clonePlaylist(p), nil
}

// RenamePlaylist changes a playlist's name.
func (s *Store) RenamePlaylist(id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.playlistIndexLocked(id)
	if i < 0 {
		s.notify(core.NotifyError, "Playlist not found")
		return herrors.ErrPlaylistNotFound
	}
	name = strings.TrimSpace(name)
	if err := s.checkNameLocked(name); err != nil {
		return err
	}
	s.st.Playlists[i].Name = name
	s.savePlaylistsLocked()
	return nil
}

// AddToPlaylist appends track to a playlist.
func (s *Store) AddToPlaylist(id string, track core.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.playlistIndexLocked(id)
	if i < 0 {
		s.notify(core.NotifyError, "Playlist not found")
		return herrors.ErrPlaylistNotFound
	}
	if s.st.Playlists[i].Contains(track.ID) {
		s.notify(core.NotifyError, "Track already in playlist")
		return herrors.ErrDuplicateTrack
	}

	s.st.Playlists[i].Tracks = append(slices.Clone(s.st.Playlists[i].Tracks), track)
	if err := s.savePlaylistsLocked(); err != nil {
		s.notify(core.NotifyError, "Failed to add to playlist")
		return err
	}
	s.notify(core.NotifySuccess, "Added to playlist")
	return nil
}

// RemoveFromPlaylist drops a track from a playlist.
func (s *Store) RemoveFromPlaylist(id, trackID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.playlistIndexLocked(id)
	if i < 0 {
		s.notify(core.NotifyError, "Playlist not found")
		return herrors.ErrPlaylistNotFound
	}
	s.st.Playlists[i].Tracks = without(s.st.Playlists[i].Tracks, trackID)
	if err := s.savePlaylistsLocked(); err != nil {
		s.notify(core.NotifyError, "Failed to remove from playlist")
		return err
	}
	s.notify(core.NotifySuccess, "Removed from playlist")
	return nil
}

// DeletePlaylist removes a playlist.
func (s *Store) DeletePlaylist(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.playlistIndexLocked(id)
	if i < 0 {
		s.notify(core.NotifyError, "Playlist not found")
		return herrors.ErrPlaylistNotFound
	}
	s.st.Playlists = slices.Delete(s.st.Playlists, i, i+1)
	return s.savePlaylistsLocked()
}

// savePlaylistsLocked persists the playlists and refreshes the current
// playlist copy.
func (s *Store) savePlaylistsLocked() error {
	if cp := s.st.CurrentPlaylist; cp != nil {
		if i := s.playlistIndexLocked(cp.ID); i >= 0 {
			p := clonePlaylist(s.st.Playlists[i])
			s.st.CurrentPlaylist = &p
		} else {
			s.st.CurrentPlaylist = nil
		}
	}
	return s.save(kv.KeyPlaylists, withoutReserved(s.st.Playlists))
}

// ToggleLike likes or unlikes track and reports whether it is now liked.
func (s *Store) ToggleLike(track core.Track) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	liked := !core.ContainsTrack(s.st.LikedSongs, track.ID)
	if liked {
		s.st.LikedSongs = append(slices.Clone(s.st.LikedSongs), track)
	} else {
		s.st.LikedSongs = without(s.st.LikedSongs, track.ID)
	}
	_ = s.save(kv.KeyLikedSongs, s.st.LikedSongs)
	return liked
}

// IsLiked reports whether the track is in the liked list.
func (s *Store) IsLiked(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.ContainsTrack(s.st.LikedSongs, id)
}

// LikedSongs returns the liked list.
func (s *Store) LikedSongs() []core.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.st.LikedSongs)
}

// RecentlyPlayed returns recently played tracks, newest first.
func (s *Store) RecentlyPlayed() []core.RecentTrack {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.st.RecentlyPlayed)
}

// ClearRecentlyPlayed empties the recently played list.
func (s *Store) ClearRecentlyPlayed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.RecentlyPlayed = nil
	_ = s.save(kv.KeyRecentlyPlayed, []core.RecentTrack{})
}

// recordRecentLocked moves track to the front of recently played.
func (s *Store) recordRecentLocked(track core.Track) {
	recent := slices.DeleteFunc(slices.Clone(s.st.RecentlyPlayed), func(r core.RecentTrack) bool {
		return r.ID == track.ID
	})
	recent = append([]core.RecentTrack{{Track: track, PlayedAt: s.now()}}, recent...)
	if len(recent) > recentlyPlayedLimit {
		recent = recent[:recentlyPlayedLimit]
	}
	s.st.RecentlyPlayed = recent
	_ = s.save(kv.KeyRecentlyPlayed, recent)
}

// UserName returns the name given on first run, or "".
func (s *Store) UserName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.UserName
}

// SetUserName stores the user's name.
func (s *Store) SetUserName(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	name = strings.TrimSpace(name)
	if err := s.kv.Save(kv.KeyUserName, name); err != nil {
		return err
	}
	s.st.UserName = name
	return nil
}

// queuedLocked reports whether id is current or in either queue.
func (s *Store) queuedLocked(id string) bool {
	if s.st.CurrentTrack != nil && s.st.CurrentTrack.ID == id {
		return true
	}
	q := s.st.Upcoming()
	return q.Has(id)
}

func (s *Store) checkQueueableLocked(track core.Track) error {
	if !track.Playable() {
		s.notify(core.NotifyError, "No audio available for this track")
		return herrors.ErrNoAudio
	}
	if s.queuedLocked(track.ID) {
		s.notify(core.NotifyError, "Track already in queue")
		return herrors.ErrAlreadyQueued
	}
	return nil
}

// AddToPriorityQueue puts track at the front of the priority queue.
func (s *Store) AddToPriorityQueue(track core.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkQueueableLocked(track); err != nil {
		return err
	}
	s.st.PriorityQueue = append([]core.Track{track}, s.st.PriorityQueue...)
	s.publishQueueLocked()
	s.notify(core.NotifySuccess, "Added to queue (next up)")
	return nil
}

// AddToQueue puts track behind the other priority tracks, so tracks added
// one after another play in that order.
func (s *Store) AddToQueue(track core.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkQueueableLocked(track); err != nil {
		return err
	}
	s.st.PriorityQueue = append(slices.Clone(s.st.PriorityQueue), track)
	s.publishQueueLocked()
	s.notify(core.NotifySuccess, "Added to queue")
	return nil
}

// RemoveFromPriorityQueue drops the i-th priority track.
func (s *Store) RemoveFromPriorityQueue(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.st.PriorityQueue) {
		return herrors.ErrIndexOutOfRange
	}
	s.st.PriorityQueue = slices.Delete(slices.Clone(s.st.PriorityQueue), i, i+1)
	s.publishQueueLocked()
	return nil
}

// RemoveFromQueue drops the i-th backlog track.
func (s *Store) RemoveFromQueue(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.st.Queue) {
		return herrors.ErrIndexOutOfRange
	}
	s.st.Queue = slices.Delete(slices.Clone(s.st.Queue), i, i+1)
	s.publishQueueLocked()
	return nil
}

// ClearQueue empties both queues.
func (s *Store) ClearQueue() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.PriorityQueue = nil
	s.st.Queue = nil
	s.publishQueueLocked()
}
