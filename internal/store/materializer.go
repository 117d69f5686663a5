package store

import (
	"math/rand/v2"
	"slices"

	"github.com/FL1CKfps/Harmony-player/internal/core"
)

// Materialization is the queue layout installed when a track starts.
type Materialization struct {
	Queue           []core.Track
	Priority        []core.Track
	CurrentPlaylist *core.Playlist

	// NeedsSuggestions is set when a standalone track leaves nothing to
	// play next.
	NeedsSuggestions bool
	// Stale is set when the track was not found in its claimed source.
	Stale bool
}

// Materialize computes the queues for playing track in context qc. It does
// not modify st. Neither returned queue contains track.
func Materialize(track core.Track, qc core.QueueContext, st *State, rng *rand.Rand) Materialization {
	keep := Materialization{
		Queue:           without(st.Queue, track.ID),
		Priority:        without(st.PriorityQueue, track.ID),
		CurrentPlaylist: st.CurrentPlaylist,
	}

	switch qc.Type {
	case core.ContextPlaylist:
		i := slices.IndexFunc(st.Playlists, func(p core.Playlist) bool { return p.ID == qc.SourceID })
		if i < 0 {
			keep.Stale = true
			return keep
		}
		playlist := clonePlaylist(st.Playlists[i])
		rest, ok := after(playlist.Tracks, track.ID, qc.Shuffled, rng)
		if !ok {
			keep.Stale = true
			return keep
		}
		return Materialization{Queue: rest, CurrentPlaylist: &playlist}

	case core.ContextLiked:
		rest, ok := after(st.LikedSongs, track.ID, qc.Shuffled, rng)
		if !ok {
			keep.Stale = true
			return keep
		}
		return Materialization{Queue: rest}

	default:
		fromQueue := core.ContainsTrack(st.Queue, track.ID) || core.ContainsTrack(st.PriorityQueue, track.ID)
		keep.CurrentPlaylist = nil
		keep.NeedsSuggestions = !fromQueue && len(keep.Queue) == 0
		return keep
	}
}

// after returns the tracks strictly after id, shuffled if requested.
func after(tracks []core.Track, id string, shuffled bool, rng *rand.Rand) ([]core.Track, bool) {
	i := core.IndexOf(tracks, id)
	if i < 0 {
		return nil, false
	}
	rest := slices.Clone(tracks[i+1:])
	if shuffled {
		shuffle(rng, rest)
	}
	return rest, true
}

// shuffle is an in-place Fisher-Yates shuffle.
func shuffle(rng *rand.Rand, tracks []core.Track) {
	if rng == nil {
		rand.Shuffle(len(tracks), func(i, j int) { tracks[i], tracks[j] = tracks[j], tracks[i] })
		return
	}
	rng.Shuffle(len(tracks), func(i, j int) { tracks[i], tracks[j] = tracks[j], tracks[i] })
}
