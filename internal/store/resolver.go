package store

import "github.com/FL1CKfps/Harmony-player/internal/core"

// ResolveContext classifies where track is being played from.
//
// A track found in the current playlist is a playlist track, then a track in
// the liked list is a liked track. Queued tracks are being consumed out of
// their source order, so they are always standalone.
func ResolveContext(track core.Track, st *State) core.QueueContext {
	queued := core.ContainsTrack(st.Queue, track.ID) || core.ContainsTrack(st.PriorityQueue, track.ID)
	if !queued {
		if st.CurrentPlaylist.Contains(track.ID) {
			return core.QueueContext{
				Type:     core.ContextPlaylist,
				SourceID: st.CurrentPlaylist.ID,
				Shuffled: st.Shuffled,
			}
		}
		if core.ContainsTrack(st.LikedSongs, track.ID) {
			return core.QueueContext{Type: core.ContextLiked, Shuffled: st.Shuffled}
		}
	}
	return core.QueueContext{Type: core.ContextStandalone}
}
