package core

// ContextType tags the provenance of the currently playing track.
type ContextType string

const (
	ContextPlaylist   ContextType = "playlist"
	ContextLiked      ContextType = "liked"
	ContextStandalone ContextType = "standalone"
	ContextRadio      ContextType = "radio"
)

// QueueContext describes where the current track came from and how the
// queue repopulates once it runs dry.
type QueueContext struct {
	Type     ContextType `json:"type"`
	SourceID string      `json:"sourceId,omitempty"`
	Shuffled bool        `json:"shuffled"`
}

// HasSource returns true for contexts that can be replayed from the top.
func (c *QueueContext) HasSource() bool {
	return c != nil && (c.Type == ContextPlaylist || c.Type == ContextLiked)
}

// RepeatMode controls what happens when a track ends.
type RepeatMode string

const (
	RepeatOff RepeatMode = "OFF"
	RepeatOne RepeatMode = "ONE"
	RepeatAll RepeatMode = "ALL"
)

// Next cycles OFF -> ONE -> ALL -> OFF.
func (m RepeatMode) Next() RepeatMode {
	switch m {
	case RepeatOff:
		return RepeatOne
	case RepeatOne:
		return RepeatAll
	default:
		return RepeatOff
	}
}

// Queue is the pair of upcoming-track sequences.
// Priority tracks are always played before the context backlog.
type Queue struct {
	Priority []Track `json:"priorityQueue"`
	Tracks   []Track `json:"queue"`
}

// Upcoming returns priority tracks followed by the backlog.
func (q *Queue) Upcoming() []Track {
	if q == nil {
		return nil
	}
	out := make([]Track, 0, len(q.Priority)+len(q.Tracks))
	out = append(out, q.Priority...)
	return append(out, q.Tracks...)
}

// Len returns the total number of queued tracks.
func (q *Queue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.Priority) + len(q.Tracks)
}

// IsEmpty returns true if the queue has no tracks.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

// Has returns true if either sequence holds the track ID.
func (q *Queue) Has(id string) bool {
	return q != nil && (ContainsTrack(q.Priority, id) || ContainsTrack(q.Tracks, id))
}
