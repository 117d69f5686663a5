package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/FL1CKfps/Harmony-player/internal/core"
	"github.com/FL1CKfps/Harmony-player/internal/tui/styles"
)

// Queue displays the priority queue followed by the context queue.
type Queue struct {
	offset   int
	selected int
}

// NewQueue creates a new Queue component
func NewQueue() *Queue {
	return &Queue{}
}

// SelectNext moves the cursor down, bounded by n entries.
func (q *Queue) SelectNext(n int) {
	if q.selected < n-1 {
		q.selected++
	}
}

// SelectPrev moves the cursor up.
func (q *Queue) SelectPrev() {
	if q.selected > 0 {
		q.selected--
	}
}

// Selected returns the selected index across both queues.
func (q *Queue) Selected() int {
	return q.selected
}

// Resolve maps the cursor onto the queue pair. ok is false when the queue
// is empty.
func (q *Queue) Resolve(queue core.Queue) (priority bool, index int, ok bool) {
	n := queue.Len()
	if n == 0 {
		return false, 0, false
	}
	sel := min(q.selected, n-1)
	if sel < len(queue.Priority) {
		return true, sel, true
	}
	return false, sel - len(queue.Priority), true
}

// Render renders the queue panel
func (q *Queue) Render(queue core.Queue, width, height int, focused bool) string {
	title := styles.PanelTitle(fmt.Sprintf("Queue (%d)", queue.Len()), focused)

	var content string
	if queue.IsEmpty() {
		content = styles.Muted.Render("Queue is empty")
	} else {
		content = q.renderQueue(queue, width-4, height-4, focused)
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (q *Queue) renderQueue(queue core.Queue, width, maxLines int, focused bool) string {
	tracks := queue.Upcoming()
	if q.selected >= len(tracks) {
		q.selected = len(tracks) - 1
	}

	// Section headers and the "more" line take room.
	visible := max(maxLines-3, 1)
	if q.selected < q.offset {
		q.offset = q.selected
	}
	if q.selected >= q.offset+visible {
		q.offset = q.selected - visible + 1
	}
	start := q.offset
	end := min(start+visible, len(tracks))

	lines := make([]string, 0, end-start+3)

	// "XX. " (4) + "▸ " (2) + " — " (3)
	const overhead = 9

	for i := start; i < end; i++ {
		switch {
		case i == 0 && len(queue.Priority) > 0:
			lines = append(lines, styles.Label.Render("Next up"))
		case i == len(queue.Priority):
			lines = append(lines, styles.Label.Render("Up next from context"))
		}

		track := tracks[i]
		title, artist := fit(track.Name, track.PrimaryArtists, width-overhead, 10)
		num := fmt.Sprintf("%2d.", i+1)

		var line string
		if focused && i == q.selected {
			line = styles.Selected.Render(fmt.Sprintf("%s ▸ %s — %s", num, title, artist))
		} else {
			line = fmt.Sprintf("%s   %s — %s",
				styles.Dim.Render(num),
				title,
				styles.Muted.Render(artist))
		}
		lines = append(lines, line)
	}

	if end < len(tracks) {
		more := styles.Dim.Render(fmt.Sprintf("    ... and %d more", len(tracks)-end))
		lines = append(lines, more)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// fit truncates title and artist to share available columns, giving the
// artist at least a third (and no less than minArtist).
func fit(title, artist string, available, minArtist int) (string, string) {
	titleLen := len([]rune(title))
	artistLen := len([]rune(artist))
	if titleLen+artistLen <= available {
		return title, artist
	}

	artistSpace := max(available/3, minArtist)
	artistSpace = min(artistSpace, available-minArtist, artistLen)
	return truncate(title, available-artistSpace), truncate(artist, artistSpace)
}
