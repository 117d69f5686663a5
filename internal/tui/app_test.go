package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/FL1CKfps/Harmony-player/internal/core"
	"github.com/FL1CKfps/Harmony-player/internal/notify"
	"github.com/FL1CKfps/Harmony-player/internal/store"
)

type fakeController struct {
	st    store.State
	calls []string

	searchErr error
	nextErr   error
	volume    float64
	played    *core.Track
	playedQC  *core.QueueContext
	playlist  string
	shuffled  bool
	removed   string
}

func (f *fakeController) State() store.State { return f.st }

func (f *fakeController) record(name string) { f.calls = append(f.calls, name) }

func (f *fakeController) PlayTrack(_ context.Context, t core.Track, qc *core.QueueContext) error {
	f.record("play")
	f.played = &t
	f.playedQC = qc
	return nil
}

func (f *fakeController) TogglePlayback() error { f.record("toggle"); return nil }

func (f *fakeController) Next(context.Context) error { f.record("next"); return f.nextErr }

func (f *fakeController) Previous(context.Context) error { f.record("previous"); return nil }

func (f *fakeController) Seek(float64) error { f.record("seek"); return nil }

func (f *fakeController) SetVolume(v float64) error {
	f.record("volume")
	f.volume = v
	return nil
}

func (f *fakeController) ToggleShuffle() bool {
	f.st.Shuffled = !f.st.Shuffled
	return f.st.Shuffled
}

func (f *fakeController) ToggleRepeat() core.RepeatMode {
	f.st.Repeat = f.st.Repeat.Next()
	return f.st.Repeat
}

func (f *fakeController) PlayPlaylist(_ context.Context, id string, shuffled bool) error {
	f.record("playlist")
	f.playlist, f.shuffled = id, shuffled
	return nil
}

func (f *fakeController) PlayLikedSongs(_ context.Context, shuffled bool) error {
	f.record("liked")
	f.shuffled = shuffled
	return nil
}

func (f *fakeController) Search(_ context.Context, q string) ([]core.Track, error) {
	f.record("search")
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return []core.Track{{ID: q + "-1", Name: q}}, nil
}

func (f *fakeController) LoadTrending(context.Context) []core.Track { return f.st.GlobalTrending }

func (f *fakeController) ToggleLike(t core.Track) bool {
	if core.ContainsTrack(f.st.LikedSongs, t.ID) {
		f.st.LikedSongs = nil
		return false
	}
	f.st.LikedSongs = append(f.st.LikedSongs, t)
	return true
}

func (f *fakeController) AddToQueue(core.Track) error         { f.record("queue"); return nil }
func (f *fakeController) AddToPriorityQueue(core.Track) error { f.record("priority"); return nil }

func (f *fakeController) RemoveFromPriorityQueue(i int) error {
	f.removed = "priority"
	return nil
}

func (f *fakeController) RemoveFromQueue(i int) error {
	f.removed = "queue"
	return nil
}

func (f *fakeController) ClearQueue() {
	f.st.PriorityQueue = nil
	f.st.Queue = nil
}

func newTestModel(ctl *fakeController) Model {
	app := NewApp(context.Background(), ctl, nil, time.Second)
	app.now = func() time.Time { return time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC) }
	m := NewModel(app)
	m.width, m.height = 120, 40
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and runs the resulting command, feeding its message
// back into the model.
func press(t *testing.T, m Model, k string) Model {
	t.Helper()
	model, cmd := m.Update(key(k))
	m = model.(Model)
	if cmd == nil {
		return m
	}
	if msg, ok := cmd().(actionMsg); ok {
		model, _ = m.Update(msg)
		m = model.(Model)
	}
	return m
}

func TestPlaybackKeys(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{" ", "toggle"},
		{"n", "next"},
		{"p", "previous"},
		{"+", "volume"},
		{"-", "volume"},
	}
	for _, tt := range tests {
		ctl := &fakeController{}
		press(t, newTestModel(ctl), tt.key)
		if len(ctl.calls) != 1 || ctl.calls[0] != tt.want {
			t.Errorf("key %q calls = %v, want [%s]", tt.key, ctl.calls, tt.want)
		}
	}
}

func TestVolumeClamps(t *testing.T) {
	ctl := &fakeController{st: store.State{Playback: core.PlaybackState{Volume: 0.98}}}
	press(t, newTestModel(ctl), "+")
	if ctl.volume != 1 {
		t.Errorf("volume = %v, want 1", ctl.volume)
	}

	ctl = &fakeController{st: store.State{Playback: core.PlaybackState{Volume: 0.02}}}
	press(t, newTestModel(ctl), "-")
	if ctl.volume != 0 {
		t.Errorf("volume = %v, want 0", ctl.volume)
	}
}

func TestShuffleAndRepeatKeys(t *testing.T) {
	ctl := &fakeController{st: store.State{Repeat: core.RepeatOff}}
	m := newTestModel(ctl)

	m = press(t, m, "s")
	if !m.state.Shuffled || m.notice != "Shuffle on" {
		t.Errorf("after s: shuffled = %v, notice = %q", m.state.Shuffled, m.notice)
	}
	m = press(t, m, "r")
	if m.state.Repeat != core.RepeatOne || m.notice != "Repeat one" {
		t.Errorf("after r: repeat = %v, notice = %q", m.state.Repeat, m.notice)
	}
}

func TestLikeCurrentTrack(t *testing.T) {
	track := core.Track{ID: "a", Name: "A"}
	ctl := &fakeController{st: store.State{CurrentTrack: &track}}
	m := press(t, newTestModel(ctl), "l")
	if !m.playing().Liked {
		t.Error("current track not liked after l")
	}
}

func TestActionErrorShown(t *testing.T) {
	ctl := &fakeController{nextErr: errors.New("nothing queued")}
	m := press(t, newTestModel(ctl), "n")
	if !strings.Contains(m.View(), "Error: nothing queued") {
		t.Errorf("View() missing error:\n%s", m.View())
	}
}

func TestNoticeFromChannel(t *testing.T) {
	ch := notify.NewChannel(4)
	ctl := &fakeController{}
	app := NewApp(context.Background(), ctl, ch.C(), time.Second)
	m := NewModel(app)

	ch.Notify(core.NotifySuccess, "Added to playlist")
	msg := m.waitForNotice()()
	model, cmd := m.Update(msg)
	m = model.(Model)
	if m.notice != "Added to playlist" || m.noticeKind != core.NotifySuccess {
		t.Errorf("notice = %q (%s)", m.notice, m.noticeKind)
	}
	if cmd == nil {
		t.Error("expected the model to keep listening for notices")
	}
}

func TestQueuePanel(t *testing.T) {
	ctl := &fakeController{st: store.State{
		PriorityQueue: []core.Track{{ID: "p1"}},
		Queue:         []core.Track{{ID: "q1"}, {ID: "q2"}},
		Context:       &core.QueueContext{Type: core.ContextPlaylist, SourceID: "pl"},
	}}
	m := newTestModel(ctl)
	m = press(t, m, "tab")
	if m.focusedPanel != PanelQueue {
		t.Fatalf("focusedPanel = %v, want queue", m.focusedPanel)
	}

	m = press(t, m, "d")
	if ctl.removed != "priority" {
		t.Errorf("removed from %q, want priority", ctl.removed)
	}

	m = press(t, m, "j")
	m = press(t, m, "enter")
	if ctl.played == nil || ctl.played.ID != "q1" {
		t.Fatalf("played = %v, want q1", ctl.played)
	}
	if ctl.playedQC == nil || ctl.playedQC.SourceID != "pl" {
		t.Errorf("played with context %v, want playlist pl", ctl.playedQC)
	}

	press(t, m, "c")
	if len(ctl.st.Queue) != 0 {
		t.Errorf("queue not cleared")
	}
}

func TestLibraryPanel(t *testing.T) {
	ctl := &fakeController{st: store.State{
		Playlists: []core.Playlist{{ID: "p1", Name: "Mix"}},
	}}
	m := newTestModel(ctl)
	m.focusedPanel = PanelLibrary

	m = press(t, m, "enter")
	if len(ctl.calls) != 1 || ctl.calls[0] != "liked" {
		t.Fatalf("calls = %v, want [liked]", ctl.calls)
	}

	m = press(t, m, "j")
	press(t, m, "S")
	if ctl.playlist != "p1" || !ctl.shuffled {
		t.Errorf("playlist = %q shuffled = %v, want p1 shuffled", ctl.playlist, ctl.shuffled)
	}
}

func TestSearchOverlay(t *testing.T) {
	ctl := &fakeController{st: store.State{
		GlobalTrending: []core.Track{{ID: "t1", Name: "Trending One"}},
	}}
	m := newTestModel(ctl)
	m = press(t, m, "/")
	if !m.showSearch {
		t.Fatal("search overlay not shown")
	}
	if !strings.Contains(m.View(), "Trending One") {
		t.Errorf("blank query should list trending:\n%s", m.View())
	}

	m.searchInput.SetValue("tum")
	model, _ := m.Update(searchDebounceMsg{query: "tum"})
	m = model.(Model)
	if !m.searching {
		t.Error("debounce should start a search")
	}
	model, _ = m.Update(m.doSearch("tum")())
	m = model.(Model)
	if len(m.searchResults) != 1 {
		t.Fatalf("results = %d, want 1", len(m.searchResults))
	}

	// Results for an older query are dropped.
	model, _ = m.Update(searchResultsMsg{query: "tu", results: []core.Track{{ID: "x"}, {ID: "y"}}})
	m = model.(Model)
	if len(m.searchResults) != 1 {
		t.Errorf("stale results applied")
	}

	m = press(t, m, "enter")
	if m.showSearch {
		t.Error("overlay should close after selecting")
	}
	if ctl.played == nil || ctl.played.ID != "tum-1" || ctl.playedQC != nil {
		t.Errorf("played = %v (%v), want tum-1 standalone", ctl.played, ctl.playedQC)
	}
}

func TestGreeting(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{8, "Good morning"},
		{13, "Good afternoon"},
		{21, "Good evening"},
	}
	for _, tt := range tests {
		got := Greeting(time.Date(2024, 1, 1, tt.hour, 0, 0, 0, time.UTC))
		if got != tt.want {
			t.Errorf("Greeting(%d) = %q, want %q", tt.hour, got, tt.want)
		}
	}
}

func TestViewShowsNowPlaying(t *testing.T) {
	track := core.Track{ID: "a", Name: "Kesariya", PrimaryArtists: "Arijit Singh", DurationSeconds: 268}
	ctl := &fakeController{st: store.State{
		CurrentTrack: &track,
		Status:       core.StatusPlaying,
		Playback:     core.PlaybackState{CurrentTime: 30, Duration: 268, Volume: 0.5},
		UserName:     "Sam",
	}}
	view := newTestModel(ctl).View()
	for _, want := range []string{"Kesariya", "Arijit Singh", "0:30", "4:28", "Good evening, Sam", "Liked Songs"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}
