package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/FL1CKfps/Harmony-player/internal/core"
	"github.com/FL1CKfps/Harmony-player/internal/notify"
	"github.com/FL1CKfps/Harmony-player/internal/store"
	"github.com/FL1CKfps/Harmony-player/internal/tui/components"
	"github.com/FL1CKfps/Harmony-player/internal/tui/styles"
	"github.com/FL1CKfps/Harmony-player/internal/wizard"
)

// Panel represents which panel is focused
type Panel int

const (
	PanelNowPlaying Panel = iota
	PanelQueue
	PanelLibrary
	PanelHistory
	panelCount
)

const (
	searchDebounce = 300 * time.Millisecond
	volumeStep     = 0.05
	seekStep       = 5.0
	noticeTTL      = 5 * time.Second
)

// Controller is the slice of the store the UI drives.
type Controller interface {
	State() store.State

	PlayTrack(ctx context.Context, track core.Track, qc *core.QueueContext) error
	TogglePlayback() error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	Seek(seconds float64) error
	SetVolume(v float64) error
	ToggleShuffle() bool
	ToggleRepeat() core.RepeatMode

	PlayPlaylist(ctx context.Context, id string, shuffled bool) error
	PlayLikedSongs(ctx context.Context, shuffled bool) error

	Search(ctx context.Context, query string) ([]core.Track, error)
	LoadTrending(ctx context.Context) []core.Track

	ToggleLike(track core.Track) bool
	AddToQueue(track core.Track) error
	AddToPriorityQueue(track core.Track) error
	RemoveFromPriorityQueue(i int) error
	RemoveFromQueue(i int) error
	ClearQueue()
}

// App holds what the model needs from outside the UI.
type App struct {
	ctx         context.Context
	ctl         Controller
	notes       <-chan notify.Message
	refreshRate time.Duration
	now         func() time.Time
}

// NewApp creates a new TUI application. notes may be nil.
func NewApp(ctx context.Context, ctl Controller, notes <-chan notify.Message, refreshRate time.Duration) *App {
	if refreshRate <= 0 {
		refreshRate = time.Second
	}
	return &App{
		ctx:         ctx,
		ctl:         ctl,
		notes:       notes,
		refreshRate: refreshRate,
		now:         time.Now,
	}
}

// Model is the main TUI model
type Model struct {
	app          *App
	width        int
	height       int
	focusedPanel Panel

	state store.State

	nowPlaying  *components.NowPlaying
	queueView   *components.Queue
	libraryView *components.Library
	historyView *components.History

	showHelp bool

	showSearch    bool
	searchInput   textinput.Model
	searchResults []core.Track
	searchCursor  int
	searching     bool
	lastQuery     string
	searchErr     error

	// notice is the latest notification or action error.
	notice       string
	noticeKind   core.NotifyKind
	noticeExpiry time.Time

	quitting bool
}

// NewModel creates a new TUI model
func NewModel(app *App) Model {
	ti := textinput.New()
	ti.Placeholder = "Search songs, artists, albums..."
	ti.CharLimit = 100
	ti.Width = 50

	return Model{
		app:          app,
		focusedPanel: PanelNowPlaying,
		state:        app.ctl.State(),
		nowPlaying:   components.NewNowPlaying(),
		queueView:    components.NewQueue(),
		libraryView:  components.NewLibrary(),
		historyView:  components.NewHistory(),
		searchInput:  ti,
	}
}

// Messages
type tickMsg time.Time
type noticeMsg notify.Message
type actionMsg struct{ err error }
type trendingMsg []core.Track

type searchDebounceMsg struct{ query string }
type searchResultsMsg struct {
	query   string
	results []core.Track
	err     error
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.app.refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) waitForNotice() tea.Cmd {
	if m.app.notes == nil {
		return nil
	}
	notes := m.app.notes
	return func() tea.Msg {
		n, ok := <-notes
		if !ok {
			return nil
		}
		return noticeMsg(n)
	}
}

func (m Model) loadTrending() tea.Cmd {
	app := m.app
	return func() tea.Msg {
		return trendingMsg(app.ctl.LoadTrending(app.ctx))
	}
}

// act runs fn off the UI loop and reports its error.
func (m Model) act(fn func(ctx context.Context, ctl Controller) error) tea.Cmd {
	app := m.app
	return func() tea.Msg {
		return actionMsg{err: fn(app.ctx, app.ctl)}
	}
}

func (m Model) doSearch(query string) tea.Cmd {
	app := m.app
	return func() tea.Msg {
		if strings.TrimSpace(query) == "" {
			return searchResultsMsg{query: query}
		}
		results, err := app.ctl.Search(app.ctx, query)
		return searchResultsMsg{query: query, results: results, err: err}
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.tick(),
		m.waitForNotice(),
		m.loadTrending(),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.refresh()
		return m, m.tick()

	case noticeMsg:
		m.setNotice(msg.Kind, msg.Text)
		return m, m.waitForNotice()

	case actionMsg:
		if msg.err != nil {
			m.setNotice(core.NotifyError, msg.err.Error())
		}
		m.refresh()
		return m, nil

	case trendingMsg:
		m.refresh()
		return m, nil

	case searchDebounceMsg:
		if msg.query == m.searchInput.Value() && msg.query != m.lastQuery {
			m.lastQuery = msg.query
			m.searching = true
			return m, m.doSearch(msg.query)
		}

	case searchResultsMsg:
		if msg.query != m.searchInput.Value() {
			return m, nil
		}
		m.searching = false
		m.searchResults = msg.results
		m.searchErr = msg.err
		m.searchCursor = 0
		return m, nil
	}

	if m.showSearch {
		var inputCmd tea.Cmd
		m.searchInput, inputCmd = m.searchInput.Update(msg)
		return m, inputCmd
	}

	return m, nil
}

func (m *Model) refresh() {
	m.state = m.app.ctl.State()
	if !m.noticeExpiry.IsZero() && m.app.now().After(m.noticeExpiry) {
		m.notice = ""
		m.noticeExpiry = time.Time{}
	}
}

func (m *Model) setNotice(kind core.NotifyKind, text string) {
	m.notice = text
	m.noticeKind = kind
	m.noticeExpiry = m.app.now().Add(noticeTTL)
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys (always work)
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.showHelp {
		switch msg.String() {
		case "?", "esc":
			m.showHelp = false
		}
		return m, nil
	}

	if m.showSearch {
		return m.handleSearchKeyPress(msg)
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "?":
		m.showHelp = true
		return m, nil
	case "/":
		m.showSearch = true
		m.searchInput.SetValue("")
		m.searchInput.Focus()
		m.searchResults = nil
		m.searchCursor = 0
		m.lastQuery = ""
		m.searchErr = nil
		return m, textinput.Blink
	case "tab":
		m.focusedPanel = (m.focusedPanel + 1) % panelCount
		return m, nil
	case "shift+tab":
		m.focusedPanel = (m.focusedPanel + panelCount - 1) % panelCount
		return m, nil
	}

	// Playback controls
	switch msg.String() {
	case " ":
		return m, m.act(func(_ context.Context, ctl Controller) error {
			return ctl.TogglePlayback()
		})
	case "n":
		return m, m.act(func(ctx context.Context, ctl Controller) error {
			return ctl.Next(ctx)
		})
	case "p":
		return m, m.act(func(ctx context.Context, ctl Controller) error {
			return ctl.Previous(ctx)
		})
	case "+", "=":
		v := min(m.state.Playback.Volume+volumeStep, 1)
		return m, m.act(func(_ context.Context, ctl Controller) error {
			return ctl.SetVolume(v)
		})
	case "-":
		v := max(m.state.Playback.Volume-volumeStep, 0)
		return m, m.act(func(_ context.Context, ctl Controller) error {
			return ctl.SetVolume(v)
		})
	case "right":
		at := m.state.Playback.CurrentTime + seekStep
		return m, m.act(func(_ context.Context, ctl Controller) error {
			return ctl.Seek(at)
		})
	case "left":
		at := max(m.state.Playback.CurrentTime-seekStep, 0)
		return m, m.act(func(_ context.Context, ctl Controller) error {
			return ctl.Seek(at)
		})
	case "s":
		on := m.app.ctl.ToggleShuffle()
		m.refresh()
		m.setNotice(core.NotifySuccess, "Shuffle "+onOff(on))
		return m, nil
	case "r":
		mode := m.app.ctl.ToggleRepeat()
		m.refresh()
		m.setNotice(core.NotifySuccess, "Repeat "+strings.ToLower(string(mode)))
		return m, nil
	case "l":
		if m.state.CurrentTrack != nil {
			m.app.ctl.ToggleLike(*m.state.CurrentTrack)
			m.refresh()
		}
		return m, nil
	}

	switch m.focusedPanel {
	case PanelQueue:
		return m.handleQueueKey(msg)
	case PanelLibrary:
		return m.handleLibraryKey(msg)
	}

	return m, nil
}

func (m Model) handleQueueKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	queue := m.state.Upcoming()
	switch msg.String() {
	case "j", "down":
		m.queueView.SelectNext(queue.Len())
	case "k", "up":
		m.queueView.SelectPrev()
	case "enter":
		priority, i, ok := m.queueView.Resolve(queue)
		if !ok {
			return m, nil
		}
		list := queue.Tracks
		if priority {
			list = queue.Priority
		}
		t := list[i]
		qc := m.state.Context
		return m, m.act(func(ctx context.Context, ctl Controller) error {
			return ctl.PlayTrack(ctx, t, qc)
		})
	case "d", "x":
		priority, i, ok := m.queueView.Resolve(queue)
		if !ok {
			return m, nil
		}
		return m, m.act(func(_ context.Context, ctl Controller) error {
			if priority {
				return ctl.RemoveFromPriorityQueue(i)
			}
			return ctl.RemoveFromQueue(i)
		})
	case "c":
		m.app.ctl.ClearQueue()
		m.refresh()
	}
	return m, nil
}

func (m Model) handleLibraryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	playlists := m.state.Playlists
	switch msg.String() {
	case "j", "down":
		m.libraryView.SelectNext(len(playlists))
	case "k", "up":
		m.libraryView.SelectPrev()
	case "enter", "S":
		shuffled := msg.String() == "S"
		id := m.libraryView.SelectedID(playlists)
		return m, m.act(func(ctx context.Context, ctl Controller) error {
			if id == components.LikedEntryID {
				return ctl.PlayLikedSongs(ctx, shuffled)
			}
			return ctl.PlayPlaylist(ctx, id, shuffled)
		})
	}
	return m, nil
}

func (m Model) handleSearchKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg.String() {
	case "esc":
		m.showSearch = false
		m.searchInput.Blur()
		return m, nil

	case "enter", "ctrl+q", "ctrl+e":
		results := m.visibleResults()
		if m.searchCursor >= len(results) {
			return m, nil
		}
		t := results[m.searchCursor]
		m.showSearch = false
		m.searchInput.Blur()
		switch msg.String() {
		case "ctrl+q":
			return m, m.act(func(_ context.Context, ctl Controller) error {
				return ctl.AddToQueue(t)
			})
		case "ctrl+e":
			return m, m.act(func(_ context.Context, ctl Controller) error {
				return ctl.AddToPriorityQueue(t)
			})
		}
		return m, m.act(func(ctx context.Context, ctl Controller) error {
			return ctl.PlayTrack(ctx, t, nil)
		})

	case "up", "ctrl+p":
		if m.searchCursor > 0 {
			m.searchCursor--
		}
		return m, nil

	case "down", "ctrl+n":
		if m.searchCursor < len(m.visibleResults())-1 {
			m.searchCursor++
		}
		return m, nil
	}

	var inputCmd tea.Cmd
	m.searchInput, inputCmd = m.searchInput.Update(msg)
	cmds = append(cmds, inputCmd)

	if m.searchInput.Value() != m.lastQuery {
		query := m.searchInput.Value()
		cmds = append(cmds, tea.Tick(searchDebounce, func(time.Time) tea.Msg {
			return searchDebounceMsg{query: query}
		}))
	}

	return m, tea.Batch(cmds...)
}

// visibleResults falls back to trending while the query is blank.
func (m Model) visibleResults() []core.Track {
	if strings.TrimSpace(m.searchInput.Value()) == "" {
		return m.state.GlobalTrending
	}
	return m.searchResults
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.showSearch {
		return m.renderSearch()
	}

	// Left: Now Playing (top), Queue (bottom)
	// Right: Library (top), History (bottom)
	leftWidth := m.width * 60 / 100
	rightWidth := m.width - leftWidth - 2
	topHeight := m.height * 40 / 100
	bottomHeight := m.height - topHeight - 3

	playingID := ""
	if m.state.Context != nil && m.state.Context.Type == core.ContextPlaylist {
		playingID = m.state.Context.SourceID
	}

	nowPlaying := m.nowPlaying.Render(m.playing(), leftWidth-2, topHeight-2, m.focusedPanel == PanelNowPlaying)
	queueView := m.queueView.Render(m.state.Upcoming(), leftWidth-2, bottomHeight-2, m.focusedPanel == PanelQueue)
	libraryView := m.libraryView.Render(len(m.state.LikedSongs), m.state.Playlists, playingID, rightWidth-2, topHeight-2, m.focusedPanel == PanelLibrary)
	historyView := m.historyView.Render(m.state.RecentlyPlayed, rightWidth-2, bottomHeight-2, m.focusedPanel == PanelHistory)

	leftCol := lipgloss.JoinVertical(lipgloss.Left, nowPlaying, queueView)
	rightCol := lipgloss.JoinVertical(lipgloss.Left, libraryView, historyView)

	main := lipgloss.JoinHorizontal(lipgloss.Top, leftCol, rightCol)

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), main, m.renderStatusBar())
}

func (m Model) playing() components.Playing {
	p := components.Playing{
		Track:    m.state.CurrentTrack,
		Status:   m.state.Status,
		Playback: m.state.Playback,
		Context:  m.state.Context,
		Shuffled: m.state.Shuffled,
		Repeat:   m.state.Repeat,
	}
	if m.state.CurrentPlaylist != nil {
		p.Source = m.state.CurrentPlaylist.Name
	}
	if p.Track != nil {
		p.Liked = core.ContainsTrack(m.state.LikedSongs, p.Track.ID)
	}
	return p
}

func (m Model) renderHeader() string {
	text := Greeting(m.app.now())
	if m.state.UserName != "" {
		text += ", " + m.state.UserName
	}
	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(styles.Highlight.Render("Harmony") + "  " + styles.Muted.Render(text))
}

// Greeting returns a time-of-day greeting.
func Greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "Good morning"
	case h < 17:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}

func (m Model) renderStatusBar() string {
	status := styles.Dim.Render("q:quit  ?:help  /:search  space:play/pause  n:next  p:prev  s:shuffle  r:repeat  l:like  tab:panel")

	if m.notice != "" {
		if m.noticeKind == core.NotifyError {
			status = styles.ErrorText.Render("Error: " + m.notice)
		} else {
			status = styles.SuccessText.Render(m.notice)
		}
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(status)
}

func (m Model) renderHelp() string {
	title := "Harmony - Keyboard Shortcuts"
	divider := strings.Repeat("═", len(title))

	help := `
  ` + title + `
  ` + divider + `

  Global
  ──────
  q, Ctrl+C    Quit
  ?            Toggle help
  /            Search
  Tab          Next panel
  Shift+Tab    Previous panel

  Playback
  ────────
  Space        Play/Pause
  n            Next track
  p            Previous track
  ←/→          Seek 5s
  +/=          Volume up
  -            Volume down
  s            Toggle shuffle
  r            Cycle repeat (off, one, all)
  l            Like/unlike current track

  Queue Panel
  ───────────
  j/↓ k/↑      Move
  Enter        Play selected
  d            Remove selected
  c            Clear queue

  Library Panel
  ─────────────
  j/↓ k/↑      Move
  Enter        Play
  S            Play shuffled

  Press ? or Esc to close
`

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.BorderStyle.Render(help))
}

func (m Model) renderSearch() string {
	var b strings.Builder

	b.WriteString(styles.Highlight.Render("Search"))
	b.WriteString("\n\n")

	b.WriteString(m.searchInput.View())
	b.WriteString("\n\n")

	results := m.visibleResults()
	blank := strings.TrimSpace(m.searchInput.Value()) == ""

	switch {
	case m.searchErr != nil && !blank:
		b.WriteString(styles.ErrorText.Render("Error: " + m.searchErr.Error()))
	case m.searching && !blank:
		b.WriteString(styles.Muted.Render("Searching..."))
	case len(results) == 0 && !blank && m.lastQuery != "":
		b.WriteString(styles.Muted.Render("No results found"))
	default:
		if blank && len(results) > 0 {
			b.WriteString(styles.Label.Render("Trending now"))
			b.WriteString("\n")
		}
		const maxResults = 10
		for i, t := range results {
			if i >= maxResults {
				b.WriteString(styles.Muted.Render("  ...and more"))
				break
			}

			line := t.Name + " " + styles.Muted.Render(wizard.Subtitle(t))
			if i == m.searchCursor {
				b.WriteString(styles.Selected.Render("> ") + line)
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.Muted.Render("↑/↓:nav  Enter:play  Ctrl+e:play next  Ctrl+q:queue  Esc:close"))

	content := lipgloss.NewStyle().
		Width(60).
		Padding(1, 2).
		Render(b.String())

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.FocusedBorder.Render(content))
}

// Run starts the TUI application
func Run(ctx context.Context, ctl Controller, notes <-chan notify.Message, refreshRate time.Duration, theme string) error {
	styles.ApplyTheme(theme)

	model := NewModel(NewApp(ctx, ctl, notes, refreshRate))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	_, err := p.Run()
	return err
}
