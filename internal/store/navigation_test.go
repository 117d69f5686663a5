package store

import (
	"context"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/FL1CKfps/Harmony-player/internal/core"
)

func newPlaylist(t *testing.T, h *harness, name string, ids ...string) core.Playlist {
	t.Helper()
	p, err := h.store.CreatePlaylist(name)
	if err != nil {
		t.Fatalf("CreatePlaylist(%q) error = %v", name, err)
	}
	for _, tr := range tracks(ids...) {
		if err := h.store.AddToPlaylist(p.ID, tr); err != nil {
			t.Fatalf("AddToPlaylist(%s) error = %v", tr.ID, err)
		}
	}
	p, _ = h.store.Playlist(p.ID)
	return p
}

func TestPlayFromPlaylist(t *testing.T) {
	h := newHarness(t)
	p := newPlaylist(t, h, "Road trip", "A", "B", "C")

	h.play(t, track("B"), &core.QueueContext{Type: core.ContextPlaylist, SourceID: p.ID})

	st := h.store.State()
	if !slices.Equal(ids(st.Queue), []string{"C"}) {
		t.Errorf("Queue = %v, want [C]", ids(st.Queue))
	}
	if len(st.PriorityQueue) != 0 {
		t.Errorf("PriorityQueue = %v, want empty", ids(st.PriorityQueue))
	}
	if st.CurrentPlaylist == nil || st.CurrentPlaylist.ID != p.ID {
		t.Errorf("CurrentPlaylist = %v, want %s", st.CurrentPlaylist, p.ID)
	}

	// A later pick from the same playlist resolves on its own.
	h.play(t, track("A"), nil)
	st = h.store.State()
	if st.Context.Type != core.ContextPlaylist || !slices.Equal(ids(st.Queue), []string{"B", "C"}) {
		t.Errorf("context %q queue %v, want playlist [B C]", st.Context.Type, ids(st.Queue))
	}
}

func TestContextTypeChangeResetsQueues(t *testing.T) {
	h := newHarness(t)
	p := newPlaylist(t, h, "Mix", "A", "B", "C")
	h.store.ToggleLike(track("L1"))
	h.store.ToggleLike(track("L2"))

	h.play(t, track("A"), &core.QueueContext{Type: core.ContextPlaylist, SourceID: p.ID})
	if err := h.store.AddToPriorityQueue(track("X")); err != nil {
		t.Fatal(err)
	}

	h.play(t, track("L1"), nil)

	st := h.store.State()
	if st.Context.Type != core.ContextLiked {
		t.Fatalf("Context = %q, want liked", st.Context.Type)
	}
	if !slices.Equal(ids(st.Queue), []string{"L2"}) {
		t.Errorf("Queue = %v, want [L2] with no playlist remnants", ids(st.Queue))
	}
	if len(st.PriorityQueue) != 0 {
		t.Errorf("PriorityQueue = %v, want empty", ids(st.PriorityQueue))
	}
	if st.CurrentPlaylist != nil {
		t.Error("CurrentPlaylist should be cleared")
	}
}

func TestAdvanceOrder(t *testing.T) {
	h := newHarness(t)
	h.store.ToggleLike(track("A"))
	h.store.ToggleLike(track("B"))
	h.store.ToggleLike(track("C"))

	h.play(t, track("A"), nil)
	if err := h.store.AddToQueue(track("P1")); err != nil {
		t.Fatal(err)
	}
	if err := h.store.AddToQueue(track("P2")); err != nil {
		t.Fatal(err)
	}

	var played []string
	for range 4 {
		h.end(t)
		played = append(played, currentID(h.store.State()))
		checkInvariant(t, h.store.State())
	}

	want := []string{"P1", "P2", "B", "C"}
	if !slices.Equal(played, want) {
		t.Errorf("played %v, want %v", played, want)
	}
	if st := h.store.State(); !slices.Equal(ids(st.History), []string{"A", "P1", "P2", "B"}) {
		t.Errorf("History = %v", ids(st.History))
	}
	if st := h.store.State(); st.Context.Type != core.ContextLiked {
		t.Errorf("Context = %q, want liked kept while draining", st.Context.Type)
	}

	// Liked context, repeat off: nothing more to play.
	h.end(t)
	if st := h.store.State(); st.Status != core.StatusIdle {
		t.Errorf("Status = %q, want idle", st.Status)
	}
}

func TestRepeatOneReplaysOnce(t *testing.T) {
	h := newHarness(t)
	h.play(t, track("T"), nil)
	if err := h.store.AddToQueue(track("N")); err != nil {
		t.Fatal(err)
	}
	if mode := h.store.ToggleRepeat(); mode != core.RepeatOne {
		t.Fatalf("ToggleRepeat() = %q, want ONE", mode)
	}

	if err := h.store.Next(context.Background()); err != nil {
		t.Fatal(err)
	}
	h.store.Wait()

	st := h.store.State()
	if currentID(st) != "T" {
		t.Errorf("current = %q, want T", currentID(st))
	}
	if st.Repeat != core.RepeatOff {
		t.Errorf("Repeat = %q, want OFF", st.Repeat)
	}
	if h.player.starts() != 2 {
		t.Errorf("starts = %d, want 2", h.player.starts())
	}
	if len(st.History) != 0 {
		t.Errorf("History = %v, want empty", ids(st.History))
	}
	if !slices.Equal(ids(st.PriorityQueue), []string{"N"}) {
		t.Errorf("PriorityQueue = %v, want [N] untouched", ids(st.PriorityQueue))
	}

	h.end(t)
	if got := currentID(h.store.State()); got != "N" {
		t.Errorf("after repeat-once, current = %q, want N", got)
	}
}

func TestToggleRepeatCycles(t *testing.T) {
	h := newHarness(t)
	want := []struct {
		mode core.RepeatMode
		note string
	}{
		{core.RepeatOne, "Repeat once"},
		{core.RepeatAll, "Repeat all"},
		{core.RepeatOff, "Repeat off"},
	}
	for _, w := range want {
		if got := h.store.ToggleRepeat(); got != w.mode {
			t.Errorf("ToggleRepeat() = %q, want %q", got, w.mode)
		}
		if m := h.lastNote(t); m.Text != w.note {
			t.Errorf("notification = %q, want %q", m.Text, w.note)
		}
	}
}

func TestRepeatAllReplaysPlaylist(t *testing.T) {
	h := newHarness(t)
	p := newPlaylist(t, h, "Loop", "A", "B")
	h.store.ToggleRepeat()
	h.store.ToggleRepeat()

	if err := h.store.PlayPlaylist(context.Background(), p.ID, false); err != nil {
		t.Fatal(err)
	}
	h.store.Wait()

	var played []string
	for range 3 {
		h.end(t)
		played = append(played, currentID(h.store.State()))
	}
	if want := []string{"B", "A", "B"}; !slices.Equal(played, want) {
		t.Errorf("played %v, want %v", played, want)
	}
	st := h.store.State()
	if st.CurrentPlaylist == nil || st.CurrentPlaylist.ID != p.ID {
		t.Error("replay should keep the playlist current")
	}
}

func TestRepeatAllReplaysLiked(t *testing.T) {
	h := newHarness(t)
	h.store.ToggleLike(track("A"))
	h.store.ToggleRepeat()
	h.store.ToggleRepeat()

	if err := h.store.PlayLikedSongs(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	h.store.Wait()
	h.end(t)

	st := h.store.State()
	if currentID(st) != "A" || st.Status != core.StatusLoading {
		t.Errorf("current %q status %q, want A restarted", currentID(st), st.Status)
	}
	if h.player.starts() != 2 {
		t.Errorf("starts = %d, want 2", h.player.starts())
	}
}

func TestStandaloneEndTriggersOneSuggestionsFetch(t *testing.T) {
	h := newHarness(t)
	h.provider.searchErr = errProvider
	h.provider.trendingErr = errProvider

	h.play(t, track("T"), nil)
	if st := h.store.State(); len(st.Queue)+len(st.PriorityQueue) != 0 {
		t.Fatalf("queues should be empty, got %v %v", ids(st.PriorityQueue), ids(st.Queue))
	}

	h.end(t)

	lookups := testutil.ToFloat64(h.metrics.CacheLookups.WithLabelValues("suggestions", "miss")) +
		testutil.ToFloat64(h.metrics.CacheLookups.WithLabelValues("suggestions", "hit"))
	if lookups != 1 {
		t.Errorf("suggestions fetches = %v, want 1", lookups)
	}
	if trending, _ := h.provider.counts(); trending != 1 {
		t.Errorf("Trending calls = %d, want 1", trending)
	}
	st := h.store.State()
	if st.Status != core.StatusIdle {
		t.Errorf("Status = %q, want idle", st.Status)
	}
	if h.player.starts() != 1 {
		t.Errorf("starts = %d, want 1", h.player.starts())
	}
}

func TestStandaloneEndPlaysSuggestions(t *testing.T) {
	h := newHarness(t)
	h.provider.search = map[string][]core.Track{"Artist T": tracks("T", "S1")}
	h.provider.trending = tracks("S2")

	h.play(t, track("T"), nil)
	h.end(t)

	st := h.store.State()
	got := append([]string{currentID(st)}, ids(st.Queue)...)
	slices.Sort(got)
	if !slices.Equal(got, []string{"S1", "S2"}) {
		t.Errorf("current+queue = %v, want S1 and S2", got)
	}
	if st.Context.Type != core.ContextStandalone {
		t.Errorf("Context = %q, want standalone", st.Context.Type)
	}
	checkInvariant(t, st)
}

func TestSuggestionsDiscardedAfterNewSelection(t *testing.T) {
	h := newHarness(t)
	h.provider.trending = tracks("S1")

	h.play(t, track("T"), nil)
	h.player.last().events.OnEnded()
	// A new pick before the fetch completes wins.
	if err := h.store.PlayTrack(context.Background(), track("U"), nil); err != nil {
		t.Fatal(err)
	}
	h.store.Wait()

	if got := currentID(h.store.State()); got != "U" {
		t.Errorf("current = %q, want U", got)
	}
}

func TestPreviousGoesBackInHistory(t *testing.T) {
	h := newHarness(t)
	h.play(t, track("X"), nil)
	h.play(t, track("Y"), nil)
	h.play(t, track("Z"), nil)
	h.player.last().setPosition(1)

	if err := h.store.Previous(context.Background()); err != nil {
		t.Fatal(err)
	}
	h.store.Wait()

	st := h.store.State()
	if currentID(st) != "Y" {
		t.Errorf("current = %q, want Y", currentID(st))
	}
	if !slices.Equal(ids(st.History), []string{"X"}) {
		t.Errorf("History = %v, want [X]", ids(st.History))
	}
	if len(st.PriorityQueue) == 0 || st.PriorityQueue[0].ID != "Z" {
		t.Errorf("PriorityQueue = %v, want Z first", ids(st.PriorityQueue))
	}

	// Forward again returns to Z.
	h.end(t)
	if got := currentID(h.store.State()); got != "Z" {
		t.Errorf("after next, current = %q, want Z", got)
	}
}

func TestPreviousRestartsAfterThreshold(t *testing.T) {
	h := newHarness(t)
	h.play(t, track("X"), nil)
	h.play(t, track("Y"), nil)
	s := h.player.last()
	s.events.OnReady(200)
	s.setPosition(10)

	if err := h.store.Previous(context.Background()); err != nil {
		t.Fatal(err)
	}

	st := h.store.State()
	if currentID(st) != "Y" || h.player.starts() != 2 {
		t.Errorf("current = %q starts %d, want Y restarted in place", currentID(st), h.player.starts())
	}
	if len(s.seeks) != 1 || s.seeks[0] != 0 {
		t.Errorf("seeks = %v, want [0]", s.seeks)
	}
	if !slices.Equal(ids(st.History), []string{"X"}) {
		t.Errorf("History = %v, want [X]", ids(st.History))
	}
}

func TestPreviousWithoutHistoryRestarts(t *testing.T) {
	h := newHarness(t)
	h.play(t, track("X"), nil)
	s := h.player.last()
	s.setPosition(1)

	if err := h.store.Previous(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(s.seeks) != 1 || s.seeks[0] != 0 {
		t.Errorf("seeks = %v, want [0]", s.seeks)
	}
}

func TestPreviousFromIdleStartsSession(t *testing.T) {
	h := newHarness(t)
	h.play(t, track("A"), nil)
	h.play(t, track("B"), nil)
	h.player.last().events.OnReady(200)
	h.end(t)

	st := h.store.State()
	if st.Status != core.StatusIdle || currentID(st) != "B" {
		t.Fatalf("status %q current %q, want idle on B", st.Status, currentID(st))
	}
	before := h.player.starts()

	if err := h.store.Previous(context.Background()); err != nil {
		t.Fatal(err)
	}

	st = h.store.State()
	if h.player.starts() != before+1 {
		t.Errorf("starts = %d, want %d", h.player.starts(), before+1)
	}
	if currentID(st) != "A" || st.Status != core.StatusLoading {
		t.Errorf("current %q status %q, want A loading", currentID(st), st.Status)
	}
	if !slices.Equal(ids(st.PriorityQueue), []string{"B"}) {
		t.Errorf("PriorityQueue = %v, want [B]", ids(st.PriorityQueue))
	}
}

func TestPreviousFromIdleWithoutHistoryReplays(t *testing.T) {
	h := newHarness(t)
	h.play(t, track("X"), nil)
	h.player.last().events.OnReady(200)
	h.end(t)
	if st := h.store.State(); st.Status != core.StatusIdle {
		t.Fatalf("status = %q, want idle", st.Status)
	}

	if err := h.store.Previous(context.Background()); err != nil {
		t.Fatal(err)
	}

	st := h.store.State()
	if h.player.starts() != 2 || currentID(st) != "X" {
		t.Errorf("starts %d current %q, want X started again", h.player.starts(), currentID(st))
	}
	if len(st.History) != 0 {
		t.Errorf("History = %v, want empty", ids(st.History))
	}
}

func TestPreviousPlaysStandalone(t *testing.T) {
	h := newHarness(t)
	p := newPlaylist(t, h, "Road trip", "A", "B", "C")
	ctx := context.Background()

	if err := h.store.PlayPlaylist(ctx, p.ID, false); err != nil {
		t.Fatal(err)
	}
	if err := h.store.Next(ctx); err != nil {
		t.Fatal(err)
	}
	h.player.last().setPosition(1)

	if err := h.store.Previous(ctx); err != nil {
		t.Fatal(err)
	}
	h.store.Wait()

	st := h.store.State()
	if currentID(st) != "A" {
		t.Errorf("current = %q, want A", currentID(st))
	}
	if st.Context == nil || st.Context.Type != core.ContextStandalone {
		t.Errorf("Context = %+v, want standalone", st.Context)
	}
	if st.CurrentPlaylist != nil {
		t.Errorf("CurrentPlaylist = %v, want nil", st.CurrentPlaylist.ID)
	}
	if !slices.Equal(ids(st.PriorityQueue), []string{"B"}) || !slices.Equal(ids(st.Queue), []string{"C"}) {
		t.Errorf("priority %v queue %v, want [B] [C]", ids(st.PriorityQueue), ids(st.Queue))
	}
}

func TestToggleShufflePreservesMembership(t *testing.T) {
	h := newHarness(t)
	liked := tracks("A", "B", "C", "D", "E", "F", "G", "H")
	for _, tr := range liked {
		h.store.ToggleLike(tr)
	}
	h.play(t, track("A"), nil)
	for _, id := range []string{"P1", "P2", "P3"} {
		if err := h.store.AddToQueue(track(id)); err != nil {
			t.Fatal(err)
		}
	}
	before := h.store.State()

	if !h.store.ToggleShuffle() {
		t.Fatal("ToggleShuffle() = false, want true")
	}

	after := h.store.State()
	for _, pair := range [][2][]core.Track{
		{before.Queue, after.Queue},
		{before.PriorityQueue, after.PriorityQueue},
	} {
		a, b := ids(pair[0]), ids(pair[1])
		slices.Sort(a)
		slices.Sort(b)
		if !slices.Equal(a, b) {
			t.Errorf("members changed: %v -> %v", a, b)
		}
	}
	if !after.Context.Shuffled {
		t.Error("context should record the shuffle")
	}
	if m := h.lastNote(t); m.Text != "Queue shuffled" {
		t.Errorf("notification = %q", m.Text)
	}
}

func TestPlayPlaylistShuffled(t *testing.T) {
	h := newHarness(t)
	p := newPlaylist(t, h, "Big", "A", "B", "C", "D", "E", "F")

	if err := h.store.PlayPlaylist(context.Background(), p.ID, true); err != nil {
		t.Fatal(err)
	}
	h.store.Wait()

	st := h.store.State()
	got := append([]string{currentID(st)}, ids(st.Queue)...)
	slices.Sort(got)
	if !slices.Equal(got, []string{"A", "B", "C", "D", "E", "F"}) {
		t.Errorf("current+queue = %v, want every playlist track once", got)
	}
	if !st.Context.Shuffled || st.Context.SourceID != p.ID {
		t.Errorf("Context = %+v", st.Context)
	}
}

func TestShufflePlaylist(t *testing.T) {
	h := newHarness(t)
	if err := h.store.ShufflePlaylist(context.Background(), nil); err == nil {
		t.Error("ShufflePlaylist(nil) should fail")
	}
	if m := h.lastNote(t); m.Text != "No tracks to shuffle" {
		t.Errorf("notification = %q", m.Text)
	}

	if err := h.store.ShufflePlaylist(context.Background(), tracks("A", "B", "C", "A")); err != nil {
		t.Fatal(err)
	}
	h.store.Wait()
	st := h.store.State()
	if len(st.Queue) != 2 {
		t.Errorf("Queue = %v, want 2 tracks", ids(st.Queue))
	}
	checkInvariant(t, st)
}

// TestInvariantUnderRandomOperations drives the store through random
// operations and checks the queue invariant after each one.
func TestInvariantUnderRandomOperations(t *testing.T) {
	h := newHarness(t)
	pool := tracks("a", "b", "c", "d", "e", "f", "g", "h")
	h.provider.similarErr = nil
	h.provider.similar = map[string][]core.Track{}
	for i, tr := range pool {
		h.provider.similar[tr.ID] = []core.Track{pool[(i+1)%len(pool)], pool[(i+3)%len(pool)], tr}
	}
	h.provider.trending = pool[:3]

	p := newPlaylist(t, h, "All", "a", "b", "c", "d", "e")
	for _, tr := range pool[3:] {
		h.store.ToggleLike(tr)
	}

	ctx := context.Background()
	rng := rand.New(rand.NewPCG(42, 42))
	pick := func() core.Track { return pool[rng.IntN(len(pool))] }

	ops := []func(){
		func() { _ = h.store.PlayTrack(ctx, pick(), nil) },
		func() { _ = h.store.AddToPriorityQueue(pick()) },
		func() { _ = h.store.AddToQueue(pick()) },
		func() { _ = h.store.Next(ctx) },
		func() { _ = h.store.Previous(ctx) },
		func() { h.store.ToggleShuffle() },
		func() { h.store.ToggleRepeat() },
		func() { _ = h.store.PlayPlaylist(ctx, p.ID, rng.IntN(2) == 0) },
		func() { _ = h.store.PlayLikedSongs(ctx, rng.IntN(2) == 0) },
		func() { _ = h.store.RemoveFromQueue(0) },
		func() {
			if s := h.player.last(); s != nil {
				s.events.OnEnded()
			}
		},
	}

	for i := range 500 {
		ops[rng.IntN(len(ops))]()
		h.store.Wait()
		st := h.store.State()
		checkInvariant(t, st)
		if t.Failed() {
			t.Fatalf("invariant broken at step %d", i)
		}
	}
}
