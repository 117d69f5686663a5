package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/FL1CKfps/Harmony-player/internal/core"
	"github.com/FL1CKfps/Harmony-player/internal/notify"
	"github.com/FL1CKfps/Harmony-player/internal/tail"
)

// sessionFlags control how a headless playback session prints events.
type sessionFlags struct {
	noEmoji   bool
	timestamp bool
	format    string
	interval  time.Duration
	history   int
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noEmoji, "no-emoji", false, "disable emoji output")
	cmd.Flags().BoolVarP(&f.timestamp, "timestamp", "t", false, "show timestamps")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "custom event format template")
	cmd.Flags().DurationVarP(&f.interval, "interval", "i", time.Second, "poll interval")
	cmd.Flags().IntVar(&f.history, "history", 5, "recently played tracks to show first")
}

// signalContext is cancelled on Ctrl+C or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// printNotices writes store notifications to stderr as they arrive.
func printNotices(ctx context.Context, ch *notify.Channel) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-ch.C():
			prefix := "✓"
			if n.Kind == core.NotifyError {
				prefix = "✗"
			}
			fmt.Fprintf(os.Stderr, "%s %s\n", prefix, n.Text)
		}
	}
}

// eventJSON is one line of --json session output.
type eventJSON struct {
	Type      string  `json:"type"`
	Timestamp string  `json:"timestamp"`
	TrackID   string  `json:"track_id,omitempty"`
	Title     string  `json:"title,omitempty"`
	Artists   string  `json:"artists,omitempty"`
	Status    string  `json:"status"`
	Volume    float64 `json:"volume"`
	Repeat    string  `json:"repeat"`
	Shuffled  bool    `json:"shuffled"`
}

func toEventJSON(e tail.Event) eventJSON {
	out := eventJSON{Type: e.Type.String(), Timestamp: e.Timestamp.Format(time.RFC3339)}
	snap := e.Current
	if (e.Type == tail.EventTrackComplete || e.Type == tail.EventTrackSkip) && e.Previous != nil {
		snap = e.Previous
	}
	if snap == nil {
		return out
	}
	if snap.Track != nil {
		out.TrackID = snap.Track.ID
		out.Title = snap.Track.Name
		out.Artists = snap.Track.PrimaryArtists
	}
	out.Status = string(snap.Status)
	out.Volume = snap.Playback.Volume
	out.Repeat = string(snap.Repeat)
	out.Shuffled = snap.Shuffled
	return out
}

// runSession calls start, then prints playback events until the queue is
// exhausted or ctx is cancelled.
func runSession(ctx context.Context, rt *runtime, flags *sessionFlags, start func(ctx context.Context) error) error {
	formatter := tail.NewFormatter(
		tail.WithEmoji(!flags.noEmoji),
		tail.WithTimestamp(flags.timestamp),
		tail.WithTemplate(flags.format),
	)

	if !JSONOutput() {
		showRecent(rt, formatter, flags.history)
	}

	if err := start(ctx); err != nil {
		return err
	}

	watcher := tail.NewWatcher(rt.store, flags.interval)

	errCh := make(chan error, 1)
	go func() {
		errCh <- watcher.Start(ctx)
	}()

	for {
		select {
		case event, ok := <-watcher.Events():
			if !ok {
				return nil
			}
			if JSONOutput() {
				_ = printJSON(toEventJSON(event))
			} else {
				fmt.Println(formatter.Format(event))
			}
			if event.Type == tail.EventStop && finished(rt) {
				watcher.Stop()
				return nil
			}

		case err := <-errCh:
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
}

// finished reports whether playback stays idle once background fetches,
// such as the end-of-queue suggestions, have settled.
func finished(rt *runtime) bool {
	rt.store.Wait()
	return rt.store.State().Status == core.StatusIdle
}

// showRecent prints up to n recently played tracks, oldest first, so the
// newest sits right above the live events.
func showRecent(rt *runtime, formatter *tail.Formatter, n int) {
	recent := rt.store.RecentlyPlayed()
	if n < len(recent) {
		recent = recent[:n]
	}
	for i := len(recent) - 1; i >= 0; i-- {
		fmt.Println(formatter.FormatRecent(recent[i]))
	}
}
