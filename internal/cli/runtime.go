package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/FL1CKfps/Harmony-player/internal/audio"
	"github.com/FL1CKfps/Harmony-player/internal/core"
	"github.com/FL1CKfps/Harmony-player/internal/discovery"
	"github.com/FL1CKfps/Harmony-player/internal/httpclient"
	"github.com/FL1CKfps/Harmony-player/internal/kv"
	"github.com/FL1CKfps/Harmony-player/internal/lastfm"
	"github.com/FL1CKfps/Harmony-player/internal/logging"
	"github.com/FL1CKfps/Harmony-player/internal/metrics"
	"github.com/FL1CKfps/Harmony-player/internal/notify"
	"github.com/FL1CKfps/Harmony-player/internal/saavn"
	"github.com/FL1CKfps/Harmony-player/internal/store"
	"github.com/FL1CKfps/Harmony-player/internal/youtube"
)

const appName = "Harmony"

// runtimeOptions selects which optional parts a command needs.
type runtimeOptions struct {
	// console receives log records; nil keeps logs to the file only.
	console io.Writer
	// notes, when set, also receives store notifications.
	notes core.Notifier
	// session enables desktop notifications and the metrics endpoint.
	session bool
}

// runtime is the wired application behind every command.
type runtime struct {
	log     *zap.Logger
	songs   *saavn.Client
	metrics *metrics.Metrics
	store   *store.Store

	closers []func()
}

func newRuntime(ctx context.Context, opts runtimeOptions) (*runtime, error) {
	log, err := logging.New(cfg.Log, opts.console)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	rt := &runtime{log: log, metrics: metrics.New()}
	rt.closers = append(rt.closers, func() { _ = log.Sync() })

	kvStore, err := kv.Open(cfg.Storage, log)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to open library storage: %w", err)
	}
	if c, ok := kvStore.(io.Closer); ok {
		rt.closers = append(rt.closers, func() { _ = c.Close() })
	}

	httpOpts := []httpclient.Option{
		httpclient.WithTimeout(time.Duration(cfg.Saavn.Timeout) * time.Second),
		httpclient.WithLogger(log),
		httpclient.WithObserver(rt.metrics),
	}

	rt.songs = saavn.New(cfg.Saavn.BaseURL, httpOpts...)

	var videos discovery.Videos
	if cfg.YouTube.APIKey != "" {
		videos = youtube.New(youtube.DefaultBaseURL, cfg.YouTube.APIKey, cfg.YouTube.Region, httpOpts...)
	}
	var scrobbler discovery.Scrobbler
	if cfg.LastFM.APIKey != "" {
		scrobbler = lastfm.New(lastfm.DefaultBaseURL, cfg.LastFM.APIKey, log, httpOpts...)
	}

	notifiers := notify.Multi{notify.NewLog(log)}
	if opts.session && cfg.Notify.Desktop {
		notifiers = append(notifiers, notify.NewDesktop(appName, log))
	}
	if opts.notes != nil {
		notifiers = append(notifiers, opts.notes)
	}

	similar, trending, suggestions := cfg.Cache.Durations()
	rt.store = store.New(store.Options{
		Player:          audio.NewPlayer(log),
		Provider:        discovery.New(rt.songs, videos, scrobbler, log),
		KV:              kvStore,
		Notifier:        notifiers,
		Logger:          log,
		Metrics:         rt.metrics,
		Volume:          cfg.Playback.VolumeFraction(),
		Shuffle:         cfg.Playback.Shuffle,
		Repeat:          parseRepeat(cfg.Playback.Repeat),
		SimilarTTL:      similar,
		TrendingTTL:     trending,
		SuggestionsTTL:  suggestions,
		MaxCacheEntries: cfg.Cache.MaxEntries,
	})
	rt.closers = append(rt.closers, rt.store.Close)

	if opts.session && cfg.Metrics.Listen != "" {
		go func() {
			if err := rt.metrics.Serve(ctx, cfg.Metrics.Listen, log); err != nil {
				log.Warn("metrics endpoint stopped", zap.Error(err))
			}
		}()
	}

	log.Debug("runtime ready",
		zap.String("storage", cfg.Storage.Backend),
		zap.Bool("youtube", videos != nil),
		zap.Bool("lastfm", scrobbler != nil),
		zap.Bool("audio", audio.Available))

	return rt, nil
}

// Close releases everything in reverse order of acquisition.
func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}

// parseRepeat maps the config spelling onto a repeat mode.
func parseRepeat(s string) core.RepeatMode {
	switch strings.ToLower(s) {
	case "one":
		return core.RepeatOne
	case "all":
		return core.RepeatAll
	default:
		return core.RepeatOff
	}
}

// stderrLogs returns the console writer for commands that share the
// terminal with their own output. Without --verbose logs only go to the
// log file, if any.
func stderrLogs() io.Writer {
	if !verbose {
		return nil
	}
	return os.Stderr
}
