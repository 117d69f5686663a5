// Package audio implements core.Player on top of gopxl/beep.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	herrors "github.com/FL1CKfps/Harmony-player/internal/errors"
)

// maxStreamBytes caps how much of a stream is buffered in memory.
const maxStreamBytes = 64 << 20

type decoder func(io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error)

var decoders = map[string]decoder{
	"mp3": mp3.Decode,
	"flac": func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
		return flac.Decode(rc)
	},
	"wav": func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
		return wav.Decode(rc)
	},
	"ogg": vorbis.Decode,
}

var contentTypes = map[string]string{
	"audio/mpeg":   "mp3",
	"audio/mp3":    "mp3",
	"audio/flac":   "flac",
	"audio/x-flac": "flac",
	"audio/wav":    "wav",
	"audio/x-wav":  "wav",
	"audio/wave":   "wav",
	"audio/ogg":    "ogg",
	"audio/vorbis": "ogg",
}

// memStream keeps the decoder's source seekable.
type memStream struct {
	*bytes.Reader
}

func (memStream) Close() error { return nil }

// Fetch downloads the stream at rawURL and decodes it fully into memory so
// it can be seeked.
func Fetch(ctx context.Context, hc *http.Client, rawURL string) (beep.StreamSeekCloser, beep.Format, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("%w: %v", herrors.ErrPlaybackLoad, err)
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("%w: %v", herrors.ErrPlaybackLoad, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, beep.Format{}, fmt.Errorf("%w: stream returned %s", herrors.ErrPlaybackLoad, resp.Status)
	}

	kind := formatOf(rawURL, resp.Header.Get("Content-Type"))
	dec, ok := decoders[kind]
	if !ok {
		return nil, beep.Format{}, fmt.Errorf("%w: unsupported stream format %q", herrors.ErrPlaybackLoad, kind)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxStreamBytes))
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("%w: %v", herrors.ErrPlaybackLoad, err)
	}

	streamer, format, err := dec(memStream{bytes.NewReader(data)})
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("%w: %v", herrors.ErrPlaybackLoad, err)
	}
	return streamer, format, nil
}

// formatOf picks a decoder key from the Content-Type, then the URL extension.
func formatOf(rawURL, contentType string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		if kind, ok := contentTypes[mt]; ok {
			return kind
		}
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
	if ext == "oga" {
		ext = "ogg"
	}
	return ext
}
