// Package notify delivers user-visible messages to the log, the desktop and
// the terminal UI.
package notify

import (
	"sync"
	"time"

	"github.com/gen2brain/beeep"
	"go.uber.org/zap"

	"github.com/FL1CKfps/Harmony-player/internal/core"
	"github.com/FL1CKfps/Harmony-player/internal/logging"
)

// Message is a single notification.
type Message struct {
	Kind core.NotifyKind
	Text string
	At   time.Time
}

// Log writes notifications to a zap logger.
type Log struct {
	log *zap.Logger
}

// NewLog creates a logging notifier.
func NewLog(log *zap.Logger) *Log {
	return &Log{log: logging.OrNop(log)}
}

// Notify logs successes at info and errors at warn.
func (l *Log) Notify(kind core.NotifyKind, message string) {
	if kind == core.NotifyError {
		l.log.Warn(message, zap.String("kind", string(kind)))
		return
	}
	l.log.Info(message, zap.String("kind", string(kind)))
}

// Desktop raises native desktop notifications.
type Desktop struct {
	appName string
	log     *zap.Logger
	send    func(title, message string, icon any) error
}

// NewDesktop creates a desktop notifier.
func NewDesktop(appName string, log *zap.Logger) *Desktop {
	beeep.AppName = appName
	return &Desktop{appName: appName, log: logging.OrNop(log), send: beeep.Notify}
}

// Notify sends the message asynchronously; delivery failures are logged.
func (d *Desktop) Notify(kind core.NotifyKind, message string) {
	title := d.appName
	if kind == core.NotifyError {
		title += ": error"
	}
	go func() {
		if err := d.send(title, message, ""); err != nil {
			d.log.Debug("desktop notification failed", zap.Error(err))
		}
	}()
}

// Multi fans a notification out to several notifiers.
type Multi []core.Notifier

// Notify forwards to every notifier in order.
func (m Multi) Notify(kind core.NotifyKind, message string) {
	for _, n := range m {
		if n != nil {
			n.Notify(kind, message)
		}
	}
}

// Channel buffers notifications for a UI loop. When the buffer is full the
// oldest pending message is dropped.
type Channel struct {
	ch  chan Message
	now func() time.Time
	mu  sync.Mutex
}

// NewChannel creates a channel notifier with the given buffer size.
func NewChannel(size int) *Channel {
	if size <= 0 {
		size = 16
	}
	return &Channel{ch: make(chan Message, size), now: time.Now}
}

// Notify enqueues the message without blocking.
func (c *Channel) Notify(kind core.NotifyKind, message string) {
	msg := Message{Kind: kind, Text: message, At: c.now()}
	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		select {
		case c.ch <- msg:
			return
		default:
		}
		select {
		case <-c.ch:
		default:
		}
	}
}

// C returns the receive side.
func (c *Channel) C() <-chan Message {
	return c.ch
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

// Notify appends the message.
func (r *Recorder) Notify(kind core.NotifyKind, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Kind: kind, Text: message})
}

// Messages returns a copy of everything recorded.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Last returns the most recent message.
func (r *Recorder) Last() (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return Message{}, false
	}
	return r.messages[len(r.messages)-1], true
}

// Reset forgets everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
}
