// Package status carries operator-facing status lines from background
// goroutines to whatever displays them.
//
// Producers push entries into a Log from any goroutine. A single Refresher
// drains the Log on a fixed interval into a bounded View and fans each entry
// out to sinks (tray tooltip, console, preview server). Background work never
// touches display state directly.
package status

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Level classifies an entry for display.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Entry is one timestamped status line.
type Entry struct {
	Time    time.Time
	Level   Level
	Message string
}

func (e Entry) String() string {
	return fmt.Sprintf("[%s] %s", e.Time.Format("15:04:05"), e.Message)
}

const (
	DefaultMaxLines        = 400
	DefaultRefreshInterval = 60 * time.Millisecond
)

// Log is the outbox producers write to. Pending entries beyond the cap
// drop the oldest.
type Log struct {
	mu      sync.Mutex
	pending []Entry
	limit   int
	logger  *slog.Logger
	now     func() time.Time
}

// NewLog returns a Log holding at most limit undrained entries. Each entry is
// mirrored to logger at debug level when it is non-nil.
func NewLog(limit int, logger *slog.Logger) *Log {
	if limit <= 0 {
		limit = DefaultMaxLines
	}
	return &Log{limit: limit, logger: logger, now: time.Now}
}

// Push appends an entry. It never blocks on the consumer.
func (l *Log) Push(level Level, message string) {
	entry := Entry{Time: l.now(), Level: level, Message: message}

	l.mu.Lock()
	l.pending = append(l.pending, entry)
	if over := len(l.pending) - l.limit; over > 0 {
		l.pending = append(l.pending[:0], l.pending[over:]...)
	}
	l.mu.Unlock()

	// Sinks display the line; the log copy is debug only.
	if l.logger != nil {
		l.logger.Debug(message, slog.String("status", level.String()))
	}
}

func (l *Log) Infof(format string, args ...any)  { l.Push(LevelInfo, fmt.Sprintf(format, args...)) }
func (l *Log) Warnf(format string, args ...any)  { l.Push(LevelWarn, fmt.Sprintf(format, args...)) }
func (l *Log) Errorf(format string, args ...any) { l.Push(LevelError, fmt.Sprintf(format, args...)) }

// Drain removes and returns all pending entries in push order.
func (l *Log) Drain() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.pending) == 0 {
		return nil
	}
	out := l.pending
	l.pending = nil
	return out
}

// View keeps the most recent entries for display.
type View struct {
	mu    sync.RWMutex
	lines []Entry
	limit int
}

// NewView returns a View capped at limit entries.
func NewView(limit int) *View {
	if limit <= 0 {
		limit = DefaultMaxLines
	}
	return &View{limit: limit}
}

// Append adds entries, discarding the oldest beyond the cap.
func (v *View) Append(entries ...Entry) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lines = append(v.lines, entries...)
	if over := len(v.lines) - v.limit; over > 0 {
		v.lines = append(v.lines[:0], v.lines[over:]...)
	}
}

// Lines returns a snapshot, oldest first.
func (v *View) Lines() []Entry {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]Entry, len(v.lines))
	copy(out, v.lines)
	return out
}

// Last returns the newest entry.
func (v *View) Last() (Entry, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if len(v.lines) == 0 {
		return Entry{}, false
	}
	return v.lines[len(v.lines)-1], true
}

// Sink receives drained entries on the refresher goroutine.
type Sink func(Entry)

// Refresher is the single consumer of a Log.
type Refresher struct {
	log      *Log
	view     *View
	interval time.Duration

	mu    sync.Mutex
	sinks []Sink
}

// NewRefresher wires a Log to a View.
func NewRefresher(log *Log, view *View, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Refresher{log: log, view: view, interval: interval}
}

// AddSink registers a sink. Sinks must not block for long.
func (r *Refresher) AddSink(s Sink) {
	r.mu.Lock()
	r.sinks = append(r.sinks, s)
	r.mu.Unlock()
}

// Run drains the log every interval until ctx is done, then performs a final
// drain so nothing pushed before shutdown is lost.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.Flush()
			return
		case <-ticker.C:
			r.Flush()
		}
	}
}

// Flush drains once.
func (r *Refresher) Flush() {
	entries := r.log.Drain()
	if len(entries) == 0 {
		return
	}
	r.view.Append(entries...)

	r.mu.Lock()
	sinks := append([]Sink(nil), r.sinks...)
	r.mu.Unlock()
	for _, entry := range entries {
		for _, sink := range sinks {
			sink(entry)
		}
	}
}
