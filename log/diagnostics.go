package log

import (
	"fmt"
	"sync"
)

// Diagnostics wraps a Logger with warnings that are emitted at most once
// per key for the lifetime of the Diagnostics value.
type Diagnostics struct {
	Logger

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewDiagnostics wraps logger. A nil logger discards everything.
func NewDiagnostics(logger Logger) *Diagnostics {
	if logger == nil {
		logger = Discard
	}
	return &Diagnostics{Logger: logger, seen: make(map[string]struct{})}
}

// WarnOnce logs a warning the first time key is seen and reports whether it
// did.
func (d *Diagnostics) WarnOnce(key string, format string, v ...interface{}) bool {
	d.mu.Lock()
	_, done := d.seen[key]
	d.seen[key] = struct{}{}
	d.mu.Unlock()

	if done {
		return false
	}
	d.Warningf(format, v...)
	return true
}

// Entry is one message captured by a Recorder
type Entry struct {
	Level   Level
	Message string
}

// Recorder is a Logger keeping every message in memory
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// Entries returns a copy of the captured messages
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Count returns the number of captured messages at level
func (r *Recorder) Count(level Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

func (r *Recorder) record(level Level, msg string) {
	r.mu.Lock()
	r.entries = append(r.entries, Entry{Level: level, Message: msg})
	r.mu.Unlock()
}

func (r *Recorder) Debug(v ...interface{}) { r.record(Debug, fmt.Sprint(v...)) }
func (r *Recorder) Debugf(format string, v ...interface{}) {
	r.record(Debug, fmt.Sprintf(format, v...))
}
func (r *Recorder) Notice(v ...interface{}) { r.record(Notice, fmt.Sprint(v...)) }
func (r *Recorder) Noticef(format string, v ...interface{}) {
	r.record(Notice, fmt.Sprintf(format, v...))
}
func (r *Recorder) Info(v ...interface{}) { r.record(Info, fmt.Sprint(v...)) }
func (r *Recorder) Infof(format string, v ...interface{}) {
	r.record(Info, fmt.Sprintf(format, v...))
}
func (r *Recorder) Warning(v ...interface{}) { r.record(Warning, fmt.Sprint(v...)) }
func (r *Recorder) Warningf(format string, v ...interface{}) {
	r.record(Warning, fmt.Sprintf(format, v...))
}
func (r *Recorder) Error(v ...interface{}) { r.record(Error, fmt.Sprint(v...)) }
func (r *Recorder) Errorf(format string, v ...interface{}) {
	r.record(Error, fmt.Sprintf(format, v...))
}
