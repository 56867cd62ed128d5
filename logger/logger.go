// Package logger keeps a central, bounded log of tagged entries. Repeated
// entries are folded into one with a repeat count. Entries can be echoed
// to a writer as they arrive (stdout or a log file) and the most recent
// ones read back by the monitor.
package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Entry is one line of the log.
type Entry struct {
	Timestamp time.Time
	Tag       string
	Detail    string
	Repeated  int
}

func (e Entry) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("%s: %s", e.Tag, e.Detail))
	if e.Repeated > 0 {
		s.WriteString(fmt.Sprintf(" (repeat x%d)", e.Repeated+1))
	}
	s.WriteString("\n")
	return s.String()
}

// Logger is a bounded list of entries safe for concurrent use.
type Logger struct {
	mu         sync.Mutex
	maxEntries int
	entries    []Entry
	echo       io.Writer
}

// New creates a logger holding at most maxEntries entries.
func New(maxEntries int) *Logger {
	return &Logger{maxEntries: maxEntries}
}

// Log adds an entry, or bumps the repeat count when it matches the last one.
func (l *Logger) Log(tag, detail string) {
	tag = strings.ReplaceAll(tag, "\n", "")
	detail = strings.ReplaceAll(detail, "\n", "")

	l.mu.Lock()
	defer l.mu.Unlock()

	var e *Entry
	if n := len(l.entries); n > 0 && l.entries[n-1].Tag == tag && l.entries[n-1].Detail == detail {
		e = &l.entries[n-1]
		e.Repeated++
		e.Timestamp = time.Now()
	} else {
		l.entries = append(l.entries, Entry{Timestamp: time.Now(), Tag: tag, Detail: detail})
		if len(l.entries) > l.maxEntries {
			l.entries = append(l.entries[:0], l.entries[len(l.entries)-l.maxEntries:]...)
		}
		e = &l.entries[len(l.entries)-1]
	}

	if l.echo != nil {
		io.WriteString(l.echo, e.String())
	}
}

// Logf is Log with a format string.
func (l *Logger) Logf(tag, format string, args ...interface{}) {
	l.Log(tag, fmt.Sprintf(format, args...))
}

// Clear removes every entry.
func (l *Logger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = l.entries[:0]
}

// SetEcho writes every new entry to w as well. nil stops echoing.
func (l *Logger) SetEcho(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.echo = w
}

// Write writes every entry to w.
func (l *Logger) Write(w io.Writer) {
	l.Tail(w, l.maxEntries)
}

// Tail writes the last n entries to w.
func (l *Logger) Tail(w io.Writer, n int) {
	for _, e := range l.Recent(n) {
		io.WriteString(w, e.String())
	}
}

// Recent returns a copy of the last n entries.
func (l *Logger) Recent(n int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n > len(l.entries) {
		n = len(l.entries)
	}
	if n < 0 {
		n = 0
	}
	c := make([]Entry, n)
	copy(c, l.entries[len(l.entries)-n:])
	return c
}

// Len returns the number of entries held.
func (l *Logger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// ----------------------------------------------------------------------------
// Central log
// ----------------------------------------------------------------------------

const maxCentral = 256

var central = New(maxCentral)

// Log adds an entry to the central log.
func Log(tag, detail string) {
	central.Log(tag, detail)
}

// Logf adds a formatted entry to the central log.
func Logf(tag, format string, args ...interface{}) {
	central.Logf(tag, format, args...)
}

// Clear empties the central log.
func Clear() {
	central.Clear()
}

// SetEcho echoes central log entries to w.
func SetEcho(w io.Writer) {
	central.SetEcho(w)
}

// Write writes the central log to w.
func Write(w io.Writer) {
	central.Write(w)
}

// Tail writes the last n central entries to w.
func Tail(w io.Writer, n int) {
	central.Tail(w, n)
}

// Recent returns the last n central entries.
func Recent(n int) []Entry {
	return central.Recent(n)
}
