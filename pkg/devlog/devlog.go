// Package devlog implements the in-memory device log.
package devlog

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// DefaultSize is the number of records kept by New.
const DefaultSize = 64

// Record is a log entry.
type Record struct {
	Time time.Time
	Text string
}

// Log is a thread-safe circular buffer of recent records.
type Log struct {
	mu    sync.Mutex
	buf   []Record
	head  int // next write position
	count int
	lost  uint64

	now func() time.Time
}

// New creates a Log with DefaultSize.
func New() *Log {
	return NewSize(DefaultSize)
}

// NewSize creates a Log holding at most size records.
func NewSize(size int) *Log {
	if size < 1 {
		size = 1
	}
	return &Log{buf: make([]Record, size), now: time.Now}
}

// Add appends a record, overwriting the oldest if full.
func (l *Log) Add(text string) {
	l.mu.Lock()
	l.buf[l.head] = Record{Time: l.now(), Text: text}
	l.head = (l.head + 1) % len(l.buf)
	if l.count < len(l.buf) {
		l.count++
	} else {
		l.lost++
	}
	l.mu.Unlock()
}

// Addf formats and appends a record.
func (l *Log) Addf(format string, args ...interface{}) {
	l.Add(fmt.Sprintf(format, args...))
}

// Records returns the stored records, oldest first.
func (l *Log) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	recs := make([]Record, l.count)
	start := (l.head - l.count + len(l.buf)) % len(l.buf)
	for n := range recs {
		recs[n] = l.buf[(start+n)%len(l.buf)]
	}
	return recs
}

// Dump prints the records, oldest first.
func (l *Log) Dump(w io.Writer) error {
	l.mu.Lock()
	lost := l.lost
	l.mu.Unlock()
	if lost > 0 {
		if _, err := fmt.Fprintf(w, "(%d lost)\r\n", lost); err != nil {
			return err
		}
	}
	for _, rec := range l.Records() {
		if _, err := fmt.Fprintf(w, "%s %s\r\n", rec.Time.Format("15:04:05.000"), rec.Text); err != nil {
			return err
		}
	}
	return nil
}

// Reset drops all records.
func (l *Log) Reset() {
	l.mu.Lock()
	for n := range l.buf {
		l.buf[n] = Record{}
	}
	l.head, l.count, l.lost = 0, 0, 0
	l.mu.Unlock()
}
