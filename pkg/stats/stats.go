// Package stats keeps the event counters of a plipbox device.
package stats

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Counter identifies a counter.
type Counter int

// Counters.
const (
	CmdOK Counter = iota
	CmdParseError
	CmdFailed
	EtherInit
	EtherConfigure
	EtherShutdown
	LinkUp
	LinkDown
	BridgeInit

	numCounters
)

var counterNames = [numCounters]string{
	CmdOK:          "cmd ok",
	CmdParseError:  "cmd parse err",
	CmdFailed:      "cmd failed",
	EtherInit:      "eth init",
	EtherConfigure: "eth configure",
	EtherShutdown:  "eth shutdown",
	LinkUp:         "link up",
	LinkDown:       "link down",
	BridgeInit:     "plipbox init",
}

// String implements fmt.Stringer.
func (c Counter) String() string {
	if c < 0 || c >= numCounters {
		return fmt.Sprintf("counter(%d)", int(c))
	}
	return counterNames[c]
}

// Stats holds the counters, safe for concurrent use.
// Values are cleared by Reset while totals keep growing for
// monotonic exporters.
type Stats struct {
	lock   sync.Mutex
	values [numCounters]uint64
	totals [numCounters]uint64
	since  time.Time

	now func() time.Time
}

// New creates Stats.
func New() *Stats {
	s := &Stats{now: time.Now}
	s.since = s.now()
	return s
}

// Inc increments a counter.
func (s *Stats) Inc(c Counter) {
	s.lock.Lock()
	s.values[c]++
	s.totals[c]++
	s.lock.Unlock()
}

// Get returns the value of a counter since the last Reset.
func (s *Stats) Get(c Counter) uint64 {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.values[c]
}

// Total returns the value of a counter since creation.
func (s *Stats) Total(c Counter) uint64 {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.totals[c]
}

// Reset clears the values.
func (s *Stats) Reset() {
	s.lock.Lock()
	s.values = [numCounters]uint64{}
	s.since = s.now()
	s.lock.Unlock()
}

// Dump prints the values, one counter per line.
func (s *Stats) Dump(w io.Writer) error {
	s.lock.Lock()
	values, since := s.values, s.since
	s.lock.Unlock()
	if _, err := fmt.Fprintf(w, "since %s\r\n", since.Format(time.RFC3339)); err != nil {
		return err
	}
	for c, val := range values {
		if _, err := fmt.Fprintf(w, "%-14s %10d\r\n", Counter(c), val); err != nil {
			return err
		}
	}
	return nil
}
