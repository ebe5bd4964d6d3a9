package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func newTestStats() *Stats {
	s := New()
	at := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return at }
	s.Reset()
	return s
}

func TestIncReset(t *testing.T) {
	s := newTestStats()
	s.Inc(CmdOK)
	s.Inc(CmdOK)
	s.Inc(LinkUp)
	require.Equal(t, uint64(2), s.Get(CmdOK))
	require.Equal(t, uint64(1), s.Get(LinkUp))
	require.Equal(t, uint64(0), s.Get(LinkDown))

	s.Reset()
	require.Equal(t, uint64(0), s.Get(CmdOK))
	require.Equal(t, uint64(2), s.Total(CmdOK))
}

func TestDump(t *testing.T) {
	s := newTestStats()
	s.Inc(CmdParseError)
	var out bytes.Buffer
	require.NoError(t, s.Dump(&out))
	lines := strings.Split(out.String(), "\r\n")
	require.Len(t, lines, int(numCounters)+2)
	require.Equal(t, "since 2020-01-02T03:04:05Z", lines[0])
	require.Equal(t, "cmd ok                  0", lines[1])
	require.Equal(t, "cmd parse err           1", lines[2])
	require.Equal(t, "plipbox init            0", lines[int(numCounters)])
}

func TestCounterString(t *testing.T) {
	require.Equal(t, "link down", LinkDown.String())
	require.Equal(t, "counter(99)", Counter(99).String())
}

func TestCollector(t *testing.T) {
	s := newTestStats()
	s.Inc(CmdOK)
	s.Inc(CmdFailed)
	s.Inc(LinkUp)
	s.Inc(BridgeInit)
	s.Reset()
	s.Inc(CmdOK)

	expected := `
# HELP plipbox_bridge_inits_total Total plipbox re-initializations.
# TYPE plipbox_bridge_inits_total counter
plipbox_bridge_inits_total 1
# HELP plipbox_commands_total Total console commands by result.
# TYPE plipbox_commands_total counter
plipbox_commands_total{result="failed"} 1
plipbox_commands_total{result="ok"} 2
plipbox_commands_total{result="parse_error"} 0
# HELP plipbox_link_transitions_total Total ethernet link transitions.
# TYPE plipbox_link_transitions_total counter
plipbox_link_transitions_total{state="down"} 0
plipbox_link_transitions_total{state="up"} 1
`
	require.NoError(t, testutil.CollectAndCompare(NewCollector(s), strings.NewReader(expected),
		"plipbox_bridge_inits_total", "plipbox_commands_total", "plipbox_link_transitions_total"))
	require.Equal(t, 9, testutil.CollectAndCount(NewCollector(s)))
}
