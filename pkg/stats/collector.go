package stats

import (
	"github.com/prometheus/client_golang/prometheus"
)

type counterMetric struct {
	desc  *prometheus.Desc
	label string
}

// Collector implements prometheus.Collector, reading Stats on each scrape.
type Collector struct {
	stats *Stats

	commandsTotal    *prometheus.Desc
	etherOpsTotal    *prometheus.Desc
	linkTotal        *prometheus.Desc
	bridgeInitsTotal *prometheus.Desc

	metrics [numCounters]counterMetric
}

// NewCollector creates a Collector exporting s.
func NewCollector(s *Stats) *Collector {
	c := &Collector{
		stats: s,

		commandsTotal: prometheus.NewDesc(
			"plipbox_commands_total",
			"Total console commands by result.",
			[]string{"result"}, nil,
		),
		etherOpsTotal: prometheus.NewDesc(
			"plipbox_ether_operations_total",
			"Total ethernet lifecycle operations.",
			[]string{"op"}, nil,
		),
		linkTotal: prometheus.NewDesc(
			"plipbox_link_transitions_total",
			"Total ethernet link transitions.",
			[]string{"state"}, nil,
		),
		bridgeInitsTotal: prometheus.NewDesc(
			"plipbox_bridge_inits_total",
			"Total plipbox re-initializations.",
			nil, nil,
		),
	}
	c.metrics = [numCounters]counterMetric{
		CmdOK:          {c.commandsTotal, "ok"},
		CmdParseError:  {c.commandsTotal, "parse_error"},
		CmdFailed:      {c.commandsTotal, "failed"},
		EtherInit:      {c.etherOpsTotal, "init"},
		EtherConfigure: {c.etherOpsTotal, "configure"},
		EtherShutdown:  {c.etherOpsTotal, "shutdown"},
		LinkUp:         {c.linkTotal, "up"},
		LinkDown:       {c.linkTotal, "down"},
		BridgeInit:     {c.bridgeInitsTotal, ""},
	}
	return c
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.commandsTotal
	ch <- c.etherOpsTotal
	ch <- c.linkTotal
	ch <- c.bridgeInitsTotal
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.stats.lock.Lock()
	totals := c.stats.totals
	c.stats.lock.Unlock()
	for n, m := range c.metrics {
		var labels []string
		if m.label != "" {
			labels = []string{m.label}
		}
		ch <- prometheus.MustNewConstMetric(m.desc, prometheus.CounterValue, float64(totals[n]), labels...)
	}
}
