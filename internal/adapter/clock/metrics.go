package clock

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type clockCollector struct {
	clock *NTP

	offsetSeconds   *prometheus.Desc
	lastSyncSeconds *prometheus.Desc
	healthy         *prometheus.Desc
}

func (c *clockCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.offsetSeconds
	ch <- c.lastSyncSeconds
	ch <- c.healthy
}

func (c *clockCollector) Collect(ch chan<- prometheus.Metric) {
	ok, offset, lastSync, _ := c.clock.Health()
	ch <- prometheus.MustNewConstMetric(c.offsetSeconds, prometheus.GaugeValue, offset.Seconds())
	var synced float64
	if !lastSync.Equal(time.Time{}) {
		synced = float64(lastSync.Unix())
	}
	ch <- prometheus.MustNewConstMetric(c.lastSyncSeconds, prometheus.GaugeValue, synced)
	var healthy float64
	if ok {
		healthy = 1
	}
	ch <- prometheus.MustNewConstMetric(c.healthy, prometheus.GaugeValue, healthy)
}

// RegisterMetrics exposes the health of an NTP clock on reg.
func RegisterMetrics(reg prometheus.Registerer, clock *NTP) error {
	return reg.Register(&clockCollector{
		clock: clock,
		offsetSeconds: prometheus.NewDesc(
			"crowdfund_clock_offset_seconds",
			"Positive means local time is behind NTP time",
			nil, nil,
		),
		lastSyncSeconds: prometheus.NewDesc(
			"crowdfund_clock_last_sync_unix",
			"Last successful sync Unix timestamp",
			nil, nil,
		),
		healthy: prometheus.NewDesc(
			"crowdfund_clock_healthy",
			"1 if clock is healthy, otherwise 0",
			nil, nil,
		),
	})
}
