// Package metrics publishes Controller statistics to prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	colorgate "github.com/knzm/go-colorgate"
)

// Source is satisfied by *colorgate.Controller.
type Source interface {
	Stats() colorgate.Stats
}

type collector struct {
	src Source

	active     *prometheus.Desc
	groups     *prometheus.Desc
	waiting    *prometheus.Desc
	admissions *prometheus.Desc
	canceled   *prometheus.Desc
	grants     *prometheus.Desc
}

// NewCollector returns a prometheus.Collector that snapshots src on every
// scrape. It still needs to be registered with a registry.
func NewCollector(namespace string, src Source) prometheus.Collector {
	name := func(n string) string {
		return prometheus.BuildFQName(namespace, "colorgate", n)
	}
	return &collector{
		src: src,
		active: prometheus.NewDesc(name("active"),
			"Callers currently inside the resource, by color.", []string{"color"}, nil),
		groups: prometheus.NewDesc(name("queued_groups"),
			"Groups waiting in the queue.", nil, nil),
		waiting: prometheus.NewDesc(name("waiting"),
			"Callers parked in the queue, by color.", []string{"color"}, nil),
		admissions: prometheus.NewDesc(name("admissions_total"),
			"Admissions by color and by whether the caller had to queue.", []string{"color", "path"}, nil),
		canceled: prometheus.NewDesc(name("canceled_total"),
			"Queued callers that gave up before being admitted.", nil, nil),
		grants: prometheus.NewDesc(name("grants_total"),
			"Times a queued group was let in.", nil, nil),
	}
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.active
	ch <- c.groups
	ch <- c.waiting
	ch <- c.admissions
	ch <- c.canceled
	ch <- c.grants
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stats()

	waiting := map[colorgate.Color]int{}
	for _, g := range s.Groups {
		waiting[g.Color] += g.Waiting
	}

	for _, color := range []colorgate.Color{colorgate.A, colorgate.B} {
		active := 0
		if s.ActiveColor == color {
			active = s.Active
		}
		label := color.String()
		ch <- prometheus.MustNewConstMetric(c.active, prometheus.GaugeValue, float64(active), label)
		ch <- prometheus.MustNewConstMetric(c.waiting, prometheus.GaugeValue, float64(waiting[color]), label)
		ch <- prometheus.MustNewConstMetric(c.admissions, prometheus.CounterValue, float64(s.Fast[color]), label, "fast")
		ch <- prometheus.MustNewConstMetric(c.admissions, prometheus.CounterValue, float64(s.Queued[color]), label, "queued")
	}
	ch <- prometheus.MustNewConstMetric(c.groups, prometheus.GaugeValue, float64(len(s.Groups)))
	ch <- prometheus.MustNewConstMetric(c.canceled, prometheus.CounterValue, float64(s.Canceled))
	ch <- prometheus.MustNewConstMetric(c.grants, prometheus.CounterValue, float64(s.Grants))
}
