package regionbuf

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes the state of one Table. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	capacityBytes prometheus.Gauge
	length        prometheus.Gauge
	regions       prometheus.Gauge
	growths       prometheus.Counter
	rebased       prometheus.Counter
}

// NewMetrics registers the table metrics with reg. A nil reg creates the
// metrics without registering them.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		capacityBytes: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "regionbuf_store_capacity_bytes",
			Help: "Size of the backing block of the region store in bytes.",
		}),
		length: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "regionbuf_store_elements",
			Help: "Number of elements in use across all regions.",
		}),
		regions: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "regionbuf_regions",
			Help: "Number of live regions.",
		}),
		growths: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "regionbuf_store_growths_total",
			Help: "Number of times the backing block was reallocated to grow.",
		}),
		rebased: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "regionbuf_regions_rebased_total",
			Help: "Number of region records shifted because an earlier region changed size.",
		}),
	}
}

func (m *Metrics) grown(capBytes int) {
	if m == nil {
		return
	}
	m.growths.Inc()
	m.capacityBytes.Set(float64(capBytes))
}

func (m *Metrics) cleared() {
	if m == nil {
		return
	}
	m.capacityBytes.Set(0)
	m.length.Set(0)
}

func (m *Metrics) setLength(n int) {
	if m == nil {
		return
	}
	m.length.Set(float64(n))
}

func (m *Metrics) setRegions(n int) {
	if m == nil {
		return
	}
	m.regions.Set(float64(n))
}

func (m *Metrics) addRebased(n int) {
	if m == nil || n == 0 {
		return
	}
	m.rebased.Add(float64(n))
}
