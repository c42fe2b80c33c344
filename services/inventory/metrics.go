package inventory

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	machinesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "machboard_machines",
		Help: "Current number of machines in the collection.",
	})

	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "machboard_machine_mutations_total",
		Help: "Collection mutations by operation.",
	}, []string{"op"})
)
