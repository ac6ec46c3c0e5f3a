package metrics

import (
	"sync"

	"salon/internal/events"
	"salon/internal/store"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	eventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salon",
			Name:      "events_total",
			Help:      "Count of store lifecycle events by type.",
		},
		[]string{"type"},
	)

	rejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salon",
			Name:      "operation_rejections_total",
			Help:      "Count of rejected operations by operation and reason.",
		},
		[]string{"operation", "reason"},
	)

	clients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "salon",
			Name:      "clients",
			Help:      "Registered clients.",
		},
	)

	reservations = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "salon",
			Name:      "reservations",
			Help:      "Active reservations.",
		},
	)

	backupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salon",
			Name:      "backups_total",
			Help:      "Count of backup runs by result.",
		},
		[]string{"result"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(eventsTotal, rejectionsTotal, clients, reservations, backupsTotal)
	})
}

// Attach keeps the counters and gauges in step with bus events.
func Attach(bus *events.Bus) {
	bus.Subscribe(func(e events.Event) error {
		eventsTotal.WithLabelValues(e.Type).Inc()
		switch e.Type {
		case store.EventClientRegistered:
			clients.Inc()
		case store.EventReservationCreated:
			reservations.Inc()
		case store.EventReservationDeleted:
			reservations.Dec()
		}
		return nil
	}, store.EventClientRegistered, store.EventReservationCreated, store.EventReservationModified, store.EventReservationDeleted)
}

// SetCounts seeds the gauges after the stores are loaded.
func SetCounts(clientCount, reservationCount int) {
	clients.Set(float64(clientCount))
	reservations.Set(float64(reservationCount))
}

func IncRejection(operation, reason string) {
	rejectionsTotal.WithLabelValues(operation, reason).Inc()
}

func IncBackup(result string) {
	backupsTotal.WithLabelValues(result).Inc()
}
