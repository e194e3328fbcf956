// Package metrics: счётчики Prometheus, которые отдаёт /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "solar",
		Name:      "bookings_created_total",
		Help:      "Проведённые бронирования по типу (IN/OUT).",
	}, []string{"type"})

	CompletedToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "solar",
		Name:      "completed_toggles_total",
		Help:      "Переключения отметок монтёров.",
	}, []string{"action"})

	BOMAggregations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "solar",
		Name:      "bom_aggregations_total",
		Help:      "Собранные спецификации проектов.",
	})

	BOMNegativeRows = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "solar",
		Name:      "bom_negative_rows_total",
		Help:      "Строки спецификации с отрицательным количеством.",
	})
)

// ToggleAction: метка для CompletedToggles.
func ToggleAction(currentlyCompleted bool) string {
	if currentlyCompleted {
		return "unmark"
	}
	return "mark"
}
