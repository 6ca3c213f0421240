package etb

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	entriesCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bluelight_etb_entries_created_total",
			Help: "Number of operations log entries created",
		},
		[]string{"kategorie"},
	)

	entriesUpdatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bluelight_etb_entries_updated_total",
		Help: "Number of operations log entry content updates",
	})

	entriesClosedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bluelight_etb_entries_closed_total",
		Help: "Number of operations log entries closed",
	})

	entriesSupersededTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bluelight_etb_entries_superseded_total",
		Help: "Number of operations log entries superseded by a new entry",
	})

	attachmentsStoredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bluelight_etb_attachments_stored_total",
			Help: "Number of attachments stored",
		},
		[]string{"encrypted"},
	)

	attachmentBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bluelight_etb_attachment_bytes_total",
		Help: "Total size of stored attachment content in bytes",
	})

	operationErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bluelight_etb_operation_errors_total",
			Help: "Number of failed operations log service calls by error kind",
		},
		[]string{"operation", "kind"},
	)
)
