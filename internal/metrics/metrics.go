package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	BookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "eticket_bookings_created_total",
			Help: "Number of confirmed bookings created",
		},
	)

	BookingsCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "eticket_bookings_cancelled_total",
			Help: "Number of bookings moved to cancelled",
		},
	)

	BookingFare = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "eticket_booking_fare",
			Help:    "Total fare of created bookings",
			Buckets: prometheus.ExponentialBuckets(50, 2, 10),
		},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eticket_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	EventsConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eticket_worker_events_total",
			Help: "Booking events handled by the worker, by type",
		},
		[]string{"type"},
	)
)

// Register adds every collector to the default registry.
func Register() {
	prometheus.MustRegister(BookingsCreated, BookingsCancelled, BookingFare, HTTPRequests, EventsConsumed)
}
