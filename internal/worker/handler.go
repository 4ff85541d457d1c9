// Package worker reacts to booking lifecycle events off the hot path.
package worker

import (
	"context"

	"github.com/Domenick1991/trainbooking/internal/kafka"
	"github.com/Domenick1991/trainbooking/internal/metrics"
	"go.uber.org/zap"
)

type Notifier interface {
	Send(ctx context.Context, event kafka.BookingEvent) error
}

type Recorder interface {
	Record(ctx context.Context, event kafka.BookingEvent) error
}

type Handler struct {
	notifier Notifier
	recorder Recorder
	log      *zap.Logger
}

// NewHandler builds the event handler. recorder may be nil.
func NewHandler(notifier Notifier, recorder Recorder, log *zap.Logger) *Handler {
	return &Handler{notifier: notifier, recorder: recorder, log: log}
}

// Handle never fails the consumer: a notification or analytics failure is
// logged and the event is considered handled.
func (h *Handler) Handle(ctx context.Context, event kafka.BookingEvent) error {
	metrics.EventsConsumed.WithLabelValues(event.Type).Inc()

	if err := h.notifier.Send(ctx, event); err != nil {
		h.log.Error("notification failed", zap.String("pnr", event.PNR), zap.String("type", event.Type), zap.Error(err))
	}

	if h.recorder != nil {
		if err := h.recorder.Record(ctx, event); err != nil {
			h.log.Error("analytics record failed", zap.String("pnr", event.PNR), zap.Error(err))
		}
	}
	return nil
}
