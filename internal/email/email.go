package email

import (
	"context"

	"github.com/Domenick1991/trainbooking/internal/kafka"
	"go.uber.org/zap"
)

type Sender struct {
	log *zap.Logger
}

func NewSender(log *zap.Logger) *Sender {
	return &Sender{log: log}
}

// Send notifies the booking contact. Events without an address are skipped.
func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	if event.Email == "" {
		s.log.Debug("no contact email, notification skipped", zap.String("pnr", event.PNR), zap.String("type", event.Type))
		return nil
	}
	s.log.Info("send email",
		zap.String("to", event.Email),
		zap.String("subject", Subject(event)),
		zap.String("pnr", event.PNR),
		zap.Float64("total_fare", event.TotalFare),
	)
	return nil
}

func Subject(event kafka.BookingEvent) string {
	switch event.Type {
	case kafka.EventBookingCreated:
		return "Booking confirmed: " + event.PNR
	case kafka.EventBookingCancelled:
		return "Booking cancelled: " + event.PNR
	default:
		return "Booking update: " + event.PNR
	}
}
