package booking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Domenick1991/trainbooking/internal/domain"
	"github.com/Domenick1991/trainbooking/internal/fare"
	"github.com/Domenick1991/trainbooking/internal/kafka"
	"github.com/Domenick1991/trainbooking/internal/metrics"
	"github.com/Domenick1991/trainbooking/internal/pnr"
	"github.com/Domenick1991/trainbooking/internal/repository"
	"go.uber.org/zap"
)

// fareTolerance is the largest client/server total difference accepted silently.
const fareTolerance = 0.005

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	QuoteFare(ctx context.Context, input QuoteInput) (*FareQuote, error)
	ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error)
	CancelBooking(ctx context.Context, id string) (*domain.Booking, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	trains             repository.TrainRepository
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	log                *zap.Logger
	newPNR             pnr.Generator
	pnrAttempts        int
	now                func() time.Time
}

type CreateBookingInput struct {
	TrainID     string
	Passengers  []domain.Passenger
	ContactInfo domain.ContactInfo
	CustomerID  string
	// ClientTotalFare is what the client displayed; it is never stored.
	ClientTotalFare *float64
}

type QuoteInput struct {
	TrainID    string
	Passengers []domain.Passenger
}

type FareQuote struct {
	TrainID string `json:"trainId"`
	fare.Quote
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithPNRGenerator(gen pnr.Generator) BookingServiceOption {
	return func(s *BookingService) {
		s.newPNR = gen
	}
}

func WithPNRAttempts(n int) BookingServiceOption {
	return func(s *BookingService) {
		if n > 0 {
			s.pnrAttempts = n
		}
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

// NewBookingService wires the engine. producer may be nil to disable events.
func NewBookingService(
	bookings repository.BookingRepository,
	trains repository.TrainRepository,
	producer Producer,
	bookingTopic string,
	log *zap.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		trains:       trains,
		producer:     producer,
		bookingTopic: bookingTopic,
		log:          log,
		newPNR:       pnr.New,
		pnrAttempts:  3,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if err := validatePassengers(input.TrainID, input.Passengers); err != nil {
		return nil, err
	}

	train, err := s.trains.GetByID(ctx, input.TrainID)
	if err != nil {
		return nil, err
	}
	if train.Status == domain.TrainStatusInactive {
		return nil, fmt.Errorf("%w: train %s is not active", domain.ErrInvalidInput, train.TrainNumber)
	}

	total, err := fare.Total(train.BasePrice, input.Passengers)
	if err != nil {
		return nil, err
	}
	if input.ClientTotalFare != nil && math.Abs(*input.ClientTotalFare-total) > fareTolerance {
		s.log.Warn("client fare differs from server fare, using server fare",
			zap.String("train_id", train.ID),
			zap.Float64("client_total", *input.ClientTotalFare),
			zap.Float64("server_total", total),
		)
	}

	booking := &domain.Booking{
		TrainID:     train.ID,
		CustomerID:  input.CustomerID,
		Passengers:  input.Passengers,
		ContactInfo: input.ContactInfo,
		BookingDate: s.now().UTC(),
		Status:      domain.BookingStatusConfirmed,
		TotalFare:   total,
	}

	for attempt := 1; ; attempt++ {
		booking.PNR = s.newPNR()
		err = s.bookings.Create(ctx, booking)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrConflict) || attempt >= s.pnrAttempts {
			return nil, err
		}
		s.log.Warn("pnr collision, regenerating", zap.String("pnr", booking.PNR), zap.Int("attempt", attempt))
	}
	booking.Train = train

	metrics.BookingsCreated.Inc()
	metrics.BookingFare.Observe(total)
	s.log.Info("booking created",
		zap.String("booking_id", booking.ID),
		zap.String("pnr", booking.PNR),
		zap.String("train_id", train.ID),
		zap.Int("passengers", len(booking.Passengers)),
		zap.Float64("total_fare", total),
	)

	if err := s.publish(ctx, kafka.EventBookingCreated, booking); err != nil {
		s.log.Warn("failed to publish booking event", zap.String("type", kafka.EventBookingCreated), zap.String("pnr", booking.PNR), zap.Error(err))
	}
	return booking, nil
}

func (s *BookingService) QuoteFare(ctx context.Context, input QuoteInput) (*FareQuote, error) {
	if err := validatePassengers(input.TrainID, input.Passengers); err != nil {
		return nil, err
	}

	train, err := s.trains.GetByID(ctx, input.TrainID)
	if err != nil {
		return nil, err
	}

	q, err := fare.Calculate(train.BasePrice, input.Passengers)
	if err != nil {
		return nil, err
	}
	return &FareQuote{TrainID: train.ID, Quote: *q}, nil
}

func (s *BookingService) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	return s.bookings.List(ctx, filter)
}

// CancelBooking moves a booking to cancelled. Cancelling a cancelled booking is a
// successful no-op.
func (s *BookingService) CancelBooking(ctx context.Context, id string) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.IsCancelled() {
		return current, nil
	}

	updated, err := s.bookings.UpdateStatus(ctx, id, domain.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}

	metrics.BookingsCancelled.Inc()
	s.log.Info("booking cancelled", zap.String("booking_id", updated.ID), zap.String("pnr", updated.PNR))

	if err := s.publish(ctx, kafka.EventBookingCancelled, updated); err != nil {
		s.log.Warn("failed to publish booking event", zap.String("type", kafka.EventBookingCancelled), zap.String("pnr", updated.PNR), zap.Error(err))
	}
	return updated, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	event := kafka.BookingEvent{
		Type:       eventType,
		BookingID:  booking.ID,
		PNR:        booking.PNR,
		TrainID:    booking.TrainID,
		CustomerID: booking.CustomerID,
		Status:     string(booking.Status),
		TotalFare:  booking.TotalFare,
		Passengers: len(booking.Passengers),
		Email:      booking.ContactInfo.Email,
		OccurredAt: s.now().UTC(),
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.PNR, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, booking.PNR, event)
	}
	return nil
}

func validatePassengers(trainID string, passengers []domain.Passenger) error {
	verr := &domain.ValidationError{}
	if strings.TrimSpace(trainID) == "" {
		verr.Add("trainId", "Train is required")
	}
	switch {
	case len(passengers) == 0:
		verr.Add("passengers", "At least one passenger is required")
	case len(passengers) > domain.MaxPassengers:
		verr.Add("passengers", fmt.Sprintf("At most %d passengers per booking", domain.MaxPassengers))
	}
	for i, p := range passengers {
		field := fmt.Sprintf("passengers[%d]", i)
		if strings.TrimSpace(p.Name) == "" {
			verr.Add(field+".name", "Name is required")
		}
		if p.Age < 0 {
			verr.Add(field+".age", "Age must be a non-negative integer")
		}
		if strings.TrimSpace(p.Gender) == "" {
			verr.Add(field+".gender", "Gender is required")
		}
	}
	return verr.OrNil()
}

var _ BookingUseCase = (*BookingService)(nil)
