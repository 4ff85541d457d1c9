package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/trainbooking/internal/domain"
	"github.com/Domenick1991/trainbooking/internal/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) (*domain.Booking, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

type MockTrainRepository struct {
	mock.Mock
}

func (m *MockTrainRepository) List(ctx context.Context, filter domain.TrainFilter) ([]domain.Train, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Train), args.Error(1)
}

func (m *MockTrainRepository) GetByID(ctx context.Context, id string) (*domain.Train, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Train), args.Error(1)
}

func (m *MockTrainRepository) Create(ctx context.Context, train *domain.Train) error {
	args := m.Called(ctx, train)
	return args.Error(0)
}

func (m *MockTrainRepository) Update(ctx context.Context, train *domain.Train) error {
	args := m.Called(ctx, train)
	return args.Error(0)
}

func (m *MockTrainRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func activeTrain() *domain.Train {
	return &domain.Train{
		ID:            "t1",
		TrainNumber:   "12001",
		TrainName:     "Shatabdi Express",
		Source:        "New Delhi",
		Destination:   "Bhopal",
		DepartureTime: "06:00",
		ArrivalTime:   "14:05",
		Frequency:     domain.FrequencyDaily,
		BasePrice:     500,
		TotalSeats:    300,
		Status:        domain.TrainStatusActive,
	}
}

func newTestService(bookings *MockBookingRepository, trains *MockTrainRepository, producer Producer, log *zap.Logger, opts ...BookingServiceOption) *BookingService {
	opts = append([]BookingServiceOption{
		WithClock(func() time.Time { return fixedNow }),
		WithPNRGenerator(func() string { return "PNRTEST0001" }),
	}, opts...)
	return NewBookingService(bookings, trains, producer, "booking_events", log, opts...)
}

func adults(n int) []domain.Passenger {
	out := make([]domain.Passenger, n)
	for i := range out {
		out[i] = domain.Passenger{Name: "Passenger", Age: 30, Gender: "female"}
	}
	return out
}

func TestCreateBooking_Success(t *testing.T) {
	bookings := &MockBookingRepository{}
	trains := &MockTrainRepository{}
	producer := &MockProducer{}
	service := newTestService(bookings, trains, producer, zap.NewNop(), WithNotificationsTopic("notifications"))

	ctx := context.Background()
	passengers := []domain.Passenger{
		{Name: "A", Age: 30, Gender: "male"},
		{Name: "B", Age: 8, Gender: "female"},
		{Name: "C", Age: 65, Gender: "male", IsDiscountEligible: true},
	}

	trains.On("GetByID", ctx, "t1").Return(activeTrain(), nil).Once()
	bookings.On("Create", ctx, mock.MatchedBy(func(b *domain.Booking) bool {
		return b.PNR == "PNRTEST0001" &&
			b.Status == domain.BookingStatusConfirmed &&
			b.TotalFare == 500+250+400 &&
			b.BookingDate.Equal(fixedNow) &&
			b.ContactInfo.Email == "a@example.com"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Booking).ID = "b1"
	}).Return(nil).Once()
	producer.On("Publish", ctx, "booking_events", "PNRTEST0001", mock.MatchedBy(func(e kafka.BookingEvent) bool {
		return e.Type == kafka.EventBookingCreated && e.BookingID == "b1" && e.Passengers == 3
	})).Return(nil).Once()
	producer.On("Publish", ctx, "notifications", "PNRTEST0001", mock.Anything).Return(nil).Once()

	booking, err := service.CreateBooking(ctx, CreateBookingInput{
		TrainID:     "t1",
		Passengers:  passengers,
		ContactInfo: domain.ContactInfo{Email: "a@example.com"},
	})

	require.NoError(t, err)
	assert.Equal(t, "b1", booking.ID)
	assert.Equal(t, 1150.0, booking.TotalFare)
	assert.Equal(t, domain.BookingStatusConfirmed, booking.Status)
	require.NotNil(t, booking.Train)
	assert.Equal(t, "Shatabdi Express", booking.Train.TrainName)

	trains.AssertExpectations(t)
	bookings.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestCreateBooking_TrainNotFound(t *testing.T) {
	bookings := &MockBookingRepository{}
	trains := &MockTrainRepository{}
	service := newTestService(bookings, trains, nil, zap.NewNop())

	ctx := context.Background()
	trains.On("GetByID", ctx, "missing").Return(nil, domain.ErrNotFound).Once()

	booking, err := service.CreateBooking(ctx, CreateBookingInput{TrainID: "missing", Passengers: adults(1)})

	assert.Nil(t, booking)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateBooking_InactiveTrain(t *testing.T) {
	bookings := &MockBookingRepository{}
	trains := &MockTrainRepository{}
	service := newTestService(bookings, trains, nil, zap.NewNop())

	ctx := context.Background()
	train := activeTrain()
	train.Status = domain.TrainStatusInactive
	trains.On("GetByID", ctx, "t1").Return(train, nil).Once()

	_, err := service.CreateBooking(ctx, CreateBookingInput{TrainID: "t1", Passengers: adults(1)})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateBooking_InvalidPassengers(t *testing.T) {
	tests := []struct {
		name       string
		trainID    string
		passengers []domain.Passenger
		field      string
	}{
		{name: "no passengers", trainID: "t1", passengers: nil, field: "passengers"},
		{name: "too many passengers", trainID: "t1", passengers: adults(7), field: "passengers"},
		{name: "missing train", trainID: " ", passengers: adults(1), field: "trainId"},
		{name: "missing name", trainID: "t1", passengers: []domain.Passenger{{Age: 20, Gender: "male"}}, field: "passengers[0].name"},
		{name: "negative age", trainID: "t1", passengers: []domain.Passenger{{Name: "A", Age: -1, Gender: "male"}}, field: "passengers[0].age"},
		{name: "missing gender", trainID: "t1", passengers: []domain.Passenger{{Name: "A", Age: 20}}, field: "passengers[0].gender"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookings := &MockBookingRepository{}
			trains := &MockTrainRepository{}
			service := newTestService(bookings, trains, nil, zap.NewNop())

			_, err := service.CreateBooking(context.Background(), CreateBookingInput{TrainID: tt.trainID, Passengers: tt.passengers})

			require.ErrorIs(t, err, domain.ErrInvalidInput)
			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Fields[0].Field)
			trains.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateBooking_SixPassengersAllowed(t *testing.T) {
	bookings := &MockBookingRepository{}
	trains := &MockTrainRepository{}
	service := newTestService(bookings, trains, nil, zap.NewNop())

	ctx := context.Background()
	trains.On("GetByID", ctx, "t1").Return(activeTrain(), nil).Once()
	bookings.On("Create", ctx, mock.Anything).Return(nil).Once()

	booking, err := service.CreateBooking(ctx, CreateBookingInput{TrainID: "t1", Passengers: adults(6)})

	require.NoError(t, err)
	assert.Equal(t, 3000.0, booking.TotalFare)
}

func TestCreateBooking_IgnoresClientFare(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	bookings := &MockBookingRepository{}
	trains := &MockTrainRepository{}
	service := newTestService(bookings, trains, nil, zap.New(core))

	ctx := context.Background()
	clientFare := 1.0
	trains.On("GetByID", ctx, "t1").Return(activeTrain(), nil).Once()
	bookings.On("Create", ctx, mock.Anything).Return(nil).Once()

	booking, err := service.CreateBooking(ctx, CreateBookingInput{TrainID: "t1", Passengers: adults(2), ClientTotalFare: &clientFare})

	require.NoError(t, err)
	assert.Equal(t, 1000.0, booking.TotalFare)
	assert.Equal(t, 1, logs.FilterMessage("client fare differs from server fare, using server fare").Len())
}

func TestCreateBooking_MatchingClientFareNotLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	bookings := &MockBookingRepository{}
	trains := &MockTrainRepository{}
	service := newTestService(bookings, trains, nil, zap.New(core))

	ctx := context.Background()
	clientFare := 1000.001
	trains.On("GetByID", ctx, "t1").Return(activeTrain(), nil).Once()
	bookings.On("Create", ctx, mock.Anything).Return(nil).Once()

	_, err := service.CreateBooking(ctx, CreateBookingInput{TrainID: "t1", Passengers: adults(2), ClientTotalFare: &clientFare})

	require.NoError(t, err)
	assert.Zero(t, logs.Len())
}

func TestCreateBooking_RetriesPNRCollision(t *testing.T) {
	bookings := &MockBookingRepository{}
	trains := &MockTrainRepository{}

	pnrs := []string{"PNRDUP", "PNRFRESH"}
	next := 0
	service := newTestService(bookings, trains, nil, zap.NewNop(), WithPNRGenerator(func() string {
		p := pnrs[next]
		next++
		return p
	}))

	ctx := context.Background()
	trains.On("GetByID", ctx, "t1").Return(activeTrain(), nil).Once()
	bookings.On("Create", ctx, mock.Anything).Return(domain.ErrConflict).Once()
	bookings.On("Create", ctx, mock.Anything).Return(nil).Once()

	booking, err := service.CreateBooking(ctx, CreateBookingInput{TrainID: "t1", Passengers: adults(1)})

	require.NoError(t, err)
	assert.Equal(t, "PNRFRESH", booking.PNR)
	bookings.AssertNumberOfCalls(t, "Create", 2)
}

func TestCreateBooking_PNRAttemptsExhausted(t *testing.T) {
	bookings := &MockBookingRepository{}
	trains := &MockTrainRepository{}
	service := newTestService(bookings, trains, nil, zap.NewNop(), WithPNRAttempts(2))

	ctx := context.Background()
	trains.On("GetByID", ctx, "t1").Return(activeTrain(), nil).Once()
	bookings.On("Create", ctx, mock.Anything).Return(domain.ErrConflict).Twice()

	_, err := service.CreateBooking(ctx, CreateBookingInput{TrainID: "t1", Passengers: adults(1)})

	assert.ErrorIs(t, err, domain.ErrConflict)
	bookings.AssertNumberOfCalls(t, "Create", 2)
}

func TestCreateBooking_StoreFailure(t *testing.T) {
	bookings := &MockBookingRepository{}
	trains := &MockTrainRepository{}
	service := newTestService(bookings, trains, nil, zap.NewNop())

	ctx := context.Background()
	trains.On("GetByID", ctx, "t1").Return(activeTrain(), nil).Once()
	bookings.On("Create", ctx, mock.Anything).Return(domain.ErrStoreFailure).Once()

	booking, err := service.CreateBooking(ctx, CreateBookingInput{TrainID: "t1", Passengers: adults(1)})

	assert.Nil(t, booking)
	assert.ErrorIs(t, err, domain.ErrStoreFailure)
	bookings.AssertNumberOfCalls(t, "Create", 1)
}

func TestCreateBooking_PublishFailureDoesNotFail(t *testing.T) {
	bookings := &MockBookingRepository{}
	trains := &MockTrainRepository{}
	producer := &MockProducer{}
	service := newTestService(bookings, trains, producer, zap.NewNop())

	ctx := context.Background()
	trains.On("GetByID", ctx, "t1").Return(activeTrain(), nil).Once()
	bookings.On("Create", ctx, mock.Anything).Return(nil).Once()
	producer.On("Publish", ctx, "booking_events", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	booking, err := service.CreateBooking(ctx, CreateBookingInput{TrainID: "t1", Passengers: adults(1)})

	require.NoError(t, err)
	assert.NotNil(t, booking)
	producer.AssertExpectations(t)
}

func TestQuoteFare(t *testing.T) {
	trains := &MockTrainRepository{}
	service := newTestService(&MockBookingRepository{}, trains, nil, zap.NewNop())

	ctx := context.Background()
	train := activeTrain()
	train.BasePrice = 1000
	trains.On("GetByID", ctx, "t1").Return(train, nil).Once()

	q, err := service.QuoteFare(ctx, QuoteInput{
		TrainID: "t1",
		Passengers: []domain.Passenger{
			{Name: "A", Age: 40, Gender: "male"},
			{Name: "B", Age: 10, Gender: "female", IsDiscountEligible: true},
			{Name: "C", Age: 70, Gender: "male", IsDiscountEligible: true},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "t1", q.TrainID)
	assert.Equal(t, []float64{1000, 400, 800}, q.Fares)
	assert.Equal(t, 2200.0, q.Total)
}

func TestListBookings(t *testing.T) {
	bookings := &MockBookingRepository{}
	service := newTestService(bookings, &MockTrainRepository{}, nil, zap.NewNop())

	ctx := context.Background()
	filter := domain.BookingFilter{CustomerID: "u1"}
	expected := []domain.Booking{{ID: "b2"}, {ID: "b1"}}
	bookings.On("List", ctx, filter).Return(expected, nil).Once()

	result, err := service.ListBookings(ctx, filter)

	require.NoError(t, err)
	assert.Equal(t, expected, result)
	bookings.AssertExpectations(t)
}

func TestCancelBooking_Success(t *testing.T) {
	bookings := &MockBookingRepository{}
	producer := &MockProducer{}
	service := newTestService(bookings, &MockTrainRepository{}, producer, zap.NewNop())

	ctx := context.Background()
	current := &domain.Booking{ID: "b1", PNR: "PNR1", Status: domain.BookingStatusConfirmed, TotalFare: 500}
	cancelled := *current
	cancelled.Status = domain.BookingStatusCancelled

	bookings.On("GetByID", ctx, "b1").Return(current, nil).Once()
	bookings.On("UpdateStatus", ctx, "b1", domain.BookingStatusCancelled).Return(&cancelled, nil).Once()
	producer.On("Publish", ctx, "booking_events", "PNR1", mock.MatchedBy(func(e kafka.BookingEvent) bool {
		return e.Type == kafka.EventBookingCancelled && e.Status == "cancelled"
	})).Return(nil).Once()

	result, err := service.CancelBooking(ctx, "b1")

	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, result.Status)
	assert.Equal(t, 500.0, result.TotalFare)
	bookings.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestCancelBooking_AlreadyCancelledIsNoop(t *testing.T) {
	bookings := &MockBookingRepository{}
	producer := &MockProducer{}
	service := newTestService(bookings, &MockTrainRepository{}, producer, zap.NewNop())

	ctx := context.Background()
	current := &domain.Booking{ID: "b1", PNR: "PNR1", Status: domain.BookingStatusCancelled}
	bookings.On("GetByID", ctx, "b1").Return(current, nil).Once()

	result, err := service.CancelBooking(ctx, "b1")

	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, result.Status)
	bookings.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	producer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelBooking_NotFound(t *testing.T) {
	bookings := &MockBookingRepository{}
	service := newTestService(bookings, &MockTrainRepository{}, nil, zap.NewNop())

	ctx := context.Background()
	bookings.On("GetByID", ctx, "nope").Return(nil, domain.ErrNotFound).Once()

	result, err := service.CancelBooking(ctx, "nope")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
