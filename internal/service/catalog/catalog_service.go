package catalog

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Domenick1991/trainbooking/internal/domain"
	"github.com/Domenick1991/trainbooking/internal/repository"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type CatalogUseCase interface {
	ListTrains(ctx context.Context, filter domain.TrainFilter) ([]domain.Train, error)
	GetTrain(ctx context.Context, id string) (*domain.Train, error)
	CreateTrain(ctx context.Context, train domain.Train) (*domain.Train, error)
	UpdateTrain(ctx context.Context, id string, patch TrainPatch) (*domain.Train, error)
	DeleteTrain(ctx context.Context, id string) error
}

// TrainCache holds the unfiltered catalog listing.
type TrainCache interface {
	GetTrains(ctx context.Context) ([]domain.Train, error)
	SetTrains(ctx context.Context, trains []domain.Train) error
	InvalidateTrains(ctx context.Context) error
}

// TrainPatch carries the fields of a partial update. Nil fields are left unchanged.
type TrainPatch struct {
	TrainNumber   *string
	TrainName     *string
	Source        *string
	Destination   *string
	DepartureTime *string
	ArrivalTime   *string
	Frequency     *domain.TrainFrequency
	BasePrice     *float64
	TotalSeats    *int
	Status        *domain.TrainStatus
}

// Apply copies the set fields onto t.
func (p TrainPatch) Apply(t *domain.Train) {
	setString(&t.TrainNumber, p.TrainNumber)
	setString(&t.TrainName, p.TrainName)
	setString(&t.Source, p.Source)
	setString(&t.Destination, p.Destination)
	setString(&t.DepartureTime, p.DepartureTime)
	setString(&t.ArrivalTime, p.ArrivalTime)
	if p.Frequency != nil {
		t.Frequency = *p.Frequency
	}
	if p.BasePrice != nil {
		t.BasePrice = *p.BasePrice
	}
	if p.TotalSeats != nil {
		t.TotalSeats = *p.TotalSeats
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

type CatalogService struct {
	repo     repository.TrainRepository
	cache    TrainCache
	validate *validator.Validate
	log      *zap.Logger
}

// NewCatalogService builds the catalog. cache may be nil.
func NewCatalogService(repo repository.TrainRepository, cache TrainCache, log *zap.Logger) *CatalogService {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &CatalogService{repo: repo, cache: cache, validate: v, log: log}
}

func (s *CatalogService) ListTrains(ctx context.Context, filter domain.TrainFilter) ([]domain.Train, error) {
	if !filter.IsZero() || s.cache == nil {
		return s.repo.List(ctx, filter)
	}

	if cached, err := s.cache.GetTrains(ctx); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		s.log.Warn("train cache read failed", zap.Error(err))
	}

	trains, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetTrains(ctx, trains); err != nil {
		s.log.Warn("train cache write failed", zap.Error(err))
	}
	return trains, nil
}

func (s *CatalogService) GetTrain(ctx context.Context, id string) (*domain.Train, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CatalogService) CreateTrain(ctx context.Context, train domain.Train) (*domain.Train, error) {
	train.ID = ""
	trimTrain(&train)
	train.ApplyDefaults()
	if err := s.check(&train); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, &train); err != nil {
		return nil, s.conflict(err, train.TrainNumber)
	}
	s.invalidate(ctx)
	s.log.Info("train created", zap.String("train_id", train.ID), zap.String("train_number", train.TrainNumber))
	return &train, nil
}

func (s *CatalogService) UpdateTrain(ctx context.Context, id string, patch TrainPatch) (*domain.Train, error) {
	train, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(train)
	if err := s.check(train); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, train); err != nil {
		return nil, s.conflict(err, train.TrainNumber)
	}
	s.invalidate(ctx)
	s.log.Info("train updated", zap.String("train_id", train.ID))
	return train, nil
}

// DeleteTrain removes the train. Bookings referencing it are left in place.
func (s *CatalogService) DeleteTrain(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.log.Info("train deleted", zap.String("train_id", id))
	return nil
}

func (s *CatalogService) check(train *domain.Train) error {
	err := s.validate.Struct(train)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	verr := &domain.ValidationError{}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), fieldMessage(fe))
	}
	return verr
}

func (s *CatalogService) conflict(err error, trainNumber string) error {
	if errors.Is(err, domain.ErrConflict) {
		return fmt.Errorf("%w: train number %s already exists", domain.ErrConflict, trainNumber)
	}
	return err
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateTrains(ctx); err != nil {
		s.log.Warn("train cache invalidation failed", zap.Error(err))
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "gt":
		return fe.Field() + " must be greater than " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}

func trimTrain(t *domain.Train) {
	t.TrainNumber = strings.TrimSpace(t.TrainNumber)
	t.TrainName = strings.TrimSpace(t.TrainName)
	t.Source = strings.TrimSpace(t.Source)
	t.Destination = strings.TrimSpace(t.Destination)
	t.DepartureTime = strings.TrimSpace(t.DepartureTime)
	t.ArrivalTime = strings.TrimSpace(t.ArrivalTime)
}

var _ CatalogUseCase = (*CatalogService)(nil)
