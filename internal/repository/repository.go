package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/trainbooking/internal/domain"
)

type TrainRepository interface {
	List(ctx context.Context, filter domain.TrainFilter) ([]domain.Train, error)
	GetByID(ctx context.Context, id string) (*domain.Train, error)
	// Create stores a new train and sets its ID.
	Create(ctx context.Context, train *domain.Train) error
	// Update replaces the stored train with the same ID.
	Update(ctx context.Context, train *domain.Train) error
	Delete(ctx context.Context, id string) error
}

type BookingRepository interface {
	// Create stores a new booking and sets its ID. A duplicate PNR yields domain.ErrConflict.
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	// List returns bookings newest first with their train expanded when it still exists.
	List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) (*domain.Booking, error)
}

func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreFailure, err)
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, domain.ErrNotFound)
}
