package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Domenick1991/trainbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookingColumns = `id, pnr, train_id, customer_id, passengers, contact_info, booking_date, status, total_fare`

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) *PGBookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	passengers, err := json.Marshal(booking.Passengers)
	if err != nil {
		return fmt.Errorf("encode passengers: %w", err)
	}
	contact, err := json.Marshal(booking.ContactInfo)
	if err != nil {
		return fmt.Errorf("encode contact info: %w", err)
	}

	id := uuid.NewString()
	_, err = r.db.Exec(ctx, `INSERT INTO bookings (`+bookingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, booking.PNR, booking.TrainID, booking.CustomerID, passengers, contact, booking.BookingDate,
		string(booking.Status), booking.TotalFare)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("pnr %q already exists: %w", booking.PNR, domain.ErrConflict)
		}
		return storeError("insert booking", err)
	}
	booking.ID = id
	return nil
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("booking", id)
		}
		return nil, storeError("select booking", err)
	}
	return b, nil
}

func (r *PGBookingRepository) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	query := `SELECT b.id, b.pnr, b.train_id, b.customer_id, b.passengers, b.contact_info, b.booking_date, b.status, b.total_fare,
		t.id, t.train_number, t.train_name, t.source, t.destination, t.departure_time, t.arrival_time, t.frequency, t.base_price, t.total_seats, t.status
		FROM bookings b LEFT JOIN trains t ON t.id = b.train_id`
	var args []any
	if filter.CustomerID != "" {
		query += ` WHERE b.customer_id = $1`
		args = append(args, filter.CustomerID)
	}
	query += ` ORDER BY b.booking_date DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, storeError("select bookings", err)
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		var (
			b          domain.Booking
			status     string
			passengers []byte
			contact    []byte
			tID, tNum  *string
			tName      *string
			tSrc, tDst *string
			tDep, tArr *string
			tFreq      *string
			tPrice     *float64
			tSeats     *int
			tStatus    *string
		)
		if err := rows.Scan(&b.ID, &b.PNR, &b.TrainID, &b.CustomerID, &passengers, &contact, &b.BookingDate, &status, &b.TotalFare,
			&tID, &tNum, &tName, &tSrc, &tDst, &tDep, &tArr, &tFreq, &tPrice, &tSeats, &tStatus); err != nil {
			return nil, storeError("scan booking", err)
		}
		b.Status = domain.BookingStatus(status)
		if err := decodeBookingJSON(&b, passengers, contact); err != nil {
			return nil, storeError("decode booking", err)
		}
		if tID != nil {
			b.Train = &domain.Train{
				ID:            *tID,
				TrainNumber:   *tNum,
				TrainName:     *tName,
				Source:        *tSrc,
				Destination:   *tDst,
				DepartureTime: *tDep,
				ArrivalTime:   *tArr,
				Frequency:     domain.TrainFrequency(*tFreq),
				BasePrice:     *tPrice,
				TotalSeats:    *tSeats,
				Status:        domain.TrainStatus(*tStatus),
			}
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("select bookings", err)
	}
	return bookings, nil
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2 RETURNING `+bookingColumns, string(status), id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("booking", id)
		}
		return nil, storeError("update booking status", err)
	}
	return b, nil
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	var status string
	var passengers, contact []byte
	if err := row.Scan(&b.ID, &b.PNR, &b.TrainID, &b.CustomerID, &passengers, &contact, &b.BookingDate, &status, &b.TotalFare); err != nil {
		return nil, err
	}
	b.Status = domain.BookingStatus(status)
	if err := decodeBookingJSON(&b, passengers, contact); err != nil {
		return nil, err
	}
	return &b, nil
}

func decodeBookingJSON(b *domain.Booking, passengers, contact []byte) error {
	if err := json.Unmarshal(passengers, &b.Passengers); err != nil {
		return err
	}
	if len(contact) == 0 {
		return nil
	}
	return json.Unmarshal(contact, &b.ContactInfo)
}

var _ BookingRepository = (*PGBookingRepository)(nil)
