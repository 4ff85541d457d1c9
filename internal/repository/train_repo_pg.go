package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/trainbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const trainColumns = `id, train_number, train_name, source, destination, departure_time, arrival_time, frequency, base_price, total_seats, status`

type PGTrainRepository struct {
	db *pgxpool.Pool
}

func NewTrainRepository(db *pgxpool.Pool) *PGTrainRepository {
	return &PGTrainRepository{db: db}
}

func (r *PGTrainRepository) List(ctx context.Context, filter domain.TrainFilter) ([]domain.Train, error) {
	where, args := trainWhere(filter)
	rows, err := r.db.Query(ctx, `SELECT `+trainColumns+` FROM trains`+where+` ORDER BY train_number`, args...)
	if err != nil {
		return nil, storeError("select trains", err)
	}
	defer rows.Close()

	trains := make([]domain.Train, 0)
	for rows.Next() {
		t, err := scanTrain(rows)
		if err != nil {
			return nil, storeError("scan train", err)
		}
		trains = append(trains, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("select trains", err)
	}
	return trains, nil
}

func (r *PGTrainRepository) GetByID(ctx context.Context, id string) (*domain.Train, error) {
	t, err := scanTrain(r.db.QueryRow(ctx, `SELECT `+trainColumns+` FROM trains WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("train", id)
		}
		return nil, storeError("select train", err)
	}
	return t, nil
}

func (r *PGTrainRepository) Create(ctx context.Context, train *domain.Train) error {
	id := uuid.NewString()
	_, err := r.db.Exec(ctx, `INSERT INTO trains (`+trainColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		id, train.TrainNumber, train.TrainName, train.Source, train.Destination, train.DepartureTime, train.ArrivalTime,
		string(train.Frequency), train.BasePrice, train.TotalSeats, string(train.Status))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("train number %q already exists: %w", train.TrainNumber, domain.ErrConflict)
		}
		return storeError("insert train", err)
	}
	train.ID = id
	return nil
}

func (r *PGTrainRepository) Update(ctx context.Context, train *domain.Train) error {
	cmd, err := r.db.Exec(ctx, `UPDATE trains SET train_number=$2, train_name=$3, source=$4, destination=$5,
		departure_time=$6, arrival_time=$7, frequency=$8, base_price=$9, total_seats=$10, status=$11, updated_at=now()
		WHERE id=$1`,
		train.ID, train.TrainNumber, train.TrainName, train.Source, train.Destination, train.DepartureTime, train.ArrivalTime,
		string(train.Frequency), train.BasePrice, train.TotalSeats, string(train.Status))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("train number %q already exists: %w", train.TrainNumber, domain.ErrConflict)
		}
		return storeError("update train", err)
	}
	if cmd.RowsAffected() == 0 {
		return notFound("train", train.ID)
	}
	return nil
}

func (r *PGTrainRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM trains WHERE id=$1`, id)
	if err != nil {
		return storeError("delete train", err)
	}
	if cmd.RowsAffected() == 0 {
		return notFound("train", id)
	}
	return nil
}

func scanTrain(row pgx.Row) (*domain.Train, error) {
	var t domain.Train
	var frequency, status string
	if err := row.Scan(&t.ID, &t.TrainNumber, &t.TrainName, &t.Source, &t.Destination, &t.DepartureTime, &t.ArrivalTime,
		&frequency, &t.BasePrice, &t.TotalSeats, &status); err != nil {
		return nil, err
	}
	t.Frequency = domain.TrainFrequency(frequency)
	t.Status = domain.TrainStatus(status)
	return &t, nil
}

func trainWhere(f domain.TrainFilter) (string, []any) {
	var conds []string
	var args []any
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Source != "" {
		conds = append(conds, "source ILIKE "+next(likePattern(f.Source)))
	}
	if f.Destination != "" {
		conds = append(conds, "destination ILIKE "+next(likePattern(f.Destination)))
	}
	if f.Status != "" {
		conds = append(conds, "status = "+next(string(f.Status)))
	}
	if f.Query != "" {
		p := next(likePattern(f.Query))
		conds = append(conds, "(train_name ILIKE "+p+" OR train_number LIKE "+p+")")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

var _ TrainRepository = (*PGTrainRepository)(nil)
