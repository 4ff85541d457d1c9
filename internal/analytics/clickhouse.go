package analytics

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/Domenick1991/trainbooking/config"
	"github.com/Domenick1991/trainbooking/internal/kafka"
	"go.uber.org/zap"
)

const createEventsTable = `
	CREATE TABLE IF NOT EXISTS booking_events (
		type        LowCardinality(String),
		booking_id  String,
		pnr         String,
		train_id    String,
		customer_id String,
		status      LowCardinality(String),
		total_fare  Float64,
		passengers  UInt8,
		occurred_at DateTime64(3)
	) ENGINE = MergeTree() ORDER BY (occurred_at, pnr)`

// Recorder appends booking events to ClickHouse for reporting.
type Recorder struct {
	conn driver.Conn
	log  *zap.Logger
}

func Open(ctx context.Context, cfg config.ClickHouseConfig) (driver.Conn, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		DialTimeout: cfg.DialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}
	return conn, nil
}

func NewRecorder(conn driver.Conn, log *zap.Logger) *Recorder {
	return &Recorder{conn: conn, log: log}
}

func (r *Recorder) EnsureTable(ctx context.Context) error {
	return r.conn.Exec(ctx, createEventsTable)
}

func (r *Recorder) Record(ctx context.Context, event kafka.BookingEvent) error {
	batch, err := r.conn.PrepareBatch(ctx, `INSERT INTO booking_events`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}
	if err := batch.Append(
		event.Type, event.BookingID, event.PNR, event.TrainID, event.CustomerID,
		event.Status, event.TotalFare, uint8(event.Passengers), event.OccurredAt,
	); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	r.log.Debug("booking event recorded", zap.String("pnr", event.PNR), zap.String("type", event.Type))
	return nil
}

func (r *Recorder) Close() error {
	return r.conn.Close()
}
