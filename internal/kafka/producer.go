package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingCancelled = "booking_cancelled"
)

type BookingEvent struct {
	Type       string    `json:"type"`
	BookingID  string    `json:"booking_id"`
	PNR        string    `json:"pnr"`
	TrainID    string    `json:"train_id"`
	CustomerID string    `json:"customer_id,omitempty"`
	Status     string    `json:"status"`
	TotalFare  float64   `json:"total_fare"`
	Passengers int       `json:"passengers"`
	Email      string    `json:"email,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Producer struct {
	writer   *kafka.Writer
	log      *zap.Logger
	attempts uint
	delay    time.Duration
}

func NewProducer(brokers []string, attempts uint, delay time.Duration, log *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	if attempts == 0 {
		attempts = 1
	}
	return &Producer{writer: writer, log: log, attempts: attempts, delay: delay}
}

// Publish writes payload as JSON under key, retrying transient write failures.
func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	err = retry.Do(
		func() error {
			return p.writer.WriteMessages(ctx, message)
		},
		retry.Attempts(p.attempts),
		retry.Delay(p.delay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			p.log.Warn("kafka publish attempt failed",
				zap.String("topic", topic), zap.String("key", key), zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	p.log.Debug("published to kafka", zap.String("topic", topic), zap.String("key", key))
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
