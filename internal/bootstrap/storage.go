package bootstrap

import (
	"context"
	"fmt"

	"github.com/Domenick1991/trainbooking/config"
	"github.com/Domenick1991/trainbooking/internal/repository"
	"github.com/avast/retry-go"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Storage is the repository pair for the configured driver.
type Storage struct {
	Trains   repository.TrainRepository
	Bookings repository.BookingRepository
	close    func(context.Context) error
}

func (s *Storage) Close(ctx context.Context) error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// OpenStorage connects to the configured store, retrying the initial ping, and
// prepares indexes or schema.
func OpenStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageMongo:
		return openMongo(ctx, cfg, log)
	case config.StoragePostgres:
		return openPostgres(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func openMongo(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Storage, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	err = withRetry(ctx, cfg.Storage, log, "mongo", func() error {
		return client.Ping(ctx, readpref.Primary())
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(cfg.Mongo.Database)
	if err := repository.EnsureMongoIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	log.Info("storage ready", zap.String("driver", config.StorageMongo), zap.String("database", cfg.Mongo.Database))

	return &Storage{
		Trains:   repository.NewMongoTrainRepository(db),
		Bookings: repository.NewMongoBookingRepository(db),
		close:    client.Disconnect,
	}, nil
}

func openPostgres(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Storage, error) {
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := withRetry(ctx, cfg.Storage, log, "postgres", func() error { return pool.Ping(ctx) }); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := repository.EnsurePostgresSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	log.Info("storage ready", zap.String("driver", config.StoragePostgres), zap.String("host", cfg.Database.Host))

	return &Storage{
		Trains:   repository.NewTrainRepository(pool),
		Bookings: repository.NewBookingRepository(pool),
		close: func(context.Context) error {
			pool.Close()
			return nil
		},
	}, nil
}

func withRetry(ctx context.Context, cfg config.StorageConfig, log *zap.Logger, name string, fn func() error) error {
	return retry.Do(fn,
		retry.Context(ctx),
		retry.Attempts(cfg.ConnAttempts),
		retry.Delay(cfg.ConnDelay),
		retry.MaxDelay(cfg.ConnMaxDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("store not reachable, retrying", zap.String("store", name), zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
}
