package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StorageMongo    = "mongo"
	StoragePostgres = "postgres"
)

type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Storage    StorageConfig    `yaml:"storage"`
	Mongo      MongoConfig      `yaml:"mongo"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	Booking    BookingConfig    `yaml:"booking"`
	Auth       AuthConfig       `yaml:"auth"`
	Log        LogConfig        `yaml:"log"`
	Worker     WorkerConfig     `yaml:"worker"`
}

type HTTPConfig struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env-default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"5s"`
	EnableDocs      bool          `yaml:"enable_docs"`
}

type StorageConfig struct {
	Driver       string        `yaml:"driver" env:"STORAGE_DRIVER" env-default:"mongo"`
	ConnAttempts uint          `yaml:"conn_attempts" env-default:"3"`
	ConnDelay    time.Duration `yaml:"conn_delay" env-default:"1s"`
	ConnMaxDelay time.Duration `yaml:"conn_max_delay" env-default:"5s"`
}

type MongoConfig struct {
	URI      string `yaml:"uri" env:"MONGO_URI"`
	Database string `yaml:"database" env:"MONGO_DATABASE" env-default:"eticket"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	Name     string `yaml:"name" env:"DB_NAME"`
	SSLMode  string `yaml:"ssl_mode" env-default:"disable"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string      `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	BookingEventsTopic string        `yaml:"booking_events_topic" env-default:"booking_events"`
	NotificationsTopic string        `yaml:"notifications_topic"`
	GroupID            string        `yaml:"group_id" env-default:"eticket-worker"`
	PublishAttempts    uint          `yaml:"publish_attempts" env-default:"3"`
	PublishDelay       time.Duration `yaml:"publish_delay" env-default:"200ms"`
}

type ClickHouseConfig struct {
	Addr        string        `yaml:"addr" env:"CLICKHOUSE_ADDR"`
	Database    string        `yaml:"database" env-default:"default"`
	Username    string        `yaml:"username" env:"CLICKHOUSE_USER" env-default:"default"`
	Password    string        `yaml:"password" env:"CLICKHOUSE_PASSWORD"`
	DialTimeout time.Duration `yaml:"dial_timeout" env-default:"5s"`
}

type BookingConfig struct {
	TrainsCacheTTL time.Duration `yaml:"trains_cache_ttl" env-default:"30s"`
	PNRAttempts    int           `yaml:"pnr_attempts" env-default:"3"`
}

type AuthConfig struct {
	AdminToken string `yaml:"admin_token" env:"ADMIN_TOKEN"`
	JWTSecret  string `yaml:"jwt_secret" env:"JWT_SECRET"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type WorkerConfig struct {
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
	// MetricsAddress serves the worker's /metrics when set.
	MetricsAddress string `yaml:"metrics_address" env:"WORKER_METRICS_ADDRESS"`
}

// LoadConfig reads the YAML file at path, then applies defaults and environment
// overrides. A .env file in the working directory is loaded first when present.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageMongo:
		if c.Mongo.URI == "" {
			return errors.New("mongo.uri is required for the mongo storage driver")
		}
	case StoragePostgres:
		if c.Database.Host == "" {
			return errors.New("database.host is required for the postgres storage driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Auth.AdminToken == "" {
		return errors.New("auth.admin_token is required")
	}
	return nil
}
