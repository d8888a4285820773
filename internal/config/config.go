package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Provider ProviderConfig
	Dispatch DispatchConfig
	Sweep    SweepConfig
}

type ServerConfig struct {
	Address string
}

type DatabaseConfig struct {
	PostgresURL string
}

type RedisConfig struct {
	Address    string
	Password   string
	DB         int
	Channel    string
	ReceiptTTL time.Duration
}

type ProviderConfig struct {
	APIURL        string
	Username      string
	APIKey        string
	DefaultSender string
}

type DispatchConfig struct {
	// MaxRetries caps the per-record retry counter; 0 leaves it uncapped
	// and failing records pending.
	MaxRetries int
}

type SweepConfig struct {
	// Interval of 0 disables the retry sweeper entirely.
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

func LoadAll() (*Config, error) {
	var errs []error

	require := func(key string) string {
		v, err := requireEnv(key)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}
	intEnv := func(key string, def int) int {
		v, err := getEnvInt(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}

	cfg := &Config{
		Server: ServerConfig{
			Address: getEnv("SERVER_ADDRESS", ":8080"),
		},
		Database: DatabaseConfig{
			PostgresURL: require("POSTGRES_URL"),
		},
		Redis: RedisConfig{
			Address:    require("REDIS_ADDR"),
			Password:   os.Getenv("REDIS_PASSWORD"),
			DB:         intEnv("REDIS_DB", 0),
			Channel:    getEnv("REDIS_CHANNEL", "pubsub:queue"),
			ReceiptTTL: time.Duration(intEnv("RECEIPT_TTL_SECONDS", 86400)) * time.Second,
		},
		Provider: ProviderConfig{
			APIURL:        require("SMS_API_URL"),
			Username:      require("SMS_USERNAME"),
			APIKey:        require("SMS_API_KEY"),
			DefaultSender: getEnv("SMS_DEFAULT_SENDER", ""),
		},
		Dispatch: DispatchConfig{
			MaxRetries: intEnv("DISPATCH_MAX_RETRIES", 0),
		},
		Sweep: SweepConfig{
			Interval:   time.Duration(intEnv("SWEEP_INTERVAL_SECONDS", 0)) * time.Second,
			BatchSize:  intEnv("SWEEP_BATCH_SIZE", 50),
			MaxRetries: intEnv("SWEEP_MAX_RETRIES", 3),
		},
	}

	errs = append(errs, validate(cfg)...)

	if err := joinErrors(errs); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) []error {
	var errs []error
	if cfg.Dispatch.MaxRetries < 0 {
		errs = append(errs, errors.New("DISPATCH_MAX_RETRIES must be >= 0"))
	}
	if cfg.Sweep.Interval < 0 {
		errs = append(errs, errors.New("SWEEP_INTERVAL_SECONDS must be >= 0"))
	}
	if cfg.Sweep.BatchSize <= 0 {
		errs = append(errs, errors.New("SWEEP_BATCH_SIZE must be > 0"))
	}
	if cfg.Sweep.MaxRetries <= 0 {
		errs = append(errs, errors.New("SWEEP_MAX_RETRIES must be > 0"))
	}
	if cfg.Redis.ReceiptTTL <= 0 {
		errs = append(errs, errors.New("RECEIPT_TTL_SECONDS must be > 0"))
	}
	return errs
}

func requireEnv(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("missing required env var: %s", key)
	}
	return val, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid int for env %s: %s", key, v)
	}
	return i, nil
}

func joinErrors(errs []error) error {
	return errors.Join(errs...)
}
