package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Sink backends selectable with SINK_BACKEND.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendKafka    = "kafka"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataDir             string
	SinkBackend         string
	SQLitePath          string
	DatabaseURL         string
	SinkConnectAttempts int

	KafkaBrokers       []string
	KafkaProfileTopic  string
	KafkaMetadataTopic string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where
// unset. Values from a .env file in the working directory fill in variables
// that are not already set.
func Load() (*Config, error) {
	_ = godotenv.Load() // ignore missing file

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	attempts, err := parseConnectAttempts()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataDir:             sharedcfg.EnvOrDefault("ARGO_DATA_DIR", "data"),
		SinkBackend:         sharedcfg.EnvOrDefault("SINK_BACKEND", BackendSQLite),
		SQLitePath:          sharedcfg.EnvOrDefault("SQLITE_PATH", "data/argo.db"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		SinkConnectAttempts: attempts,
		KafkaBrokers:        sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaProfileTopic:   sharedcfg.EnvOrDefault("KAFKA_PROFILE_TOPIC", "argo-profiles"),
		KafkaMetadataTopic:  sharedcfg.EnvOrDefault("KAFKA_METADATA_TOPIC", "argo-metadata"),
		HTTPAddr:            os.Getenv("HTTP_ADDR"),
		LogLevel:            sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:     shutdownTimeout,
	}

	if cfg.DataDir == "" {
		return nil, errors.New("ARGO_DATA_DIR is required")
	}

	switch cfg.SinkBackend {
	case BackendSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLITE_PATH is required for the sqlite sink")
		}
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required for the postgres sink")
		}
	case BackendKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required for the kafka sink")
		}
		if cfg.KafkaProfileTopic == "" || cfg.KafkaMetadataTopic == "" {
			return nil, errors.New("KAFKA_PROFILE_TOPIC and KAFKA_METADATA_TOPIC are required for the kafka sink")
		}
		if cfg.KafkaProfileTopic == cfg.KafkaMetadataTopic {
			return nil, errors.New("KAFKA_PROFILE_TOPIC and KAFKA_METADATA_TOPIC must differ")
		}
	default:
		return nil, fmt.Errorf("invalid SINK_BACKEND %q: want sqlite, postgres or kafka", cfg.SinkBackend)
	}

	return cfg, nil
}

func parseConnectAttempts() (int, error) {
	s := os.Getenv("SINK_CONNECT_ATTEMPTS")
	if s == "" {
		return 5, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 20 {
		return 0, errors.New("invalid SINK_CONNECT_ATTEMPTS: must be 1-20")
	}
	return n, nil
}
