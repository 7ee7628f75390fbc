package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bibbank/credit-service/pkg/kafka"
	pgutil "github.com/bibbank/credit-service/pkg/postgres"
)

const serviceName = "credit-service"

type LogConfig struct {
	Level  string
	Format string
}

type TracingConfig struct {
	Endpoint string
	Insecure bool
}

type GRPCConfig struct {
	Reflection bool
	CertFile   string
	KeyFile    string
}

// TLSEnabled reports whether both a certificate and a key were configured.
func (g GRPCConfig) TLSEnabled() bool {
	return g.CertFile != "" && g.KeyFile != ""
}

type KafkaConfig struct {
	kafka.Config
	Topic string
}

// Enabled reports whether events go to a broker rather than to the log.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type Config struct {
	ServiceName     string
	DB              pgutil.Config
	Kafka           KafkaConfig
	Log             LogConfig
	Tracing         TracingConfig
	GRPC            GRPCConfig
	OverdueSchedule string
	ShutdownTimeout time.Duration
	GRPCPort        int
	HTTPPort        int
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var errs []error
	if c.DB.Password == "" {
		errs = append(errs, errors.New("DB_PASSWORD environment variable is required"))
	}
	if c.GRPCPort <= 0 || c.GRPCPort > 65535 {
		errs = append(errs, fmt.Errorf("GRPC_PORT %d out of range", c.GRPCPort))
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("HTTP_PORT %d out of range", c.HTTPPort))
	}
	if c.OverdueSchedule != "" {
		if _, err := cron.ParseStandard(c.OverdueSchedule); err != nil {
			errs = append(errs, fmt.Errorf("OVERDUE_SWEEP_SCHEDULE: %w", err))
		}
	}
	if (c.GRPC.CertFile == "") != (c.GRPC.KeyFile == "") {
		errs = append(errs, errors.New("GRPC_TLS_CERT_FILE and GRPC_TLS_KEY_FILE must be set together"))
	}
	if c.Kafka.Enabled() && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("KAFKA_TOPIC must not be empty"))
	}
	if c.Kafka.SASLEnabled && c.Kafka.SASLUsername == "" {
		errs = append(errs, errors.New("KAFKA_SASL_USERNAME is required when KAFKA_SASL_ENABLED is set"))
	}
	return errors.Join(errs...)
}

func Load() Config {
	return Config{
		ServiceName: serviceName,
		GRPCPort:    getEnvInt("GRPC_PORT", 9087),
		HTTPPort:    getEnvInt("HTTP_PORT", 8087),
		DB: pgutil.Config{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "bib"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "bib_credit"),
			SSLMode:         getEnv("DB_SSLMODE", "require"),
			MaxConns:        int32(getEnvInt("DB_MAX_CONNS", 10)),
			ApplicationName: serviceName,
		},
		Kafka: KafkaConfig{
			Config: kafka.Config{
				Brokers:       getEnvList("KAFKA_BROKERS"),
				TLS:           getEnvBool("KAFKA_TLS", false),
				SASLEnabled:   getEnvBool("KAFKA_SASL_ENABLED", false),
				SASLMechanism: getEnv("KAFKA_SASL_MECHANISM", "PLAIN"),
				SASLUsername:  getEnv("KAFKA_SASL_USERNAME", ""),
				SASLPassword:  getEnv("KAFKA_SASL_PASSWORD", ""),
			},
			Topic: getEnv("KAFKA_TOPIC", "credit-events"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Tracing: TracingConfig{
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Insecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		},
		GRPC: GRPCConfig{
			Reflection: getEnvBool("GRPC_REFLECTION", false),
			CertFile:   getEnv("GRPC_TLS_CERT_FILE", ""),
			KeyFile:    getEnv("GRPC_TLS_KEY_FILE", ""),
		},
		OverdueSchedule: getEnv("OVERDUE_SWEEP_SCHEDULE", "@hourly"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma-separated value, dropping empty items.
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
