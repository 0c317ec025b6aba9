package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Postgres PostgresConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Elastic  ElasticsearchConfig
	Tracing  TracingConfig
	Locale   LocaleConfig
}

type ServerConfig struct {
	AppEnv          string
	HTTPPort        string
	GRPCPort        string
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
	FilePath          string
	MaxSizeMB         int
	MaxBackups        int
	MaxAgeDays        int
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}

type JWTConfig struct {
	SecretKey string
}

type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	LockTTL      time.Duration
	LockAttempts int
	LockDelay    time.Duration
}

type KafkaConfig struct {
	Brokers     []string
	OrdersTopic string
	AlertsTopic string
	GroupID     string
}

type ElasticsearchConfig struct {
	Addresses []string
	Username  string
	Password  string
}

type TracingConfig struct {
	Endpoint    string
	ServiceName string
	SampleRatio float64
}

type LocaleConfig struct {
	Files []string
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:          getEnv("APP_ENV", "dev"),
			HTTPPort:        getEnv("HTTP_PORT", ":8080"),
			GRPCPort:        getEnv("GRPC_PORT", ":8082"),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
			FilePath:          getEnv("LOGGER_FILE", ""),
			MaxSizeMB:         getEnvInt("LOGGER_MAX_SIZE_MB", 100),
			MaxBackups:        getEnvInt("LOGGER_MAX_BACKUPS", 5),
			MaxAgeDays:        getEnvInt("LOGGER_MAX_AGE_DAYS", 28),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getEnv("POSTGRES_PORT", "5433"),
			User:            getEnv("POSTGRES_USER", "omnipos"),
			Password:        getEnv("POSTGRES_PASSWORD", "omnipos"),
			DBName:          getEnv("POSTGRES_DB", "omnipos_stock"),
			SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("POSTGRES_CONN_MAX_LIFETIME", 300),
			ConnMaxIdleTime: getEnvInt("POSTGRES_CONN_MAX_IDLE_TIME", 60),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET_KEY", "your-secret-key-change-this-in-prod"),
		},
		Redis: RedisConfig{
			Addr:         getEnv("REDIS_ADDR", "localhost:6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvInt("REDIS_DB", 0),
			LockTTL:      getEnvDuration("REDIS_LOCK_TTL", 5*time.Second),
			LockAttempts: getEnvInt("REDIS_LOCK_ATTEMPTS", 20),
			LockDelay:    getEnvDuration("REDIS_LOCK_DELAY", 50*time.Millisecond),
		},
		Kafka: KafkaConfig{
			Brokers:     getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			OrdersTopic: getEnv("KAFKA_TOPIC_ORDERS", "orders.events"),
			AlertsTopic: getEnv("KAFKA_TOPIC_ALERTS", "stock.alerts"),
			GroupID:     getEnv("KAFKA_GROUP_INVENTORY", "inventory"),
		},
		Elastic: ElasticsearchConfig{
			Addresses: getEnvSlice("ELASTICSEARCH_ADDRESSES", []string{"http://localhost:9200"}),
			Username:  getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:  getEnv("ELASTICSEARCH_PASSWORD", ""),
		},
		Tracing: TracingConfig{
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			ServiceName: getEnv("SERVICE_NAME", "omnipos-stock-service"),
			SampleRatio: getEnvFloat("OTEL_SAMPLE_RATIO", 1),
		},
		Locale: LocaleConfig{
			Files: getEnvSlice("LOCALE_FILES", nil),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return fallback
}
