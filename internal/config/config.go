package config

import (
	"os"
	"strconv"
	"time"

	"stagedoor/internal/database"
	"stagedoor/internal/external"
	"stagedoor/internal/messaging"
)

// Config содержит конфигурацию приложения
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	Database      database.Config
	NATS          messaging.Config
	Valkey        ValkeyConfig
	Elasticsearch ElasticsearchConfig
	Email         external.EmailConfig
}

// ValkeyConfig настройки подключения к Valkey
type ValkeyConfig struct {
	Addr         string
	Password     string
	UsersHashKey string
	ShowsTTL     time.Duration
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8081"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "stagedoor"),
			Password:           getEnv("DB_PASSWORD", "stagedoor123"),
			DBName:             getEnv("DB_NAME", "stagedoor"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 100),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "stagedoor"),
			ClientID:  getEnv("NATS_CLIENT_ID", "stagedoor-api"),
		},

		Valkey: ValkeyConfig{
			Addr:         getEnv("VALKEY_ADDR", "localhost:6379"),
			Password:     getEnv("VALKEY_PASSWORD", ""),
			UsersHashKey: getEnv("VALKEY_USERS_HASH_KEY", "users:auth"),
			ShowsTTL:     time.Duration(getEnvInt("VALKEY_SHOWS_TTL_SEC", 60)) * time.Second,
		},

		Elasticsearch: LoadElasticsearchConfig(),

		Email: external.EmailConfig{
			BaseURL: getEnv("EMAIL_SERVICE_URL", "http://localhost:8090"),
			APIKey:  getEnv("EMAIL_API_KEY", ""),
			Sender:  getEnv("EMAIL_SENDER", "tickets@stagedoor.local"),
			Timeout: time.Duration(getEnvInt("EMAIL_TIMEOUT_SEC", 10)) * time.Second,
		},
	}
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает целочисленное значение переменной окружения
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
