package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации сервера объектов.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Cache     CacheConfig     `yaml:"cache"`
	Auth      AuthConfig      `yaml:"auth"`
	EventBus  EventBusConfig  `yaml:"eventbus"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	RESTPort int `yaml:"rest_port"`
}

// StorageConfig выбирает хранилище документов проектов.
// Backend: badger, memory, redis, mongo или maria.
type StorageConfig struct {
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	Compression bool   `yaml:"compression"`
	RedisAddr   string `yaml:"redis_addr"`
	MongoURI    string `yaml:"mongo_uri"`
	MongoDB     string `yaml:"mongo_db"`
	MariaDSN    string `yaml:"maria_dsn"`
}

// CacheConfig горячий кеш документов перед хранилищем.
// Пустой redis_addr означает локальный кеш в памяти узла,
// invalidation_url включает рассылку инвалидаций через NATS.
type CacheConfig struct {
	Enabled         bool   `yaml:"enabled"`
	RedisAddr       string `yaml:"redis_addr"`
	TTLSeconds      int    `yaml:"ttl_seconds"`
	MaxSizeMB       int    `yaml:"max_size_mb"`
	InvalidationURL string `yaml:"invalidation_url"`
	NodeID          string `yaml:"node_id"`
}

// AuthConfig включает JWT-авторизацию изменяющих маршрутов API.
// Секрет задаётся в base64; пустой jwt_secret берётся из ENV OBJECTKIT_JWT_SECRET.
type AuthConfig struct {
	Enabled         bool   `yaml:"enabled"`
	JWTSecret       string `yaml:"jwt_secret"`
	TokenTTLMinutes int    `yaml:"token_ttl_minutes"`
	AdminUser       string `yaml:"admin_user"`
	AdminPassword   string `yaml:"admin_password"`
}

// GetJWTSecret возвращает секрет с приоритетом: config -> env
func (a *AuthConfig) GetJWTSecret() string {
	if a.JWTSecret != "" {
		return a.JWTSecret
	}
	return os.Getenv("OBJECTKIT_JWT_SECRET")
}

type EventBusConfig struct {
	URL       string `yaml:"url"`
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// Default возвращает конфигурацию по умолчанию: встроенное хранилище
// badger в ./data и шина событий в памяти.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:     "badger",
			Path:        "data",
			Compression: true,
			MongoDB:     "objectkit",
		},
		Cache: CacheConfig{
			TTLSeconds: 300,
			MaxSizeMB:  64,
		},
		Auth: AuthConfig{
			TokenTTLMinutes: 24 * 60,
			AdminUser:       "admin",
		},
		EventBus: EventBusConfig{
			Stream:    "OBJECTKIT",
			Retention: 24,
		},
		Telemetry: TelemetryConfig{ServiceName: "objectkit"},
		Logging:   LoggingConfig{Level: "info"},
	}
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "OBJECTKIT_REST_PORT", 8090)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", берётся путь из ENV OBJECTKIT_CONFIG; если не задан
// и он, возвращается Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("OBJECTKIT_CONFIG")
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения конфигурации %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации %s: %w", path, err)
	}

	return cfg, nil
}
