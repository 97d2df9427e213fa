// Пакет config — загрузка и валидация конфигурации из переменных окружения.
// Конфигурация строится один раз на старте процесса и передаётся зависимостям
// явно; невалидные значения фатальны на старте, не во время работы.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/romariotrain/audioscribe/internal/audio/models"
)

const (
	defaultHTTPAddr        = ":8080"
	defaultLogLevel        = "info"
	defaultDBPort          = "5432"
	defaultDBSSLMode       = "require"
	defaultUploadDir       = "./uploads"
	defaultModel           = models.ModelBase
	defaultOutboxInterval  = 5 * time.Second
	defaultOutboxBatchSize = 100
	minJWTSecretLen        = 32
)

type Config struct {
	// --- HTTP ---
	HTTPAddr string
	LogLevel zerolog.Level

	// --- База данных ---
	// DatabaseURL либо задаётся целиком (DATABASE_URL), либо собирается
	// из DB_USER / DB_PASSWORD / DB_HOST / DB_PORT / DB_NAME.
	DatabaseURL string

	// --- Хранилище аудио ---
	UploadDir    string
	DefaultModel models.WhisperModel

	// --- Безопасность (bootstrap, авторизация пока не реализована) ---
	JWTSecret          string
	FirstAdminUsername string
	FirstAdminEnabled  bool

	// --- Очередь задач ---
	QueueEnabled    bool
	KafkaBrokers    []string
	KafkaTopic      string
	OutboxInterval  time.Duration
	OutboxBatchSize int
}

// Load reads configuration from the environment, seeding it from .env when
// present. Returns an error on any invalid value.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	var err error

	cfg.HTTPAddr = getEnvDefault("HTTP_ADDR", defaultHTTPAddr)

	level := getEnvDefault("LOG_LEVEL", defaultLogLevel)
	cfg.LogLevel, err = zerolog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	cfg.DatabaseURL, err = loadDatabaseURL()
	if err != nil {
		return nil, err
	}

	cfg.UploadDir = getEnvDefault("UPLOAD_DIR", defaultUploadDir)

	modelName := getEnvDefault("DEFAULT_MODEL", string(defaultModel))
	cfg.DefaultModel, err = models.ParseModel(modelName)
	if err != nil {
		return nil, fmt.Errorf("DEFAULT_MODEL: %w", err)
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret != "" && len(cfg.JWTSecret) < minJWTSecretLen {
		return nil, fmt.Errorf("JWT_SECRET: must be at least %d characters", minJWTSecretLen)
	}
	cfg.FirstAdminUsername = getEnvDefault("FIRST_ADMIN_USERNAME", "admin")
	cfg.FirstAdminEnabled, err = getEnvBool("FIRST_ADMIN_ENABLED", false)
	if err != nil {
		return nil, fmt.Errorf("FIRST_ADMIN_ENABLED: %w", err)
	}

	cfg.QueueEnabled, err = getEnvBool("QUEUE_ENABLED", false)
	if err != nil {
		return nil, fmt.Errorf("QUEUE_ENABLED: %w", err)
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	cfg.KafkaTopic = getEnvDefault("KAFKA_TOPIC", "audio-events")
	if cfg.QueueEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS: required when QUEUE_ENABLED=true")
	}

	cfg.OutboxInterval, err = getEnvDuration("OUTBOX_INTERVAL", defaultOutboxInterval)
	if err != nil {
		return nil, fmt.Errorf("OUTBOX_INTERVAL: %w", err)
	}
	cfg.OutboxBatchSize, err = getEnvInt("OUTBOX_BATCH_SIZE", defaultOutboxBatchSize)
	if err != nil {
		return nil, fmt.Errorf("OUTBOX_BATCH_SIZE: %w", err)
	}
	if cfg.OutboxBatchSize <= 0 {
		return nil, fmt.Errorf("OUTBOX_BATCH_SIZE: must be positive")
	}

	return cfg, nil
}

// loadDatabaseURL returns DATABASE_URL as-is or assembles a postgres DSN
// from the DB_* parts, пароль экранируется.
func loadDatabaseURL() (string, error) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn, nil
	}

	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	host := os.Getenv("DB_HOST")
	name := os.Getenv("DB_NAME")

	var missing []string
	for _, kv := range []struct{ k, v string }{
		{"DB_USER", user}, {"DB_PASSWORD", password}, {"DB_HOST", host}, {"DB_NAME", name},
	} {
		if kv.v == "" {
			missing = append(missing, kv.k)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("database connection: set DATABASE_URL or the missing parts: %s", strings.Join(missing, ", "))
	}

	port := getEnvDefault("DB_PORT", defaultDBPort)
	sslMode := getEnvDefault("DB_SSLMODE", defaultDBSSLMode)

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     host + ":" + port,
		Path:     "/" + name,
		RawQuery: "sslmode=" + url.QueryEscape(sslMode),
	}
	return u.String(), nil
}

// Sanitized returns the effective configuration without secrets,
// для эндпоинта GET /settings.
func (c *Config) Sanitized() map[string]any {
	dbURL := c.DatabaseURL
	if u, err := url.Parse(dbURL); err == nil && u.User != nil {
		u.User = url.User(u.User.Username())
		dbURL = u.String()
	}

	return map[string]any{
		"HTTP_ADDR":            c.HTTPAddr,
		"LOG_LEVEL":            c.LogLevel.String(),
		"DATABASE_URL":         dbURL,
		"UPLOAD_DIR":           c.UploadDir,
		"DEFAULT_MODEL":        string(c.DefaultModel),
		"FIRST_ADMIN_USERNAME": c.FirstAdminUsername,
		"FIRST_ADMIN_ENABLED":  c.FirstAdminEnabled,
		"QUEUE_ENABLED":        c.QueueEnabled,
		"KAFKA_BROKERS":        c.KafkaBrokers,
		"KAFKA_TOPIC":          c.KafkaTopic,
		"OUTBOX_INTERVAL":      c.OutboxInterval.String(),
		"OUTBOX_BATCH_SIZE":    c.OutboxBatchSize,
	}
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	return strconv.ParseBool(v)
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	return time.ParseDuration(v)
}
