// Пакет config — загрузка и валидация конфигурации Report Service
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации Report Service.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера (по умолчанию 80, как у остальных сервисов стека)
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- HTTP Server Timeouts ---

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// --- Graceful shutdown ---

	ShutdownTimeout time.Duration

	// --- Triple store ---

	// SPARQLEndpoint — URL SPARQL endpoint
	SPARQLEndpoint string
	// ApplicationGraph — граф, в котором живут отчёты, файлы и сессии
	ApplicationGraph string
	// BaseIRI — префикс IRI новых отчётов
	BaseIRI string
	// SPARQLTimeout — таймаут HTTP-запросов к endpoint
	SPARQLTimeout time.Duration
	// SPARQLCACertPath — CA-сертификат для https endpoint (пусто: системный пул)
	SPARQLCACertPath string

	// --- Статус по умолчанию ---

	// DraftStatusIRI — IRI статуса нового отчёта
	DraftStatusIRI string
	// DraftStatusID — uuid статуса нового отчёта
	DraftStatusID string

	// --- Мониторинг зависимостей (topologymetrics) ---

	DephealthEnabled       bool
	DephealthGroup         string
	DephealthCheckInterval time.Duration
	// DephealthIsEntry — лейбл isentry=yes для всех зависимостей
	DephealthIsEntry bool
	// DephealthTLSSkipVerify — не проверять сертификат https endpoint в проверке
	// доступности (CA из BBCDR_SPARQL_CA_CERT_PATH checker не принимает)
	DephealthTLSSkipVerify bool
}

// Load загружает конфигурацию из переменных окружения.
// Возвращает ошибку, если значения некорректны.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// BBCDR_PORT — порт HTTP-сервера (по умолчанию 80)
	cfg.Port, err = getEnvInt("BBCDR_PORT", 80)
	if err != nil {
		return nil, fmt.Errorf("BBCDR_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("BBCDR_PORT: порт %d вне диапазона 1-65535", cfg.Port)
	}

	// BBCDR_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("BBCDR_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("BBCDR_LOG_LEVEL: %w", err)
	}

	// BBCDR_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("BBCDR_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("BBCDR_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- HTTP Server Timeouts ---

	cfg.HTTPReadTimeout, err = getEnvDuration("BBCDR_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("BBCDR_HTTP_READ_TIMEOUT: %w", err)
	}
	cfg.HTTPWriteTimeout, err = getEnvDuration("BBCDR_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("BBCDR_HTTP_WRITE_TIMEOUT: %w", err)
	}
	cfg.HTTPIdleTimeout, err = getEnvDuration("BBCDR_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("BBCDR_HTTP_IDLE_TIMEOUT: %w", err)
	}

	// BBCDR_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("BBCDR_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("BBCDR_SHUTDOWN_TIMEOUT: %w", err)
	}

	// --- Triple store ---

	// MU_SPARQL_ENDPOINT — имя переменной общее для сервисов mu.semte.ch
	cfg.SPARQLEndpoint = getEnvDefault("MU_SPARQL_ENDPOINT", "http://database:8890/sparql")
	if err := validateAbsoluteURL(cfg.SPARQLEndpoint); err != nil {
		return nil, fmt.Errorf("MU_SPARQL_ENDPOINT: %w", err)
	}

	cfg.ApplicationGraph = getEnvDefault("MU_APPLICATION_GRAPH", "http://mu.semte.ch/application")
	if err := validateAbsoluteURL(cfg.ApplicationGraph); err != nil {
		return nil, fmt.Errorf("MU_APPLICATION_GRAPH: %w", err)
	}

	cfg.BaseIRI = getEnvDefault("MU_BASE_IRI", "http://data.lblod.info/bbcdr-reports/")
	if err := validateAbsoluteURL(cfg.BaseIRI); err != nil {
		return nil, fmt.Errorf("MU_BASE_IRI: %w", err)
	}

	cfg.SPARQLTimeout, err = getEnvDurationPositive("BBCDR_SPARQL_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("BBCDR_SPARQL_TIMEOUT: %w", err)
	}

	cfg.SPARQLCACertPath = os.Getenv("BBCDR_SPARQL_CA_CERT_PATH")

	// --- Статус по умолчанию ---

	cfg.DraftStatusIRI = getEnvDefault("BBCDR_DRAFT_STATUS_IRI", "http://data.lblod.info/document-statuses/concept")
	if err := validateAbsoluteURL(cfg.DraftStatusIRI); err != nil {
		return nil, fmt.Errorf("BBCDR_DRAFT_STATUS_IRI: %w", err)
	}
	cfg.DraftStatusID = getEnvDefault("BBCDR_DRAFT_STATUS_ID", "concept")

	// --- Мониторинг зависимостей ---

	cfg.DephealthEnabled, err = getEnvBool("BBCDR_DEPHEALTH_ENABLED", true)
	if err != nil {
		return nil, fmt.Errorf("BBCDR_DEPHEALTH_ENABLED: %w", err)
	}
	cfg.DephealthGroup = getEnvDefault("BBCDR_DEPHEALTH_GROUP", "bbcdr")
	cfg.DephealthCheckInterval, err = getEnvDurationPositive("BBCDR_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("BBCDR_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}
	cfg.DephealthIsEntry, err = getEnvBool("DEPHEALTH_ISENTRY", false)
	if err != nil {
		return nil, fmt.Errorf("DEPHEALTH_ISENTRY: %w", err)
	}
	cfg.DephealthTLSSkipVerify, err = getEnvBool("BBCDR_DEPHEALTH_TLS_SKIP_VERIFY", false)
	if err != nil {
		return nil, fmt.Errorf("BBCDR_DEPHEALTH_TLS_SKIP_VERIFY: %w", err)
	}

	return cfg, nil
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// getEnvDurationPositive — getEnvDuration с проверкой > 0.
func getEnvDurationPositive(key string, defaultVal time.Duration) (time.Duration, error) {
	d, err := getEnvDuration(key, defaultVal)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("значение должно быть > 0")
	}
	return d, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q (допустимые: true, false, 1, 0)", val)
	}
	return b, nil
}

// validateAbsoluteURL проверяет, что значение — абсолютный URL со схемой и хостом.
func validateAbsoluteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("некорректный URL %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("ожидался абсолютный URL, получено %q", raw)
	}
	return nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
