package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"floorplan-analyzer-go/internal/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DefaultModelID             = "cubicasa5k-2-qpmsa/6"
	DefaultAPIURL              = "https://detect.roboflow.com"
	DefaultConfidenceThreshold = 0.20
	DefaultRequestTimeout      = 60
	DefaultLogFile             = "floorplan_analyzer.log"
)

// Config структура конфигурации приложения.
// Создается один раз при старте и дальше только читается.
type Config struct {
	Roboflow struct {
		APIKey         string `validate:"required"`
		ModelID        string `validate:"required"`
		BaseURL        string `validate:"required,url"`
		TimeoutSeconds int    `validate:"gt=0"`
		ProxyURL       string `validate:"omitempty,url"`
	}
	Paths struct {
		InputDir  string `validate:"required"`
		OutputDir string `validate:"required"`
		DebugDir  string `validate:"required"`
	}
	Processing struct {
		ConfidenceThreshold float64 `validate:"gte=0,lte=1"`
		Workers             int     `validate:"gte=1,lte=64"`
	}
	Logging struct {
		Level string `validate:"oneof=trace debug info warn warning error"`
		File  string
	}
	Database DatabaseConfig
}

// DatabaseConfig параметры подключения к PostgreSQL
type DatabaseConfig struct {
	Enabled  bool
	Host     string `validate:"required_if=Enabled true"`
	Port     string
	Name     string
	Username string
	Password string
	SSLMode  string
}

// DSN возвращает строку подключения к PostgreSQL
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.Username, d.Password, d.Name, d.SSLMode,
	)
}

// RequestTimeout возвращает таймаут запроса к api
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Roboflow.TimeoutSeconds) * time.Second
}

// LoadConfig загружает конфигурацию из .env (если файл есть) и переменных окружения
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, apperror.New(apperror.KindConfig, "чтение .env", ".env", err)
	}
	return FromEnv()
}

// FromEnv собирает конфигурацию только из переменных окружения
func FromEnv() (*Config, error) {
	cfg := &Config{}

	// Параметры api roboflow
	cfg.Roboflow.APIKey = getEnv("ROBOFLOW_API_KEY", getEnv("API_KEY", ""))
	cfg.Roboflow.ModelID = getEnv("MODEL_ID", DefaultModelID)
	cfg.Roboflow.BaseURL = strings.TrimRight(getEnv("ROBOFLOW_API_URL", DefaultAPIURL), "/")
	cfg.Roboflow.TimeoutSeconds = getEnvInt("REQUEST_TIMEOUT", DefaultRequestTimeout)
	cfg.Roboflow.ProxyURL = getEnv("PROXY_URL", "")

	// Пути к директориям
	cfg.Paths.InputDir = getEnv("INPUT_DIR", "./images")
	cfg.Paths.OutputDir = getEnv("OUTPUT_DIR", "./out")
	cfg.Paths.DebugDir = getEnv("DEBUG_DIR", filepath.Join(cfg.Paths.OutputDir, "debug"))

	// Параметры обработки
	cfg.Processing.ConfidenceThreshold = getEnvFloat("CONFIDENCE_THRESHOLD", DefaultConfidenceThreshold)
	cfg.Processing.Workers = getEnvInt("WORKERS", 1)

	// Конфигурация логирования
	cfg.Logging.Level = strings.ToLower(getEnv("LOG_LEVEL", "info"))
	cfg.Logging.File = os.Getenv("LOG_FILE")
	if _, set := os.LookupEnv("LOG_FILE"); !set {
		cfg.Logging.File = DefaultLogFile
	}

	// База данных (опционально)
	cfg.Database.Enabled = getEnvBool("DB_ENABLED", false)
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnv("DB_PORT", "5432")
	cfg.Database.Name = getEnv("DB_NAME", "floorplans")
	cfg.Database.Username = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres123")
	cfg.Database.SSLMode = getEnv("DB_SSL_MODE", "disable")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет значения конфигурации
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return apperror.New(apperror.KindConfig, "проверка конфигурации", "", fmt.Errorf("invalid config: %w", err))
	}
	return nil
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает int значение переменной окружения или возвращает значение по умолчанию
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat получает float64 значение переменной окружения или возвращает значение по умолчанию
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
