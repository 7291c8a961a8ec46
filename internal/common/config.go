package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	OCR        OCRConfig
	Extraction ExtractionConfig
	Log        LogConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver          string // sqlite or postgres
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr       string
	Workers        int
	QueueSize      int
	ProcessTimeout time.Duration
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	HeicConverter    string
	TessdataDir      string
	Language         string
	ArtifactCacheDir string
	MinTextChars     int
}

// ExtractionConfig tunes the extraction engine.
type ExtractionConfig struct {
	Parallelism int
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string
	Format string
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", DriverSQLite),
			DSN:             getEnv("DB_URL", "file:doc-extractor.db?_pragma=foreign_keys(1)"),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			GRPCAddr:       getEnv("GRPC_ADDR", ":8080"),
			Workers:        getEnvAsInt("WORKERS", 2),
			QueueSize:      getEnvAsInt("QUEUE_SIZE", 64),
			ProcessTimeout: getEnvAsDuration("PROCESS_TIMEOUT", 5*time.Minute),
		},
		OCR: OCRConfig{
			HeicConverter:    getEnv("HEIC_CONVERTER", "magick"),
			TessdataDir:      getEnv("TESSDATA_PREFIX", ""),
			Language:         getEnv("OCR_LANGUAGE", "eng"),
			ArtifactCacheDir: getEnv("ARTIFACT_CACHE_DIR", "./tmp"),
			MinTextChars:     getEnvAsInt("OCR_MIN_TEXT_CHARS", 50),
		},
		Extraction: ExtractionConfig{
			Parallelism: getEnvAsInt("EXTRACT_PARALLELISM", 1),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// SetDefaults registers the defaults of LoadConfig on v so a config file,
// DOCX_* environment variables and flags can override them.
func SetDefaults(v *viper.Viper) {
	d := LoadConfig()
	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.dsn", d.Database.DSN)
	v.SetDefault("database.max_conns", d.Database.MaxConns)
	v.SetDefault("database.min_conns", d.Database.MinConns)
	v.SetDefault("database.max_conn_lifetime", d.Database.MaxConnLifetime)
	v.SetDefault("database.max_conn_idle_time", d.Database.MaxConnIdleTime)
	v.SetDefault("database.dial_timeout", d.Database.DialTimeout)
	v.SetDefault("server.grpc_addr", d.Server.GRPCAddr)
	v.SetDefault("server.workers", d.Server.Workers)
	v.SetDefault("server.queue_size", d.Server.QueueSize)
	v.SetDefault("server.process_timeout", d.Server.ProcessTimeout)
	v.SetDefault("ocr.heic_converter", d.OCR.HeicConverter)
	v.SetDefault("ocr.tessdata_dir", d.OCR.TessdataDir)
	v.SetDefault("ocr.language", d.OCR.Language)
	v.SetDefault("ocr.artifact_cache_dir", d.OCR.ArtifactCacheDir)
	v.SetDefault("ocr.min_text_chars", d.OCR.MinTextChars)
	v.SetDefault("extraction.parallelism", d.Extraction.Parallelism)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetEnvPrefix("DOCX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// ConfigFromViper builds a Config from the merged viper settings.
func ConfigFromViper(v *viper.Viper) *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			DSN:             v.GetString("database.dsn"),
			MaxConns:        v.GetInt32("database.max_conns"),
			MinConns:        v.GetInt32("database.min_conns"),
			MaxConnLifetime: v.GetDuration("database.max_conn_lifetime"),
			MaxConnIdleTime: v.GetDuration("database.max_conn_idle_time"),
			DialTimeout:     v.GetDuration("database.dial_timeout"),
		},
		Server: ServerConfig{
			GRPCAddr:       v.GetString("server.grpc_addr"),
			Workers:        v.GetInt("server.workers"),
			QueueSize:      v.GetInt("server.queue_size"),
			ProcessTimeout: v.GetDuration("server.process_timeout"),
		},
		OCR: OCRConfig{
			HeicConverter:    v.GetString("ocr.heic_converter"),
			TessdataDir:      v.GetString("ocr.tessdata_dir"),
			Language:         v.GetString("ocr.language"),
			ArtifactCacheDir: v.GetString("ocr.artifact_cache_dir"),
			MinTextChars:     v.GetInt("ocr.min_text_chars"),
		},
		Extraction: ExtractionConfig{
			Parallelism: v.GetInt("extraction.parallelism"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate reports every invalid setting at once as a CONFIG_ERROR.
func (c *Config) Validate() error {
	v := NewValidator().
		Field("database.driver", c.Database.Driver, Required, OneOf(DriverSQLite, DriverPostgres)).
		Field("database.dsn", c.Database.DSN, Required).
		Field("log.format", c.Log.Format, OneOf("text", "json")).
		Field("server.workers", c.Server.Workers, AtLeast(1)).
		Field("server.queue_size", c.Server.QueueSize, AtLeast(1)).
		Field("extraction.parallelism", c.Extraction.Parallelism, AtLeast(1))
	if v.HasErrors() {
		return NewAppError(CodeConfig, v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
