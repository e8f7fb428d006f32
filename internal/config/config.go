package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

type Configuration struct {
	Server   ServerConfig   `json:"server"`
	Security SecurityConfig `json:"security"`
	Storage  StorageConfig  `json:"storage"`
	Logging  LoggingConfig  `json:"logging"`
	Database DatabaseConfig `json:"database"`
}

type ServerConfig struct {
	Port         string        `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

type SecurityConfig struct {
	TokenSecret string        `json:"token_secret"`
	TokenTTL    time.Duration `json:"token_ttl"`
}

type StorageConfig struct {
	Dir           string `json:"dir"`
	MaxUploadSize int64  `json:"max_upload_size"`
	AuditLogPath  string `json:"audit_log_path"`
}

type LoggingConfig struct {
	Level string `json:"level"`
}

// DatabaseConfig selects the metadata backend. With Enabled false the
// service runs on the in-memory store.
type DatabaseConfig struct {
	Enabled      bool   `json:"enabled"`
	Host         string `json:"host"`
	Port         string `json:"port"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	Name         string `json:"name"`
	SSLMode      string `json:"ssl_mode"`
	MaxIdleConns int    `json:"max_idle_conns"`
	MaxOpenConns int    `json:"max_open_conns"`
}

func defaults() *Configuration {
	return &Configuration{
		Server: ServerConfig{
			Port:         "8000",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Security: SecurityConfig{
			TokenSecret: "dev-signing-secret",
			TokenTTL:    7 * 24 * time.Hour,
		},
		Storage: StorageConfig{
			Dir:           "uploads",
			MaxUploadSize: 10 << 20, // 10 MiB
			AuditLogPath:  "uploads/audit.log",
		},
		Logging: LoggingConfig{
			Level: "development",
		},
		Database: DatabaseConfig{
			Enabled:      false,
			Host:         "localhost",
			Port:         "5432",
			Username:     "postgres",
			Password:     "password",
			Name:         "signatures",
			SSLMode:      "disable",
			MaxIdleConns: 10,
			MaxOpenConns: 100,
		},
	}
}

// LoadConfig reads the JSON config file, falling back to defaults for any
// absent value, then applies environment overrides. filePath may be empty.
func LoadConfig(filePath string) (*Configuration, error) {
	cfg := defaults()

	if filePath != "" {
		file, err := os.Open(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer file.Close()

		if err := json.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
		applyDefaults(cfg)
	}

	applyEnv(cfg)
	return cfg, nil
}

// InitializeDefaultConfig returns the built-in configuration with
// environment overrides applied.
func InitializeDefaultConfig() *Configuration {
	cfg := defaults()
	applyEnv(cfg)
	return cfg
}

func applyDefaults(cfg *Configuration) {
	def := defaults()
	if cfg.Server.Port == "" {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = def.Server.ReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = def.Server.WriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = def.Server.IdleTimeout
	}
	if cfg.Security.TokenSecret == "" {
		cfg.Security.TokenSecret = def.Security.TokenSecret
	}
	if cfg.Security.TokenTTL == 0 {
		cfg.Security.TokenTTL = def.Security.TokenTTL
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = def.Storage.Dir
	}
	if cfg.Storage.MaxUploadSize == 0 {
		cfg.Storage.MaxUploadSize = def.Storage.MaxUploadSize
	}
	if cfg.Storage.AuditLogPath == "" {
		cfg.Storage.AuditLogPath = def.Storage.AuditLogPath
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
}

func applyEnv(cfg *Configuration) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Security.TokenSecret = v
	}
	if v := os.Getenv("JWT_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Security.TokenTTL = d
		}
	}
	if v := os.Getenv("STORAGE_DIR"); v != "" {
		cfg.Storage.Dir = v
	}
	if v := os.Getenv("MAX_UPLOAD_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Storage.MaxUploadSize = n
		}
	}
}

func LogConfig(cfg *Configuration, logger *zap.Logger) {
	logger.Info("Application configuration",
		zap.String("port", cfg.Server.Port),
		zap.Duration("read_timeout", cfg.Server.ReadTimeout),
		zap.Duration("write_timeout", cfg.Server.WriteTimeout),
		zap.Duration("token_ttl", cfg.Security.TokenTTL),
		zap.String("storage_dir", cfg.Storage.Dir),
		zap.Int64("max_upload_size", cfg.Storage.MaxUploadSize),
		zap.Bool("database_enabled", cfg.Database.Enabled),
		zap.String("database_host", cfg.Database.Host),
	)
}
