package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	App      AppConfig      `toml:"app"`
	Auth     AuthConfig     `toml:"auth"`
	LLM      LLMConfig      `toml:"llm"`
	Chat     ChatConfig     `toml:"chat"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	RabbitMQ RabbitMQConfig `toml:"rabbitmq"`
	Storage  StorageConfig  `toml:"storage"`
	Upload   UploadConfig   `toml:"upload"`
	Log      LogConfig      `toml:"log"`
}

type AppConfig struct {
	Name    string `toml:"name"`
	Env     string `toml:"env"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	GinMode string `toml:"gin_mode"`
}

type AuthConfig struct {
	JWTSecret       string `toml:"jwt_secret"`
	JWTExpireMinute int    `toml:"jwt_expire_minute"`
}

type LLMConfig struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type ChatConfig struct {
	MaxHistory      int `toml:"max_history"`
	MaxContextChars int `toml:"max_context_chars"`
}

// DatabaseConfig selects the gorm driver. For sqlite only Path is used.
type DatabaseConfig struct {
	Driver   string `toml:"driver"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Name     string `toml:"name"`
	Params   string `toml:"params"`
	Path     string `toml:"path"`
}

type RedisConfig struct {
	Addr             string `toml:"addr"`
	Password         string `toml:"password"`
	DB               int    `toml:"db"`
	ContextTTLMinute int    `toml:"context_ttl_minute"`
}

// RabbitMQConfig is optional; an empty URL disables file events.
type RabbitMQConfig struct {
	URL            string `toml:"url"`
	FileEventQueue string `toml:"file_event_queue"`
}

type StorageConfig struct {
	Driver         string `toml:"driver"`
	LocalPath      string `toml:"local_path"`
	MinioEndpoint  string `toml:"minio_endpoint"`
	MinioAccessKey string `toml:"minio_access_key"`
	MinioSecretKey string `toml:"minio_secret_key"`
	MinioBucket    string `toml:"minio_bucket"`
	MinioUseSSL    bool   `toml:"minio_use_ssl"`
}

type UploadConfig struct {
	MaxBytes int64 `toml:"max_bytes"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

func Load() (*Config, error) {
	cfg := Default()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Storage.Driver {
	case "local", "minio":
	default:
		return fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload.max_bytes must be positive")
	}
	return nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

// DSN renders the connection string for the configured driver.
func (c *Config) DSN() string {
	d := c.Database
	switch d.Driver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
			d.Host, d.Port, d.User, d.Password, d.Name)
		if d.Params != "" {
			dsn += " " + d.Params
		}
		return dsn
	case "sqlite":
		return d.Path
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
			d.User,
			d.Password,
			d.Host,
			d.Port,
			d.Name,
			d.Params,
		)
	}
}

func (c *Config) JWTExpiration() time.Duration {
	return time.Duration(c.Auth.JWTExpireMinute) * time.Minute
}

func (c *Config) ContextTTL() time.Duration {
	return time.Duration(c.Redis.ContextTTLMinute) * time.Minute
}

func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:    "classwork-chatbot",
			Env:     "dev",
			Host:    "0.0.0.0",
			Port:    8000,
			GinMode: "debug",
		},
		Auth: AuthConfig{
			JWTSecret:       "change-me-in-production",
			JWTExpireMinute: 120,
		},
		LLM: LLMConfig{
			BaseURL:        "http://127.0.0.1:11434/v1",
			APIKey:         "ollama",
			Model:          "llama3.2",
			TimeoutSeconds: 120,
		},
		Chat: ChatConfig{
			MaxHistory:      10,
			MaxContextChars: 12000,
		},
		Database: DatabaseConfig{
			Driver: "mysql",
			Host:   "127.0.0.1",
			Port:   3306,
			User:   "root",
			Name:   "classwork_chatbot",
			Params: "parseTime=true&loc=Local&charset=utf8mb4",
			Path:   "classwork_chatbot.db",
		},
		Redis: RedisConfig{
			Addr:             "127.0.0.1:6379",
			DB:               0,
			ContextTTLMinute: 30,
		},
		RabbitMQ: RabbitMQConfig{
			URL:            "",
			FileEventQueue: "classwork.file.events",
		},
		Storage: StorageConfig{
			Driver:      "local",
			LocalPath:   "media",
			MinioBucket: "classwork-uploads",
		},
		Upload: UploadConfig{
			MaxBytes: 20 << 20,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("APP_PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.JWTExpireMinute = getEnvAsInt("JWT_EXPIRE_MINUTE", cfg.Auth.JWTExpireMinute)

	cfg.LLM.BaseURL = getEnv("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.APIKey = getEnv("LLM_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.Model = getEnv("LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.TimeoutSeconds = getEnvAsInt("LLM_TIMEOUT_SECONDS", cfg.LLM.TimeoutSeconds)
	cfg.Chat.MaxHistory = getEnvAsInt("CHAT_MAX_HISTORY", cfg.Chat.MaxHistory)
	cfg.Chat.MaxContextChars = getEnvAsInt("CHAT_MAX_CONTEXT_CHARS", cfg.Chat.MaxContextChars)

	cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnvAsInt("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = getEnv("DB_NAME", cfg.Database.Name)
	cfg.Database.Params = getEnv("DB_PARAMS", cfg.Database.Params)
	cfg.Database.Path = getEnv("DB_PATH", cfg.Database.Path)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.ContextTTLMinute = getEnvAsInt("REDIS_CONTEXT_TTL_MINUTE", cfg.Redis.ContextTTLMinute)

	cfg.RabbitMQ.URL = getEnv("RABBITMQ_URL", cfg.RabbitMQ.URL)
	cfg.RabbitMQ.FileEventQueue = getEnv("RABBITMQ_FILE_EVENT_QUEUE", cfg.RabbitMQ.FileEventQueue)

	cfg.Storage.Driver = getEnv("STORAGE_DRIVER", cfg.Storage.Driver)
	cfg.Storage.LocalPath = getEnv("STORAGE_LOCAL_PATH", cfg.Storage.LocalPath)
	cfg.Storage.MinioEndpoint = getEnv("MINIO_ENDPOINT", cfg.Storage.MinioEndpoint)
	cfg.Storage.MinioAccessKey = getEnv("MINIO_ACCESS_KEY", cfg.Storage.MinioAccessKey)
	cfg.Storage.MinioSecretKey = getEnv("MINIO_SECRET_KEY", cfg.Storage.MinioSecretKey)
	cfg.Storage.MinioBucket = getEnv("MINIO_BUCKET", cfg.Storage.MinioBucket)
	cfg.Storage.MinioUseSSL = getEnvAsBool("MINIO_USE_SSL", cfg.Storage.MinioUseSSL)

	cfg.Upload.MaxBytes = int64(getEnvAsInt("UPLOAD_MAX_BYTES", int(cfg.Upload.MaxBytes)))
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
