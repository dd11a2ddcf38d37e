package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	JWT    JWTConfig
	S3     S3Config
	Log    LogConfig
	Tika   TikaConfig
	CORS   CORSConfig
	Queue  QueueConfig
}

// QueueConfig holds parse queue worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	MaxRetries       int `mapstructure:"max_retries"`
	Concurrency      int `mapstructure:"concurrency"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// TikaConfig holds the Tika server connection settings.
type TikaConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
	XMLContent  bool   `mapstructure:"xml_content"`
	ConfigPath  string `mapstructure:"config_path"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Environment     string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds API token settings.
type JWTConfig struct {
	Secret      string        `mapstructure:"secret"`
	TokenExpiry time.Duration `mapstructure:"token_expiry"`
	Issuer      string        `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the TIKAPARSE_ prefix.
// A .env file in the working directory is loaded first when present; it never
// overrides variables already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("TIKAPARSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "5m")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "tikaparse")
	v.SetDefault("db.password", "tikaparse_secret")
	v.SetDefault("db.name", "tikaparse_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.token_expiry", "24h")
	v.SetDefault("jwt.issuer", "tikaparse")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "tikaparse-documents")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 100)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Tika defaults
	v.SetDefault("tika.endpoint", "http://localhost:9998")
	v.SetDefault("tika.timeout_secs", 120)
	v.SetDefault("tika.xml_content", false)
	v.SetDefault("tika.config_path", "")
	v.SetDefault("tika.username", "")
	v.SetDefault("tika.password", "")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 5)
	v.SetDefault("queue.max_retries", 3)
	v.SetDefault("queue.concurrency", 4)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":              "TIKAPARSE_SERVER_PORT",
		"server.read_timeout":      "TIKAPARSE_SERVER_READ_TIMEOUT",
		"server.write_timeout":     "TIKAPARSE_SERVER_WRITE_TIMEOUT",
		"server.shutdown_timeout":  "TIKAPARSE_SERVER_SHUTDOWN_TIMEOUT",
		"server.environment":       "TIKAPARSE_SERVER_ENVIRONMENT",
		"db.host":                  "TIKAPARSE_DB_HOST",
		"db.port":                  "TIKAPARSE_DB_PORT",
		"db.user":                  "TIKAPARSE_DB_USER",
		"db.password":              "TIKAPARSE_DB_PASSWORD",
		"db.name":                  "TIKAPARSE_DB_NAME",
		"db.sslmode":               "TIKAPARSE_DB_SSLMODE",
		"db.max_open":              "TIKAPARSE_DB_MAX_OPEN",
		"db.max_idle":              "TIKAPARSE_DB_MAX_IDLE",
		"jwt.secret":               "TIKAPARSE_JWT_SECRET",
		"jwt.token_expiry":         "TIKAPARSE_JWT_TOKEN_EXPIRY",
		"jwt.issuer":               "TIKAPARSE_JWT_ISSUER",
		"s3.region":                "TIKAPARSE_S3_REGION",
		"s3.bucket":                "TIKAPARSE_S3_BUCKET",
		"s3.endpoint":              "TIKAPARSE_S3_ENDPOINT",
		"s3.access_key":            "TIKAPARSE_S3_ACCESS_KEY",
		"s3.secret_key":            "TIKAPARSE_S3_SECRET_KEY",
		"s3.max_file_size_mb":      "TIKAPARSE_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":        "TIKAPARSE_S3_PRESIGN_EXPIRY",
		"log.level":                "TIKAPARSE_LOG_LEVEL",
		"log.format":               "TIKAPARSE_LOG_FORMAT",
		"tika.endpoint":            "TIKAPARSE_TIKA_ENDPOINT",
		"tika.timeout_secs":        "TIKAPARSE_TIKA_TIMEOUT_SECS",
		"tika.xml_content":         "TIKAPARSE_TIKA_XML_CONTENT",
		"tika.config_path":         "TIKAPARSE_TIKA_CONFIG_PATH",
		"tika.username":            "TIKAPARSE_TIKA_USERNAME",
		"tika.password":            "TIKAPARSE_TIKA_PASSWORD",
		"cors.allowed_origins":     "TIKAPARSE_CORS_ALLOWED_ORIGINS",
		"queue.poll_interval_secs": "TIKAPARSE_QUEUE_POLL_INTERVAL_SECS",
		"queue.max_retries":        "TIKAPARSE_QUEUE_MAX_RETRIES",
		"queue.concurrency":        "TIKAPARSE_QUEUE_CONCURRENCY",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if TIKAPARSE_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("TIKAPARSE_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:            serverPort,
		ReadTimeout:     v.GetDuration("server.read_timeout"),
		WriteTimeout:    v.GetDuration("server.write_timeout"),
		ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		Environment:     v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:      v.GetString("jwt.secret"),
		TokenExpiry: v.GetDuration("jwt.token_expiry"),
		Issuer:      v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Tika = TikaConfig{
		Endpoint:    v.GetString("tika.endpoint"),
		TimeoutSecs: v.GetInt("tika.timeout_secs"),
		XMLContent:  v.GetBool("tika.xml_content"),
		ConfigPath:  v.GetString("tika.config_path"),
		Username:    v.GetString("tika.username"),
		Password:    v.GetString("tika.password"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Queue = QueueConfig{
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		MaxRetries:       v.GetInt("queue.max_retries"),
		Concurrency:      v.GetInt("queue.concurrency"),
	}

	if cfg.Queue.Concurrency <= 0 {
		return nil, fmt.Errorf("queue.concurrency must be positive, got %d", cfg.Queue.Concurrency)
	}
	if cfg.Queue.PollIntervalSecs <= 0 {
		return nil, fmt.Errorf("queue.poll_interval_secs must be positive, got %d", cfg.Queue.PollIntervalSecs)
	}

	return cfg, nil
}
