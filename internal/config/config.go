package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/platform/logger"
)

// Config holds all configuration for the service.
type Config struct {
	ServiceName string `mapstructure:"SERVICE_NAME"`
	HTTPPort    string `mapstructure:"HTTP_PORT"`
	GRPCPort    string `mapstructure:"GRPC_PORT"`

	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`

	RedisAddress  string        `mapstructure:"REDIS_ADDRESS"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	FacetCacheTTL time.Duration `mapstructure:"FACET_CACHE_TTL"`

	NATSURL string `mapstructure:"NATS_URL"`

	MinioEndpoint         string `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey        string `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey        string `mapstructure:"MINIO_SECRET_KEY"`
	MinioBucket           string `mapstructure:"MINIO_BUCKET"`
	MinioUseSSL           bool   `mapstructure:"MINIO_USE_SSL"`
	VehicleImageFolder    string `mapstructure:"VEHICLE_IMAGE_FOLDER"`
	SparePartImageFolder  string `mapstructure:"SPARE_PART_IMAGE_FOLDER"`
	SanitizerImagePattern string `mapstructure:"SANITIZER_IMAGE_SRC_PATTERN"`

	SequencePad      int   `mapstructure:"SEQUENCE_PAD"`
	SequenceBaseline int64 `mapstructure:"SEQUENCE_BASELINE"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	NotifyEmail  string `mapstructure:"NOTIFY_EMAIL"`

	PrometheusMetricsPort  string `mapstructure:"PROMETHEUS_METRICS_PORT"`
	OTExporterOTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	LogLevel               string `mapstructure:"LOG_LEVEL"`
	LogFormat              string `mapstructure:"LOG_FORMAT"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "guvenoto-listing")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("GRPC_PORT", "50052")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "guvenoto")
	v.SetDefault("REDIS_ADDRESS", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("FACET_CACHE_TTL", "10m")
	v.SetDefault("NATS_URL", "")
	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
	v.SetDefault("MINIO_SECRET_KEY", "minioadmin")
	v.SetDefault("MINIO_BUCKET", "guvenoto")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("VEHICLE_IMAGE_FOLDER", "cars")
	v.SetDefault("SPARE_PART_IMAGE_FOLDER", "spare-parts")
	v.SetDefault("SANITIZER_IMAGE_SRC_PATTERN", `^(https?://|data:image/)`)
	v.SetDefault("SEQUENCE_PAD", 6)
	v.SetDefault("SEQUENCE_BASELINE", 10)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("NOTIFY_EMAIL", "")
	v.SetDefault("PROMETHEUS_METRICS_PORT", "9095")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// LoadConfig reads configuration from the environment. godotenv is loaded by main.
func LoadConfig(appLogger *logger.Logger) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		appLogger.Error("Failed to unmarshal configuration", zap.Error(err))
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		appLogger.Warn("JWT_SECRET is empty, admin routes are NOT protected")
	}

	appLogger.Debug("Configuration loaded",
		zap.String("service_name", cfg.ServiceName),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("grpc_port", cfg.GRPCPort),
		zap.String("mongo_database", cfg.MongoDatabase),
		zap.Bool("redis_enabled", cfg.RedisAddress != ""),
		zap.Bool("nats_enabled", cfg.NATSURL != ""),
		zap.String("minio_endpoint", cfg.MinioEndpoint),
		zap.Bool("smtp_enabled", cfg.SMTPEnabled()),
		zap.String("prometheus_port", cfg.PrometheusMetricsPort),
		zap.String("otel_endpoint", cfg.OTExporterOTLPEndpoint),
	)
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.MongoURI == "" {
		errs = append(errs, errors.New("MONGO_URI is required"))
	}
	if c.MongoDatabase == "" {
		errs = append(errs, errors.New("MONGO_DATABASE is required"))
	}
	if c.MinioEndpoint == "" || c.MinioBucket == "" {
		errs = append(errs, errors.New("MINIO_ENDPOINT and MINIO_BUCKET are required"))
	}
	if c.SequencePad < 1 {
		errs = append(errs, errors.New("SEQUENCE_PAD must be positive"))
	}
	if c.SequenceBaseline < 0 {
		errs = append(errs, errors.New("SEQUENCE_BASELINE must not be negative"))
	}
	return errors.Join(errs...)
}

func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.NotifyEmail != ""
}
