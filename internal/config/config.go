package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Env         string `mapstructure:"ENV"`
	Port        string `mapstructure:"PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`

	// Activation tokens are valid for one day unless overridden.
	ActivationTTL time.Duration `mapstructure:"ACTIVATION_TTL"`

	RedisAddr         string        `mapstructure:"REDIS_ADDR"`
	RequestRateLimit  int64         `mapstructure:"REQUEST_RATE_LIMIT"`
	RequestRateWindow time.Duration `mapstructure:"REQUEST_RATE_WINDOW"`

	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic   string `mapstructure:"KAFKA_TOPIC"`

	MinioEndpoint  string `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	MinioBucket    string `mapstructure:"MINIO_BUCKET"`
	MinioUseSSL    bool   `mapstructure:"MINIO_USE_SSL"`

	OTELEndpoint    string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTELServiceName string `mapstructure:"OTEL_SERVICE_NAME"`
}

var AppConfig *Config

func setDefaults() {
	viper.SetDefault("ENV", "local")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ACTIVATION_TTL", 24*time.Hour)
	viper.SetDefault("REQUEST_RATE_LIMIT", 20)
	viper.SetDefault("REQUEST_RATE_WINDOW", time.Hour)
	viper.SetDefault("KAFKA_TOPIC", "intimate.events")
	viper.SetDefault("MINIO_BUCKET", "socialnet")
	viper.SetDefault("OTEL_SERVICE_NAME", "socialnet-backend")

	// AutomaticEnv only covers keys viper already knows about, so the
	// optional integrations are registered with empty defaults.
	for _, key := range []string{
		"DATABASE_URL", "JWT_SECRET", "REDIS_ADDR", "KAFKA_BROKERS",
		"MINIO_ENDPOINT", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY", "MINIO_USE_SSL",
		"OTEL_EXPORTER_OTLP_ENDPOINT",
	} {
		viper.SetDefault(key, "")
	}
}

// LoadConfig loads the configuration from a .env file and environment variables.
func LoadConfig() {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	setDefaults()
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("Warning: .env file not found, loading from environment variables")
	}

	err := viper.Unmarshal(&AppConfig)
	if err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
}
