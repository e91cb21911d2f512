package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Kavya-Tamilarasu/Flight-Booking-Simulator-with-Dynamic-Pricing/internal/pricing"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Booking  BookingConfig  `yaml:"booking"`
	Worker   WorkerConfig   `yaml:"worker"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingTopic       string   `yaml:"booking_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type BookingConfig struct {
	PaymentTimeoutMinutes int                  `yaml:"payment_timeout_minutes"`
	PaymentFailureRate    float64              `yaml:"payment_failure_rate"`
	FareCacheTTLSeconds   int                  `yaml:"fare_cache_ttl_seconds"`
	RefundSteps           []pricing.RefundStep `yaml:"refund_steps"`
}

func (b BookingConfig) PaymentTimeout() time.Duration {
	if b.PaymentTimeoutMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(b.PaymentTimeoutMinutes) * time.Minute
}

func (b BookingConfig) FareCacheTTL() time.Duration {
	if b.FareCacheTTLSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(b.FareCacheTTLSeconds) * time.Second
}

type WorkerConfig struct {
	ExpirationSweepMinutes int `yaml:"expiration_sweep_minutes"`
}

func (w WorkerConfig) SweepInterval() time.Duration {
	if w.ExpirationSweepMinutes <= 0 {
		return time.Minute
	}
	return time.Duration(w.ExpirationSweepMinutes) * time.Minute
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// LoadConfig reads path, or the CONFIG_PATH environment variable when path
// is empty.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
