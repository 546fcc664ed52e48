package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // sweep timezones resolve on images without zoneinfo

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// JWTConfig holds the shared secret used to verify identity tokens.
type JWTConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// KafkaConfig holds broker settings.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// RedisConfig holds the Redis address used for the sweep lock. An empty Addr
// selects an in-process lock.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SweepConfig controls the reconciliation sweep.
type SweepConfig struct {
	Enabled  bool
	Schedule string
	Timezone string
	Timeout  time.Duration
}

// PaymentConfig configures Paystack verification, the payout reversal function
// and the service fee.
type PaymentConfig struct {
	PaystackBaseURL   string
	PaystackSecretKey string
	PayoutFunctionURL string
	PayoutAPIKey      string
	ServiceFeeBps     int64
	GatewayTimeout    time.Duration
}

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port          string
	AppEnv        string
	MigrationsDir string
	CORSOrigins   []string
	DBConfig      DatabaseConfig
	JWTConfig     JWTConfig
	KafkaConfig   KafkaConfig
	RedisConfig   RedisConfig
	SweepConfig   SweepConfig
	PaymentConfig PaymentConfig
}

// Load reads configuration from an optional .env file, an optional
// config.yaml and BOOKING_-prefixed environment variables, in increasing
// precedence.
func Load() (*ServiceConfig, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("BOOKING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.port", "8082")
	v.SetDefault("app.env", "development")
	v.SetDefault("migrations.dir", "migrations")
	v.SetDefault("cors.origins", "")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "celebook_booking")
	v.SetDefault("db.sslmode", "disable")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.access_ttl", "15m")
	v.SetDefault("jwt.refresh_ttl", "168h")

	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.group_prefix", "celebook-")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("sweep.enabled", true)
	v.SetDefault("sweep.schedule", "@every 5m")
	v.SetDefault("sweep.timezone", "Africa/Lagos")
	v.SetDefault("sweep.timeout", "2m")

	v.SetDefault("payment.paystack_base_url", "https://api.paystack.co")
	v.SetDefault("payment.paystack_secret_key", "")
	v.SetDefault("payment.payout_function_url", "")
	v.SetDefault("payment.payout_api_key", "")
	v.SetDefault("payment.service_fee_bps", 100)
	v.SetDefault("payment.gateway_timeout", "15s")
}

func fromViper(v *viper.Viper) *ServiceConfig {
	port := v.GetString("service.port")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	return &ServiceConfig{
		Port:          port,
		AppEnv:        v.GetString("app.env"),
		MigrationsDir: v.GetString("migrations.dir"),
		CORSOrigins:   splitList(v.GetString("cors.origins")),
		DBConfig: DatabaseConfig{
			Host:     v.GetString("db.host"),
			Port:     v.GetString("db.port"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			DBName:   v.GetString("db.name"),
			SSLMode:  v.GetString("db.sslmode"),
		},
		JWTConfig: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			AccessTTL:  v.GetDuration("jwt.access_ttl"),
			RefreshTTL: v.GetDuration("jwt.refresh_ttl"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     splitList(v.GetString("kafka.brokers")),
			GroupPrefix: v.GetString("kafka.group_prefix"),
		},
		RedisConfig: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		SweepConfig: SweepConfig{
			Enabled:  v.GetBool("sweep.enabled"),
			Schedule: v.GetString("sweep.schedule"),
			Timezone: v.GetString("sweep.timezone"),
			Timeout:  v.GetDuration("sweep.timeout"),
		},
		PaymentConfig: PaymentConfig{
			PaystackBaseURL:   v.GetString("payment.paystack_base_url"),
			PaystackSecretKey: v.GetString("payment.paystack_secret_key"),
			PayoutFunctionURL: v.GetString("payment.payout_function_url"),
			PayoutAPIKey:      v.GetString("payment.payout_api_key"),
			ServiceFeeBps:     v.GetInt64("payment.service_fee_bps"),
			GatewayTimeout:    v.GetDuration("payment.gateway_timeout"),
		},
	}
}

func (c *ServiceConfig) validate() error {
	if c.JWTConfig.Secret == "" {
		return fmt.Errorf("BOOKING_JWT_SECRET is required")
	}
	if len(c.KafkaConfig.Brokers) == 0 {
		return fmt.Errorf("BOOKING_KAFKA_BROKERS is required")
	}
	if _, err := time.LoadLocation(c.SweepConfig.Timezone); err != nil {
		return fmt.Errorf("invalid BOOKING_SWEEP_TIMEZONE %q: %w", c.SweepConfig.Timezone, err)
	}
	if c.PaymentConfig.ServiceFeeBps < 0 {
		return fmt.Errorf("BOOKING_PAYMENT_SERVICE_FEE_BPS must not be negative")
	}
	return nil
}

// Location returns the timezone the sweep uses to decide what "today" is.
func (c *ServiceConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.SweepConfig.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
