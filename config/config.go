package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Mail     MailConfig
	SMS      SMSConfig
	Broker   BrokerConfig
	Payments PaymentsConfig
	App      AppConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret               string
	Issuer                  string
	TokenTTL                time.Duration
	VerificationCodeTTL     time.Duration
	VerificationCodeLength  int
	VerificationMaxAttempts int
	EmailLimitPerHour       int
	LoginLimitPerMinute     int
}

type MailConfig struct {
	SendGridAPIKey string
	FromEmail      string
	FromName       string
	Sandbox        bool
}

type SMSConfig struct {
	TwilioAccountSID string
	TwilioAuthToken  string
	FromPhone        string
}

type BrokerConfig struct {
	URL      string
	Exchange string
}

type PaymentsConfig struct {
	Shortcode string
}

type AppConfig struct {
	Environment    string
	LogLevel       string
	Version        string
	ServiceName    string
	RentPeriodDays int
	CronEnabled    bool
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "5000"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://127.0.0.1:5173"}),
		},
		Database: DatabaseConfig{
			DSN:      getEnv("DB_DSN", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "estateempire"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 2),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret:               getEnv("JWT_SECRET", ""),
			Issuer:                  getEnv("JWT_ISSUER", "estateempire"),
			TokenTTL:                getEnvAsDuration("TOKEN_TTL", 24*time.Hour),
			VerificationCodeTTL:     getEnvAsDuration("VERIFICATION_CODE_TTL", 10*time.Minute),
			VerificationCodeLength:  getEnvAsInt("VERIFICATION_CODE_LENGTH", 6),
			VerificationMaxAttempts: getEnvAsInt("VERIFICATION_MAX_ATTEMPTS", 5),
			EmailLimitPerHour:       getEnvAsInt("EMAIL_LIMIT_PER_HOUR", 5),
			LoginLimitPerMinute:     getEnvAsInt("LOGIN_LIMIT_PER_MINUTE", 10),
		},
		Mail: MailConfig{
			SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
			FromEmail:      getEnv("SENDGRID_FROM_EMAIL", "no-reply@estateempire.local"),
			FromName:       getEnv("SENDGRID_FROM_NAME", "EstateEmpire"),
			Sandbox:        getEnvAsBool("SENDGRID_SANDBOX", false),
		},
		SMS: SMSConfig{
			TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			FromPhone:        getEnv("TWILIO_FROM_PHONE", ""),
		},
		Broker: BrokerConfig{
			URL:      getEnv("RABBITMQ_URL", ""),
			Exchange: getEnv("RABBITMQ_EXCHANGE", "estateempire.events"),
		},
		Payments: PaymentsConfig{
			Shortcode: getEnv("PAYMENTS_SHORTCODE", "174379"),
		},
		App: AppConfig{
			Environment:    getEnv("APP_ENV", "development"),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			Version:        getEnv("APP_VERSION", "1.0.0"),
			ServiceName:    getEnv("SERVICE_NAME", "estateempire-backend"),
			RentPeriodDays: getEnvAsInt("RENT_PERIOD_DAYS", 30),
			CronEnabled:    getEnvAsBool("CRON_ENABLED", true),
		},
	}

	if cfg.Auth.JWTSecret == "" && cfg.IsDevelopment() {
		log.Println("Warning: JWT_SECRET not set, using an insecure development secret")
		cfg.Auth.JWTSecret = "development-only-secret-change-me-now!"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.DSN == "" && c.Database.Host == "" {
		return fmt.Errorf("DB_DSN or DB_HOST is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if !c.IsDevelopment() && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 bytes outside development")
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.Auth.VerificationCodeLength < 4 {
		return fmt.Errorf("VERIFICATION_CODE_LENGTH must be at least 4")
	}
	if c.App.RentPeriodDays <= 0 {
		return fmt.Errorf("RENT_PERIOD_DAYS must be positive")
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// ConnString prefers DB_DSN and otherwise builds a key/value connection string.
func (d DatabaseConfig) ConnString() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
