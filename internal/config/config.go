package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppName         = "ApexAdmissions"
	defaultAppEnv          = "development"
	defaultPort            = "5000"
	defaultLogLevel        = "info"
	defaultShutdownDelay   = 10 * time.Second
	defaultIdempotencyTTL  = 24 * time.Hour
	defaultOTPTTL          = 10 * time.Minute
	defaultAdminEmail      = "admissions@apex.ac.in"
	defaultFromName        = "Apex Admissions"
	defaultRazorpayURL     = "https://api.razorpay.com"
	defaultNotifyWorkers   = 8
	idemTTLSecondsEnvVar   = "IDEMPOTENCY_TTL_SECONDS"
	idemTTLDurEnvVar       = "IDEMPOTENCY_TTL"
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
)

var defaultOrigins = []string{"http://localhost:3000", "https://admission.apex.ac.in"}

// SMTP holds outbound mail transport settings.
type SMTP struct {
	Host     string
	Port     int
	Secure   bool
	User     string
	Password string
	From     string
	DryRun   bool
}

// Configured reports whether every field required to dial the server is present.
func (s SMTP) Configured() bool {
	return s.Host != "" && s.Port > 0 && s.User != "" && s.Password != ""
}

// Razorpay holds payment gateway credentials and the application fee.
type Razorpay struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	// Fee is expressed in minor currency units (paise).
	Fee int64
}

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration
	OTPTTL         time.Duration
	AllowedOrigins []string
	AdminEmail     string
	NotifyWorkers  int
	SMTP           SMTP
	Razorpay       Razorpay
}

// Load reads configuration values from the environment and populates a Config instance.
// A .env file in the working directory is applied first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppName:        getEnv("APP_NAME", defaultAppName),
		AppEnv:         getEnv("APP_ENV", defaultAppEnv),
		Port:           getEnv("PORT", defaultPort),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		ShutdownPeriod: defaultShutdownDelay,
		IdempotencyTTL: defaultIdempotencyTTL,
		OTPTTL:         defaultOTPTTL,
		AllowedOrigins: splitList(os.Getenv("FRONTEND_URL")),
		AdminEmail:     getEnv("ADMIN_NOTIFICATION_EMAIL", defaultAdminEmail),
		NotifyWorkers:  defaultNotifyWorkers,
		SMTP: SMTP{
			Host:     os.Getenv("SMTP_HOST"),
			Secure:   os.Getenv("SMTP_SECURE") == "true",
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			DryRun:   os.Getenv("MAIL_DRY_RUN") == "true",
		},
		Razorpay: Razorpay{
			KeyID:     os.Getenv("RAZORPAY_KEY_ID"),
			KeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
			BaseURL:   getEnv("RAZORPAY_BASE_URL", defaultRazorpayURL),
		},
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = append([]string(nil), defaultOrigins...)
	}
	cfg.SMTP.From = getEnv("EMAIL_FROM_ADDRESS", fmt.Sprintf("%q <%s>", getEnv("EMAIL_FROM_NAME", defaultFromName), cfg.SMTP.User))

	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SMTP_PORT: %w", err)
		}
		cfg.SMTP.Port = port
	}

	// A missing or unparsable fee leaves payments unconfigured rather than failing startup.
	if v := os.Getenv("APPLICATION_FEE"); v != "" {
		if fee, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Razorpay.Fee = fee
		}
	}

	if v := os.Getenv("NOTIFY_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid NOTIFY_WORKERS: %w", err)
		}
		cfg.NotifyWorkers = n
	}

	if v := os.Getenv("OTP_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid OTP_TTL: %w", err)
		}
		cfg.OTPTTL = d
	}

	if v := os.Getenv(shutdownSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownSecondsEnvVar, err)
		}
		cfg.ShutdownPeriod = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(shutdownDurationEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownDurationEnvVar, err)
		}
		cfg.ShutdownPeriod = d
	}

	if v := os.Getenv(idemTTLSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", idemTTLSecondsEnvVar, err)
		}
		cfg.IdempotencyTTL = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(idemTTLDurEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", idemTTLDurEnvVar, err)
		}
		cfg.IdempotencyTTL = d
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// PaymentsConfigured reports whether gateway credentials and a positive fee are present.
func (c Config) PaymentsConfigured() bool {
	return c.Razorpay.KeyID != "" && c.Razorpay.KeySecret != "" && c.Razorpay.Fee > 0
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
