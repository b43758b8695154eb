package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AppConfig holds the application configuration
type AppConfig struct {
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	DBURL             string        `mapstructure:"DB_URL"`
	RedisAddress      string        `mapstructure:"REDIS_URL"`
	RedisPoolSize     int           `mapstructure:"REDIS_POOL_SIZE"`
	RedisMinIdleConns int           `mapstructure:"REDIS_MIN_IDLE_CONNS"`
	RedisDialTimeout  time.Duration `mapstructure:"REDIS_DIAL_TIMEOUT"`
	RedisReadTimeout  time.Duration `mapstructure:"REDIS_READ_TIMEOUT"`
	RedisMaxRetries   int           `mapstructure:"REDIS_MAX_RETRIES"`

	BearerToken  string `mapstructure:"ADMIN_API_KEY"`
	SymmetricKey string `mapstructure:"SYMMETRIC_KEY"`

	ClinicTimezone         string `mapstructure:"CLINIC_TIMEZONE"`
	AvgConsultationMinutes int    `mapstructure:"AVG_CONSULTATION_MINUTES"`
	DelayThresholdMinutes  int    `mapstructure:"DELAY_THRESHOLD_MINUTES"`
	SlotStepMinutes        int    `mapstructure:"SLOT_STEP_MINUTES"`
	DayStartHour           int    `mapstructure:"DAY_START_HOUR"`
	DayEndHour             int    `mapstructure:"DAY_END_HOUR"`
	BookingWindowDays      int    `mapstructure:"BOOKING_WINDOW_DAYS"`
	Currency               string `mapstructure:"CURRENCY"`

	CORSOrigins    []string `mapstructure:"-"`
	RateLimitRPS   float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int      `mapstructure:"RATE_LIMIT_BURST"`

	NotifyProvider        string `mapstructure:"NOTIFY_PROVIDER"`
	WhatsAppAccessToken   string `mapstructure:"WHATSAPP_ACCESS_TOKEN"`
	WhatsAppPhoneNumberID string `mapstructure:"WHATSAPP_PHONE_NUMBER_ID"`
	TwilioAccountSID      string `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken       string `mapstructure:"TWILIO_AUTH_TOKEN"`
	TwilioFrom            string `mapstructure:"TWILIO_FROM"`
	SMTPHost              string `mapstructure:"SMTP_HOST"`
	SMTPPort              int    `mapstructure:"SMTP_PORT"`
	SMTPUser              string `mapstructure:"SMTP_USER"`
	SMTPPass              string `mapstructure:"SMTP_PASS"`

	StripeSecretKey       string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret   string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	RazorpayKeyID         string `mapstructure:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret     string `mapstructure:"RAZORPAY_KEY_SECRET"`
	RazorpayWebhookSecret string `mapstructure:"RAZORPAY_WEBHOOK_SECRET"`
	FrontendURL           string `mapstructure:"FRONTEND_URL"`
}

var keys = []string{
	"PORT", "ENV",
	"DB_URL", "REDIS_URL", "REDIS_POOL_SIZE", "REDIS_MIN_IDLE_CONNS", "REDIS_DIAL_TIMEOUT",
	"REDIS_READ_TIMEOUT", "REDIS_MAX_RETRIES",
	"ADMIN_API_KEY", "SYMMETRIC_KEY",
	"CLINIC_TIMEZONE", "AVG_CONSULTATION_MINUTES", "DELAY_THRESHOLD_MINUTES", "SLOT_STEP_MINUTES",
	"DAY_START_HOUR", "DAY_END_HOUR", "BOOKING_WINDOW_DAYS", "CURRENCY",
	"CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"NOTIFY_PROVIDER", "WHATSAPP_ACCESS_TOKEN", "WHATSAPP_PHONE_NUMBER_ID",
	"TWILIO_ACCOUNT_SID", "TWILIO_AUTH_TOKEN", "TWILIO_FROM",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASS",
	"STRIPE_SECRET_KEY", "STRIPE_WEBHOOK_SECRET",
	"RAZORPAY_KEY_ID", "RAZORPAY_KEY_SECRET", "RAZORPAY_WEBHOOK_SECRET",
	"FRONTEND_URL",
}

// Load reads an optional .env file and the process environment.
func Load() (*AppConfig, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8930")
	v.SetDefault("ENV", "production")
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_MIN_IDLE_CONNS", 5)
	v.SetDefault("REDIS_DIAL_TIMEOUT", "30s")
	v.SetDefault("REDIS_READ_TIMEOUT", "10s")
	v.SetDefault("REDIS_MAX_RETRIES", 3)
	v.SetDefault("CLINIC_TIMEZONE", "Asia/Kolkata")
	v.SetDefault("AVG_CONSULTATION_MINUTES", 15)
	v.SetDefault("DELAY_THRESHOLD_MINUTES", 15)
	v.SetDefault("SLOT_STEP_MINUTES", 30)
	v.SetDefault("DAY_START_HOUR", 10)
	v.SetDefault("DAY_END_HOUR", 21)
	v.SetDefault("BOOKING_WINDOW_DAYS", 7)
	v.SetDefault("CURRENCY", "INR")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("RATE_LIMIT_RPS", 15)
	v.SetDefault("RATE_LIMIT_BURST", 30)
	v.SetDefault("NOTIFY_PROVIDER", "log")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")

	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	for _, origin := range strings.Split(v.GetString("CORS_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required keys and the working-hours grid.
func (c *AppConfig) Validate() error {
	if c.DBURL == "" {
		return fmt.Errorf("missing DB_URL environment variable")
	}
	if c.RedisAddress == "" {
		return fmt.Errorf("missing REDIS_URL environment variable")
	}
	if c.BearerToken == "" {
		return fmt.Errorf("missing ADMIN_API_KEY environment variable")
	}
	if len(c.SymmetricKey) != 32 {
		return fmt.Errorf("SYMMETRIC_KEY must be 32 bytes long, got %d", len(c.SymmetricKey))
	}
	if _, err := time.LoadLocation(c.ClinicTimezone); err != nil {
		return fmt.Errorf("invalid CLINIC_TIMEZONE %q: %w", c.ClinicTimezone, err)
	}
	if c.DayStartHour < 0 || c.DayEndHour > 24 || c.DayStartHour >= c.DayEndHour {
		return fmt.Errorf("DAY_START_HOUR (%d) must be before DAY_END_HOUR (%d)", c.DayStartHour, c.DayEndHour)
	}
	if c.SlotStepMinutes <= 0 || 60%c.SlotStepMinutes != 0 {
		return fmt.Errorf("SLOT_STEP_MINUTES must divide an hour, got %d", c.SlotStepMinutes)
	}
	if c.BookingWindowDays <= 0 {
		return fmt.Errorf("BOOKING_WINDOW_DAYS must be positive, got %d", c.BookingWindowDays)
	}
	switch c.NotifyProvider {
	case "whatsapp", "twilio", "email", "log":
	default:
		return fmt.Errorf("NOTIFY_PROVIDER must be whatsapp, twilio, email or log, got %q", c.NotifyProvider)
	}
	return nil
}

// GetBearerToken returns the admin API key
func (c *AppConfig) GetBearerToken() string {
	return c.BearerToken
}

// IsDev reports whether ENV=development.
func (c *AppConfig) IsDev() bool {
	return c.Env == "development"
}

// Location returns the clinic's default timezone.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.ClinicTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
