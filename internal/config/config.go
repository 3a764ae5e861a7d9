package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(NewConfig),
)

// Config holds all application configuration
type Config struct {
	ServerPort    int    `env:"SERVER_PORT" envDefault:"8080"`
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:"0.0.0.0"`
	Environment   string `env:"ENVIRONMENT" envDefault:"local"`
	Debug         bool   `env:"DEBUG" envDefault:"false"`

	// PublicURL is the externally reachable origin, used for checkout
	// return URLs.
	PublicURL string `env:"PUBLIC_URL" envDefault:"http://localhost:8080"`

	Site      SiteConfig
	Views     ViewsConfig
	Database  DatabaseConfig
	Email     EmailConfig
	Chat      ChatConfig
	Payments  PaymentsConfig
	RateLimit RateLimitConfig
	Scheduler SchedulerConfig
	Otel      OtelConfig

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"0s"` // 0 keeps SSE streams open
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// SiteConfig holds business details rendered on the page and used as the
// lead recipient.
type SiteConfig struct {
	BrandName    string `env:"SITE_BRAND_NAME" envDefault:"GetCalls"`
	OwnerName    string `env:"SITE_OWNER_NAME" envDefault:"Priyanshu"`
	ContactEmail string `env:"SITE_CONTACT_EMAIL" envDefault:"priyanshubhati.dev@gmail.com"`
	ContactPhone string `env:"SITE_CONTACT_PHONE" envDefault:"+91 9057278418"`
	WhatsApp     string `env:"SITE_WHATSAPP" envDefault:"919057278418"`
}

// ViewsConfig controls the lifetime of in-memory page views.
type ViewsConfig struct {
	IdleTTL       time.Duration `env:"VIEW_IDLE_TTL" envDefault:"30m"`
	SweepInterval time.Duration `env:"VIEW_SWEEP_INTERVAL" envDefault:"1m"`
	MaxViews      int           `env:"VIEW_MAX" envDefault:"10000"`
	KeepAlive     time.Duration `env:"VIEW_SSE_KEEPALIVE" envDefault:"20s"`
}

// DatabaseConfig selects the lead/payment store. Driver is sqlite or postgres.
type DatabaseConfig struct {
	Driver     string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"getcalls.db"`

	Host     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	User     string `env:"POSTGRES_USER" envDefault:"getcalls"`
	Password string `env:"POSTGRES_PASSWORD" envDefault:""`
	Database string `env:"POSTGRES_DB" envDefault:"getcalls"`
	SSLMode  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	MaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleTime  time.Duration `env:"DB_MAX_IDLE_TIME" envDefault:"5m"`
	QueryDebug   bool          `env:"DB_QUERY_DEBUG" envDefault:"false"`
	AutoMigrate  bool          `env:"DB_AUTO_MIGRATE" envDefault:"true"`
}

// IsPostgres reports whether the postgres driver is selected.
func (d *DatabaseConfig) IsPostgres() bool {
	return d.Driver == "postgres" || d.Driver == "pgx"
}

// DSN returns the connection string for the selected driver.
func (d *DatabaseConfig) DSN() string {
	if d.IsPostgres() {
		return fmt.Sprintf(
			"postgres://%s:%s@%s:%d/%s?sslmode=%s",
			url.QueryEscape(d.User), url.QueryEscape(d.Password), d.Host, d.Port, d.Database, d.SSLMode,
		)
	}
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", d.SQLitePath)
}

// EmailConfig holds both delivery backends. EmailJS wins when both are set.
type EmailConfig struct {
	MailgunDomain  string `env:"MAILGUN_DOMAIN" envDefault:""`
	MailgunAPIKey  string `env:"MAILGUN_API_KEY" envDefault:""`
	MailgunAPIBase string `env:"MAILGUN_API_BASE" envDefault:""`
	FromEmail      string `env:"EMAIL_FROM_ADDRESS" envDefault:"noreply@getcalls.in"`
	FromName       string `env:"EMAIL_FROM_NAME" envDefault:"GetCalls"`

	EmailJSServiceID         string `env:"EMAILJS_SERVICE_ID" envDefault:""`
	EmailJSTemplateID        string `env:"EMAILJS_TEMPLATE_ID" envDefault:""`
	EmailJSAutoReplyTemplate string `env:"EMAILJS_AUTOREPLY_TEMPLATE_ID" envDefault:""`
	EmailJSPublicKey         string `env:"EMAILJS_PUBLIC_KEY" envDefault:""`
	EmailJSPrivateKey        string `env:"EMAILJS_PRIVATE_KEY" envDefault:""`
	EmailJSBaseURL           string `env:"EMAILJS_BASE_URL" envDefault:"https://api.emailjs.com"`

	Timeout time.Duration `env:"EMAIL_TIMEOUT" envDefault:"15s"`
}

// MailgunConfigured reports whether Mailgun credentials are present.
func (e *EmailConfig) MailgunConfigured() bool {
	return e.MailgunDomain != "" && e.MailgunAPIKey != ""
}

// EmailJSConfigured reports whether the EmailJS service, template and key
// are present.
func (e *EmailConfig) EmailJSConfigured() bool {
	return e.EmailJSServiceID != "" && e.EmailJSTemplateID != "" && e.EmailJSPublicKey != ""
}

// IsConfigured returns true if any backend can send.
func (e *EmailConfig) IsConfigured() bool {
	return e.EmailJSConfigured() || e.MailgunConfigured()
}

// AutoReplyTemplate returns the EmailJS confirmation template, defaulting to
// "<template>_autoreply".
func (e *EmailConfig) AutoReplyTemplate() string {
	if e.EmailJSAutoReplyTemplate != "" {
		return e.EmailJSAutoReplyTemplate
	}
	return e.EmailJSTemplateID + "_autoreply"
}

// ChatConfig holds the assistant backends. Provider is "openai", "gemini"
// or empty to pick whichever key is set (OpenAI first).
type ChatConfig struct {
	Provider        string        `env:"CHAT_PROVIDER" envDefault:""`
	OpenAIAPIKey    string        `env:"OPENAI_API_KEY" envDefault:""`
	OpenAIBaseURL   string        `env:"OPENAI_BASE_URL" envDefault:""`
	OpenAIModel     string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	GoogleAPIKey    string        `env:"GOOGLE_API_KEY" envDefault:""`
	GeminiModel     string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	MaxOutputTokens int           `env:"CHAT_MAX_TOKENS" envDefault:"300"`
	Timeout         time.Duration `env:"CHAT_TIMEOUT" envDefault:"60s"`
	MaxHistory      int           `env:"CHAT_MAX_HISTORY" envDefault:"40"`
}

// ResolvedProvider returns the backend to use, or "" when none is configured.
func (c *ChatConfig) ResolvedProvider() string {
	switch c.Provider {
	case "openai":
		if c.OpenAIAPIKey != "" {
			return "openai"
		}
		return ""
	case "gemini":
		if c.GoogleAPIKey != "" {
			return "gemini"
		}
		return ""
	}
	if c.OpenAIAPIKey != "" {
		return "openai"
	}
	if c.GoogleAPIKey != "" {
		return "gemini"
	}
	return ""
}

// IsConfigured returns true if a chat backend has a credential.
func (c *ChatConfig) IsConfigured() bool {
	return c.ResolvedProvider() != ""
}

// PaymentsConfig holds hosted checkout credentials. Provider is "stripe",
// "razorpay" or empty to pick whichever is set (Razorpay first, since
// prices are in INR).
type PaymentsConfig struct {
	Provider            string `env:"PAYMENT_PROVIDER" envDefault:""`
	Currency            string `env:"PAYMENT_CURRENCY" envDefault:"inr"`
	StripeSecretKey     string `env:"STRIPE_SECRET_KEY" envDefault:""`
	StripePublishable   string `env:"STRIPE_PUBLISHABLE_KEY" envDefault:""`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET" envDefault:""`
	StripeAPIBase       string `env:"STRIPE_API_BASE" envDefault:""`
	RazorpayKeyID       string `env:"RAZORPAY_KEY_ID" envDefault:""`
	RazorpayKeySecret   string `env:"RAZORPAY_KEY_SECRET" envDefault:""`
}

func (p *PaymentsConfig) StripeConfigured() bool {
	return p.StripeSecretKey != ""
}

func (p *PaymentsConfig) RazorpayConfigured() bool {
	return p.RazorpayKeyID != "" && p.RazorpayKeySecret != ""
}

// ResolvedProvider returns the checkout backend to use, or "".
func (p *PaymentsConfig) ResolvedProvider() string {
	switch p.Provider {
	case "stripe":
		if p.StripeConfigured() {
			return "stripe"
		}
		return ""
	case "razorpay":
		if p.RazorpayConfigured() {
			return "razorpay"
		}
		return ""
	}
	if p.RazorpayConfigured() {
		return "razorpay"
	}
	if p.StripeConfigured() {
		return "stripe"
	}
	return ""
}

// IsConfigured returns true if a checkout backend has credentials.
func (p *PaymentsConfig) IsConfigured() bool {
	return p.ResolvedProvider() != ""
}

// RateLimitConfig bounds the write endpoints per client IP.
type RateLimitConfig struct {
	LeadsPerMinute    int `env:"RATE_LIMIT_LEADS_PER_MIN" envDefault:"5"`
	LeadsBurst        int `env:"RATE_LIMIT_LEADS_BURST" envDefault:"3"`
	ChatPerMinute     int `env:"RATE_LIMIT_CHAT_PER_MIN" envDefault:"20"`
	ChatBurst         int `env:"RATE_LIMIT_CHAT_BURST" envDefault:"5"`
	CheckoutPerMinute int `env:"RATE_LIMIT_CHECKOUT_PER_MIN" envDefault:"10"`
	CheckoutBurst     int `env:"RATE_LIMIT_CHECKOUT_BURST" envDefault:"3"`
}

// SchedulerConfig controls background maintenance tasks. A schedule, when
// set, is a 5-field cron expression and takes precedence over the interval.
type SchedulerConfig struct {
	Enabled               bool          `env:"SCHEDULER_ENABLED" envDefault:"true"`
	ViewSweepSchedule     string        `env:"VIEW_SWEEP_SCHEDULE" envDefault:""`
	PaymentExpireInterval time.Duration `env:"PAYMENT_EXPIRE_INTERVAL" envDefault:"15m"`
	PaymentExpireSchedule string        `env:"PAYMENT_EXPIRE_SCHEDULE" envDefault:""`
	PaymentPendingTTL     time.Duration `env:"PAYMENT_PENDING_TTL" envDefault:"24h"`
}

// NewConfig loads configuration from environment variables
func NewConfig(log *slog.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	log.Info("configuration loaded",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.ServerPort),
		slog.String("db_driver", cfg.Database.Driver),
		slog.Bool("email_configured", cfg.Email.IsConfigured()),
		slog.String("chat_provider", cfg.Chat.ResolvedProvider()),
		slog.String("payment_provider", cfg.Payments.ResolvedProvider()),
	)

	return cfg, nil
}

// Load parses the environment without logging. The CLI uses it directly.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
