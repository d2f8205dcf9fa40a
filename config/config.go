package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve on minimal images

	"github.com/spf13/viper"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server        ServerConfig
	ReCAPTCHA     ReCAPTCHAConfig
	Mail          MailConfig
	Brand         BrandConfig
	RateLimit     RateLimitConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
}

type ServerConfig struct {
	Port                   string
	GinMode                string
	AppEnv                 string
	AllowedOrigins         []string
	ExternalTimeoutSeconds int
	MaxBodyBytes           int64
}

type ReCAPTCHAConfig struct {
	SecretKey string
	// Enforced is false only when verification is deliberately switched off.
	Enforced  bool
	MinScore  float64
	VerifyURL string
}

type MailConfig struct {
	Driver         string // "resend" or "mbox"
	ResendAPIKey   string
	ResendAPIURL   string
	MboxPath       string
	From           string
	ReplyTo        string
	RecipientEmail string
}

type BrandConfig struct {
	CompanyName  string
	LegalName    string
	WebsiteURL   string
	LinkedInURL  string
	ContactEmail string
	Timezone     string
}

type RateLimitConfig struct {
	WindowSeconds  int
	MaxPerWindow   int
	IPRequestsPerS float64
	IPBurst        int
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	ExporterEndpoint  string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

const (
	MailDriverResend = "resend"
	MailDriverMbox   = "mbox"
)

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "https://mountarc.com,https://www.mountarc.com")
	v.SetDefault("EXTERNAL_TIMEOUT_SECONDS", 10)
	v.SetDefault("MAX_BODY_BYTES", 64*1024)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "")
	v.SetDefault("RECAPTCHA_MIN_SCORE", 0.5)
	v.SetDefault("RECAPTCHA_VERIFY_URL", "https://www.google.com/recaptcha/api/siteverify")
	v.SetDefault("MAIL_DRIVER", MailDriverResend)
	v.SetDefault("RESEND_API_URL", "https://api.resend.com/emails")
	v.SetDefault("MAIL_MBOX_PATH", "")
	v.SetDefault("MAIL_FROM", "MountArc <onboarding@resend.dev>")
	v.SetDefault("MAIL_REPLY_TO", "contact@mountarc.com")
	v.SetDefault("RECIPIENT_EMAIL", "contact@mountarc.com")
	v.SetDefault("BRAND_COMPANY_NAME", "MountArc")
	v.SetDefault("BRAND_LEGAL_NAME", "MountArc Private Limited")
	v.SetDefault("WEBSITE_URL", "https://mountarc-website-final.vercel.app")
	v.SetDefault("LINKEDIN_URL", "https://www.linkedin.com/company/mountarc/")
	v.SetDefault("BRAND_CONTACT_EMAIL", "contact@mountarc.com")
	v.SetDefault("TIMEZONE", "Asia/Kolkata")
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 300) // 5 minutes
	v.SetDefault("RATE_LIMIT_MAX_PER_WINDOW", 1)
	v.SetDefault("IP_RATE_LIMIT_RPS", 1)
	v.SetDefault("IP_RATE_LIMIT_BURST", 5)
	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "")
	v.SetDefault("O11Y_SERVICE_NAME", "mountarc-api")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "mountarc")
	v.SetDefault("O11Y_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "mountarc-api")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,goroutines")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	secretKey := v.GetString("RECAPTCHA_SECRET_KEY")
	// Verification is on whenever a secret exists, unless explicitly overridden.
	enforced := secretKey != ""
	if v.IsSet("RECAPTCHA_ENFORCED") {
		enforced = v.GetBool("RECAPTCHA_ENFORCED")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:                   v.GetString("PORT"),
			GinMode:                v.GetString("GIN_MODE"),
			AppEnv:                 v.GetString("APP_ENV"),
			AllowedOrigins:         splitList(v.GetString("ALLOWED_CORS_ORIGINS")),
			ExternalTimeoutSeconds: v.GetInt("EXTERNAL_TIMEOUT_SECONDS"),
			MaxBodyBytes:           v.GetInt64("MAX_BODY_BYTES"),
		},
		ReCAPTCHA: ReCAPTCHAConfig{
			SecretKey: secretKey,
			Enforced:  enforced,
			MinScore:  v.GetFloat64("RECAPTCHA_MIN_SCORE"),
			VerifyURL: v.GetString("RECAPTCHA_VERIFY_URL"),
		},
		Mail: MailConfig{
			Driver:         strings.ToLower(strings.TrimSpace(v.GetString("MAIL_DRIVER"))),
			ResendAPIKey:   v.GetString("RESEND_API_KEY"),
			ResendAPIURL:   v.GetString("RESEND_API_URL"),
			MboxPath:       v.GetString("MAIL_MBOX_PATH"),
			From:           v.GetString("MAIL_FROM"),
			ReplyTo:        v.GetString("MAIL_REPLY_TO"),
			RecipientEmail: v.GetString("RECIPIENT_EMAIL"),
		},
		Brand: BrandConfig{
			CompanyName:  v.GetString("BRAND_COMPANY_NAME"),
			LegalName:    v.GetString("BRAND_LEGAL_NAME"),
			WebsiteURL:   strings.TrimRight(v.GetString("WEBSITE_URL"), "/"),
			LinkedInURL:  v.GetString("LINKEDIN_URL"),
			ContactEmail: v.GetString("BRAND_CONTACT_EMAIL"),
			Timezone:     v.GetString("TIMEZONE"),
		},
		RateLimit: RateLimitConfig{
			WindowSeconds:  v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
			MaxPerWindow:   v.GetInt("RATE_LIMIT_MAX_PER_WINDOW"),
			IPRequestsPerS: v.GetFloat64("IP_RATE_LIMIT_RPS"),
			IPBurst:        v.GetInt("IP_RATE_LIMIT_BURST"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			ExporterEndpoint:  v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_CORS_ORIGINS is required")
	}
	if c.Server.ExternalTimeoutSeconds <= 0 {
		return fmt.Errorf("EXTERNAL_TIMEOUT_SECONDS must be positive")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive")
	}

	if c.ReCAPTCHA.Enforced && c.ReCAPTCHA.SecretKey == "" {
		return fmt.Errorf("RECAPTCHA_SECRET_KEY is required when RECAPTCHA_ENFORCED is true")
	}
	if c.ReCAPTCHA.MinScore < 0 || c.ReCAPTCHA.MinScore > 1 {
		return fmt.Errorf("RECAPTCHA_MIN_SCORE must be between 0 and 1, got %v", c.ReCAPTCHA.MinScore)
	}

	switch c.Mail.Driver {
	case MailDriverResend:
	case MailDriverMbox:
		if c.Mail.MboxPath == "" {
			return fmt.Errorf("MAIL_MBOX_PATH is required when MAIL_DRIVER is mbox")
		}
	default:
		return fmt.Errorf("unsupported MAIL_DRIVER %q", c.Mail.Driver)
	}
	if c.Mail.RecipientEmail == "" {
		return fmt.Errorf("RECIPIENT_EMAIL is required")
	}
	if c.Mail.From == "" {
		return fmt.Errorf("MAIL_FROM is required")
	}

	if c.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW_SECONDS must be positive")
	}
	if c.RateLimit.MaxPerWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_MAX_PER_WINDOW must be positive")
	}

	if _, err := time.LoadLocation(c.Brand.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Brand.Timezone, err)
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("O11Y_PROFILING_ENDPOINT is required when profiling is enabled")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}

// RateLimitWindow returns the per-email submission window.
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimit.WindowSeconds) * time.Second
}

// ExternalTimeout bounds every outbound provider call.
func (c *Config) ExternalTimeout() time.Duration {
	return time.Duration(c.Server.ExternalTimeoutSeconds) * time.Second
}

func splitList(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
