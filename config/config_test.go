package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                   "8080",
			AllowedOrigins:         []string{"https://mountarc.com"},
			ExternalTimeoutSeconds: 10,
			MaxBodyBytes:           64 * 1024,
		},
		ReCAPTCHA: ReCAPTCHAConfig{
			SecretKey: "secret",
			Enforced:  true,
			MinScore:  0.5,
		},
		Mail: MailConfig{
			Driver:         MailDriverResend,
			From:           "MountArc <noreply@mountarc.com>",
			RecipientEmail: "contact@mountarc.com",
		},
		Brand: BrandConfig{
			Timezone: "Asia/Kolkata",
		},
		RateLimit: RateLimitConfig{
			WindowSeconds: 300,
			MaxPerWindow:  1,
		},
	}
}

// isolateEnv runs the test from an empty directory so a developer .env is not picked up,
// and blanks the variables Load reads.
func isolateEnv(t *testing.T) {
	t.Helper()

	originalDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(originalDir) })

	for _, key := range []string{
		"PORT", "GIN_MODE", "APP_ENV", "ALLOWED_CORS_ORIGINS", "LOG_LEVEL", "LOG_DIR",
		"RECAPTCHA_SECRET_KEY", "RECAPTCHA_ENFORCED", "RECAPTCHA_MIN_SCORE",
		"RESEND_API_KEY", "MAIL_DRIVER", "MAIL_MBOX_PATH", "RECIPIENT_EMAIL",
		"RATE_LIMIT_WINDOW_SECONDS", "RATE_LIMIT_MAX_PER_WINDOW", "TIMEZONE",
		"O11Y_PROFILING_ENABLED",
	} {
		t.Setenv(key, "")
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected bool
	}{
		{
			name:     "development environment",
			config:   &Config{Server: ServerConfig{AppEnv: "development"}},
			expected: true,
		},
		{
			name:     "debug gin mode",
			config:   &Config{Server: ServerConfig{GinMode: "debug"}},
			expected: true,
		},
		{
			name:     "production environment",
			config:   &Config{Server: ServerConfig{AppEnv: "production"}},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.IsDevelopment())
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(c *Config)
		errorMsg string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name: "open captcha mode without secret",
			mutate: func(c *Config) {
				c.ReCAPTCHA.SecretKey = ""
				c.ReCAPTCHA.Enforced = false
			},
		},
		{
			name: "enforced captcha without secret",
			mutate: func(c *Config) {
				c.ReCAPTCHA.SecretKey = ""
			},
			errorMsg: "RECAPTCHA_SECRET_KEY is required",
		},
		{
			name: "score threshold out of range",
			mutate: func(c *Config) {
				c.ReCAPTCHA.MinScore = 1.5
			},
			errorMsg: "RECAPTCHA_MIN_SCORE must be between 0 and 1",
		},
		{
			name: "mbox driver without path",
			mutate: func(c *Config) {
				c.Mail.Driver = MailDriverMbox
			},
			errorMsg: "MAIL_MBOX_PATH is required",
		},
		{
			name: "unknown mail driver",
			mutate: func(c *Config) {
				c.Mail.Driver = "smtp"
			},
			errorMsg: "unsupported MAIL_DRIVER",
		},
		{
			name: "zero rate limit window",
			mutate: func(c *Config) {
				c.RateLimit.WindowSeconds = 0
			},
			errorMsg: "RATE_LIMIT_WINDOW_SECONDS must be positive",
		},
		{
			name: "zero body limit",
			mutate: func(c *Config) {
				c.Server.MaxBodyBytes = 0
			},
			errorMsg: "MAX_BODY_BYTES must be positive",
		},
		{
			name: "unknown timezone",
			mutate: func(c *Config) {
				c.Brand.Timezone = "Mars/Olympus"
			},
			errorMsg: "invalid TIMEZONE",
		},
		{
			name: "profiling without endpoint",
			mutate: func(c *Config) {
				c.Profiling.Enabled = true
			},
			errorMsg: "O11Y_PROFILING_ENDPOINT is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestLoad_WithDefaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.GinMode)
	assert.Equal(t, 10, cfg.Server.ExternalTimeoutSeconds)
	assert.Equal(t, 300, cfg.RateLimit.WindowSeconds)
	assert.Equal(t, 1, cfg.RateLimit.MaxPerWindow)
	assert.Equal(t, 0.5, cfg.ReCAPTCHA.MinScore)
	assert.False(t, cfg.ReCAPTCHA.Enforced, "no secret means open captcha mode")
	assert.Equal(t, MailDriverResend, cfg.Mail.Driver)
	assert.Equal(t, "contact@mountarc.com", cfg.Mail.RecipientEmail)
	assert.Equal(t, "Asia/Kolkata", cfg.Brand.Timezone)
}

func TestLoad_WithEnvironmentVariables(t *testing.T) {
	isolateEnv(t)

	t.Setenv("PORT", "9000")
	t.Setenv("APP_ENV", "development")
	t.Setenv("RECAPTCHA_SECRET_KEY", "recaptcha-secret")
	t.Setenv("RESEND_API_KEY", "re_123")
	t.Setenv("RECIPIENT_EMAIL", "ops@mountarc.com")
	t.Setenv("RATE_LIMIT_WINDOW_SECONDS", "60")
	t.Setenv("ALLOWED_CORS_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.True(t, cfg.ReCAPTCHA.Enforced)
	assert.Equal(t, "re_123", cfg.Mail.ResendAPIKey)
	assert.Equal(t, "ops@mountarc.com", cfg.Mail.RecipientEmail)
	assert.Equal(t, 60, cfg.RateLimit.WindowSeconds)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestLoad_CaptchaCanBeSwitchedOffExplicitly(t *testing.T) {
	isolateEnv(t)

	t.Setenv("RECAPTCHA_SECRET_KEY", "recaptcha-secret")
	t.Setenv("RECAPTCHA_ENFORCED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.ReCAPTCHA.Enforced)
}

func TestLoad_ValidationFailure(t *testing.T) {
	isolateEnv(t)

	t.Setenv("MAIL_DRIVER", "mbox")

	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}
