// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	PublicURL   string
	FrontendURL string
	DBPath      string
	BorrowersCSV string

	Telephony   TelephonyConfig
	Transcriber TranscriberConfig
	Dialogue    DialogueConfig
	Dialer      DialerConfig
}

// TelephonyConfig holds the outbound provider credentials. When AccountSID
// is empty the service runs webhook-only: it answers calls placed by the
// provider but cannot place calls or download recordings itself.
type TelephonyConfig struct {
	AccountSID  string
	AuthToken   string
	PhoneNumber string
	APIBaseURL  string
	Voice       string
}

// TranscriberConfig points at the speech-to-text gRPC sidecar.
type TranscriberConfig struct {
	Addr         string
	LanguageHint string
}

// DialogueConfig controls session lifecycle and reprompt behavior.
type DialogueConfig struct {
	SessionTTL   time.Duration
	ReapInterval time.Duration
	MaxReprompts int
}

// DialerConfig controls the outbound calling batch.
type DialerConfig struct {
	Workers     int
	DialOnStart bool
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		PublicURL:    getEnv("PUBLIC_URL", ""),
		FrontendURL:  getEnv("FRONTEND_URL", ""),
		DBPath:       getEnv("DB_PATH", "./data/borrowers.db"),
		BorrowersCSV: getEnv("BORROWERS_CSV", ""),
		Telephony: TelephonyConfig{
			AccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
			PhoneNumber: getEnv("TWILIO_PHONE_NUMBER", ""),
			APIBaseURL:  getEnv("TWILIO_API_URL", ""),
			Voice:       getEnv("TTS_VOICE", "Polly.Aditi"),
		},
		Transcriber: TranscriberConfig{
			Addr:         getEnv("TRANSCRIBER_ADDR", "localhost:50051"),
			LanguageHint: getEnv("TRANSCRIBER_LANGUAGE", "en"),
		},
		Dialogue: DialogueConfig{
			SessionTTL:   getEnvDuration("SESSION_TTL", 10*time.Minute),
			ReapInterval: getEnvDuration("SESSION_REAP_INTERVAL", time.Minute),
			MaxReprompts: getEnvInt("MAX_REPROMPTS", 3),
		},
		Dialer: DialerConfig{
			Workers:     getEnvInt("DIAL_WORKERS", 4),
			DialOnStart: getEnvBool("DIAL_ON_START", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.Telephony.Voice == "" {
		return fmt.Errorf("TTS_VOICE cannot be empty")
	}
	if c.Dialogue.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if c.Dialogue.ReapInterval <= 0 {
		return fmt.Errorf("SESSION_REAP_INTERVAL must be > 0")
	}
	if c.Dialogue.MaxReprompts <= 0 {
		return fmt.Errorf("MAX_REPROMPTS must be > 0")
	}
	if c.Dialer.Workers <= 0 {
		return fmt.Errorf("DIAL_WORKERS must be > 0")
	}
	if c.TelephonyEnabled() {
		if c.Telephony.AuthToken == "" {
			return fmt.Errorf("TWILIO_AUTH_TOKEN cannot be empty when TWILIO_ACCOUNT_SID is set")
		}
		if c.Telephony.PhoneNumber == "" {
			return fmt.Errorf("TWILIO_PHONE_NUMBER cannot be empty when TWILIO_ACCOUNT_SID is set")
		}
	}
	if c.Dialer.DialOnStart {
		if !c.TelephonyEnabled() {
			return fmt.Errorf("DIAL_ON_START requires telephony credentials")
		}
		if c.PublicURL == "" {
			return fmt.Errorf("DIAL_ON_START requires PUBLIC_URL")
		}
	}
	return nil
}

// TelephonyEnabled reports whether provider credentials are configured.
func (c *Config) TelephonyEnabled() bool {
	return c.Telephony.AccountSID != ""
}

// VoiceWebhookURL returns the absolute call-started webhook URL handed to
// the provider when placing outbound calls.
func (c *Config) VoiceWebhookURL() string {
	return strings.TrimRight(c.PublicURL, "/") + "/voice"
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
