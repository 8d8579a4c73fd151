package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Role identifies which marketplace account a run authenticates as.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleVendor   Role = "vendor"
	RoleCustomer Role = "customer"
)

var knownPolicies = map[string]struct{}{
	"fixed":      {},
	"permissive": {},
	"exact":      {},
	"tolerant":   {},
}

// Config represents the full application configuration surface.
type Config struct {
	Server      ServerConfig
	API         APIConfig
	Credentials CredentialsConfig
	Smoke       SmokeConfig
	Log         LogConfig
	MongoDB     MongoDBConfig
	Sheets      SheetsConfig
	WhatsApp    WhatsAppConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// APIConfig describes the marketplace REST API under test.
type APIConfig struct {
	BaseURL       string
	Timeout       time.Duration
	MaxConcurrent int
	Retries       int
}

// Account is an email/password pair for one marketplace role.
type Account struct {
	Email    string
	Password string
}

// CredentialsConfig holds the login accounts per role.
type CredentialsConfig struct {
	Admin    Account
	Vendor   Account
	Customer Account
}

// SmokeConfig holds runner and scheduler settings.
type SmokeConfig struct {
	Policy         string
	FixtureID      string
	ParallelSuites int
	ReportDir      string
	CronSchedule   string
	Timezone       string
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string
}

// MongoDBConfig holds settings for MongoDB. An empty URI selects the in-memory run store.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// SheetsConfig contains configuration required to append run rows to Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the sheets ledger is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// WhatsAppConfig contains credentials for the Meta WhatsApp Cloud API used for run notifications.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
	// NotifyTo is a comma-separated list of recipients. Only these numbers may issue commands.
	NotifyTo      string
	VerifyToken   string
}

// Enabled reports whether failure notifications should be sent.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != "" && c.PhoneNumberID != "" && c.NotifyTo != ""
}

// WebhookEnabled reports whether the inbound command webhook should be exposed.
func (c WhatsAppConfig) WebhookEnabled() bool {
	return c.Enabled() && c.VerifyToken != ""
}

// Recipients splits NotifyTo into trimmed phone numbers.
func (c WhatsAppConfig) Recipients() []string {
	var out []string
	for _, r := range strings.Split(c.NotifyTo, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	timeout, err := getenvDuration("API_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	maxConcurrent, err := getenvInt("API_MAX_CONCURRENT", 10)
	if err != nil {
		return nil, err
	}
	retries, err := getenvInt("API_RETRIES", 3)
	if err != nil {
		return nil, err
	}
	parallel, err := getenvInt("SMOKE_PARALLEL_SUITES", 1)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		API: APIConfig{
			BaseURL:       getenvWithDefault("API_BASE_URL", "https://groow-api.destinpq.com"),
			Timeout:       timeout,
			MaxConcurrent: maxConcurrent,
			Retries:       retries,
		},
		Credentials: CredentialsConfig{
			Admin:    Account{Email: os.Getenv("ADMIN_EMAIL"), Password: os.Getenv("ADMIN_PASSWORD")},
			Vendor:   Account{Email: os.Getenv("VENDOR_EMAIL"), Password: os.Getenv("VENDOR_PASSWORD")},
			Customer: Account{Email: os.Getenv("CUSTOMER_EMAIL"), Password: os.Getenv("CUSTOMER_PASSWORD")},
		},
		Smoke: SmokeConfig{
			Policy:         strings.ToLower(getenvWithDefault("SMOKE_POLICY", "fixed")),
			FixtureID:      getenvWithDefault("SMOKE_FIXTURE_ID", "test-id"),
			ParallelSuites: parallel,
			ReportDir:      getenvWithDefault("REPORT_DIR", "reports"),
			CronSchedule:   getenvWithDefault("SMOKE_CRON_SCHEDULE", "0 */6 * * *"),
			Timezone:       getenvWithDefault("TIMEZONE", "UTC"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "groow_smoke"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_ID"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			NotifyTo:      os.Getenv("WHATSAPP_NOTIFY_TO"),
			VerifyToken:   os.Getenv("WHATSAPP_VERIFY_TOKEN"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.API.BaseURL == "" {
		return errors.New("API_BASE_URL must not be empty")
	}
	if c.API.Timeout <= 0 {
		return errors.New("API_TIMEOUT must be positive")
	}
	if c.API.MaxConcurrent < 1 {
		return errors.New("API_MAX_CONCURRENT must be at least 1")
	}
	if c.API.Retries < 0 {
		return errors.New("API_RETRIES must not be negative")
	}

	switch {
	case c.Credentials.Admin.Email == "":
		return errors.New("ADMIN_EMAIL must be provided")
	case c.Credentials.Admin.Password == "":
		return errors.New("ADMIN_PASSWORD must be provided")
	}

	if _, ok := knownPolicies[c.Smoke.Policy]; !ok {
		return fmt.Errorf("SMOKE_POLICY %q is not one of fixed, permissive, exact, tolerant", c.Smoke.Policy)
	}

	if c.Smoke.ParallelSuites < 1 {
		return errors.New("SMOKE_PARALLEL_SUITES must be at least 1")
	}

	if c.Smoke.CronSchedule == "" {
		return errors.New("SMOKE_CRON_SCHEDULE must be provided")
	}

	if _, err := time.LoadLocation(c.Smoke.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q: %w", c.Smoke.Timezone, err)
	}

	if c.MongoDB.URI != "" && c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided with MONGODB_URI")
	}

	return nil
}

// Account returns the credentials for a role. Unknown or unconfigured roles report false.
func (c CredentialsConfig) Account(role Role) (Account, bool) {
	var acct Account
	switch role {
	case RoleAdmin:
		acct = c.Admin
	case RoleVendor:
		acct = c.Vendor
	case RoleCustomer:
		acct = c.Customer
	default:
		return Account{}, false
	}
	return acct, acct.Email != "" && acct.Password != ""
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}
