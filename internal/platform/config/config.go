package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultXeroScope is requested when the user does not supply a scope with their client credentials.
const DefaultXeroScope = "payroll.employees payroll.timesheets accounting.settings accounting.attachments " +
	"accounting.transactions accounting.contacts accounting.reports.read payroll.settings offline_access"

// Config holds application configuration.
type Config struct {
	DatabaseURL     string
	Port            string
	IsProduction    bool
	EnableDBCheck   bool
	FrontendBaseURL string
	CORSOrigins     []string

	// Xero endpoints, overridable so tests and sandboxes can point elsewhere
	XeroAuthURL        string
	XeroTokenURL       string
	XeroAPIBaseURL     string
	XeroConnectionsURL string
	XeroRedirectURL    string
	XeroDeepLinkURL    string
	XeroHTTPTimeout    time.Duration
	TokenRefreshWindow time.Duration

	// OAuth state signing
	StateSecret         string
	StateIssuer         string
	StateExpiryDuration time.Duration

	// SecretsKey seals client secrets and tokens at rest.
	SecretsKey string

	// LLM advisor
	GeminiAPIKey string
	LLMModel     string

	// Rate limiting, e.g. "120-M"
	RateLimit string
	RedisURL  string

	// Statement archive (S3 compatible)
	ArchiveBucket       string
	ArchiveEndpoint     string
	ArchiveRegion       string
	ArchiveAccessKey    string
	ArchiveSecretKey    string
	ArchiveUsePathStyle bool

	PosthogAPIKey string

	// Account codes used by the coding rules
	SubscriptionsCode     string
	TelephoneInternetCode string
	InterestExpenseCode   string
	BankFeesCode          string
	WagesCode             string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("FRONTEND_BASE_URL", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	viper.SetDefault("XERO_AUTH_URL", "https://login.xero.com/identity/connect/authorize")
	viper.SetDefault("XERO_TOKEN_URL", "https://identity.xero.com/connect/token")
	viper.SetDefault("XERO_API_BASE_URL", "https://api.xero.com")
	viper.SetDefault("XERO_CONNECTIONS_URL", "https://api.xero.com/connections")
	viper.SetDefault("XERO_REDIRECT_URL", "http://localhost:8080/api/v1/xero/callback")
	viper.SetDefault("XERO_DEEP_LINK_URL", "https://go.xero.com/payroll/payruns")
	viper.SetDefault("XERO_HTTP_TIMEOUT", "30s")
	viper.SetDefault("TOKEN_REFRESH_WINDOW", "5m")

	viper.SetDefault("STATE_SECRET", "")
	viper.SetDefault("STATE_ISSUER", "xero-import-app")
	viper.SetDefault("STATE_EXPIRY_DURATION", "15m")
	viper.SetDefault("SECRETS_KEY", "")

	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("LLM_MODEL", "gemini-2.5-flash")

	viper.SetDefault("RATE_LIMIT", "120-M")
	viper.SetDefault("REDIS_URL", "")

	viper.SetDefault("ARCHIVE_BUCKET", "")
	viper.SetDefault("ARCHIVE_ENDPOINT", "")
	viper.SetDefault("ARCHIVE_REGION", "us-east-1")
	viper.SetDefault("ARCHIVE_ACCESS_KEY", "")
	viper.SetDefault("ARCHIVE_SECRET_KEY", "")
	viper.SetDefault("ARCHIVE_USE_PATH_STYLE", true)

	viper.SetDefault("POSTHOG_API_KEY", "")

	viper.SetDefault("CODING_SUBSCRIPTIONS_CODE", "461")
	viper.SetDefault("CODING_TELEPHONE_INTERNET_CODE", "445")
	viper.SetDefault("CODING_INTEREST_EXPENSE_CODE", "425")
	viper.SetDefault("CODING_BANK_FEES_CODE", "404")
	viper.SetDefault("CODING_WAGES_CODE", "477")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.FrontendBaseURL = viper.GetString("FRONTEND_BASE_URL")
	cfg.CORSOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))

	cfg.XeroAuthURL = viper.GetString("XERO_AUTH_URL")
	cfg.XeroTokenURL = viper.GetString("XERO_TOKEN_URL")
	cfg.XeroAPIBaseURL = strings.TrimRight(viper.GetString("XERO_API_BASE_URL"), "/")
	cfg.XeroConnectionsURL = viper.GetString("XERO_CONNECTIONS_URL")
	cfg.XeroRedirectURL = viper.GetString("XERO_REDIRECT_URL")
	cfg.XeroDeepLinkURL = strings.TrimRight(viper.GetString("XERO_DEEP_LINK_URL"), "/")
	cfg.XeroHTTPTimeout = durationOrDefault("XERO_HTTP_TIMEOUT", 30*time.Second)
	cfg.TokenRefreshWindow = durationOrDefault("TOKEN_REFRESH_WINDOW", 5*time.Minute)

	cfg.StateSecret = viper.GetString("STATE_SECRET")
	if cfg.StateSecret == "" {
		cfg.StateSecret = "insecure-state-secret-change-me"
		log.Println("Warning: STATE_SECRET not set. Using default insecure secret. THIS IS NOT FOR PRODUCTION.")
	}
	cfg.StateIssuer = viper.GetString("STATE_ISSUER")
	cfg.StateExpiryDuration = durationOrDefault("STATE_EXPIRY_DURATION", 15*time.Minute)

	cfg.SecretsKey = viper.GetString("SECRETS_KEY")
	if cfg.SecretsKey == "" {
		cfg.SecretsKey = "insecure-secrets-key-change-me"
		log.Println("Warning: SECRETS_KEY not set. Stored Xero tokens use a default key. THIS IS NOT FOR PRODUCTION.")
	}

	cfg.GeminiAPIKey = viper.GetString("GEMINI_API_KEY")
	cfg.LLMModel = viper.GetString("LLM_MODEL")
	if cfg.GeminiAPIKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set. Reconciliation suggestions are disabled.")
	}

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.RedisURL = viper.GetString("REDIS_URL")

	cfg.ArchiveBucket = viper.GetString("ARCHIVE_BUCKET")
	cfg.ArchiveEndpoint = viper.GetString("ARCHIVE_ENDPOINT")
	cfg.ArchiveRegion = viper.GetString("ARCHIVE_REGION")
	cfg.ArchiveAccessKey = viper.GetString("ARCHIVE_ACCESS_KEY")
	cfg.ArchiveSecretKey = viper.GetString("ARCHIVE_SECRET_KEY")
	cfg.ArchiveUsePathStyle = viper.GetBool("ARCHIVE_USE_PATH_STYLE")

	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")

	cfg.SubscriptionsCode = viper.GetString("CODING_SUBSCRIPTIONS_CODE")
	cfg.TelephoneInternetCode = viper.GetString("CODING_TELEPHONE_INTERNET_CODE")
	cfg.InterestExpenseCode = viper.GetString("CODING_INTEREST_EXPENSE_CODE")
	cfg.BankFeesCode = viper.GetString("CODING_BANK_FEES_CODE")
	cfg.WagesCode = viper.GetString("CODING_WAGES_CODE")

	return cfg, nil
}

// ArchiveEnabled reports whether raw statement uploads should be copied to object storage.
func (c *Config) ArchiveEnabled() bool {
	return c.ArchiveBucket != ""
}

func durationOrDefault(key string, def time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def.String())
		}
		return def
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
