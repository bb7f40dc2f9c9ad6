// Package config defines the process configuration of the site wizard API
// and the site provisioner. Configuration is read once at startup and is
// immutable afterwards.
//
// Values resolve in priority order:
//
//	OS environment -> .env file -> AWS SSM Parameter Store (via *_SSM_PARAM)
//
// A missing required value or an invalid combination fails startup.
package config

import (
	"time"

	"sitewizard/internal/types"
)

// SecretString is the redacting string type used for credentials.
type SecretString = types.SecretString

// Config is the top-level configuration. Components receive only the
// section they need.
type Config struct {
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"sitewizard-api"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	AWS           AWSConfig
	Billing       BillingConfig
	Wizard        WizardConfig
	Observability ObservabilityConfig

	// Injected via ldflags, not the environment.
	Build BuildInfo `ignored:"true"`
}

// ServerConfig holds the HTTP listener and public URLs.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"15s"`

	// WizardURL is the front-end origin; checkout redirects land there.
	WizardURL          string   `envconfig:"WIZARD_URL" validate:"required,url"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// DatabaseConfig holds the Postgres connection and pool tuning.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required"`

	MaxConns          int32         `envconfig:"DB_MAX_CONNS" default:"10" validate:"min=1"`
	MinConns          int32         `envconfig:"DB_MIN_CONNS" default:"1" validate:"min=0,ltefield=MaxConns"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// RedisConfig selects the session store. An empty URL keeps sessions in
// process memory, which is only accepted when APP_ENV=local.
type RedisConfig struct {
	URL        SecretString  `envconfig:"REDIS_URL"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"24h" validate:"min=1m"`
}

// AWSConfig holds regional settings and resource identifiers.
type AWSConfig struct {
	Region      string `envconfig:"AWS_REGION" default:"us-east-1"`
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL"` // LocalStack; empty in deployed stages

	AssetsBucket         string `envconfig:"ASSETS_BUCKET" validate:"required"`
	AssetsPublicURL      string `envconfig:"ASSETS_PUBLIC_URL" validate:"required,url"`
	ProvisioningQueueURL string `envconfig:"SQS_SITE_PROVISIONING" validate:"required,url"`
}

// BillingConfig holds the Stripe credentials. BypassCheckout skips the
// payment provider and is refused in prod.
type BillingConfig struct {
	StripeSecretKey     SecretString  `envconfig:"STRIPE_SECRET_KEY" validate:"required_if=BypassCheckout false"`
	StripeWebhookSecret SecretString  `envconfig:"STRIPE_WEBHOOK_SECRET" validate:"required_if=BypassCheckout false"`
	BypassCheckout      bool          `envconfig:"BILLING_BYPASS_CHECKOUT" default:"false"`
	HTTPTimeout         time.Duration `envconfig:"STRIPE_HTTP_TIMEOUT" default:"20s"`
}

// WizardConfig tunes the configuration session.
type WizardConfig struct {
	// PublicDomain hosts published sites as https://<subdomain>.<PublicDomain>.
	PublicDomain         string        `envconfig:"SITES_PUBLIC_DOMAIN" validate:"required,fqdn"`
	AvailabilityDebounce time.Duration `envconfig:"AVAILABILITY_DEBOUNCE" default:"300ms"`
	UndoDepth            int           `envconfig:"UNDO_DEPTH" default:"50" validate:"min=1,max=500"`
	PhoneRegion          string        `envconfig:"DEFAULT_PHONE_REGION" default:"US" validate:"len=2"`
}

// ObservabilityConfig holds telemetry settings.
type ObservabilityConfig struct {
	MetricNamespace string `envconfig:"METRIC_NAMESPACE" default:"SiteWizard"`
	EnableMetrics   bool   `envconfig:"ENABLE_METRICS" default:"true"`
}

// BuildInfo holds build-time metadata.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// IsLocal reports whether the process runs against local infrastructure.
func (c *Config) IsLocal() bool { return c.Environment == localEnv }

// ConfigErrorType categorizes configuration loading failures.
type ConfigErrorType string

const (
	ErrSSMResolution ConfigErrorType = "SSM_FAILURE"
	ErrValidation    ConfigErrorType = "VALIDATION_FAILED"
	ErrParsing       ConfigErrorType = "PARSING_FAILED"
)
