package external

import (
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"sitewizard/internal/config"
)

// ClientRegistry holds the vendor adapters the API wires into the session
// service and handlers. Stripe is nil when checkout is bypassed.
type ClientRegistry struct {
	Stripe   *StripeClient
	Uploads  *S3Uploader
	Contacts *ContactValidator
}

// NewClientRegistry builds every adapter from cfg. awsCfg is the loaded SDK
// configuration; a non-empty AWS endpoint (LocalStack) switches S3 to
// path-style addressing.
func NewClientRegistry(cfg *config.Config, awsCfg aws.Config, logger *slog.Logger) *ClientRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	reg := &ClientRegistry{
		Contacts: NewContactValidator(cfg.Wizard.PhoneRegion),
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.AWS.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
			o.UsePathStyle = true
		}
	})
	reg.Uploads = NewS3Uploader(s3Client, cfg.AWS.AssetsBucket, cfg.AWS.AssetsPublicURL, logger.With("client", "s3"))

	if cfg.Billing.BypassCheckout {
		logger.Warn("stripe client disabled: checkout bypass is on", "environment", cfg.Environment)
		return reg
	}
	base := NewBaseClient(&http.Client{Timeout: cfg.Billing.HTTPTimeout}, "stripe", DefaultRetryPolicy())
	reg.Stripe = NewStripeClient(base, StripeConfig{
		SecretKey:     cfg.Billing.StripeSecretKey,
		WebhookSecret: cfg.Billing.StripeWebhookSecret,
		Logger:        logger.With("client", "stripe"),
	})
	return reg
}
