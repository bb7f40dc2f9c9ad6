package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/redis/go-redis/v9"

	"sitewizard/internal/api/handlers"
	"sitewizard/internal/availability"
	"sitewizard/internal/config"
	"sitewizard/internal/core"
	"sitewizard/internal/db"
	"sitewizard/internal/external"
	"sitewizard/internal/queue"
	"sitewizard/internal/session"
	"sitewizard/internal/telemetry"
	"sitewizard/internal/types"
)

// database is what the repositories and the health probe need from the pool.
type database interface {
	db.DBTX
	Ping(ctx context.Context) error
}

// infra holds the connections opened by run. A nil Redis keeps sessions and
// rate-limit windows in process memory.
type infra struct {
	DB    database
	Redis redis.UniversalClient
	AWS   aws.Config
}

// metricsSink is satisfied by both telemetry implementations.
type metricsSink interface {
	core.MetricsCollector
	Count(ctx context.Context, metric string, dims map[string]string)
}

// buildServer wires every component onto a core.Server and mounts its routes.
func buildServer(cfg *config.Config, logger *slog.Logger, in infra) (*core.Server, error) {
	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return nil, err
	}

	var metrics metricsSink = telemetry.NoopMetrics{}
	if cfg.Observability.EnableMetrics {
		metrics = telemetry.NewCloudWatchMetrics(cloudwatch.NewFromConfig(in.AWS),
			cfg.Observability.MetricNamespace, logger.With("component", "metrics"))
	}
	srv.Metrics = metrics

	var store session.Store
	if in.Redis != nil {
		redisStore, err := session.NewRedisStore(in.Redis, cfg.Redis.SessionTTL)
		if err != nil {
			return nil, fmt.Errorf("session store: %w", err)
		}
		store = redisStore
		srv.RateLimitStore = core.NewRedisRateLimitStore(in.Redis)
		srv.HealthProbes = append(srv.HealthProbes, core.ProbeFunc{Label: "redis", Fn: redisStore.Ping})
	} else {
		logger.Warn("redis not configured; sessions and rate limits are kept in memory")
		store = session.NewMemoryStore()
		srv.RateLimitStore = core.NewMemoryRateLimitStore()
	}
	srv.HealthProbes = append(srv.HealthProbes, core.ProbeFunc{Label: "postgres", Fn: in.DB.Ping})

	clients := external.NewClientRegistry(cfg, in.AWS, logger)
	drafts := db.NewDraftRepository(in.DB, cfg.Wizard.PublicDomain)

	sqsClient := sqs.NewFromConfig(in.AWS, func(o *sqs.Options) {
		if cfg.AWS.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
		}
	})

	svcCfg := session.ServiceConfig{
		Store:           store,
		Drafts:          drafts,
		Accounts:        db.NewAccountRepository(in.DB),
		Publisher:       queue.NewProvisioningPublisher(sqsClient, cfg.AWS.ProvisioningQueueURL, logger.With("component", "provisioning")),
		Uploader:        clients.Uploads,
		ValidateChannel: clients.Contacts.Validate,
		Metrics:         metrics,
		Logger:          logger.With("component", "session"),
		UndoDepth:       cfg.Wizard.UndoDepth,
		Redirects:       redirectURLs(cfg.Server.WizardURL),
		BypassCheckout:  cfg.Billing.BypassCheckout,
	}
	if clients.Stripe != nil {
		svcCfg.Checkout = clients.Stripe
	}
	svc := session.NewService(svcCfg)

	checker := availability.NewChecker(db.NewSubdomainRepository(in.DB),
		cfg.Wizard.AvailabilityDebounce, metrics, logger.With("component", "availability"))

	catalogHandler := handlers.NewCatalogHandler()
	wizardHandler := handlers.NewWizardHandler(svc, checker, srv.Validator, logger)
	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars,
		catalogHandler.RegisterRoutes,
		wizardHandler.RegisterRoutes,
	)
	if clients.Stripe != nil {
		webhookHandler := handlers.NewStripeWebhookHandler(clients.Stripe, drafts, metrics, logger)
		srv.V1RouteRegistrars = append(srv.V1RouteRegistrars, webhookHandler.RegisterRoutes)
	}

	srv.MountRoutes()
	return srv, nil
}

// redirectURLs derives the Stripe return pages from the wizard origin. Stripe
// substitutes {CHECKOUT_SESSION_ID} on redirect.
func redirectURLs(wizardURL string) types.RedirectURLs {
	base := strings.TrimRight(wizardURL, "/")
	return types.RedirectURLs{
		Success: base + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		Cancel:  base + "/checkout/cancel",
	}
}

// compile-time checks for the adapters handed to the service.
var (
	_ session.CheckoutProvider      = (*external.StripeClient)(nil)
	_ session.Uploader              = (*external.S3Uploader)(nil)
	_ session.ProvisioningPublisher = (*queue.ProvisioningPublisher)(nil)
	_ handlers.DraftPaymentRecorder = (*db.DraftRepository)(nil)
	_ metricsSink                   = (*telemetry.CloudWatchMetrics)(nil)
)
