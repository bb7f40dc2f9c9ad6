// Package main is the entrypoint for the Site Provisioner Lambda function.
//
// The provisioner consumes SiteProvisioningMessage records from the
// provisioning SQS queue, one per finalized draft, and moves each draft from
// pending to provisioned. SQS redelivers at least once, so every step is
// idempotent.
//
// Handler flow:
//
//	For each SQS message in the batch:
//	  1. Decode the SiteProvisioningMessage. Malformed bodies are logged and
//	     acknowledged; retrying cannot fix them.
//	  2. MarkProvisioned on the draft.
//	  3. On a storage error, report the message in batchItemFailures so SQS
//	     retries only that record.
package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/jackc/pgx/v5/pgxpool"

	"sitewizard/internal/config"
	"sitewizard/internal/db"
	"sitewizard/internal/queue"
	"sitewizard/internal/telemetry"
	"sitewizard/internal/types"
)

// DraftProvisioner marks a draft provisioned. A draft that already left the
// pending state must be left untouched.
type DraftProvisioner interface {
	MarkProvisioned(ctx context.Context, id string) error
}

// Metrics receives the provisioning counter.
type Metrics interface {
	Count(ctx context.Context, metric string, dims map[string]string)
}

// Handler holds the dependencies for the provisioner Lambda handler.
type Handler struct {
	Drafts  DraftProvisioner
	Metrics Metrics
	Logger  *slog.Logger
}

// Handle processes an SQS batch using partial batch responses.
func (h *Handler) Handle(ctx context.Context, sqsEvent events.SQSEvent) (events.SQSEventResponse, error) {
	response := events.SQSEventResponse{}

	for _, record := range sqsEvent.Records {
		if err := h.processMessage(ctx, record); err != nil {
			h.Logger.ErrorContext(ctx, "failed to process provisioning message",
				"message_id", record.MessageId,
				"error", err,
			)
			response.BatchItemFailures = append(response.BatchItemFailures,
				events.SQSBatchItemFailure{ItemIdentifier: record.MessageId},
			)
		}
	}

	return response, nil
}

func (h *Handler) processMessage(ctx context.Context, record events.SQSMessage) error {
	msg, err := queue.DecodeProvisioningMessage(record.Body)
	if err != nil {
		// Permanent failure: acknowledge so it does not cycle until the DLQ.
		h.Logger.ErrorContext(ctx, "dropping malformed provisioning message",
			"message_id", record.MessageId,
			"error", err,
		)
		return nil
	}

	logger := h.Logger.With(
		"draft_id", msg.DraftID,
		"subdomain", msg.Subdomain,
		"plan", string(msg.Plan),
		"trace_id", msg.TraceID,
	)
	if sent, ok := sentTimestamp(record); ok {
		logger = logger.With("queue_lag_ms", time.Since(sent).Milliseconds())
	}

	if err := h.Drafts.MarkProvisioned(ctx, msg.DraftID); err != nil {
		return err
	}

	if h.Metrics != nil {
		h.Metrics.Count(ctx, types.MetricSiteProvisioned, map[string]string{types.DimPlan: string(msg.Plan)})
	}
	logger.InfoContext(ctx, "site provisioned")
	return nil
}

// sentTimestamp reads the SentTimestamp system attribute (epoch millis).
func sentTimestamp(record events.SQSMessage) (time.Time, bool) {
	raw, ok := record.Attributes["SentTimestamp"]
	if !ok {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	logger.Info("Site Provisioner Lambda initializing (cold start)")

	// DATABASE_URL may be an SSM reference outside local.
	if err := config.ResolveSecrets(config.NewSSMProvider(os.Getenv("AWS_REGION"))); err != nil {
		logger.Error("Failed to resolve SSM secrets", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		logger.Error("Failed to create database pool", "error", err)
		os.Exit(1)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		logger.Error("Failed to load AWS SDK config", "error", err)
		os.Exit(1)
	}

	handler := &Handler{
		Drafts:  db.NewDraftRepository(pool, os.Getenv("SITES_PUBLIC_DOMAIN")),
		Metrics: telemetry.NewCloudWatchMetrics(cloudwatch.NewFromConfig(awsCfg), os.Getenv("METRIC_NAMESPACE"), logger),
		Logger:  logger,
	}

	lambda.Start(handler.Handle)
}
