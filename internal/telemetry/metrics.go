// Package telemetry publishes wizard funnel and API metrics to CloudWatch.
package telemetry

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"sitewizard/internal/types"
)

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchMetrics emits counters and request latency to CloudWatch.
// Publishing failures are logged and never surface to callers.
//
// Metrics emitted:
//   - WizardActionApplied / WizardActionRejected: Dims {Plan, ActionType}
//   - WizardInvariantViolation: Dims {ActionType}
//   - DraftCreated, CheckoutStarted, CheckoutCompleted: Dims {Plan}
//   - APILatency, APIRequestCount: Dims {Method, Endpoint, Status}
type CloudWatchMetrics struct {
	client    CloudWatchClient
	namespace string
	logger    *slog.Logger
}

// NewCloudWatchMetrics creates a CloudWatchMetrics publishing to namespace,
// or to the SiteWizard namespace when it is empty.
func NewCloudWatchMetrics(client CloudWatchClient, namespace string, logger *slog.Logger) *CloudWatchMetrics {
	if logger == nil {
		logger = slog.Default()
	}
	if namespace == "" {
		namespace = types.MetricNamespace
	}
	return &CloudWatchMetrics{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

// Count emits a single Count datum for metric with the given dimensions.
func (m *CloudWatchMetrics) Count(ctx context.Context, metric string, dims map[string]string) {
	m.put(ctx, cwtypes.MetricDatum{
		MetricName: aws.String(metric),
		Value:      aws.Float64(1),
		Unit:       cwtypes.StandardUnitCount,
		Dimensions: dimensions(dims),
	})
}

// RecordRequest emits APILatency and APIRequestCount for a served request.
func (m *CloudWatchMetrics) RecordRequest(method, endpoint, status string, duration time.Duration) {
	dims := dimensions(map[string]string{
		types.DimMethod:   method,
		types.DimEndpoint: endpoint,
		types.DimStatus:   status,
	})
	m.put(context.Background(),
		cwtypes.MetricDatum{
			MetricName: aws.String(types.MetricAPILatency),
			Value:      aws.Float64(float64(duration.Milliseconds())),
			Unit:       cwtypes.StandardUnitMilliseconds,
			Dimensions: dims,
		},
		cwtypes.MetricDatum{
			MetricName: aws.String(types.MetricAPIRequestCount),
			Value:      aws.Float64(1),
			Unit:       cwtypes.StandardUnitCount,
			Dimensions: dims,
		},
	)
}

func (m *CloudWatchMetrics) put(ctx context.Context, data ...cwtypes.MetricDatum) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	}
	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.ErrorContext(ctx, "failed to publish metric",
			"error", err.Error(),
			"metric", aws.ToString(data[0].MetricName),
		)
	}
}

// dimensions converts a map into CloudWatch dimensions sorted by name so the
// same dimension set always produces the same series.
func dimensions(dims map[string]string) []cwtypes.Dimension {
	if len(dims) == 0 {
		return nil
	}
	names := make([]string, 0, len(dims))
	for k := range dims {
		names = append(names, k)
	}
	sort.Strings(names)

	out := make([]cwtypes.Dimension, 0, len(names))
	for _, k := range names {
		out = append(out, cwtypes.Dimension{
			Name:  aws.String(k),
			Value: aws.String(dims[k]),
		})
	}
	return out
}

// NoopMetrics discards everything. Used in local mode and tests.
type NoopMetrics struct{}

// Count implements the counter interface.
func (NoopMetrics) Count(context.Context, string, map[string]string) {}

// RecordRequest implements core.MetricsCollector.
func (NoopMetrics) RecordRequest(string, string, string, time.Duration) {}
