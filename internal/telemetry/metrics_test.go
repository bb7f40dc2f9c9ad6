package telemetry

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitewizard/internal/types"
)

// mockCloudWatchClient records PutMetricData calls for verification.
type mockCloudWatchClient struct {
	calls     []*cloudwatch.PutMetricDataInput
	returnErr error
}

func (m *mockCloudWatchClient) PutMetricData(_ context.Context, params *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	m.calls = append(m.calls, params)
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func TestCloudWatchMetrics_Count(t *testing.T) {
	cw := &mockCloudWatchClient{}
	m := NewCloudWatchMetrics(cw, "", nil)

	m.Count(context.Background(), types.MetricActionApplied, map[string]string{
		types.DimPlan:       "builder",
		types.DimActionType: "toggle_add_on",
	})

	require.Len(t, cw.calls, 1)
	input := cw.calls[0]
	assert.Equal(t, types.MetricNamespace, aws.ToString(input.Namespace))
	require.Len(t, input.MetricData, 1)

	datum := input.MetricData[0]
	assert.Equal(t, types.MetricActionApplied, aws.ToString(datum.MetricName))
	assert.Equal(t, 1.0, aws.ToFloat64(datum.Value))
	assert.Equal(t, cwtypes.StandardUnitCount, datum.Unit)

	require.Len(t, datum.Dimensions, 2)
	assert.Equal(t, types.DimActionType, aws.ToString(datum.Dimensions[0].Name))
	assert.Equal(t, types.DimPlan, aws.ToString(datum.Dimensions[1].Name))
	assert.Equal(t, "builder", aws.ToString(datum.Dimensions[1].Value))
}

func TestCloudWatchMetrics_RecordRequest(t *testing.T) {
	cw := &mockCloudWatchClient{}
	m := NewCloudWatchMetrics(cw, "", nil)

	m.RecordRequest("POST", "/v1/wizard/sessions", "201", 42*time.Millisecond)

	require.Len(t, cw.calls, 1)
	data := cw.calls[0].MetricData
	require.Len(t, data, 2)
	assert.Equal(t, types.MetricAPILatency, aws.ToString(data[0].MetricName))
	assert.Equal(t, 42.0, aws.ToFloat64(data[0].Value))
	assert.Equal(t, cwtypes.StandardUnitMilliseconds, data[0].Unit)
	assert.Equal(t, types.MetricAPIRequestCount, aws.ToString(data[1].MetricName))
	assert.Len(t, data[1].Dimensions, 3)
}

func TestCloudWatchMetrics_ErrorIsLogged(t *testing.T) {
	var buf bytes.Buffer
	cw := &mockCloudWatchClient{returnErr: errors.New("throttled")}
	m := NewCloudWatchMetrics(cw, "", slog.New(slog.NewTextHandler(&buf, nil)))

	m.Count(context.Background(), types.MetricDraftCreated, nil)

	assert.Contains(t, buf.String(), "failed to publish metric")
	assert.Contains(t, buf.String(), "throttled")
	assert.Nil(t, cw.calls[0].MetricData[0].Dimensions)
}
