package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitewizard/internal/types"
)

// mockSQSSender captures SendMessage calls.
type mockSQSSender struct {
	calls []*sqs.SendMessageInput
	err   error
}

func (m *mockSQSSender) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	m.calls = append(m.calls, params)
	if m.err != nil {
		return nil, m.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("sqs-1")}, nil
}

const testQueueURL = "https://sqs.us-east-1.amazonaws.com/123456789/site-provisioning"

func sampleMessage() types.SiteProvisioningMessage {
	return types.SiteProvisioningMessage{
		MessageID: "msg-1",
		DraftID:   "site_1",
		Subdomain: "acme",
		Plan:      types.PlanBuilder,
		TraceID:   "req-1",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPublishProvisioning(t *testing.T) {
	mock := &mockSQSSender{}
	pub := NewProvisioningPublisher(mock, testQueueURL, nil)

	require.NoError(t, pub.PublishProvisioning(context.Background(), sampleMessage()))
	require.Len(t, mock.calls, 1)

	in := mock.calls[0]
	assert.Equal(t, testQueueURL, aws.ToString(in.QueueUrl))
	assert.Equal(t, "site_1", aws.ToString(in.MessageAttributes["draft_id"].StringValue))
	assert.Equal(t, "builder", aws.ToString(in.MessageAttributes["plan"].StringValue))
	assert.Equal(t, "req-1", aws.ToString(in.MessageAttributes["trace_id"].StringValue))

	var body types.SiteProvisioningMessage
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(in.MessageBody)), &body))
	assert.Equal(t, sampleMessage(), body)
}

func TestPublishProvisioning_OmitsEmptyTrace(t *testing.T) {
	mock := &mockSQSSender{}
	msg := sampleMessage()
	msg.TraceID = ""

	require.NoError(t, NewProvisioningPublisher(mock, testQueueURL, nil).PublishProvisioning(context.Background(), msg))
	assert.NotContains(t, mock.calls[0].MessageAttributes, "trace_id")
}

func TestPublishProvisioning_SQSError(t *testing.T) {
	mock := &mockSQSSender{err: errors.New("throttled")}

	err := NewProvisioningPublisher(mock, testQueueURL, nil).PublishProvisioning(context.Background(), sampleMessage())
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeUpstreamQueue, appErr.Code)
}

func TestDecodeProvisioningMessage(t *testing.T) {
	b, _ := json.Marshal(sampleMessage())
	msg, err := DecodeProvisioningMessage(string(b))
	require.NoError(t, err)
	assert.Equal(t, sampleMessage(), msg)

	_, err = DecodeProvisioningMessage("{")
	assert.Error(t, err)

	_, err = DecodeProvisioningMessage(`{"subdomain":"acme"}`)
	assert.Error(t, err)
}
