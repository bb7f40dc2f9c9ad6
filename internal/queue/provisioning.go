// Package queue publishes site provisioning work to SQS and decodes it on the
// consumer side.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqsTypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"sitewizard/internal/types"
)

// SQSSender abstracts SendMessage for testability. Production code passes an
// *sqs.Client.
type SQSSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// ProvisioningPublisher sends one SiteProvisioningMessage per created draft.
type ProvisioningPublisher struct {
	client   SQSSender
	queueURL string
	logger   *slog.Logger
}

// NewProvisioningPublisher returns a publisher for queueURL.
func NewProvisioningPublisher(client SQSSender, queueURL string, logger *slog.Logger) *ProvisioningPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProvisioningPublisher{client: client, queueURL: queueURL, logger: logger}
}

// PublishProvisioning enqueues msg. The plan and draft id are duplicated into
// message attributes so consumers can filter without decoding the body.
func (p *ProvisioningPublisher) PublishProvisioning(ctx context.Context, msg types.SiteProvisioningMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("queue: failed to marshal provisioning message: %w", err)
	}

	attrs := map[string]sqsTypes.MessageAttributeValue{
		"draft_id": {DataType: aws.String("String"), StringValue: aws.String(msg.DraftID)},
		"plan":     {DataType: aws.String("String"), StringValue: aws.String(string(msg.Plan))},
	}
	if msg.TraceID != "" {
		attrs["trace_id"] = sqsTypes.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(msg.TraceID)}
	}

	out, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(p.queueURL),
		MessageBody:       aws.String(string(body)),
		MessageAttributes: attrs,
	})
	if err != nil {
		return types.NewAppError(types.ErrCodeUpstreamQueue, "failed to queue site provisioning", err)
	}

	p.logger.InfoContext(ctx, "provisioning message sent",
		"queue_url", p.queueURL,
		"sqs_message_id", aws.ToString(out.MessageId),
		"message_id", msg.MessageID,
		"draft_id", msg.DraftID,
		"subdomain", msg.Subdomain,
	)
	return nil
}

// DecodeProvisioningMessage parses an SQS body produced by
// PublishProvisioning.
func DecodeProvisioningMessage(body string) (types.SiteProvisioningMessage, error) {
	var msg types.SiteProvisioningMessage
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		return msg, fmt.Errorf("queue: malformed provisioning message: %w", err)
	}
	if msg.DraftID == "" {
		return msg, errors.New("queue: provisioning message has no draft_id")
	}
	return msg, nil
}
