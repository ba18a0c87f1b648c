package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// BookingMessage is the payload sent from API -> SQS -> Worker.
type BookingMessage struct {
	BookingID      string `json:"booking_id"`
	IdempotencyKey string `json:"idempotency_key"`
	CorrelationID  string `json:"correlation_id,omitempty"`
}

// attributes mirrors the message fields as SQS attributes; empty ones are left out.
func (m BookingMessage) attributes() map[string]sqstypes.MessageAttributeValue {
	out := map[string]sqstypes.MessageAttributeValue{}
	for k, v := range map[string]string{
		"booking_id":      m.BookingID,
		"idempotency_key": m.IdempotencyKey,
		"correlation_id":  m.CorrelationID,
	} {
		if v == "" {
			continue
		}
		out[k] = sqstypes.MessageAttributeValue{
			DataType:    awsString("String"),
			StringValue: awsString(v),
		}
	}
	return out
}

// Publisher wraps an SQS client and a queue URL.
type Publisher struct {
	SQS      SQSAPI
	QueueURL string
}

// NewPublisher returns a Publisher bound to a queue URL.
func NewPublisher(sqsClient SQSAPI, queueURL string) *Publisher {
	return &Publisher{
		SQS:      sqsClient,
		QueueURL: queueURL,
	}
}

// fifo reports whether the queue is a FIFO queue, which needs a group id.
func (p *Publisher) fifo() bool {
	return strings.HasSuffix(p.QueueURL, ".fifo")
}

// PublishBooking enqueues a booking for the confirmation worker. On a FIFO
// queue messages are grouped and deduplicated by booking id.
func (p *Publisher) PublishBooking(ctx context.Context, msg BookingMessage) error {
	if msg.BookingID == "" {
		return fmt.Errorf("publish booking: empty booking_id")
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal booking message: %w", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:          &p.QueueURL,
		MessageBody:       awsString(string(body)),
		MessageAttributes: msg.attributes(),
	}
	if p.fifo() {
		input.MessageGroupId = awsString(msg.BookingID)
		input.MessageDeduplicationId = awsString(msg.BookingID)
	}

	if _, err := p.SQS.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func awsString(s string) *string { return &s }
