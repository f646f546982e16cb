package queue

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"gostjobs/internal/logging"
	"gostjobs/internal/services"
)

// API is the subset of the SQS client used by Client.
type API interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Message is a received SQS message.
type Message struct {
	ID            string
	ReceiptHandle string
	Body          string
	ReceiveCount  int
}

// Client polls a single queue.
type Client struct {
	api    API
	url    string
	wait   time.Duration
	logger *slog.Logger
}

// New returns a Client for the queue at url.
func New(api API, url string, wait time.Duration, logger *slog.Logger) *Client {
	return &Client{
		api:    api,
		url:    url,
		wait:   wait,
		logger: logging.NewComponentLogger(logger, "queue"),
	}
}

// NewFromConfig builds the SQS client from cfg.
func NewFromConfig(cfg aws.Config, url string, wait time.Duration, logger *slog.Logger) *Client {
	return New(sqs.NewFromConfig(cfg), url, wait, logger)
}

// Receive long-polls for at most one message. It returns nil, nil when the
// batch is empty.
func (c *Client) Receive(ctx context.Context) (*Message, error) {
	logger := logging.WithContext(ctx, c.logger)
	logger.Debug("long-polling next message batch", logging.Duration("wait", c.wait))

	out, err := c.api.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:                    aws.String(c.url),
		MaxNumberOfMessages:         1,
		WaitTimeSeconds:             int32(c.wait / time.Second),
		MessageSystemAttributeNames: []types.MessageSystemAttributeName{types.MessageSystemAttributeNameApproximateReceiveCount},
	})
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "queue", "receive", c.url, err)
	}
	if len(out.Messages) == 0 {
		logger.Debug("empty message batch received")
		return nil, nil
	}

	raw := out.Messages[0]
	msg := &Message{
		ID:            aws.ToString(raw.MessageId),
		ReceiptHandle: aws.ToString(raw.ReceiptHandle),
		Body:          aws.ToString(raw.Body),
	}
	if count, ok := raw.Attributes[string(types.MessageSystemAttributeNameApproximateReceiveCount)]; ok {
		msg.ReceiveCount, _ = strconv.Atoi(count)
	}
	return msg, nil
}

// Delete removes a processed message.
func (c *Client) Delete(ctx context.Context, receiptHandle string) error {
	_, err := c.api.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.url),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return services.Wrap(services.ErrTransport, "queue", "delete", c.url, err)
	}
	return nil
}
