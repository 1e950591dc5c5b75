package sqs

import (
	"context"
	"fmt"

	"github.com/bigbinary/pub-sub-with-sqs/pkg/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

const (
	// SQS caps both receive and batch-delete requests at 10 entries.
	MaxReceiveCount = 10
	MaxDeleteBatch  = 10
)

// API is the subset of the SQS client used by this tool.
type API interface {
	GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	DeleteMessageBatch(ctx context.Context, params *sqs.DeleteMessageBatchInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageBatchOutput, error)
}

// DeleteFailure describes one message a batch delete could not remove.
type DeleteFailure struct {
	ID     string
	Reason string
}

// DeleteResult reconciles a batch delete call: ids removed from the queue
// and ids the service reported back as failed.
type DeleteResult struct {
	Successful []string
	Failed     []DeleteFailure
}

// DeleteEntry identifies one received message for deletion.
type DeleteEntry struct {
	ID            string
	ReceiptHandle string
}

// Client wraps the SQS API with the message model used by this tool
type Client struct {
	api API
}

type Options struct {
	Region   string
	Endpoint string
}

// NewClient loads AWS configuration and returns a connected client.
// A non-empty Endpoint overrides the service URL (e.g. for LocalStack).
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	api := sqs.NewFromConfig(cfg, func(o *sqs.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})

	return &Client{api: api}, nil
}

// NewClientWithAPI wires an existing API implementation, used by tests.
func NewClientWithAPI(api API) *Client {
	return &Client{api: api}
}

// ResolveQueueURL looks up the URL for a queue name
func (c *Client) ResolveQueueURL(ctx context.Context, name string) (string, error) {
	out, err := c.api.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{
		QueueName: aws.String(name),
	})
	if err != nil {
		return "", fmt.Errorf("failed to resolve queue %q: %w", name, err)
	}
	return aws.ToString(out.QueueUrl), nil
}

// Receive issues one long-poll receive for up to max messages. max is
// clamped to the service limit; waitSeconds controls the long poll.
func (c *Client) Receive(ctx context.Context, queueURL string, max, waitSeconds int) ([]models.Message, error) {
	if max > MaxReceiveCount {
		max = MaxReceiveCount
	}
	if max < 1 {
		max = 1
	}

	out, err := c.api.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(queueURL),
		MaxNumberOfMessages:   int32(max),
		WaitTimeSeconds:       int32(waitSeconds),
		MessageAttributeNames: []string{"All"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to receive messages: %w", err)
	}

	messages := make([]models.Message, len(out.Messages))
	for i, msg := range out.Messages {
		messages[i] = models.Message{
			ID:            aws.ToString(msg.MessageId),
			Body:          aws.ToString(msg.Body),
			Attributes:    fromMessageAttributes(msg.MessageAttributes),
			ReceiptHandle: aws.ToString(msg.ReceiptHandle),
		}
	}
	return messages, nil
}

// Send publishes a single message and returns the service-assigned id.
// A response without an id is treated as a failure.
func (c *Client) Send(ctx context.Context, queueURL, body string, attrs map[string]models.Attribute, delaySeconds int) (string, error) {
	out, err := c.api.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(queueURL),
		MessageBody:       aws.String(body),
		MessageAttributes: toMessageAttributes(attrs),
		DelaySeconds:      int32(delaySeconds),
	})
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}

	id := aws.ToString(out.MessageId)
	if id == "" {
		return "", fmt.Errorf("send to %s returned no message id", queueURL)
	}
	return id, nil
}

// DeleteBatch removes up to MaxDeleteBatch messages in one call and
// reports per-entry success and failure as returned by the service.
func (c *Client) DeleteBatch(ctx context.Context, queueURL string, entries []DeleteEntry) (DeleteResult, error) {
	batch := make([]types.DeleteMessageBatchRequestEntry, len(entries))
	for i, e := range entries {
		batch[i] = types.DeleteMessageBatchRequestEntry{
			Id:            aws.String(e.ID),
			ReceiptHandle: aws.String(e.ReceiptHandle),
		}
	}

	out, err := c.api.DeleteMessageBatch(ctx, &sqs.DeleteMessageBatchInput{
		QueueUrl: aws.String(queueURL),
		Entries:  batch,
	})
	if err != nil {
		return DeleteResult{}, fmt.Errorf("failed to delete message batch: %w", err)
	}

	result := DeleteResult{}
	for _, s := range out.Successful {
		result.Successful = append(result.Successful, aws.ToString(s.Id))
	}
	for _, f := range out.Failed {
		result.Failed = append(result.Failed, DeleteFailure{
			ID:     aws.ToString(f.Id),
			Reason: aws.ToString(f.Message),
		})
	}
	return result, nil
}

func toMessageAttributes(attrs map[string]models.Attribute) map[string]types.MessageAttributeValue {
	if len(attrs) == 0 {
		return nil
	}
	result := make(map[string]types.MessageAttributeValue, len(attrs))
	for name, attr := range attrs {
		result[name] = types.MessageAttributeValue{
			DataType:    aws.String(attr.DataType),
			StringValue: aws.String(attr.StringValue),
		}
	}
	return result
}

func fromMessageAttributes(attrs map[string]types.MessageAttributeValue) map[string]models.Attribute {
	if len(attrs) == 0 {
		return nil
	}
	result := make(map[string]models.Attribute, len(attrs))
	for name, attr := range attrs {
		result[name] = models.Attribute{
			DataType:    aws.ToString(attr.DataType),
			StringValue: aws.ToString(attr.StringValue),
		}
	}
	return result
}
