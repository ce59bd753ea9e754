package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// SQSAPI is the subset of the SQS client used by the queue helpers.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Message is a received queue message.
type Message struct {
	Body          string
	ReceiptHandle string
}

// SQSQueue wraps a single queue URL.
type SQSQueue struct {
	client   SQSAPI
	queueURL string
	waitSecs int32
}

// NewSQSQueue creates a queue handle from an AWS config.
func NewSQSQueue(cfg sdkaws.Config, queueURL string) *SQSQueue {
	return NewSQSQueueWithClient(sqs.NewFromConfig(cfg), queueURL)
}

// NewSQSQueueWithClient creates a queue handle over an existing client.
func NewSQSQueueWithClient(client SQSAPI, queueURL string) *SQSQueue {
	return &SQSQueue{client: client, queueURL: queueURL, waitSecs: 20}
}

// URL returns the queue URL.
func (q *SQSQueue) URL() string {
	return q.queueURL
}

// SendMessage sends a single message to the queue.
func (q *SQSQueue) SendMessage(ctx context.Context, body string) (string, error) {
	out, err := q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    &q.queueURL,
		MessageBody: &body,
	})
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}
	return sdkaws.ToString(out.MessageId), nil
}

// Receive long-polls the queue for up to max messages.
func (q *SQSQueue) Receive(ctx context.Context, max int32) ([]Message, error) {
	out, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            &q.queueURL,
		MaxNumberOfMessages: max,
		WaitTimeSeconds:     q.waitSecs,
		VisibilityTimeout:   30,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to receive messages: %w", err)
	}

	msgs := make([]Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		msgs = append(msgs, Message{
			Body:          sdkaws.ToString(m.Body),
			ReceiptHandle: sdkaws.ToString(m.ReceiptHandle),
		})
	}
	return msgs, nil
}

// Delete removes a processed message.
func (q *SQSQueue) Delete(ctx context.Context, receiptHandle string) error {
	if _, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      &q.queueURL,
		ReceiptHandle: &receiptHandle,
	}); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}
