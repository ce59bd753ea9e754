package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/joseguilhermeromano/Pastel360/models"
	awspkg "github.com/joseguilhermeromano/Pastel360/pkg/aws"
	"github.com/joseguilhermeromano/Pastel360/services"
	"go.uber.org/zap"
)

// Queue is the subset of *awspkg.SQSQueue the consumer needs.
type Queue interface {
	URL() string
	Receive(ctx context.Context, max int32) ([]awspkg.Message, error)
	Delete(ctx context.Context, receiptHandle string) error
}

type SQSConsumer struct {
	queue        Queue
	service      services.NotificationService
	logger       *zap.Logger
	errorBackoff time.Duration
}

func NewSQSConsumer(queue Queue, svc services.NotificationService, logger *zap.Logger) *SQSConsumer {
	return &SQSConsumer{
		queue:        queue,
		service:      svc,
		logger:       logger,
		errorBackoff: 5 * time.Second,
	}
}

// Start polls until ctx is cancelled.
func (c *SQSConsumer) Start(ctx context.Context) error {
	c.logger.Info("SQS consumer started", zap.String("queue", c.queue.URL()))
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("SQS consumer shutting down")
			return nil
		default:
			c.poll(ctx)
		}
	}
}

func (c *SQSConsumer) poll(ctx context.Context) {
	messages, err := c.queue.Receive(ctx, 10)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		c.logger.Error("SQS receive error", zap.Error(err))
		select {
		case <-ctx.Done():
		case <-time.After(c.errorBackoff):
		}
		return
	}

	for _, msg := range messages {
		c.processMessage(ctx, msg)
	}
}

// snsEnvelope is the wrapper SNS puts around messages fanned out to SQS.
type snsEnvelope struct {
	Message string `json:"Message"`
}

// decode accepts both SNS-wrapped and raw order_created bodies.
func decode(body string) (*models.OrderCreatedMessage, error) {
	raw := []byte(body)

	var envelope snsEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}
	if envelope.Message != "" {
		raw = []byte(envelope.Message)
	}

	var msg models.OrderCreatedMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *SQSConsumer) processMessage(ctx context.Context, msg awspkg.Message) {
	if msg.ReceiptHandle == "" {
		c.logger.Error("received empty SQS receipt handle")
		return
	}
	if msg.Body == "" {
		c.logger.Error("received empty SQS message body")
		// Don't delete; let it retry / get sent to DLQ if configured.
		return
	}

	payload, err := decode(msg.Body)
	if err != nil {
		c.logger.Error("failed to unmarshal order notification", zap.Error(err))
		c.deleteMessage(ctx, msg.ReceiptHandle) // unparseable, never retry
		return
	}

	if err := c.service.SendOrderCreated(ctx, payload); err != nil {
		if errors.Is(err, services.ErrInvalidMessage) {
			c.logger.Error("dropping invalid order notification", zap.Uint("order_id", payload.OrderID), zap.Error(err))
			c.deleteMessage(ctx, msg.ReceiptHandle)
			return
		}
		c.logger.Error("failed to process order notification",
			zap.Uint("order_id", payload.OrderID),
			zap.Error(err),
		)
		return // SQS will retry after visibility timeout
	}

	c.deleteMessage(ctx, msg.ReceiptHandle)
}

func (c *SQSConsumer) deleteMessage(ctx context.Context, receiptHandle string) {
	if err := c.queue.Delete(ctx, receiptHandle); err != nil {
		c.logger.Error("failed to delete SQS message", zap.Error(err))
	}
}
