package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/joseguilhermeromano/Pastel360/models"
	awspkg "github.com/joseguilhermeromano/Pastel360/pkg/aws"
	"go.uber.org/zap"
)

// ErrNoRecipient is returned when the order's customer has no mail address.
var ErrNoRecipient = errors.New("notification recipient is empty")

// Dispatcher hands a created order to the asynchronous notification channel.
// Enqueue must not block on delivery.
type Dispatcher interface {
	Enqueue(ctx context.Context, recipient string, order *models.Order) error
}

// Publisher writes one encoded message to a transport.
type Publisher interface {
	Publish(ctx context.Context, message []byte) error
}

// QueueDispatcher serializes an OrderCreatedMessage and publishes it.
type QueueDispatcher struct {
	publisher Publisher
	logger    *zap.Logger
}

func NewQueueDispatcher(publisher Publisher, logger *zap.Logger) *QueueDispatcher {
	return &QueueDispatcher{publisher: publisher, logger: logger}
}

func (d *QueueDispatcher) Enqueue(ctx context.Context, recipient string, order *models.Order) error {
	if recipient == "" {
		return ErrNoRecipient
	}
	body, err := json.Marshal(models.NewOrderCreatedMessage(recipient, order))
	if err != nil {
		return fmt.Errorf("failed to encode order notification: %w", err)
	}
	if err := d.publisher.Publish(ctx, body); err != nil {
		return err
	}
	d.logger.Info("Order notification queued", zap.Uint("order_id", order.ID), zap.String("recipient", recipient))
	return nil
}

// SQSPublisher sends messages straight to the notification queue.
type SQSPublisher struct {
	queue *awspkg.SQSQueue
}

func NewSQSPublisher(queue *awspkg.SQSQueue) *SQSPublisher {
	return &SQSPublisher{queue: queue}
}

func (p *SQSPublisher) Publish(ctx context.Context, message []byte) error {
	_, err := p.queue.SendMessage(ctx, string(message))
	return err
}

// SNSPublisher publishes to a topic that fans out to the notification queue.
type SNSPublisher struct {
	client   awspkg.SNSPublisher
	topicArn string
}

func NewSNSPublisher(client awspkg.SNSPublisher, topicArn string) *SNSPublisher {
	return &SNSPublisher{client: client, topicArn: topicArn}
}

func (p *SNSPublisher) Publish(ctx context.Context, message []byte) error {
	return p.client.Publish(ctx, p.topicArn, message)
}

// Disabled drops every notification. Used when no queue is configured.
type Disabled struct {
	Logger *zap.Logger
}

func (d Disabled) Enqueue(_ context.Context, recipient string, order *models.Order) error {
	if d.Logger != nil {
		d.Logger.Debug("Order notification skipped, no queue configured",
			zap.Uint("order_id", order.ID), zap.String("recipient", recipient))
	}
	return nil
}
