package notification_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/joseguilhermeromano/Pastel360/models"
	"github.com/joseguilhermeromano/Pastel360/notification"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	messages [][]byte
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, message []byte) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, message)
	return nil
}

type recordingSNS struct {
	topic   string
	message []byte
}

func (s *recordingSNS) Publish(_ context.Context, topicArn string, message []byte) error {
	s.topic = topicArn
	s.message = message
	return nil
}

func sampleOrder() *models.Order {
	return &models.Order{
		ID:          11,
		TotalAmount: decimal.RequireFromString("24.50"),
		Customer:    &models.Customer{Name: "Ana", Mail: "ana@example.com"},
		Items: []models.OrderItem{
			{Quantity: 2, UnitValue: decimal.RequireFromString("8.50"), TotalValue: decimal.RequireFromString("17.00"),
				Product: &models.Product{Name: "Pastel de carne"}},
		},
	}
}

func TestQueueDispatcher_PublishesOrderCreated(t *testing.T) {
	pub := &recordingPublisher{}
	d := notification.NewQueueDispatcher(pub, zap.NewNop())

	require.NoError(t, d.Enqueue(context.Background(), "ana@example.com", sampleOrder()))
	require.Len(t, pub.messages, 1)

	var msg models.OrderCreatedMessage
	require.NoError(t, json.Unmarshal(pub.messages[0], &msg))
	assert.Equal(t, models.EventOrderCreated, msg.EventType)
	assert.Equal(t, uint(11), msg.OrderID)
	assert.Equal(t, "ana@example.com", msg.Recipient)
	assert.Equal(t, "24.5", msg.TotalAmount.String())
	require.Len(t, msg.Items, 1)
	assert.Equal(t, "Pastel de carne", msg.Items[0].ProductName)
}

func TestQueueDispatcher_PropagatesTransportError(t *testing.T) {
	boom := errors.New("queue unavailable")
	d := notification.NewQueueDispatcher(&recordingPublisher{err: boom}, zap.NewNop())

	err := d.Enqueue(context.Background(), "ana@example.com", sampleOrder())
	assert.ErrorIs(t, err, boom)
}

func TestQueueDispatcher_RequiresRecipient(t *testing.T) {
	pub := &recordingPublisher{}
	d := notification.NewQueueDispatcher(pub, zap.NewNop())

	err := d.Enqueue(context.Background(), "", sampleOrder())
	assert.ErrorIs(t, err, notification.ErrNoRecipient)
	assert.Empty(t, pub.messages)
}

func TestSNSPublisher_UsesConfiguredTopic(t *testing.T) {
	sns := &recordingSNS{}
	p := notification.NewSNSPublisher(sns, "arn:aws:sns:us-east-1:000000000000:order-events")

	require.NoError(t, p.Publish(context.Background(), []byte(`{"order_id":1}`)))
	assert.Equal(t, "arn:aws:sns:us-east-1:000000000000:order-events", sns.topic)
	assert.JSONEq(t, `{"order_id":1}`, string(sns.message))
}

func TestDisabled_IsSilent(t *testing.T) {
	var d notification.Dispatcher = notification.Disabled{Logger: zap.NewNop()}
	assert.NoError(t, d.Enqueue(context.Background(), "ana@example.com", sampleOrder()))
}
