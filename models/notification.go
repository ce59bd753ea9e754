package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ChannelEmail = "email"

	NotificationSent   = "sent"
	NotificationFailed = "failed"

	EventOrderCreated = "order_created"
)

// NotificationLog records one delivery attempt series for a message.
type NotificationLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	OrderID   uint      `json:"order_id" gorm:"index"`
	EventType string    `json:"event_type" gorm:"type:varchar(50)"`
	Recipient string    `json:"recipient" gorm:"type:varchar(255)"`
	Channel   string    `json:"channel" gorm:"type:varchar(20)"`
	Status    string    `json:"status" gorm:"type:varchar(20);index"`
	Error     string    `json:"error,omitempty" gorm:"type:text"`
	Attempts  int       `json:"attempts"`
	MessageID string    `json:"message_id,omitempty" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// NotificationFilter narrows a log listing.
type NotificationFilter struct {
	OrderID  uint
	Status   string
	Page     int
	PageSize int
}

type OrderCreatedItem struct {
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitValue   decimal.Decimal `json:"unit_value"`
	TotalValue  decimal.Decimal `json:"total_value"`
}

// OrderCreatedMessage is the queued confirmation payload. It is built from the
// hydrated order so the worker never re-reads the database.
type OrderCreatedMessage struct {
	EventType    string             `json:"event_type"`
	OrderID      uint               `json:"order_id"`
	Recipient    string             `json:"recipient"`
	CustomerName string             `json:"customer_name"`
	Items        []OrderCreatedItem `json:"items"`
	TotalAmount  decimal.Decimal    `json:"total_amount"`
	CreatedAt    time.Time          `json:"created_at"`
}

func NewOrderCreatedMessage(recipient string, o *Order) OrderCreatedMessage {
	msg := OrderCreatedMessage{
		EventType:   EventOrderCreated,
		OrderID:     o.ID,
		Recipient:   recipient,
		TotalAmount: o.TotalAmount,
		CreatedAt:   o.CreatedAt,
		Items:       make([]OrderCreatedItem, 0, len(o.Items)),
	}
	if o.Customer != nil {
		msg.CustomerName = o.Customer.Name
	}
	for _, it := range o.Items {
		name := ""
		if it.Product != nil {
			name = it.Product.Name
		}
		msg.Items = append(msg.Items, OrderCreatedItem{
			ProductName: name,
			Quantity:    it.Quantity,
			UnitValue:   it.UnitValue,
			TotalValue:  it.TotalValue,
		})
	}
	return msg
}
