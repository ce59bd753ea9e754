package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is the aggregate root. TotalAmount always equals the sum of the line
// totals of its live items once a repository write returns.
type Order struct {
	ID          uint            `gorm:"primaryKey"`
	CustomerID  uint            `gorm:"not null;index"`
	Status      Status          `gorm:"type:varchar(20);not null;default:pending;index"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Notes       *string         `gorm:"type:text"`
	CreatedAt   time.Time       `gorm:"index"`
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`

	Customer *Customer  `gorm:"foreignKey:CustomerID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Items    []OrderItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	ID         uint            `gorm:"primaryKey"`
	OrderID    uint            `gorm:"not null;index"`
	ProductID  uint            `gorm:"not null;index"`
	Quantity   int             `gorm:"not null"`
	UnitValue  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	TotalValue decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// NewOrderItem builds a line for orderID with its total derived.
func NewOrderItem(orderID uint, spec ItemSpec) OrderItem {
	unit := RoundMoney(spec.UnitValue)
	return OrderItem{
		OrderID:    orderID,
		ProductID:  spec.ProductID,
		Quantity:   spec.Quantity,
		UnitValue:  unit,
		TotalValue: LineTotal(spec.Quantity, unit),
	}
}

// ApplyPatch copies the supplied fields onto the item and returns the columns
// to persist. TotalValue is re-derived only when quantity or unit value changed.
func (it *OrderItem) ApplyPatch(p ItemPatch) map[string]any {
	cols := map[string]any{}
	if p.ProductID != nil {
		it.ProductID = *p.ProductID
		cols["product_id"] = it.ProductID
	}
	priced := false
	if p.Quantity != nil {
		it.Quantity = *p.Quantity
		cols["quantity"] = it.Quantity
		priced = true
	}
	if p.UnitValue != nil {
		it.UnitValue = RoundMoney(*p.UnitValue)
		cols["unit_value"] = it.UnitValue
		priced = true
	}
	if priced {
		it.TotalValue = LineTotal(it.Quantity, it.UnitValue)
		cols["total_value"] = it.TotalValue
	}
	return cols
}
