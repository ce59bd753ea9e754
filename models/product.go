package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a sellable item. Orders reference it by id.
type Product struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"type:varchar(255);not null"`
	Description string          `json:"description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Photo       string          `json:"photo" gorm:"type:varchar(255)"`
	Stock       int             `json:"stock" gorm:"not null;default:0"`
	SKU         string          `json:"sku" gorm:"type:varchar(255);uniqueIndex"`
	Enable      bool            `json:"enable" gorm:"not null"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `json:"-" gorm:"index"`
}

// ProductInput carries validated product fields from the multipart form.
// Nil fields are left untouched on update.
type ProductInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	Enable      *bool
}

// MissingForCreate names the fields a new product must carry.
func (in *ProductInput) MissingForCreate() []string {
	var missing []string
	if in.Name == nil || *in.Name == "" {
		missing = append(missing, "name")
	}
	if in.Description == nil || *in.Description == "" {
		missing = append(missing, "description")
	}
	if in.Price == nil {
		missing = append(missing, "price")
	}
	if in.Stock == nil {
		missing = append(missing, "stock")
	}
	return missing
}

// Apply copies the supplied fields onto p.
func (in *ProductInput) Apply(p *Product) {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = RoundMoney(*in.Price)
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Enable != nil {
		p.Enable = *in.Enable
	}
}
