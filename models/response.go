package models

import "time"

type CustomerSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Mail string `json:"mail"`
}

type ProductSummary struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type OrderItemResponse struct {
	ID         uint            `json:"id"`
	OrderID    uint            `json:"order_id"`
	ProductID  uint            `json:"product_id"`
	Quantity   int             `json:"quantity"`
	UnitValue  string          `json:"unit_value"`
	TotalValue string          `json:"total_value"`
	Product    *ProductSummary `json:"product"`
}

// OrderResponse is the hydrated order as rendered to clients.
type OrderResponse struct {
	ID          uint                `json:"id"`
	CustomerID  uint                `json:"customer_id"`
	Status      Status              `json:"status"`
	TotalAmount string              `json:"total_amount"`
	Notes       *string             `json:"notes"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Customer    *CustomerSummary    `json:"customer"`
	Items       []OrderItemResponse `json:"items"`
}

func NewOrderItemResponse(it *OrderItem) OrderItemResponse {
	r := OrderItemResponse{
		ID:         it.ID,
		OrderID:    it.OrderID,
		ProductID:  it.ProductID,
		Quantity:   it.Quantity,
		UnitValue:  it.UnitValue.StringFixed(MoneyPlaces),
		TotalValue: it.TotalValue.StringFixed(MoneyPlaces),
	}
	if it.Product != nil {
		r.Product = &ProductSummary{ID: it.Product.ID, Name: it.Product.Name, Description: it.Product.Description}
	}
	return r
}

func NewOrderResponse(o *Order) OrderResponse {
	r := OrderResponse{
		ID:          o.ID,
		CustomerID:  o.CustomerID,
		Status:      o.Status,
		TotalAmount: o.TotalAmount.StringFixed(MoneyPlaces),
		Notes:       o.Notes,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		Items:       make([]OrderItemResponse, 0, len(o.Items)),
	}
	if o.Customer != nil {
		r.Customer = &CustomerSummary{ID: o.Customer.ID, Name: o.Customer.Name, Mail: o.Customer.Mail}
	}
	for i := range o.Items {
		r.Items = append(r.Items, NewOrderItemResponse(&o.Items[i]))
	}
	return r
}

func NewOrderResponses(orders []Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderResponse(&orders[i]))
	}
	return out
}

// ProductResponse renders price as a fixed two-decimal string.
type ProductResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Photo       string    `json:"photo"`
	Stock       int       `json:"stock"`
	SKU         string    `json:"sku"`
	Enable      bool      `json:"enable"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewProductResponse(p *Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(MoneyPlaces),
		Photo:       p.Photo,
		Stock:       p.Stock,
		SKU:         p.SKU,
		Enable:      p.Enable,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func NewProductResponses(products []Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, NewProductResponse(&products[i]))
	}
	return out
}
