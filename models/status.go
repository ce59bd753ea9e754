package models

// Status is the lifecycle state of an order. Any status may replace any other.
type Status string

const (
	StatusPending       Status = "pending"
	StatusApproved      Status = "approved"
	StatusInPreparation Status = "in_preparation"
	StatusReady         Status = "ready"
	StatusDelivered     Status = "delivered"
	StatusCanceled      Status = "canceled"
)

// Statuses lists every accepted status in display order.
var Statuses = []Status{
	StatusPending,
	StatusApproved,
	StatusInPreparation,
	StatusReady,
	StatusDelivered,
	StatusCanceled,
}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}
