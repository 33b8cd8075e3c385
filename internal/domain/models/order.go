package models

import "time"

type OrderStatus string

const (
	StatusPlaced         OrderStatus = "PLACED"
	StatusPreparing      OrderStatus = "PREPARING"
	StatusReady          OrderStatus = "READY"
	StatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusCompleted      OrderStatus = "COMPLETED"
	StatusRejected       OrderStatus = "REJECTED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPlaced, StatusPreparing, StatusReady, StatusOutForDelivery,
		StatusDelivered, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

type OrderType string

const (
	TypeDineIn   OrderType = "DINE_IN"
	TypeDelivery OrderType = "DELIVERY"
)

func (t OrderType) Valid() bool {
	return t == TypeDineIn || t == TypeDelivery
}

type PaymentStatus string

const (
	PaymentNotRequired   PaymentStatus = "NOT_REQUIRED"
	PaymentSimulatedPaid PaymentStatus = "SIMULATED_PAID"
	PaymentPaid          PaymentStatus = "PAID"
	PaymentRefunded      PaymentStatus = "REFUNDED"
)

// OrderItem is a snapshot of a catalog item taken at order time. It is never
// reconciled with later catalog edits; orders are historical receipts.
type OrderItem struct {
	ItemID   string  `json:"itemId"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type Order struct {
	ID              string        `json:"id"`
	TokenNumber     string        `json:"tokenNumber"`
	UserID          string        `json:"userId"`
	UserName        string        `json:"userName"`
	ShopID          string        `json:"shopId"`
	ShopName        string        `json:"shopName"`
	OrderType       OrderType     `json:"orderType"`
	DeliverySlot    string        `json:"deliverySlot,omitempty"`
	DeliveryAddress string        `json:"deliveryAddress,omitempty"`
	Items           []OrderItem   `json:"items"`
	TotalAmount     float64       `json:"totalAmount"`
	Status          OrderStatus   `json:"status"`
	PaymentStatus   PaymentStatus `json:"paymentStatus"`
	RejectionReason string        `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// OrderEvent is published to the message broker on every lifecycle change.
type OrderEvent struct {
	OrderID       string        `json:"order_id"`
	TokenNumber   string        `json:"token_number"`
	ShopID        string        `json:"shop_id"`
	Status        OrderStatus   `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Timestamp     time.Time     `json:"timestamp"`
}
