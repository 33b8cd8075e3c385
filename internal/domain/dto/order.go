package dto

import (
	"time"

	"canteen/internal/domain/models"
)

type OrderItemRequest struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

type PlaceOrderRequest struct {
	ShopID          string             `json:"shopId"`
	Items           []OrderItemRequest `json:"items"`
	OrderType       models.OrderType   `json:"orderType"`
	DeliverySlot    string             `json:"deliverySlot,omitempty"`
	DeliveryAddress string             `json:"deliveryAddress,omitempty"`
}

// OrderSummary is returned on successful placement.
type OrderSummary struct {
	ID          string             `json:"id"`
	TokenNumber string             `json:"tokenNumber"`
	TotalAmount float64            `json:"totalAmount"`
	Status      models.OrderStatus `json:"status"`
	CreatedAt   time.Time          `json:"createdAt"`
}

type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

type RejectOrderRequest struct {
	Reason string `json:"reason"`
}

// OrderStateView is returned by status and rejection updates.
type OrderStateView struct {
	ID              string               `json:"id"`
	Status          models.OrderStatus   `json:"status"`
	RejectionReason string               `json:"rejectionReason,omitempty"`
	PaymentStatus   models.PaymentStatus `json:"paymentStatus"`
}

// OrderFilter narrows admin order listings. Date filters on the order's
// creation day, formatted YYYY-MM-DD.
type OrderFilter struct {
	ShopID string
	Status models.OrderStatus
	Date   string
}
