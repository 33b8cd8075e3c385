package core

import "canteen/internal/domain/models"

type transitionKey struct {
	from models.OrderStatus
	to   models.OrderStatus
}

// anyType marks a transition valid for both order types.
const anyType = models.OrderType("")

var transitions = map[transitionKey]models.OrderType{
	{models.StatusPlaced, models.StatusPreparing}:         anyType,
	{models.StatusPreparing, models.StatusReady}:          anyType,
	{models.StatusReady, models.StatusOutForDelivery}:     models.TypeDelivery,
	{models.StatusReady, models.StatusCompleted}:          models.TypeDineIn,
	{models.StatusOutForDelivery, models.StatusDelivered}: models.TypeDelivery,
}

// CanTransition reports whether an order of the given type may move from one
// status to another. Rejection is not part of the table; it goes through the
// dedicated rejection path.
func CanTransition(from, to models.OrderStatus, orderType models.OrderType) bool {
	required, ok := transitions[transitionKey{from, to}]
	if !ok {
		return false
	}
	return required == anyType || required == orderType
}
