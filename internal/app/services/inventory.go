package services

import (
	"fmt"

	"canteen/internal/app/core"
	"canteen/internal/domain/dto"
	"canteen/internal/domain/models"
)

// Reservation is the result of a successful stock reservation. UpdatedCatalog
// is a fresh copy of the full catalog with every referenced item decremented;
// the input snapshot is never mutated.
type Reservation struct {
	TotalAmount    float64
	LineItems      []models.OrderItem
	UpdatedCatalog []models.Item
}

// Reserve validates the requested lines against a catalog snapshot, in input
// order, and computes the decremented catalog. It fails entirely on the first
// bad line; no partial reservation. The caller persists UpdatedCatalog before
// the order so a crash between the two under-promises stock instead of
// double-selling it.
func Reserve(shopID string, requests []dto.OrderItemRequest, catalog []models.Item) (Reservation, error) {
	updated := make([]models.Item, len(catalog))
	copy(updated, catalog)

	byID := make(map[string]int, len(updated))
	for i, item := range updated {
		byID[item.ID] = i
	}

	res := Reservation{}
	for _, req := range requests {
		if req.Quantity <= 0 {
			return Reservation{}, fmt.Errorf("%w: quantity for item %s must be positive", core.ErrValidation, req.ItemID)
		}
		idx, ok := byID[req.ItemID]
		if !ok {
			return Reservation{}, fmt.Errorf("%w: item %s", core.ErrItemNotFound, req.ItemID)
		}
		item := &updated[idx]
		if item.ShopID != shopID {
			return Reservation{}, fmt.Errorf("%w: item %q", core.ErrCrossShopItem, item.Name)
		}
		if !item.IsAvailable || item.Quantity < req.Quantity {
			return Reservation{}, fmt.Errorf("%w: item %q is out of stock or insufficient quantity", core.ErrInsufficientStock, item.Name)
		}

		res.TotalAmount += item.Price * float64(req.Quantity)
		res.LineItems = append(res.LineItems, models.OrderItem{
			ItemID:   item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: req.Quantity,
		})

		item.Quantity -= req.Quantity
		item.IsAvailable = item.Quantity > 0
	}

	res.UpdatedCatalog = updated
	return res, nil
}
