package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"canteen/internal/adapter/store"
	"canteen/internal/app/core"
	"canteen/internal/domain/dto"
	"canteen/internal/domain/models"
	"canteen/internal/xpkg/logger"
)

type OrderService struct {
	st     *store.Store
	events core.EventPublisher
	mylog  logger.Logger
	now    func() time.Time
}

func NewOrderService(st *store.Store, events core.EventPublisher, mylog logger.Logger) *OrderService {
	return &OrderService{
		st:     st,
		events: events,
		mylog:  mylog,
		now:    time.Now,
	}
}

// Place validates and persists a new order: shop open check, delivery slot
// and address checks, stock reservation, token generation. Token scan, stock
// write and order append share one store update, so tokens stay unique and
// stock cannot be double-sold by concurrent placements.
func (o *OrderService) Place(ctx context.Context, user models.User, req dto.PlaceOrderRequest) (dto.OrderSummary, error) {
	mylog := o.mylog.Action("place_order")

	if req.ShopID == "" || len(req.Items) == 0 || !req.OrderType.Valid() {
		return dto.OrderSummary{}, core.ErrValidation
	}

	now := o.now()

	var summary dto.OrderSummary
	var event models.OrderEvent
	err := o.st.Update(func(tx store.Tx) error {
		shops, err := store.All[models.Shop](ctx, tx, store.Shops)
		if err != nil {
			return err
		}
		shop, ok := findShop(shops, req.ShopID)
		if !ok {
			return core.ErrShopNotFound
		}
		if !shop.IsOpen {
			return fmt.Errorf("%w: %q", core.ErrShopClosed, shop.Name)
		}

		// Delivery fields are checked only after the shop itself: a bad slot
		// against a missing or closed shop reports the shop failure.
		if req.OrderType == models.TypeDelivery {
			if err := validateDeliverySlot(req.DeliverySlot, now); err != nil {
				return err
			}
			if strings.TrimSpace(req.DeliveryAddress) == "" {
				return core.ErrMissingAddress
			}
		}

		catalog, err := store.All[models.Item](ctx, tx, store.Items)
		if err != nil {
			return err
		}
		reservation, err := Reserve(req.ShopID, req.Items, catalog)
		if err != nil {
			return err
		}

		orders, err := store.All[models.Order](ctx, tx, store.Orders)
		if err != nil {
			return err
		}
		token, derived := GenerateToken(shop.Name, now, orders)
		if !derived {
			mylog.Action("token_fallback").Warn("Shop name produced no token prefix, using timestamp token",
				"shop_id", shop.ID, "token", token)
		}

		userName := user.Name
		if userName == "" {
			userName = user.Email
		}
		order := models.Order{
			ID:            store.NewID("order"),
			TokenNumber:   token,
			UserID:        user.ID,
			UserName:      userName,
			ShopID:        shop.ID,
			ShopName:      shop.Name,
			OrderType:     req.OrderType,
			Items:         reservation.LineItems,
			TotalAmount:   reservation.TotalAmount,
			Status:        models.StatusPlaced,
			PaymentStatus: models.PaymentNotRequired,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if req.OrderType == models.TypeDelivery {
			order.DeliverySlot = req.DeliverySlot
			order.DeliveryAddress = strings.TrimSpace(req.DeliveryAddress)
			order.PaymentStatus = models.PaymentSimulatedPaid
		}

		// Stock write happens-before the order write: a failure in between
		// loses the order, never oversells the stock.
		if err := store.ReplaceAll(ctx, tx, store.Items, reservation.UpdatedCatalog); err != nil {
			return err
		}
		if err := store.Append(ctx, tx, store.Orders, order.ID, order); err != nil {
			mylog.Action("order_write_failed").Error(
				"Stock decremented but order write failed, manual reconciliation required", err,
				"order_id", order.ID, "shop_id", shop.ID)
			return err
		}

		summary = dto.OrderSummary{
			ID:          order.ID,
			TokenNumber: order.TokenNumber,
			TotalAmount: order.TotalAmount,
			Status:      order.Status,
			CreatedAt:   order.CreatedAt,
		}
		event = orderEvent(order)
		return nil
	})
	if err != nil {
		return dto.OrderSummary{}, err
	}

	o.publish(ctx, event)
	mylog.Action("order_placed").Info("Order placed", "order_id", summary.ID, "token", summary.TokenNumber)
	return summary, nil
}

// MyOrders returns the user's full order history, newest first.
func (o *OrderService) MyOrders(ctx context.Context, userID string) ([]models.Order, error) {
	var result []models.Order
	err := o.st.View(func(tx store.Tx) error {
		orders, err := store.All[models.Order](ctx, tx, store.Orders)
		if err != nil {
			return err
		}
		for _, order := range orders {
			if order.UserID == userID {
				result = append(result, order)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortNewestFirst(result)
	return result, nil
}

// ShopOrders lists orders for the actor's shop (shop admin) or, for a super
// admin, all shops or one selected via the filter.
func (o *OrderService) ShopOrders(ctx context.Context, actor models.User, filter dto.OrderFilter) ([]models.Order, error) {
	var result []models.Order
	err := o.st.View(func(tx store.Tx) error {
		targetShopID := filter.ShopID
		if actor.Role == models.RoleShopAdmin {
			shops, err := store.All[models.Shop](ctx, tx, store.Shops)
			if err != nil {
				return err
			}
			shop, ok := shopOfAdmin(shops, actor.ID)
			if !ok {
				// A shop admin without a shop sees an empty list, not an error.
				result = []models.Order{}
				return nil
			}
			targetShopID = shop.ID
		}

		orders, err := store.All[models.Order](ctx, tx, store.Orders)
		if err != nil {
			return err
		}
		for _, order := range orders {
			if targetShopID != "" && order.ShopID != targetShopID {
				continue
			}
			if filter.Status != "" && order.Status != filter.Status {
				continue
			}
			if filter.Date != "" && order.CreatedAt.Format("2006-01-02") != filter.Date {
				continue
			}
			result = append(result, order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortNewestFirst(result)
	return result, nil
}

// UpdateStatus applies one step of the lifecycle state machine. Reaching
// DELIVERED or COMPLETED promotes a simulated payment to PAID.
func (o *OrderService) UpdateStatus(ctx context.Context, actor models.User, orderID string, next models.OrderStatus) (models.Order, error) {
	if !next.Valid() {
		return models.Order{}, fmt.Errorf("%w: unknown status %q", core.ErrValidation, string(next))
	}

	var updated models.Order
	var event models.OrderEvent
	err := o.st.Update(func(tx store.Tx) error {
		order, err := o.findOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if err := o.checkShopAccess(ctx, tx, actor, order.ShopID); err != nil {
			return err
		}

		if !core.CanTransition(order.Status, next, order.OrderType) {
			return fmt.Errorf("%w: from %s to %s for order type %s",
				core.ErrInvalidTransition, order.Status, next, order.OrderType)
		}

		order.Status = next
		order.UpdatedAt = o.now()
		if (next == models.StatusDelivered || next == models.StatusCompleted) &&
			order.PaymentStatus == models.PaymentSimulatedPaid {
			order.PaymentStatus = models.PaymentPaid
		}

		if _, err := store.UpdateByID(ctx, tx, store.Orders, order.ID, order); err != nil {
			return err
		}
		updated = order
		event = orderEvent(order)
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}

	o.publish(ctx, event)
	o.mylog.Action("order_status_updated").Info("Order status updated",
		"order_id", updated.ID, "status", string(updated.Status))
	return updated, nil
}

// Reject turns a PLACED order into REJECTED, restoring the ordered quantities
// to the catalog. Restored items are forced available again even if they had
// been independently disabled; rejection always makes them orderable. A
// delivery order's simulated payment is marked REFUNDED.
func (o *OrderService) Reject(ctx context.Context, actor models.User, orderID, reason string) (models.Order, error) {
	reason = strings.TrimSpace(reason)
	if len(reason) < core.MinRejectionReasonLen {
		return models.Order{}, core.ErrInvalidReason
	}

	var updated models.Order
	var event models.OrderEvent
	err := o.st.Update(func(tx store.Tx) error {
		order, err := o.findOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if err := o.checkShopAccess(ctx, tx, actor, order.ShopID); err != nil {
			return err
		}
		if order.Status != models.StatusPlaced {
			return fmt.Errorf("%w: current status %s", core.ErrNotRejectable, order.Status)
		}

		catalog, err := store.All[models.Item](ctx, tx, store.Items)
		if err != nil {
			return err
		}
		restored := make(map[string]int, len(order.Items))
		for _, line := range order.Items {
			restored[line.ItemID] += line.Quantity
		}
		for i := range catalog {
			if qty, ok := restored[catalog[i].ID]; ok {
				catalog[i].Quantity += qty
				catalog[i].IsAvailable = true
			}
		}
		if err := store.ReplaceAll(ctx, tx, store.Items, catalog); err != nil {
			return err
		}

		order.Status = models.StatusRejected
		order.RejectionReason = reason
		order.UpdatedAt = o.now()
		if order.OrderType == models.TypeDelivery {
			order.PaymentStatus = models.PaymentRefunded
		}
		if _, err := store.UpdateByID(ctx, tx, store.Orders, order.ID, order); err != nil {
			o.mylog.Action("reject_write_failed").Error(
				"Stock restored but order write failed, manual reconciliation required", err,
				"order_id", order.ID)
			return err
		}
		updated = order
		event = orderEvent(order)
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}

	o.publish(ctx, event)
	o.mylog.Action("order_rejected").Info("Order rejected", "order_id", updated.ID)
	return updated, nil
}

func (o *OrderService) findOrder(ctx context.Context, tx store.Tx, orderID string) (models.Order, error) {
	orders, err := store.All[models.Order](ctx, tx, store.Orders)
	if err != nil {
		return models.Order{}, err
	}
	for _, order := range orders {
		if order.ID == orderID {
			return order, nil
		}
	}
	return models.Order{}, fmt.Errorf("%w: %s", core.ErrOrderNotFound, orderID)
}

// checkShopAccess enforces ownership: a shop admin may only touch orders of
// the shop assigned to them. Super admins pass.
func (o *OrderService) checkShopAccess(ctx context.Context, tx store.Tx, actor models.User, shopID string) error {
	if actor.Role != models.RoleShopAdmin {
		return nil
	}
	shops, err := store.All[models.Shop](ctx, tx, store.Shops)
	if err != nil {
		return err
	}
	shop, ok := shopOfAdmin(shops, actor.ID)
	if !ok || shop.ID != shopID {
		return fmt.Errorf("%w: order belongs to another shop", core.ErrForbidden)
	}
	return nil
}

func (o *OrderService) publish(ctx context.Context, event models.OrderEvent) {
	if o.events == nil {
		return
	}
	if err := o.events.PublishOrderEvent(ctx, event); err != nil {
		o.mylog.Action("event_publish_failed").Error("Failed to publish order event", err,
			"order_id", event.OrderID)
	}
}

func orderEvent(order models.Order) models.OrderEvent {
	return models.OrderEvent{
		OrderID:       order.ID,
		TokenNumber:   order.TokenNumber,
		ShopID:        order.ShopID,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		Timestamp:     order.UpdatedAt,
	}
}

// validateDeliverySlot checks membership in the fixed slot set and requires
// the slot to be at least 30 minutes ahead on the same calendar day.
func validateDeliverySlot(slot string, now time.Time) error {
	if slot == "" {
		return fmt.Errorf("%w: delivery slot is required", core.ErrInvalidSlot)
	}
	valid := false
	for _, s := range core.ValidDeliverySlots {
		if s == slot {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: %q", core.ErrInvalidSlot, slot)
	}

	slotTime, err := time.ParseInLocation("15:04", slot, now.Location())
	if err != nil {
		return fmt.Errorf("%w: %q", core.ErrInvalidSlot, slot)
	}
	slotAt := time.Date(now.Year(), now.Month(), now.Day(),
		slotTime.Hour(), slotTime.Minute(), 0, 0, now.Location())

	if slotAt.Sub(now) < core.MinSlotLeadMinutes*time.Minute {
		return fmt.Errorf("%w: %q is less than %d minutes away", core.ErrSlotExpired, slot, core.MinSlotLeadMinutes)
	}
	return nil
}

func findShop(shops []models.Shop, id string) (models.Shop, bool) {
	for _, shop := range shops {
		if shop.ID == id {
			return shop, true
		}
	}
	return models.Shop{}, false
}

func shopOfAdmin(shops []models.Shop, adminID string) (models.Shop, bool) {
	for _, shop := range shops {
		if shop.AdminID != "" && shop.AdminID == adminID {
			return shop, true
		}
	}
	return models.Shop{}, false
}

func sortNewestFirst(orders []models.Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
