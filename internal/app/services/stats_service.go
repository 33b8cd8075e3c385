package services

import (
	"context"
	"time"

	"canteen/internal/adapter/store"
	"canteen/internal/domain/models"
)

// StatsService computes read-side aggregates by scanning the order and item
// collections on every call. The store is small and fully scanned per request
// anyway, so there is no caching.
type StatsService struct {
	st  *store.Store
	now func() time.Time
}

func NewStatsService(st *store.Store) *StatsService {
	return &StatsService{st: st, now: time.Now}
}

// ShopStats aggregates for one shop, or system-wide when shopID is empty.
// "Today" spans start-of-day to now in local wall clock.
func (s *StatsService) ShopStats(ctx context.Context, shopID string) (models.ShopStats, error) {
	var stats models.ShopStats
	err := s.st.View(func(tx store.Tx) error {
		orders, err := store.All[models.Order](ctx, tx, store.Orders)
		if err != nil {
			return err
		}
		items, err := store.All[models.Item](ctx, tx, store.Items)
		if err != nil {
			return err
		}

		now := s.now()
		startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

		for _, order := range orders {
			if shopID != "" && order.ShopID != shopID {
				continue
			}
			if !order.CreatedAt.Before(startOfDay) {
				stats.OrdersToday++
				stats.RevenueToday += order.TotalAmount
			}
			if order.Status == models.StatusPlaced {
				stats.PendingOrders++
			}
		}
		for _, item := range items {
			if shopID != "" && item.ShopID != shopID {
				continue
			}
			if !item.IsAvailable || item.Quantity <= 0 {
				stats.OutOfStockItems++
			}
		}
		return nil
	})
	return stats, err
}
