package models

// ShopStats is recomputed on every request by scanning the order and item
// collections; nothing is cached.
type ShopStats struct {
	OrdersToday     int     `json:"ordersToday"`
	RevenueToday    float64 `json:"revenueToday"`
	PendingOrders   int     `json:"pendingOrders"`
	OutOfStockItems int     `json:"outOfStockItems"`
}
