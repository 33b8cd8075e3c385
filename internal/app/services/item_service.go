package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"canteen/internal/adapter/store"
	"canteen/internal/app/core"
	"canteen/internal/domain/dto"
	"canteen/internal/domain/models"
	"canteen/internal/xpkg/logger"
)

type ItemService struct {
	st    *store.Store
	mylog logger.Logger
	now   func() time.Time
}

func NewItemService(st *store.Store, mylog logger.Logger) *ItemService {
	return &ItemService{st: st, mylog: mylog, now: time.Now}
}

// ShopMenu returns a shop's catalog grouped by category, sorted by category
// name. Unavailable items are hidden unless includeUnavailable is set (admin
// views).
func (s *ItemService) ShopMenu(ctx context.Context, shopID string, includeUnavailable bool) (dto.ShopMenu, error) {
	var menu dto.ShopMenu
	err := s.st.View(func(tx store.Tx) error {
		shops, err := store.All[models.Shop](ctx, tx, store.Shops)
		if err != nil {
			return err
		}
		shop, ok := findShop(shops, shopID)
		if !ok {
			return core.ErrShopNotFound
		}

		items, err := store.All[models.Item](ctx, tx, store.Items)
		if err != nil {
			return err
		}
		grouped := make(map[string][]models.Item)
		for _, item := range items {
			if item.ShopID != shopID {
				continue
			}
			if !includeUnavailable && !item.IsAvailable {
				continue
			}
			grouped[item.Category] = append(grouped[item.Category], item)
		}

		names := make([]string, 0, len(grouped))
		for name := range grouped {
			names = append(names, name)
		}
		sort.Strings(names)

		menu = dto.ShopMenu{Shop: dto.ShopRef{ID: shop.ID, Name: shop.Name}}
		for _, name := range names {
			menu.Categories = append(menu.Categories, dto.MenuCategory{
				CategoryName: name,
				Items:        grouped[name],
			})
		}
		return nil
	})
	return menu, err
}

// Items lists catalog entries scoped to the actor: a shop admin sees only
// their shop, a super admin sees everything or one shop via shopID.
func (s *ItemService) Items(ctx context.Context, actor models.User, shopID string) ([]models.Item, error) {
	var result []models.Item
	err := s.st.View(func(tx store.Tx) error {
		targetShopID := shopID
		if actor.Role == models.RoleShopAdmin {
			shops, err := store.All[models.Shop](ctx, tx, store.Shops)
			if err != nil {
				return err
			}
			shop, ok := shopOfAdmin(shops, actor.ID)
			if !ok {
				return fmt.Errorf("%w: no shop assigned", core.ErrShopNotFound)
			}
			targetShopID = shop.ID
		}

		items, err := store.All[models.Item](ctx, tx, store.Items)
		if err != nil {
			return err
		}
		if targetShopID == "" {
			result = items
			return nil
		}
		for _, item := range items {
			if item.ShopID == targetShopID {
				result = append(result, item)
			}
		}
		return nil
	})
	return result, err
}

func (s *ItemService) AddItem(ctx context.Context, actor models.User, req dto.AddItemRequest) (models.Item, error) {
	if err := validateItemFields(req.Name, req.Category, req.Price, req.Quantity); err != nil {
		return models.Item{}, err
	}

	var item models.Item
	err := s.st.Update(func(tx store.Tx) error {
		shopID, err := s.resolveShop(ctx, tx, actor, req.ShopID)
		if err != nil {
			return err
		}
		item = models.Item{
			ID:          store.NewID("item"),
			ShopID:      shopID,
			Name:        req.Name,
			Category:    req.Category,
			Price:       req.Price,
			IsVeg:       req.IsVeg,
			Quantity:    req.Quantity,
			IsAvailable: req.Quantity > 0,
			Image:       req.Image,
			CreatedAt:   s.now(),
		}
		return store.Append(ctx, tx, store.Items, item.ID, item)
	})
	if err != nil {
		return models.Item{}, err
	}

	s.mylog.Action("item_added").Info("Item added", "item_id", item.ID, "shop_id", item.ShopID)
	return item, nil
}

// UpdateItem applies the provided fields. A quantity change recomputes
// availability; id, shop and creation time are immutable.
func (s *ItemService) UpdateItem(ctx context.Context, actor models.User, itemID string, req dto.UpdateItemRequest) (models.Item, error) {
	var updated models.Item
	err := s.st.Update(func(tx store.Tx) error {
		item, err := s.findOwnedItem(ctx, tx, actor, itemID)
		if err != nil {
			return err
		}

		if req.Name != nil {
			if len(*req.Name) < 2 || len(*req.Name) > 100 {
				return fmt.Errorf("%w: name must be 2-100 characters", core.ErrValidation)
			}
			item.Name = *req.Name
		}
		if req.Category != nil {
			if len(*req.Category) < 2 || len(*req.Category) > 50 {
				return fmt.Errorf("%w: category must be 2-50 characters", core.ErrValidation)
			}
			item.Category = *req.Category
		}
		if req.Price != nil {
			if *req.Price <= 0 {
				return fmt.Errorf("%w: price must be greater than 0", core.ErrValidation)
			}
			item.Price = *req.Price
		}
		if req.Quantity != nil {
			if *req.Quantity < 0 {
				return fmt.Errorf("%w: quantity must be >= 0", core.ErrValidation)
			}
			item.Quantity = *req.Quantity
			item.IsAvailable = *req.Quantity > 0
		}
		if req.IsVeg != nil {
			item.IsVeg = *req.IsVeg
		}
		if req.Image != nil {
			item.Image = *req.Image
		}

		if _, err := store.UpdateByID(ctx, tx, store.Items, item.ID, item); err != nil {
			return err
		}
		updated = item
		return nil
	})
	return updated, err
}

// DeleteItem refuses to remove items still referenced by active orders.
func (s *ItemService) DeleteItem(ctx context.Context, actor models.User, itemID string) error {
	err := s.st.Update(func(tx store.Tx) error {
		if _, err := s.findOwnedItem(ctx, tx, actor, itemID); err != nil {
			return err
		}

		orders, err := store.All[models.Order](ctx, tx, store.Orders)
		if err != nil {
			return err
		}
		active := 0
		for _, order := range orders {
			if orderFinished(order.Status) {
				continue
			}
			for _, line := range order.Items {
				if line.ItemID == itemID {
					active++
					break
				}
			}
		}
		if active > 0 {
			return fmt.Errorf("%w: referenced by %d active orders", core.ErrItemInActiveOrders, active)
		}

		_, err = store.DeleteByID(ctx, tx, store.Items, itemID)
		return err
	})
	if err != nil {
		return err
	}
	s.mylog.Action("item_deleted").Info("Item deleted", "item_id", itemID)
	return nil
}

// ToggleAvailability flips the manual availability flag without touching
// stock.
func (s *ItemService) ToggleAvailability(ctx context.Context, actor models.User, itemID string) (models.Item, error) {
	var updated models.Item
	err := s.st.Update(func(tx store.Tx) error {
		item, err := s.findOwnedItem(ctx, tx, actor, itemID)
		if err != nil {
			return err
		}
		item.IsAvailable = !item.IsAvailable
		if _, err := store.UpdateByID(ctx, tx, store.Items, item.ID, item); err != nil {
			return err
		}
		updated = item
		return nil
	})
	return updated, err
}

func (s *ItemService) resolveShop(ctx context.Context, tx store.Tx, actor models.User, requestShopID string) (string, error) {
	if actor.Role == models.RoleShopAdmin {
		shops, err := store.All[models.Shop](ctx, tx, store.Shops)
		if err != nil {
			return "", err
		}
		shop, ok := shopOfAdmin(shops, actor.ID)
		if !ok {
			return "", fmt.Errorf("%w: no shop assigned", core.ErrForbidden)
		}
		return shop.ID, nil
	}
	if requestShopID == "" {
		return "", fmt.Errorf("%w: shop ID required for super admin", core.ErrValidation)
	}
	return requestShopID, nil
}

func (s *ItemService) findOwnedItem(ctx context.Context, tx store.Tx, actor models.User, itemID string) (models.Item, error) {
	items, err := store.All[models.Item](ctx, tx, store.Items)
	if err != nil {
		return models.Item{}, err
	}
	var item models.Item
	found := false
	for _, it := range items {
		if it.ID == itemID {
			item = it
			found = true
			break
		}
	}
	if !found {
		return models.Item{}, fmt.Errorf("%w: %s", core.ErrItemNotFound, itemID)
	}

	if actor.Role == models.RoleShopAdmin {
		shops, err := store.All[models.Shop](ctx, tx, store.Shops)
		if err != nil {
			return models.Item{}, err
		}
		shop, ok := shopOfAdmin(shops, actor.ID)
		if !ok || shop.ID != item.ShopID {
			return models.Item{}, fmt.Errorf("%w: item belongs to another shop", core.ErrForbidden)
		}
	}
	return item, nil
}

func validateItemFields(name, category string, price float64, quantity int) error {
	if len(name) < 2 || len(name) > 100 {
		return fmt.Errorf("%w: name must be 2-100 characters", core.ErrValidation)
	}
	if len(category) < 2 || len(category) > 50 {
		return fmt.Errorf("%w: category must be 2-50 characters", core.ErrValidation)
	}
	if price <= 0 {
		return fmt.Errorf("%w: price must be greater than 0", core.ErrValidation)
	}
	if quantity < 0 {
		return fmt.Errorf("%w: quantity must be >= 0", core.ErrValidation)
	}
	return nil
}

// orderFinished reports terminal states that no longer pin catalog items.
func orderFinished(status models.OrderStatus) bool {
	switch status {
	case models.StatusCompleted, models.StatusDelivered, models.StatusRejected:
		return true
	}
	return false
}
