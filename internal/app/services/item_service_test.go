package services

import (
	"context"
	"errors"
	"testing"

	"canteen/internal/adapter/store"
	"canteen/internal/app/core"
	"canteen/internal/domain/dto"
	"canteen/internal/domain/models"
)

func newItemService(t *testing.T, st *store.Store) *ItemService {
	t.Helper()
	return NewItemService(st, testLogger(t))
}

func TestShopMenu(t *testing.T) {
	st := newTestStore(t)
	seed(t, st, store.Shops, []models.Shop{testShop})
	seed(t, st, store.Items, []models.Item{
		{ID: "item_a", ShopID: "shop_juice", Name: "Mango Shake", Category: "Beverages", IsAvailable: true, Quantity: 5},
		{ID: "item_b", ShopID: "shop_juice", Name: "Samosa", Category: "Snacks", IsAvailable: true, Quantity: 3},
		{ID: "item_c", ShopID: "shop_juice", Name: "Special", Category: "Snacks", IsAvailable: false},
		{ID: "item_d", ShopID: "shop_other", Name: "Coffee", Category: "Beverages", IsAvailable: true, Quantity: 4},
	})
	svc := newItemService(t, st)

	menu, err := svc.ShopMenu(context.Background(), "shop_juice", false)
	if err != nil {
		t.Fatalf("ShopMenu: %v", err)
	}
	if menu.Shop.Name != "Juice Corner" {
		t.Errorf("shop name = %q", menu.Shop.Name)
	}
	if len(menu.Categories) != 2 {
		t.Fatalf("categories = %d, want 2", len(menu.Categories))
	}
	// Categories sorted by name.
	if menu.Categories[0].CategoryName != "Beverages" || menu.Categories[1].CategoryName != "Snacks" {
		t.Errorf("category order = %q, %q", menu.Categories[0].CategoryName, menu.Categories[1].CategoryName)
	}
	// Unavailable item hidden from the public menu.
	if len(menu.Categories[1].Items) != 1 {
		t.Errorf("snacks = %d items, want 1", len(menu.Categories[1].Items))
	}

	adminMenu, err := svc.ShopMenu(context.Background(), "shop_juice", true)
	if err != nil {
		t.Fatalf("ShopMenu admin: %v", err)
	}
	if len(adminMenu.Categories[1].Items) != 2 {
		t.Errorf("admin snacks = %d items, want 2", len(adminMenu.Categories[1].Items))
	}

	if _, err := svc.ShopMenu(context.Background(), "shop_ghost", false); !errors.Is(err, core.ErrShopNotFound) {
		t.Errorf("ShopMenu error = %v, want %v", err, core.ErrShopNotFound)
	}
}

func TestItemsScoping(t *testing.T) {
	st := newTestStore(t)
	seed(t, st, store.Shops, []models.Shop{testShop})
	seed(t, st, store.Items, testItems)
	svc := newItemService(t, st)

	// Shop admin is pinned to their own shop regardless of the filter.
	items, err := svc.Items(context.Background(), testShopAdmin, "shop_other")
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	for _, item := range items {
		if item.ShopID != "shop_juice" {
			t.Errorf("admin saw foreign item %q", item.ID)
		}
	}

	// Super admin sees everything without a filter.
	items, err = svc.Items(context.Background(), testSuper, "")
	if err != nil {
		t.Fatalf("Items super: %v", err)
	}
	if len(items) != len(testItems) {
		t.Errorf("super sees %d items, want %d", len(items), len(testItems))
	}
}

func TestAddItem(t *testing.T) {
	st := newTestStore(t)
	seed(t, st, store.Shops, []models.Shop{testShop})
	svc := newItemService(t, st)

	item, err := svc.AddItem(context.Background(), testShopAdmin, dto.AddItemRequest{
		Name: "Lassi", Category: "Beverages", Price: 45, Quantity: 0,
	})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if item.ShopID != "shop_juice" {
		t.Errorf("shop = %q, want shop_juice", item.ShopID)
	}
	if item.IsAvailable {
		t.Error("zero-quantity item must start unavailable")
	}

	// Super admin must name a shop.
	if _, err := svc.AddItem(context.Background(), testSuper, dto.AddItemRequest{
		Name: "Lassi", Category: "Beverages", Price: 45, Quantity: 1,
	}); !errors.Is(err, core.ErrValidation) {
		t.Errorf("AddItem error = %v, want %v", err, core.ErrValidation)
	}

	bad := []dto.AddItemRequest{
		{Name: "L", Category: "Beverages", Price: 45, Quantity: 1},
		{Name: "Lassi", Category: "B", Price: 45, Quantity: 1},
		{Name: "Lassi", Category: "Beverages", Price: 0, Quantity: 1},
		{Name: "Lassi", Category: "Beverages", Price: 45, Quantity: -1},
	}
	for i, req := range bad {
		if _, err := svc.AddItem(context.Background(), testShopAdmin, req); !errors.Is(err, core.ErrValidation) {
			t.Errorf("bad request %d error = %v, want %v", i, err, core.ErrValidation)
		}
	}
}

func TestUpdateItem(t *testing.T) {
	st := newTestStore(t)
	seed(t, st, store.Shops, []models.Shop{testShop})
	seed(t, st, store.Items, []models.Item{
		{ID: "item_lassi", ShopID: "shop_juice", Name: "Lassi", Category: "Beverages", Price: 45, Quantity: 5, IsAvailable: true},
	})
	svc := newItemService(t, st)

	price := 50.0
	updated, err := svc.UpdateItem(context.Background(), testShopAdmin, "item_lassi", dto.UpdateItemRequest{Price: &price})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if updated.Price != 50 {
		t.Errorf("price = %v, want 50", updated.Price)
	}
	if updated.Name != "Lassi" || updated.Quantity != 5 {
		t.Errorf("untouched fields changed: %+v", updated)
	}

	// Quantity drives availability both ways.
	zero := 0
	updated, err = svc.UpdateItem(context.Background(), testShopAdmin, "item_lassi", dto.UpdateItemRequest{Quantity: &zero})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if updated.IsAvailable {
		t.Error("zero quantity should flip unavailable")
	}
	five := 5
	updated, err = svc.UpdateItem(context.Background(), testShopAdmin, "item_lassi", dto.UpdateItemRequest{Quantity: &five})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if !updated.IsAvailable {
		t.Error("restock should flip available")
	}

	negative := -1
	if _, err := svc.UpdateItem(context.Background(), testShopAdmin, "item_lassi", dto.UpdateItemRequest{Quantity: &negative}); !errors.Is(err, core.ErrValidation) {
		t.Errorf("negative quantity error = %v, want %v", err, core.ErrValidation)
	}

	stranger := models.User{ID: "user_stranger", Role: models.RoleShopAdmin}
	if _, err := svc.UpdateItem(context.Background(), stranger, "item_lassi", dto.UpdateItemRequest{Price: &price}); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("foreign admin error = %v, want %v", err, core.ErrForbidden)
	}
}

func TestDeleteItem(t *testing.T) {
	st := newTestStore(t)
	seed(t, st, store.Shops, []models.Shop{testShop})
	seed(t, st, store.Items, []models.Item{
		{ID: "item_pinned", ShopID: "shop_juice", Name: "Pinned", Category: "Snacks", Price: 10, Quantity: 5, IsAvailable: true},
		{ID: "item_free", ShopID: "shop_juice", Name: "Free", Category: "Snacks", Price: 10, Quantity: 5, IsAvailable: true},
	})
	seed(t, st, store.Orders, []models.Order{
		{ID: "order_active", ShopID: "shop_juice", Status: models.StatusPreparing,
			Items: []models.OrderItem{{ItemID: "item_pinned", Quantity: 1}}},
		{ID: "order_done", ShopID: "shop_juice", Status: models.StatusCompleted,
			Items: []models.OrderItem{{ItemID: "item_free", Quantity: 1}}},
	})
	svc := newItemService(t, st)

	if err := svc.DeleteItem(context.Background(), testShopAdmin, "item_pinned"); !errors.Is(err, core.ErrItemInActiveOrders) {
		t.Fatalf("DeleteItem error = %v, want %v", err, core.ErrItemInActiveOrders)
	}

	// Finished orders do not pin items.
	if err := svc.DeleteItem(context.Background(), testShopAdmin, "item_free"); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	items := readAll[models.Item](t, st, store.Items)
	if len(items) != 1 || items[0].ID != "item_pinned" {
		t.Errorf("remaining items = %+v", items)
	}
}

func TestToggleAvailability(t *testing.T) {
	st := newTestStore(t)
	seed(t, st, store.Shops, []models.Shop{testShop})
	seed(t, st, store.Items, []models.Item{
		{ID: "item_lassi", ShopID: "shop_juice", Name: "Lassi", Category: "Beverages", Price: 45, Quantity: 5, IsAvailable: true},
	})
	svc := newItemService(t, st)

	item, err := svc.ToggleAvailability(context.Background(), testShopAdmin, "item_lassi")
	if err != nil {
		t.Fatalf("ToggleAvailability: %v", err)
	}
	if item.IsAvailable {
		t.Error("toggle should disable the item")
	}
	if item.Quantity != 5 {
		t.Errorf("quantity = %d, toggle must not touch stock", item.Quantity)
	}
}
