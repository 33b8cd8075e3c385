package services

import (
	"context"
	"io"
	"testing"
	"time"

	"canteen/internal/adapter/store"
	"canteen/internal/domain/models"
	"canteen/internal/xpkg/logger"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	backend, err := store.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBackend: %v", err)
	}
	st := store.New(backend)
	t.Cleanup(func() { st.Close(context.Background()) })
	return st
}

func testLogger(t *testing.T) logger.Logger {
	t.Helper()
	mylog, err := logger.New("ERROR")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return mylog.SetOutput(io.Discard)
}

func seed[T any](t *testing.T, st *store.Store, c store.Collection, records []T) {
	t.Helper()
	err := st.Update(func(tx store.Tx) error {
		return store.ReplaceAll(context.Background(), tx, c, records)
	})
	if err != nil {
		t.Fatalf("seed %s: %v", c, err)
	}
}

func readAll[T any](t *testing.T, st *store.Store, c store.Collection) []T {
	t.Helper()
	var records []T
	err := st.View(func(tx store.Tx) error {
		var err error
		records, err = store.All[T](context.Background(), tx, c)
		return err
	})
	if err != nil {
		t.Fatalf("read %s: %v", c, err)
	}
	return records
}

func fixedTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04", value, time.Local)
	if err != nil {
		t.Fatalf("parse time %q: %v", value, err)
	}
	return ts
}

var testShop = models.Shop{
	ID:          "shop_juice",
	Name:        "Juice Corner",
	AdminID:     "user_admin",
	IsOpen:      true,
	OpeningTime: "09:00",
	ClosingTime: "21:00",
}

var testItems = []models.Item{
	{ID: "item_mango", ShopID: "shop_juice", Name: "Mango Shake", Category: "Beverages", Price: 60, Quantity: 10, IsAvailable: true},
	{ID: "item_samosa", ShopID: "shop_juice", Name: "Samosa", Category: "Snacks", Price: 15, Quantity: 2, IsAvailable: true},
	{ID: "item_other", ShopID: "shop_other", Name: "Coffee", Category: "Beverages", Price: 40, Quantity: 5, IsAvailable: true},
}

var (
	testUser      = models.User{ID: "user_alice", Name: "Alice", Email: "alice@example.com", Role: models.RoleUser}
	testShopAdmin = models.User{ID: "user_admin", Name: "Admin", Email: "admin@example.com", Role: models.RoleShopAdmin}
	testSuper     = models.User{ID: "user_super", Name: "Super", Email: "super@example.com", Role: models.RoleSuperAdmin}
)
