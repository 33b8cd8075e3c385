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

func newAdminService(t *testing.T, st *store.Store) *AdminService {
	t.Helper()
	return NewAdminService(st, testLogger(t))
}

func TestCreateShop(t *testing.T) {
	t.Run("creates shop with a new admin account", func(t *testing.T) {
		st := newTestStore(t)
		svc := newAdminService(t, st)

		shop, err := svc.CreateShop(context.Background(), dto.CreateShopRequest{
			Name:        "Juice Corner",
			AdminEmail:  "vendor@example.com",
			OpeningTime: "09:00",
			ClosingTime: "21:00",
		})
		if err != nil {
			t.Fatalf("CreateShop: %v", err)
		}
		if !shop.IsOpen {
			t.Error("new shop should start open")
		}

		users := readAll[models.User](t, st, store.Users)
		if len(users) != 1 {
			t.Fatalf("users = %d, want 1", len(users))
		}
		if users[0].Role != models.RoleShopAdmin {
			t.Errorf("admin role = %q, want SHOP_ADMIN", users[0].Role)
		}
		if users[0].Password != "" {
			t.Error("auto-created admin must be passwordless")
		}
		if shop.AdminID != users[0].ID {
			t.Errorf("shop admin = %q, want %q", shop.AdminID, users[0].ID)
		}
	})

	t.Run("promotes an existing user to shop admin", func(t *testing.T) {
		st := newTestStore(t)
		seed(t, st, store.Users, []models.User{testUser})
		svc := newAdminService(t, st)

		shop, err := svc.CreateShop(context.Background(), dto.CreateShopRequest{
			Name:        "Juice Corner",
			AdminEmail:  testUser.Email,
			OpeningTime: "09:00",
			ClosingTime: "21:00",
		})
		if err != nil {
			t.Fatalf("CreateShop: %v", err)
		}
		if shop.AdminID != testUser.ID {
			t.Errorf("shop admin = %q, want %q", shop.AdminID, testUser.ID)
		}
		users := readAll[models.User](t, st, store.Users)
		if users[0].Role != models.RoleShopAdmin {
			t.Errorf("promoted role = %q, want SHOP_ADMIN", users[0].Role)
		}
	})

	t.Run("refuses an admin who already manages a shop", func(t *testing.T) {
		st := newTestStore(t)
		seed(t, st, store.Users, []models.User{testShopAdmin})
		seed(t, st, store.Shops, []models.Shop{testShop})
		svc := newAdminService(t, st)

		_, err := svc.CreateShop(context.Background(), dto.CreateShopRequest{
			Name:        "Second Shop",
			AdminEmail:  testShopAdmin.Email,
			OpeningTime: "09:00",
			ClosingTime: "21:00",
		})
		if !errors.Is(err, core.ErrAdminAlreadyAssigned) {
			t.Fatalf("CreateShop error = %v, want %v", err, core.ErrAdminAlreadyAssigned)
		}
	})

	t.Run("shop names are unique case-insensitively", func(t *testing.T) {
		st := newTestStore(t)
		seed(t, st, store.Shops, []models.Shop{testShop})
		svc := newAdminService(t, st)

		_, err := svc.CreateShop(context.Background(), dto.CreateShopRequest{
			Name:        "JUICE corner",
			AdminEmail:  "another@example.com",
			OpeningTime: "09:00",
			ClosingTime: "21:00",
		})
		if !errors.Is(err, core.ErrDuplicateShopName) {
			t.Fatalf("CreateShop error = %v, want %v", err, core.ErrDuplicateShopName)
		}
	})

	validation := []struct {
		name string
		req  dto.CreateShopRequest
	}{
		{name: "name too short", req: dto.CreateShopRequest{Name: "J", AdminEmail: "a@b.co", OpeningTime: "09:00", ClosingTime: "21:00"}},
		{name: "bad email", req: dto.CreateShopRequest{Name: "Juice", AdminEmail: "not-an-email", OpeningTime: "09:00", ClosingTime: "21:00"}},
		{name: "bad opening time", req: dto.CreateShopRequest{Name: "Juice", AdminEmail: "a@b.co", OpeningTime: "9am", ClosingTime: "21:00"}},
		{name: "bad closing time", req: dto.CreateShopRequest{Name: "Juice", AdminEmail: "a@b.co", OpeningTime: "09:00", ClosingTime: "25:00"}},
	}
	for _, tc := range validation {
		t.Run(tc.name, func(t *testing.T) {
			st := newTestStore(t)
			svc := newAdminService(t, st)
			if _, err := svc.CreateShop(context.Background(), tc.req); !errors.Is(err, core.ErrValidation) {
				t.Fatalf("CreateShop error = %v, want %v", err, core.ErrValidation)
			}
		})
	}
}

func TestUpdateShopPartialFields(t *testing.T) {
	st := newTestStore(t)
	seed(t, st, store.Shops, []models.Shop{testShop})
	svc := newAdminService(t, st)

	updated, err := svc.UpdateShop(context.Background(), testShop.ID, dto.UpdateShopRequest{ClosingTime: "22:00"})
	if err != nil {
		t.Fatalf("UpdateShop: %v", err)
	}
	if updated.ClosingTime != "22:00" {
		t.Errorf("closing time = %q, want 22:00", updated.ClosingTime)
	}
	if updated.Name != testShop.Name || updated.OpeningTime != testShop.OpeningTime {
		t.Errorf("untouched fields changed: %+v", updated)
	}

	if _, err := svc.UpdateShop(context.Background(), "shop_ghost", dto.UpdateShopRequest{Name: "New"}); !errors.Is(err, core.ErrShopNotFound) {
		t.Errorf("UpdateShop error = %v, want %v", err, core.ErrShopNotFound)
	}
}

func TestDeleteShop(t *testing.T) {
	st := newTestStore(t)
	seed(t, st, store.Shops, []models.Shop{testShop})
	svc := newAdminService(t, st)

	if err := svc.DeleteShop(context.Background(), testShop.ID); err != nil {
		t.Fatalf("DeleteShop: %v", err)
	}
	if shops := readAll[models.Shop](t, st, store.Shops); len(shops) != 0 {
		t.Errorf("shops = %d, want 0", len(shops))
	}
	if err := svc.DeleteShop(context.Background(), testShop.ID); !errors.Is(err, core.ErrShopNotFound) {
		t.Errorf("second DeleteShop error = %v, want %v", err, core.ErrShopNotFound)
	}
}

func TestShopOpenFlag(t *testing.T) {
	st := newTestStore(t)
	seed(t, st, store.Shops, []models.Shop{testShop})
	svc := newAdminService(t, st)

	shop, err := svc.SetShopOpen(context.Background(), testShopAdmin, testShop.ID, false)
	if err != nil {
		t.Fatalf("SetShopOpen: %v", err)
	}
	if shop.IsOpen {
		t.Error("shop should be closed")
	}

	shop, err = svc.ToggleShopOpen(context.Background(), testSuper, testShop.ID)
	if err != nil {
		t.Fatalf("ToggleShopOpen: %v", err)
	}
	if !shop.IsOpen {
		t.Error("toggle should reopen the shop")
	}

	stranger := models.User{ID: "user_stranger", Role: models.RoleShopAdmin}
	if _, err := svc.SetShopOpen(context.Background(), stranger, testShop.ID, false); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("foreign admin error = %v, want %v", err, core.ErrForbidden)
	}
}

func TestMyShop(t *testing.T) {
	st := newTestStore(t)
	seed(t, st, store.Shops, []models.Shop{testShop})
	svc := newAdminService(t, st)

	shop, err := svc.MyShop(context.Background(), testShopAdmin)
	if err != nil {
		t.Fatalf("MyShop: %v", err)
	}
	if shop.ID != testShop.ID {
		t.Errorf("shop = %q, want %q", shop.ID, testShop.ID)
	}

	unassigned := models.User{ID: "user_nobody", Role: models.RoleShopAdmin}
	if _, err := svc.MyShop(context.Background(), unassigned); !errors.Is(err, core.ErrShopNotFound) {
		t.Errorf("MyShop error = %v, want %v", err, core.ErrShopNotFound)
	}
}

func TestShopsResolvesAdminEmails(t *testing.T) {
	st := newTestStore(t)
	seed(t, st, store.Users, []models.User{testShopAdmin})
	seed(t, st, store.Shops, []models.Shop{testShop, {ID: "shop_lone", Name: "Lone"}})
	svc := newAdminService(t, st)

	shops, err := svc.Shops(context.Background())
	if err != nil {
		t.Fatalf("Shops: %v", err)
	}
	if len(shops) != 2 {
		t.Fatalf("shops = %d, want 2", len(shops))
	}
	if shops[0].AdminEmail != testShopAdmin.Email {
		t.Errorf("admin email = %q, want %q", shops[0].AdminEmail, testShopAdmin.Email)
	}
	if shops[1].AdminEmail != "" {
		t.Errorf("unassigned shop email = %q, want empty", shops[1].AdminEmail)
	}
}

func TestUsersOmitsPasswordHashes(t *testing.T) {
	st := newTestStore(t)
	alice := testUser
	alice.Password = "$2a$10$fakehash"
	seed(t, st, store.Users, []models.User{alice, testShopAdmin})
	svc := newAdminService(t, st)

	users, err := svc.Users(context.Background())
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("users = %d, want 2", len(users))
	}
	// Newest first: the later record comes first.
	if users[0].ID != testShopAdmin.ID {
		t.Errorf("first user = %q, want %q", users[0].ID, testShopAdmin.ID)
	}
}

func TestSetUserRole(t *testing.T) {
	t.Run("cannot change own role", func(t *testing.T) {
		st := newTestStore(t)
		svc := newAdminService(t, st)
		_, err := svc.SetUserRole(context.Background(), testSuper, testSuper.ID, dto.RoleChangeRequest{Role: models.RoleUser})
		if !errors.Is(err, core.ErrCannotModifySelf) {
			t.Fatalf("error = %v, want %v", err, core.ErrCannotModifySelf)
		}
	})

	t.Run("promote to shop admin binds the shop", func(t *testing.T) {
		st := newTestStore(t)
		seed(t, st, store.Users, []models.User{testUser})
		free := testShop
		free.AdminID = ""
		seed(t, st, store.Shops, []models.Shop{free})
		svc := newAdminService(t, st)

		info, err := svc.SetUserRole(context.Background(), testSuper, testUser.ID, dto.RoleChangeRequest{
			Role: models.RoleShopAdmin, ShopID: free.ID,
		})
		if err != nil {
			t.Fatalf("SetUserRole: %v", err)
		}
		if info.Role != models.RoleShopAdmin {
			t.Errorf("role = %q, want SHOP_ADMIN", info.Role)
		}
		shops := readAll[models.Shop](t, st, store.Shops)
		if shops[0].AdminID != testUser.ID {
			t.Errorf("shop admin = %q, want %q", shops[0].AdminID, testUser.ID)
		}
	})

	t.Run("promotion requires a shop id", func(t *testing.T) {
		st := newTestStore(t)
		seed(t, st, store.Users, []models.User{testUser})
		svc := newAdminService(t, st)
		_, err := svc.SetUserRole(context.Background(), testSuper, testUser.ID, dto.RoleChangeRequest{Role: models.RoleShopAdmin})
		if !errors.Is(err, core.ErrValidation) {
			t.Fatalf("error = %v, want %v", err, core.ErrValidation)
		}
	})

	t.Run("promotion to an already managed shop is refused", func(t *testing.T) {
		st := newTestStore(t)
		seed(t, st, store.Users, []models.User{testUser, testShopAdmin})
		seed(t, st, store.Shops, []models.Shop{testShop})
		svc := newAdminService(t, st)
		_, err := svc.SetUserRole(context.Background(), testSuper, testUser.ID, dto.RoleChangeRequest{
			Role: models.RoleShopAdmin, ShopID: testShop.ID,
		})
		if !errors.Is(err, core.ErrShopAlreadyHasAdmin) {
			t.Fatalf("error = %v, want %v", err, core.ErrShopAlreadyHasAdmin)
		}
	})

	t.Run("demotion clears the shop binding", func(t *testing.T) {
		st := newTestStore(t)
		seed(t, st, store.Users, []models.User{testShopAdmin})
		seed(t, st, store.Shops, []models.Shop{testShop})
		svc := newAdminService(t, st)

		info, err := svc.SetUserRole(context.Background(), testSuper, testShopAdmin.ID, dto.RoleChangeRequest{Role: models.RoleUser})
		if err != nil {
			t.Fatalf("SetUserRole: %v", err)
		}
		if info.Role != models.RoleUser {
			t.Errorf("role = %q, want USER", info.Role)
		}
		shops := readAll[models.Shop](t, st, store.Shops)
		if shops[0].AdminID != "" {
			t.Errorf("shop admin = %q, want cleared", shops[0].AdminID)
		}
	})

	t.Run("shop admin switches shops", func(t *testing.T) {
		st := newTestStore(t)
		seed(t, st, store.Users, []models.User{testShopAdmin})
		other := models.Shop{ID: "shop_new", Name: "New Shop"}
		seed(t, st, store.Shops, []models.Shop{testShop, other})
		svc := newAdminService(t, st)

		_, err := svc.SetUserRole(context.Background(), testSuper, testShopAdmin.ID, dto.RoleChangeRequest{
			Role: models.RoleShopAdmin, ShopID: other.ID,
		})
		if err != nil {
			t.Fatalf("SetUserRole: %v", err)
		}
		shops := readAll[models.Shop](t, st, store.Shops)
		byID := map[string]models.Shop{}
		for _, s := range shops {
			byID[s.ID] = s
		}
		if byID[testShop.ID].AdminID != "" {
			t.Errorf("old shop admin = %q, want cleared", byID[testShop.ID].AdminID)
		}
		if byID[other.ID].AdminID != testShopAdmin.ID {
			t.Errorf("new shop admin = %q, want %q", byID[other.ID].AdminID, testShopAdmin.ID)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		st := newTestStore(t)
		svc := newAdminService(t, st)
		_, err := svc.SetUserRole(context.Background(), testSuper, "user_ghost", dto.RoleChangeRequest{Role: models.RoleUser})
		if !errors.Is(err, core.ErrUserNotFound) {
			t.Fatalf("error = %v, want %v", err, core.ErrUserNotFound)
		}
	})
}
