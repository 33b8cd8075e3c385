package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"canteen/internal/adapter/store"
	"canteen/internal/app/core"
	"canteen/internal/domain/dto"
	"canteen/internal/domain/models"
	"canteen/internal/xpkg/logger"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	timeRe  = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)
)

// AdminService covers shop management and the role assignments around it.
// Every path that touches the SHOP_ADMIN role goes through assignShopAdmin /
// unassignShopAdmin so User.Role and Shop.AdminID never drift apart.
type AdminService struct {
	st    *store.Store
	mylog logger.Logger
	now   func() time.Time
}

func NewAdminService(st *store.Store, mylog logger.Logger) *AdminService {
	return &AdminService{st: st, mylog: mylog, now: time.Now}
}

// CreateShop validates the request, resolves or creates the admin user and
// creates the shop open by default. An existing user already managing another
// shop is refused.
func (a *AdminService) CreateShop(ctx context.Context, req dto.CreateShopRequest) (models.Shop, error) {
	name := strings.TrimSpace(req.Name)
	if len(name) < 2 || len(name) > 100 {
		return models.Shop{}, fmt.Errorf("%w: shop name must be between 2 and 100 characters", core.ErrValidation)
	}
	if !emailRe.MatchString(req.AdminEmail) {
		return models.Shop{}, fmt.Errorf("%w: invalid email format", core.ErrValidation)
	}
	if !timeRe.MatchString(req.OpeningTime) || !timeRe.MatchString(req.ClosingTime) {
		return models.Shop{}, fmt.Errorf("%w: invalid time format, use HH:MM", core.ErrValidation)
	}

	var shop models.Shop
	err := a.st.Update(func(tx store.Tx) error {
		shops, err := store.All[models.Shop](ctx, tx, store.Shops)
		if err != nil {
			return err
		}
		for _, s := range shops {
			if strings.EqualFold(s.Name, name) {
				return core.ErrDuplicateShopName
			}
		}

		users, err := store.All[models.User](ctx, tx, store.Users)
		if err != nil {
			return err
		}

		var adminID string
		if admin, ok := userByEmail(users, req.AdminEmail); ok {
			if _, taken := shopOfAdmin(shops, admin.ID); taken {
				return core.ErrAdminAlreadyAssigned
			}
			if admin.Role != models.RoleShopAdmin && admin.Role != models.RoleSuperAdmin {
				admin.Role = models.RoleShopAdmin
				if _, err := store.UpdateByID(ctx, tx, store.Users, admin.ID, admin); err != nil {
					return err
				}
			}
			adminID = admin.ID
		} else {
			newUser := models.User{
				ID:        store.NewID("user"),
				Name:      strings.SplitN(req.AdminEmail, "@", 2)[0],
				Email:     req.AdminEmail,
				Role:      models.RoleShopAdmin,
				CreatedAt: a.now(),
			}
			if err := store.Append(ctx, tx, store.Users, newUser.ID, newUser); err != nil {
				return err
			}
			adminID = newUser.ID
		}

		shop = models.Shop{
			ID:          store.NewID("shop"),
			Name:        name,
			AdminID:     adminID,
			IsOpen:      true,
			OpeningTime: req.OpeningTime,
			ClosingTime: req.ClosingTime,
			Image:       req.Image,
		}
		return store.Append(ctx, tx, store.Shops, shop.ID, shop)
	})
	if err != nil {
		return models.Shop{}, err
	}

	a.mylog.Action("shop_created").Info("Shop created", "shop_id", shop.ID, "name", shop.Name)
	return shop, nil
}

func (a *AdminService) UpdateShop(ctx context.Context, shopID string, req dto.UpdateShopRequest) (models.Shop, error) {
	if req.Name != "" && (len(req.Name) < 2 || len(req.Name) > 100) {
		return models.Shop{}, fmt.Errorf("%w: shop name must be between 2 and 100 characters", core.ErrValidation)
	}
	if req.OpeningTime != "" && !timeRe.MatchString(req.OpeningTime) {
		return models.Shop{}, fmt.Errorf("%w: invalid opening time", core.ErrValidation)
	}
	if req.ClosingTime != "" && !timeRe.MatchString(req.ClosingTime) {
		return models.Shop{}, fmt.Errorf("%w: invalid closing time", core.ErrValidation)
	}

	var updated models.Shop
	err := a.st.Update(func(tx store.Tx) error {
		shops, err := store.All[models.Shop](ctx, tx, store.Shops)
		if err != nil {
			return err
		}
		shop, ok := findShop(shops, shopID)
		if !ok {
			return core.ErrShopNotFound
		}
		if req.Name != "" {
			shop.Name = strings.TrimSpace(req.Name)
		}
		if req.OpeningTime != "" {
			shop.OpeningTime = req.OpeningTime
		}
		if req.ClosingTime != "" {
			shop.ClosingTime = req.ClosingTime
		}
		if req.Image != "" {
			shop.Image = req.Image
		}
		if _, err := store.UpdateByID(ctx, tx, store.Shops, shop.ID, shop); err != nil {
			return err
		}
		updated = shop
		return nil
	})
	return updated, err
}

// DeleteShop removes the shop record only. Items and orders referencing it
// become orphaned; there is no cascade.
func (a *AdminService) DeleteShop(ctx context.Context, shopID string) error {
	return a.st.Update(func(tx store.Tx) error {
		found, err := store.DeleteByID(ctx, tx, store.Shops, shopID)
		if err != nil {
			return err
		}
		if !found {
			return core.ErrShopNotFound
		}
		return nil
	})
}

// Shops lists every shop with its admin's email resolved, for the super admin
// dashboard.
func (a *AdminService) Shops(ctx context.Context) ([]dto.ShopWithAdmin, error) {
	var result []dto.ShopWithAdmin
	err := a.st.View(func(tx store.Tx) error {
		shops, err := store.All[models.Shop](ctx, tx, store.Shops)
		if err != nil {
			return err
		}
		users, err := store.All[models.User](ctx, tx, store.Users)
		if err != nil {
			return err
		}
		emailByID := make(map[string]string, len(users))
		for _, u := range users {
			emailByID[u.ID] = u.Email
		}
		result = make([]dto.ShopWithAdmin, 0, len(shops))
		for _, shop := range shops {
			result = append(result, dto.ShopWithAdmin{
				Shop:       shop,
				AdminEmail: emailByID[shop.AdminID],
			})
		}
		return nil
	})
	return result, err
}

func (a *AdminService) ShopByID(ctx context.Context, shopID string) (models.Shop, error) {
	var shop models.Shop
	err := a.st.View(func(tx store.Tx) error {
		shops, err := store.All[models.Shop](ctx, tx, store.Shops)
		if err != nil {
			return err
		}
		found, ok := findShop(shops, shopID)
		if !ok {
			return core.ErrShopNotFound
		}
		shop = found
		return nil
	})
	return shop, err
}

// AllShops is the public storefront listing; no admin details.
func (a *AdminService) AllShops(ctx context.Context) ([]models.Shop, error) {
	var shops []models.Shop
	err := a.st.View(func(tx store.Tx) error {
		var err error
		shops, err = store.All[models.Shop](ctx, tx, store.Shops)
		return err
	})
	return shops, err
}

// MyShop resolves the shop assigned to a shop admin.
func (a *AdminService) MyShop(ctx context.Context, actor models.User) (models.Shop, error) {
	var shop models.Shop
	err := a.st.View(func(tx store.Tx) error {
		shops, err := store.All[models.Shop](ctx, tx, store.Shops)
		if err != nil {
			return err
		}
		found, ok := shopOfAdmin(shops, actor.ID)
		if !ok {
			return fmt.Errorf("%w: no shop assigned", core.ErrShopNotFound)
		}
		shop = found
		return nil
	})
	return shop, err
}

// SetShopOpen sets the open flag. Closing a shop with pending orders is
// allowed; the UI warns, the server does not block.
func (a *AdminService) SetShopOpen(ctx context.Context, actor models.User, shopID string, isOpen bool) (models.Shop, error) {
	return a.updateOpen(ctx, actor, shopID, func(bool) bool { return isOpen })
}

// ToggleShopOpen flips the open flag.
func (a *AdminService) ToggleShopOpen(ctx context.Context, actor models.User, shopID string) (models.Shop, error) {
	return a.updateOpen(ctx, actor, shopID, func(cur bool) bool { return !cur })
}

func (a *AdminService) updateOpen(ctx context.Context, actor models.User, shopID string, next func(bool) bool) (models.Shop, error) {
	var updated models.Shop
	err := a.st.Update(func(tx store.Tx) error {
		shops, err := store.All[models.Shop](ctx, tx, store.Shops)
		if err != nil {
			return err
		}
		shop, ok := findShop(shops, shopID)
		if !ok {
			return core.ErrShopNotFound
		}
		if actor.Role != models.RoleSuperAdmin && shop.AdminID != actor.ID {
			return fmt.Errorf("%w: you do not own this shop", core.ErrForbidden)
		}
		shop.IsOpen = next(shop.IsOpen)
		if _, err := store.UpdateByID(ctx, tx, store.Shops, shop.ID, shop); err != nil {
			return err
		}
		updated = shop
		return nil
	})
	if err != nil {
		return models.Shop{}, err
	}
	a.mylog.Action("shop_status_updated").Info("Shop open flag updated",
		"shop_id", updated.ID, "is_open", updated.IsOpen)
	return updated, nil
}

// Users lists all accounts, newest first, without password hashes.
func (a *AdminService) Users(ctx context.Context) ([]dto.UserInfo, error) {
	var result []dto.UserInfo
	err := a.st.View(func(tx store.Tx) error {
		users, err := store.All[models.User](ctx, tx, store.Users)
		if err != nil {
			return err
		}
		for i := len(users) - 1; i >= 0; i-- {
			u := users[i]
			result = append(result, dto.UserInfo{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role})
		}
		return nil
	})
	return result, err
}

// SetUserRole changes a user's role, keeping the SHOP_ADMIN ⇔ Shop.AdminID
// invariant in one atomic section. The acting admin cannot change their own
// role. Promotion to SHOP_ADMIN requires a target shop that is unassigned or
// already the user's own; demotion clears whichever shop the user manages;
// for a current shop admin a shopId switches their shop.
func (a *AdminService) SetUserRole(ctx context.Context, actor models.User, targetUserID string, req dto.RoleChangeRequest) (dto.UserInfo, error) {
	if actor.ID == targetUserID {
		return dto.UserInfo{}, core.ErrCannotModifySelf
	}
	if !req.Role.Valid() {
		return dto.UserInfo{}, fmt.Errorf("%w: invalid role %q", core.ErrValidation, string(req.Role))
	}

	var result dto.UserInfo
	err := a.st.Update(func(tx store.Tx) error {
		users, err := store.All[models.User](ctx, tx, store.Users)
		if err != nil {
			return err
		}
		user, ok := userByID(users, targetUserID)
		if !ok {
			return core.ErrUserNotFound
		}
		shops, err := store.All[models.Shop](ctx, tx, store.Shops)
		if err != nil {
			return err
		}

		oldRole := user.Role
		switch {
		case req.Role == models.RoleShopAdmin && oldRole != models.RoleShopAdmin:
			if req.ShopID == "" {
				return fmt.Errorf("%w: shop ID required when promoting to shop admin", core.ErrValidation)
			}
			if err := a.assignShopAdmin(ctx, tx, shops, req.ShopID, user.ID); err != nil {
				return err
			}
		case req.Role == models.RoleShopAdmin && req.ShopID != "":
			// Already a shop admin: switch shops.
			target, ok := findShop(shops, req.ShopID)
			if !ok {
				return core.ErrShopNotFound
			}
			if target.AdminID != "" && target.AdminID != user.ID {
				return core.ErrShopAlreadyHasAdmin
			}
			if err := a.unassignShopAdmin(ctx, tx, shops, user.ID, req.ShopID); err != nil {
				return err
			}
			if err := a.assignShopAdmin(ctx, tx, shops, req.ShopID, user.ID); err != nil {
				return err
			}
		case oldRole == models.RoleShopAdmin && req.Role != models.RoleShopAdmin:
			if err := a.unassignShopAdmin(ctx, tx, shops, user.ID, ""); err != nil {
				return err
			}
		}

		user.Role = req.Role
		if _, err := store.UpdateByID(ctx, tx, store.Users, user.ID, user); err != nil {
			return err
		}
		result = dto.UserInfo{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}
		return nil
	})
	if err != nil {
		return dto.UserInfo{}, err
	}

	a.mylog.Action("user_role_updated").Info("User role updated",
		"user_id", result.ID, "role", string(result.Role))
	return result, nil
}

// assignShopAdmin binds a shop to a user, refusing shops that already have a
// different admin.
func (a *AdminService) assignShopAdmin(ctx context.Context, tx store.Tx, shops []models.Shop, shopID, userID string) error {
	shop, ok := findShop(shops, shopID)
	if !ok {
		return core.ErrShopNotFound
	}
	if shop.AdminID != "" && shop.AdminID != userID {
		return core.ErrShopAlreadyHasAdmin
	}
	shop.AdminID = userID
	_, err := store.UpdateByID(ctx, tx, store.Shops, shop.ID, shop)
	return err
}

// unassignShopAdmin clears the user's shop binding, skipping exceptShopID.
func (a *AdminService) unassignShopAdmin(ctx context.Context, tx store.Tx, shops []models.Shop, userID, exceptShopID string) error {
	for _, shop := range shops {
		if shop.AdminID != userID || shop.ID == exceptShopID {
			continue
		}
		shop.AdminID = ""
		if _, err := store.UpdateByID(ctx, tx, store.Shops, shop.ID, shop); err != nil {
			return err
		}
	}
	return nil
}

func userByEmail(users []models.User, email string) (models.User, bool) {
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return models.User{}, false
}

func userByID(users []models.User, id string) (models.User, bool) {
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}
