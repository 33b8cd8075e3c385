package handle

import (
	"encoding/json"
	"net/http"

	"canteen/internal/app/services"
	"canteen/internal/domain/dto"
	"canteen/internal/domain/models"
	"canteen/internal/xpkg/logger"
)

type AdminHandler struct {
	admin *services.AdminService
	stats *services.StatsService
	mylog logger.Logger
}

func NewAdminHandler(admin *services.AdminService, stats *services.StatsService, mylog logger.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, stats: stats, mylog: mylog}
}

// MyShop returns the acting admin's shop, or the full shop list for a super
// admin.
func (h *AdminHandler) MyShop() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := UserFrom(r.Context())

		if user.Role == models.RoleSuperAdmin {
			shops, err := h.admin.AllShops(r.Context())
			if err != nil {
				failFromError(w, err)
				return
			}
			refs := make([]dto.ShopRef, 0, len(shops))
			for _, s := range shops {
				refs = append(refs, dto.ShopRef{ID: s.ID, Name: s.Name})
			}
			jsonResponse(w, http.StatusOK, map[string]interface{}{
				"success": true,
				"role":    models.RoleSuperAdmin,
				"shops":   refs,
			})
			return
		}

		shop, err := h.admin.MyShop(r.Context(), user)
		if err != nil {
			failFromError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"shop":    shop,
		})
	}
}

func (h *AdminHandler) Shops() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shops, err := h.admin.Shops(r.Context())
		if err != nil {
			failFromError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    shops,
		})
	}
}

func (h *AdminHandler) ShopByID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop, err := h.admin.ShopByID(r.Context(), r.PathValue("shopId"))
		if err != nil {
			failFromError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    shop,
		})
	}
}

func (h *AdminHandler) CreateShop() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.CreateShopRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonFail(w, http.StatusBadRequest, "failed to parse JSON")
			return
		}

		shop, err := h.admin.CreateShop(r.Context(), req)
		if err != nil {
			failFromError(w, err)
			return
		}
		jsonResponse(w, http.StatusCreated, map[string]interface{}{
			"success": true,
			"shop":    shop,
			"message": "shop created successfully",
		})
	}
}

func (h *AdminHandler) UpdateShop() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.UpdateShopRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonFail(w, http.StatusBadRequest, "failed to parse JSON")
			return
		}

		shop, err := h.admin.UpdateShop(r.Context(), r.PathValue("shopId"), req)
		if err != nil {
			failFromError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"shop":    shop,
			"message": "shop updated successfully",
		})
	}
}

func (h *AdminHandler) DeleteShop() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.admin.DeleteShop(r.Context(), r.PathValue("shopId")); err != nil {
			failFromError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "shop deleted successfully",
		})
	}
}

// ShopStatus sets isOpen from the request body.
func (h *AdminHandler) ShopStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := UserFrom(r.Context())

		var req dto.ShopStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsOpen == nil {
			jsonFail(w, http.StatusBadRequest, "isOpen must be a boolean")
			return
		}

		shop, err := h.admin.SetShopOpen(r.Context(), user, r.PathValue("shopId"), *req.IsOpen)
		if err != nil {
			failFromError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    shop,
		})
	}
}

// ToggleShop flips isOpen.
func (h *AdminHandler) ToggleShop() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := UserFrom(r.Context())

		shop, err := h.admin.ToggleShopOpen(r.Context(), user, r.PathValue("shopId"))
		if err != nil {
			failFromError(w, err)
			return
		}
		message := "shop is now closed"
		if shop.IsOpen {
			message = "shop is now open"
		}
		jsonResponse(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"shop":    map[string]interface{}{"id": shop.ID, "isOpen": shop.IsOpen},
			"message": message,
		})
	}
}

func (h *AdminHandler) ShopStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := UserFrom(r.Context())
		shopID := r.PathValue("shopId")

		// Shop admins may only read their own shop's numbers.
		if user.Role == models.RoleShopAdmin {
			own, err := h.admin.MyShop(r.Context(), user)
			if err != nil {
				failFromError(w, err)
				return
			}
			if own.ID != shopID {
				jsonFail(w, http.StatusForbidden, "access denied")
				return
			}
		}

		stats, err := h.stats.ShopStats(r.Context(), shopID)
		if err != nil {
			failFromError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    stats,
		})
	}
}

func (h *AdminHandler) Users() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := h.admin.Users(r.Context())
		if err != nil {
			failFromError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    users,
		})
	}
}

func (h *AdminHandler) UpdateUserRole() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := UserFrom(r.Context())

		var req dto.RoleChangeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonFail(w, http.StatusBadRequest, "failed to parse JSON")
			return
		}

		updated, err := h.admin.SetUserRole(r.Context(), user, r.PathValue("userId"), req)
		if err != nil {
			failFromError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "user role updated successfully",
			"user":    updated,
		})
	}
}
