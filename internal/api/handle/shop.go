package handle

import (
	"net/http"

	"canteen/internal/app/services"
	"canteen/internal/domain/models"
)

// ShopHandler serves the public storefront endpoints; no authentication.
type ShopHandler struct {
	admin *services.AdminService
	items *services.ItemService
}

func NewShopHandler(admin *services.AdminService, items *services.ItemService) *ShopHandler {
	return &ShopHandler{admin: admin, items: items}
}

func (h *ShopHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shops, err := h.admin.AllShops(r.Context())
		if err != nil {
			failFromError(w, err)
			return
		}
		if shops == nil {
			shops = []models.Shop{}
		}
		// Hide admin binding from the public listing.
		for i := range shops {
			shops[i].AdminID = ""
		}
		jsonResponse(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"shops":   shops,
		})
	}
}

func (h *ShopHandler) Menu() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		menu, err := h.items.ShopMenu(r.Context(), r.PathValue("shopId"), false)
		if err != nil {
			failFromError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, map[string]interface{}{
			"success":    true,
			"shop":       menu.Shop,
			"categories": menu.Categories,
		})
	}
}
