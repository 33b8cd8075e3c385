package handle

import (
	"encoding/json"
	"net/http"

	"canteen/internal/app/services"
	"canteen/internal/domain/dto"
	"canteen/internal/domain/models"
	"canteen/internal/xpkg/logger"
)

type ItemHandler struct {
	items *services.ItemService
	mylog logger.Logger
}

func NewItemHandler(items *services.ItemService, mylog logger.Logger) *ItemHandler {
	return &ItemHandler{items: items, mylog: mylog}
}

func (h *ItemHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := UserFrom(r.Context())

		items, err := h.items.Items(r.Context(), user, r.URL.Query().Get("shopId"))
		if err != nil {
			failFromError(w, err)
			return
		}
		if items == nil {
			items = []models.Item{}
		}
		jsonResponse(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    items,
		})
	}
}

func (h *ItemHandler) Add() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := UserFrom(r.Context())

		var req dto.AddItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonFail(w, http.StatusBadRequest, "failed to parse JSON")
			return
		}

		item, err := h.items.AddItem(r.Context(), user, req)
		if err != nil {
			failFromError(w, err)
			return
		}
		jsonResponse(w, http.StatusCreated, map[string]interface{}{
			"success": true,
			"data":    item,
		})
	}
}

func (h *ItemHandler) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := UserFrom(r.Context())

		var req dto.UpdateItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonFail(w, http.StatusBadRequest, "failed to parse JSON")
			return
		}

		item, err := h.items.UpdateItem(r.Context(), user, r.PathValue("itemId"), req)
		if err != nil {
			failFromError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    item,
		})
	}
}

func (h *ItemHandler) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := UserFrom(r.Context())

		if err := h.items.DeleteItem(r.Context(), user, r.PathValue("itemId")); err != nil {
			failFromError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "item deleted",
		})
	}
}

func (h *ItemHandler) Toggle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := UserFrom(r.Context())

		item, err := h.items.ToggleAvailability(r.Context(), user, r.PathValue("itemId"))
		if err != nil {
			failFromError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    item,
		})
	}
}
