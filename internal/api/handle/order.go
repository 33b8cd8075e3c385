package handle

import (
	"encoding/json"
	"net/http"

	"canteen/internal/app/services"
	"canteen/internal/domain/dto"
	"canteen/internal/domain/models"
	"canteen/internal/xpkg/logger"
)

type OrderHandler struct {
	orders *services.OrderService
	mylog  logger.Logger
}

func NewOrderHandler(orders *services.OrderService, mylog logger.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, mylog: mylog}
}

func (h *OrderHandler) Place() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := UserFrom(r.Context())

		var req dto.PlaceOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.mylog.Action("parse_failed").Debug("Failed to parse order request")
			jsonFail(w, http.StatusBadRequest, "failed to parse JSON")
			return
		}

		summary, err := h.orders.Place(r.Context(), user, req)
		if err != nil {
			failFromError(w, err)
			return
		}

		jsonResponse(w, http.StatusCreated, map[string]interface{}{
			"success": true,
			"order":   summary,
		})
	}
}

func (h *OrderHandler) MyOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := UserFrom(r.Context())

		orders, err := h.orders.MyOrders(r.Context(), user.ID)
		if err != nil {
			failFromError(w, err)
			return
		}
		if orders == nil {
			orders = []models.Order{}
		}
		jsonResponse(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"orders":  orders,
		})
	}
}

func (h *OrderHandler) ShopOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := UserFrom(r.Context())

		filter := dto.OrderFilter{
			ShopID: r.URL.Query().Get("shopId"),
			Status: models.OrderStatus(r.URL.Query().Get("status")),
			Date:   r.URL.Query().Get("date"),
		}
		orders, err := h.orders.ShopOrders(r.Context(), user, filter)
		if err != nil {
			failFromError(w, err)
			return
		}
		if orders == nil {
			orders = []models.Order{}
		}
		jsonResponse(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"orders":  orders,
		})
	}
}

func (h *OrderHandler) UpdateStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := UserFrom(r.Context())
		orderID := r.PathValue("orderId")

		var req dto.UpdateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonFail(w, http.StatusBadRequest, "failed to parse JSON")
			return
		}
		if req.Status == "" {
			jsonFail(w, http.StatusBadRequest, "status is required")
			return
		}

		order, err := h.orders.UpdateStatus(r.Context(), user, orderID, req.Status)
		if err != nil {
			failFromError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"order":   orderStateView(order),
		})
	}
}

func (h *OrderHandler) Reject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := UserFrom(r.Context())
		orderID := r.PathValue("orderId")

		var req dto.RejectOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonFail(w, http.StatusBadRequest, "failed to parse JSON")
			return
		}

		order, err := h.orders.Reject(r.Context(), user, orderID, req.Reason)
		if err != nil {
			failFromError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "order rejected and refund processed",
			"order":   orderStateView(order),
		})
	}
}

func orderStateView(order models.Order) dto.OrderStateView {
	return dto.OrderStateView{
		ID:              order.ID,
		Status:          order.Status,
		RejectionReason: order.RejectionReason,
		PaymentStatus:   order.PaymentStatus,
	}
}
