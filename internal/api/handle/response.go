package handle

import (
	"encoding/json"
	"errors"
	"net/http"

	"canteen/internal/app/core"
)

// jsonResponse writes data as a JSON-encoded HTTP response.
func jsonResponse(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

// jsonFail writes the failure envelope. Message must never be empty; the UI
// surfaces it verbatim.
func jsonFail(w http.ResponseWriter, code int, message string) {
	if message == "" {
		message = http.StatusText(code)
	}
	jsonResponse(w, code, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// failFromError maps a service error onto the failure envelope. Store
// failures become opaque 5xx responses; everything else carries its message
// through to the client.
func failFromError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		jsonFail(w, code, "internal server error")
		return
	}
	jsonFail(w, code, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrUnauthorized),
		errors.Is(err, core.ErrInvalidCredentials),
		errors.Is(err, core.ErrPasswordlessAccount):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrForbidden),
		errors.Is(err, core.ErrCannotModifySelf):
		return http.StatusForbidden
	case errors.Is(err, core.ErrShopNotFound),
		errors.Is(err, core.ErrItemNotFound),
		errors.Is(err, core.ErrOrderNotFound),
		errors.Is(err, core.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrStoreFailure):
		return http.StatusInternalServerError
	case errors.Is(err, core.ErrValidation),
		errors.Is(err, core.ErrInvalidSlot),
		errors.Is(err, core.ErrSlotExpired),
		errors.Is(err, core.ErrMissingAddress),
		errors.Is(err, core.ErrInvalidReason),
		errors.Is(err, core.ErrShopClosed),
		errors.Is(err, core.ErrInsufficientStock),
		errors.Is(err, core.ErrCrossShopItem),
		errors.Is(err, core.ErrInvalidTransition),
		errors.Is(err, core.ErrNotRejectable),
		errors.Is(err, core.ErrDuplicateShopName),
		errors.Is(err, core.ErrAdminAlreadyAssigned),
		errors.Is(err, core.ErrShopAlreadyHasAdmin),
		errors.Is(err, core.ErrItemInActiveOrders),
		errors.Is(err, core.ErrDuplicateEmail):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
