package handle

import (
	"encoding/json"
	"net/http"

	"canteen/internal/app/services"
	"canteen/internal/domain/dto"
	"canteen/internal/xpkg/logger"
)

type AuthHandler struct {
	auth  *services.AuthService
	mylog logger.Logger
}

func NewAuthHandler(auth *services.AuthService, mylog logger.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, mylog: mylog}
}

func (h *AuthHandler) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonFail(w, http.StatusBadRequest, "failed to parse JSON")
			return
		}

		resp, err := h.auth.Register(r.Context(), req)
		if err != nil {
			failFromError(w, err)
			return
		}
		jsonResponse(w, http.StatusCreated, resp)
	}
}

func (h *AuthHandler) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonFail(w, http.StatusBadRequest, "failed to parse JSON")
			return
		}

		resp, err := h.auth.Login(r.Context(), req)
		if err != nil {
			h.mylog.Action("login_failed").Debug("Login rejected", "email", req.Email)
			failFromError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, resp)
	}
}
