package handler

import (
	"encoding/json"
	"net/http"

	"ecommerce_api/internal/api/middleware"
	"ecommerce_api/internal/app/service"
	"ecommerce_api/internal/common"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
	resolver    *service.IdentityResolver
	log         *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, resolver *service.IdentityResolver, log *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, resolver: resolver, log: log}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Post("/forgot-password", h.forgotPassword)
	r.Post("/reset-password", h.resetPassword)

	r.With(middleware.Authenticator(h.resolver, h.log)).Get("/me", h.me)
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	resp, err := h.authService.Register(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req service.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.authService.ForgotPassword(r.Context(), req); err != nil {
		h.respondError(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, service.ForgotPasswordMessage)
}

func (h *AuthHandler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req service.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.authService.ResetPassword(r.Context(), req); err != nil {
		h.respondError(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Password successfully reset")
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())
	common.RespondWithJSON(w, http.StatusOK, principal)
}

func (h *AuthHandler) respondError(w http.ResponseWriter, err error) {
	respondError(h.log, w, err)
}

// respondError logs unexpected failures before writing the public message.
func respondError(log *zap.Logger, w http.ResponseWriter, err error) {
	if common.HTTPStatusFromError(err) >= http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
	}
	common.RespondWithServiceError(w, err)
}
