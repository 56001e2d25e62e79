package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"ecommerce_api/internal/api/middleware"
	"ecommerce_api/internal/app/service"
	"ecommerce_api/internal/common"
	"ecommerce_api/internal/domain/model"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AdminHandler struct {
	adminService *service.AdminService
	resolver     *service.IdentityResolver
	log          *zap.Logger
}

func NewAdminHandler(as *service.AdminService, resolver *service.IdentityResolver, log *zap.Logger) *AdminHandler {
	return &AdminHandler{adminService: as, resolver: resolver, log: log}
}

func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator(h.resolver, h.log))
	r.Use(middleware.RequireRole(model.RoleAdmin))

	r.Get("/users", h.listUsers)
	r.Get("/users/{userID}", h.getUser)
	r.Put("/users/{userID}/deactivate", h.deactivateUser)
	r.Put("/users/{userID}/activate", h.activateUser)
	r.Put("/users/{userID}/role", h.changeRole)
	r.Get("/products/all", h.listProducts)
	r.Delete("/products/{productID}", h.deleteProduct)
}

func (h *AdminHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())
	skip, limit, err := pageParams(r)
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	users, err := h.adminService.ListUsers(r.Context(), principal, skip, limit)
	if err != nil {
		respondError(h.log, w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) getUser(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())
	id, err := idParam(r, "userID")
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	user, err := h.adminService.GetUser(r.Context(), principal, id)
	if err != nil {
		respondError(h.log, w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) deactivateUser(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())
	id, err := idParam(r, "userID")
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	user, err := h.adminService.DeactivateUser(r.Context(), principal, id)
	if err != nil {
		respondError(h.log, w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, fmt.Sprintf("User %s has been deactivated", user.Email))
}

func (h *AdminHandler) activateUser(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())
	id, err := idParam(r, "userID")
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	user, err := h.adminService.ActivateUser(r.Context(), principal, id)
	if err != nil {
		respondError(h.log, w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, fmt.Sprintf("User %s has been activated", user.Email))
}

func (h *AdminHandler) changeRole(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())
	id, err := idParam(r, "userID")
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	var req service.ChangeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	user, err := h.adminService.ChangeRole(r.Context(), principal, id, req)
	if err != nil {
		respondError(h.log, w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())
	skip, limit, err := pageParams(r)
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	includeInactive, err := boolParam(r, "include_inactive")
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	products, err := h.adminService.ListProducts(r.Context(), principal, skip, limit, includeInactive)
	if err != nil {
		respondError(h.log, w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, products)
}

func (h *AdminHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())
	id, err := idParam(r, "productID")
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	product, err := h.adminService.HardDeleteProduct(r.Context(), principal, id)
	if err != nil {
		respondError(h.log, w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, fmt.Sprintf("Product %s has been permanently deleted", product.Name))
}
