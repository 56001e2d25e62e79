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

type ProductHandler struct {
	productService *service.ProductService
	resolver       *service.IdentityResolver
	log            *zap.Logger
}

func NewProductHandler(ps *service.ProductService, resolver *service.IdentityResolver, log *zap.Logger) *ProductHandler {
	return &ProductHandler{productService: ps, resolver: resolver, log: log}
}

func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listProducts)
	r.Get("/{productID}", h.getProduct)

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator(h.resolver, h.log))
		authed.Post("/", h.createProduct)
		authed.Put("/{productID}", h.updateProduct)
		authed.Delete("/{productID}", h.deleteProduct)
	})
}

func (h *ProductHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := pageParams(r)
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	products, err := h.productService.ListActive(r.Context(), skip, limit, r.URL.Query().Get("search"))
	if err != nil {
		respondError(h.log, w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "productID")
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	product, err := h.productService.GetActive(r.Context(), id)
	if err != nil {
		respondError(h.log, w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())

	var req service.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	product, err := h.productService.Create(r.Context(), principal, req)
	if err != nil {
		respondError(h.log, w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())
	id, err := idParam(r, "productID")
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}

	var req service.UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	product, err := h.productService.Update(r.Context(), principal, id, req)
	if err != nil {
		respondError(h.log, w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())
	id, err := idParam(r, "productID")
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	if err := h.productService.SoftDelete(r.Context(), principal, id); err != nil {
		respondError(h.log, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
