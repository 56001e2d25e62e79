package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"ecommerce_api/internal/common"
	"ecommerce_api/internal/common/security"
	"ecommerce_api/internal/domain/model"
	"ecommerce_api/internal/domain/repository"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

type ProductService struct {
	productRepo repository.ProductRepository
	log         *zap.Logger
}

func NewProductService(productRepo repository.ProductRepository, log *zap.Logger) *ProductService {
	return &ProductService{productRepo: productRepo, log: log}
}

type CreateProductRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

type UpdateProductRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
}

func validateProductFields(name *string, description *string, price *float64, stock *int) error {
	if name != nil {
		if err := validateLength("name", *name, 1, 150); err != nil {
			return err
		}
	}
	if description != nil && utf8.RuneCountInString(*description) > 1000 {
		return common.Invalid("description must be at most 1000 characters")
	}
	if price != nil && *price <= 0 {
		return common.Invalid("Price must be greater than 0")
	}
	if stock != nil && *stock < 0 {
		return common.Invalid("Stock cannot be negative")
	}
	return nil
}

// ListActive is the public catalog: soft-deleted products never appear.
func (s *ProductService) ListActive(ctx context.Context, skip, limit int, search string) ([]model.Product, error) {
	if err := validatePage(skip, limit); err != nil {
		return nil, err
	}
	return s.productRepo.List(ctx, model.ProductFilter{
		Search: strings.TrimSpace(search),
		Skip:   skip,
		Limit:  limit,
	})
}

func (s *ProductService) GetActive(ctx context.Context, id int64) (*model.Product, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, common.NotFound("Product")
	}
	return p, nil
}

func (s *ProductService) Create(ctx context.Context, principal *model.Principal, req CreateProductRequest) (*model.Product, error) {
	if err := security.Authorize(principal, security.RoleAtLeast{Role: model.RoleSeller}); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validateProductFields(&req.Name, req.Description, &req.Price, &req.Stock); err != nil {
		return nil, err
	}

	p := &model.Product{
		Name:        req.Name,
		Slug:        slug.Make(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		SellerID:    principal.ID,
		IsActive:    true,
	}
	if err := s.productRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.log.Info("product created", zap.Int64("product_id", p.ID), zap.Int64("seller_id", p.SellerID))
	return p, nil
}

// loadOwned resolves the product before checking ownership, so a missing
// id is NotFound for everyone.
func (s *ProductService) loadOwned(ctx context.Context, principal *model.Principal, id int64) (*model.Product, error) {
	if principal == nil {
		return nil, common.ErrUnauthorized
	}
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := security.Authorize(principal, security.OwnerOrRole{OwnerID: p.SellerID, Role: model.RoleAdmin}); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, principal *model.Principal, id int64, req UpdateProductRequest) (*model.Product, error) {
	p, err := s.loadOwned(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if err := validateProductFields(req.Name, req.Description, req.Price, req.Stock); err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
		p.Slug = slug.Make(p.Name)
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}

	if err := s.productRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return p, nil
}

// SoftDelete hides the product from the public catalog; admins still see it.
func (s *ProductService) SoftDelete(ctx context.Context, principal *model.Principal, id int64) error {
	p, err := s.loadOwned(ctx, principal, id)
	if err != nil {
		return err
	}
	if err := s.productRepo.SetActive(ctx, p.ID, false); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	s.log.Info("product deactivated", zap.Int64("product_id", p.ID), zap.Int64("by_user_id", principal.ID))
	return nil
}
