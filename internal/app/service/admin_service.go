package service

import (
	"context"
	"fmt"

	"ecommerce_api/internal/common"
	"ecommerce_api/internal/common/security"
	"ecommerce_api/internal/domain/model"
	"ecommerce_api/internal/domain/repository"

	"go.uber.org/zap"
)

// AdminService holds operations restricted to RoleAdmin. Every method
// authorizes the caller itself.
type AdminService struct {
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	log         *zap.Logger
}

func NewAdminService(userRepo repository.UserRepository, productRepo repository.ProductRepository, log *zap.Logger) *AdminService {
	return &AdminService{userRepo: userRepo, productRepo: productRepo, log: log}
}

var adminOnly = security.RoleAtLeast{Role: model.RoleAdmin}

type ChangeRoleRequest struct {
	Role model.Role `json:"role"`
}

func (s *AdminService) ListUsers(ctx context.Context, principal *model.Principal, skip, limit int) ([]model.User, error) {
	if err := security.Authorize(principal, adminOnly); err != nil {
		return nil, err
	}
	if err := validatePage(skip, limit); err != nil {
		return nil, err
	}
	return s.userRepo.List(ctx, skip, limit)
}

func (s *AdminService) GetUser(ctx context.Context, principal *model.Principal, id int64) (*model.User, error) {
	if err := security.Authorize(principal, adminOnly); err != nil {
		return nil, err
	}
	return s.userRepo.FindByID(ctx, id)
}

func (s *AdminService) DeactivateUser(ctx context.Context, principal *model.Principal, id int64) (*model.User, error) {
	return s.setActive(ctx, principal, id, false)
}

func (s *AdminService) ActivateUser(ctx context.Context, principal *model.Principal, id int64) (*model.User, error) {
	return s.setActive(ctx, principal, id, true)
}

func (s *AdminService) setActive(ctx context.Context, principal *model.Principal, id int64, active bool) (*model.User, error) {
	if err := security.Authorize(principal, adminOnly); err != nil {
		return nil, err
	}
	target, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !active && target.ID == principal.ID {
		return nil, common.BadRequest("Cannot deactivate your own account")
	}
	if err := s.userRepo.SetActive(ctx, target.ID, active); err != nil {
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}
	target.IsActive = active
	s.log.Info("user active flag changed",
		zap.Int64("user_id", target.ID), zap.Bool("active", active), zap.Int64("by_user_id", principal.ID))
	return target, nil
}

// ChangeRole takes effect on the target's next request, since roles are
// re-read when each token is resolved.
func (s *AdminService) ChangeRole(ctx context.Context, principal *model.Principal, id int64, req ChangeRoleRequest) (*model.User, error) {
	if err := security.Authorize(principal, adminOnly); err != nil {
		return nil, err
	}
	if !req.Role.Valid() {
		return nil, common.Invalid("role must be one of buyer, seller, admin")
	}
	target, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if target.ID == principal.ID {
		return nil, common.BadRequest("Cannot change your own role")
	}
	if err := s.userRepo.UpdateRole(ctx, target.ID, req.Role); err != nil {
		return nil, fmt.Errorf("failed to update user role: %w", err)
	}
	s.log.Info("user role changed",
		zap.Int64("user_id", target.ID), zap.String("from", string(target.Role)), zap.String("to", string(req.Role)),
		zap.Int64("by_user_id", principal.ID))
	target.Role = req.Role
	return target, nil
}

func (s *AdminService) ListProducts(ctx context.Context, principal *model.Principal, skip, limit int, includeInactive bool) ([]model.Product, error) {
	if err := security.Authorize(principal, adminOnly); err != nil {
		return nil, err
	}
	if err := validatePage(skip, limit); err != nil {
		return nil, err
	}
	return s.productRepo.List(ctx, model.ProductFilter{Skip: skip, Limit: limit, IncludeInactive: includeInactive})
}

// HardDeleteProduct removes the row permanently and returns what was removed.
func (s *AdminService) HardDeleteProduct(ctx context.Context, principal *model.Principal, id int64) (*model.Product, error) {
	if err := security.Authorize(principal, adminOnly); err != nil {
		return nil, err
	}
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Delete(ctx, p.ID); err != nil {
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}
	s.log.Info("product permanently deleted", zap.Int64("product_id", p.ID), zap.Int64("by_user_id", principal.ID))
	return p, nil
}
