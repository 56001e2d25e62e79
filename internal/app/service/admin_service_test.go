package service

import (
	"context"
	"testing"

	"ecommerce_api/internal/common"
	"ecommerce_api/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminService_RequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := env.register(t, "seller@x.com", model.RoleSeller)

	_, err := env.admin.ListUsers(ctx, seller, 0, 100)
	assert.ErrorIs(t, err, common.ErrForbidden)
	_, err = env.admin.GetUser(ctx, seller, seller.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)
	_, err = env.admin.DeactivateUser(ctx, seller, seller.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)
	_, err = env.admin.ListProducts(ctx, seller, 0, 100, true)
	assert.ErrorIs(t, err, common.ErrForbidden)
	_, err = env.admin.HardDeleteProduct(ctx, seller, 1)
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestAdminService_DeactivateScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.register(t, "admin@x.com", model.RoleAdmin)
	buyer := env.register(t, "a@x.com", model.RoleBuyer)
	token := env.login(t, "a@x.com")

	_, err := env.identity.Resolve(ctx, token)
	require.NoError(t, err)

	user, err := env.admin.DeactivateUser(ctx, admin, buyer.ID)
	require.NoError(t, err)
	assert.False(t, user.IsActive)

	_, err = env.identity.Resolve(ctx, token)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
	_, err = env.auth.Login(ctx, LoginRequest{Email: "a@x.com", Password: "Pass1234"})
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, err = env.admin.ActivateUser(ctx, admin, buyer.ID)
	require.NoError(t, err)
	_, err = env.identity.Resolve(ctx, token)
	assert.NoError(t, err)
}

func TestAdminService_CannotDeactivateSelf(t *testing.T) {
	env := newTestEnv(t)
	admin := env.register(t, "admin@x.com", model.RoleAdmin)

	_, err := env.admin.DeactivateUser(context.Background(), admin, admin.ID)
	require.ErrorIs(t, err, common.ErrBadRequest)
	assert.Equal(t, "Cannot deactivate your own account", common.PublicMessage(err))
}

func TestAdminService_UnknownUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.register(t, "admin@x.com", model.RoleAdmin)

	_, err := env.admin.GetUser(ctx, admin, 999)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, "User not found", common.PublicMessage(err))
	_, err = env.admin.ActivateUser(ctx, admin, 999)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestAdminService_ChangeRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.register(t, "admin@x.com", model.RoleAdmin)
	seller := env.register(t, "seller@x.com", model.RoleSeller)
	token := env.login(t, "seller@x.com")

	_, err := env.admin.ChangeRole(ctx, admin, seller.ID, ChangeRoleRequest{Role: "owner"})
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = env.admin.ChangeRole(ctx, admin, admin.ID, ChangeRoleRequest{Role: model.RoleBuyer})
	assert.ErrorIs(t, err, common.ErrBadRequest)

	user, err := env.admin.ChangeRole(ctx, admin, seller.ID, ChangeRoleRequest{Role: model.RoleBuyer})
	require.NoError(t, err)
	assert.Equal(t, model.RoleBuyer, user.Role)

	principal, err := env.identity.Resolve(ctx, token)
	require.NoError(t, err)
	_, err = env.product.Create(ctx, principal, CreateProductRequest{Name: "Thing", Price: 1})
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestAdminService_Products(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.register(t, "admin@x.com", model.RoleAdmin)
	seller := env.register(t, "seller@x.com", model.RoleSeller)

	kept, err := env.product.Create(ctx, seller, CreateProductRequest{Name: "Kept", Price: 1})
	require.NoError(t, err)
	hidden, err := env.product.Create(ctx, seller, CreateProductRequest{Name: "Hidden", Price: 1})
	require.NoError(t, err)
	require.NoError(t, env.product.SoftDelete(ctx, seller, hidden.ID))

	active, err := env.admin.ListProducts(ctx, admin, 0, 100, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, kept.ID, active[0].ID)

	all, err := env.admin.ListProducts(ctx, admin, 0, 100, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	deleted, err := env.admin.HardDeleteProduct(ctx, admin, hidden.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hidden", deleted.Name)
	_, err = env.products.FindByID(ctx, hidden.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = env.admin.HardDeleteProduct(ctx, admin, hidden.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
