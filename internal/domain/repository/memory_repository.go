package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"ecommerce_api/internal/common"
	"ecommerce_api/internal/domain/model"
)

// In-memory repositories back tests and STORAGE_BACKEND=memory. They copy
// records in and out so callers never share state with the store.

type memoryUserRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]model.User
}

func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{users: make(map[int64]model.User)}
}

func (r *memoryUserRepository) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return common.Conflict("Email already registered")
		}
	}
	r.nextID++
	now := time.Now().UTC()
	user.ID = r.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, common.NotFound("User")
}

func (r *memoryUserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, common.NotFound("User")
	}
	return &u, nil
}

func (r *memoryUserRepository) List(ctx context.Context, skip, limit int) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return page(users, skip, limit), nil
}

func (r *memoryUserRepository) SetActive(ctx context.Context, id int64, active bool) error {
	return r.update(id, func(u *model.User) { u.IsActive = active })
}

func (r *memoryUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.update(id, func(u *model.User) { u.PasswordHash = passwordHash })
}

func (r *memoryUserRepository) UpdateRole(ctx context.Context, id int64, role model.Role) error {
	return r.update(id, func(u *model.User) { u.Role = role })
}

func (r *memoryUserRepository) update(id int64, fn func(*model.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return common.NotFound("User")
	}
	fn(&u)
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

type memoryProductRepository struct {
	mu       sync.RWMutex
	nextID   int64
	products map[int64]model.Product
}

func NewMemoryProductRepository() ProductRepository {
	return &memoryProductRepository{products: make(map[int64]model.Product)}
}

func (r *memoryProductRepository) Create(ctx context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	now := time.Now().UTC()
	p.ID = r.nextID
	p.CreatedAt = now
	p.UpdatedAt = now
	r.products[p.ID] = copyProduct(*p)
	return nil
}

func (r *memoryProductRepository) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, common.NotFound("Product")
	}
	p = copyProduct(p)
	return &p, nil
}

func (r *memoryProductRepository) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	search := strings.ToLower(filter.Search)
	products := []model.Product{}
	for _, p := range r.products {
		if !filter.IncludeInactive && !p.IsActive {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		products = append(products, copyProduct(p))
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return page(products, filter.Skip, filter.Limit), nil
}

func (r *memoryProductRepository) Update(ctx context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return common.NotFound("Product")
	}
	p.UpdatedAt = time.Now().UTC()
	r.products[p.ID] = copyProduct(*p)
	return nil
}

func (r *memoryProductRepository) SetActive(ctx context.Context, id int64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return common.NotFound("Product")
	}
	p.IsActive = active
	p.UpdatedAt = time.Now().UTC()
	r.products[id] = p
	return nil
}

func (r *memoryProductRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return common.NotFound("Product")
	}
	delete(r.products, id)
	return nil
}

func copyProduct(p model.Product) model.Product {
	if p.Description != nil {
		d := *p.Description
		p.Description = &d
	}
	return p
}

func page[T any](items []T, skip, limit int) []T {
	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
