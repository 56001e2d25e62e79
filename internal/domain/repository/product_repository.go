package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"ecommerce_api/internal/common"
	"ecommerce_api/internal/domain/model"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id int64) (*model.Product, error)
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
}

type pgProductRepository struct {
	db *sql.DB
}

func NewPgProductRepository(db *sql.DB) ProductRepository {
	return &pgProductRepository{db: db}
}

const productColumns = `id, name, slug, description, price, stock, seller_id, is_active, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }, p *model.Product) error {
	var description sql.NullString
	if err := row.Scan(&p.ID, &p.Name, &p.Slug, &description, &p.Price, &p.Stock, &p.SellerID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return err
	}
	if description.Valid {
		p.Description = &description.String
	}
	return nil
}

func (r *pgProductRepository) Create(ctx context.Context, p *model.Product) error {
	query := `INSERT INTO products (name, slug, description, price, stock, seller_id, is_active)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, p.Name, p.Slug, p.Description, p.Price, p.Stock, p.SellerID, p.IsActive).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("pgProductRepository.Create: %w", err)
	}
	return nil
}

func (r *pgProductRepository) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p := &model.Product{}
	if err := scanProduct(r.db.QueryRowContext(ctx, query, id), p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NotFound("Product")
		}
		return nil, fmt.Errorf("pgProductRepository.FindByID: %w", err)
	}
	return p, nil
}

func (r *pgProductRepository) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	var query strings.Builder
	query.WriteString(`SELECT ` + productColumns + ` FROM products`)

	var conditions []string
	var args []interface{}
	argID := 1

	if !filter.IncludeInactive {
		conditions = append(conditions, "is_active = TRUE")
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", argID))
		args = append(args, "%"+filter.Search+"%")
		argID++
	}
	if len(conditions) > 0 {
		query.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}

	query.WriteString(fmt.Sprintf(" ORDER BY id LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, filter.Limit, filter.Skip)

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("pgProductRepository.List query: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("pgProductRepository.List scan: %w", err)
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProductRepository.List rows.Err: %w", err)
	}
	return products, nil
}

func (r *pgProductRepository) Update(ctx context.Context, p *model.Product) error {
	query := `UPDATE products SET
                name = $1, slug = $2, description = $3, price = $4, stock = $5,
                is_active = $6, updated_at = CURRENT_TIMESTAMP
              WHERE id = $7
              RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, p.Name, p.Slug, p.Description, p.Price, p.Stock, p.IsActive, p.ID).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.NotFound("Product")
		}
		return fmt.Errorf("pgProductRepository.Update: %w", err)
	}
	return nil
}

func (r *pgProductRepository) SetActive(ctx context.Context, id int64, active bool) error {
	return r.exec(ctx, "SetActive", `UPDATE products SET is_active = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, active, id)
}

func (r *pgProductRepository) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, "Delete", `DELETE FROM products WHERE id = $1`, id)
}

func (r *pgProductRepository) exec(ctx context.Context, op, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("pgProductRepository.%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgProductRepository.%s rows affected: %w", op, err)
	}
	if n == 0 {
		return common.NotFound("Product")
	}
	return nil
}
