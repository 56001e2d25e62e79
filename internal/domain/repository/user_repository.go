package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ecommerce_api/internal/common"
	"ecommerce_api/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context, skip, limit int) ([]model.User, error)
	SetActive(ctx context.Context, id int64, active bool) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateRole(ctx context.Context, id int64, role model.Role) error
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `id, name, email, password_hash, role, is_active, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }, user *model.User) error {
	return row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
}

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (name, email, password_hash, role, is_active)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, user.Name, user.Email, user.PasswordHash, user.Role, user.IsActive).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint violation
			return fmt.Errorf("pgUserRepository.Create: %w", common.Conflict("Email already registered"))
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user := &model.User{}
	if err := scanUser(r.db.QueryRowContext(ctx, query, email), user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NotFound("User")
		}
		return nil, fmt.Errorf("pgUserRepository.FindByEmail: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user := &model.User{}
	if err := scanUser(r.db.QueryRowContext(ctx, query, id), user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NotFound("User")
		}
		return nil, fmt.Errorf("pgUserRepository.FindByID: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) List(ctx context.Context, skip, limit int) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.List query: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("pgUserRepository.List scan: %w", err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgUserRepository.List rows.Err: %w", err)
	}
	return users, nil
}

func (r *pgUserRepository) SetActive(ctx context.Context, id int64, active bool) error {
	return r.exec(ctx, "SetActive", `UPDATE users SET is_active = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, active, id)
}

func (r *pgUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.exec(ctx, "UpdatePassword", `UPDATE users SET password_hash = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, passwordHash, id)
}

func (r *pgUserRepository) UpdateRole(ctx context.Context, id int64, role model.Role) error {
	return r.exec(ctx, "UpdateRole", `UPDATE users SET role = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, role, id)
}

func (r *pgUserRepository) exec(ctx context.Context, op, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("pgUserRepository.%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgUserRepository.%s rows affected: %w", op, err)
	}
	if n == 0 {
		return common.NotFound("User")
	}
	return nil
}
