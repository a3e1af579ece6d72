// AngelaMos | 2026
// repository.go

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/zhqingit/voice-food-order/internal/core"
)

type Repository interface {
	Create(ctx context.Context, store *Store) error
	GetByID(ctx context.Context, id string) (*Store, error)
	GetByEmail(ctx context.Context, email string) (*Store, error)
	UpdateProfile(ctx context.Context, id, name string, phone *string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, store *Store) error {
	query := `
		INSERT INTO stores (id, email, password_hash, name, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING is_active, created_at`

	err := r.db.GetContext(ctx, store, query,
		store.ID,
		store.Email,
		store.PasswordHash,
		store.Name,
		store.Phone,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create store: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create store: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Store, error) {
	query := `
		SELECT id, email, password_hash, name, phone, is_active, created_at
		FROM stores
		WHERE id = $1`

	var store Store
	err := r.db.GetContext(ctx, &store, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get store: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get store: %w", err)
	}

	return &store, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*Store, error) {
	query := `
		SELECT id, email, password_hash, name, phone, is_active, created_at
		FROM stores
		WHERE email = $1`

	var store Store
	err := r.db.GetContext(ctx, &store, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get store by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get store by email: %w", err)
	}

	return &store, nil
}

func (r *repository) UpdateProfile(
	ctx context.Context,
	id string,
	name string,
	phone *string,
) error {
	query := `
		UPDATE stores
		SET name = $2, phone = $3
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, name, phone)
	if err != nil {
		return fmt.Errorf("update store profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update store profile: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update store profile: %w", core.ErrNotFound)
	}

	return nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
