package repository

import (
	"context"
	"database/sql"
	"fmt"

	"kassa/internal/database"
	"kassa/internal/models"
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, role, credit, is_active, created_at, updated_at
		FROM users
		WHERE id = $1`

	err := r.db.ExecutorFromContext(ctx).QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Credit,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return user, err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, role, credit, is_active, created_at, updated_at
		FROM users
		WHERE email = $1`

	err := r.db.ExecutorFromContext(ctx).QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Credit,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return user, err
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, role, credit, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.db.ExecutorFromContext(ctx).QueryRowContext(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Credit,
		user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	return err
}

// Debit subtracts amount from the buyer's credit, guarded by credit >= amount
// in the same statement. Returns false when the balance was insufficient.
func (r *UserRepository) Debit(ctx context.Context, userID, amount int64) (bool, error) {
	query := `
		UPDATE users
		SET credit = credit - $2, updated_at = NOW()
		WHERE id = $1 AND credit >= $2`

	res, err := r.db.ExecutorFromContext(ctx).ExecContext(ctx, query, userID, amount)
	if err != nil {
		return false, fmt.Errorf("debit credit: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// Credit adds amount to the buyer's balance unconditionally; used by refunds.
func (r *UserRepository) Credit(ctx context.Context, userID, amount int64) error {
	query := `
		UPDATE users
		SET credit = credit + $2, updated_at = NOW()
		WHERE id = $1`

	res, err := r.db.ExecutorFromContext(ctx).ExecContext(ctx, query, userID, amount)
	if err != nil {
		return fmt.Errorf("credit balance: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected != 1 {
		return fmt.Errorf("credit balance: user %d not found", userID)
	}
	return nil
}
