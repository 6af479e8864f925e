package repository

import (
	"context"
	"database/sql"
	"fmt"

	"kassa/internal/database"
	"kassa/internal/models"
)

type InventoryRepository struct {
	db *database.DB
}

func NewInventoryRepository(db *database.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// ReserveUnit decrements available by one, guarded by available > 0 in the
// same statement. Returns false when zero rows matched: either no inventory
// row exists or the stock is exhausted; callers distinguish the two.
func (r *InventoryRepository) ReserveUnit(ctx context.Context, sessionID, ticketTypeID int64) (bool, error) {
	query := `
		UPDATE ticket_inventory
		SET available = available - 1, updated_at = NOW()
		WHERE session_id = $1 AND ticket_type_id = $2 AND available > 0`

	res, err := r.db.ExecutorFromContext(ctx).ExecContext(ctx, query, sessionID, ticketTypeID)
	if err != nil {
		return false, fmt.Errorf("reserve unit: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// ReleaseUnit increments available by one, clamped so it never exceeds total.
// Matching zero rows means available was already at total; that is not an error.
func (r *InventoryRepository) ReleaseUnit(ctx context.Context, sessionID, ticketTypeID int64) error {
	query := `
		UPDATE ticket_inventory
		SET available = available + 1, updated_at = NOW()
		WHERE session_id = $1 AND ticket_type_id = $2 AND available < total`

	_, err := r.db.ExecutorFromContext(ctx).ExecContext(ctx, query, sessionID, ticketTypeID)
	if err != nil {
		return fmt.Errorf("release unit: %w", err)
	}
	return nil
}

// EnsureRecord creates the inventory row for the key if none exists and
// returns the row either way. The unique index on (session_id, ticket_type_id)
// resolves a creation race to "use the existing row".
func (r *InventoryRepository) EnsureRecord(ctx context.Context, sessionID, ticketTypeID, price int64, total int) (*models.Inventory, error) {
	insert := `
		INSERT INTO ticket_inventory (session_id, ticket_type_id, price, total, available)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (session_id, ticket_type_id) DO NOTHING`

	if _, err := r.db.ExecutorFromContext(ctx).ExecContext(ctx, insert, sessionID, ticketTypeID, price, total); err != nil {
		return nil, fmt.Errorf("ensure inventory record: %w", err)
	}

	inv, err := r.GetByKey(ctx, sessionID, ticketTypeID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("inventory record missing after ensure for session=%d ticket_type=%d", sessionID, ticketTypeID)
	}
	return inv, nil
}

func (r *InventoryRepository) GetByKey(ctx context.Context, sessionID, ticketTypeID int64) (*models.Inventory, error) {
	inv := &models.Inventory{}
	query := `
		SELECT id, session_id, ticket_type_id, price, total, available, created_at, updated_at
		FROM ticket_inventory
		WHERE session_id = $1 AND ticket_type_id = $2`

	err := r.db.ExecutorFromContext(ctx).QueryRowContext(ctx, query, sessionID, ticketTypeID).Scan(
		&inv.ID,
		&inv.SessionID,
		&inv.TicketTypeID,
		&inv.Price,
		&inv.Total,
		&inv.Available,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return inv, err
}

func (r *InventoryRepository) GetByID(ctx context.Context, id int64) (*models.Inventory, error) {
	inv := &models.Inventory{}
	query := `
		SELECT id, session_id, ticket_type_id, price, total, available, created_at, updated_at
		FROM ticket_inventory
		WHERE id = $1`

	err := r.db.ExecutorFromContext(ctx).QueryRowContext(ctx, query, id).Scan(
		&inv.ID,
		&inv.SessionID,
		&inv.TicketTypeID,
		&inv.Price,
		&inv.Total,
		&inv.Available,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return inv, err
}

func (r *InventoryRepository) List(ctx context.Context, sessionID, ticketTypeID *int64, offset, limit int) ([]models.Inventory, error) {
	var args []interface{}
	argIndex := 1

	query := `
		SELECT id, session_id, ticket_type_id, price, total, available, created_at, updated_at
		FROM ticket_inventory
		WHERE 1=1`

	if sessionID != nil {
		query += fmt.Sprintf(" AND session_id = $%d", argIndex)
		args = append(args, *sessionID)
		argIndex++
	}
	if ticketTypeID != nil {
		query += fmt.Sprintf(" AND ticket_type_id = $%d", argIndex)
		args = append(args, *ticketTypeID)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY id LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.ExecutorFromContext(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Inventory
	for rows.Next() {
		var inv models.Inventory
		err := rows.Scan(
			&inv.ID,
			&inv.SessionID,
			&inv.TicketTypeID,
			&inv.Price,
			&inv.Total,
			&inv.Available,
			&inv.CreatedAt,
			&inv.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, inv)
	}

	return result, rows.Err()
}

// AdjustTotal changes total by delta and shifts available by the same delta,
// floored at zero, in one statement.
func (r *InventoryRepository) AdjustTotal(ctx context.Context, id int64, newTotal int) error {
	query := `
		UPDATE ticket_inventory
		SET available = GREATEST(0, available + ($2 - total)), total = $2, updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.ExecutorFromContext(ctx).ExecContext(ctx, query, id, newTotal)
	if err != nil {
		return fmt.Errorf("adjust inventory total: %w", err)
	}
	return nil
}

func (r *InventoryRepository) SetPrice(ctx context.Context, id int64, price int64) error {
	query := `UPDATE ticket_inventory SET price = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecutorFromContext(ctx).ExecContext(ctx, query, id, price)
	return err
}
