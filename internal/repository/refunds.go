package repository

import (
	"context"
	"database/sql"
	"fmt"

	"kassa/internal/database"
	"kassa/internal/models"
)

type RefundRepository struct {
	db *database.DB
}

func NewRefundRepository(db *database.DB) *RefundRepository {
	return &RefundRepository{db: db}
}

func (r *RefundRepository) Create(ctx context.Context, refund *models.Refund) error {
	query := `
		INSERT INTO refunds (ticket_id, user_id, amount, reason, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	return r.db.ExecutorFromContext(ctx).QueryRowContext(ctx, query,
		refund.TicketID,
		refund.UserID,
		refund.Amount,
		refund.Reason,
		refund.Status,
	).Scan(&refund.ID, &refund.CreatedAt, &refund.UpdatedAt)
}

func (r *RefundRepository) GetByID(ctx context.Context, id int64) (*models.Refund, error) {
	refund := &models.Refund{}
	query := `
		SELECT id, ticket_id, user_id, amount, reason, status, reviewed_by, created_at, updated_at
		FROM refunds
		WHERE id = $1`

	err := r.db.ExecutorFromContext(ctx).QueryRowContext(ctx, query, id).Scan(
		&refund.ID,
		&refund.TicketID,
		&refund.UserID,
		&refund.Amount,
		&refund.Reason,
		&refund.Status,
		&refund.ReviewedBy,
		&refund.CreatedAt,
		&refund.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return refund, err
}

// HasRequested reports whether the ticket already has an outstanding request.
// The partial unique index enforces the same rule at the storage layer; this
// read exists to return a clean typed failure before hitting the constraint.
func (r *RefundRepository) HasRequested(ctx context.Context, ticketID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM refunds WHERE ticket_id = $1 AND status = 'requested')`

	err := r.db.ExecutorFromContext(ctx).QueryRowContext(ctx, query, ticketID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check outstanding refund: %w", err)
	}
	return exists, nil
}

// Decide transitions a refund out of requested, recording the reviewer.
// Returns false when the refund was not in requested state anymore.
func (r *RefundRepository) Decide(ctx context.Context, id, reviewerID int64, to models.RefundStatus) (bool, error) {
	query := `
		UPDATE refunds
		SET status = $2, reviewed_by = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'requested'`

	res, err := r.db.ExecutorFromContext(ctx).ExecContext(ctx, query, id, to, reviewerID)
	if err != nil {
		return false, fmt.Errorf("decide refund: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *RefundRepository) List(ctx context.Context, status *models.RefundStatus, offset, limit int) ([]models.Refund, error) {
	var args []interface{}
	argIndex := 1

	query := `
		SELECT id, ticket_id, user_id, amount, reason, status, reviewed_by, created_at, updated_at
		FROM refunds
		WHERE 1=1`

	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *status)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.ExecutorFromContext(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refunds []models.Refund
	for rows.Next() {
		var refund models.Refund
		err := rows.Scan(
			&refund.ID,
			&refund.TicketID,
			&refund.UserID,
			&refund.Amount,
			&refund.Reason,
			&refund.Status,
			&refund.ReviewedBy,
			&refund.CreatedAt,
			&refund.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		refunds = append(refunds, refund)
	}

	return refunds, rows.Err()
}
