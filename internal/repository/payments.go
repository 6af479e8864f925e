package repository

import (
	"context"
	"database/sql"

	"kassa/internal/database"
	"kassa/internal/models"
)

type PaymentRepository struct {
	db *database.DB
}

func NewPaymentRepository(db *database.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO payments (ticket_id, user_id, amount, method, status, transaction_id, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	return r.db.ExecutorFromContext(ctx).QueryRowContext(ctx, query,
		payment.TicketID,
		payment.UserID,
		payment.Amount,
		payment.Method,
		payment.Status,
		payment.TransactionID,
		payment.PaidAt,
	).Scan(&payment.ID, &payment.CreatedAt)
}

// LatestByTicket returns the most recent payment of a ticket; the refund
// workflow captures its amount at request time.
func (r *PaymentRepository) LatestByTicket(ctx context.Context, ticketID int64) (*models.Payment, error) {
	payment := &models.Payment{}
	query := `
		SELECT id, ticket_id, user_id, amount, method, status, transaction_id, paid_at, created_at
		FROM payments
		WHERE ticket_id = $1
		ORDER BY id DESC
		LIMIT 1`

	err := r.db.ExecutorFromContext(ctx).QueryRowContext(ctx, query, ticketID).Scan(
		&payment.ID,
		&payment.TicketID,
		&payment.UserID,
		&payment.Amount,
		&payment.Method,
		&payment.Status,
		&payment.TransactionID,
		&payment.PaidAt,
		&payment.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return payment, err
}
