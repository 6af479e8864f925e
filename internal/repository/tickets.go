package repository

import (
	"context"
	"database/sql"
	"fmt"

	"kassa/internal/database"
	"kassa/internal/models"
)

type TicketRepository struct {
	db *database.DB
}

func NewTicketRepository(db *database.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	query := `
		INSERT INTO tickets (user_id, session_id, ticket_type_id, seat_id, status, qr_payload, purchased_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := r.db.ExecutorFromContext(ctx).QueryRowContext(ctx, query,
		ticket.UserID,
		ticket.SessionID,
		ticket.TicketTypeID,
		ticket.SeatID,
		ticket.Status,
		ticket.QRPayload,
		ticket.PurchasedAt,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)

	return err
}

func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*models.Ticket, error) {
	ticket := &models.Ticket{}
	query := `
		SELECT id, user_id, session_id, ticket_type_id, seat_id, status, qr_payload, purchased_at, created_at, updated_at
		FROM tickets
		WHERE id = $1`

	err := r.db.ExecutorFromContext(ctx).QueryRowContext(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.UserID,
		&ticket.SessionID,
		&ticket.TicketTypeID,
		&ticket.SeatID,
		&ticket.Status,
		&ticket.QRPayload,
		&ticket.PurchasedAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return ticket, err
}

// ListByUser returns the buyer's tickets with the price taken from the
// latest payment of each ticket.
func (r *TicketRepository) ListByUser(ctx context.Context, userID int64, status *models.TicketStatus, offset, limit int) ([]models.TicketListItem, error) {
	var args []interface{}
	argIndex := 1

	query := `
		SELECT t.id, t.session_id, t.ticket_type_id, t.seat_id, t.status,
		       COALESCE((SELECT p.amount FROM payments p WHERE p.ticket_id = t.id ORDER BY p.id DESC LIMIT 1), 0)
		FROM tickets t
		WHERE t.user_id = $1`
	args = append(args, userID)
	argIndex++

	if status != nil {
		query += fmt.Sprintf(" AND t.status = $%d", argIndex)
		args = append(args, *status)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY t.id DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.ExecutorFromContext(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.TicketListItem
	for rows.Next() {
		var item models.TicketListItem
		err := rows.Scan(
			&item.ID,
			&item.SessionID,
			&item.TicketTypeID,
			&item.SeatID,
			&item.Status,
			&item.Price,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// SoldSeatIDs returns seat ids held by active or used tickets of the
// session, optionally narrowed to one ticket type; these render as sold in
// seat state views.
func (r *TicketRepository) SoldSeatIDs(ctx context.Context, sessionID int64, ticketTypeID *int64) ([]int64, error) {
	args := []interface{}{sessionID}
	query := `
		SELECT seat_id FROM tickets
		WHERE session_id = $1
		  AND seat_id IS NOT NULL AND status IN ('active', 'used')`
	if ticketTypeID != nil {
		query += " AND ticket_type_id = $2"
		args = append(args, *ticketTypeID)
	}

	rows, err := r.db.ExecutorFromContext(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// UpdateStatusFrom transitions a ticket between statuses, guarded by the
// current status in the WHERE clause. Returns false when zero rows matched.
func (r *TicketRepository) UpdateStatusFrom(ctx context.Context, id int64, from []models.TicketStatus, to models.TicketStatus) (bool, error) {
	if len(from) == 0 {
		return false, fmt.Errorf("update ticket status: empty source status set")
	}

	args := []interface{}{id, to}
	query := `UPDATE tickets SET status = $2, updated_at = NOW() WHERE id = $1 AND status IN (`
	for i, s := range from {
		if i > 0 {
			query += ", "
		}
		query += fmt.Sprintf("$%d", len(args)+1)
		args = append(args, s)
	}
	query += ")"

	res, err := r.db.ExecutorFromContext(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update ticket status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// SetQRPayload attaches the verification artifact after settlement.
func (r *TicketRepository) SetQRPayload(ctx context.Context, id int64, payload string) error {
	query := `UPDATE tickets SET qr_payload = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecutorFromContext(ctx).ExecContext(ctx, query, id, payload)
	return err
}
