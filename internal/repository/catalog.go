package repository

import (
	"context"
	"database/sql"

	"kassa/internal/database"
	"kassa/internal/models"
)

// CatalogRepository reads the event/session/ticket-type catalog. The purchase
// flow only needs key lookups from it: the session's owning event and the
// ticket type's price/stock defaults for inventory bootstrap.
type CatalogRepository struct {
	db *database.DB
}

func NewCatalogRepository(db *database.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) GetSession(ctx context.Context, id int64) (*models.EventSession, error) {
	session := &models.EventSession{}
	query := `
		SELECT id, event_id, starts_at, capacity, created_at
		FROM event_sessions
		WHERE id = $1`

	err := r.db.ExecutorFromContext(ctx).QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.EventID,
		&session.StartsAt,
		&session.Capacity,
		&session.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return session, err
}

func (r *CatalogRepository) GetTicketType(ctx context.Context, id int64) (*models.TicketType, error) {
	tt := &models.TicketType{}
	query := `
		SELECT id, event_id, name, price, total_stock, created_at
		FROM ticket_types
		WHERE id = $1`

	err := r.db.ExecutorFromContext(ctx).QueryRowContext(ctx, query, id).Scan(
		&tt.ID,
		&tt.EventID,
		&tt.Name,
		&tt.Price,
		&tt.TotalStock,
		&tt.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return tt, err
}

func (r *CatalogRepository) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	event := &models.Event{}
	query := `
		SELECT id, title, description, status, created_at
		FROM events
		WHERE id = $1`

	err := r.db.ExecutorFromContext(ctx).QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Status,
		&event.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return event, err
}

func (r *CatalogRepository) CreateEvent(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (title, description, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	return r.db.ExecutorFromContext(ctx).QueryRowContext(ctx, query,
		event.Title, event.Description, event.Status,
	).Scan(&event.ID, &event.CreatedAt)
}

func (r *CatalogRepository) CreateSession(ctx context.Context, session *models.EventSession) error {
	query := `
		INSERT INTO event_sessions (event_id, starts_at, capacity)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	return r.db.ExecutorFromContext(ctx).QueryRowContext(ctx, query,
		session.EventID, session.StartsAt, session.Capacity,
	).Scan(&session.ID, &session.CreatedAt)
}

func (r *CatalogRepository) CreateTicketType(ctx context.Context, tt *models.TicketType) error {
	query := `
		INSERT INTO ticket_types (event_id, name, price, total_stock)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	return r.db.ExecutorFromContext(ctx).QueryRowContext(ctx, query,
		tt.EventID, tt.Name, tt.Price, tt.TotalStock,
	).Scan(&tt.ID, &tt.CreatedAt)
}
