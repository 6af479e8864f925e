package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"kassa/internal/database"
	"kassa/internal/models"
)

type SeatRepository struct {
	db *database.DB
}

func NewSeatRepository(db *database.DB) *SeatRepository {
	return &SeatRepository{db: db}
}

func (r *SeatRepository) GetByID(ctx context.Context, id int64) (*models.Seat, error) {
	seat := &models.Seat{}
	query := `
		SELECT id, event_id, section, row_label, seat_number, status, locked_until, created_at, updated_at
		FROM seats
		WHERE id = $1`

	err := r.db.ExecutorFromContext(ctx).QueryRowContext(ctx, query, id).Scan(
		&seat.ID,
		&seat.EventID,
		&seat.Section,
		&seat.Row,
		&seat.Number,
		&seat.Status,
		&seat.LockedUntil,
		&seat.CreatedAt,
		&seat.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return seat, err
}

// TryLock transitions a seat to locked with locked_until = now + ttl,
// conditioned on the seat belonging to eventID and being acquirable. An
// expired lock counts as acquirable, so abandoned reservations self-heal at
// the next acquisition attempt. Returns false when zero rows matched.
func (r *SeatRepository) TryLock(ctx context.Context, seatID, eventID int64, ttl time.Duration) (bool, error) {
	query := `
		UPDATE seats
		SET status = 'locked', locked_until = NOW() + make_interval(secs => $3), updated_at = NOW()
		WHERE id = $1 AND event_id = $2
		  AND (status = 'available' OR (status = 'locked' AND locked_until < NOW()))`

	res, err := r.db.ExecutorFromContext(ctx).ExecContext(ctx, query, seatID, eventID, ttl.Seconds())
	if err != nil {
		return false, fmt.Errorf("try lock seat: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// MarkSold transitions a locked seat to sold and clears the lock deadline.
func (r *SeatRepository) MarkSold(ctx context.Context, seatID int64) error {
	query := `
		UPDATE seats
		SET status = 'sold', locked_until = NULL, updated_at = NOW()
		WHERE id = $1 AND status = 'locked'`

	res, err := r.db.ExecutorFromContext(ctx).ExecContext(ctx, query, seatID)
	if err != nil {
		return fmt.Errorf("mark seat sold: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected != 1 {
		return fmt.Errorf("seat %d was not locked when marking sold", seatID)
	}
	return nil
}

// Release returns a seat to the available pool. Used by refund compensation
// and by the lock reaper.
func (r *SeatRepository) Release(ctx context.Context, seatID int64) error {
	query := `
		UPDATE seats
		SET status = 'available', locked_until = NULL, updated_at = NOW()
		WHERE id = $1 AND status IN ('locked', 'sold')`

	_, err := r.db.ExecutorFromContext(ctx).ExecContext(ctx, query, seatID)
	if err != nil {
		return fmt.Errorf("release seat: %w", err)
	}
	return nil
}

// ReleaseExpired flips every seat whose lock deadline has passed back to
// available and reports which seats were reaped.
func (r *SeatRepository) ReleaseExpired(ctx context.Context) ([]models.Seat, error) {
	query := `
		UPDATE seats
		SET status = 'available', locked_until = NULL, updated_at = NOW()
		WHERE status = 'locked' AND locked_until < NOW()
		RETURNING id, event_id`

	rows, err := r.db.ExecutorFromContext(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("release expired seat locks: %w", err)
	}
	defer rows.Close()

	var reaped []models.Seat
	for rows.Next() {
		var seat models.Seat
		if err := rows.Scan(&seat.ID, &seat.EventID); err != nil {
			return nil, err
		}
		reaped = append(reaped, seat)
	}

	return reaped, rows.Err()
}

func (r *SeatRepository) ListByEvent(ctx context.Context, eventID int64) ([]models.Seat, error) {
	query := `
		SELECT id, event_id, section, row_label, seat_number, status, locked_until, created_at, updated_at
		FROM seats
		WHERE event_id = $1
		ORDER BY row_label, seat_number`

	rows, err := r.db.ExecutorFromContext(ctx).QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seats []models.Seat
	for rows.Next() {
		var seat models.Seat
		err := rows.Scan(
			&seat.ID,
			&seat.EventID,
			&seat.Section,
			&seat.Row,
			&seat.Number,
			&seat.Status,
			&seat.LockedUntil,
			&seat.CreatedAt,
			&seat.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}

	return seats, rows.Err()
}

// LockedSeatIDs returns seats of the event stored as locked whose deadline
// has not passed. The seats table is the canonical source for "locked".
func (r *SeatRepository) LockedSeatIDs(ctx context.Context, eventID int64) ([]int64, error) {
	query := `
		SELECT id FROM seats
		WHERE event_id = $1 AND status = 'locked'
		  AND (locked_until IS NULL OR locked_until >= NOW())`

	rows, err := r.db.ExecutorFromContext(ctx).QueryContext(ctx, query, eventID)
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

// CreateGrid inserts rows*seatsPerRow seats for an event in one transaction.
func (r *SeatRepository) CreateGrid(ctx context.Context, eventID int64, section string, rowCount, seatsPerRow int) (int, error) {
	created := 0
	err := r.db.WithTx(ctx, func(ctx context.Context) error {
		exec := r.db.ExecutorFromContext(ctx)
		query := `
			INSERT INTO seats (event_id, section, row_label, seat_number, status)
			VALUES ($1, $2, $3, $4, 'available')`

		for row := 1; row <= rowCount; row++ {
			for seat := 1; seat <= seatsPerRow; seat++ {
				rowLabel := fmt.Sprintf("%d", row)
				seatNumber := fmt.Sprintf("%d", seat)
				if _, err := exec.ExecContext(ctx, query, eventID, nullIfEmpty(section), rowLabel, seatNumber); err != nil {
					return err
				}
				created++
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("create seat grid: %w", err)
	}
	return created, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
